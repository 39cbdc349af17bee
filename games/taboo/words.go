/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Word is an entry from the word corpus. The core treats it as opaque
// beyond its text and point value.
type Word struct {
	Text       string     `json:"word"`
	Difficulty Difficulty `json:"difficulty"`
	Points     int        `json:"points"`
	Rarity     string     `json:"rarity,omitempty"`
}

// Distribution weights the difficulty tiers of a turn's word pool.
type Distribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Distributions are the predefined mixes; one is chosen at random per turn.
var Distributions = []Distribution{
	{Easy: 5, Medium: 3, Hard: 2},
	{Easy: 4, Medium: 4, Hard: 2},
	{Easy: 3, Medium: 4, Hard: 3},
	{Easy: 6, Medium: 3, Hard: 1},
}

// WordSupply is the external word corpus. Each Room owns its own supply so
// used-word tracking is never shared between rooms.
type WordSupply interface {
	FetchWords(count int, dist Distribution) []Word
	FetchBonusWords(count int) []Word
}
