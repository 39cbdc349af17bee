/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "time"

// Settings are the tuning parameters shared by every room in a registry.
type Settings struct {
	TurnTime     time.Duration
	MaxRounds    int
	WordCount    int
	TickInterval time.Duration

	// Bonus words are drawn when the unique guesses in a turn reach
	// BonusStart, then every BonusStep after that.
	BonusStart     int
	BonusStep      int
	BonusWordCount int

	FuzzyThreshold float64
	PartialCredit  float64

	VoteWindow    time.Duration
	VoteThreshold float64

	GracePeriod time.Duration
	IdleTimeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		TurnTime:       60 * time.Second,
		MaxRounds:      3,
		WordCount:      10,
		TickInterval:   time.Second,
		BonusStart:     6,
		BonusStep:      4,
		BonusWordCount: 5,
		FuzzyThreshold: 0.9,
		PartialCredit:  0.7,
		VoteWindow:     30 * time.Second,
		VoteThreshold:  0.6,
		GracePeriod:    2 * time.Minute,
		IdleTimeout:    60 * time.Minute,
	}
}

// milestone returns the unique-guess count that triggers the n-th bonus draw.
func (s Settings) milestone(n int) int {
	return s.BonusStart + n*s.BonusStep
}
