/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package wordbank supplies turn word pools from a JSON corpus.
package wordbank

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/Seednode/wordparty/games/taboo"
	"github.com/go-playground/validator/v10"
)

//go:embed words.json
var defaultCorpus []byte

// ResetFraction is the share of the corpus that must remain unused before
// a picker forgets which words it has handed out.
const ResetFraction = 0.2

var ErrEmptyCorpus = errors.New("word corpus is empty")

type entry struct {
	Text       string           `json:"word" validate:"required,max=64"`
	Difficulty taboo.Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Points     int              `json:"points" validate:"min=1,max=100"`
	Rarity     string           `json:"rarity" validate:"omitempty,max=16"`
}

var validate = validator.New()

// Corpus is an immutable word list grouped by difficulty. It is safe to
// share between rooms; per-room state lives in a Picker.
type Corpus struct {
	words []taboo.Word
	tiers map[taboo.Difficulty][]int
}

func Load(r io.Reader) (*Corpus, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode word corpus: %w", err)
	}

	c := &Corpus{tiers: make(map[taboo.Difficulty][]int)}
	seen := make(map[string]bool, len(entries))

	for i, e := range entries {
		e.Text = strings.TrimSpace(e.Text)
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}

		key := strings.ToLower(e.Text)
		if seen[key] {
			continue
		}
		seen[key] = true

		c.tiers[e.Difficulty] = append(c.tiers[e.Difficulty], len(c.words))
		c.words = append(c.words, taboo.Word{
			Text:       e.Text,
			Difficulty: e.Difficulty,
			Points:     e.Points,
			Rarity:     e.Rarity,
		})
	}

	if len(c.words) == 0 {
		return nil, ErrEmptyCorpus
	}

	return c, nil
}

// LoadDefault loads the corpus compiled into the binary.
func LoadDefault() (*Corpus, error) {
	return Load(bytes.NewReader(defaultCorpus))
}

func LoadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

func (c *Corpus) Len() int {
	return len(c.words)
}

// Tier returns the number of words of the given difficulty.
func (c *Corpus) Tier(d taboo.Difficulty) int {
	return len(c.tiers[d])
}

// NewPicker returns a word supply with its own used-word set.
func (c *Corpus) NewPicker(rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Picker{corpus: c, rng: rng, used: make(map[int]bool), pool: make(map[int]bool)}
}
