/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordbank

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Seednode/wordparty/games/taboo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, 149, c.Len())
	assert.Equal(t, 56, c.Tier(taboo.Easy))
	assert.Equal(t, 53, c.Tier(taboo.Medium))
	assert.Equal(t, 40, c.Tier(taboo.Hard))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		corpus string
		words  int
		err    bool
	}{
		{name: "valid", corpus: `[{"word":"apple","difficulty":"easy","points":5}]`, words: 1},
		{name: "case-insensitive duplicates", corpus: `[{"word":"Apple","difficulty":"easy","points":5},{"word":" apple ","difficulty":"medium","points":8}]`, words: 1},
		{name: "unknown difficulty", corpus: `[{"word":"apple","difficulty":"trivial","points":5}]`, err: true},
		{name: "missing word", corpus: `[{"word":"  ","difficulty":"easy","points":5}]`, err: true},
		{name: "zero points", corpus: `[{"word":"apple","difficulty":"easy","points":0}]`, err: true},
		{name: "not json", corpus: `apple, banana`, err: true},
		{name: "empty", corpus: `[]`, err: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Load(strings.NewReader(tc.corpus))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.words, c.Len())
		})
	}

	_, err := Load(strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"word":"kettle","difficulty":"medium","points":8,"rarity":"rare"}]`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	words := c.NewPicker(nil).FetchWords(1, taboo.Distributions[0])
	assert.Equal(t, []taboo.Word{{Text: "kettle", Difficulty: taboo.Medium, Points: 8, Rarity: "rare"}}, words)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		count  int
		dist   taboo.Distribution
		easy   int
		medium int
		hard   int
	}{
		{count: 10, dist: taboo.Distribution{Easy: 5, Medium: 3, Hard: 2}, easy: 5, medium: 3, hard: 2},
		{count: 7, dist: taboo.Distribution{Easy: 5, Medium: 3, Hard: 2}, easy: 3, medium: 3, hard: 1},
		{count: 5, dist: taboo.Distribution{Medium: 1, Hard: 1}, medium: 3, hard: 2},
		{count: 4, dist: taboo.Distribution{}, medium: 4},
	}

	for _, tc := range tests {
		q := allocate(tc.count, tc.dist)
		assert.Equal(t, tc.easy, q[taboo.Easy], "%d of %+v", tc.count, tc.dist)
		assert.Equal(t, tc.medium, q[taboo.Medium], "%d of %+v", tc.count, tc.dist)
		assert.Equal(t, tc.hard, q[taboo.Hard], "%d of %+v", tc.count, tc.dist)
	}
}

func tiers(words []taboo.Word) map[taboo.Difficulty]int {
	out := make(map[taboo.Difficulty]int)
	for _, w := range words {
		out[w.Difficulty]++
	}
	return out
}

func newPicker(t *testing.T) *Picker {
	t.Helper()

	c, err := LoadDefault()
	require.NoError(t, err)
	return c.NewPicker(rand.New(rand.NewPCG(7, 11)))
}

func TestFetchWordsFollowsDistribution(t *testing.T) {
	p := newPicker(t)

	words := p.FetchWords(10, taboo.Distribution{Easy: 5, Medium: 3, Hard: 2})
	require.Len(t, words, 10)
	assert.Equal(t, map[taboo.Difficulty]int{taboo.Easy: 5, taboo.Medium: 3, taboo.Hard: 2}, tiers(words))
	assert.Equal(t, 139, p.Unused())

	assert.Empty(t, p.FetchWords(0, taboo.Distributions[0]))
}

func TestFetchWordsNeverRepeatsUntilReset(t *testing.T) {
	p := newPicker(t)
	seen := make(map[string]bool)

	for i := range 12 {
		for _, w := range p.FetchWords(10, taboo.Distribution{Easy: 5, Medium: 3, Hard: 2}) {
			require.False(t, seen[w.Text], "%s repeated in draw %d", w.Text, i)
			seen[w.Text] = true
		}
	}
	assert.Len(t, seen, 120)
	assert.Equal(t, 29, p.Unused())

	words := p.FetchWords(10, taboo.Distributions[0])
	assert.Len(t, words, 10)
	assert.Equal(t, 139, p.Unused(), "dropping below the reset fraction clears the used set")
}

func TestFetchWordsCapsAtCorpusSize(t *testing.T) {
	p := newPicker(t)

	words := p.FetchWords(500, taboo.Distributions[1])
	assert.Len(t, words, 149)

	distinct := make(map[string]bool)
	for _, w := range words {
		distinct[w.Text] = true
	}
	assert.Len(t, distinct, 149)
}

func TestFetchBonusWords(t *testing.T) {
	p := newPicker(t)

	words := p.FetchBonusWords(5)
	require.Len(t, words, 5)
	for _, w := range words {
		assert.NotEqual(t, taboo.Easy, w.Difficulty, w.Text)
	}
}

func TestPickersAreIndependent(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	a := c.NewPicker(nil)
	b := c.NewPicker(nil)

	a.FetchWords(10, taboo.Distributions[0])
	assert.Equal(t, 139, a.Unused())
	assert.Equal(t, 149, b.Unused())
}

func TestFetchBonusWordsSkipsCurrentPool(t *testing.T) {
	tests := []struct {
		name  string
		pools []int
		bonus int
		want  int
	}{
		{"reset before the bonus", []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10}, 5, 5},
		{"corpus runs out during the bonus", []int{100, 10}, 60, 60},
		{"bonus larger than the rest of the corpus", []int{140}, 20, 9},
	}

	c, err := LoadDefault()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := range uint64(20) {
				p := c.NewPicker(rand.New(rand.NewPCG(seed, 3)))

				var pool []taboo.Word
				for _, n := range tt.pools {
					pool = p.FetchWords(n, taboo.Distributions[0])
				}
				dealt := make(map[string]bool)
				for _, w := range pool {
					dealt[w.Text] = true
				}

				bonus := p.FetchBonusWords(tt.bonus)
				require.Len(t, bonus, tt.want, "seed %d", seed)
				for _, w := range bonus {
					require.False(t, dealt[w.Text], "seed %d: %s dealt twice", seed, w.Text)
					dealt[w.Text] = true
				}
			}
		})
	}
}
