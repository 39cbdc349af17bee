/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordbank

import (
	"math/rand/v2"

	"github.com/Seednode/wordparty/games/taboo"
)

// backfill lists the tiers to borrow from, nearest first, when a tier runs
// out of unused words.
var backfill = map[taboo.Difficulty][]taboo.Difficulty{
	taboo.Easy:   {taboo.Easy, taboo.Medium, taboo.Hard},
	taboo.Medium: {taboo.Medium, taboo.Easy, taboo.Hard},
	taboo.Hard:   {taboo.Hard, taboo.Medium, taboo.Easy},
}

// bonusMix favours harder words for bonus draws.
var bonusMix = taboo.Distribution{Medium: 1, Hard: 1}

// Picker hands out words without repeating any until the unused share of
// the corpus drops below ResetFraction. Words in the current pool are never
// handed out twice, even across a reset. It is not safe for concurrent use.
type Picker struct {
	corpus *Corpus
	rng    *rand.Rand
	used   map[int]bool

	// pool holds the words dealt since the last FetchWords.
	pool map[int]bool
}

// FetchWords deals a new pool.
func (p *Picker) FetchWords(count int, dist taboo.Distribution) []taboo.Word {
	p.pool = make(map[int]bool, count)
	return p.fetch(count, dist)
}

// FetchBonusWords adds to the current pool.
func (p *Picker) FetchBonusWords(count int) []taboo.Word {
	return p.fetch(count, bonusMix)
}

// Unused returns how many words can be drawn before the next reset.
func (p *Picker) Unused() int {
	return p.corpus.Len() - len(p.used)
}

func (p *Picker) fetch(count int, dist taboo.Distribution) []taboo.Word {
	count = min(count, p.corpus.Len()-len(p.pool))
	if count <= 0 {
		return []taboo.Word{}
	}

	p.maybeReset()

	quotas := allocate(count, dist)
	words := make([]taboo.Word, 0, count)

	for _, tier := range []taboo.Difficulty{taboo.Easy, taboo.Medium, taboo.Hard} {
		for range quotas[tier] {
			idx, ok := p.draw(tier)
			if !ok {
				// Everything is used; start over but never repeat within
				// the pool.
				clear(p.used)
				if idx, ok = p.draw(tier); !ok {
					break
				}
			}
			p.pool[idx] = true
			p.used[idx] = true
			words = append(words, p.corpus.words[idx])
		}
	}

	p.rng.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	return words
}

func (p *Picker) maybeReset() {
	if float64(p.Unused()) < ResetFraction*float64(p.corpus.Len()) {
		clear(p.used)
	}
}

// draw picks a random unused word of tier outside the pool, borrowing from
// neighbouring tiers when it has none left.
func (p *Picker) draw(tier taboo.Difficulty) (int, bool) {
	for _, t := range backfill[tier] {
		var candidates []int
		for _, idx := range p.corpus.tiers[t] {
			if !p.used[idx] && !p.pool[idx] {
				candidates = append(candidates, idx)
			}
		}
		if len(candidates) > 0 {
			return candidates[p.rng.IntN(len(candidates))], true
		}
	}
	return 0, false
}

// allocate splits count across tiers in proportion to dist, handing any
// remainder out medium first.
func allocate(count int, dist taboo.Distribution) map[taboo.Difficulty]int {
	weights := []struct {
		tier   taboo.Difficulty
		weight int
	}{
		{taboo.Medium, dist.Medium},
		{taboo.Easy, dist.Easy},
		{taboo.Hard, dist.Hard},
	}

	total := dist.Easy + dist.Medium + dist.Hard
	quotas := make(map[taboo.Difficulty]int, 3)
	if total <= 0 {
		quotas[taboo.Medium] = count
		return quotas
	}

	assigned := 0
	for _, w := range weights {
		quotas[w.tier] = count * w.weight / total
		assigned += quotas[w.tier]
	}

	for i := 0; assigned < count; i++ {
		w := weights[i%len(weights)]
		if w.weight == 0 {
			continue
		}
		quotas[w.tier]++
		assigned++
	}

	return quotas
}
