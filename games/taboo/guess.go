/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize case-folds s, strips diacritics and collapses whitespace so
// "  Café " and "cafe" compare equal.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

// similarity is one minus the edit distance normalised by the longer
// string's length.
func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func (s *Session) guessedThisTurn(word string) bool {
	return slices.ContainsFunc(s.CurrentTurnGuessed, func(g Guess) bool {
		return g.Word == word && !g.Duplicate
	})
}

// evaluate classifies a guess against the active pool: an exact match on an
// unguessed word earns full points, an exact match on a word already
// credited this turn earns nothing, a close enough match earns partial
// credit, and anything else is wrong.
func (r *Room) evaluate(player, guess string) (Guess, *Word) {
	s := r.Game
	g := Guess{Player: player, Guess: guess}
	normalized := normalize(guess)

	for i := range s.CurrentWords {
		w := &s.CurrentWords[i]
		if normalize(w.Text) != normalized {
			continue
		}
		g.Word = w.Text
		if s.guessedThisTurn(w.Text) {
			g.Duplicate = true
			return g, w
		}
		g.Points = w.Points
		return g, w
	}

	var best *Word
	bestScore := 0.0
	for i := range s.CurrentWords {
		w := &s.CurrentWords[i]
		if s.guessedThisTurn(w.Text) {
			continue
		}
		if score := similarity(normalized, normalize(w.Text)); score >= r.settings.FuzzyThreshold && score > bestScore {
			best, bestScore = w, score
		}
	}
	if best != nil {
		g.Word = best.Text
		g.Partial = true
		g.Points = int(math.Round(float64(best.Points) * r.settings.PartialCredit))
		return g, best
	}

	return g, nil
}

func (r *Room) submitGuess(p *Player, guess string) ([]Event, error) {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnActive || s.TimeRemaining <= 0 {
		return nil, reject(CodeGuessRejected, "the turn is not running")
	}
	if r.teamOf(p.Name) != s.CurrentTeam || p.Name == s.Describer {
		return nil, reject(CodeGuessRejected, "only the describer's teammates can guess")
	}
	if normalize(guess) == "" {
		return nil, reject(CodeGuessRejected, "empty guess")
	}

	g, word := r.evaluate(p.Name, guess)

	if word == nil {
		s.WrongGuesses = append(s.WrongGuesses, g)
		return []Event{broadcast(EventWrongGuessSync, g)}, nil
	}

	s.CurrentTurnGuessed = append(s.CurrentTurnGuessed, g)
	s.GuessedByPlayer[p.Name] = append(s.GuessedByPlayer[p.Name], word.Text)

	if !g.Duplicate {
		r.Teams[s.CurrentTeam].Score += g.Points
		s.GuessedWords = append(s.GuessedWords, word.Text)
		c := s.contribution(p.Name)
		c.Points += g.Points
		c.WordsGuessed++
		s.contribution(s.Describer).WordsDescribed++
	}

	events := []Event{broadcast(EventWordGuessedSync, map[string]any{
		"guess":     g,
		"team":      s.CurrentTeam,
		"teamScore": r.Teams[s.CurrentTeam].Score,
		"unique":    s.uniqueGuessed(),
	})}

	if !g.Duplicate {
		events = append(events, r.drawBonus()...)
	}

	return events, nil
}

// drawBonus appends bonus words when the turn's unique guesses land on the
// next milestone. Each milestone draws at most once.
func (r *Room) drawBonus() []Event {
	s := r.Game
	if s.uniqueGuessed() != r.settings.milestone(s.bonusDraws) {
		return nil
	}
	s.bonusDraws++

	bonus := r.words.FetchBonusWords(r.settings.BonusWordCount)
	if len(bonus) == 0 {
		return nil
	}
	s.CurrentWords = append(s.CurrentWords, bonus...)

	return r.scoped(EventBonusWordsSync, func(visible bool) any {
		payload := map[string]any{
			"added":     len(bonus),
			"wordCount": len(s.CurrentWords),
		}
		if visible {
			payload["words"] = bonus
		}
		return payload
	})
}
