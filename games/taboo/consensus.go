/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"math"
	"slices"

	"go.uber.org/zap"
)

// PendingTaboo is a reported word awaiting the round-end vote.
type PendingTaboo struct {
	ID        int         `json:"id"`
	Word      string      `json:"word"`
	Points    int         `json:"points"`
	Team      int         `json:"team"`
	Describer string      `json:"describer"`
	Yes       []string    `json:"yes"`
	No        []string    `json:"no"`
	Eligible  int         `json:"eligible"`
	Open      bool        `json:"open"`
	Finalized bool        `json:"finalized"`
	Status    TabooStatus `json:"status"`

	entry  *TabooEntry
	record *TurnRecord
	timer  Stopper
}

func (p *PendingTaboo) voted(name string) bool {
	return slices.Contains(p.Yes, name) || slices.Contains(p.No, name)
}

// needed is the yes count that reaches the threshold of eligible voters.
func (r *Room) needed(p *PendingTaboo) int {
	return max(1, int(math.Ceil(r.settings.VoteThreshold*float64(p.Eligible)-1e-9)))
}

func (r *Room) reportTaboo(p *Player, word string) ([]Event, error) {
	if !r.TabooReporting {
		return nil, reject(CodeInvalidCommand, "taboo reporting is disabled")
	}
	s := r.Game
	if s == nil || s.Phase != PhaseTurnActive {
		return nil, ErrInvalidPhase
	}
	if r.teamOf(p.Name) == s.CurrentTeam {
		return nil, reject(CodeNotAuthorized, "the active team cannot report taboo words")
	}

	idx := slices.IndexFunc(s.CurrentWords, func(w Word) bool { return normalize(w.Text) == normalize(word) })
	if idx < 0 {
		return nil, reject(CodeInvalidCommand, "%q is not in play", word)
	}
	w := s.CurrentWords[idx]

	entry := s.turn.taboo(w.Text)
	if entry != nil {
		if entry.Status == TabooConfirmed || slices.Contains(entry.Reporters, p.Name) {
			return nil, reject(CodeVoteRejected, "%q has already been reported", w.Text)
		}
		entry.Reporters = append(entry.Reporters, p.Name)
		return []Event{broadcast(EventTabooVoteSync, entry.clone())}, nil
	}

	s.nextTabooID++
	entry = &TabooEntry{ID: s.nextTabooID, Word: w.Text, Points: w.Points, Reporters: []string{p.Name}}
	s.turn.Taboos = append(s.turn.Taboos, entry)

	zap.S().Debugw("taboo reported", "room", r.Code, "word", w.Text, "reporter", p.Name, "voting", r.TabooVoting)

	if !r.TabooVoting {
		entry.Status = TabooConfirmed
		r.deduct(s.CurrentTeam, w.Text, w.Points)
		return []Event{broadcast(EventTabooVoteSync, map[string]any{
			"id":        entry.ID,
			"word":      entry.Word,
			"points":    entry.Points,
			"status":    entry.Status,
			"reporters": slices.Clone(entry.Reporters),
			"team":      s.CurrentTeam,
			"teamScore": r.Teams[s.CurrentTeam].Score,
		})}, nil
	}

	entry.Status = TabooPending
	s.Pending = append(s.Pending, &PendingTaboo{
		ID:        entry.ID,
		Word:      w.Text,
		Points:    w.Points,
		Team:      s.CurrentTeam,
		Describer: s.Describer,
		Yes:       []string{},
		No:        []string{},
		Status:    TabooPending,
		entry:     entry,
		record:    s.turn,
	})

	return []Event{broadcast(EventTabooVoteSync, entry.clone())}, nil
}

func (t *TurnRecord) taboo(word string) *TabooEntry {
	for _, e := range t.Taboos {
		if e.Word == word {
			return e
		}
	}
	return nil
}

func (r *Room) deduct(team int, word string, points int) {
	s := r.Game
	r.Teams[team].Score -= points
	s.ConfirmedTaboos[team] = append(s.ConfirmedTaboos[team], word)
}

// openVoting starts the round-end window for every word reported during
// record. Each word gets its own timer so words resolve independently.
func (r *Room) openVoting(record *TurnRecord) []Event {
	s := r.Game
	eligible := max(1, r.connectedCount())

	var opened []*PendingTaboo
	for _, p := range s.Pending {
		if p.record != record || p.Open || p.Finalized {
			continue
		}
		p.Open = true
		p.Eligible = eligible
		p.timer = r.timers.Schedule(r.settings.VoteWindow, Timer{Kind: TimerVote, Gen: s.id, ID: p.ID})
		opened = append(opened, p)
	}

	if len(opened) == 0 {
		return nil
	}

	return []Event{broadcast(EventTabooVotingStart, map[string]any{
		"words":  pendingView(opened),
		"window": r.settings.VoteWindow.Milliseconds(),
	})}
}

func (s *Session) pending(id int) *PendingTaboo {
	for _, p := range s.Pending {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) vote(p *Player, id int, yes bool) ([]Event, error) {
	s := r.Game
	if s == nil {
		return nil, ErrInvalidPhase
	}

	pending := s.pending(id)
	if pending == nil {
		return nil, reject(CodeVoteRejected, "no vote %d", id)
	}
	if pending.Finalized {
		return nil, nil
	}
	if !pending.Open {
		return nil, reject(CodeInvalidPhase, "voting on %q has not opened", pending.Word)
	}
	if pending.voted(p.Name) {
		return nil, reject(CodeVoteRejected, "already voted on %q", pending.Word)
	}

	if yes {
		pending.Yes = append(pending.Yes, p.Name)
	} else {
		pending.No = append(pending.No, p.Name)
	}

	events := []Event{broadcast(EventRoundEndVoteSync, map[string]any{
		"id":       pending.ID,
		"yes":      len(pending.Yes),
		"no":       len(pending.No),
		"eligible": pending.Eligible,
	})}

	switch {
	case len(pending.Yes) >= r.needed(pending):
		events = append(events, r.finalize(pending, TabooConfirmed))
	case len(pending.Yes)+len(pending.No) >= pending.Eligible:
		events = append(events, r.finalize(pending, TabooDismissed))
	}

	return events, nil
}

func (r *Room) voteWindowClosed(t Timer) []Event {
	s := r.Game
	if s == nil || t.Gen != s.id {
		return nil
	}
	pending := s.pending(t.ID)
	if pending == nil || pending.Finalized {
		return nil
	}
	pending.timer = nil
	return []Event{r.finalize(pending, r.verdict(pending))}
}

func (r *Room) verdict(p *PendingTaboo) TabooStatus {
	if p.Open && len(p.Yes) >= r.needed(p) {
		return TabooConfirmed
	}
	return TabooDismissed
}

// finalize resolves a pending word exactly once. Confirmed words are
// deducted from the describing team; dismissed words leave the history.
func (r *Room) finalize(p *PendingTaboo, status TabooStatus) Event {
	stop(p.timer)
	p.timer = nil
	p.Open = false
	p.Finalized = true
	p.Status = status
	p.entry.Status = status

	if status == TabooConfirmed {
		r.deduct(p.Team, p.Word, p.Points)
	} else {
		p.record.Taboos = slices.DeleteFunc(p.record.Taboos, func(e *TabooEntry) bool { return e == p.entry })
	}

	zap.S().Debugw("taboo vote finalized", "room", r.Code, "word", p.Word, "status", status)

	return broadcast(EventTabooVotingComplete, map[string]any{
		"id":        p.ID,
		"word":      p.Word,
		"status":    status,
		"team":      p.Team,
		"teamScore": r.Teams[p.Team].Score,
		"yes":       len(p.Yes),
		"no":        len(p.No),
	})
}

// settleVotes resolves every unfinalized word by its current tally.
func (r *Room) settleVotes() []Event {
	s := r.Game
	var events []Event
	for _, p := range s.Pending {
		if !p.Finalized {
			events = append(events, r.finalize(p, r.verdict(p)))
		}
	}
	return events
}
