/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "slices"

type PlayerView struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	CoAdmin   bool   `json:"coAdmin"`
	Host      bool   `json:"host"`
	Team      int    `json:"team"`
}

// Views built here share nothing with the live room, so events carrying
// them can be encoded after the room has moved on.

// Snapshot is everything a client needs to render the room from scratch.
type Snapshot struct {
	Code                string               `json:"code"`
	Host                string               `json:"host"`
	You                 string               `json:"you"`
	Players             []PlayerView         `json:"players"`
	Teams               []Team               `json:"teams"`
	JoiningLocked       bool                 `json:"joiningLocked"`
	TeamSwitchingLocked bool                 `json:"teamSwitchingLocked"`
	TabooReporting      bool                 `json:"tabooReporting"`
	TabooVoting         bool                 `json:"tabooVoting"`
	GamesPlayed         int                  `json:"gamesPlayed"`
	TeamStats           map[string]TeamStat  `json:"teamStats"`
	Game                *GameView            `json:"game,omitempty"`
}

// GameView is the session state common to every member.
type GameView struct {
	Phase           Phase                    `json:"phase"`
	Round           int                      `json:"round"`
	MaxRounds       int                      `json:"maxRounds"`
	TurnTime        int64                    `json:"turnTime"`
	CurrentTeam     int                      `json:"currentTeam"`
	Describer       string                   `json:"describer"`
	Teams           []Team                   `json:"teams"`
	GuessedWords    []string                 `json:"guessedWords"`
	Contributions   map[string]Contribution `json:"contributions"`
	ConfirmedTaboos map[int][]string        `json:"confirmedTaboos"`
	Pending         []PendingTaboo          `json:"pending"`
	History         []*TurnRecord           `json:"history"`
	Turn            *TurnView               `json:"turn,omitempty"`
}

// TurnView is the active turn as seen by one member.
type TurnView struct {
	Words           []Word              `json:"words,omitempty"`
	WordCount       int                 `json:"wordCount"`
	TimeRemaining   int64               `json:"timeRemaining"`
	Guessed         []Guess             `json:"guessed"`
	Wrong           []Guess             `json:"wrong"`
	GuessedByPlayer map[string][]string `json:"guessedByPlayer"`
	Taboos          []*TabooEntry       `json:"taboos"`
}

func (r *Room) snapshot(name string) Snapshot {
	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerView{
			Name:      p.Name,
			Connected: p.Connected(),
			CoAdmin:   p.CoAdmin,
			Host:      p.Name == r.Host,
			Team:      r.teamOf(p.Name),
		})
	}

	snap := Snapshot{
		Code:                r.Code,
		Host:                r.Host,
		You:                 name,
		Players:             players,
		Teams:               r.teamsView(),
		JoiningLocked:       r.JoiningLocked,
		TeamSwitchingLocked: r.TeamSwitchingLocked,
		TabooReporting:      r.TabooReporting,
		TabooVoting:         r.TabooVoting,
		GamesPlayed:         r.GamesPlayed,
		TeamStats:           cloneValues(r.TeamStats),
	}

	if r.Game != nil {
		g := r.gameView()
		g.Turn = r.turnView(name)
		snap.Game = &g
	}

	return snap
}

func (r *Room) gameView() GameView {
	s := r.Game
	return GameView{
		Phase:           s.Phase,
		Round:           s.Round,
		MaxRounds:       s.MaxRounds,
		TurnTime:        s.TurnTime.Milliseconds(),
		CurrentTeam:     s.CurrentTeam,
		Describer:       s.Describer,
		Teams:           r.teamsView(),
		GuessedWords:    slices.Clone(s.GuessedWords),
		Contributions:   cloneValues(s.Contributions),
		ConfirmedTaboos: cloneLists(s.ConfirmedTaboos),
		Pending:         pendingView(s.Pending),
		History:         cloneHistory(s.History),
	}
}

// turnView returns the active turn scoped to name, or nil outside a turn.
func (r *Room) turnView(name string) *TurnView {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnActive {
		return nil
	}

	v := &TurnView{
		WordCount:       len(s.CurrentWords),
		TimeRemaining:   s.TimeRemaining.Milliseconds(),
		Guessed:         slices.Clone(s.CurrentTurnGuessed),
		Wrong:           slices.Clone(s.WrongGuesses),
		GuessedByPlayer: cloneLists(s.GuessedByPlayer),
		Taboos:          cloneTaboos(s.turn.Taboos),
	}
	if r.canSeeWords(name) {
		v.Words = slices.Clone(s.CurrentWords)
	}

	return v
}

func cloneValues[K comparable, V any](m map[K]*V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = *v
	}
	return out
}

func cloneLists[K comparable](m map[K][]string) map[K][]string {
	out := make(map[K][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func (e *TabooEntry) clone() *TabooEntry {
	c := *e
	c.Reporters = slices.Clone(e.Reporters)
	return &c
}

func cloneTaboos(entries []*TabooEntry) []*TabooEntry {
	out := make([]*TabooEntry, len(entries))
	for i, e := range entries {
		out[i] = e.clone()
	}
	return out
}

func (t *TurnRecord) clone() *TurnRecord {
	c := *t
	c.Guessed = slices.Clone(t.Guessed)
	c.Wrong = slices.Clone(t.Wrong)
	c.Taboos = cloneTaboos(t.Taboos)
	return &c
}

func cloneHistory(history []*TurnRecord) []*TurnRecord {
	out := make([]*TurnRecord, len(history))
	for i, t := range history {
		out[i] = t.clone()
	}
	return out
}

func pendingView(pending []*PendingTaboo) []PendingTaboo {
	out := make([]PendingTaboo, len(pending))
	for i, p := range pending {
		out[i] = PendingTaboo{
			ID:        p.ID,
			Word:      p.Word,
			Points:    p.Points,
			Team:      p.Team,
			Describer: p.Describer,
			Yes:       slices.Clone(p.Yes),
			No:        slices.Clone(p.No),
			Eligible:  p.Eligible,
			Open:      p.Open,
			Finalized: p.Finalized,
			Status:    p.Status,
		}
	}
	return out
}
