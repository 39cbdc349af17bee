/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

func (r *Room) startGame(p *Player, sg *StartGamePayload) ([]Event, error) {
	if !r.isAdmin(p.Name) {
		return nil, ErrNotAuthorized
	}

	first := NoTeam
	ready := 0
	for i, t := range r.Teams {
		if len(t.Players) > 0 {
			ready++
			if first == NoTeam {
				first = i
			}
		}
	}
	if ready < 2 {
		return nil, reject(CodeInvalidCommand, "at least two teams need players")
	}

	maxRounds := r.settings.MaxRounds
	if sg.MaxRounds > 0 {
		maxRounds = sg.MaxRounds
	}
	turnTime := r.settings.TurnTime
	if sg.TurnTime > 0 {
		turnTime = time.Duration(sg.TurnTime) * time.Second
	}

	if r.Game != nil {
		r.Game.stopTimers()
	}

	for _, t := range r.Teams {
		t.Score = 0
	}

	r.games++
	r.Game = newSession(r.games, len(r.Teams), maxRounds, turnTime)
	r.Game.CurrentTeam = first
	r.Game.Describer = r.describerFor(first)

	zap.S().Infow("game started", "room", r.Code, "rounds", maxRounds, "turnTime", turnTime)

	return []Event{broadcast(EventGameStarted, r.gameView())}, nil
}

// describerFor derives the describer of team from its completed turn count.
func (r *Room) describerFor(team int) string {
	players := r.Teams[team].Players
	if len(players) == 0 {
		return ""
	}
	return players[r.Game.DescriberIndex[team]%len(players)]
}

// rotate recomputes every team's describer index from its completed turns,
// which keeps it in range however the rosters have changed.
func (r *Room) rotate() {
	s := r.Game
	for t, team := range r.Teams {
		if n := len(team.Players); n > 0 {
			s.DescriberIndex[t] = s.TurnsCompleted[t] % n
		} else {
			s.DescriberIndex[t] = 0
		}
	}
	if s.Phase == PhaseTurnStart {
		s.Describer = r.describerFor(s.CurrentTeam)
	}
}

func (r *Room) canDrive(p *Player) bool {
	return r.isAdmin(p.Name) || p.Name == r.Game.Describer
}

func (r *Room) startTurn(p *Player) ([]Event, error) {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnStart {
		return nil, ErrInvalidPhase
	}
	if !r.canDrive(p) {
		return nil, ErrNotAuthorized
	}

	dist := Distributions[r.rng.IntN(len(Distributions))]

	s.Phase = PhaseTurnActive
	s.CurrentWords = r.words.FetchWords(r.settings.WordCount, dist)
	s.CurrentTurnGuessed = nil
	s.WrongGuesses = nil
	s.GuessedByPlayer = make(map[string][]string)
	s.TimeRemaining = s.TurnTime
	s.bonusDraws = 0
	s.turn = &TurnRecord{
		Round:     s.Round,
		Team:      s.CurrentTeam,
		Describer: s.Describer,
		Guessed:   []Guess{},
		Wrong:     []Guess{},
		Taboos:    []*TabooEntry{},
	}
	s.turnGen++
	s.ticker = r.timers.Schedule(r.settings.TickInterval, Timer{Kind: TimerTick, Gen: s.turnGen})

	zap.S().Debugw("turn started", "room", r.Code, "team", s.CurrentTeam, "describer", s.Describer)

	return r.scoped(EventTurnStarted, func(visible bool) any {
		payload := map[string]any{
			"team":          s.CurrentTeam,
			"describer":     s.Describer,
			"round":         s.Round,
			"timeRemaining": s.TimeRemaining.Milliseconds(),
			"wordCount":     len(s.CurrentWords),
		}
		if visible {
			payload["words"] = slices.Clone(s.CurrentWords)
		}
		return payload
	}), nil
}

// canSeeWords reports whether name may see the active word pool: the
// describer and everyone outside the guessing team.
func (r *Room) canSeeWords(name string) bool {
	s := r.Game
	return name == s.Describer || r.teamOf(name) != s.CurrentTeam
}

// scoped builds one directed event per member, with the word pool visible
// only to those allowed to see it.
func (r *Room) scoped(name string, payload func(visible bool) any) []Event {
	events := make([]Event, 0, len(r.Players))
	for _, p := range r.Players {
		events = append(events, directed(p.Name, name, payload(r.canSeeWords(p.Name))))
	}
	return events
}

func (r *Room) tick(t Timer) []Event {
	s := r.Game
	if s == nil || t.Gen != s.turnGen || s.Phase != PhaseTurnActive {
		return nil
	}

	s.TimeRemaining -= r.settings.TickInterval
	if s.TimeRemaining <= 0 {
		s.TimeRemaining = 0
		s.ticker = nil
		events := []Event{broadcast(EventTimerSync, map[string]int64{"timeRemaining": 0})}
		return append(events, r.endTurn("timeout")...)
	}

	s.ticker = r.timers.Schedule(r.settings.TickInterval, Timer{Kind: TimerTick, Gen: s.turnGen})

	return []Event{broadcast(EventTimerSync, map[string]int64{"timeRemaining": s.TimeRemaining.Milliseconds()})}
}

func (r *Room) timerSync(p *Player) ([]Event, error) {
	if r.Game == nil {
		return nil, ErrInvalidPhase
	}
	return []Event{directed(p.Name, EventTimerSync, map[string]int64{"timeRemaining": r.Game.TimeRemaining.Milliseconds()})}, nil
}

func (r *Room) endTurnCommand(p *Player) ([]Event, error) {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnActive {
		return nil, ErrInvalidPhase
	}
	if !r.canDrive(p) {
		return nil, ErrNotAuthorized
	}
	return r.endTurn("ended"), nil
}

// endTurn freezes the pool, files the turn into the round history and opens
// round-end voting for any words reported during it. The timer is cancelled
// and its generation retired so a late tick cannot end the turn twice.
func (r *Room) endTurn(reason string) []Event {
	s := r.Game

	stop(s.ticker)
	s.ticker = nil
	s.turnGen++
	s.Phase = PhaseTurnEnd

	s.fileTurn()

	s.TurnsCompleted[s.CurrentTeam]++
	r.rotate()

	zap.S().Debugw("turn ended", "room", r.Code, "team", s.CurrentTeam, "reason", reason, "guessed", s.uniqueGuessed())

	events := []Event{broadcast(EventTurnEnded, map[string]any{
		"reason": reason,
		"turn":   s.turn.clone(),
		"teams":  r.teamsView(),
	})}

	return append(events, r.openVoting(s.turn)...)
}

func (r *Room) nextTurn(p *Player) ([]Event, error) {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnEnd {
		return nil, ErrInvalidPhase
	}
	if !r.canDrive(p) && r.teamOf(p.Name) != s.CurrentTeam {
		return nil, ErrNotAuthorized
	}
	return r.advanceTeam(), nil
}

// advanceTeam passes control to the next team with players, bumping the
// round when it wraps past the first team. Exceeding the round limit, or
// finding no team with players, ends the game.
func (r *Room) advanceTeam() []Event {
	s := r.Game
	n := len(r.Teams)
	prev := s.CurrentTeam

	next := NoTeam
	for step := 1; step <= n; step++ {
		candidate := (prev + step) % n
		if len(r.Teams[candidate].Players) == 0 {
			continue
		}
		if prev+step >= n {
			s.Round++
		}
		next = candidate
		break
	}

	if next == NoTeam {
		return r.gameOver("all teams are empty")
	}
	if s.Round > s.MaxRounds {
		return r.gameOver("rounds complete")
	}

	s.CurrentTeam = next
	s.Phase = PhaseTurnStart
	s.TimeRemaining = 0
	s.Describer = r.describerFor(next)

	return []Event{broadcast(EventNextTurnSync, map[string]any{
		"team":      next,
		"describer": s.Describer,
		"round":     s.Round,
	})}
}

func (r *Room) skipTurn(p *Player) ([]Event, error) {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnStart {
		return nil, ErrInvalidPhase
	}
	if !r.canDrive(p) {
		return nil, ErrNotAuthorized
	}
	return r.skipTeamTurn(), nil
}

func (r *Room) skipTeamTurn() []Event {
	s := r.Game
	skipped := s.Describer

	s.TurnsCompleted[s.CurrentTeam]++
	r.rotate()

	events := []Event{broadcast(EventDescriberSkipped, map[string]any{"team": s.CurrentTeam, "describer": skipped})}
	return append(events, r.advanceTeam()...)
}

// skipGuesserTurn hands the describer role to the next teammate without
// giving up the team's turn.
func (r *Room) skipGuesserTurn(p *Player) ([]Event, error) {
	s := r.Game
	if s == nil || s.Phase != PhaseTurnStart {
		return nil, ErrInvalidPhase
	}
	if !r.canDrive(p) {
		return nil, ErrNotAuthorized
	}

	s.TurnsCompleted[s.CurrentTeam]++
	r.rotate()

	return []Event{broadcast(EventDescriberChanged, map[string]any{"team": s.CurrentTeam, "describer": s.Describer})}, nil
}

func (r *Room) setDescriber(p *Player, team int, name string) ([]Event, error) {
	if !r.isAdmin(p.Name) {
		return nil, ErrNotAuthorized
	}
	s := r.Game
	if s == nil || s.Phase == PhaseTurnActive {
		return nil, ErrInvalidPhase
	}
	if team >= len(r.Teams) {
		return nil, reject(CodeInvalidCommand, "no team %d", team)
	}

	players := r.Teams[team].Players
	pos := slices.Index(players, name)
	if pos < 0 {
		return nil, reject(CodeInvalidCommand, "%q is not on team %d", name, team)
	}

	size := len(players)
	current := s.TurnsCompleted[team] % size
	s.TurnsCompleted[team] += (pos - current + size) % size
	r.rotate()

	return []Event{broadcast(EventDescriberChanged, map[string]any{"team": team, "describer": name})}, nil
}

func (r *Room) adminSkipTurn() ([]Event, error) {
	s := r.Game
	if s == nil {
		return nil, ErrInvalidPhase
	}

	switch s.Phase {
	case PhaseTurnStart:
		return r.skipTeamTurn(), nil
	case PhaseTurnActive:
		events := r.endTurn("skipped")
		if r.Game == nil {
			return events, nil
		}
		return append(events, r.advanceTeam()...), nil
	default:
		return r.advanceTeam(), nil
	}
}

// rosterChanged applies the team-empty policy after name left team.
func (r *Room) rosterChanged(team int, name string) []Event {
	s := r.Game
	if s == nil {
		return nil
	}
	if team == NoTeam {
		r.rotate()
		return nil
	}

	if slices.IndexFunc(r.Teams, func(t *Team) bool { return len(t.Players) > 0 }) < 0 {
		return r.gameOver("all teams are empty")
	}

	var events []Event

	if team == s.CurrentTeam {
		switch {
		case len(r.Teams[team].Players) == 0 && s.Phase == PhaseTurnActive:
			s.turn.Abandoned = true
			events = append(events, r.endTurn("team empty")...)
			events = append(events, broadcast(EventTeamEmptySkip, map[string]int{"team": team}))
			if r.Game == nil {
				return events
			}
			return append(events, r.advanceTeam()...)
		case len(r.Teams[team].Players) == 0 && s.Phase == PhaseTurnStart:
			events = append(events, broadcast(EventTeamEmptySkip, map[string]int{"team": team}))
			return append(events, r.advanceTeam()...)
		case s.Phase == PhaseTurnActive && name == s.Describer:
			events = append(events, broadcast(EventDescriberLeft, map[string]any{"team": team, "describer": name}))
			return append(events, r.endTurn("describer left")...)
		}
	}

	r.rotate()
	return events
}

// gameOver settles outstanding votes, records cross-game stats and returns
// the room to the lobby.
func (r *Room) gameOver(reason string) []Event {
	s := r.Game

	events := r.settleVotes()

	stop(s.ticker)
	s.ticker = nil
	s.turnGen++
	if s.Phase == PhaseTurnActive {
		s.fileTurn()
	}

	best := 0
	for i, t := range r.Teams {
		if i == 0 || t.Score > best {
			best = t.Score
		}
	}

	winners := []string{}
	for _, t := range r.Teams {
		stat, ok := r.TeamStats[t.Name]
		if !ok {
			stat = &TeamStat{}
			r.TeamStats[t.Name] = stat
		}
		stat.Games++
		if t.Score == best {
			stat.Wins++
			winners = append(winners, t.Name)
		}
	}
	r.GamesPlayed++

	zap.S().Infow("game over", "room", r.Code, "reason", reason, "winners", winners)

	events = append(events, broadcast(EventGameOver, map[string]any{
		"reason":        reason,
		"teams":         r.teamsView(),
		"winners":       winners,
		"contributions": cloneValues(s.Contributions),
		"history":       cloneHistory(s.History),
		"gamesPlayed":   r.GamesPlayed,
		"teamStats":     cloneValues(r.TeamStats),
	}))

	r.Game = nil

	return events
}
