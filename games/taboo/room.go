/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"math/rand/v2"
	"slices"
)

const NoTeam = -1

// Player is a member of a room. Its identity is its name within the room;
// Conn is the current transport connection, empty while unreachable.
type Player struct {
	Name      string
	ClientID  string
	SessionID string
	Conn      string
	CoAdmin   bool

	graceGen uint64
	grace    Stopper
}

func (p *Player) Connected() bool {
	return p.Conn != ""
}

type Team struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
	Score   int      `json:"score"`
}

type TeamStat struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

// Room is the aggregate for one party. It is not safe for concurrent use;
// the registry drives each Room from a single goroutine.
type Room struct {
	Code    string
	Host    string
	Players []*Player
	Teams   []*Team
	Game    *Session

	JoiningLocked       bool
	TeamSwitchingLocked bool
	TabooReporting      bool
	TabooVoting         bool

	GamesPlayed int
	TeamStats   map[string]*TeamStat

	bans     map[string]bool
	settings Settings
	words    WordSupply
	timers   Scheduler
	rng      *rand.Rand
	games    uint64
}

func NewRoom(code string, settings Settings, words WordSupply, timers Scheduler, rng *rand.Rand) *Room {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Room{
		Code: code,
		Teams: []*Team{
			{Name: "Team 1", Players: []string{}},
			{Name: "Team 2", Players: []string{}},
		},
		TeamStats: make(map[string]*TeamStat),
		bans:      make(map[string]bool),
		settings:  settings,
		words:     words,
		timers:    timers,
		rng:       rng,
	}
}

func (r *Room) player(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) isAdmin(name string) bool {
	if name == r.Host {
		return true
	}
	p := r.player(name)
	return p != nil && p.CoAdmin
}

// teamOf returns the index of the team listing name, or NoTeam.
func (r *Room) teamOf(name string) int {
	for i, t := range r.Teams {
		if slices.Contains(t.Players, name) {
			return i
		}
	}
	return NoTeam
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected() {
			n++
		}
	}
	return n
}

func (r *Room) teamsView() []Team {
	teams := make([]Team, len(r.Teams))
	for i, t := range r.Teams {
		teams[i] = Team{Name: t.Name, Players: slices.Clone(t.Players), Score: t.Score}
	}
	return teams
}

// Apply runs one command against the room and returns the events it
// produced. A returned error means no state was changed.
func (r *Room) Apply(cmd Command) ([]Event, error) {
	switch cmd.Name {
	case CmdCreateRoom:
		return r.create(cmd, cmd.Payload.(*CreateRoomPayload))
	case CmdJoinRoom:
		return r.join(cmd, cmd.Payload.(*JoinRoomPayload))
	case CmdReconnectSession:
		return r.reconnect(cmd, cmd.Payload.(*ReconnectPayload))
	}

	p := r.player(cmd.Player)
	if p == nil || p.Conn != cmd.Conn {
		return nil, ErrNotAuthorized
	}

	switch cmd.Name {
	case CmdJoinTeam:
		return r.setTeam(p.Name, *cmd.Payload.(*JoinTeamPayload).Team)
	case CmdLeaveGame:
		return r.leave(p)
	case CmdTimerUpdate:
		return r.timerSync(p)
	case CmdKickPlayer:
		return r.kick(p, cmd.Payload.(*KickPayload))
	case CmdToggleCoAdmin:
		return r.toggleCoAdmin(p, cmd.Payload.(*CoAdminPayload).Name)
	case CmdStartGame:
		return r.startGame(p, cmd.Payload.(*StartGamePayload))
	case CmdStartTurn:
		return r.startTurn(p)
	case CmdWordGuessed, CmdWrongGuess:
		return r.submitGuess(p, cmd.Payload.(*GuessPayload).Guess)
	case CmdEndTurn:
		return r.endTurnCommand(p)
	case CmdSkipTurn:
		return r.skipTurn(p)
	case CmdSkipGuesserTurn:
		return r.skipGuesserTurn(p)
	case CmdNextTurn:
		return r.nextTurn(p)
	case CmdSetDescriber:
		sd := cmd.Payload.(*SetDescriberPayload)
		return r.setDescriber(p, *sd.Team, sd.Name)
	case CmdReportTaboo:
		return r.reportTaboo(p, cmd.Payload.(*ReportTabooPayload).Word)
	case CmdRoundEndTabooVote:
		v := cmd.Payload.(*VotePayload)
		return r.vote(p, v.ID, *v.Vote)
	case CmdSetTabooSettings:
		ts := cmd.Payload.(*TabooSettingsPayload)
		return r.setTabooSettings(p, *ts.Reporting, *ts.Voting)
	}

	if !r.isAdmin(p.Name) {
		return nil, ErrNotAuthorized
	}

	switch cmd.Name {
	case CmdAdminSkipTurn:
		return r.adminSkipTurn()
	case CmdAdminEndGame:
		if r.Game == nil {
			return nil, ErrInvalidPhase
		}
		return r.gameOver("ended by admin"), nil
	case CmdAdminToggleTeamSwitch:
		r.TeamSwitchingLocked = !r.TeamSwitchingLocked
		return []Event{broadcast(EventTeamSwitchingLocked, map[string]bool{"locked": r.TeamSwitchingLocked})}, nil
	case CmdAdminToggleRoomJoining:
		r.JoiningLocked = !r.JoiningLocked
		return []Event{broadcast(EventRoomJoiningLocked, map[string]bool{"locked": r.JoiningLocked})}, nil
	case CmdAdminToggleThirdTeam:
		return r.toggleThirdTeam()
	case CmdAdminRandomizeTeams:
		return r.randomizeTeams()
	case CmdRenameTeam:
		rt := cmd.Payload.(*RenameTeamPayload)
		return r.renameTeam(*rt.Team, rt.Name)
	}

	return nil, reject(CodeInvalidCommand, "unknown command %q", cmd.Name)
}

// Fire delivers a timer armed by this room.
func (r *Room) Fire(t Timer) []Event {
	switch t.Kind {
	case TimerTick:
		return r.tick(t)
	case TimerVote:
		return r.voteWindowClosed(t)
	case TimerGrace:
		return r.graceExpired(t)
	}
	return nil
}

func (r *Room) setTabooSettings(p *Player, reporting, voting bool) ([]Event, error) {
	if !r.isAdmin(p.Name) {
		return nil, ErrNotAuthorized
	}
	if voting && !reporting {
		return nil, reject(CodeInvalidCommand, "taboo voting requires taboo reporting")
	}

	r.TabooReporting = reporting
	r.TabooVoting = voting

	return []Event{r.stateUpdated()}, nil
}

func (r *Room) renameTeam(team int, name string) ([]Event, error) {
	if team >= len(r.Teams) {
		return nil, reject(CodeInvalidCommand, "no team %d", team)
	}
	for i, t := range r.Teams {
		if i != team && t.Name == name {
			return nil, reject(CodeInvalidCommand, "team name %q is already used", name)
		}
	}

	r.Teams[team].Name = name

	return []Event{r.stateUpdated()}, nil
}

func (r *Room) stateUpdated() Event {
	return broadcast(EventGameStateUpdated, map[string]any{
		"teams":          r.teamsView(),
		"tabooReporting": r.TabooReporting,
		"tabooVoting":    r.TabooVoting,
	})
}
