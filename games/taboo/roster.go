/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (r *Room) create(cmd Command, p *CreateRoomPayload) ([]Event, error) {
	if len(r.Players) > 0 {
		return nil, reject(CodeInvalidCommand, "room %s already exists", r.Code)
	}

	player := r.addPlayer(p.Name, cmd)

	zap.S().Infow("room created", "room", r.Code, "host", player.Name)

	return []Event{
		directed(player.Name, EventRoomCreated, map[string]any{
			"token":    r.token(player),
			"snapshot": r.snapshot(player.Name),
		}),
	}, nil
}

func (r *Room) addPlayer(name string, cmd Command) *Player {
	player := &Player{
		Name:      name,
		ClientID:  cmd.ClientID,
		SessionID: uuid.NewString(),
		Conn:      cmd.Conn,
	}
	r.Players = append(r.Players, player)

	if r.Host == "" {
		r.Host = name
	}

	return player
}

func (r *Room) banKey(clientID, name string) string {
	if clientID != "" {
		return "id:" + clientID
	}
	return "name:" + name
}

func (r *Room) banned(clientID, name string) bool {
	if clientID != "" && r.bans["id:"+clientID] {
		return true
	}
	return r.bans["name:"+name]
}

func (r *Room) join(cmd Command, p *JoinRoomPayload) ([]Event, error) {
	if r.banned(cmd.ClientID, p.Name) {
		return nil, ErrBanned
	}

	if existing := r.player(p.Name); existing != nil {
		sameSession := p.SessionID != "" && p.SessionID == existing.SessionID
		sameClient := cmd.ClientID != "" && cmd.ClientID == existing.ClientID
		if existing.Connected() && !sameSession && !sameClient {
			return nil, ErrNameTaken
		}
		return r.rejoin(existing, cmd.Conn), nil
	}

	if r.JoiningLocked {
		return nil, ErrRoomLocked
	}

	player := r.addPlayer(p.Name, cmd)

	zap.S().Infow("player joined", "room", r.Code, "player", player.Name, "midgame", r.Game != nil)

	if r.Game != nil {
		return []Event{
			directed(player.Name, EventRoomJoinedMidgame, map[string]any{
				"token":    r.token(player),
				"snapshot": r.snapshot(player.Name),
			}),
			broadcastExcept(player.Name, EventPlayerJoinedMidgame, map[string]string{"name": player.Name}),
		}, nil
	}

	return []Event{
		directed(player.Name, EventRoomJoined, map[string]any{
			"token":    r.token(player),
			"snapshot": r.snapshot(player.Name),
		}),
		broadcastExcept(player.Name, EventPlayerJoined, map[string]string{"name": player.Name}),
	}, nil
}

// rejoin rebinds a returning player who came back through the normal join
// flow. During a game they come back unassigned and pick a team again.
func (r *Room) rejoin(p *Player, conn string) []Event {
	r.rebind(p, conn)

	var events []Event
	name := EventRoomRejoined

	if r.Game != nil {
		name = EventRoomJoinedMidgame
		if r.teamOf(p.Name) != NoTeam {
			events = append(events, r.moveToTeam(p.Name, NoTeam)...)
		}
	}

	zap.S().Infow("player rejoined", "room", r.Code, "player", p.Name)

	return append([]Event{
		directed(p.Name, name, map[string]any{
			"token":    r.token(p),
			"snapshot": r.snapshot(p.Name),
		}),
		broadcastExcept(p.Name, EventPlayerReconnected, map[string]string{"name": p.Name}),
	}, events...)
}

func (r *Room) rebind(p *Player, conn string) {
	stop(p.grace)
	p.grace = nil
	p.graceGen++
	p.Conn = conn
}

func (r *Room) setTeam(name string, team int) ([]Event, error) {
	if team >= len(r.Teams) {
		return nil, reject(CodeInvalidCommand, "no team %d", team)
	}

	current := r.teamOf(name)
	if current == team {
		return nil, nil
	}

	// The lock only holds between turns. An unassigned player picking a
	// team mid-game is always allowed so joiners are never stranded.
	turnActive := r.Game != nil && r.Game.Phase == PhaseTurnActive
	midgameJoin := r.Game != nil && current == NoTeam
	if r.TeamSwitchingLocked && !turnActive && !midgameJoin {
		return nil, ErrTeamSwitchingLocked
	}

	events := r.moveToTeam(name, team)

	if r.Game != nil && r.Game.Phase == PhaseTurnActive && team != NoTeam {
		events = append(events, directed(name, EventTeamUpdatedMidgame, map[string]any{
			"team": team,
			"turn": r.turnView(name),
		}))
	}

	return events, nil
}

// moveToTeam removes name from every roster, appends it to team, and
// applies the team-empty policy to the team it left.
func (r *Room) moveToTeam(name string, team int) []Event {
	previous := r.dropFromTeams(name)

	if team != NoTeam {
		r.Teams[team].Players = append(r.Teams[team].Players, name)
	}

	events := []Event{broadcast(EventTeamUpdated, map[string]any{"teams": r.teamsView()})}

	return append(events, r.rosterChanged(previous, name)...)
}

func (r *Room) dropFromTeams(name string) int {
	previous := NoTeam
	for i, t := range r.Teams {
		if idx := slices.Index(t.Players, name); idx >= 0 {
			t.Players = slices.Delete(t.Players, idx, idx+1)
			previous = i
		}
	}
	return previous
}

func (r *Room) leave(p *Player) ([]Event, error) {
	events := []Event{toConn(p.Conn, EventYouLeftGame, nil)}
	return append(events, r.removePlayer(p, broadcast(EventPlayerLeft, map[string]string{"name": p.Name, "reason": "left"}))...), nil
}

func (r *Room) kick(requester *Player, k *KickPayload) ([]Event, error) {
	if requester.Name != r.Host {
		return nil, ErrNotAuthorized
	}

	target := r.player(k.Name)
	if target == nil {
		return nil, reject(CodeInvalidCommand, "no player named %q", k.Name)
	}
	if target == requester {
		return nil, reject(CodeInvalidCommand, "the host cannot kick themselves")
	}

	if k.Ban {
		r.bans[r.banKey(target.ClientID, target.Name)] = true
	}

	zap.S().Infow("player kicked", "room", r.Code, "player", target.Name, "ban", k.Ban)

	var events []Event
	if target.Connected() {
		events = append(events, toConn(target.Conn, EventYouWereKicked, map[string]bool{"banned": k.Ban}))
	}

	return append(events, r.removePlayer(target, broadcast(EventPlayerKicked, map[string]any{"name": target.Name, "banned": k.Ban}))...), nil
}

func (r *Room) toggleCoAdmin(requester *Player, name string) ([]Event, error) {
	if requester.Name != r.Host {
		return nil, ErrNotAuthorized
	}

	target := r.player(name)
	if target == nil || target.Name == r.Host {
		return nil, reject(CodeInvalidCommand, "cannot change co-admin status of %q", name)
	}

	target.CoAdmin = !target.CoAdmin

	if target.CoAdmin {
		return []Event{broadcast(EventMadeCoAdmin, map[string]string{"name": name})}, nil
	}
	return []Event{broadcast(EventRemovedCoAdmin, map[string]string{"name": name})}, nil
}

// removePlayer purges p from the room. The announcement is broadcast before
// any host failover or team-empty handling it causes.
func (r *Room) removePlayer(p *Player, announcement Event) []Event {
	idx := slices.Index(r.Players, p)
	if idx < 0 {
		return nil
	}

	stop(p.grace)
	r.Players = slices.Delete(r.Players, idx, idx+1)

	events := []Event{announcement}

	if r.Host == p.Name {
		r.Host = ""
		if len(r.Players) > 0 {
			next := r.Players[0]
			next.CoAdmin = false
			r.Host = next.Name
			events = append(events, broadcast(EventHostChanged, map[string]string{"host": r.Host}))
		}
	}

	if len(r.Players) == 0 {
		r.shutdown()
		return events
	}

	if r.teamOf(p.Name) != NoTeam {
		events = append(events, r.moveToTeam(p.Name, NoTeam)...)
	}

	return events
}

// shutdown cancels every timer the room owns.
func (r *Room) shutdown() {
	for _, p := range r.Players {
		stop(p.grace)
	}
	if r.Game != nil {
		r.Game.stopTimers()
		r.Game = nil
	}
}

func (r *Room) toggleThirdTeam() ([]Event, error) {
	if r.Game != nil {
		return nil, ErrInvalidPhase
	}

	if len(r.Teams) == 2 {
		r.Teams = append(r.Teams, &Team{Name: r.freeTeamName(), Players: []string{}})
	} else {
		r.Teams = r.Teams[:2]
	}

	return []Event{broadcast(EventTeamUpdated, map[string]any{"teams": r.teamsView()})}, nil
}

func (r *Room) freeTeamName() string {
	for n := len(r.Teams) + 1; ; n++ {
		name := fmt.Sprintf("Team %d", n)
		if !slices.ContainsFunc(r.Teams, func(t *Team) bool { return t.Name == name }) {
			return name
		}
	}
}

func (r *Room) randomizeTeams() ([]Event, error) {
	if r.Game != nil {
		return nil, ErrInvalidPhase
	}

	names := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		names = append(names, p.Name)
	}
	r.rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	for _, t := range r.Teams {
		t.Players = []string{}
	}
	for i, name := range names {
		t := r.Teams[i%len(r.Teams)]
		t.Players = append(t.Players, name)
	}

	return []Event{broadcast(EventTeamUpdated, map[string]any{"teams": r.teamsView()})}, nil
}
