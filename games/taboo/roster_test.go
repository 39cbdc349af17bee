/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndJoin(t *testing.T) {
	h := newHarness(t)

	events := h.create("alice")
	require.Len(t, events, 1)
	assert.Equal(t, EventRoomCreated, events[0].Name)
	assert.Equal(t, "alice", events[0].To)
	assert.Equal(t, "alice", h.room.Host)

	payload := events[0].Payload.(map[string]any)
	token := payload["token"].(Token)
	assert.Equal(t, testCode, token.RoomCode)
	assert.Equal(t, "alice", token.PlayerName)
	assert.NotEmpty(t, token.SessionID)

	events = h.join("bob")
	assert.Equal(t, []string{EventRoomJoined, EventPlayerJoined}, eventNames(events))
	assert.Equal(t, "bob", events[1].Except)
	assert.Len(t, h.room.Players, 2)
}

func TestJoinRejections(t *testing.T) {
	h := newHarness(t)
	h.create("alice")
	h.join("bob")

	t.Run("name taken by a connected player", func(t *testing.T) {
		_, err := h.room.Apply(Command{
			Name:     CmdJoinRoom,
			Conn:     "conn-impostor",
			ClientID: "client-impostor",
			Payload:  &JoinRoomPayload{Code: testCode, Name: "bob"},
		})
		assert.ErrorIs(t, err, ErrNameTaken)
	})

	t.Run("joining locked", func(t *testing.T) {
		h.must("alice", CmdAdminToggleRoomJoining, &emptyPayload{})
		assert.True(t, h.room.JoiningLocked)

		h.conns["carol"] = "conn-carol"
		_, err := h.do("carol", CmdJoinRoom, &JoinRoomPayload{Code: testCode, Name: "carol"})
		assert.ErrorIs(t, err, ErrRoomLocked)
		assert.Nil(t, h.room.player("carol"))
	})

	t.Run("locked room still accepts returning players", func(t *testing.T) {
		h.room.Disconnect("bob", h.conns["bob"])

		h.conns["bob"] = "conn-bob-2"
		events := h.must("bob", CmdJoinRoom, &JoinRoomPayload{Code: testCode, Name: "bob"})
		assert.Equal(t, EventRoomRejoined, events[0].Name)
		assert.Equal(t, "conn-bob-2", h.room.player("bob").Conn)
	})
}

func TestTeamSwitchingLock(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})

	h.must("alice", CmdAdminToggleTeamSwitch, &emptyPayload{})

	_, err := h.do("bob", CmdJoinTeam, &JoinTeamPayload{Team: intp(1)})
	assert.ErrorIs(t, err, ErrTeamSwitchingLocked)
	assert.Equal(t, 0, h.room.teamOf("bob"))

	h.startGame("alice", 3)

	h.join("dave")
	events := h.team("dave", 1)
	assert.Contains(t, eventNames(events), EventTeamUpdated)
	assert.Equal(t, 1, h.room.teamOf("dave"), "unassigned players may pick a team mid-game")

	_, err = h.do("dave", CmdJoinTeam, &JoinTeamPayload{Team: intp(0)})
	assert.ErrorIs(t, err, ErrTeamSwitchingLocked)
	assert.Equal(t, 1, h.room.teamOf("dave"))

	h.must("alice", CmdStartTurn, &emptyPayload{})

	events = h.team("dave", 0)
	assert.Equal(t, 0, h.room.teamOf("dave"), "the lock does not apply during an active turn")
	assert.Equal(t, "dave", findEvent(t, events, EventTeamUpdatedMidgame).To)

	h.must("alice", CmdEndTurn, &emptyPayload{})

	_, err = h.do("dave", CmdJoinTeam, &JoinTeamPayload{Team: intp(1)})
	assert.ErrorIs(t, err, ErrTeamSwitchingLocked)
	assert.Equal(t, 0, h.room.teamOf("dave"))
}

func TestMidgameTeamJoinGetsTurnSnapshot(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})
	h.startGame("alice", 3)
	h.must("alice", CmdStartTurn, &emptyPayload{})

	events := h.join("dave")
	assert.Equal(t, EventRoomJoinedMidgame, events[0].Name)

	events = h.team("dave", 1)
	e := findEvent(t, events, EventTeamUpdatedMidgame)
	assert.Equal(t, "dave", e.To)

	turn := e.Payload.(map[string]any)["turn"].(*TurnView)
	require.NotNil(t, turn)
	assert.Len(t, turn.Words, len(testWords()), "the other team sees the words")
}

func TestKick(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})

	_, err := h.do("bob", CmdKickPlayer, &KickPayload{Name: "carol"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = h.do("alice", CmdKickPlayer, &KickPayload{Name: "alice"})
	assert.ErrorIs(t, err, ErrInvalidCommand)

	events := h.must("alice", CmdKickPlayer, &KickPayload{Name: "bob", Ban: true})
	assert.Equal(t, EventYouWereKicked, events[0].Name)
	assert.Equal(t, "conn-bob", events[0].Conn)
	assert.Equal(t, EventPlayerKicked, events[1].Name)
	assert.Nil(t, h.room.player("bob"))
	assert.Empty(t, h.room.Teams[0].Players[1:])

	_, err = h.do("bob", CmdJoinRoom, &JoinRoomPayload{Code: testCode, Name: "bobby"})
	assert.ErrorIs(t, err, ErrBanned, "bans follow the client id, not the name")

	_, err = h.do("bob", CmdLeaveGame, &emptyPayload{})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestHostFailover(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})
	h.must("alice", CmdToggleCoAdmin, &CoAdminPayload{Name: "bob"})
	require.True(t, h.room.player("bob").CoAdmin)

	events := h.must("alice", CmdLeaveGame, &emptyPayload{})
	assert.Equal(t, []string{EventYouLeftGame, EventPlayerLeft, EventHostChanged, EventTeamUpdated}, eventNames(events))
	assert.Equal(t, "bob", h.room.Host)
	assert.False(t, h.room.player("bob").CoAdmin)

	h.must("bob", CmdLeaveGame, &emptyPayload{})
	assert.Equal(t, "carol", h.room.Host)

	h.must("carol", CmdLeaveGame, &emptyPayload{})
	assert.Empty(t, h.room.Players)
	assert.Empty(t, h.room.Host)
}

func TestCoAdminPrivileges(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})

	_, err := h.do("bob", CmdAdminToggleThirdTeam, &emptyPayload{})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	events := h.must("alice", CmdToggleCoAdmin, &CoAdminPayload{Name: "bob"})
	assert.Equal(t, EventMadeCoAdmin, events[0].Name)

	h.must("bob", CmdAdminToggleThirdTeam, &emptyPayload{})
	assert.Len(t, h.room.Teams, 3)
	assert.Equal(t, "Team 3", h.room.Teams[2].Name)

	_, err = h.do("bob", CmdToggleCoAdmin, &CoAdminPayload{Name: "carol"})
	assert.ErrorIs(t, err, ErrNotAuthorized, "only the host manages co-admins")

	events = h.must("alice", CmdToggleCoAdmin, &CoAdminPayload{Name: "bob"})
	assert.Equal(t, EventRemovedCoAdmin, events[0].Name)
}

func TestLobbyOnlyTeamCommands(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol", "dave"})

	h.must("alice", CmdAdminRandomizeTeams, &emptyPayload{})
	total := 0
	for _, team := range h.room.Teams {
		assert.Len(t, team.Players, 2)
		total += len(team.Players)
	}
	assert.Equal(t, 4, total)

	h.must("alice", CmdRenameTeam, &RenameTeamPayload{Team: intp(0), Name: "Rockets"})
	assert.Equal(t, "Rockets", h.room.Teams[0].Name)

	_, err := h.do("alice", CmdRenameTeam, &RenameTeamPayload{Team: intp(1), Name: "Rockets"})
	assert.ErrorIs(t, err, ErrInvalidCommand)

	h.startGame("alice", 3)

	_, err = h.do("alice", CmdAdminRandomizeTeams, &emptyPayload{})
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = h.do("alice", CmdAdminToggleThirdTeam, &emptyPayload{})
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestTabooSettings(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})

	_, err := h.do("alice", CmdSetTabooSettings, &TabooSettingsPayload{Reporting: boolp(false), Voting: boolp(true)})
	assert.ErrorIs(t, err, ErrInvalidCommand)

	_, err = h.do("carol", CmdSetTabooSettings, &TabooSettingsPayload{Reporting: boolp(true), Voting: boolp(true)})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	events := h.must("alice", CmdSetTabooSettings, &TabooSettingsPayload{Reporting: boolp(true), Voting: boolp(true)})
	assert.Equal(t, EventGameStateUpdated, events[0].Name)
	assert.True(t, h.room.TabooReporting)
	assert.True(t, h.room.TabooVoting)
}

func TestCommandsFromStaleConnectionsAreRejected(t *testing.T) {
	h := newHarness(t)
	h.lobby([]string{"alice", "bob"}, []string{"carol"})

	_, err := h.room.Apply(Command{Name: CmdLeaveGame, Player: "bob", Conn: "conn-old", Payload: &emptyPayload{}})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.NotNil(t, h.room.player("bob"))
}
