/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

// Outbound event names.
const (
	EventRoomCreated         = "room-created"
	EventRoomJoined          = "room-joined"
	EventRoomJoinedMidgame   = "room-joined-midgame"
	EventRoomRejoined        = "room-rejoined"
	EventReconnectSuccess    = "reconnect-success"
	EventReconnectFailed     = "reconnect-failed"
	EventPlayerJoined        = "player-joined"
	EventPlayerJoinedMidgame = "player-joined-midgame"
	EventPlayerLeft          = "player-left"
	EventPlayerReconnected   = "player-reconnected"
	EventPlayerDisconnected  = "player-disconnected"
	EventHostChanged         = "host-changed"
	EventTeamUpdated         = "team-updated"
	EventTeamUpdatedMidgame  = "team-updated-midgame"
	EventGameStarted         = "game-started"
	EventGameStateUpdated    = "game-state-updated"
	EventTurnStarted         = "turn-started"
	EventWordGuessedSync     = "word-guessed-sync"
	EventWrongGuessSync      = "wrong-guess-sync"
	EventBonusWordsSync      = "bonus-words-sync"
	EventTurnEnded           = "turn-ended"
	EventNextTurnSync        = "next-turn-sync"
	EventDescriberSkipped    = "describer-skipped"
	EventDescriberChanged    = "describer-changed"
	EventDescriberLeft       = "describer-left"
	EventTeamEmptySkip       = "team-empty-skip"
	EventTabooVoteSync       = "taboo-vote-sync"
	EventTabooVotingStart    = "taboo-voting-start"
	EventRoundEndVoteSync    = "round-end-vote-sync"
	EventTabooVotingComplete = "taboo-voting-complete"
	EventGameOver            = "game-over"
	EventPlayerKicked        = "player-kicked"
	EventYouWereKicked       = "you-were-kicked"
	EventYouLeftGame         = "you-left-game"
	EventMadeCoAdmin         = "made-co-admin"
	EventRemovedCoAdmin      = "removed-co-admin"
	EventRoomJoiningLocked   = "room-joining-locked"
	EventTeamSwitchingLocked = "team-switching-locked"
	EventTimerSync           = "timer-sync"
	EventError               = "error"
)

// Event is one outbound message. With no addressing fields set it goes to
// every connected member of the room.
type Event struct {
	Name    string `json:"type"`
	Payload any    `json:"payload,omitempty"`

	// To addresses a single member by name.
	To string `json:"-"`
	// Except skips one member of a broadcast.
	Except string `json:"-"`
	// Conn addresses a raw connection, for callers outside the roster.
	Conn string `json:"-"`
}

func broadcast(name string, payload any) Event {
	return Event{Name: name, Payload: payload}
}

func broadcastExcept(except, name string, payload any) Event {
	return Event{Name: name, Payload: payload, Except: except}
}

func directed(to, name string, payload any) Event {
	return Event{Name: name, Payload: payload, To: to}
}

func toConn(conn, name string, payload any) Event {
	return Event{Name: name, Payload: payload, Conn: conn}
}

// ErrorEvent renders a rejection for the connection that caused it.
func ErrorEvent(conn string, err error) Event {
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Code: CodeInvalidCommand, Message: err.Error()}
	}
	if e.Code == CodeReconnectFailed {
		return toConn(conn, EventReconnectFailed, e)
	}
	return toConn(conn, EventError, e)
}
