/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "fmt"

// Code is the machine-readable reason a command was rejected.
type Code string

const (
	CodeRoomNotFound        Code = "ROOM_NOT_FOUND"
	CodeRoomLocked          Code = "ROOM_LOCKED"
	CodeTeamSwitchingLocked Code = "TEAM_SWITCHING_LOCKED"
	CodeNotAuthorized       Code = "NOT_AUTHORIZED"
	CodeGuessRejected       Code = "GUESS_REJECTED"
	CodeReconnectFailed     Code = "RECONNECT_FAILED"
	CodeInvalidCommand      Code = "INVALID_COMMAND"
	CodeInvalidPhase        Code = "INVALID_PHASE"
	CodeNameTaken           Code = "NAME_TAKEN"
	CodeBanned              Code = "BANNED"
	CodeVoteRejected        Code = "VOTE_REJECTED"
)

// Error is a rejection local to one command. It never accompanies a
// partial state change.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrRoomNotFound        = &Error{Code: CodeRoomNotFound, Message: "room not found"}
	ErrRoomLocked          = &Error{Code: CodeRoomLocked, Message: "the room is locked; no new players may join"}
	ErrTeamSwitchingLocked = &Error{Code: CodeTeamSwitchingLocked, Message: "team switching is locked"}
	ErrNotAuthorized       = &Error{Code: CodeNotAuthorized, Message: "not authorized"}
	ErrGuessRejected       = &Error{Code: CodeGuessRejected, Message: "guess rejected"}
	ErrReconnectFailed     = &Error{Code: CodeReconnectFailed, Message: "no matching session"}
	ErrInvalidCommand      = &Error{Code: CodeInvalidCommand, Message: "invalid command"}
	ErrInvalidPhase        = &Error{Code: CodeInvalidPhase, Message: "not allowed right now"}
	ErrNameTaken           = &Error{Code: CodeNameTaken, Message: "that name is already taken"}
	ErrBanned              = &Error{Code: CodeBanned, Message: "you have been banned from this room"}
	ErrVoteRejected        = &Error{Code: CodeVoteRejected, Message: "vote rejected"}
)

func reject(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
