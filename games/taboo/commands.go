/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Inbound command names.
const (
	CmdCreateRoom              = "create-room"
	CmdJoinRoom                = "join-room"
	CmdReconnectSession        = "reconnect-session"
	CmdJoinTeam                = "join-team"
	CmdStartGame               = "start-game"
	CmdStartTurn               = "start-turn"
	CmdWordGuessed             = "word-guessed"
	CmdWrongGuess              = "wrong-guess"
	CmdEndTurn                 = "end-turn"
	CmdSkipTurn                = "skip-turn"
	CmdSkipGuesserTurn         = "skip-guesser-turn"
	CmdNextTurn                = "next-turn"
	CmdReportTaboo             = "report-taboo"
	CmdRoundEndTabooVote       = "round-end-taboo-vote"
	CmdKickPlayer              = "kick-player"
	CmdSetDescriber            = "set-describer"
	CmdToggleCoAdmin           = "toggle-co-admin"
	CmdAdminSkipTurn           = "admin-skip-turn"
	CmdAdminEndGame            = "admin-end-game"
	CmdAdminToggleTeamSwitch   = "admin-toggle-team-switching"
	CmdAdminToggleRoomJoining  = "admin-toggle-room-joining"
	CmdAdminToggleThirdTeam    = "admin-toggle-third-team"
	CmdAdminRandomizeTeams     = "admin-randomize-teams"
	CmdSetTabooSettings        = "set-taboo-settings"
	CmdRenameTeam              = "rename-team"
	CmdTimerUpdate             = "timer-update"
	CmdLeaveGame               = "leave-game"
)

// Command is a validated client action addressed to one room. Player and
// Conn are bound by the transport and are never read from the payload.
type Command struct {
	Name     string
	Player   string
	Conn     string
	ClientID string
	Payload  any
}

type CreateRoomPayload struct {
	Name string `json:"name" validate:"required,max=24"`
}

type JoinRoomPayload struct {
	Code      string `json:"code" validate:"required,alphanum,len=5"`
	Name      string `json:"name" validate:"required,max=24"`
	SessionID string `json:"sessionId" validate:"omitempty,uuid"`
}

type ReconnectPayload struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Code      string `json:"code" validate:"required,alphanum,len=5"`
	Name      string `json:"name" validate:"required,max=24"`
}

type JoinTeamPayload struct {
	Team *int `json:"team" validate:"required,min=-1,max=2"`
}

type StartGamePayload struct {
	MaxRounds int `json:"maxRounds" validate:"omitempty,min=1,max=20"`
	TurnTime  int `json:"turnTime" validate:"omitempty,min=10,max=300"`
}

type GuessPayload struct {
	Guess string `json:"guess" validate:"required,max=64"`
}

type ReportTabooPayload struct {
	Word string `json:"word" validate:"required,max=64"`
}

type VotePayload struct {
	ID   int   `json:"id" validate:"required,min=1"`
	Vote *bool `json:"vote" validate:"required"`
}

type KickPayload struct {
	Name string `json:"name" validate:"required,max=24"`
	Ban  bool   `json:"ban"`
}

type SetDescriberPayload struct {
	Team *int   `json:"team" validate:"required,min=0,max=2"`
	Name string `json:"name" validate:"required,max=24"`
}

type CoAdminPayload struct {
	Name string `json:"name" validate:"required,max=24"`
}

type TabooSettingsPayload struct {
	Reporting *bool `json:"reporting" validate:"required"`
	Voting    *bool `json:"voting" validate:"required"`
}

type RenameTeamPayload struct {
	Team *int   `json:"team" validate:"required,min=0,max=2"`
	Name string `json:"name" validate:"required,max=24"`
}

type emptyPayload struct{}

var schemas = map[string]func() any{
	CmdCreateRoom:             func() any { return &CreateRoomPayload{} },
	CmdJoinRoom:               func() any { return &JoinRoomPayload{} },
	CmdReconnectSession:       func() any { return &ReconnectPayload{} },
	CmdJoinTeam:               func() any { return &JoinTeamPayload{} },
	CmdStartGame:              func() any { return &StartGamePayload{} },
	CmdStartTurn:              func() any { return &emptyPayload{} },
	CmdWordGuessed:            func() any { return &GuessPayload{} },
	CmdWrongGuess:             func() any { return &GuessPayload{} },
	CmdEndTurn:                func() any { return &emptyPayload{} },
	CmdSkipTurn:               func() any { return &emptyPayload{} },
	CmdSkipGuesserTurn:        func() any { return &emptyPayload{} },
	CmdNextTurn:               func() any { return &emptyPayload{} },
	CmdReportTaboo:            func() any { return &ReportTabooPayload{} },
	CmdRoundEndTabooVote:      func() any { return &VotePayload{} },
	CmdKickPlayer:             func() any { return &KickPayload{} },
	CmdSetDescriber:           func() any { return &SetDescriberPayload{} },
	CmdToggleCoAdmin:          func() any { return &CoAdminPayload{} },
	CmdAdminSkipTurn:          func() any { return &emptyPayload{} },
	CmdAdminEndGame:           func() any { return &emptyPayload{} },
	CmdAdminToggleTeamSwitch:  func() any { return &emptyPayload{} },
	CmdAdminToggleRoomJoining: func() any { return &emptyPayload{} },
	CmdAdminToggleThirdTeam:   func() any { return &emptyPayload{} },
	CmdAdminRandomizeTeams:    func() any { return &emptyPayload{} },
	CmdSetTabooSettings:       func() any { return &TabooSettingsPayload{} },
	CmdRenameTeam:             func() any { return &RenameTeamPayload{} },
	CmdTimerUpdate:            func() any { return &emptyPayload{} },
	CmdLeaveGame:              func() any { return &emptyPayload{} },
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParsePayload decodes and validates the payload for the named command.
func ParsePayload(name string, raw json.RawMessage) (any, error) {
	newPayload, ok := schemas[name]
	if !ok {
		return nil, reject(CodeInvalidCommand, "unknown command %q", name)
	}

	payload := newPayload()
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, payload); err != nil {
			return nil, reject(CodeInvalidCommand, "malformed %s payload", name)
		}
	}

	normalizePayload(payload)

	if err := validate.Struct(payload); err != nil {
		return nil, reject(CodeInvalidCommand, "invalid %s payload: %v", name, err)
	}

	return payload, nil
}

func normalizePayload(payload any) {
	switch p := payload.(type) {
	case *CreateRoomPayload:
		p.Name = strings.TrimSpace(p.Name)
	case *JoinRoomPayload:
		p.Code = NormalizeCode(p.Code)
		p.Name = strings.TrimSpace(p.Name)
	case *ReconnectPayload:
		p.Code = NormalizeCode(p.Code)
		p.Name = strings.TrimSpace(p.Name)
	case *KickPayload:
		p.Name = strings.TrimSpace(p.Name)
	case *SetDescriberPayload:
		p.Name = strings.TrimSpace(p.Name)
	case *CoAdminPayload:
		p.Name = strings.TrimSpace(p.Name)
	case *RenameTeamPayload:
		p.Name = strings.TrimSpace(p.Name)
	}
}

// NormalizeCode upper-cases a room code and strips surrounding space.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
