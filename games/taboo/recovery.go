/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "go.uber.org/zap"

// Token is the session identity handed to a client on join and presented
// again on reconnect.
type Token struct {
	SessionID  string `json:"sessionId"`
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

func (r *Room) token(p *Player) Token {
	return Token{SessionID: p.SessionID, RoomCode: r.Code, PlayerName: p.Name}
}

// reconnect rebinds a player presenting a token issued by this room. Unlike
// a rejoin through join-room the player keeps their team.
func (r *Room) reconnect(cmd Command, rp *ReconnectPayload) ([]Event, error) {
	if rp.Code != r.Code {
		return nil, ErrReconnectFailed
	}

	p := r.player(rp.Name)
	if p == nil || p.SessionID != rp.SessionID {
		return nil, ErrReconnectFailed
	}

	r.rebind(p, cmd.Conn)
	if cmd.ClientID != "" {
		p.ClientID = cmd.ClientID
	}

	zap.S().Infow("player reconnected", "room", r.Code, "player", p.Name)

	return []Event{
		directed(p.Name, EventReconnectSuccess, map[string]any{
			"token":    r.token(p),
			"snapshot": r.snapshot(p.Name),
		}),
		broadcastExcept(p.Name, EventPlayerReconnected, map[string]string{"name": p.Name}),
	}, nil
}

// Disconnect marks the player bound to conn unreachable and arms the grace
// timer. A connection that was already superseded is ignored.
func (r *Room) Disconnect(name, conn string) []Event {
	p := r.player(name)
	if p == nil || p.Conn == "" || p.Conn != conn {
		return nil
	}

	p.Conn = ""
	p.graceGen++
	stop(p.grace)
	p.grace = r.timers.Schedule(r.settings.GracePeriod, Timer{Kind: TimerGrace, Gen: p.graceGen, Player: p.Name})

	zap.S().Debugw("player disconnected", "room", r.Code, "player", p.Name, "grace", r.settings.GracePeriod)

	return []Event{broadcast(EventPlayerDisconnected, map[string]string{"name": p.Name})}
}

func (r *Room) graceExpired(t Timer) []Event {
	p := r.player(t.Player)
	if p == nil || p.Connected() || p.graceGen != t.Gen {
		return nil
	}
	p.grace = nil

	zap.S().Infow("grace period expired", "room", r.Code, "player", p.Name)

	return r.removePlayer(p, broadcast(EventPlayerLeft, map[string]string{"name": p.Name, "reason": "timeout"}))
}
