/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CodeAlphabet omits characters that are easily confused when read aloud
// or off a screen.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const CodeLength = 5

// Transport is the connection layer the registry delivers events through.
// Send receives an encoded Event. Bind and Unbind keep the transport's record
// of which room and player a connection speaks for.
type Transport interface {
	Send(conn string, msg []byte)
	Bind(conn, code, name string)
	Unbind(conn, code string)
}

// Conn describes the connection a command arrived on, as the transport
// currently knows it.
type Conn struct {
	ID       string
	ClientID string
	Room     string
	Player   string
}

// Summary is the public, unauthenticated view of a room.
type Summary struct {
	Code          string `json:"code"`
	Players       int    `json:"players"`
	Connected     int    `json:"connected"`
	Teams         int    `json:"teams"`
	InGame        bool   `json:"inGame"`
	Phase         Phase  `json:"phase,omitempty"`
	Round         int    `json:"round,omitempty"`
	MaxRounds     int    `json:"maxRounds,omitempty"`
	JoiningLocked bool   `json:"joiningLocked"`
	GamesPlayed   int    `json:"gamesPlayed"`
}

// Registry owns every live room and routes commands to them. Each room is
// driven by its own goroutine, so commands for one room never interleave
// while different rooms proceed in parallel.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*actor

	settings  Settings
	transport Transport
	words     func() WordSupply

	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry starts a registry. words is called once per room so every
// room tracks its own used words.
func NewRegistry(settings Settings, transport Transport, words func() WordSupply) *Registry {
	reg := &Registry{
		rooms:     make(map[string]*actor),
		settings:  settings,
		transport: transport,
		words:     words,
		done:      make(chan struct{}),
	}

	if settings.IdleTimeout > 0 {
		go reg.reaperLoop()
	}

	return reg
}

// Dispatch validates a raw command and hands it to the room it addresses.
// Rejections are sent back to the originating connection.
func (reg *Registry) Dispatch(c Conn, name string, raw json.RawMessage) {
	payload, err := ParsePayload(name, raw)
	if err != nil {
		reg.reject(c.ID, err)
		return
	}

	cmd := Command{
		Name:     name,
		Player:   c.Player,
		Conn:     c.ID,
		ClientID: c.ClientID,
		Payload:  payload,
	}

	var a *actor

	switch p := payload.(type) {
	case *CreateRoomPayload:
		reg.leaveCurrent(c, "")
		a, err = reg.spawn()
	case *JoinRoomPayload:
		reg.leaveCurrent(c, p.Code)
		if a = reg.lookup(p.Code); a == nil {
			err = ErrRoomNotFound
		}
	case *ReconnectPayload:
		reg.leaveCurrent(c, p.Code)
		if a = reg.lookup(p.Code); a == nil {
			err = ErrReconnectFailed
		}
	default:
		if c.Room == "" || c.Player == "" {
			err = ErrNotAuthorized
		} else if a = reg.lookup(c.Room); a == nil {
			err = ErrRoomNotFound
		}
	}

	if err != nil {
		reg.reject(c.ID, err)
		return
	}

	if !a.post(message{cmd: &cmd}) {
		reg.reject(c.ID, roomGone(name))
	}
}

// roomGone is the rejection for a command whose room closed under it.
func roomGone(name string) error {
	if name == CmdReconnectSession {
		return ErrReconnectFailed
	}
	return ErrRoomNotFound
}

// Disconnect reports that a connection went away. The player it was bound
// to is kept for the grace period.
func (reg *Registry) Disconnect(c Conn) {
	if c.Room == "" || c.Player == "" {
		return
	}
	if a := reg.lookup(c.Room); a != nil {
		a.post(message{disconnect: &c})
	}
}

// leaveCurrent detaches c from the room it is bound to before it addresses
// a different one.
func (reg *Registry) leaveCurrent(c Conn, next string) {
	if c.Room != "" && c.Room != next {
		reg.Disconnect(c)
	}
}

// Summary reports on a live room.
func (reg *Registry) Summary(ctx context.Context, code string) (Summary, error) {
	a := reg.lookup(NormalizeCode(code))
	if a == nil {
		return Summary{}, ErrRoomNotFound
	}

	reply := make(chan Summary, 1)
	if !a.post(message{query: reply}) {
		return Summary{}, ErrRoomNotFound
	}

	select {
	case s := <-reply:
		return s, nil
	case <-a.done:
		return Summary{}, ErrRoomNotFound
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.rooms)
}

// Close stops the reaper and shuts down every room.
func (reg *Registry) Close() {
	reg.closeOnce.Do(func() {
		close(reg.done)

		reg.mu.Lock()
		actors := make([]*actor, 0, len(reg.rooms))
		for code, a := range reg.rooms {
			actors = append(actors, a)
			delete(reg.rooms, code)
		}
		reg.mu.Unlock()

		for _, a := range actors {
			a.close()
		}
	})
}

func (reg *Registry) reject(conn string, err error) {
	zap.S().Debugw("command rejected", "conn", conn, "error", err)
	reg.send(conn, ErrorEvent(conn, err))
}

func (reg *Registry) send(conn string, e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		zap.S().Errorw("encoding event", "conn", conn, "event", e.Name, "error", err)
		return
	}
	reg.transport.Send(conn, msg)
}

func (reg *Registry) lookup(code string) *actor {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return reg.rooms[code]
}

// spawn registers an empty room under a fresh code and starts its actor.
func (reg *Registry) spawn() (*actor, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	select {
	case <-reg.done:
		return nil, ErrRoomNotFound
	default:
	}

	code, err := reg.newCodeLocked()
	if err != nil {
		return nil, err
	}

	a := newActor(reg, code)
	reg.rooms[code] = a
	go a.run()

	return a, nil
}

func (reg *Registry) newCodeLocked() (string, error) {
	buf := make([]byte, CodeLength)
	for {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		out := make([]byte, CodeLength)
		for i := range out {
			out[i] = CodeAlphabet[int(buf[i])%len(CodeAlphabet)]
		}
		code := string(out)

		if _, exists := reg.rooms[code]; !exists {
			return code, nil
		}
	}
}

// remove drops a from the registry if it is still the actor for its code.
func (reg *Registry) remove(a *actor) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.rooms[a.code] == a {
		delete(reg.rooms, a.code)
	}
}

func (reg *Registry) reaperLoop() {
	ticker := time.NewTicker(reg.settings.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-reg.done:
			return
		case <-ticker.C:
			reg.reap(time.Now().Add(-reg.settings.IdleTimeout))
		}
	}
}

// reap closes every room with no activity since cutoff.
func (reg *Registry) reap(cutoff time.Time) {
	reg.mu.Lock()
	var idle []*actor
	for code, a := range reg.rooms {
		if time.Unix(0, a.lastActive.Load()).Before(cutoff) {
			idle = append(idle, a)
			delete(reg.rooms, code)
		}
	}
	reg.mu.Unlock()

	for _, a := range idle {
		zap.S().Infow("reaping idle room", "room", a.code)
		a.close()
	}
}
