/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type message struct {
	cmd        *Command
	timer      *Timer
	disconnect *Conn
	query      chan<- Summary
}

// actor is the single goroutine that owns a Room. Everything that touches
// the room, including its own timers, arrives through inbox.
type actor struct {
	code string
	room *Room
	reg  *Registry

	inbox   chan message
	stop    chan struct{}
	closing chan struct{}
	done    chan struct{}
	once    sync.Once

	mu     sync.RWMutex
	exited bool

	lastActive atomic.Int64

	// bound mirrors the connection bindings last reported to the transport.
	bound map[string]string
}

func newActor(reg *Registry, code string) *actor {
	a := &actor{
		code:  code,
		reg:   reg,
		inbox:   make(chan message, 32),
		stop:    make(chan struct{}),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		bound:   make(map[string]string),
	}
	a.room = NewRoom(code, reg.settings, reg.words(), a, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	a.lastActive.Store(time.Now().UnixNano())

	return a
}

// Schedule arms a timer that is delivered back through the inbox, so the
// room sees it serialized with its commands.
func (a *actor) Schedule(d time.Duration, t Timer) Stopper {
	return time.AfterFunc(d, func() {
		a.post(message{timer: &t})
	})
}

// post queues m for the actor. It reports false once the room is gone; a
// message it accepted is always either handled or answered by exit.
func (a *actor) post(m message) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.exited {
		return false
	}

	select {
	case a.inbox <- m:
		return true
	case <-a.closing:
		return false
	}
}

func (a *actor) close() {
	a.once.Do(func() {
		close(a.stop)
	})
}

func (a *actor) run() {
	defer close(a.done)

	for {
		select {
		case <-a.stop:
			a.exit(true)
			return
		case m := <-a.inbox:
			if a.handle(m) {
				a.reg.remove(a)
				a.exit(false)
				return
			}
		}
	}
}

// exit stops accepting messages, turns away commands still queued and
// releases the room.
func (a *actor) exit(reaped bool) {
	close(a.closing)

	a.mu.Lock()
	a.exited = true
	a.mu.Unlock()

	for {
		select {
		case m := <-a.inbox:
			if m.cmd != nil {
				a.reg.send(m.cmd.Conn, ErrorEvent(m.cmd.Conn, roomGone(m.cmd.Name)))
			}
		default:
			a.shutdown(reaped)
			return
		}
	}
}

// handle applies one message and reports whether the room emptied.
func (a *actor) handle(m message) bool {
	var events []Event

	switch {
	case m.cmd != nil:
		a.lastActive.Store(time.Now().UnixNano())

		var err error
		events, err = a.room.Apply(*m.cmd)
		if err != nil {
			zap.S().Debugw("command rejected", "room", a.code, "command", m.cmd.Name, "player", m.cmd.Player, "error", err)
			a.reg.send(m.cmd.Conn, ErrorEvent(m.cmd.Conn, err))
		}
	case m.timer != nil:
		events = a.room.Fire(*m.timer)
	case m.disconnect != nil:
		a.lastActive.Store(time.Now().UnixNano())
		events = a.room.Disconnect(m.disconnect.Player, m.disconnect.ID)
	case m.query != nil:
		m.query <- a.summary()
		return false
	}

	a.syncBindings()
	a.deliver(events)

	return len(a.room.Players) == 0
}

// syncBindings reports connection changes since the last message to the
// transport.
func (a *actor) syncBindings() {
	current := make(map[string]string, len(a.room.Players))
	for _, p := range a.room.Players {
		if p.Connected() {
			current[p.Conn] = p.Name
		}
	}

	for conn, name := range a.bound {
		if current[conn] != name {
			a.reg.transport.Unbind(conn, a.code)
		}
	}
	for conn, name := range current {
		if a.bound[conn] != name {
			a.reg.transport.Bind(conn, a.code, name)
		}
	}

	a.bound = current
}

// deliver encodes each event once, here on the room's goroutine, so what a
// connection receives is the state as of this message.
func (a *actor) deliver(events []Event) {
	send := a.reg.transport.Send

	for _, e := range events {
		msg, err := json.Marshal(e)
		if err != nil {
			zap.S().Errorw("encoding event", "room", a.code, "event", e.Name, "error", err)
			continue
		}

		switch {
		case e.Conn != "":
			send(e.Conn, msg)
		case e.To != "":
			if p := a.room.player(e.To); p != nil && p.Connected() {
				send(p.Conn, msg)
			}
		default:
			for _, p := range a.room.Players {
				if p.Connected() && p.Name != e.Except {
					send(p.Conn, msg)
				}
			}
		}
	}
}

// shutdown releases the room's timers and connections. A room closed from
// outside tells its remaining members it is gone.
func (a *actor) shutdown(notify bool) {
	if notify {
		for conn := range a.bound {
			a.reg.send(conn, ErrorEvent(conn, ErrRoomNotFound))
		}
	}
	for conn := range a.bound {
		a.reg.transport.Unbind(conn, a.code)
	}
	a.bound = nil

	a.room.shutdown()

	zap.S().Infow("room closed", "room", a.code, "reaped", notify)
}

func (a *actor) summary() Summary {
	r := a.room
	s := Summary{
		Code:          r.Code,
		Players:       len(r.Players),
		Connected:     r.connectedCount(),
		Teams:         len(r.Teams),
		InGame:        r.Game != nil,
		JoiningLocked: r.JoiningLocked,
		GamesPlayed:   r.GamesPlayed,
	}
	if r.Game != nil {
		s.Phase = r.Game.Phase
		s.Round = r.Game.Round
		s.MaxRounds = r.Game.MaxRounds
	}
	return s
}
