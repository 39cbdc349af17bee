/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "time"

type TimerKind string

const (
	TimerTick  TimerKind = "tick"
	TimerVote  TimerKind = "vote"
	TimerGrace TimerKind = "grace"
)

// Timer is delivered back to the owning room when it fires. Gen must match
// the generation the room armed it with, otherwise the firing is stale and
// ignored.
type Timer struct {
	Kind   TimerKind
	Gen    uint64
	ID     int
	Player string
}

type Stopper interface {
	Stop() bool
}

// Scheduler arms timers on behalf of a room.
type Scheduler interface {
	Schedule(d time.Duration, t Timer) Stopper
}

func stop(s Stopper) {
	if s != nil {
		s.Stop()
	}
}
