/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCode = "ABCDE"

type fakeTimer struct {
	d       time.Duration
	t       Timer
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

// fakeScheduler records armed timers; tests fire them by hand.
type fakeScheduler struct {
	armed []*fakeTimer
}

func (s *fakeScheduler) Schedule(d time.Duration, t Timer) Stopper {
	ft := &fakeTimer{d: d, t: t}
	s.armed = append(s.armed, ft)
	return ft
}

// live returns the timers of kind that have not been stopped.
func (s *fakeScheduler) live(kind TimerKind) []*fakeTimer {
	var out []*fakeTimer
	for _, ft := range s.armed {
		if ft.t.Kind == kind && !ft.stopped {
			out = append(out, ft)
		}
	}
	return out
}

func (s *fakeScheduler) last(kind TimerKind) *fakeTimer {
	for i := len(s.armed) - 1; i >= 0; i-- {
		if s.armed[i].t.Kind == kind {
			return s.armed[i]
		}
	}
	return nil
}

type fakeSupply struct {
	words      []Word
	bonus      []Word
	bonusCalls int
}

func (f *fakeSupply) FetchWords(count int, _ Distribution) []Word {
	return append([]Word{}, f.words[:min(count, len(f.words))]...)
}

func (f *fakeSupply) FetchBonusWords(count int) []Word {
	f.bonusCalls++
	return append([]Word{}, f.bonus[:min(count, len(f.bonus))]...)
}

func testWords() []Word {
	return []Word{
		{Text: "SUN", Difficulty: Easy, Points: 8},
		{Text: "MOON", Difficulty: Easy, Points: 5},
		{Text: "STAR", Difficulty: Easy, Points: 3},
		{Text: "PLANET", Difficulty: Medium, Points: 12},
		{Text: "COMET", Difficulty: Medium, Points: 6},
		{Text: "GALAXY", Difficulty: Medium, Points: 6},
		{Text: "ORBIT", Difficulty: Medium, Points: 6},
		{Text: "PHOTOSYNTHESIS", Difficulty: Hard, Points: 12},
		{Text: "CAFE", Difficulty: Hard, Points: 10},
		{Text: "NEBULA", Difficulty: Hard, Points: 10},
	}
}

type harness struct {
	t      *testing.T
	room   *Room
	timers *fakeScheduler
	supply *fakeSupply
	conns  map[string]string
}

func newHarness(t *testing.T, tweak ...func(*Settings)) *harness {
	t.Helper()

	settings := DefaultSettings()
	for _, fn := range tweak {
		fn(&settings)
	}

	h := &harness{
		t:      t,
		timers: &fakeScheduler{},
		supply: &fakeSupply{
			words: testWords(),
			bonus: []Word{
				{Text: "ASTEROID", Difficulty: Medium, Points: 8},
				{Text: "ECLIPSE", Difficulty: Hard, Points: 12},
			},
		},
		conns: make(map[string]string),
	}
	h.room = NewRoom(testCode, settings, h.supply, h.timers, rand.New(rand.NewPCG(1, 2)))

	return h
}

func (h *harness) do(player, name string, payload any) ([]Event, error) {
	return h.room.Apply(Command{
		Name:     name,
		Player:   player,
		Conn:     h.conns[player],
		ClientID: "client-" + player,
		Payload:  payload,
	})
}

func (h *harness) must(player, name string, payload any) []Event {
	h.t.Helper()

	events, err := h.do(player, name, payload)
	require.NoError(h.t, err, "%s by %s", name, player)
	return events
}

func (h *harness) create(name string) []Event {
	h.t.Helper()

	h.conns[name] = "conn-" + name
	return h.must(name, CmdCreateRoom, &CreateRoomPayload{Name: name})
}

func (h *harness) join(name string) []Event {
	h.t.Helper()

	h.conns[name] = "conn-" + name
	return h.must(name, CmdJoinRoom, &JoinRoomPayload{Code: testCode, Name: name})
}

func (h *harness) team(name string, team int) []Event {
	h.t.Helper()

	return h.must(name, CmdJoinTeam, &JoinTeamPayload{Team: intp(team)})
}

// lobby creates a room hosted by the first member of teams[0] and seats
// every listed player.
func (h *harness) lobby(teams ...[]string) {
	h.t.Helper()

	first := true
	for i, members := range teams {
		for _, name := range members {
			if first {
				h.create(name)
				first = false
			} else {
				h.join(name)
			}
			h.team(name, i)
		}
	}
}

func (h *harness) startGame(host string, rounds int) []Event {
	h.t.Helper()

	return h.must(host, CmdStartGame, &StartGamePayload{MaxRounds: rounds})
}

func (h *harness) guess(player, guess string) []Event {
	h.t.Helper()

	return h.must(player, CmdWordGuessed, &GuessPayload{Guess: guess})
}

func (h *harness) fire(ft *fakeTimer) []Event {
	h.t.Helper()

	require.NotNil(h.t, ft)
	return h.room.Fire(ft.t)
}

func intp(i int) *int {
	return &i
}

func boolp(b bool) *bool {
	return &b
}

func eventNames(events []Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

func countEvents(events []Event, name string) int {
	n := 0
	for _, e := range events {
		if e.Name == name {
			n++
		}
	}
	return n
}

func findEvent(t *testing.T, events []Event, name string) Event {
	t.Helper()

	for _, e := range events {
		if e.Name == name {
			return e
		}
	}
	require.Failf(t, "event not found", "%s not in %v", name, eventNames(events))
	return Event{}
}
