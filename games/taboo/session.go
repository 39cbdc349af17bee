/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package taboo

import "time"

// Phase is the state of the turn engine while a game is running. A room
// with no Session is in the lobby.
type Phase string

const (
	PhaseTurnStart  Phase = "turn-start"
	PhaseTurnActive Phase = "turn-active"
	PhaseTurnEnd    Phase = "turn-end"
)

// Guess is one entry of a turn's guess ledger.
type Guess struct {
	Player    string `json:"player"`
	Guess     string `json:"guess"`
	Word      string `json:"word,omitempty"`
	Points    int    `json:"points"`
	Partial   bool   `json:"partial,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type Contribution struct {
	Points         int `json:"points"`
	WordsGuessed   int `json:"wordsGuessed"`
	WordsDescribed int `json:"wordsDescribed"`
}

type TabooStatus string

const (
	TabooPending   TabooStatus = "pending"
	TabooConfirmed TabooStatus = "confirmed"
	TabooDismissed TabooStatus = "dismissed"
)

type TabooEntry struct {
	ID        int         `json:"id"`
	Word      string      `json:"word"`
	Points    int         `json:"points"`
	Status    TabooStatus `json:"status"`
	Reporters []string    `json:"reporters"`
}

// TurnRecord is the round-history entry for one turn.
type TurnRecord struct {
	Round     int           `json:"round"`
	Team      int           `json:"team"`
	Describer string        `json:"describer"`
	Guessed   []Guess       `json:"guessed"`
	Wrong     []Guess       `json:"wrong"`
	Taboos    []*TabooEntry `json:"taboos"`
	Abandoned bool          `json:"abandoned,omitempty"`
}

// Session is one played game within a room.
type Session struct {
	id uint64

	Phase          Phase
	CurrentTeam    int
	DescriberIndex []int
	TurnsCompleted []int
	Round          int
	MaxRounds      int
	TurnTime       time.Duration
	TimeRemaining  time.Duration
	Describer      string

	CurrentWords       []Word
	GuessedWords       []string
	CurrentTurnGuessed []Guess
	WrongGuesses       []Guess
	GuessedByPlayer    map[string][]string

	Contributions   map[string]*Contribution
	ConfirmedTaboos map[int][]string
	Pending         []*PendingTaboo
	History         []*TurnRecord

	turn        *TurnRecord
	turnGen     uint64
	ticker      Stopper
	bonusDraws  int
	nextTabooID int
}

func newSession(id uint64, teams, maxRounds int, turnTime time.Duration) *Session {
	return &Session{
		id:              id,
		Phase:           PhaseTurnStart,
		DescriberIndex:  make([]int, teams),
		TurnsCompleted:  make([]int, teams),
		Round:           1,
		MaxRounds:       maxRounds,
		TurnTime:        turnTime,
		GuessedByPlayer: make(map[string][]string),
		Contributions:   make(map[string]*Contribution),
		ConfirmedTaboos: make(map[int][]string),
	}
}

func (s *Session) contribution(name string) *Contribution {
	c, ok := s.Contributions[name]
	if !ok {
		c = &Contribution{}
		s.Contributions[name] = c
	}
	return c
}

// uniqueGuessed counts the words credited in the current turn.
func (s *Session) uniqueGuessed() int {
	n := 0
	for _, g := range s.CurrentTurnGuessed {
		if !g.Duplicate {
			n++
		}
	}
	return n
}

func (s *Session) stopTimers() {
	stop(s.ticker)
	s.ticker = nil
	s.turnGen++
	for _, p := range s.Pending {
		stop(p.timer)
		p.timer = nil
	}
}

// fileTurn copies the turn's ledgers into its record and appends it to the
// round history.
func (s *Session) fileTurn() {
	s.turn.Guessed = append([]Guess{}, s.CurrentTurnGuessed...)
	s.turn.Wrong = append([]Guess{}, s.WrongGuesses...)
	s.History = append(s.History, s.turn)
}
