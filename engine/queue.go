package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/models"
)

// WinningScore ends a match early regardless of the clock
// (golden-goal-to-2 rule).
const WinningScore = 2

var (
	ErrSessionOver     = errors.New("play session is over")
	ErrMatchNotRunning = errors.New("no match currently running")
	ErrSelfAssist      = errors.New("assist player must differ from scorer")
	ErrUnknownTeam     = errors.New("team is not on the field")
)

// Side identifies one of the two teams currently on the field.
type Side int

const (
	SideA Side = iota
	SideB
)

// MatchResult describes a finished match and the state of the queue
// after rotation.
type MatchResult struct {
	TeamA   string
	TeamB   string
	ScoreA  int
	ScoreB  int
	Outcome models.MatchOutcome

	// Expired is true when the match ended because its clock ran out,
	// as opposed to a golden goal or an override.
	Expired bool

	// SessionOver is true when fewer than two teams remain queued.
	SessionOver bool
	NextA       string
	NextB       string
}

// SessionState is the read-only projection handed to the UI layer.
type SessionState struct {
	SessionID        uuid.UUID `json:"session_id"`
	BabaID           int       `json:"baba_id"`
	TeamA            string    `json:"team_a"`
	TeamB            string    `json:"team_b"`
	ScoreA           int       `json:"score_a"`
	ScoreB           int       `json:"score_b"`
	Running          bool      `json:"running"`
	Finished         bool      `json:"finished"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Queue            []string  `json:"queue"`
}

// Session runs the winner-stays queue over the teams of one draw.
//
// Timing uses an absolute end timestamp: remaining time is computed
// from the clock on every read, never decremented per tick, so
// pause/resume cycles cannot drift.
type Session struct {
	id       uuid.UUID
	babaID   int
	clock    clockwork.Clock
	duration time.Duration

	mu        sync.Mutex
	queue     []models.Team
	scoreA    int
	scoreB    int
	running   bool
	endsAt    time.Time     // valid while running
	remaining time.Duration // valid while paused
	finished  bool
}

// NewSession builds a paused session over the draw's team order. The
// first two queued teams are on the field; call Start to run the clock.
func NewSession(babaID int, teams []models.Team, duration time.Duration, clock clockwork.Clock) (*Session, error) {
	if len(teams) < 2 {
		return nil, errors.New("a session requires at least two teams")
	}
	queue := make([]models.Team, len(teams))
	copy(queue, teams)
	return &Session{
		id:        uuid.New(),
		babaID:    babaID,
		clock:     clock,
		duration:  duration,
		queue:     queue,
		remaining: duration,
	}, nil
}

func (s *Session) ID() uuid.UUID { return s.id }

// Start runs (or resumes) the match clock. Idempotent.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.finished {
		return
	}
	s.endsAt = s.clock.Now().Add(s.remaining)
	s.running = true
}

// Pause freezes the match clock, capturing the exact remainder.
// Idempotent.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.finished {
		return
	}
	s.remaining = s.endsAt.Sub(s.clock.Now())
	if s.remaining < 0 {
		s.remaining = 0
	}
	s.running = false
}

// Goal records a goal for one of the fielded teams. When the goal
// reaches the winning score the match ends and the queue rotates; the
// returned MatchResult is non-nil in that case.
func (s *Session) Goal(side Side, scorerID int, assistID *int) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return nil, ErrSessionOver
	}
	if !s.running {
		return nil, ErrMatchNotRunning
	}
	if assistID != nil && *assistID == scorerID {
		return nil, ErrSelfAssist
	}

	// The clock ran out before the goal arrived: the match settles on
	// time with the standing score and the goal does not count.
	if !s.clock.Now().Before(s.endsAt) {
		result := s.finishCurrentLocked()
		result.Expired = true
		return result, nil
	}

	switch side {
	case SideA:
		s.scoreA++
	case SideB:
		s.scoreB++
	default:
		return nil, ErrUnknownTeam
	}

	if s.scoreA >= WinningScore || s.scoreB >= WinningScore {
		return s.finishCurrentLocked(), nil
	}
	return nil, nil
}

// CheckTimeout ends the current match if its clock ran out. Safe to
// call from a periodic poll; returns nil while the match is still on.
func (s *Session) CheckTimeout() *MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || !s.running {
		return nil
	}
	if s.clock.Now().Before(s.endsAt) {
		return nil
	}
	result := s.finishCurrentLocked()
	result.Expired = true
	return result
}

// ForceEnd ends the current match immediately with the score as it
// stands (president override).
func (s *Session) ForceEnd() (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return nil, ErrSessionOver
	}
	return s.finishCurrentLocked(), nil
}

// EndSession terminates the whole session; no further matches today.
func (s *Session) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	s.running = false
}

// finishCurrentLocked settles the current match, rotates the queue and
// resets score and clock for the next pairing. Caller holds s.mu.
func (s *Session) finishCurrentLocked() *MatchResult {
	result := &MatchResult{
		TeamA:  s.queue[0].Name,
		TeamB:  s.queue[1].Name,
		ScoreA: s.scoreA,
		ScoreB: s.scoreB,
	}

	switch {
	case s.scoreA > s.scoreB:
		result.Outcome = models.OutcomeTeamAWin
		// Loser (position 1) to the back; winner keeps the field.
		loser := s.queue[1]
		s.queue = append(s.queue[:1], s.queue[2:]...)
		s.queue = append(s.queue, loser)
	case s.scoreB > s.scoreA:
		result.Outcome = models.OutcomeTeamBWin
		loser := s.queue[0]
		s.queue = append(s.queue[1:], loser)
	default:
		result.Outcome = models.OutcomeDraw
		// Both teams lose the pitch.
		a, b := s.queue[0], s.queue[1]
		s.queue = append(s.queue[2:], a, b)
	}

	if len(s.queue) < 2 {
		s.finished = true
		s.running = false
		result.SessionOver = true
		return result
	}

	s.scoreA, s.scoreB = 0, 0
	s.endsAt = s.clock.Now().Add(s.duration)
	s.remaining = s.duration
	result.NextA = s.queue[0].Name
	result.NextB = s.queue[1].Name
	return result
}

// CurrentTeams returns the two teams on the field.
func (s *Session) CurrentTeams() (models.Team, models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue[0], s.queue[1]
}

// TimeRemaining computes how much match time is left.
func (s *Session) TimeRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemainingLocked()
}

func (s *Session) timeRemainingLocked() time.Duration {
	if s.finished {
		return 0
	}
	remaining := s.remaining
	if s.running {
		remaining = s.endsAt.Sub(s.clock.Now())
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Snapshot returns the current session state for read-only consumers.
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionState{
		SessionID:        s.id,
		BabaID:           s.babaID,
		Running:          s.running,
		Finished:         s.finished,
		RemainingSeconds: int(s.timeRemainingLocked().Round(time.Second) / time.Second),
	}
	state.Queue = make([]string, len(s.queue))
	for i, t := range s.queue {
		state.Queue[i] = t.Name
	}
	if len(s.queue) >= 2 {
		state.TeamA = s.queue[0].Name
		state.TeamB = s.queue[1].Name
		state.ScoreA = s.scoreA
		state.ScoreB = s.scoreB
	}
	return state
}
