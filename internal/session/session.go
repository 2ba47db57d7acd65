package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/lingualisten/internal/spaced_repetition"
	"github.com/example/lingualisten/pkg/models"
)

// activityTimeout bounds a single background activity write
const activityTimeout = 5 * time.Second

// State of a study session
type State int

const (
	StateLoading State = iota
	StateLoadError
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoadError:
		return "load_error"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Card is one queued item. Flipped is presentation state only.
type Card struct {
	Item    models.Item
	Record  models.LearningRecord
	Flipped bool
}

// Stats aggregates a session's ratings
type Stats struct {
	TotalCards      int
	CardsReviewed   int
	MasteredCount   int
	HardCount       int
	RunningAccuracy float64
	Elapsed         time.Duration
}

// Outcome describes a successful rating
type Outcome struct {
	Card     Card
	Schedule spaced_repetition.RepetitionSchedule
	Record   models.LearningRecord
	Complete bool
}

// Session is a bounded review of one category. Operations on a session are
// serialized; independent sessions may run concurrently.
type Session struct {
	ID       string
	UserID   string
	Category models.Category

	manager *Manager

	mu          sync.Mutex
	state       State
	loadErr     error
	queue       []Card
	pointer     int
	stats       Stats
	accuracySum float64
	startedAt   time.Time

	// closeMu orders Close against new background writes
	closeMu sync.Mutex
	closed  atomic.Bool
	pending sync.WaitGroup
}

func (s *Session) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateLoading
	cards, err := s.manager.buildQueue(ctx, s.UserID, s.Category)
	if s.closed.Load() {
		return ErrClosed
	}
	if err != nil {
		s.state = StateLoadError
		s.loadErr = err
		s.manager.log.Warn("failed to start session", "session", s.ID, "category", s.Category, "err", err)
		return err
	}

	s.loadErr = nil
	s.queue = cards
	s.reset()
	s.manager.log.Info("session started",
		"session", s.ID,
		"user", s.UserID,
		"category", s.Category,
		"cards", len(cards))
	return nil
}

// reset rewinds the queue and zeroes stats; the caller holds mu
func (s *Session) reset() {
	for i := range s.queue {
		s.queue[i].Flipped = false
	}
	s.pointer = 0
	s.stats = Stats{TotalCards: len(s.queue)}
	s.accuracySum = 0
	s.startedAt = s.manager.now()
	s.state = StateActive
	if len(s.queue) == 0 {
		s.state = StateComplete
	}
}

// Retry reloads a session that failed to load
func (s *Session) Retry(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.State() != StateLoadError {
		return fmt.Errorf("cannot retry a session in state %s", s.State())
	}
	return s.load(ctx)
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadErr returns the error of the last failed load
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Stats returns a copy of the session statistics
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Queue returns a copy of the queued cards
func (s *Session) Queue() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card(nil), s.queue...)
}

// Progress is the share of the queue already passed, in percent
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return 100
	}
	return float64(s.pointer) / float64(len(s.queue)) * 100
}

// Current returns the card at the queue pointer
func (s *Session) Current() (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCard(); err != nil {
		return Card{}, err
	}
	return s.queue[s.pointer], nil
}

func (s *Session) requireCard() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.state != StateActive {
		return ErrNotActive
	}
	if s.pointer >= len(s.queue) {
		return ErrNoCard
	}
	return nil
}

// Flip toggles whether the current card shows its answer
func (s *Session) Flip() (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCard(); err != nil {
		return Card{}, err
	}
	s.queue[s.pointer].Flipped = !s.queue[s.pointer].Flipped
	return s.queue[s.pointer], nil
}

// Rate schedules and persists a rating of the current card, then advances.
// When persisting fails the error wraps ErrPersistFailure and nothing changes.
func (s *Session) Rate(ctx context.Context, rating spaced_repetition.Rating) (Outcome, error) {
	if !rating.Valid() {
		return Outcome{}, fmt.Errorf("invalid rating %d", int(rating))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCard(); err != nil {
		return Outcome{}, err
	}

	card := s.queue[s.pointer]
	schedule := spaced_repetition.ComputeSchedule(rating, card.Record.PracticeCount, spaced_repetition.PriorEase(card.Record))
	sample := rating.AccuracySample()

	record, err := s.manager.progress.MarkPracticed(ctx, s.UserID, card.Item.ID, sample)
	if err != nil {
		s.manager.log.Warn("failed to persist rating", "session", s.ID, "item", card.Item.ID, "err", err)
		return Outcome{}, fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}
	if s.closed.Load() {
		return Outcome{}, ErrClosed
	}

	s.logActivity(ctx, card.Item.ID)

	s.stats.CardsReviewed++
	switch rating {
	case spaced_repetition.Easy:
		s.stats.MasteredCount++
	case spaced_repetition.Hard:
		s.stats.HardCount++
	}
	s.accuracySum += sample
	s.stats.RunningAccuracy = s.accuracySum / float64(s.stats.CardsReviewed)
	s.stats.Elapsed = s.manager.now().Sub(s.startedAt)

	s.queue[s.pointer].Record = record
	card = s.queue[s.pointer]
	s.advance()

	s.manager.log.Debug("card rated",
		"session", s.ID,
		"item", card.Item.ID,
		"rating", rating,
		"interval_days", schedule.IntervalDays,
		"ease", schedule.EaseFactor)

	return Outcome{
		Card:     card,
		Schedule: schedule,
		Record:   record,
		Complete: s.state == StateComplete,
	}, nil
}

// Skip advances past the current card without rating it
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCard(); err != nil {
		return err
	}
	s.advance()
	return nil
}

func (s *Session) advance() {
	s.pointer++
	if s.pointer >= len(s.queue) {
		s.state = StateComplete
	}
}

// Restart replays the same queue from the beginning with fresh stats
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrClosed
	}
	if s.state != StateActive && s.state != StateComplete {
		return ErrNotActive
	}
	s.reset()
	return nil
}

func (s *Session) logActivity(ctx context.Context, itemID string) {
	activity := s.manager.activity
	if activity == nil {
		return
	}

	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed.Load() {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityTimeout)
		defer cancel()
		if err := activity.LogActivity(ctx, s.UserID, models.ActivityPractice, itemID); err != nil {
			s.manager.log.Debug("failed to log activity", "item", itemID, "err", err)
		}
	}()
}

// Close marks the session as gone and waits for background writes.
// Results of calls still in flight are discarded.
func (s *Session) Close() {
	s.closeMu.Lock()
	s.closed.Store(true)
	s.closeMu.Unlock()
	s.pending.Wait()
}
