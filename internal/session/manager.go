package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/example/lingualisten/internal/spaced_repetition"
	"github.com/example/lingualisten/pkg/models"
	"github.com/google/uuid"
)

// ContentSource provides the items of a category
type ContentSource interface {
	ByCategory(ctx context.Context, category models.Category) ([]models.Item, error)
}

// ProgressStore reads and writes per-user learning records
type ProgressStore interface {
	GetLearned(ctx context.Context, userID string) ([]models.LearningRecord, error)
	MarkPracticed(ctx context.Context, userID, itemID string, accuracySample float64) (models.LearningRecord, error)
}

// ActivityLogger records user activity; failures never affect a session
type ActivityLogger interface {
	LogActivity(ctx context.Context, userID string, kind models.ActivityKind, itemID string) error
}

// Options tunes session construction
type Options struct {
	Size     int
	DueAfter time.Duration
	Logger   *log.Logger
	Now      func() time.Time
}

// Manager builds study sessions
type Manager struct {
	content  ContentSource
	progress ProgressStore
	activity ActivityLogger
	size     int
	dueAfter time.Duration
	log      *log.Logger
	now      func() time.Time
}

// NewManager creates a session manager. activity may be nil.
func NewManager(content ContentSource, progress ProgressStore, activity ActivityLogger, opts Options) *Manager {
	m := &Manager{
		content:  content,
		progress: progress,
		activity: activity,
		size:     opts.Size,
		dueAfter: opts.DueAfter,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if m.size <= 0 || m.size > spaced_repetition.DefaultSessionSize {
		m.size = spaced_repetition.DefaultSessionSize
	}
	if m.dueAfter <= 0 {
		m.dueAfter = spaced_repetition.DefaultDueAfter
	}
	if m.log == nil {
		m.log = log.New(io.Discard)
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Start builds a session for one user and category. When loading fails the
// session is returned in StateLoadError together with the error, and can be
// retried.
func (m *Manager) Start(ctx context.Context, userID string, category models.Category) (*Session, error) {
	s := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Category: category,
		manager:  m,
		state:    StateLoading,
	}
	err := s.load(ctx)
	return s, err
}

// buildQueue joins content with learning records and applies the due policy
func (m *Manager) buildQueue(ctx context.Context, userID string, category models.Category) ([]Card, error) {
	items, err := m.content.ByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	records, err := m.progress.GetLearned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning records: %w", err)
	}

	candidates := spaced_repetition.JoinRecords(items, records)
	selected := spaced_repetition.SelectDue(candidates, m.now(), m.dueAfter, m.size)

	cards := make([]Card, len(selected))
	for i, c := range selected {
		cards[i] = Card{Item: c.Item, Record: c.Record}
	}
	return cards, nil
}
