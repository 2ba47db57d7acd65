package scheduler

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/example/lingualisten/internal/content"
	"github.com/go-co-op/gocron"
)

// Default settings for reminders
const (
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 20
	DefaultRefreshInterval   = time.Hour
)

// jobTimeout bounds a single run of a scheduled job
const jobTimeout = time.Minute

// Notifier delivers a reminder that reviews are due
type Notifier interface {
	SendReminder(ctx context.Context, userID string, dueCount int) error
}

// Refresher revalidates the content store
type Refresher interface {
	Refresh(ctx context.Context) (*content.Generation, error)
}

// DueCounter counts due reviews per user
type DueCounter interface {
	DueCounts(ctx context.Context, now time.Time, dueAfter time.Duration) (map[string]int, error)
}

// Config holds job settings
type Config struct {
	RefreshInterval   time.Duration
	ReminderStartHour int
	ReminderEndHour   int
	DueAfter          time.Duration
	Logger            *log.Logger
	Now               func() time.Time
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	config    Config
	refresher Refresher
	due       DueCounter
	notifier  Notifier
	log       *log.Logger
	now       func() time.Time
}

// New creates a new scheduler instance. Any collaborator may be nil, in
// which case its job is not scheduled.
func New(config Config, refresher Refresher, due DueCounter, notifier Notifier) *Scheduler {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    config,
		refresher: refresher,
		due:       due,
		notifier:  notifier,
		log:       config.Logger,
		now:       config.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.refresher != nil {
		// content is loaded at startup, so wait for the first interval
		_, err := s.scheduler.Every(s.config.RefreshInterval).WaitForSchedule().SingletonMode().Do(s.refreshContent)
		if err != nil {
			return fmt.Errorf("failed to schedule content refresh: %w", err)
		}
	}

	if s.due != nil && s.notifier != nil {
		_, err := s.scheduler.Every(1).Hour().SingletonMode().Do(s.checkAndSendReminders)
		if err != nil {
			return fmt.Errorf("failed to schedule reminders: %w", err)
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) refreshContent() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	g, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.log.Warn("scheduled content refresh failed", "err", err)
		return
	}
	s.log.Debug("scheduled content refresh finished", "generation", g.ID, "items", g.Len())
}

func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.SendReminders(ctx); err != nil {
		s.log.Error("failed to send reminders", "err", err)
	}
}

// InReminderWindow reports whether hour lies within the configured window
func (s *Scheduler) InReminderWindow(hour int) bool {
	return hour >= s.config.ReminderStartHour && hour <= s.config.ReminderEndHour
}

// SendReminders notifies every user with due reviews and returns how many
// reminders were delivered. Nothing is sent outside the reminder window.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	if !s.InReminderWindow(now.Hour()) {
		s.log.Debug("outside reminder hours, skipping",
			"hour", now.Hour(),
			"start", s.config.ReminderStartHour,
			"end", s.config.ReminderEndHour)
		return 0, nil
	}

	counts, err := s.due.DueCounts(ctx, now, s.config.DueAfter)
	if err != nil {
		return 0, err
	}

	users := make([]string, 0, len(counts))
	for userID, n := range counts {
		if n > 0 {
			users = append(users, userID)
		}
	}
	sort.Strings(users)

	sent := 0
	for _, userID := range users {
		if err := s.notifier.SendReminder(ctx, userID, counts[userID]); err != nil {
			s.log.Warn("failed to send reminder", "user", userID, "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// RunManualCheck sends a reminder to one user if anything is due
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) error {
	counts, err := s.due.DueCounts(ctx, s.now(), s.config.DueAfter)
	if err != nil {
		return err
	}
	if n := counts[userID]; n > 0 {
		return s.notifier.SendReminder(ctx, userID, n)
	}
	return nil
}
