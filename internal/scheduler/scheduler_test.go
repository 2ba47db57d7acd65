package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/lingualisten/internal/content"
)

type staticDue map[string]int

func (d staticDue) DueCounts(context.Context, time.Time, time.Duration) (map[string]int, error) {
	return d, nil
}

type recordingNotifier struct {
	sent []string
	fail map[string]bool
}

func (n *recordingNotifier) SendReminder(_ context.Context, userID string, dueCount int) error {
	if n.fail[userID] {
		return fmt.Errorf("chat not found")
	}
	n.sent = append(n.sent, fmt.Sprintf("%s:%d", userID, dueCount))
	return nil
}

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2024, 5, 1, hour, 30, 0, 0, time.UTC) }
}

func TestSendRemindersInsideWindow(t *testing.T) {
	due := staticDue{"alice": 3, "bob": 0, "carol": 1, "dave": 2}
	notifier := &recordingNotifier{fail: map[string]bool{"dave": true}}
	s := New(Config{ReminderStartHour: 8, ReminderEndHour: 20, Now: at(9)}, nil, due, notifier)

	sent, err := s.SendReminders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 {
		t.Errorf("expected 2 reminders, got %d", sent)
	}
	want := []string{"alice:3", "carol:1"}
	if fmt.Sprint(notifier.sent) != fmt.Sprint(want) {
		t.Errorf("sent %v, want %v", notifier.sent, want)
	}
}

func TestSendRemindersOutsideWindow(t *testing.T) {
	notifier := &recordingNotifier{}
	s := New(Config{ReminderStartHour: 8, ReminderEndHour: 20, Now: at(22)}, nil, staticDue{"alice": 3}, notifier)

	sent, err := s.SendReminders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 0 || len(notifier.sent) != 0 {
		t.Errorf("no reminders expected outside window, got %v", notifier.sent)
	}
}

func TestReminderWindowBounds(t *testing.T) {
	s := New(Config{ReminderStartHour: 8, ReminderEndHour: 20}, nil, nil, nil)
	for hour, want := range map[int]bool{7: false, 8: true, 14: true, 20: true, 21: false} {
		if got := s.InReminderWindow(hour); got != want {
			t.Errorf("InReminderWindow(%d) = %v, want %v", hour, got, want)
		}
	}
}

func TestRunManualCheck(t *testing.T) {
	notifier := &recordingNotifier{}
	s := New(Config{Now: at(3)}, nil, staticDue{"alice": 4}, notifier)

	if err := s.RunManualCheck(context.Background(), "alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.RunManualCheck(context.Background(), "bob"); err != nil {
		t.Fatal(err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != "alice:4" {
		t.Errorf("unexpected reminders %v", notifier.sent)
	}
}

type countingRefresher struct{ calls int }

func (r *countingRefresher) Refresh(context.Context) (*content.Generation, error) {
	r.calls++
	return content.NewGeneration(nil, time.Now()), nil
}

func TestStartStop(t *testing.T) {
	refresher := &countingRefresher{}
	s := New(Config{RefreshInterval: time.Hour}, refresher, staticDue{}, &recordingNotifier{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()

	// the refresh job waits for its first interval
	if refresher.calls != 0 {
		t.Errorf("refresh ran %d times before its interval", refresher.calls)
	}
}
