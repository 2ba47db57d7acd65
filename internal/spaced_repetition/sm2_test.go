package spaced_repetition

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/example/lingualisten/pkg/models"
)

const easeTolerance = 1e-9

func easeEqual(a, b float64) bool {
	return math.Abs(a-b) < easeTolerance
}

func TestComputeSchedule(t *testing.T) {
	tests := []struct {
		rating       Rating
		interval     int
		ease         float64
		wantInterval int
		wantEase     float64
	}{
		{Easy, 1, 2.5, 4, 2.6},
		{Easy, 10, 2.5, 34, 2.6},
		{Easy, 10, 1.3, 19, 1.4},
		{Easy, 0, 2.5, 1, 2.6},
		{Good, 1, 2.5, 3, 2.5},
		{Good, 2, 2.5, 5, 2.5},
		{Good, 4, 1.3, 6, 1.3},
		{Good, 0, 2.5, 1, 2.5},
		{Hard, 5, 2.5, 1, 2.18},
		{Hard, 3, 1.5, 1, 1.3},
		{Again, 10, 2.5, 1, 1.7},
		{Again, 3, 1.3, 1, 1.3},
		// accuracy scores fed as ease
		{Good, 1, 80, 80, 80},
		{Again, 7, 80, 1, 79.2},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s/%d/%.2f", tt.rating, tt.interval, tt.ease)
		t.Run(name, func(t *testing.T) {
			got := ComputeSchedule(tt.rating, tt.interval, tt.ease)
			if got.IntervalDays != tt.wantInterval {
				t.Errorf("interval = %d, want %d", got.IntervalDays, tt.wantInterval)
			}
			if !easeEqual(got.EaseFactor, tt.wantEase) {
				t.Errorf("ease = %v, want %v", got.EaseFactor, tt.wantEase)
			}
		})
	}
}

func TestComputeScheduleGrid(t *testing.T) {
	intervals := []int{0, 1, 2, 3, 7, 30, 365}
	eases := []float64{1.3, 1.5, 2.0, 2.5, 3.0, 50, 100}

	for _, ivl := range intervals {
		for _, ease := range eases {
			byRating := make(map[Rating]RepetitionSchedule)
			for _, r := range Ratings {
				s := ComputeSchedule(r, ivl, ease)
				byRating[r] = s

				if s.EaseFactor < MinEaseFactor {
					t.Errorf("%s/%d/%v: ease %v below minimum", r, ivl, ease, s.EaseFactor)
				}
				if s.IntervalDays < MinIntervalDays {
					t.Errorf("%s/%d/%v: interval %d below minimum", r, ivl, ease, s.IntervalDays)
				}
				if r.Quality() < PassThreshold && s.IntervalDays != 1 {
					t.Errorf("%s/%d/%v: failed recall should reset interval, got %d", r, ivl, ease, s.IntervalDays)
				}
				if r.Quality() >= PassThreshold && ivl >= 1 && s.IntervalDays < ivl {
					t.Errorf("%s/%d/%v: interval shrank to %d", r, ivl, ease, s.IntervalDays)
				}
			}

			if byRating[Easy].IntervalDays < byRating[Good].IntervalDays {
				t.Errorf("%d/%v: easy interval %d shorter than good %d", ivl, ease,
					byRating[Easy].IntervalDays, byRating[Good].IntervalDays)
			}
			if !(byRating[Easy].EaseFactor > byRating[Good].EaseFactor) {
				t.Errorf("%d/%v: easy should raise ease above good", ivl, ease)
			}
			if byRating[Good].EaseFactor < byRating[Hard].EaseFactor || byRating[Hard].EaseFactor < byRating[Again].EaseFactor {
				t.Errorf("%d/%v: ease not monotonic in rating", ivl, ease)
			}
		}
	}
}

func TestComputeScheduleAgainAlwaysOneDay(t *testing.T) {
	for i := 1; i <= 1000; i++ {
		if got := ComputeSchedule(Again, i, 2.5).IntervalDays; got != 1 {
			t.Fatalf("Again with interval %d gave %d", i, got)
		}
	}
}

func TestComputeScheduleIsDeterministic(t *testing.T) {
	a := ComputeSchedule(Good, 6, 2.1)
	b := ComputeSchedule(Good, 6, 2.1)
	if a != b {
		t.Fatalf("same input produced %+v and %+v", a, b)
	}
}

func TestRatingMappings(t *testing.T) {
	tests := []struct {
		rating   Rating
		quality  QualityResponse
		accuracy float64
	}{
		{Again, 0, 0},
		{Hard, 2, 50},
		{Good, 4, 80},
		{Easy, 5, 100},
	}
	for _, tt := range tests {
		if q := tt.rating.Quality(); q != tt.quality {
			t.Errorf("%s quality = %d, want %d", tt.rating, q, tt.quality)
		}
		if a := tt.rating.AccuracySample(); a != tt.accuracy {
			t.Errorf("%s accuracy = %v, want %v", tt.rating, a, tt.accuracy)
		}
	}
}

func TestParseRating(t *testing.T) {
	for _, in := range []string{"easy", "E", "4", " Easy "} {
		r, err := ParseRating(in)
		if err != nil || r != Easy {
			t.Errorf("ParseRating(%q) = %v, %v", in, r, err)
		}
	}
	if _, err := ParseRating("perfect"); err == nil {
		t.Error("expected error for unknown rating")
	}
	if Rating(7).Valid() {
		t.Error("rating 7 should be invalid")
	}
}

func TestPriorEase(t *testing.T) {
	if got := PriorEase(models.LearningRecord{}); got != DefaultEaseFactor {
		t.Errorf("empty record ease = %v", got)
	}
	if got := PriorEase(models.LearningRecord{AccuracyScore: 65}); got != 65 {
		t.Errorf("scored record ease = %v", got)
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{"never practiced", nil, true},
		{"13 hours ago", at(13 * time.Hour), true},
		{"exactly 12 hours ago", at(12 * time.Hour), true},
		{"1 hour ago", at(time.Hour), false},
		{"just now", at(0), false},
	}
	for _, tt := range tests {
		rec := models.LearningRecord{LastPracticedAt: tt.last}
		if got := IsDue(rec, now, DefaultDueAfter); got != tt.want {
			t.Errorf("%s: IsDue = %v, want %v", tt.name, got, tt.want)
		}
	}
}
