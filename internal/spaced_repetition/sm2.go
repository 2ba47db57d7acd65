package spaced_repetition

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/example/lingualisten/pkg/models"
)

// Scheduling constants of the SuperMemo-2 variant used by review sessions
const (
	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5
	MinIntervalDays   = 1
	// Extra growth applied to the interval when the user rates a card Easy
	EasyBonus = 1.3
	// Ratings below this quality reset the interval
	PassThreshold = 3
)

// Rating is the user's recall rating for a card
type Rating int

const (
	Again Rating = iota
	Hard
	Good
	Easy
)

// Ratings lists all ratings from worst to best
var Ratings = []Rating{Again, Hard, Good, Easy}

// QualityResponse represents the quality of response in SM-2 (0-5)
type QualityResponse int

// Quality maps a rating onto the SM-2 quality scale
func (r Rating) Quality() QualityResponse {
	switch r {
	case Hard:
		return 2
	case Good:
		return 4
	case Easy:
		return 5
	default:
		return 0
	}
}

// AccuracySample is the accuracy percentage implied by a rating
func (r Rating) AccuracySample() float64 {
	switch r {
	case Easy:
		return 100
	case Good:
		return 80
	case Hard:
		return 50
	default:
		return 0
	}
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}

// Valid reports whether r is one of the four known ratings
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// ParseRating accepts a rating name, its first letter or its 1-based position
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again", "a", "1":
		return Again, nil
	case "hard", "h", "2":
		return Hard, nil
	case "good", "g", "3":
		return Good, nil
	case "easy", "e", "4":
		return Easy, nil
	}
	return Again, fmt.Errorf("unknown rating %q", s)
}

// RepetitionSchedule is the outcome of scheduling one rating
type RepetitionSchedule struct {
	IntervalDays int     `json:"interval_days"`
	EaseFactor   float64 `json:"ease_factor"`
}

// ComputeSchedule calculates the next interval and ease factor for a rating.
// It has no side effects.
func ComputeSchedule(rating Rating, previousIntervalDays int, previousEase float64) RepetitionSchedule {
	q := float64(rating.Quality())

	newEase := previousEase + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if newEase < MinEaseFactor {
		newEase = MinEaseFactor
	}

	newInterval := MinIntervalDays
	if rating.Quality() >= PassThreshold {
		bonus := 1.0
		if rating == Easy {
			bonus = EasyBonus
		}
		newInterval = int(math.Ceil(float64(previousIntervalDays) * newEase * bonus))
	}
	if newInterval < MinIntervalDays {
		newInterval = MinIntervalDays
	}

	return RepetitionSchedule{IntervalDays: newInterval, EaseFactor: newEase}
}

// PriorEase returns the ease to feed into ComputeSchedule for a record.
// Records without a score use DefaultEaseFactor.
func PriorEase(record models.LearningRecord) float64 {
	if record.AccuracyScore == 0 {
		return DefaultEaseFactor
	}
	return record.AccuracyScore
}

// IsDue reports whether a record is eligible for review at now.
// Items never practiced are always due.
func IsDue(record models.LearningRecord, now time.Time, dueAfter time.Duration) bool {
	if record.LastPracticedAt == nil {
		return true
	}
	return now.Sub(*record.LastPracticedAt) >= dueAfter
}
