package models

import "time"

// LearningRecord tracks a user's practice history with a specific item
type LearningRecord struct {
	UserID          string     `json:"user_id" db:"user_id"`
	ItemID          string     `json:"item_id" db:"item_id"`
	PracticeCount   int        `json:"practice_count" db:"practice_count"`       // Number of ratings so far
	AccuracyScore   float64    `json:"accuracy_score" db:"accuracy_score"`       // 0-100, blended on each rating
	LastPracticedAt *time.Time `json:"last_practiced_at" db:"last_practiced_at"` // nil until first rating
}

// IsNew reports whether the item has never been practiced
func (r LearningRecord) IsNew() bool {
	return r.LastPracticedAt == nil
}
