package models

import "time"

// ActivityKind describes what the user did with an item
type ActivityKind string

const (
	ActivityPractice ActivityKind = "practice"
	ActivityLookup   ActivityKind = "lookup"
)

// ActivityEvent is one entry of the user's activity log
type ActivityEvent struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Kind      ActivityKind `json:"kind" db:"kind"`
	ItemID    string       `json:"item_id" db:"item_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
