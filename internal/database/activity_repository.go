package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lingualisten/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MaxRecentActivity bounds the recent activity listing
const MaxRecentActivity = 20

// ActivityRepository handles database operations for the activity log
type ActivityRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewActivityRepository creates a new repository instance
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp events
func (r *ActivityRepository) WithClock(now func() time.Time) *ActivityRepository {
	r.now = now
	return r
}

// LogActivity appends an event to the user's activity log
func (r *ActivityRepository) LogActivity(ctx context.Context, userID string, kind models.ActivityKind, itemID string) error {
	query := r.db.Rebind(`
		INSERT INTO activity_log (id, user_id, kind, item_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, string(kind), itemID, r.now())
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// Recent returns the user's latest events, newest first
func (r *ActivityRepository) Recent(ctx context.Context, userID string, limit int) ([]models.ActivityEvent, error) {
	if limit <= 0 || limit > MaxRecentActivity {
		limit = MaxRecentActivity
	}

	events := []models.ActivityEvent{}
	query := r.db.Rebind(`
		SELECT id, user_id, kind, item_id, created_at
		FROM activity_log
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &events, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	return events, nil
}
