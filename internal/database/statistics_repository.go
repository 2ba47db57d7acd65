package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lingualisten/pkg/models"
	"github.com/jmoiron/sqlx"
)

// An item counts as mastered after this many practices at this accuracy
const (
	MasteredMinPractices = 5
	MasteredMinAccuracy  = 80
)

// StatisticsRepository aggregates learning records
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// GetUserStatistics returns statistics about a user's progress
func (r *StatisticsRepository) GetUserStatistics(ctx context.Context, userID string, now time.Time, dueAfter time.Duration) (*models.UserStatistics, error) {
	stats := models.UserStatistics{UserID: userID}

	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS practiced_items,
			COALESCE(SUM(practice_count), 0) AS total_practices,
			COALESCE(AVG(accuracy_score), 0) AS average_accuracy,
			COALESCE(SUM(CASE WHEN practice_count >= ? AND accuracy_score >= ? THEN 1 ELSE 0 END), 0) AS mastered_items
		FROM learning_records
		WHERE user_id = ?
	`)
	if err := r.db.GetContext(ctx, &stats, query, MasteredMinPractices, MasteredMinAccuracy, userID); err != nil {
		return nil, fmt.Errorf("failed to get user statistics: %w", err)
	}

	due, err := r.DueCounts(ctx, now, dueAfter)
	if err != nil {
		return nil, err
	}
	stats.DueItems = due[userID]

	return &stats, nil
}

// DueCounts returns, per user, how many practiced items are due for review.
// Elapsed time is evaluated in Go so both drivers agree on timestamp semantics.
func (r *StatisticsRepository) DueCounts(ctx context.Context, now time.Time, dueAfter time.Duration) (map[string]int, error) {
	var rows []struct {
		UserID          string     `db:"user_id"`
		LastPracticedAt *time.Time `db:"last_practiced_at"`
	}
	err := r.db.SelectContext(ctx, &rows,
		"SELECT user_id, last_practiced_at FROM learning_records WHERE last_practiced_at IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to get due items: %w", err)
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if now.Sub(*row.LastPracticedAt) >= dueAfter {
			counts[row.UserID]++
		}
	}
	return counts, nil
}
