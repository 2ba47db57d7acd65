package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lingualisten/pkg/models"
	"github.com/jmoiron/sqlx"
)

// LearningRecordRepository handles database operations for learning records
type LearningRecordRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewLearningRecordRepository creates a new repository instance
func NewLearningRecordRepository(db *sqlx.DB) *LearningRecordRepository {
	return &LearningRecordRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp practice times
func (r *LearningRecordRepository) WithClock(now func() time.Time) *LearningRecordRepository {
	r.now = now
	return r
}

const selectLearningRecord = `
	SELECT user_id, item_id, practice_count, accuracy_score, last_practiced_at
	FROM learning_records`

// GetLearned returns every learning record of a user
func (r *LearningRecordRepository) GetLearned(ctx context.Context, userID string) ([]models.LearningRecord, error) {
	records := []models.LearningRecord{}
	query := r.db.Rebind(selectLearningRecord + " WHERE user_id = ? ORDER BY item_id")
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get learning records: %w", err)
	}
	return records, nil
}

// Get returns the record for one user and item
func (r *LearningRecordRepository) Get(ctx context.Context, userID, itemID string) (*models.LearningRecord, error) {
	var record models.LearningRecord
	query := r.db.Rebind(selectLearningRecord + " WHERE user_id = ? AND item_id = ?")
	if err := r.db.GetContext(ctx, &record, query, userID, itemID); err != nil {
		return nil, fmt.Errorf("failed to get learning record: %w", err)
	}
	return &record, nil
}

// MarkPracticed upserts the record for a rating. The first practice creates
// the record with the sample as its accuracy; later ones increment the count
// and average the stored accuracy with the sample.
func (r *LearningRecordRepository) MarkPracticed(ctx context.Context, userID, itemID string, accuracySample float64) (models.LearningRecord, error) {
	sample := clampAccuracy(accuracySample)
	practicedAt := r.now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.LearningRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := tx.Rebind(`
		INSERT INTO learning_records (user_id, item_id, practice_count, accuracy_score, last_practiced_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			practice_count = learning_records.practice_count + 1,
			accuracy_score = (learning_records.accuracy_score + excluded.accuracy_score) / 2,
			last_practiced_at = excluded.last_practiced_at
	`)
	if _, err := tx.ExecContext(ctx, upsert, userID, itemID, sample, practicedAt); err != nil {
		return models.LearningRecord{}, fmt.Errorf("failed to upsert learning record: %w", err)
	}

	// SQLite can't scan RETURNING columns as timestamps, so read the row back
	var record models.LearningRecord
	query := tx.Rebind(selectLearningRecord + " WHERE user_id = ? AND item_id = ?")
	if err := tx.GetContext(ctx, &record, query, userID, itemID); err != nil {
		return models.LearningRecord{}, fmt.Errorf("failed to read learning record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.LearningRecord{}, fmt.Errorf("failed to commit learning record: %w", err)
	}
	return record, nil
}

// Delete removes a learning record
func (r *LearningRecordRepository) Delete(ctx context.Context, userID, itemID string) error {
	query := r.db.Rebind("DELETE FROM learning_records WHERE user_id = ? AND item_id = ?")
	if _, err := r.db.ExecContext(ctx, query, userID, itemID); err != nil {
		return fmt.Errorf("failed to delete learning record: %w", err)
	}
	return nil
}

func clampAccuracy(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
