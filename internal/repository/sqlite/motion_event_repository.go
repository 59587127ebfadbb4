package sqlite

import (
	"fmt"

	"surveillance/internal/model"
)

// MotionEventRepository implements repository.MotionEventRepository for SQLite.
type MotionEventRepository struct {
	db *DB
}

// NewMotionEventRepository creates a new SQLite motion event repository.
func NewMotionEventRepository(db *DB) *MotionEventRepository {
	return &MotionEventRepository{db: db}
}

// InsertBatch adds motion events in a single transaction.
func (r *MotionEventRepository) InsertBatch(events []model.MotionEvent) error {
	if len(events) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO motion_events (recording_id, detected_at, x, y, width, height, area)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.RecordingID, ev.DetectedAt, ev.X, ev.Y, ev.Width, ev.Height, ev.Area); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert motion event: %w", err)
		}
	}

	return tx.Commit()
}

// GetByRecordingID retrieves all motion events for a recording, oldest first.
func (r *MotionEventRepository) GetByRecordingID(recordingID string) ([]model.MotionEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, recording_id, detected_at, x, y, width, height, area
		FROM motion_events WHERE recording_id = ?
		ORDER BY detected_at ASC
	`, recordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query motion events: %w", err)
	}
	defer rows.Close()

	var events []model.MotionEvent
	for rows.Next() {
		var ev model.MotionEvent
		if err := rows.Scan(&ev.ID, &ev.RecordingID, &ev.DetectedAt, &ev.X, &ev.Y, &ev.Width, &ev.Height, &ev.Area); err != nil {
			return nil, fmt.Errorf("failed to scan motion event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
