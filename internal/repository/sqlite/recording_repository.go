package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"surveillance/internal/model"
)

// RecordingRepository implements repository.RecordingRepository for SQLite.
type RecordingRepository struct {
	db *DB
}

// NewRecordingRepository creates a new SQLite recording repository.
func NewRecordingRepository(db *DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

// Insert adds a new recording record to the database.
func (r *RecordingRepository) Insert(rec *model.Recording) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO recordings (id, filename, filepath, started_at)
		VALUES (?, ?, ?, ?)
	`, rec.ID, rec.Filename, rec.FilePath, rec.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}

	return nil
}

// GetByID retrieves a recording by its ID.
func (r *RecordingRepository) GetByID(id string) (*model.Recording, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.scanOne(r.db.Conn().QueryRow(`
		SELECT id, filename, filepath, started_at, stopped_at
		FROM recordings WHERE id = ?
	`, id))
}

// GetByFilename retrieves a recording by its filename.
func (r *RecordingRepository) GetByFilename(filename string) (*model.Recording, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.scanOne(r.db.Conn().QueryRow(`
		SELECT id, filename, filepath, started_at, stopped_at
		FROM recordings WHERE filename = ?
	`, filename))
}

// GetOpen retrieves the recording that has not been finished yet, if any.
func (r *RecordingRepository) GetOpen() (*model.Recording, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.scanOne(r.db.Conn().QueryRow(`
		SELECT id, filename, filepath, started_at, stopped_at
		FROM recordings WHERE stopped_at IS NULL
		ORDER BY started_at DESC LIMIT 1
	`))
}

// GetAll retrieves all recordings, newest first.
func (r *RecordingRepository) GetAll() ([]model.Recording, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, filename, filepath, started_at, stopped_at
		FROM recordings ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recordings []model.Recording
	for rows.Next() {
		var rec model.Recording
		var stoppedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.FilePath, &rec.StartedAt, &stoppedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		if stoppedAt.Valid {
			rec.StoppedAt = &stoppedAt.Time
		}
		recordings = append(recordings, rec)
	}

	return recordings, rows.Err()
}

// Count returns the total number of recordings.
func (r *RecordingRepository) Count() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM recordings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recordings: %w", err)
	}
	return count, nil
}

// Finish records the stop time of a recording.
func (r *RecordingRepository) Finish(id string, stoppedAt time.Time) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		UPDATE recordings SET stopped_at = ? WHERE id = ?
	`, stoppedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finish recording: %w", err)
	}
	return nil
}

// DeleteByFilename removes a recording record, typically after its file was evicted.
func (r *RecordingRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`DELETE FROM recordings WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	return nil
}

func (r *RecordingRepository) scanOne(row *sql.Row) (*model.Recording, error) {
	var rec model.Recording
	var stoppedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.Filename, &rec.FilePath, &rec.StartedAt, &stoppedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	if stoppedAt.Valid {
		rec.StoppedAt = &stoppedAt.Time
	}
	return &rec, nil
}
