package repository

import (
	"time"

	"surveillance/internal/model"
)

// RecordingRepository defines the interface for the recording index.
type RecordingRepository interface {
	// Create operations
	Insert(rec *model.Recording) error

	// Read operations
	GetByID(id string) (*model.Recording, error)
	GetByFilename(filename string) (*model.Recording, error)
	GetAll() ([]model.Recording, error)
	GetOpen() (*model.Recording, error)
	Count() (int, error)

	// Update operations
	Finish(id string, stoppedAt time.Time) error

	// Delete operations
	DeleteByFilename(filename string) error
}

// MotionEventRepository defines the interface for motion event storage.
type MotionEventRepository interface {
	InsertBatch(events []model.MotionEvent) error
	GetByRecordingID(recordingID string) ([]model.MotionEvent, error)
}
