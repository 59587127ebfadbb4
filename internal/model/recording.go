package model

import "time"

// Recording represents one video file produced by the recorder.
type Recording struct {
	ID        string     `json:"id"`
	Filename  string     `json:"filename"`
	FilePath  string     `json:"filepath"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
}

// MotionEvent represents one motion region observed while a recording was open.
type MotionEvent struct {
	ID          int64     `json:"id"`
	RecordingID string    `json:"recording_id"`
	DetectedAt  time.Time `json:"detected_at"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Area        float64   `json:"area"`
}
