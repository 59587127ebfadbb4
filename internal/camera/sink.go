package camera

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// Codec and overlay geometry for recorded files.
const (
	fourCC         = "MJPG"
	overlayPadding = 4
	overlayHeight  = 22
)

// FileSink writes frames to a video file and burns the current overlay text
// into the top of every frame.
type FileSink struct {
	fps    float64
	width  int
	height int

	mu      sync.Mutex
	writer  *gocv.VideoWriter
	overlay string
}

// NewFileSink creates a sink producing files with the given geometry.
func NewFileSink(width, height int, fps float64) *FileSink {
	return &FileSink{
		fps:    fps,
		width:  width,
		height: height,
	}
}

// Open creates the target video file. A sink holds at most one open file.
func (s *FileSink) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writer, err := gocv.VideoWriterFile(path, fourCC, s.fps, s.width, s.height, true)
	if err != nil {
		return fmt.Errorf("failed to open video file %s: %w", path, err)
	}

	s.writer = writer
	return nil
}

// WriteFrame draws the overlay onto the frame and appends it to the file.
func (s *FileSink) WriteFrame(frame gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return nil
	}

	if s.overlay != "" {
		// Black banner behind the text so it stays readable on any scene.
		banner := image.Rect(0, 0, frame.Cols(), overlayHeight)
		gocv.Rectangle(&frame, banner, color.RGBA{0, 0, 0, 0}, -1)
		gocv.PutText(&frame, s.overlay, image.Pt(overlayPadding, overlayHeight-overlayPadding-2),
			gocv.FontHersheySimplex, 0.5, color.RGBA{255, 255, 255, 0}, 1)
	}

	return s.writer.Write(frame)
}

// SetOverlayText replaces the text burned into subsequent frames.
func (s *FileSink) SetOverlayText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = text
}

// Close finalizes the current file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return nil
	}
	err := s.writer.Close()
	s.writer = nil
	return err
}
