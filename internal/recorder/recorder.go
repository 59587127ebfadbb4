package recorder

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"surveillance/internal/display"
	"surveillance/internal/logger"
	"surveillance/internal/model"
	"surveillance/internal/repository"
)

// File naming: sortable date plus 12-hour clock with AM/PM marker, so lexical
// order of filenames equals chronological order. The eviction policy relies
// on this.
const (
	filenameLayout = "2006-01-02_PM_03-04-05"
	fileExt        = ".avi"
	overlayLayout  = "2006-01-02 15:04:05"
)

// These indicate controller logic bugs, not runtime conditions.
var (
	ErrSessionOpen   = errors.New("a recording session is already open")
	ErrSessionClosed = errors.New("no recording session is open")
)

// Sink is the video output capability a session writes to.
type Sink interface {
	Open(path string) error
	WriteFrame(frame gocv.Mat) error
	SetOverlayText(text string)
	Close() error
}

// SpaceEnsurer frees disk space before a new file is created. The active
// argument names the file currently being written, if any, which must never
// be evicted.
type SpaceEnsurer interface {
	Ensure(active string) error
}

// Listener is notified of session boundaries.
type Listener interface {
	RecordingStarted(filename string)
	RecordingStopped(filename string)
}

// session is one open video file.
type session struct {
	id        string
	filename  string
	path      string
	startedAt time.Time
}

// Recorder owns the recording session lifecycle: start, periodic annotation
// refresh, optional hour-boundary rotation, stop. One mutex protects the
// session identity and open flag against the main loop and timer callbacks.
type Recorder struct {
	sink      Sink
	reclaimer SpaceEnsurer
	repo      repository.RecordingRepository
	display   display.StatusDisplay
	listener  Listener
	logger    *logger.Logger

	dir                string
	rotateHourly       bool
	annotationInterval time.Duration

	now func() time.Time

	mu             sync.Mutex
	open           bool
	current        *session
	annotationStop chan struct{}
	rotationTimer  *time.Timer
}

// Options configures a Recorder.
type Options struct {
	Dir                string
	RotateHourly       bool
	AnnotationInterval time.Duration
}

// New creates a Recorder. The repository and listener may be nil.
func New(sink Sink, reclaimer SpaceEnsurer, repo repository.RecordingRepository, disp display.StatusDisplay, listener Listener, opts Options, logger *logger.Logger) *Recorder {
	interval := opts.AnnotationInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Recorder{
		sink:               sink,
		reclaimer:          reclaimer,
		repo:               repo,
		display:            disp,
		listener:           listener,
		logger:             logger,
		dir:                opts.Dir,
		rotateHourly:       opts.RotateHourly,
		annotationInterval: interval,
		now:                time.Now,
	}
}

// Start opens a new recording session. Space is reclaimed first, which blocks
// and may abort the start if the eviction policy cannot be satisfied.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		return ErrSessionOpen
	}
	return r.startLocked(true)
}

// startLocked establishes a session and arms its timers. The session is fully
// set up (file open, flags set) before any timer can observe it. Callers hold
// the mutex.
func (r *Recorder) startLocked(ensureSpace bool) error {
	if ensureSpace {
		if err := r.reclaimer.Ensure(""); err != nil {
			return fmt.Errorf("cannot start recording: %w", err)
		}
	}

	now := r.now()
	filename := now.Format(filenameLayout) + fileExt
	path := filepath.Join(r.dir, filename)

	if err := r.sink.Open(path); err != nil {
		return err
	}
	r.sink.SetOverlayText(now.Format(overlayLayout))

	r.current = &session{
		id:        uuid.NewString(),
		filename:  filename,
		path:      path,
		startedAt: now,
	}
	r.open = true

	if r.repo != nil {
		if err := r.repo.Insert(&model.Recording{
			ID:        r.current.id,
			Filename:  filename,
			FilePath:  path,
			StartedAt: now,
		}); err != nil {
			r.logger.Error("Failed to index recording %s: %v", filename, err)
		}
	}

	r.annotationStop = make(chan struct{})
	go r.annotationLoop(r.annotationStop)

	if r.rotateHourly {
		r.rotationTimer = time.AfterFunc(untilNextHour(now), r.rotate)
	}

	r.logger.Info("Recording started: %s", path)
	r.display.ShowRecording()
	if r.listener != nil {
		r.listener.RecordingStarted(filename)
	}
	return nil
}

// Stop closes the open session, cancelling both timers before the file is
// finalized. Calling Stop with no open session is a contract violation.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return ErrSessionClosed
	}
	r.stopLocked()
	r.display.ShowReady()
	return nil
}

// stopLocked tears down the current session. Callers hold the mutex.
func (r *Recorder) stopLocked() {
	close(r.annotationStop)
	if r.rotationTimer != nil {
		r.rotationTimer.Stop()
		r.rotationTimer = nil
	}

	if err := r.sink.Close(); err != nil {
		r.logger.Error("Failed to close video file %s: %v", r.current.path, err)
	}

	if r.repo != nil {
		if err := r.repo.Finish(r.current.id, r.now()); err != nil {
			r.logger.Error("Failed to finish index entry for %s: %v", r.current.filename, err)
		}
	}

	r.logger.Info("Recording stopped: %s", r.current.path)
	if r.listener != nil {
		r.listener.RecordingStopped(r.current.filename)
	}

	r.open = false
	r.current = nil
}

// rotate fires at an hour boundary: reclaim space while the old file is still
// protected, close it, and chain straight into the next session. A firing
// that races a concurrent Stop observes the closed flag and does nothing.
func (r *Recorder) rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return
	}

	if err := r.reclaimer.Ensure(r.current.filename); err != nil {
		r.logger.Error("Stopping at rotation, space cannot be reclaimed: %v", err)
		r.stopLocked()
		r.display.ShowReady()
		return
	}

	r.stopLocked()
	if err := r.startLocked(false); err != nil {
		r.logger.Error("Failed to start next recording block: %v", err)
		r.display.ShowReady()
	}
}

// WriteFrame appends a frame to the open session; a no-op when closed.
func (r *Recorder) WriteFrame(frame gocv.Mat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return nil
	}
	return r.sink.WriteFrame(frame)
}

// Recording reports whether a session is currently open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

// CurrentRecordingID returns the open session's index ID, or "".
func (r *Recorder) CurrentRecordingID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return ""
	}
	return r.current.id
}

// annotationLoop refreshes the in-frame wall-clock overlay once per interval
// until its stop channel closes. Each firing re-checks the open flag under
// the mutex, so at most one firing can race a teardown and it degrades to a
// no-op.
func (r *Recorder) annotationLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.annotationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.annotate()
		}
	}
}

func (r *Recorder) annotate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return
	}
	r.sink.SetOverlayText(r.now().Format(overlayLayout))
}

// untilNextHour returns the time remaining until the next hour boundary:
// the seconds left in the current minute plus whole minutes left in the hour.
func untilNextHour(t time.Time) time.Duration {
	secs := 60 - t.Second()
	secs += (59 - t.Minute()) * 60
	return time.Duration(secs) * time.Second
}
