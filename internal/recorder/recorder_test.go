package recorder

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"surveillance/internal/display"
	"surveillance/internal/logger"
)

// fakeSink records the calls a session makes against its video output.
type fakeSink struct {
	mu       sync.Mutex
	calls    []string
	opened   []string
	overlays []string
	writes   int
	closed   int
}

func (s *fakeSink) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "open")
	s.opened = append(s.opened, path)
	return nil
}

func (s *fakeSink) WriteFrame(gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	return nil
}

func (s *fakeSink) SetOverlayText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = append(s.overlays, text)
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "close")
	s.closed++
	return nil
}

func (s *fakeSink) overlayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.overlays)
}

// fakeEnsurer records ensure calls interleaved with the sink's call log.
type fakeEnsurer struct {
	sink    *fakeSink
	err     error
	actives []string
}

func (e *fakeEnsurer) Ensure(active string) error {
	if e.err != nil {
		return e.err
	}
	e.actives = append(e.actives, active)
	if e.sink != nil {
		e.sink.mu.Lock()
		e.sink.calls = append(e.sink.calls, "ensure")
		e.sink.mu.Unlock()
	}
	return nil
}

func newTestRecorder(t *testing.T, sink *fakeSink, ensurer *fakeEnsurer, rotate bool) *Recorder {
	t.Helper()
	log := logger.New(t.TempDir())
	opts := Options{
		Dir:                t.TempDir(),
		RotateHourly:       rotate,
		AnnotationInterval: 10 * time.Millisecond,
	}
	return New(sink, ensurer, nil, display.Null{}, nil, opts, log)
}

func TestStart_EnsuresSpaceBeforeOpeningFile(t *testing.T) {
	sink := &fakeSink{}
	rec := newTestRecorder(t, sink, &fakeEnsurer{sink: sink}, false)

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer rec.Stop()

	if len(sink.calls) < 2 || sink.calls[0] != "ensure" || sink.calls[1] != "open" {
		t.Errorf("Expected ensure before open, got call order %v", sink.calls)
	}
}

func TestStart_WhileOpenIsInvalid(t *testing.T) {
	sink := &fakeSink{}
	rec := newTestRecorder(t, sink, &fakeEnsurer{}, false)

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer rec.Stop()

	if err := rec.Start(); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("Expected ErrSessionOpen, got %v", err)
	}
	if len(sink.opened) != 1 {
		t.Errorf("Expected exactly one open file, got %d", len(sink.opened))
	}
}

func TestStop_WithoutSessionIsInvalid(t *testing.T) {
	rec := newTestRecorder(t, &fakeSink{}, &fakeEnsurer{}, false)

	if err := rec.Stop(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
}

func TestStart_AbortsWhenSpaceCannotBeReclaimed(t *testing.T) {
	sink := &fakeSink{}
	ensurer := &fakeEnsurer{err: errors.New("not enough free space and no evictable files remain")}
	rec := newTestRecorder(t, sink, ensurer, false)

	if err := rec.Start(); err == nil {
		t.Fatal("Expected Start to fail when space cannot be reclaimed")
	}
	if rec.Recording() {
		t.Error("No session should be open after an aborted start")
	}
	if len(sink.opened) != 0 {
		t.Errorf("No file should be opened, got %v", sink.opened)
	}
}

func TestWriteFrame_NoOpWhenClosed(t *testing.T) {
	sink := &fakeSink{}
	rec := newTestRecorder(t, sink, &fakeEnsurer{}, false)

	var frame gocv.Mat
	if err := rec.WriteFrame(frame); err != nil {
		t.Fatalf("WriteFrame on closed recorder failed: %v", err)
	}
	if sink.writes != 0 {
		t.Errorf("Expected no writes, got %d", sink.writes)
	}
}

func TestAnnotation_StopsWithSession(t *testing.T) {
	sink := &fakeSink{}
	rec := newTestRecorder(t, sink, &fakeEnsurer{}, false)

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if sink.overlayCount() < 2 {
		t.Errorf("Expected annotation refreshes while recording, got %d overlay updates", sink.overlayCount())
	}

	if err := rec.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// A previously-armed annotation firing after Stop must be a silent no-op.
	before := sink.overlayCount()
	rec.annotate()
	if sink.overlayCount() != before {
		t.Error("Annotation fired against a closed session")
	}
}

func TestRotate_ChainsIntoNextSession(t *testing.T) {
	sink := &fakeSink{}
	ensurer := &fakeEnsurer{}
	rec := newTestRecorder(t, sink, ensurer, true)

	current := time.Date(2025, 3, 1, 14, 37, 10, 0, time.Local)
	rec.now = func() time.Time { return current }

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer rec.Stop()

	current = time.Date(2025, 3, 1, 15, 0, 0, 0, time.Local)
	rec.rotate()

	if sink.closed != 1 {
		t.Errorf("Expected the first file closed once, got %d", sink.closed)
	}
	if len(sink.opened) != 2 {
		t.Fatalf("Expected a second file opened, got %d", len(sink.opened))
	}
	if !rec.Recording() {
		t.Error("Recorder should still be recording after rotation")
	}
	// Rotation reclaims space while the old file is still open and protected.
	if len(ensurer.actives) != 2 || ensurer.actives[1] == "" {
		t.Errorf("Expected rotation to protect the active file, got %v", ensurer.actives)
	}
}

func TestRotate_AfterStopIsNoOp(t *testing.T) {
	sink := &fakeSink{}
	rec := newTestRecorder(t, sink, &fakeEnsurer{}, true)

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := rec.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	rec.rotate()
	if len(sink.opened) != 1 {
		t.Errorf("Rotation after stop must not open a new file, got %d opens", len(sink.opened))
	}
}

func TestUntilNextHour(t *testing.T) {
	tests := []struct {
		hour, min, sec int
		expected       time.Duration
	}{
		{14, 37, 10, 1370 * time.Second},
		{14, 0, 0, 3600 * time.Second},
		{23, 59, 59, 1 * time.Second},
		{8, 59, 0, 60 * time.Second},
	}

	for _, tt := range tests {
		at := time.Date(2025, 3, 1, tt.hour, tt.min, tt.sec, 0, time.Local)
		if got := untilNextHour(at); got != tt.expected {
			t.Errorf("untilNextHour(%02d:%02d:%02d) = %v, expected %v", tt.hour, tt.min, tt.sec, got, tt.expected)
		}
	}
}

func TestFilenames_SortChronologically(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 1, 2, 8, 15, 0, 0, time.Local),
		time.Date(2025, 1, 2, 9, 30, 45, 0, time.Local),
		time.Date(2025, 1, 2, 16, 5, 12, 0, time.Local),
		time.Date(2025, 1, 3, 7, 0, 0, 0, time.Local),
		time.Date(2025, 2, 10, 18, 59, 59, 0, time.Local),
	}

	names := make([]string, len(times))
	for i, at := range times {
		names[i] = at.Format(filenameLayout) + fileExt
	}

	if !sort.StringsAreSorted(names) {
		t.Errorf("Filenames are not in lexical order: %v", names)
	}
}
