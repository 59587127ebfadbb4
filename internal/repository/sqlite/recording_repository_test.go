package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"surveillance/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecording(id, filename string, startedAt time.Time) *model.Recording {
	return &model.Recording{
		ID:        id,
		Filename:  filename,
		FilePath:  filepath.Join("/videos", filename),
		StartedAt: startedAt,
	}
}

func TestRecordingRepository_InsertAndGet(t *testing.T) {
	repo := NewRecordingRepository(newTestDB(t))
	startedAt := time.Date(2025, 3, 1, 14, 37, 10, 0, time.UTC)

	rec := sampleRecording("rec-1", "2025-03-01_PM_02-37-10.avi", startedAt)
	if err := repo.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByID("rec-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a recording, got nil")
	}
	if got.Filename != rec.Filename {
		t.Errorf("Expected filename %s, got %s", rec.Filename, got.Filename)
	}
	if got.StoppedAt != nil {
		t.Errorf("Expected open recording, got stopped_at %v", got.StoppedAt)
	}

	byName, err := repo.GetByFilename(rec.Filename)
	if err != nil {
		t.Fatalf("GetByFilename failed: %v", err)
	}
	if byName == nil || byName.ID != "rec-1" {
		t.Errorf("GetByFilename returned %+v", byName)
	}
}

func TestRecordingRepository_GetMissingReturnsNil(t *testing.T) {
	repo := NewRecordingRepository(newTestDB(t))

	got, err := repo.GetByID("missing")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing recording, got %+v", got)
	}
}

func TestRecordingRepository_FinishAndGetOpen(t *testing.T) {
	repo := NewRecordingRepository(newTestDB(t))
	startedAt := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)

	if err := repo.Insert(sampleRecording("rec-1", "2025-03-01_PM_02-00-00.avi", startedAt)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	open, err := repo.GetOpen()
	if err != nil {
		t.Fatalf("GetOpen failed: %v", err)
	}
	if open == nil || open.ID != "rec-1" {
		t.Fatalf("Expected rec-1 open, got %+v", open)
	}

	stoppedAt := startedAt.Add(23 * time.Minute)
	if err := repo.Finish("rec-1", stoppedAt); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	open, err = repo.GetOpen()
	if err != nil {
		t.Fatalf("GetOpen failed: %v", err)
	}
	if open != nil {
		t.Errorf("Expected no open recording, got %+v", open)
	}

	finished, err := repo.GetByID("rec-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if finished.StoppedAt == nil {
		t.Error("Expected stopped_at to be set")
	}
}

func TestRecordingRepository_GetAllNewestFirst(t *testing.T) {
	repo := NewRecordingRepository(newTestDB(t))
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	names := []string{
		"2025-03-01_AM_08-00-00.avi",
		"2025-03-01_AM_09-00-00.avi",
		"2025-03-01_AM_10-00-00.avi",
	}
	for i, name := range names {
		rec := sampleRecording(name, name, base.Add(time.Duration(i)*time.Hour))
		if err := repo.Insert(rec); err != nil {
			t.Fatalf("Insert %s failed: %v", name, err)
		}
	}

	all, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 recordings, got %d", len(all))
	}
	if all[0].Filename != names[2] || all[2].Filename != names[0] {
		t.Errorf("Expected newest first, got %s ... %s", all[0].Filename, all[2].Filename)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}

func TestRecordingRepository_DeleteByFilename(t *testing.T) {
	repo := NewRecordingRepository(newTestDB(t))
	startedAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	if err := repo.Insert(sampleRecording("rec-1", "2025-03-01_AM_08-00-00.avi", startedAt)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.DeleteByFilename("2025-03-01_AM_08-00-00.avi"); err != nil {
		t.Fatalf("DeleteByFilename failed: %v", err)
	}

	got, err := repo.GetByID("rec-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected recording deleted, got %+v", got)
	}
}

func TestMotionEventRepository_InsertBatchAndGet(t *testing.T) {
	db := newTestDB(t)
	recordings := NewRecordingRepository(db)
	events := NewMotionEventRepository(db)

	startedAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := recordings.Insert(sampleRecording("rec-1", "2025-03-01_AM_08-00-00.avi", startedAt)); err != nil {
		t.Fatalf("Insert recording failed: %v", err)
	}

	batch := []model.MotionEvent{
		{RecordingID: "rec-1", DetectedAt: startedAt.Add(time.Second), X: 300, Y: 200, Width: 40, Height: 30, Area: 1200},
		{RecordingID: "rec-1", DetectedAt: startedAt.Add(2 * time.Second), X: 320, Y: 210, Width: 42, Height: 28, Area: 1176},
	}
	if err := events.InsertBatch(batch); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := events.GetByRecordingID("rec-1")
	if err != nil {
		t.Fatalf("GetByRecordingID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0].X != 300 || got[1].Area != 1176 {
		t.Errorf("Events round-tripped incorrectly: %+v", got)
	}
}

func TestMotionEventRepository_EmptyBatchIsNoOp(t *testing.T) {
	events := NewMotionEventRepository(newTestDB(t))

	if err := events.InsertBatch(nil); err != nil {
		t.Errorf("Empty batch should be a no-op, got %v", err)
	}
}
