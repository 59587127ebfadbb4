package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"surveillance/internal/logger"
	"surveillance/internal/repository"
)

const bytesPerGB = 1024 * 1024 * 1024

// ErrNoEvictableFiles is returned when the free-space threshold cannot be met
// because the directory holds nothing left to delete.
var ErrNoEvictableFiles = errors.New("not enough free space and no evictable files remain")

// Reclaimer guarantees a minimum amount of free space in the video directory
// by deleting the oldest recordings. Filenames embed the recording start time
// in a sortable format, so lexical order equals chronological order.
type Reclaimer struct {
	dir       string
	minFree   uint64
	freeBytes func(dir string) (uint64, error)
	repo      repository.RecordingRepository
	logger    *logger.Logger
}

// NewReclaimer creates a Reclaimer for dir that keeps at least minFreeGB free.
// The recording repository may be nil; when present, index rows for evicted
// files are removed as well.
func NewReclaimer(dir string, minFreeGB float64, repo repository.RecordingRepository, logger *logger.Logger) *Reclaimer {
	return &Reclaimer{
		dir:       dir,
		minFree:   uint64(minFreeGB * bytesPerGB),
		freeBytes: diskFreeBytes,
		repo:      repo,
		logger:    logger,
	}
}

// Ensure deletes the oldest recordings until free space in the directory is at
// or above the configured minimum. The file named by active (the recording
// currently being written, "" if none) is never deleted. Returns
// ErrNoEvictableFiles if the threshold cannot be met.
func (r *Reclaimer) Ensure(active string) error {
	free, err := r.freeBytes(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read free space for %s: %w", r.dir, err)
	}

	for free < r.minFree {
		r.logger.Warning("Getting low on space: %.2f GB free, %.2f GB required", gb(free), gb(r.minFree))

		oldest, err := r.oldestFile(active)
		if err != nil {
			return err
		}

		r.logger.Info("Deleting oldest recording: %s", oldest)
		if err := os.Remove(filepath.Join(r.dir, oldest)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", oldest, err)
		}
		if r.repo != nil {
			if err := r.repo.DeleteByFilename(oldest); err != nil {
				r.logger.Error("Failed to remove index entry for %s: %v", oldest, err)
			}
		}

		free, err = r.freeBytes(r.dir)
		if err != nil {
			return fmt.Errorf("failed to read free space for %s: %w", r.dir, err)
		}
	}

	r.logger.Info("Got enough space: %.2f GB", gb(free))
	return nil
}

// oldestFile returns the lexically smallest regular file in the directory,
// skipping the active recording.
func (r *Reclaimer) oldestFile(active string) (string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", r.dir, err)
	}

	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == active {
			continue
		}
		return entry.Name(), nil
	}

	return "", ErrNoEvictableFiles
}

func gb(bytes uint64) float64 {
	return float64(bytes) / bytesPerGB
}
