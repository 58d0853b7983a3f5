package tasks

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/charmbracelet/log"
)

// Sweeper evicts output files and task records older than a configured age.
//
// The two scans are independent: files go by modification time, records by
// creation time, and neither consults the other. A completed task's file
// can therefore age out before the client fetched it; that is a known,
// intentionally preserved limitation of the retention model.
type Sweeper struct {
	store  *Store
	dir    string
	logger *log.Logger
}

// NewSweeper creates a Sweeper over the store and output directory.
func NewSweeper(store *Store, dir string, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Sweeper{store: store, dir: dir, logger: logger}
}

// Sweep runs one eviction pass and reports how many files and records were
// removed. Invocation is opportunistic; callers must not assume bounded
// latency between passes.
func (s *Sweeper) Sweep(fileMaxAge, taskMaxAge time.Duration) (files, records int) {
	files = s.sweepFiles(fileMaxAge)
	records = s.sweepTasks(taskMaxAge)

	if files > 0 || records > 0 {
		s.logger.Info("retention sweep", "files", files, "tasks", records)
	}
	return files, records
}

func (s *Sweeper) sweepFiles(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("sweep could not read output directory", "dir", s.dir, "err", err)
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			// A file vanishing between listing and deletion means someone
			// else already cleaned it.
			if !os.IsNotExist(err) {
				s.logger.Warn("sweep could not remove file", "file", entry.Name(), "err", err)
			}
			continue
		}
		removed++
	}
	return removed
}

func (s *Sweeper) sweepTasks(maxAge time.Duration) int {
	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, task := range s.store.List("") {
		if task.CreatedAt.After(cutoff) {
			continue
		}
		if err := s.store.Delete(task.ID); err == nil {
			removed++
		}
	}
	return removed
}
