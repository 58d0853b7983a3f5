package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aizithy/audio-extractor-cloud/internal/extract"
	"github.com/aizithy/audio-extractor-cloud/internal/platform"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/charmbracelet/log"
)

// errorDetailLimit bounds the failure summary stored on a task, so internal
// errors never leak unbounded text to polling clients.
const errorDetailLimit = 200

// Request carries the submission parameters for one extraction job.
type Request struct {
	URL          string
	ExtractAudio bool
	KeepVideo    bool
	AudioFormat  string
	AudioQuality string
}

// Archiver records terminal task outcomes. Optional.
type Archiver interface {
	Record(t *Task) error
}

type job struct {
	id  string
	req Request
}

// Scheduler accepts jobs, runs them on a fixed worker pool and drives the
// store's state transitions. Submission never blocks on extraction; it
// returns as soon as the record exists and the job is queued, or rejects
// outright when the queue is full.
type Scheduler struct {
	store    *Store
	builder  *extract.Builder
	executor *extract.Executor
	selector *platform.Selector
	archive  Archiver
	logger   *log.Logger

	jobs chan job
	wg   sync.WaitGroup
}

// SchedulerOpts contains the scheduler's collaborators and sizing.
type SchedulerOpts struct {
	Store     *Store
	Builder   *extract.Builder
	Executor  *extract.Executor
	Selector  *platform.Selector
	Archive   Archiver
	Logger    *log.Logger
	QueueSize int
}

// NewScheduler creates a Scheduler. Call Start before submitting.
func NewScheduler(opts SchedulerOpts) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 32
	}
	return &Scheduler{
		store:    opts.Store,
		builder:  opts.Builder,
		executor: opts.Executor,
		selector: opts.Selector,
		archive:  opts.Archive,
		logger:   opts.Logger,
		jobs:     make(chan job, opts.QueueSize),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled or
// Stop closes the queue.
func (s *Scheduler) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-s.jobs:
					if !ok {
						return
					}
					s.run(ctx, j)
				}
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

// Submit validates the request, creates the task record and queues the job.
// Validation failures are surfaced synchronously and no task is created.
// A full queue rejects the submission instead of blocking the caller.
func (s *Scheduler) Submit(req Request) (string, error) {
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return "", fmt.Errorf("%w: url must start with http:// or https://", shared.ErrInvalidRequest)
	}

	if profile := s.selector.Select(req.URL); profile.Blocked {
		return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedPlatform, profile.BlockedReason)
	}

	if !req.ExtractAudio && !req.KeepVideo {
		req.ExtractAudio = true
	}
	if req.AudioFormat == "" {
		req.AudioFormat = "mp3"
	}
	if req.AudioQuality == "" {
		req.AudioQuality = "best"
	}

	task := s.store.Create(req)
	select {
	case s.jobs <- job{id: task.ID, req: req}:
	default:
		s.store.Delete(task.ID)
		s.logger.Warn("job queue full, rejecting submission", "url", req.URL)
		return "", fmt.Errorf("%w: job queue is full", shared.ErrServiceUnavailable)
	}

	s.logger.Info("task submitted", "id", task.ID, "url", req.URL)
	return task.ID, nil
}

// run executes one job to its terminal state. It is the sole writer for the
// task it owns; a record evicted mid-flight turns every update into a
// logged no-op.
func (s *Scheduler) run(ctx context.Context, j job) {
	logger := s.logger.With("id", j.id)

	s.update(j.id, func(t *Task) {
		t.Status = StatusProcessing
		t.Progress = 10
		t.Message = "analyzing source url"
	})

	baseName := fmt.Sprintf("%s_%s", shared.HashURL(j.req.URL), shared.Timestamp(time.Now()))

	s.update(j.id, func(t *Task) {
		t.Progress = 30
		t.Message = "resolving extraction configuration"
	})

	if j.req.ExtractAudio {
		cfg, err := s.builder.Build(ctx, j.req.URL, extract.KindAudio, j.req.AudioFormat, j.req.AudioQuality, baseName)
		if err != nil {
			s.fail(j.id, logger, err)
			return
		}

		s.update(j.id, func(t *Task) {
			t.Progress = 60
			t.Message = "extracting audio"
		})

		res, err := s.executor.Execute(ctx, cfg)
		if err != nil {
			s.fail(j.id, logger, err)
			return
		}

		s.update(j.id, func(t *Task) {
			t.Title = res.Title
			t.Duration = res.Duration
			t.AudioFile = res.Filename
			t.Message = fmt.Sprintf("processing: %s", truncate(res.Title, 50))
		})
	}

	if j.req.KeepVideo {
		cfg, err := s.builder.Build(ctx, j.req.URL, extract.KindVideo, j.req.AudioFormat, j.req.AudioQuality, baseName)
		if err != nil {
			s.fail(j.id, logger, err)
			return
		}

		s.update(j.id, func(t *Task) {
			t.Progress = 80
			t.Message = "downloading video"
		})

		res, err := s.executor.Execute(ctx, cfg)
		if err != nil {
			s.fail(j.id, logger, err)
			return
		}

		s.update(j.id, func(t *Task) {
			t.VideoFile = res.Filename
			if t.Title == "" {
				t.Title = res.Title
				t.Duration = res.Duration
			}
		})
	}

	s.update(j.id, func(t *Task) {
		t.Status = StatusCompleted
		t.Progress = 100
		t.Message = "processing complete"
	})

	logger.Info("task completed")
	s.record(j.id)
}

// fail moves the task to its failed terminal state with a bounded error
// summary. Failures inside execution never propagate to the submitter.
func (s *Scheduler) fail(id string, logger *log.Logger, cause error) {
	logger.Error("task failed", "err", cause)

	s.update(id, func(t *Task) {
		t.Status = StatusFailed
		t.Progress = 0
		t.Message = "processing failed"
		t.ErrorDetail = truncate(cause.Error(), errorDetailLimit)
	})
	s.record(id)
}

func (s *Scheduler) update(id string, fn func(*Task)) {
	if err := s.store.Update(id, fn); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("task evicted mid-flight, dropping update", "id", id)
			return
		}
		s.logger.Warn("task update failed", "id", id, "err", err)
	}
}

func (s *Scheduler) record(id string) {
	if s.archive == nil {
		return
	}
	task, err := s.store.Get(id)
	if err != nil {
		return
	}
	if err := s.archive.Record(task); err != nil {
		s.logger.Warn("history record failed", "id", id, "err", err)
	}
}

// truncate caps s at n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
