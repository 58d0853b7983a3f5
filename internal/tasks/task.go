// Package tasks implements the job orchestration core: the concurrent task
// registry, the worker-pool scheduler that drives extraction jobs through
// their lifecycle, and the age-based retention sweeper.
//
// A task advances Pending → Processing → Completed or Failed, never
// backwards and never out of a terminal state. The scheduler executing a
// task is its only writer; status queries are concurrent reads.
package tasks

import "time"

// Status enumerates the task lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) String() string { return string(s) }

// Terminal reports whether no transition leaves this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Task is one extraction job and its lifecycle record.
type Task struct {
	ID        string
	Status    Status
	Progress  int
	Message   string
	CreatedAt time.Time

	// Request parameters, immutable after creation.
	URL          string
	ExtractAudio bool
	KeepVideo    bool
	AudioFormat  string
	AudioQuality string

	// Result fields, populated only on completion.
	Title     string
	Duration  int
	AudioFile string
	VideoFile string

	// ErrorDetail is populated only on failure, truncated.
	ErrorDetail string
}

// Clone returns an independent copy so readers never share memory with the
// store's record.
func (t *Task) Clone() *Task {
	clone := *t
	return &clone
}

// View is the JSON shape exposed to polling clients.
type View struct {
	TaskID      string `json:"task_id"`
	Status      Status `json:"status"`
	Progress    int    `json:"progress"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
	Title       string `json:"video_title,omitempty"`
	AudioFile   string `json:"audio_file,omitempty"`
	VideoFile   string `json:"video_file,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// View renders the client-facing projection of the task.
func (t *Task) View() View {
	return View{
		TaskID:      t.ID,
		Status:      t.Status,
		Progress:    t.Progress,
		Message:     t.Message,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		Title:       t.Title,
		AudioFile:   t.AudioFile,
		VideoFile:   t.VideoFile,
		Duration:    t.Duration,
		ErrorDetail: t.ErrorDetail,
	}
}
