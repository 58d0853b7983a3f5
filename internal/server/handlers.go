package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/platform"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
	"github.com/charmbracelet/log"
)

// mediaTypes maps output file extensions to their download content type.
var mediaTypes = map[string]string{
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
	".wav": "audio/wav",
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

// HistoryStats reports archive totals for the health endpoint. Optional.
type HistoryStats interface {
	Counts() (completed, failed int, err error)
}

// API holds the handlers for the extraction REST surface.
//
// Retention runs opportunistically: the health and download handlers kick
// off a background sweep on every hit instead of a dedicated timer.
type API struct {
	store      *tasks.Store
	scheduler  *tasks.Scheduler
	sweeper    *tasks.Sweeper
	selector   *platform.Selector
	outputDir  string
	fileMaxAge time.Duration
	taskMaxAge time.Duration
	history    HistoryStats
	version    string
	logger     *log.Logger
}

// APIOpts contains the API's collaborators and retention settings.
type APIOpts struct {
	Store      *tasks.Store
	Scheduler  *tasks.Scheduler
	Sweeper    *tasks.Sweeper
	Selector   *platform.Selector
	OutputDir  string
	FileMaxAge time.Duration
	TaskMaxAge time.Duration
	History    HistoryStats
	Version    string
	Logger     *log.Logger
}

// NewAPI creates the REST handler set.
func NewAPI(opts APIOpts) *API {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &API{
		store:      opts.Store,
		scheduler:  opts.Scheduler,
		sweeper:    opts.Sweeper,
		selector:   opts.Selector,
		outputDir:  opts.OutputDir,
		fileMaxAge: opts.FileMaxAge,
		taskMaxAge: opts.TaskMaxAge,
		history:    opts.History,
		version:    opts.Version,
		logger:     opts.Logger,
	}
}

// Register wires every API route into the router.
func (a *API) Register(r Router) {
	r.Handle(http.MethodPost, "/api/process", http.HandlerFunc(a.Process))
	r.Handle(http.MethodGet, "/api/status/{id}", http.HandlerFunc(a.Status))
	r.Handle(http.MethodGet, "/api/tasks", http.HandlerFunc(a.Tasks))
	r.Handle(http.MethodDelete, "/api/tasks/{id}", http.HandlerFunc(a.DeleteTask))
	r.Handle(http.MethodGet, "/api/download/{filename}", http.HandlerFunc(a.Download))
	r.Handle(http.MethodGet, "/api/health", http.HandlerFunc(a.Health))
	r.Handler(NewIndexHandler(a.version))
}

// ProcessRequest is the submission payload for POST /api/process.
type ProcessRequest struct {
	URL          string `json:"url"`
	ExtractAudio bool   `json:"extract_audio"`
	KeepVideo    bool   `json:"keep_video"`
	AudioFormat  string `json:"audio_format"`
	AudioQuality string `json:"audio_quality"`
}

// Process accepts an extraction job and returns its task id. The work runs
// in the background; clients poll /api/status/{id} for progress.
func (a *API) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := a.scheduler.Submit(tasks.Request{
		URL:          req.URL,
		ExtractAudio: req.ExtractAudio,
		KeepVideo:    req.KeepVideo,
		AudioFormat:  req.AudioFormat,
		AudioQuality: req.AudioQuality,
	})
	if err != nil {
		if errors.Is(err, shared.ErrInvalidRequest) || errors.Is(err, shared.ErrUnsupportedPlatform) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, shared.ErrServiceUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "job queue is full, retry later")
			return
		}
		a.logger.Error("submission failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": id,
		"status":  string(tasks.StatusPending),
		"message": "task created, waiting for a worker",
	})
}

// Status returns the full state of one task.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	task, err := a.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task.View())
}

// taskSummary is the listing shape: lifecycle fields only, no results.
type taskSummary struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Tasks lists tasks, optionally filtered by ?status=.
func (a *API) Tasks(w http.ResponseWriter, r *http.Request) {
	filter := tasks.Status(r.URL.Query().Get("status"))
	if filter != "" && !filter.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	list := a.store.List(filter)
	summaries := make([]taskSummary, 0, len(list))
	for _, t := range list {
		summaries = append(summaries, taskSummary{
			TaskID:    t.ID,
			Status:    string(t.Status),
			Progress:  t.Progress,
			Message:   t.Message,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(summaries),
		"tasks": summaries,
	})
}

// DeleteTask removes a task record along with any output files it produced.
func (a *API) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := a.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	for _, name := range []string{task.AudioFile, task.VideoFile} {
		if name == "" {
			continue
		}
		if err := os.Remove(filepath.Join(a.outputDir, name)); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("could not remove output file", "file", name, "err", err)
		}
	}

	if err := a.store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "task deleted"})
}

// Download serves one output file as an attachment and triggers a
// background retention sweep.
func (a *API) Download(w http.ResponseWriter, r *http.Request) {
	a.sweepAsync()

	filename := r.PathValue("filename")
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	path := filepath.Join(a.outputDir, filename)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "file not found or expired")
		return
	}

	mediaType := mediaTypes[strings.ToLower(filepath.Ext(filename))]
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
	http.ServeFile(w, r, path)
}

// Health reports service liveness along with output directory pressure and
// the platforms the service accepts. Also triggers a background sweep.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	a.sweepAsync()

	count := 0
	if entries, err := os.ReadDir(a.outputDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				count++
			}
		}
	}

	body := map[string]any{
		"status":           "healthy",
		"version":          a.version,
		"supported_sites":  a.selector.Supported(),
		"temp_files_count": count,
	}

	if a.history != nil {
		if completed, failed, err := a.history.Counts(); err == nil {
			body["history"] = map[string]int{
				"completed": completed,
				"failed":    failed,
			}
		}
	}

	writeJSON(w, http.StatusOK, body)
}

func (a *API) sweepAsync() {
	if a.sweeper == nil {
		return
	}
	go a.sweeper.Sweep(a.fileMaxAge, a.taskMaxAge)
}

// IndexHandler serves the service description at the root path.
type IndexHandler struct {
	version string
}

// NewIndexHandler creates the root endpoint handler.
func NewIndexHandler(version string) *IndexHandler {
	return &IndexHandler{version: version}
}

// Routes returns the HTTP routes this handler serves.
func (h *IndexHandler) Routes() []string {
	return []string{"GET /{$}"}
}

// ServeHTTP writes the service description.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "audio extraction api",
		"version":     h.version,
		"description": "background audio and video extraction for youtube, bilibili and other platforms",
		"endpoints": map[string]string{
			"POST /api/process":            "submit an extraction task",
			"GET /api/status/{task_id}":    "poll task status",
			"GET /api/tasks":               "list tasks",
			"DELETE /api/tasks/{task_id}":  "delete a task and its files",
			"GET /api/download/{filename}": "download an output file",
			"GET /api/health":              "health check",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes the {"detail": ...} error body used across the API.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
