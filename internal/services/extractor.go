package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
)

// Submission is the payload for submitting an extraction job.
type Submission struct {
	URL          string `json:"url"`
	ExtractAudio bool   `json:"extract_audio"`
	KeepVideo    bool   `json:"keep_video"`
	AudioFormat  string `json:"audio_format,omitempty"`
	AudioQuality string `json:"audio_quality,omitempty"`
}

// SubmitResult is the service's answer to a submission.
type SubmitResult struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskList is the response shape of the task listing endpoint.
type TaskList struct {
	Total int          `json:"total"`
	Tasks []tasks.View `json:"tasks"`
}

// apiError is the {"detail": ...} body returned on error statuses.
type apiError struct {
	Detail string `json:"detail"`
}

func decodeError(resp *APIResponse) error {
	var e apiError
	if err := json.Unmarshal(resp.Body, &e); err == nil && e.Detail != "" {
		return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, e.Detail, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
}

// Submit sends an extraction job to the service and returns the task id.
func (c *Client) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	resp, err := c.Post(ctx, "/api/process", payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, decodeError(resp)
	}

	var result SubmitResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}
	return &result, nil
}

// Status fetches the current state of one task.
func (c *Client) Status(ctx context.Context, id string) (*tasks.View, error) {
	resp, err := c.Get(ctx, "/api/status/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == 404 {
		return nil, fmt.Errorf("%w: task %s", shared.ErrNotFound, id)
	}
	if resp.StatusCode != 200 {
		return nil, decodeError(resp)
	}

	var view tasks.View
	if err := json.Unmarshal(resp.Body, &view); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &view, nil
}

// List fetches the task listing, optionally filtered by status.
func (c *Client) List(ctx context.Context, status string) (*TaskList, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, decodeError(resp)
	}

	var list TaskList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode task listing: %w", err)
	}
	return &list, nil
}

// Remove deletes a task and its output files.
func (c *Client) Remove(ctx context.Context, id string) error {
	resp, err := c.Delete(ctx, "/api/tasks/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	if resp.StatusCode == 404 {
		return fmt.Errorf("%w: task %s", shared.ErrNotFound, id)
	}
	if resp.StatusCode != 200 {
		return decodeError(resp)
	}
	return nil
}

// Health fetches the service health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.Get(ctx, "/api/health")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, decodeError(resp)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return body, nil
}
