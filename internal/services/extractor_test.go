package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	internaltest "github.com/aizithy/audio-extractor-cloud/internal/testing"
)

func jsonHandler(t *testing.T, status int, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("submit decodes the task id", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 200,
			`{"task_id":"abc","status":"pending","message":"task created, waiting for a worker"}`))
		defer srv.Close()

		result, err := NewClient(srv.URL, nil).Submit(ctx, Submission{URL: "https://example.com/x", ExtractAudio: true})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if result.TaskID != "abc" || result.Status != "pending" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("submit surfaces the error detail", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 400, `{"detail":"url must start with http:// or https://"}`))
		defer srv.Close()

		_, err := NewClient(srv.URL, nil).Submit(ctx, Submission{URL: "bogus"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("status decodes the task view", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 200,
			`{"task_id":"abc","status":"completed","progress":100,"message":"processing complete","video_title":"Some Title","audio_file":"audio_x.mp3","duration":42}`))
		defer srv.Close()

		view, err := NewClient(srv.URL, nil).Status(ctx, "abc")
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if view.Status != "completed" || view.Progress != 100 {
			t.Errorf("unexpected view: %+v", view)
		}
		if view.Title != "Some Title" || view.AudioFile != "audio_x.mp3" {
			t.Errorf("result fields not decoded: %+v", view)
		}
	})

	t.Run("status maps 404 to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 404, `{"detail":"task not found"}`))
		defer srv.Close()

		_, err := NewClient(srv.URL, nil).Status(ctx, "nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list decodes totals and entries", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 200,
			`{"total":2,"tasks":[{"task_id":"a","status":"completed","progress":100},{"task_id":"b","status":"pending","progress":0}]}`))
		defer srv.Close()

		list, err := NewClient(srv.URL, nil).List(ctx, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 2 || len(list.Tasks) != 2 {
			t.Errorf("unexpected listing: %+v", list)
		}
	})

	t.Run("remove succeeds on 200", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 200, `{"message":"task deleted"}`))
		defer srv.Close()

		if err := NewClient(srv.URL, nil).Remove(ctx, "abc"); err != nil {
			t.Errorf("Remove failed: %v", err)
		}
	})

	t.Run("health returns the raw document", func(t *testing.T) {
		srv := httptest.NewServer(jsonHandler(t, 200, `{"status":"healthy","version":"1.0.0"}`))
		defer srv.Close()

		body, err := NewClient(srv.URL, nil).Health(ctx)
		if err != nil {
			t.Fatalf("Health failed: %v", err)
		}
		if body["status"] != "healthy" {
			t.Errorf("unexpected health body: %v", body)
		}
	})

	t.Run("transport errors are wrapped", func(t *testing.T) {
		client := NewClient("http://example.invalid", &http.Client{
			Transport: internaltest.NewMockRoundTripper(nil, errors.New("connection refused")),
		})

		_, err := client.Get(ctx, "/api/health")
		if err == nil {
			t.Fatal("expected a transport error")
		}
	})

	t.Run("body read failures are reported", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: 200,
			Header:     http.Header{},
			Body:       &internaltest.FCloser{},
		}
		client := NewClient("http://example.invalid", &http.Client{
			Transport: internaltest.NewMockRoundTripper(resp, nil),
		})

		_, err := client.Get(ctx, "/api/health")
		if err == nil {
			t.Fatal("expected a read error")
		}
	})
}
