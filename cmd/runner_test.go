package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aizithy/audio-extractor-cloud/internal/services"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	tu "github.com/aizithy/audio-extractor-cloud/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			client := services.NewClient("http://localhost:8000", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Client:     client,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.client == nil {
				t.Error("expected a client built from the default config")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("register wires all top level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for _, c := range commands {
			names[c.Name] = true
		}
		for _, want := range []string{"serve", "extract", "tasks", "sweep", "config", "api", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"n": 1}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if output.String() != "{\"n\":1}\n" {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("pretty output spans lines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"n": 1}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "\n  ") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure is reported", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]int{"n": 1}, false); err == nil {
				t.Error("expected an error from a failing writer")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("done %d\n", 3); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		if output.String() != "done 3\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "audio-extractor", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"audio-extractor"}, args...))
}

func TestCommands(t *testing.T) {
	t.Run("config init writes the example file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runCommand(t, runner, "config", "init", "--path", path); err != nil {
			t.Fatalf("config init failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "[server]") {
			t.Error("expected the example config to contain a server section")
		}
	})

	t.Run("config init refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := runCommand(t, runner, "config", "init", "--path", path); err != nil {
			t.Fatalf("first init failed: %v", err)
		}
		if err := runCommand(t, runner, "config", "init", "--path", path); err == nil {
			t.Error("expected second init to fail")
		}
	})

	t.Run("config show prints effective configuration", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runCommand(t, runner, "config", "show"); err != nil {
			t.Fatalf("config show failed: %v", err)
		}
		if !strings.Contains(output.String(), "yt-dlp") {
			t.Errorf("expected extractor settings in output, got %q", output.String())
		}
	})

	t.Run("tasks status against a stub service", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"task_id":"abc","status":"completed","progress":100,"message":"processing complete"}`))
		}))
		defer srv.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Client: services.NewClient(srv.URL, nil),
		})

		if err := runCommand(t, runner, "tasks", "status", "abc"); err != nil {
			t.Fatalf("tasks status failed: %v", err)
		}
		if !strings.Contains(output.String(), "completed") {
			t.Errorf("expected task state in output, got %q", output.String())
		}
	})

	t.Run("tasks list renders a table", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"total":1,"tasks":[{"task_id":"abc","status":"processing","progress":60,"message":"extracting audio"}]}`))
		}))
		defer srv.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Client: services.NewClient(srv.URL, nil),
		})

		if err := runCommand(t, runner, "tasks", "list"); err != nil {
			t.Fatalf("tasks list failed: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "STATUS") || !strings.Contains(out, "processing") {
			t.Errorf("expected a task table, got %q", out)
		}
	})

	t.Run("tasks submit requires a url", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "tasks", "submit")
		if err == nil {
			t.Error("expected an error for a missing url argument")
		}
	})

	t.Run("sweep reports removals", func(t *testing.T) {
		dir := t.TempDir()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runCommand(t, runner, "sweep", "--dir", dir, "--max-age-hours", "1"); err != nil {
			t.Fatalf("sweep failed: %v", err)
		}
		if !strings.Contains(output.String(), "removed 0 file(s)") {
			t.Errorf("unexpected sweep output: %q", output.String())
		}
	})

	t.Run("api get prints raw JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"healthy"}`))
		}))
		defer srv.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Client: services.NewClient(srv.URL, nil),
		})

		if err := runCommand(t, runner, "api", "get", "/api/health"); err != nil {
			t.Fatalf("api get failed: %v", err)
		}
		if !strings.Contains(output.String(), "healthy") {
			t.Errorf("expected health body in output, got %q", output.String())
		}
	})

	t.Run("api post rejects invalid JSON", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "api", "post", "--data", "{broken", "/api/process")
		if err == nil {
			t.Error("expected an error for invalid JSON data")
		}
	})
}
