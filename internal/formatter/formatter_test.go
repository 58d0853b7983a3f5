package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
)

func sampleViews() []tasks.View {
	return []tasks.View{
		{
			TaskID:    "a1",
			Status:    tasks.StatusCompleted,
			Progress:  100,
			Message:   "processing complete",
			Title:     "First Clip",
			AudioFile: "audio_x.mp3",
			Duration:  125,
		},
		{
			TaskID:      "b2",
			Status:      tasks.StatusFailed,
			Progress:    0,
			Message:     "processing failed",
			ErrorDetail: "probe failed",
		},
	}
}

func TestFormatter(t *testing.T) {
	t.Run("json round trips", func(t *testing.T) {
		data, err := Tasks(sampleViews(), FormatJSON)
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}

		var decoded []tasks.View
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].TaskID != "a1" {
			t.Errorf("unexpected decoded views: %+v", decoded)
		}
	})

	t.Run("csv has headers and one row per task", func(t *testing.T) {
		data, err := Tasks(sampleViews(), FormatCSV)
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus two rows, got %d", len(records))
		}
		if records[0][0] != "ID" || records[1][0] != "a1" {
			t.Errorf("unexpected CSV layout: %v", records[:2])
		}
		if records[2][1] != "failed" || records[2][7] != "probe failed" {
			t.Errorf("failure row not rendered: %v", records[2])
		}
	})

	t.Run("table aligns columns and formats duration", func(t *testing.T) {
		data, err := Tasks(sampleViews(), FormatTable)
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}

		out := string(data)
		if !strings.Contains(out, "ID") || !strings.Contains(out, "STATUS") {
			t.Error("expected a header row")
		}
		if !strings.Contains(out, "2:05") {
			t.Errorf("expected formatted duration in output:\n%s", out)
		}
		if !strings.Contains(out, "100%") {
			t.Errorf("expected progress percentage in output:\n%s", out)
		}
	})

	t.Run("empty format defaults to table", func(t *testing.T) {
		data, err := Tasks(nil, "")
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if !strings.Contains(string(data), "ID") {
			t.Error("expected a table header even with no tasks")
		}
	})

	t.Run("unknown format is rejected", func(t *testing.T) {
		_, err := Tasks(sampleViews(), "yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
