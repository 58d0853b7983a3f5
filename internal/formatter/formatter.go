// package formatter renders task listings to various formats (JSON, CSV, plain table)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
)

// Format names a supported output format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// Tasks renders the given task views in the requested format.
func Tasks(views []tasks.View, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(views)
	case FormatCSV:
		return ToCSV(views)
	case FormatTable, "":
		return ToTable(views)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// ToJSON renders task views as indented JSON.
func ToJSON(views []tasks.View) ([]byte, error) {
	return shared.MarshalJSON(views, true)
}

// ToCSV renders task views as CSV with columns: ID, Status, Progress, Title, Audio, Video, Duration, Error
func ToCSV(views []tasks.View) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Status", "Progress", "Title", "Audio", "Video", "Duration", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range views {
		record := []string{
			v.TaskID,
			string(v.Status),
			strconv.Itoa(v.Progress),
			v.Title,
			v.AudioFile,
			v.VideoFile,
			strconv.Itoa(v.Duration),
			v.ErrorDetail,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToTable renders task views as an aligned plain-text table.
func ToTable(views []tasks.View) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tSTATUS\tPROGRESS\tTITLE\tDURATION\tMESSAGE")
	for _, v := range views {
		duration := ""
		if v.Duration > 0 {
			duration = shared.FormatDuration(v.Duration)
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\t%s\n",
			v.TaskID, v.Status, v.Progress, v.Title, duration, v.Message)
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}
	return buf.Bytes(), nil
}
