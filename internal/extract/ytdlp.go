package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const probeTimeout = 2 * time.Minute

// CLI invokes the yt-dlp binary. It implements [Engine].
type CLI struct {
	binary string
	logger *log.Logger
}

// NewCLI creates a CLI adapter for the given binary name or path.
func NewCLI(binary string, logger *log.Logger) *CLI {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &CLI{binary: binary, logger: logger}
}

// CheckBinary verifies the engine binary is reachable on PATH.
func (c *CLI) CheckBinary() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("missing dependency: %s is not installed or not on PATH", c.binary)
	}
	return nil
}

// probeInfo is the subset of the engine's JSON metadata we care about.
type probeInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Probe fetches metadata without downloading.
func (c *CLI) Probe(ctx context.Context, cfg *Config) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := []string{"--dump-json", "--no-download", "--no-playlist", "--no-warnings", "-q"}
	args = append(args, c.commonArgs(cfg)...)
	args = append(args, cfg.URL)

	out, err := c.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var info probeInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("unreadable probe output: %w", err)
	}
	if info.Title == "" {
		info.Title = "Unknown"
	}
	return &Metadata{Title: info.Title, Duration: int(info.Duration)}, nil
}

// Download runs the engine with the fully-resolved configuration.
func (c *CLI) Download(ctx context.Context, cfg *Config) error {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--retries", "3",
		"--socket-timeout", "30",
		"-f", cfg.Format,
		"-o", cfg.OutputTemplate,
	}
	args = append(args, c.commonArgs(cfg)...)

	if cfg.Kind == KindAudio {
		args = append(args, "-x", "--audio-format", cfg.AudioFormat, "--audio-quality", cfg.AudioBitrate)
		if cfg.AudioBitrate != "0" {
			switch cfg.AudioFormat {
			case "mp3":
				args = append(args, "--postprocessor-args", fmt.Sprintf("ffmpeg:-ab %sk", cfg.AudioBitrate))
			case "m4a":
				args = append(args, "--postprocessor-args", fmt.Sprintf("ffmpeg:-c:a aac -b:a %sk", cfg.AudioBitrate))
			}
		}
	}

	args = append(args, cfg.URL)

	_, err := c.run(ctx, args)
	return err
}

// commonArgs renders the configuration pieces shared by probe and download:
// headers, cookies, proxy, geo hints and extractor arguments.
func (c *CLI) commonArgs(cfg *Config) []string {
	var args []string

	headers := make([]string, 0, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers = append(headers, fmt.Sprintf("%s:%s", k, v))
	}
	sort.Strings(headers)
	for _, h := range headers {
		args = append(args, "--add-headers", h)
	}

	if cfg.CookiesPath != "" {
		args = append(args, "--cookies", cfg.CookiesPath)
	}
	if cfg.ProxyURL != "" {
		args = append(args, "--proxy", cfg.ProxyURL)
	}
	if cfg.GeoCountry != "" {
		args = append(args, "--geo-bypass-country", cfg.GeoCountry)
	}

	if len(cfg.Clients) > 0 {
		args = append(args, "--extractor-args", "youtube:player_client="+strings.Join(cfg.Clients, ","))
	}
	if cfg.Kind == KindAudio && len(cfg.SkipStreams) > 0 {
		args = append(args, "--extractor-args", "youtube:skip="+strings.Join(cfg.SkipStreams, ","))
	}
	for _, raw := range cfg.ExtractorArgs {
		args = append(args, "--extractor-args", raw)
	}

	return args
}

func (c *CLI) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if c.logger != nil {
		c.logger.Debug("running engine", "binary", c.binary, "args", strings.Join(args, " "))
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", c.binary, err, truncate(strings.TrimSpace(stderr.String()), 512))
	}
	return stdout.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
