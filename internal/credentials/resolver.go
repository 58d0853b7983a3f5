// Package credentials resolves per-platform cookie material from an ordered
// chain of sources and materializes it to a readable local copy.
//
// Resolution order is fixed: local file, remote URL, inline base64 blob.
// The first strategy yielding non-empty material wins; exhausting the chain
// means the platform runs unauthenticated, which is not an error. Results
// (including negative ones) are cached for the lifetime of the process.
package credentials

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/charmbracelet/log"
)

const fetchTimeout = 10 * time.Second

// Resolver materializes cookie files into cacheDir.
type Resolver struct {
	sources  map[string]shared.CredentialSource
	cacheDir string
	client   *http.Client
	logger   *log.Logger

	mu       sync.Mutex
	resolved map[string]string // platform -> local path, "" when resolution failed
}

// NewResolver creates a Resolver over the configured per-platform sources.
func NewResolver(cacheDir string, sources map[string]shared.CredentialSource, client *http.Client, logger *log.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		sources:  sources,
		cacheDir: cacheDir,
		client:   client,
		logger:   logger,
		resolved: map[string]string{},
	}
}

// Resolve returns the local cookie-file path for platform, materializing it
// on first use. The second return reports whether a credential exists.
//
// Materialization runs outside the lock so a slow fetch for one platform
// never stalls resolutions for others. Concurrent first-time calls for the
// same platform may duplicate the fetch; the first stored result wins and
// is returned for the lifetime of the process.
func (r *Resolver) Resolve(ctx context.Context, platform string) (string, bool) {
	r.mu.Lock()
	if path, done := r.resolved[platform]; done {
		r.mu.Unlock()
		return path, path != ""
	}
	r.mu.Unlock()

	path := r.materialize(ctx, platform)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prior, done := r.resolved[platform]; done {
		return prior, prior != ""
	}
	r.resolved[platform] = path
	return path, path != ""
}

func (r *Resolver) materialize(ctx context.Context, platform string) string {
	src, ok := r.sources[platform]
	if !ok || src.Empty() {
		return ""
	}

	target := filepath.Join(r.cacheDir, platform+"_cookies.txt")

	if src.File != "" {
		if err := r.copyFile(src.File, target); err == nil {
			r.logger.Info("resolved credential from file", "platform", platform, "source", src.File)
			return target
		} else {
			r.logger.Warn("cookie file copy failed", "platform", platform, "err", err)
		}
	}

	if src.URL != "" {
		if err := r.fetch(ctx, src.URL, target); err == nil {
			r.logger.Info("resolved credential from url", "platform", platform)
			return target
		} else {
			r.logger.Warn("cookie fetch failed", "platform", platform, "err", err)
		}
	}

	if src.Inline != "" {
		if err := r.decode(src.Inline, target); err == nil {
			r.logger.Info("resolved credential from inline blob", "platform", platform)
			return target
		} else {
			r.logger.Warn("cookie decode failed", "platform", platform, "err", err)
		}
	}

	r.logger.Debug("no credential resolved", "platform", platform)
	return ""
}

// copyFile copies the source cookie file to a writable location; the source
// may live on a read-only mount.
func (r *Resolver) copyFile(source, target string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("cookie file %s is empty", source)
	}
	return r.write(target, data)
}

func (r *Resolver) fetch(ctx context.Context, rawURL, target string) error {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cookie fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("cookie fetch returned empty body")
	}
	return r.write(target, data)
}

func (r *Resolver) decode(blob, target string) error {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("invalid base64 cookie blob: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("decoded cookie blob is empty")
	}
	return r.write(target, data)
}

func (r *Resolver) write(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0600)
}
