package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aizithy/audio-extractor-cloud/internal/credentials"
	"github.com/aizithy/audio-extractor-cloud/internal/platform"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/charmbracelet/log"
)

func newTestBuilder(t *testing.T, sources map[string]shared.CredentialSource) *Builder {
	t.Helper()
	logger := log.New(io.Discard)
	creds := credentials.NewResolver(t.TempDir(), sources, nil, logger)
	return NewBuilder(platform.NewSelector(), creds, BuilderOpts{OutputDir: "/tmp/out"})
}

func inlineCookie(t *testing.T) shared.CredentialSource {
	t.Helper()
	return shared.CredentialSource{Inline: base64.StdEncoding.EncodeToString([]byte("# netscape cookies\n"))}
}

func TestBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("audio config for youtube without credential", func(t *testing.T) {
		b := newTestBuilder(t, nil)

		cfg, err := b.Build(ctx, "https://www.youtube.com/watch?v=abc", KindAudio, "mp3", "good", "aaaa1111_20240301_130509")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if cfg.Platform != "youtube" {
			t.Errorf("expected youtube platform, got %s", cfg.Platform)
		}
		if cfg.Format != "bestaudio/best" {
			t.Errorf("unexpected format selector: %s", cfg.Format)
		}
		if cfg.BaseName != "audio_aaaa1111_20240301_130509" {
			t.Errorf("unexpected base name: %s", cfg.BaseName)
		}
		if cfg.OutputTemplate != filepath.Join("/tmp/out", cfg.BaseName+".%(ext)s") {
			t.Errorf("unexpected output template: %s", cfg.OutputTemplate)
		}
		if cfg.AudioBitrate != "128" {
			t.Errorf("expected good quality to map to 128, got %s", cfg.AudioBitrate)
		}
		if cfg.CookiesPath != "" {
			t.Error("expected no cookie path without a credential")
		}
		if strings.Join(cfg.Clients, ",") != "android_creator,android,web" {
			t.Errorf("expected default client variant, got %v", cfg.Clients)
		}
		if len(cfg.FallbackClients) == 0 {
			t.Error("expected youtube to carry a fallback client list")
		}
	})

	t.Run("credential forces cookie-compatible client variant", func(t *testing.T) {
		b := newTestBuilder(t, map[string]shared.CredentialSource{"youtube": inlineCookie(t)})

		cfg, err := b.Build(ctx, "https://youtu.be/abc", KindAudio, "mp3", "best", "bbbb2222_20240301_130509")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if cfg.CookiesPath == "" {
			t.Fatal("expected a resolved cookie path")
		}
		if strings.Join(cfg.Clients, ",") != "web,web_safari" {
			t.Errorf("expected cookie-compatible clients, got %v", cfg.Clients)
		}
	})

	t.Run("client override beats credential precedence", func(t *testing.T) {
		logger := log.New(io.Discard)
		creds := credentials.NewResolver(t.TempDir(), map[string]shared.CredentialSource{"youtube": inlineCookie(t)}, nil, logger)
		b := NewBuilder(platform.NewSelector(), creds, BuilderOpts{
			OutputDir:      "/tmp/out",
			ClientOverride: []string{"ios"},
		})

		cfg, err := b.Build(ctx, "https://youtu.be/abc", KindAudio, "mp3", "best", "cccc3333_20240301_130509")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if len(cfg.Clients) != 1 || cfg.Clients[0] != "ios" {
			t.Errorf("expected override clients, got %v", cfg.Clients)
		}
	})

	t.Run("video config ignores audio settings", func(t *testing.T) {
		b := newTestBuilder(t, nil)

		cfg, err := b.Build(ctx, "https://www.bilibili.com/video/xyz", KindVideo, "mp3", "best", "dddd4444_20240301_130509")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if cfg.Format != "best[height<=720]/best" {
			t.Errorf("unexpected video format: %s", cfg.Format)
		}
		if cfg.AudioFormat != "" || cfg.AudioBitrate != "" {
			t.Error("video config should not carry audio postprocessing settings")
		}
		if cfg.BaseName != "video_dddd4444_20240301_130509" {
			t.Errorf("unexpected base name: %s", cfg.BaseName)
		}
	})

	t.Run("blocked platform is rejected", func(t *testing.T) {
		b := newTestBuilder(t, nil)

		_, err := b.Build(ctx, "https://www.douyin.com/video/1", KindAudio, "mp3", "best", "x")
		if !errors.Is(err, shared.ErrUnsupportedPlatform) {
			t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
		}
	})

	t.Run("quality table", func(t *testing.T) {
		cases := map[string]string{
			"best":    "0",
			"good":    "128",
			"normal":  "96",
			"unknown": "128",
		}
		for quality, want := range cases {
			if got := Bitrate(quality); got != want {
				t.Errorf("Bitrate(%q) = %s, want %s", quality, got, want)
			}
		}
	})

	t.Run("audio format normalization", func(t *testing.T) {
		b := newTestBuilder(t, nil)

		cfg, err := b.Build(ctx, "https://example.com/x", KindAudio, "FLAC", "best", "eeee5555_20240301_130509")
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if cfg.AudioFormat != "mp3" {
			t.Errorf("expected unrecognized formats to fall back to mp3, got %s", cfg.AudioFormat)
		}
	})
}
