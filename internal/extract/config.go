package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aizithy/audio-extractor-cloud/internal/credentials"
	"github.com/aizithy/audio-extractor-cloud/internal/platform"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
)

// OutputKind selects which artifact an extraction run produces.
type OutputKind string

const (
	KindAudio OutputKind = "audio"
	KindVideo OutputKind = "video"
)

// bitrates maps quality names to the engine's audio quality argument.
// "0" selects best VBR; the others are kbps ceilings.
var bitrates = map[string]string{
	"best":   "0",
	"good":   "128",
	"normal": "96",
}

const defaultBitrate = "128"

// Bitrate returns the audio bitrate argument for a quality name, falling
// back to the default for unknown names.
func Bitrate(quality string) string {
	if b, ok := bitrates[quality]; ok {
		return b
	}
	return defaultBitrate
}

// Config is one immutable, fully-resolved extraction configuration.
// Builders produce it; nothing mutates it afterwards.
type Config struct {
	URL      string
	Platform string
	Kind     OutputKind

	// Format is the engine format selector for this kind.
	Format string
	// OutputTemplate is the engine output path template; BaseName is the
	// extension-less file stem used to locate the produced file afterwards.
	OutputTemplate string
	BaseName       string

	Headers         map[string]string
	Clients         []string
	FallbackClients []string
	SkipStreams     []string
	ExtractorArgs   []string

	CookiesPath string
	ProxyURL    string
	GeoCountry  string

	// Audio postprocessing; meaningful only when Kind is KindAudio.
	AudioFormat  string
	AudioBitrate string
}

// WithClients returns a copy of cfg running on the given client identity
// list with no further fallback. Used for the single fallback attempt.
func (c *Config) WithClients(clients []string) *Config {
	clone := *c
	clone.Clients = clients
	clone.FallbackClients = nil
	return &clone
}

// Builder composes platform profiles, resolved credentials and request
// parameters into extraction configurations.
type Builder struct {
	selector   *platform.Selector
	creds      *credentials.Resolver
	outputDir  string
	proxyURL   string
	geoCountry string
	override   []string
}

// BuilderOpts carries the environment-sourced settings applied to every
// configuration the builder produces.
type BuilderOpts struct {
	OutputDir      string
	ProxyURL       string
	GeoCountry     string
	ClientOverride []string
}

// NewBuilder creates a Builder.
func NewBuilder(selector *platform.Selector, creds *credentials.Resolver, opts BuilderOpts) *Builder {
	return &Builder{
		selector:   selector,
		creds:      creds,
		outputDir:  opts.OutputDir,
		proxyURL:   opts.ProxyURL,
		geoCountry: opts.GeoCountry,
		override:   opts.ClientOverride,
	}
}

// Build resolves the configuration for one extraction run.
//
// The client identity is decided with a hard precedence: a configured
// override beats everything; otherwise a resolved credential forces the
// profile's cookie-compatible variant over its default variant.
func (b *Builder) Build(ctx context.Context, rawURL string, kind OutputKind, audioFormat, quality, baseName string) (*Config, error) {
	if kind != KindAudio && kind != KindVideo {
		return nil, fmt.Errorf("%w: unknown output kind %q", shared.ErrInvalidArgument, kind)
	}

	profile := b.selector.Select(rawURL)
	if profile.Blocked {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedPlatform, profile.BlockedReason)
	}

	stem := fmt.Sprintf("%s_%s", kind, baseName)
	cfg := &Config{
		URL:             rawURL,
		Platform:        profile.Name,
		Kind:            kind,
		BaseName:        stem,
		OutputTemplate:  filepath.Join(b.outputDir, stem+".%(ext)s"),
		Headers:         profile.Headers,
		Clients:         profile.Clients,
		FallbackClients: profile.FallbackClients,
		ExtractorArgs:   profile.ExtractorArgs,
		ProxyURL:        b.proxyURL,
		GeoCountry:      b.geoCountry,
	}

	if kind == KindAudio {
		cfg.Format = profile.AudioFormat
		cfg.SkipStreams = profile.SkipStreams
		cfg.AudioFormat = normalizeAudioFormat(audioFormat)
		cfg.AudioBitrate = Bitrate(quality)
	} else {
		cfg.Format = profile.VideoFormat
	}

	if path, ok := b.creds.Resolve(ctx, profile.Name); ok {
		cfg.CookiesPath = path
		if len(profile.CookieClients) > 0 {
			cfg.Clients = profile.CookieClients
		}
	}

	if len(b.override) > 0 {
		cfg.Clients = b.override
	}

	return cfg, nil
}

func normalizeAudioFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "m4a":
		return "m4a"
	case "wav":
		return "wav"
	default:
		return "mp3"
	}
}
