// Package extract builds extraction configurations and drives the external
// extraction engine through its two-phase probe/download protocol.
package extract

import "context"

// Metadata is the result of a probe: enough to describe the media without
// downloading it.
type Metadata struct {
	Title    string
	Duration int // seconds
}

// Prober fetches media metadata without downloading.
type Prober interface {
	Probe(ctx context.Context, cfg *Config) (*Metadata, error)
}

// Downloader produces the output file described by cfg.
type Downloader interface {
	Download(ctx context.Context, cfg *Config) error
}

// Engine is the extraction engine collaborator.
type Engine interface {
	Prober
	Downloader
}
