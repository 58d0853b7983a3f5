package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig                `toml:"server"`
	Storage     StorageConfig               `toml:"storage"`
	Scheduler   SchedulerConfig             `toml:"scheduler"`
	Extractor   ExtractorConfig             `toml:"extractor"`
	API         APIConfig                   `toml:"api"`
	History     HistoryConfig               `toml:"history"`
	Credentials map[string]CredentialSource `toml:"credentials"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
}

// StorageConfig contains output directory settings and the retention age
// applied to both produced files and task records.
type StorageConfig struct {
	Dir         string `toml:"dir"`
	MaxAgeHours int    `toml:"max_age_hours"`
}

// SchedulerConfig sizes the background worker pool.
type SchedulerConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// ExtractorConfig contains settings passed through to the extraction engine.
type ExtractorConfig struct {
	Binary         string   `toml:"binary"`
	ProxyURL       string   `toml:"proxy_url"`
	GeoCountry     string   `toml:"geo_country"`
	ClientOverride []string `toml:"client_override"`
}

// APIConfig points client commands and the task monitor at a running
// extraction service.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// HistoryConfig enables the sqlite archive of finished extractions.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// CredentialSource is the ordered set of cookie-material strategies for one
// platform: a local file path, a remote fetch URL, and an inline
// base64-encoded blob, tried in that order.
type CredentialSource struct {
	File   string `toml:"file"`
	URL    string `toml:"url"`
	Inline string `toml:"inline"`
}

// Empty reports whether no strategy is configured at all.
func (c CredentialSource) Empty() bool {
	return c.File == "" && c.URL == "" && c.Inline == ""
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the configuration. The
// credential, proxy and geo settings are deployment secrets and follow the
// convention of being injected through the environment rather than the file.
//
//	PORT                     server port
//	EXTRACTOR_PROXY          proxy address handed to the engine
//	EXTRACTOR_GEO_COUNTRY    geo-bypass country code
//	EXTRACTOR_CLIENTS        comma-separated client identity override
//	<PLATFORM>_COOKIES_FILE  local cookie file path (e.g. YOUTUBE_COOKIES_FILE)
//	<PLATFORM>_COOKIES_URL   remote cookie fetch URL
//	<PLATFORM>_COOKIES_B64   inline base64-encoded cookie blob
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("EXTRACTOR_PROXY"); v != "" {
		c.Extractor.ProxyURL = v
	}
	if v := os.Getenv("EXTRACTOR_GEO_COUNTRY"); v != "" {
		c.Extractor.GeoCountry = v
	}
	if v := os.Getenv("EXTRACTOR_CLIENTS"); v != "" {
		parts := strings.Split(v, ",")
		clients := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				clients = append(clients, p)
			}
		}
		c.Extractor.ClientOverride = clients
	}

	if c.Credentials == nil {
		c.Credentials = map[string]CredentialSource{}
	}
	for _, platform := range []string{"youtube", "bilibili"} {
		prefix := strings.ToUpper(platform)
		src := c.Credentials[platform]
		if v := os.Getenv(prefix + "_COOKIES_FILE"); v != "" {
			src.File = v
		}
		if v := os.Getenv(prefix + "_COOKIES_URL"); v != "" {
			src.URL = v
		}
		if v := os.Getenv(prefix + "_COOKIES_B64"); v != "" {
			src.Inline = v
		}
		c.Credentials[platform] = src
	}
}
