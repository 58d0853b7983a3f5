// Package platform classifies source URLs into extraction profiles.
//
// Profiles are static templates: matched, never mutated. The selector walks
// a fixed, ordered list of host predicates and returns the first match, so
// more specific domains must be registered before broader ones. URLs that
// match nothing get the generic profile.
package platform

import (
	"net/url"
	"strings"
)

// Kind tags the recognized platform families.
type Kind int

const (
	KindGeneric Kind = iota
	KindBilibili
	KindYouTube
	KindShortVideo
)

func (k Kind) String() string {
	switch k {
	case KindBilibili:
		return "bilibili"
	case KindYouTube:
		return "youtube"
	case KindShortVideo:
		return "shortvideo"
	default:
		return "generic"
	}
}

// Profile is the extraction-configuration template for one platform.
type Profile struct {
	Name string
	Kind Kind

	// hosts are the domain suffixes this profile claims.
	hosts []string

	// Blocked platforms are rejected at submission time.
	Blocked bool
	// BlockedReason is surfaced to the submitting caller.
	BlockedReason string

	// AudioFormat and VideoFormat are format selectors handed to the engine.
	AudioFormat string
	VideoFormat string

	// Headers sent with every engine request for this platform.
	Headers map[string]string

	// Clients is the default client identity list. CookieClients replaces it
	// when a credential is resolved; FallbackClients is tried exactly once
	// after a failed download. Empty slices mean the platform has no such
	// variant.
	Clients         []string
	CookieClients   []string
	FallbackClients []string

	// SkipStreams lists stream protocols skipped in audio-only mode.
	SkipStreams []string

	// ExtractorArgs are raw engine extractor arguments, pre-rendered.
	ExtractorArgs []string
}

// Matches reports whether host falls under one of the profile's domains.
func (p *Profile) Matches(host string) bool {
	for _, domain := range p.hosts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	androidUA = "com.google.android.youtube/17.36.4 (Linux; U; Android 11) gzip"
)

// defaultProfiles is the fixed, ordered predicate list. douyin precedes the
// short-video family so its block takes effect before the broader match.
func defaultProfiles() []*Profile {
	return []*Profile{
		{
			Name:          "bilibili",
			Kind:          KindBilibili,
			hosts:         []string{"bilibili.com", "b23.tv"},
			AudioFormat:   "bestaudio[ext=m4a]/bestaudio/best",
			VideoFormat:   "best[height<=720]/best",
			ExtractorArgs: []string{"bilibili:play_url_ssl=true"},
			Headers: map[string]string{
				"User-Agent": desktopUA,
				"Referer":    "https://www.bilibili.com/",
				"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			},
		},
		{
			Name:            "youtube",
			Kind:            KindYouTube,
			hosts:           []string{"youtube.com", "youtu.be"},
			AudioFormat:     "bestaudio/best",
			VideoFormat:     "best[height<=720]/best",
			Clients:         []string{"android_creator", "android", "web"},
			CookieClients:   []string{"web", "web_safari"},
			FallbackClients: []string{"ios", "mweb"},
			SkipStreams:     []string{"hls", "dash"},
			Headers: map[string]string{
				"User-Agent":      androidUA,
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
		{
			Name:          "douyin",
			Kind:          KindShortVideo,
			hosts:         []string{"douyin.com"},
			Blocked:       true,
			BlockedReason: "douyin is not supported due to anti-scraping restrictions; use another platform",
		},
		{
			Name:        "shortvideo",
			Kind:        KindShortVideo,
			hosts:       []string{"tiktok.com", "xiaohongshu.com", "kuaishou.com"},
			AudioFormat: "bestaudio/best",
			VideoFormat: "best[height<=720]/best",
			Headers: map[string]string{
				"User-Agent":      desktopUA,
				"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
			},
		},
	}
}

func genericProfile() *Profile {
	return &Profile{
		Name:        "generic",
		Kind:        KindGeneric,
		AudioFormat: "bestaudio/best",
		VideoFormat: "best[height<=720]/best",
		Headers: map[string]string{
			"User-Agent":      desktopUA,
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		},
	}
}

// Selector resolves URLs to platform profiles.
type Selector struct {
	profiles []*Profile
	generic  *Profile
}

// NewSelector creates a Selector with the built-in profile set.
func NewSelector() *Selector {
	return &Selector{profiles: defaultProfiles(), generic: genericProfile()}
}

// Select returns the profile for rawURL: the first profile whose domain
// predicate matches the normalized host, or the generic profile.
func (s *Selector) Select(rawURL string) *Profile {
	host := normalizeHost(rawURL)
	for _, p := range s.profiles {
		if p.Matches(host) {
			return p
		}
	}
	return s.generic
}

// Supported lists the recognized platform names, blocked ones excluded.
func (s *Selector) Supported() []string {
	names := make([]string, 0, len(s.profiles))
	for _, p := range s.profiles {
		if !p.Blocked {
			names = append(names, p.Name)
		}
	}
	return names
}

// normalizeHost extracts the lowercased host, stripping any port and a
// leading www. Unparseable input degrades to the lowercased raw string so
// suffix matching still has something to work with.
func normalizeHost(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
