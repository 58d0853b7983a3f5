package extract

import (
	"strings"
	"testing"
)

func TestCLIArgs(t *testing.T) {
	cli := NewCLI("yt-dlp", nil)

	t.Run("common args render cookies proxy geo and clients", func(t *testing.T) {
		cfg := &Config{
			Kind:        KindAudio,
			Headers:     map[string]string{"User-Agent": "ua", "Referer": "https://example.com/"},
			CookiesPath: "/tmp/cookies.txt",
			ProxyURL:    "socks5://127.0.0.1:1080",
			GeoCountry:  "US",
			Clients:     []string{"android", "web"},
			SkipStreams: []string{"hls", "dash"},
			ExtractorArgs: []string{
				"bilibili:play_url_ssl=true",
			},
		}

		joined := strings.Join(cli.commonArgs(cfg), " ")

		for _, want := range []string{
			"--add-headers Referer:https://example.com/",
			"--add-headers User-Agent:ua",
			"--cookies /tmp/cookies.txt",
			"--proxy socks5://127.0.0.1:1080",
			"--geo-bypass-country US",
			"--extractor-args youtube:player_client=android,web",
			"--extractor-args youtube:skip=hls,dash",
			"--extractor-args bilibili:play_url_ssl=true",
		} {
			if !strings.Contains(joined, want) {
				t.Errorf("expected args to contain %q, got %q", want, joined)
			}
		}
	})

	t.Run("empty settings render nothing", func(t *testing.T) {
		args := cli.commonArgs(&Config{Kind: KindVideo})
		if len(args) != 0 {
			t.Errorf("expected no args, got %v", args)
		}
	})

	t.Run("skip streams apply to audio only", func(t *testing.T) {
		cfg := &Config{Kind: KindVideo, SkipStreams: []string{"hls"}}
		joined := strings.Join(cli.commonArgs(cfg), " ")
		if strings.Contains(joined, "skip=") {
			t.Error("video config should not render skip streams")
		}
	})

	t.Run("header order is deterministic", func(t *testing.T) {
		cfg := &Config{Headers: map[string]string{"B": "2", "A": "1", "C": "3"}}
		first := strings.Join(cli.commonArgs(cfg), " ")
		for i := 0; i < 10; i++ {
			if got := strings.Join(cli.commonArgs(cfg), " "); got != first {
				t.Fatal("expected stable header ordering")
			}
		}
	})
}
