package platform

import "testing"

func TestSelector(t *testing.T) {
	selector := NewSelector()

	t.Run("Select", func(t *testing.T) {
		cases := []struct {
			name string
			url  string
			want Kind
		}{
			{"bilibili video", "https://www.bilibili.com/video/xyz", KindBilibili},
			{"bilibili short link", "https://b23.tv/abc", KindBilibili},
			{"youtube short link", "https://youtu.be/abc", KindYouTube},
			{"youtube watch", "https://www.youtube.com/watch?v=abc", KindYouTube},
			{"youtube music subdomain", "https://music.youtube.com/watch?v=abc", KindYouTube},
			{"tiktok", "https://www.tiktok.com/@user/video/123", KindShortVideo},
			{"unknown host", "https://example.com/x", KindGeneric},
			{"unparseable input", "not a url at all", KindGeneric},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got := selector.Select(tc.url)
				if got.Kind != tc.want {
					t.Errorf("Select(%q) = %s, want %s", tc.url, got.Kind, tc.want)
				}
			})
		}
	})

	t.Run("both youtube hosts share one profile", func(t *testing.T) {
		a := selector.Select("https://youtu.be/abc")
		b := selector.Select("https://www.youtube.com/watch?v=abc")
		if a != b {
			t.Error("expected youtu.be and youtube.com to resolve to the same profile")
		}
	})

	t.Run("host suffix matching is not substring matching", func(t *testing.T) {
		got := selector.Select("https://notyoutube.com/watch?v=abc")
		if got.Kind != KindGeneric {
			t.Errorf("expected generic profile for notyoutube.com, got %s", got.Kind)
		}
	})

	t.Run("douyin is blocked", func(t *testing.T) {
		got := selector.Select("https://www.douyin.com/video/123")
		if !got.Blocked {
			t.Error("expected douyin profile to be blocked")
		}
		if got.BlockedReason == "" {
			t.Error("expected a reason for the block")
		}
	})

	t.Run("generic profile has no client variants", func(t *testing.T) {
		got := selector.Select("https://example.com/x")
		if len(got.Clients) != 0 || len(got.FallbackClients) != 0 {
			t.Error("generic profile should not define client variants")
		}
		if got.AudioFormat == "" || got.VideoFormat == "" {
			t.Error("generic profile must define format selectors")
		}
	})

	t.Run("Supported", func(t *testing.T) {
		names := selector.Supported()
		for _, name := range names {
			if name == "douyin" {
				t.Error("blocked platforms should not be listed as supported")
			}
		}
		if len(names) == 0 {
			t.Error("expected at least one supported platform")
		}
	})
}
