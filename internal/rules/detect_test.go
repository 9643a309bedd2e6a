package rules

import "testing"

func TestDetectPriorityOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		platform   Platform
		mediaCount int
		hasVideo   bool
		want       Format
	}{
		{"instagram no media", PlatformInstagram, 0, false, FormatFeed},
		{"x no media", PlatformX, 0, false, FormatPost},
		{"instagram single video", PlatformInstagram, 1, true, FormatReel},
		{"youtube single video", PlatformYouTube, 1, true, FormatShort},
		{"youtube video among several items", PlatformYouTube, 3, true, FormatVideo},
		{"tiktok video", PlatformTikTok, 1, true, FormatVideo},
		{"instagram single image", PlatformInstagram, 1, false, FormatFeed},
		{"linkedin single image", PlatformLinkedIn, 1, false, FormatPost},
		{"instagram multi image", PlatformInstagram, 4, false, FormatCarousel},
		{"instagram beyond carousel cap", PlatformInstagram, 11, false, FormatFeed},
		{"tiktok large photo set", PlatformTikTok, 20, false, FormatCarousel},
		{"tiktok beyond carousel cap", PlatformTikTok, 36, false, FormatPost},
		{"x multi image", PlatformX, 3, false, FormatPost},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Detect(tc.platform, tc.mediaCount, tc.hasVideo); got != tc.want {
				t.Fatalf("Detect(%s, %d, %t) = %q, want %q", tc.platform, tc.mediaCount, tc.hasVideo, got, tc.want)
			}
		})
	}
}

func TestDetectWithoutMediaIsTextFirstEverywhere(t *testing.T) {
	t.Parallel()

	for _, platform := range Platforms() {
		got := Detect(platform, 0, false)
		if got != FormatFeed && got != FormatPost {
			t.Fatalf("Detect(%s, 0, false) = %q, want a text-first format", platform, got)
		}
	}
}

func TestSuggestKeepsUnavailableDetection(t *testing.T) {
	t.Parallel()

	// Detect falls back to post for youtube without media, but youtube has
	// no post format, so the user's choice stands.
	if got := Suggest(PlatformYouTube, FormatVideo, 0, false); got != FormatVideo {
		t.Fatalf("Suggest kept %q, want video", got)
	}
}

func TestSuggestSwitchesToAvailableDetection(t *testing.T) {
	t.Parallel()

	if got := Suggest(PlatformInstagram, FormatFeed, 1, true); got != FormatReel {
		t.Fatalf("Suggest = %q, want reel", got)
	}
	if got := Suggest(PlatformInstagram, FormatReel, 1, true); got != FormatReel {
		t.Fatalf("Suggest moved away from matching format: %q", got)
	}
	if got := Suggest(PlatformTikTok, FormatVideo, 5, false); got != FormatCarousel {
		t.Fatalf("Suggest = %q, want carousel", got)
	}
}
