package rules

import (
	"fmt"
	"strings"
)

// Platform identifies a publishing destination. The set is closed: rule
// tables in this package switch exhaustively over it, so adding a platform
// without extending every table is a compile-time or test-time failure.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformX         Platform = "x"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformThreads   Platform = "threads"
)

// Format is the content shape a platform variant publishes as.
type Format string

const (
	FormatFeed     Format = "feed"
	FormatStory    Format = "story"
	FormatReel     Format = "reel"
	FormatPost     Format = "post"
	FormatShort    Format = "short"
	FormatVideo    Format = "video"
	FormatCarousel Format = "carousel"
	FormatThread   Format = "thread"
	FormatPin      Format = "pin"
	FormatLink     Format = "link"
)

var allPlatforms = []Platform{
	PlatformInstagram,
	PlatformX,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformYouTube,
	PlatformTikTok,
	PlatformThreads,
}

var allFormats = []Format{
	FormatFeed,
	FormatStory,
	FormatReel,
	FormatPost,
	FormatShort,
	FormatVideo,
	FormatCarousel,
	FormatThread,
	FormatPin,
	FormatLink,
}

// Platforms returns the closed platform set in canonical order.
func Platforms() []Platform {
	out := make([]Platform, len(allPlatforms))
	copy(out, allPlatforms)
	return out
}

// Formats returns every known content format in canonical order.
func Formats() []Format {
	out := make([]Format, len(allFormats))
	copy(out, allFormats)
	return out
}

func ParsePlatform(value string) (Platform, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "twitter" {
		normalized = string(PlatformX)
	}
	for _, platform := range allPlatforms {
		if normalized == string(platform) {
			return platform, nil
		}
	}
	return "", fmt.Errorf("unsupported platform %q: expected one of %s", value, joinPlatforms(allPlatforms))
}

func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, format := range allFormats {
		if normalized == string(format) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q", value)
}

func joinPlatforms(platforms []Platform) string {
	names := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		names = append(names, string(platform))
	}
	return strings.Join(names, "|")
}
