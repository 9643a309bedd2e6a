package rules

import "fmt"

// FormatCheck is the outcome of validating one platform/format/media
// combination. Reason carries the first violated rule only; callers that
// want every violation re-run the check after fixing each one.
type FormatCheck struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func checkFailure(format string, args ...any) FormatCheck {
	return FormatCheck{Reason: fmt.Sprintf(format, args...)}
}

// CheckFormat validates media against a format's rule plus the platform
// overlays. Checks run in a fixed order and short-circuit on the first
// failure, so the same inputs always report the same reason.
func CheckFormat(platform Platform, format Format, media []MediaItem) FormatCheck {
	rule := Rule(format)
	mediaCount := len(media)
	hasVideo := HasVideo(media)

	if rule.RequiresMedia && mediaCount == 0 {
		return checkFailure("%s format requires media", format)
	}
	if rule.RequiresVideo && !hasVideo {
		return checkFailure("%s format requires video", format)
	}
	if mediaCount < rule.MinMediaCount {
		return checkFailure("%s format requires at least %d media items", format, rule.MinMediaCount)
	}
	if mediaCount > rule.MaxMediaCount {
		if !(format == FormatCarousel && platform == PlatformTikTok && mediaCount <= TikTokCarouselMaxItems) {
			return checkFailure("%s format exceeds max media (%d/%d)", format, mediaCount, rule.MaxMediaCount)
		}
	}
	// Covered by the min-count rule, restated so carousel semantics stay
	// explicit if the table ever changes.
	if format == FormatCarousel && mediaCount < 2 {
		return checkFailure("carousel requires at least 2 media items")
	}

	if check := platformOverlay(platform, format, media, mediaCount, hasVideo); !check.Valid {
		return check
	}

	return FormatCheck{Valid: true}
}

func platformOverlay(platform Platform, format Format, media []MediaItem, mediaCount int, hasVideo bool) FormatCheck {
	switch platform {
	case PlatformInstagram:
		if format == FormatReel && !hasVideo {
			return checkFailure("instagram reel requires video media")
		}
		if format == FormatCarousel && mediaCount < 2 {
			return checkFailure("carousel requires at least 2 media items")
		}
		if format == FormatCarousel && mediaCount > InstagramCarouselMaxItems {
			return checkFailure("instagram carousel supports at most %d media items", InstagramCarouselMaxItems)
		}
	case PlatformTikTok:
		if format == FormatCarousel && mediaCount > TikTokCarouselMaxItems {
			return checkFailure("tiktok carousel supports at most %d media items", TikTokCarouselMaxItems)
		}
		if format == FormatCarousel && hasVideo && CountVideos(media) != mediaCount {
			return checkFailure("no mixing media types in a carousel")
		}
	case PlatformYouTube:
		if (format == FormatVideo || format == FormatShort) && !hasVideo {
			return checkFailure("youtube %s requires video media", format)
		}
	}
	return FormatCheck{Valid: true}
}
