package rules

// Detect infers the best-fitting format for a platform from the current
// media selection. Priority order, first match wins:
//
//  1. no media: the platform's text-first format
//  2. any video: the platform's video format
//  3. exactly one image: same as the text-first format
//  4. several images: carousel where supported, otherwise text-first
//
// The result is advisory. Callers that track an explicit user choice should
// go through Suggest, which only switches formats opportunistically.
func Detect(platform Platform, mediaCount int, hasVideo bool) Format {
	if mediaCount == 0 {
		return textFirstFormat(platform)
	}
	if hasVideo {
		return videoFormat(platform, mediaCount)
	}
	if mediaCount == 1 {
		return textFirstFormat(platform)
	}
	if supportsCarouselCount(platform, mediaCount) {
		return FormatCarousel
	}
	return textFirstFormat(platform)
}

// Suggest returns the format a platform variant should move to after a media
// change. The current format is kept unless the detected format differs and
// is actually available on the platform: auto-update is opportunistic, never
// forced.
func Suggest(platform Platform, current Format, mediaCount int, hasVideo bool) Format {
	detected := Detect(platform, mediaCount, hasVideo)
	if detected == current {
		return current
	}
	if !SupportsFormat(platform, detected) {
		return current
	}
	return detected
}

func textFirstFormat(platform Platform) Format {
	if platform == PlatformInstagram {
		return FormatFeed
	}
	return FormatPost
}

func videoFormat(platform Platform, mediaCount int) Format {
	switch platform {
	case PlatformInstagram:
		return FormatReel
	case PlatformYouTube:
		if mediaCount == 1 {
			return FormatShort
		}
		return FormatVideo
	default:
		return FormatVideo
	}
}

func supportsCarouselCount(platform Platform, mediaCount int) bool {
	switch platform {
	case PlatformInstagram:
		return mediaCount <= InstagramCarouselMaxItems
	case PlatformTikTok:
		return mediaCount <= TikTokCarouselMaxItems
	default:
		return false
	}
}
