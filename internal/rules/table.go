package rules

// FormatRule captures the media constraints a format imposes regardless of
// platform. Platform-specific exceptions (tiktok carousel size, instagram
// carousel cap) are layered on top in CheckFormat.
type FormatRule struct {
	RequiresMedia bool
	RequiresVideo bool
	MinMediaCount int
	MaxMediaCount int
}

const (
	// TikTok photo-mode carousels allow far more slides than the generic
	// carousel rule; CheckFormat applies this cap as an override.
	TikTokCarouselMaxItems = 35

	InstagramCarouselMaxItems = 10
)

var formatRules = map[Format]FormatRule{
	FormatFeed:     {RequiresMedia: true, MinMediaCount: 1, MaxMediaCount: 10},
	FormatStory:    {RequiresMedia: true, MinMediaCount: 1, MaxMediaCount: 1},
	FormatReel:     {RequiresMedia: true, RequiresVideo: true, MinMediaCount: 1, MaxMediaCount: 1},
	FormatPost:     {MinMediaCount: 0, MaxMediaCount: 4},
	FormatShort:    {RequiresMedia: true, RequiresVideo: true, MinMediaCount: 1, MaxMediaCount: 1},
	FormatVideo:    {RequiresMedia: true, RequiresVideo: true, MinMediaCount: 1, MaxMediaCount: 1},
	FormatCarousel: {RequiresMedia: true, MinMediaCount: 2, MaxMediaCount: 10},
	FormatThread:   {MinMediaCount: 0, MaxMediaCount: 4},
	FormatPin:      {RequiresMedia: true, MinMediaCount: 1, MaxMediaCount: 1},
	FormatLink:     {MinMediaCount: 0, MaxMediaCount: 1},
}

var characterLimits = map[Platform]int{
	PlatformInstagram: 2200,
	PlatformX:         280,
	PlatformFacebook:  63206,
	PlatformLinkedIn:  3000,
	PlatformYouTube:   5000,
	PlatformTikTok:    2200,
	PlatformThreads:   500,
}

var availableFormats = map[Platform][]Format{
	PlatformInstagram: {FormatFeed, FormatStory, FormatReel, FormatCarousel},
	PlatformX:         {FormatPost, FormatThread, FormatVideo},
	PlatformFacebook:  {FormatPost, FormatStory, FormatReel, FormatVideo, FormatLink},
	PlatformLinkedIn:  {FormatPost, FormatVideo, FormatLink},
	PlatformYouTube:   {FormatVideo, FormatShort},
	PlatformTikTok:    {FormatVideo, FormatCarousel},
	PlatformThreads:   {FormatPost, FormatThread, FormatVideo},
}

// Rule returns the static constraint record for a format. Unknown formats
// resolve to the zero rule, which permits anything; ParseFormat is the
// gate that keeps unknown formats out.
func Rule(format Format) FormatRule {
	return formatRules[format]
}

// CharacterLimit returns the maximum caption length for a platform.
func CharacterLimit(platform Platform) int {
	return characterLimits[platform]
}

// AvailableFormats lists the formats a platform can publish, most canonical
// first. The head of the list is the platform's default format.
func AvailableFormats(platform Platform) []Format {
	formats := availableFormats[platform]
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// DefaultFormat returns the platform's first available format.
func DefaultFormat(platform Platform) Format {
	formats := availableFormats[platform]
	if len(formats) == 0 {
		return FormatPost
	}
	return formats[0]
}

// SupportsFormat reports whether a platform can publish the given format.
func SupportsFormat(platform Platform, format Format) bool {
	for _, available := range availableFormats[platform] {
		if available == format {
			return true
		}
	}
	return false
}
