package rules

import (
	"path"
	"strings"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaItem is a reference to an already-uploaded asset. Items are shared by
// reference: the same URL may appear in several platforms' content at once.
type MediaItem struct {
	URL  string `json:"url" yaml:"url"`
	Type string `json:"type" yaml:"type"`
}

func (m MediaItem) IsVideo() bool {
	return strings.EqualFold(strings.TrimSpace(m.Type), MediaTypeVideo)
}

// HasVideo reports whether any item in the list is a video.
func HasVideo(items []MediaItem) bool {
	for _, item := range items {
		if item.IsVideo() {
			return true
		}
	}
	return false
}

func CountVideos(items []MediaItem) int {
	total := 0
	for _, item := range items {
		if item.IsVideo() {
			total++
		}
	}
	return total
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".m4v":  {},
	".webm": {},
	".avi":  {},
	".mkv":  {},
}

// InferMediaType guesses image|video from the URL extension. The media store
// owns the authoritative MIME decision; this is the fallback hint used when
// only a URL is known.
func InferMediaType(url string) string {
	trimmed := strings.TrimSpace(url)
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	ext := strings.ToLower(path.Ext(trimmed))
	if _, ok := videoExtensions[ext]; ok {
		return MediaTypeVideo
	}
	return MediaTypeImage
}
