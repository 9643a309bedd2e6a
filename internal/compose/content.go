package compose

import (
	"fmt"
	"strings"

	"github.com/postpilot/composer/internal/rules"
)

// EditMode governs how edits to one platform's content propagate to the
// other selected platforms.
type EditMode string

const (
	// EditModeUnified keeps every selected platform in sync with the base
	// content: caption edits on the primary platform and title/link edits
	// from anywhere fan out to all selected platforms.
	EditModeUnified EditMode = "unified"

	// EditModePerPlatform scopes every edit to the platform it was made on.
	EditModePerPlatform EditMode = "per-platform"
)

func ParseEditMode(value string) (EditMode, error) {
	switch EditMode(strings.ToLower(strings.TrimSpace(value))) {
	case EditModeUnified:
		return EditModeUnified, nil
	case EditModePerPlatform:
		return EditModePerPlatform, nil
	case "":
		return EditModeUnified, nil
	default:
		return "", fmt.Errorf("unsupported edit mode %q: expected unified|per-platform", value)
	}
}

// PlatformContent is one platform's mutable copy of the post. Instances are
// created lazily on first selection and deliberately survive deselection so
// a re-selected platform gets its prior edits back.
type PlatformContent struct {
	Caption  string            `json:"caption" yaml:"caption"`
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	Link     string            `json:"link,omitempty" yaml:"link,omitempty"`
	Media    []rules.MediaItem `json:"media,omitempty" yaml:"media,omitempty"`
	Hashtags []string          `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
}

func (c PlatformContent) Clone() PlatformContent {
	out := c
	if c.Media != nil {
		out.Media = make([]rules.MediaItem, len(c.Media))
		copy(out.Media, c.Media)
	}
	if c.Hashtags != nil {
		out.Hashtags = make([]string, len(c.Hashtags))
		copy(out.Hashtags, c.Hashtags)
	}
	return out
}

// IsEmpty reports whether the record carries no author-entered content.
func (c PlatformContent) IsEmpty() bool {
	return strings.TrimSpace(c.Caption) == "" &&
		strings.TrimSpace(c.Title) == "" &&
		strings.TrimSpace(c.Link) == "" &&
		len(c.Media) == 0 &&
		len(c.Hashtags) == 0
}

// Variant binds a selected platform to its single chosen format. A platform
// has at most one variant at a time; choosing a new format replaces it.
type Variant struct {
	Platform     rules.Platform `json:"platform"`
	Format       rules.Format   `json:"format"`
	SyncWithBase bool           `json:"sync_with_base"`
}
