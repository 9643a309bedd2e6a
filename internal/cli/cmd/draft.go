package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/postpilot/composer/internal/compose"
	"github.com/postpilot/composer/internal/rules"
)

// Draft is the YAML authoring file the plan and submit commands consume.
// Top-level fields are the shared base content; overrides hold per-platform
// divergences and are replayed through the session's ordinary edit
// propagation, so in unified mode an override on the primary platform edits
// the shared value exactly as it would in an interactive editor.
type Draft struct {
	Brand      string                   `yaml:"brand"`
	EditMode   string                   `yaml:"edit_mode,omitempty"`
	Platforms  []string                 `yaml:"platforms"`
	Caption    string                   `yaml:"caption,omitempty"`
	Title      string                   `yaml:"title,omitempty"`
	Link       string                   `yaml:"link,omitempty"`
	Hashtags   []string                 `yaml:"hashtags,omitempty"`
	Media      []DraftMedia             `yaml:"media,omitempty"`
	Formats    map[string]string        `yaml:"formats,omitempty"`
	Overrides  map[string]DraftOverride `yaml:"overrides,omitempty"`
	ScheduleAt string                   `yaml:"schedule_at,omitempty"`
}

// DraftMedia references an already-hosted media asset. Type is inferred
// from the URL extension when omitted.
type DraftMedia struct {
	URL  string `yaml:"url"`
	Type string `yaml:"type,omitempty"`
}

type DraftOverride struct {
	Caption  string       `yaml:"caption,omitempty"`
	Title    string       `yaml:"title,omitempty"`
	Link     string       `yaml:"link,omitempty"`
	Hashtags []string     `yaml:"hashtags,omitempty"`
	Media    []DraftMedia `yaml:"media,omitempty"`
}

func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft file %s: %w", path, err)
	}

	draft := &Draft{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(draft); err != nil {
		return nil, fmt.Errorf("decode draft file %s: %w", path, err)
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft file %s: %w", path, err)
	}
	return draft, nil
}

func (d *Draft) Validate() error {
	if d == nil {
		return errors.New("draft is nil")
	}
	if strings.TrimSpace(d.Brand) == "" {
		return errors.New("brand is required")
	}
	if len(d.Platforms) == 0 {
		return errors.New("at least one platform is required")
	}
	if _, err := compose.ParseEditMode(d.EditMode); err != nil {
		return err
	}
	known := map[rules.Platform]bool{}
	for _, name := range d.Platforms {
		platform, err := rules.ParsePlatform(name)
		if err != nil {
			return err
		}
		if known[platform] {
			return fmt.Errorf("platform %q listed twice", platform)
		}
		known[platform] = true
	}
	for name, value := range d.Formats {
		platform, err := rules.ParsePlatform(name)
		if err != nil {
			return fmt.Errorf("formats: %w", err)
		}
		if !known[platform] {
			return fmt.Errorf("formats: platform %q is not in the platforms list", platform)
		}
		format, err := rules.ParseFormat(value)
		if err != nil {
			return fmt.Errorf("formats: %w", err)
		}
		if !rules.SupportsFormat(platform, format) {
			return fmt.Errorf("formats: platform %q does not support format %q", platform, format)
		}
	}
	for name := range d.Overrides {
		platform, err := rules.ParsePlatform(name)
		if err != nil {
			return fmt.Errorf("overrides: %w", err)
		}
		if !known[platform] {
			return fmt.Errorf("overrides: platform %q is not in the platforms list", platform)
		}
	}
	if strings.TrimSpace(d.ScheduleAt) != "" {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(d.ScheduleAt)); err != nil {
			return fmt.Errorf("schedule_at must be RFC3339: %w", err)
		}
	}
	return nil
}

// PublishAt returns the parsed schedule time, nil when the draft publishes
// immediately.
func (d *Draft) PublishAt() (*time.Time, error) {
	raw := strings.TrimSpace(d.ScheduleAt)
	if raw == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("schedule_at must be RFC3339: %w", err)
	}
	return &at, nil
}

// BuildSession replays the draft onto a fresh session: base content first,
// then platform selection, then per-platform format and content overrides.
func (d *Draft) BuildSession() (*compose.Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	mode, err := compose.ParseEditMode(d.EditMode)
	if err != nil {
		return nil, err
	}

	session := compose.NewSession(d.Brand)
	if err := session.SetEditMode(mode); err != nil {
		return nil, err
	}

	if d.Caption != "" {
		session.SetBaseCaption(d.Caption)
	}
	if len(d.Media) > 0 {
		session.SetBaseMedia(mediaItems(d.Media))
	}

	platforms := make([]rules.Platform, 0, len(d.Platforms))
	for _, name := range d.Platforms {
		platform, err := rules.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		if err := session.SelectPlatform(platform); err != nil {
			return nil, err
		}
		platforms = append(platforms, platform)
	}

	if err := applySharedFields(session, mode, platforms, d); err != nil {
		return nil, err
	}

	for name, value := range d.Formats {
		platform, _ := rules.ParsePlatform(name)
		format, _ := rules.ParseFormat(value)
		if err := session.SetFormat(platform, format); err != nil {
			return nil, err
		}
	}

	// Overrides are applied in the platforms list order, not map order, so
	// the same draft always produces the same content: the primary
	// platform's override lands first and later local overrides win over
	// anything it propagated.
	overridesByPlatform := map[rules.Platform]DraftOverride{}
	for name, override := range d.Overrides {
		platform, _ := rules.ParsePlatform(name)
		overridesByPlatform[platform] = override
	}
	for _, platform := range platforms {
		override, ok := overridesByPlatform[platform]
		if !ok {
			continue
		}
		if err := applyOverride(session, platform, override); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// applySharedFields lands the draft's top-level title, link, and hashtags.
// In unified mode one edit on the primary platform propagates; in
// per-platform mode each selected platform gets the value individually.
func applySharedFields(session *compose.Session, mode compose.EditMode, platforms []rules.Platform, d *Draft) error {
	targets := platforms[:1]
	if mode == compose.EditModePerPlatform {
		targets = platforms
	}
	for _, platform := range targets {
		if d.Title != "" {
			if err := session.SetTitle(platform, d.Title); err != nil {
				return err
			}
		}
		if d.Link != "" {
			if err := session.SetLink(platform, d.Link); err != nil {
				return err
			}
		}
		if len(d.Hashtags) > 0 {
			if err := session.SetHashtags(platform, d.Hashtags); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyOverride(session *compose.Session, platform rules.Platform, override DraftOverride) error {
	if override.Caption != "" {
		if err := session.SetCaption(platform, override.Caption); err != nil {
			return err
		}
	}
	if override.Title != "" {
		if err := session.SetTitle(platform, override.Title); err != nil {
			return err
		}
	}
	if override.Link != "" {
		if err := session.SetLink(platform, override.Link); err != nil {
			return err
		}
	}
	if len(override.Hashtags) > 0 {
		if err := session.SetHashtags(platform, override.Hashtags); err != nil {
			return err
		}
	}
	if len(override.Media) > 0 {
		if err := session.SetPlatformMedia(platform, mediaItems(override.Media)); err != nil {
			return err
		}
	}
	return nil
}

func mediaItems(media []DraftMedia) []rules.MediaItem {
	items := make([]rules.MediaItem, 0, len(media))
	for _, entry := range media {
		mediaType := entry.Type
		if mediaType == "" {
			mediaType = rules.InferMediaType(entry.URL)
		}
		items = append(items, rules.MediaItem{URL: entry.URL, Type: mediaType})
	}
	return items
}
