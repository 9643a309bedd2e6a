package compose

import (
	"fmt"
	"strings"

	"github.com/postpilot/composer/internal/rules"
)

// Session is the authoring state for one post: the shared base content, the
// ordered platform selection, one variant per selected platform, and the
// per-platform content map. It lives for a single authoring pass and is
// reset whenever the owning brand context changes.
//
// All mutation happens on the caller's goroutine; the engine has no internal
// parallelism. Validation reads are pure over the same state.
type Session struct {
	brand    string
	mode     EditMode
	base     PlatformContent
	selected []rules.Platform
	variants map[rules.Platform]Variant
	contents map[rules.Platform]*PlatformContent
}

func NewSession(brand string) *Session {
	session := &Session{}
	session.Reset(brand)
	return session
}

// Reset clears selection, variants, per-platform content, and base content
// in one step. Called on construction and whenever the brand scope changes.
func (s *Session) Reset(brand string) {
	s.brand = strings.TrimSpace(brand)
	s.mode = EditModeUnified
	s.base = PlatformContent{}
	s.selected = nil
	s.variants = map[rules.Platform]Variant{}
	s.contents = map[rules.Platform]*PlatformContent{}
}

func (s *Session) Brand() string { return s.brand }

func (s *Session) EditMode() EditMode { return s.mode }

// SetEditMode switches propagation behavior for future edits only; content
// that already diverged is left as it is.
func (s *Session) SetEditMode(mode EditMode) error {
	parsed, err := ParseEditMode(string(mode))
	if err != nil {
		return err
	}
	s.mode = parsed
	return nil
}

// Selected returns the platforms in selection order.
func (s *Session) Selected() []rules.Platform {
	out := make([]rules.Platform, len(s.selected))
	copy(out, s.selected)
	return out
}

func (s *Session) IsSelected(platform rules.Platform) bool {
	for _, selected := range s.selected {
		if selected == platform {
			return true
		}
	}
	return false
}

// PrimaryPlatform is the first entry of the ordered selection. Unified-mode
// caption propagation keys off it, so it is an explicit derived value rather
// than an implicit position.
func (s *Session) PrimaryPlatform() (rules.Platform, bool) {
	if len(s.selected) == 0 {
		return "", false
	}
	return s.selected[0], true
}

// SelectPlatform adds a platform to the selection. Content is seeded from
// the base values only when the platform has never been selected before;
// a platform that was deselected earlier gets its prior edits back. The
// variant format starts from media detection, falling back to the
// platform's default when detection suggests something unavailable.
func (s *Session) SelectPlatform(platform rules.Platform) error {
	if _, err := rules.ParsePlatform(string(platform)); err != nil {
		return err
	}
	if s.IsSelected(platform) {
		return nil
	}
	s.selected = append(s.selected, platform)

	if _, ok := s.contents[platform]; !ok {
		seeded := s.base.Clone()
		seeded.Media = nil
		s.contents[platform] = &seeded
	}

	media := s.EffectiveMedia(platform)
	format := rules.Detect(platform, len(media), rules.HasVideo(media))
	if !rules.SupportsFormat(platform, format) {
		format = rules.DefaultFormat(platform)
	}
	s.variants[platform] = Variant{
		Platform:     platform,
		Format:       format,
		SyncWithBase: s.mode == EditModeUnified,
	}
	return nil
}

// DeselectPlatform removes the variant but keeps the platform's content so
// re-selecting restores it.
func (s *Session) DeselectPlatform(platform rules.Platform) {
	for i, selected := range s.selected {
		if selected == platform {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			break
		}
	}
	delete(s.variants, platform)
}

func (s *Session) Variant(platform rules.Platform) (Variant, bool) {
	variant, ok := s.variants[platform]
	return variant, ok
}

// SetFormat replaces the platform's own variant only; other platforms'
// variants are untouched.
func (s *Session) SetFormat(platform rules.Platform, format rules.Format) error {
	if !s.IsSelected(platform) {
		return fmt.Errorf("platform %q is not selected", platform)
	}
	if !rules.SupportsFormat(platform, format) {
		return fmt.Errorf("platform %q does not support format %q", platform, format)
	}
	variant := s.variants[platform]
	variant.Platform = platform
	variant.Format = format
	s.variants[platform] = variant
	return nil
}

// Content returns a copy of the platform's stored content record.
func (s *Session) Content(platform rules.Platform) (PlatformContent, bool) {
	content, ok := s.contents[platform]
	if !ok {
		return PlatformContent{}, false
	}
	return content.Clone(), true
}

func (s *Session) Base() PlatformContent {
	return s.base.Clone()
}

// SetCaption records a caption edit made on the given platform's editor.
// In unified mode an edit on the primary platform is the shared caption: it
// updates the base value and every selected platform. Any other edit stays
// local to its platform.
func (s *Session) SetCaption(platform rules.Platform, caption string) error {
	content, err := s.contentFor(platform)
	if err != nil {
		return err
	}

	primary, hasPrimary := s.PrimaryPlatform()
	if s.mode == EditModeUnified && hasPrimary && platform == primary {
		s.base.Caption = caption
		for _, selected := range s.selected {
			s.contents[selected].Caption = caption
		}
		return nil
	}
	content.Caption = caption
	return nil
}

// SetTitle updates the title. Unified mode has a single title editor, so
// the new value lands on the base and every selected platform no matter
// which platform's input fired the change.
func (s *Session) SetTitle(platform rules.Platform, title string) error {
	content, err := s.contentFor(platform)
	if err != nil {
		return err
	}
	if s.mode == EditModeUnified {
		s.base.Title = title
		for _, selected := range s.selected {
			s.contents[selected].Title = title
		}
		return nil
	}
	content.Title = title
	return nil
}

// SetLink updates the link with the same propagation rule as SetTitle.
func (s *Session) SetLink(platform rules.Platform, link string) error {
	content, err := s.contentFor(platform)
	if err != nil {
		return err
	}
	if s.mode == EditModeUnified {
		s.base.Link = link
		for _, selected := range s.selected {
			s.contents[selected].Link = link
		}
		return nil
	}
	content.Link = link
	return nil
}

// SetHashtags follows the caption rule: shared when edited on the primary
// platform in unified mode, local otherwise.
func (s *Session) SetHashtags(platform rules.Platform, hashtags []string) error {
	content, err := s.contentFor(platform)
	if err != nil {
		return err
	}
	cloned := cloneHashtags(hashtags)

	primary, hasPrimary := s.PrimaryPlatform()
	if s.mode == EditModeUnified && hasPrimary && platform == primary {
		s.base.Hashtags = cloned
		for _, selected := range s.selected {
			s.contents[selected].Hashtags = cloneHashtags(hashtags)
		}
		return nil
	}
	content.Hashtags = cloned
	return nil
}

// SetBaseCaption edits the shared caption directly (no platform editor
// involved). Selected platforms are updated in unified mode only.
func (s *Session) SetBaseCaption(caption string) {
	s.base.Caption = caption
	if s.mode == EditModeUnified {
		for _, selected := range s.selected {
			s.contents[selected].Caption = caption
		}
	}
}

// SetBaseMedia replaces the shared media list and opportunistically
// re-detects each selected platform's format against its effective media.
func (s *Session) SetBaseMedia(items []rules.MediaItem) {
	s.base.Media = cloneMedia(items)
	s.refreshFormats()
}

// AddBaseMedia appends one item to the shared media list, typically after
// an upload completes.
func (s *Session) AddBaseMedia(item rules.MediaItem) {
	s.base.Media = append(s.base.Media, item)
	s.refreshFormats()
}

// SetPlatformMedia overrides one platform's media list without touching the
// shared list, then re-detects that platform's format.
func (s *Session) SetPlatformMedia(platform rules.Platform, items []rules.MediaItem) error {
	content, err := s.contentFor(platform)
	if err != nil {
		return err
	}
	content.Media = cloneMedia(items)
	s.refreshFormat(platform)
	return nil
}

// ApplyGenerated merges AI-produced content through the ordinary setters so
// unified/per-platform propagation applies exactly as for manual edits.
// Empty fields are skipped rather than clearing prior content.
func (s *Session) ApplyGenerated(platform rules.Platform, title string, caption string, hashtags []string) error {
	if !s.IsSelected(platform) {
		return fmt.Errorf("platform %q is not selected", platform)
	}
	if strings.TrimSpace(caption) != "" {
		if err := s.SetCaption(platform, caption); err != nil {
			return err
		}
	}
	if strings.TrimSpace(title) != "" {
		if err := s.SetTitle(platform, title); err != nil {
			return err
		}
	}
	if len(hashtags) > 0 {
		if err := s.SetHashtags(platform, hashtags); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveContent resolves the content used for validation and submission:
// per-field platform value when present, base value otherwise. Media uses
// the platform list only when non-empty.
func (s *Session) EffectiveContent(platform rules.Platform) PlatformContent {
	effective := s.base.Clone()
	content, ok := s.contents[platform]
	if !ok {
		return effective
	}
	if strings.TrimSpace(content.Caption) != "" {
		effective.Caption = content.Caption
	}
	if strings.TrimSpace(content.Title) != "" {
		effective.Title = content.Title
	}
	if strings.TrimSpace(content.Link) != "" {
		effective.Link = content.Link
	}
	if len(content.Hashtags) > 0 {
		effective.Hashtags = cloneHashtags(content.Hashtags)
	}
	effective.Media = s.EffectiveMedia(platform)
	return effective
}

// EffectiveMedia returns the platform's media override when it has one, the
// shared media list otherwise.
func (s *Session) EffectiveMedia(platform rules.Platform) []rules.MediaItem {
	if content, ok := s.contents[platform]; ok && len(content.Media) > 0 {
		return cloneMedia(content.Media)
	}
	return cloneMedia(s.base.Media)
}

func (s *Session) contentFor(platform rules.Platform) (*PlatformContent, error) {
	if !s.IsSelected(platform) {
		return nil, fmt.Errorf("platform %q is not selected", platform)
	}
	content, ok := s.contents[platform]
	if !ok {
		content = &PlatformContent{}
		s.contents[platform] = content
	}
	return content, nil
}

func (s *Session) refreshFormats() {
	for _, selected := range s.selected {
		s.refreshFormat(selected)
	}
}

func (s *Session) refreshFormat(platform rules.Platform) {
	variant, ok := s.variants[platform]
	if !ok {
		return
	}
	media := s.EffectiveMedia(platform)
	variant.Format = rules.Suggest(platform, variant.Format, len(media), rules.HasVideo(media))
	s.variants[platform] = variant
}

func cloneMedia(items []rules.MediaItem) []rules.MediaItem {
	if items == nil {
		return nil
	}
	out := make([]rules.MediaItem, len(items))
	copy(out, items)
	return out
}

func cloneHashtags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
