package submit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/postpilot/composer/internal/accounts"
	"github.com/postpilot/composer/internal/compose"
	"github.com/postpilot/composer/internal/rules"
)

const (
	ScheduleModeNow       = "now"
	ScheduleModeScheduled = "scheduled"

	MediaHintText  = "text"
	MediaHintImage = "image"
	MediaHintVideo = "video"
)

// FirstCommentNote is appended to a caption when the post carries a link.
// The raw link travels separately in the first_comment field instead of
// being inlined into the caption.
const FirstCommentNote = "Link added in first comment"

// RootContent is the shared fallback content of one request, taken from the
// bucket's first platform. Platforms whose effective content matches it
// carry no overrides.
type RootContent struct {
	Caption  string            `json:"caption"`
	Title    string            `json:"title,omitempty"`
	Media    []rules.MediaItem `json:"media,omitempty"`
	Hashtags []string          `json:"hashtags,omitempty"`
}

// Overrides holds only the per-platform fields that differ from the root
// content, plus the chosen format and the first-comment link.
type Overrides struct {
	Format       rules.Format      `json:"format"`
	Caption      string            `json:"caption,omitempty"`
	Title        string            `json:"title,omitempty"`
	Media        []rules.MediaItem `json:"media,omitempty"`
	Hashtags     []string          `json:"hashtags,omitempty"`
	FirstComment string            `json:"first_comment,omitempty"`
}

// PlatformEntry is one platform/account pairing inside a request.
type PlatformEntry struct {
	Platform  rules.Platform `json:"platform"`
	AccountID string         `json:"account_id"`
	Config    Overrides      `json:"config"`
}

// Schedule says when the request should go out. PublishAt is an RFC3339 UTC
// instant and is empty for immediate publishing.
type Schedule struct {
	Mode      string `json:"mode"`
	PublishAt string `json:"publish_at,omitempty"`
}

// Request is one publish request for the external publishing API, scoped to
// a single owning brand.
type Request struct {
	BatchID        string          `json:"batch_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	BrandID        string          `json:"brand_id"`
	Content        RootContent     `json:"content"`
	Platforms      []PlatformEntry `json:"platforms"`
	MediaType      string          `json:"media_type"`
	Schedule       Schedule        `json:"schedule"`
}

// BuildOptions steer one build pass. BrandScope, when set, produces a single
// request for that brand instead of bucketing by account ownership.
type BuildOptions struct {
	BrandScope string
	PublishAt  *time.Time
	Now        func() time.Time
}

// BuildResult carries the built requests plus the count of connected
// accounts that were skipped because their platform already had one.
type BuildResult struct {
	BatchID         string    `json:"batch_id"`
	Requests        []Request `json:"requests"`
	SkippedAccounts int       `json:"skipped_accounts,omitempty"`
}

// Build converts the session into per-brand publish requests. Unlike the
// authoring-time aggregator, every selected platform must validate cleanly;
// the first failing platform rejects the whole submission. The session is
// never mutated, so a failed build can be retried after edits.
func Build(session *compose.Session, directory *accounts.Directory, options BuildOptions) (*BuildResult, error) {
	if session == nil {
		return nil, errors.New("composition session is required")
	}
	if directory == nil {
		return nil, errors.New("account directory is required")
	}

	selected := session.Selected()
	if len(selected) == 0 {
		return nil, errors.New("no platforms selected")
	}

	validation := session.Validate()
	for _, platform := range selected {
		if violations := validation[platform]; len(violations) > 0 {
			return nil, fmt.Errorf("platform %s failed validation: %s", platform, violations[0])
		}
	}

	now := time.Now
	if options.Now != nil {
		now = options.Now
	}
	schedule, err := resolveSchedule(options.PublishAt, now())
	if err != nil {
		return nil, err
	}

	brandScope := strings.TrimSpace(options.BrandScope)
	batchID := uuid.NewString()

	buckets, skipped, err := bucketPlatforms(session, directory, selected, brandScope)
	if err != nil {
		return nil, err
	}

	requests := make([]Request, 0, len(buckets))
	for _, bucket := range buckets {
		requests = append(requests, buildRequest(session, batchID, bucket, schedule))
	}

	return &BuildResult{BatchID: batchID, Requests: requests, SkippedAccounts: skipped}, nil
}

type brandBucket struct {
	brandID   string
	platforms []rules.Platform
	accounts  map[rules.Platform]accounts.Account
}

func bucketPlatforms(session *compose.Session, directory *accounts.Directory, selected []rules.Platform, brandScope string) ([]brandBucket, int, error) {
	buckets := make([]brandBucket, 0, 2)
	index := map[string]int{}
	skipped := 0
	resolved := 0

	for _, platform := range selected {
		account, ok := directory.ForPlatform(platform, brandScope)
		if !ok {
			continue
		}
		resolved++
		// Extra connected accounts for the same platform are not fanned
		// out; the count is surfaced so callers can tell the author. An
		// empty scope counts across every brand, since none of those
		// accounts will receive the post either.
		if extra := directory.CountForPlatform(platform, brandScope) - 1; extra > 0 {
			skipped += extra
		}

		brandID := account.BrandID
		if brandScope != "" {
			brandID = brandScope
		}
		position, ok := index[brandID]
		if !ok {
			position = len(buckets)
			index[brandID] = position
			buckets = append(buckets, brandBucket{
				brandID:  brandID,
				accounts: map[rules.Platform]accounts.Account{},
			})
		}
		buckets[position].platforms = append(buckets[position].platforms, platform)
		buckets[position].accounts[platform] = account
	}

	if resolved == 0 {
		return nil, 0, errors.New("no connected account for any selected platform")
	}
	return buckets, skipped, nil
}

func buildRequest(session *compose.Session, batchID string, bucket brandBucket, schedule Schedule) Request {
	rootPlatform := bucket.platforms[0]
	rootContent := session.EffectiveContent(rootPlatform)
	root := RootContent{
		Caption:  WithFirstCommentNote(rootContent.Caption, rootContent.Link),
		Title:    rootContent.Title,
		Media:    rootContent.Media,
		Hashtags: rootContent.Hashtags,
	}

	entries := make([]PlatformEntry, 0, len(bucket.platforms))
	hint := MediaHintText
	for _, platform := range bucket.platforms {
		effective := session.EffectiveContent(platform)
		config := Overrides{
			Format:       effectiveFormat(session, platform),
			FirstComment: strings.TrimSpace(effective.Link),
		}

		caption := WithFirstCommentNote(effective.Caption, effective.Link)
		if caption != root.Caption {
			config.Caption = caption
		}
		if effective.Title != root.Title {
			config.Title = effective.Title
		}
		if !sameMedia(effective.Media, root.Media) {
			config.Media = effective.Media
		}
		if !sameStrings(effective.Hashtags, root.Hashtags) {
			config.Hashtags = effective.Hashtags
		}

		hint = strongerHint(hint, mediaHint(effective.Media))
		entries = append(entries, PlatformEntry{
			Platform:  platform,
			AccountID: bucket.accounts[platform].AccountID,
			Config:    config,
		})
	}

	return Request{
		BatchID:        batchID,
		IdempotencyKey: fmt.Sprintf("%s:%s", batchID, bucket.brandID),
		BrandID:        bucket.brandID,
		Content:        root,
		Platforms:      entries,
		MediaType:      hint,
		Schedule:       schedule,
	}
}

// WithFirstCommentNote appends the first-comment note to a caption when a
// link is present. Insertion is idempotent: a caption already carrying the
// note passes through unchanged, so rebuilding a submission never stacks
// duplicates.
func WithFirstCommentNote(caption string, link string) string {
	if strings.TrimSpace(link) == "" {
		return caption
	}
	if strings.Contains(caption, FirstCommentNote) {
		return caption
	}
	trimmed := strings.TrimRight(caption, " \t\n")
	if trimmed == "" {
		return FirstCommentNote
	}
	return trimmed + "\n\n" + FirstCommentNote
}

func effectiveFormat(session *compose.Session, platform rules.Platform) rules.Format {
	if variant, ok := session.Variant(platform); ok {
		return variant.Format
	}
	return rules.DefaultFormat(platform)
}

func resolveSchedule(publishAt *time.Time, now time.Time) (Schedule, error) {
	if publishAt == nil {
		return Schedule{Mode: ScheduleModeNow}, nil
	}
	instant := publishAt.UTC()
	if !instant.After(now.UTC()) {
		return Schedule{}, fmt.Errorf("publish time %s is not in the future", instant.Format(time.RFC3339))
	}
	return Schedule{Mode: ScheduleModeScheduled, PublishAt: instant.Format(time.RFC3339)}, nil
}

func mediaHint(media []rules.MediaItem) string {
	if rules.HasVideo(media) {
		return MediaHintVideo
	}
	if len(media) > 0 {
		return MediaHintImage
	}
	return MediaHintText
}

func strongerHint(current string, candidate string) string {
	rank := map[string]int{MediaHintText: 0, MediaHintImage: 1, MediaHintVideo: 2}
	if rank[candidate] > rank[current] {
		return candidate
	}
	return current
}

func sameMedia(a []rules.MediaItem, b []rules.MediaItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameStrings(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
