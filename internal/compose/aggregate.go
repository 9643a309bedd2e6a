package compose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/postpilot/composer/internal/rules"
)

// ValidationResult maps each selected platform to its current list of
// human-readable violations. An empty list marks the platform
// submission-eligible. Results are plain values recomputed on demand;
// validation never returns an error.
type ValidationResult map[rules.Platform][]string

// Validate re-runs format validation for every selected platform against
// its effective content and media, then layers the cross-cutting caption
// checks on top: character limit and the non-empty-content requirement for
// formats that do not themselves require media.
func (s *Session) Validate() ValidationResult {
	result := ValidationResult{}
	for _, platform := range s.selected {
		result[platform] = s.validatePlatform(platform)
	}
	return result
}

func (s *Session) validatePlatform(platform rules.Platform) []string {
	violations := make([]string, 0, 2)

	format := s.effectiveFormat(platform)
	effective := s.EffectiveContent(platform)

	if check := rules.CheckFormat(platform, format, effective.Media); !check.Valid {
		violations = append(violations, check.Reason)
	}

	limit := rules.CharacterLimit(platform)
	captionLength := utf8.RuneCountInString(effective.Caption)
	if limit > 0 && captionLength > limit {
		violations = append(violations, fmt.Sprintf("content too long (%d/%d)", captionLength, limit))
	}

	if !rules.Rule(format).RequiresMedia && strings.TrimSpace(effective.Caption) == "" {
		violations = append(violations, "content is required")
	}

	return violations
}

func (s *Session) effectiveFormat(platform rules.Platform) rules.Format {
	if variant, ok := s.variants[platform]; ok {
		return variant.Format
	}
	return rules.DefaultFormat(platform)
}

// SubmissionEligible applies the permissive authoring gate: at least one
// selected platform validates cleanly and at least one has non-empty
// effective content. Platforms with unresolved violations do not block
// eligibility; they are dropped at submission instead.
func (s *Session) SubmissionEligible() bool {
	if len(s.selected) == 0 {
		return false
	}

	result := s.Validate()
	anyValid := false
	anyContent := false
	for _, platform := range s.selected {
		if len(result[platform]) == 0 {
			anyValid = true
		}
		if !s.EffectiveContent(platform).IsEmpty() {
			anyContent = true
		}
	}
	return anyValid && anyContent
}
