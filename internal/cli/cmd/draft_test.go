package cmd

import (
	"strings"
	"testing"

	"github.com/postpilot/composer/internal/compose"
	"github.com/postpilot/composer/internal/rules"
)

func TestLoadDraftRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeDraftFile(t, "brand: acme\nplatforms: [x]\nmystery: true\n")
	if _, err := LoadDraft(path); err == nil {
		t.Fatal("expected strict decode error")
	}
}

func TestDraftValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		draft   Draft
		problem string
	}{
		{
			name:    "missing brand",
			draft:   Draft{Platforms: []string{"x"}},
			problem: "brand is required",
		},
		{
			name:    "no platforms",
			draft:   Draft{Brand: "acme"},
			problem: "at least one platform",
		},
		{
			name:    "unknown platform",
			draft:   Draft{Brand: "acme", Platforms: []string{"friendster"}},
			problem: "unsupported platform",
		},
		{
			name:    "duplicate platform",
			draft:   Draft{Brand: "acme", Platforms: []string{"x", "x"}},
			problem: "listed twice",
		},
		{
			name:    "format for unselected platform",
			draft:   Draft{Brand: "acme", Platforms: []string{"x"}, Formats: map[string]string{"threads": "post"}},
			problem: "not in the platforms list",
		},
		{
			name:    "unsupported format",
			draft:   Draft{Brand: "acme", Platforms: []string{"x"}, Formats: map[string]string{"x": "reel"}},
			problem: "does not support format",
		},
		{
			name:    "override for unselected platform",
			draft:   Draft{Brand: "acme", Platforms: []string{"x"}, Overrides: map[string]DraftOverride{"threads": {Caption: "hi"}}},
			problem: "not in the platforms list",
		},
		{
			name:    "bad schedule",
			draft:   Draft{Brand: "acme", Platforms: []string{"x"}, ScheduleAt: "tomorrow"},
			problem: "RFC3339",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.draft.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.problem) {
				t.Fatalf("expected %q in error, got %v", tc.problem, err)
			}
		})
	}
}

func TestBuildSessionSeedsUnifiedContent(t *testing.T) {
	t.Parallel()

	draft := &Draft{
		Brand:     "acme",
		Platforms: []string{"x", "threads"},
		Caption:   "launch day",
		Link:      "https://example.com/launch",
		Hashtags:  []string{"#launch"},
	}
	session, err := draft.BuildSession()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}

	if session.EditMode() != compose.EditModeUnified {
		t.Fatalf("expected unified mode, got %q", session.EditMode())
	}
	for _, platform := range []rules.Platform{rules.PlatformX, rules.PlatformThreads} {
		effective := session.EffectiveContent(platform)
		if effective.Caption != "launch day" {
			t.Fatalf("%s caption = %q", platform, effective.Caption)
		}
		if effective.Link != "https://example.com/launch" {
			t.Fatalf("%s link = %q", platform, effective.Link)
		}
		if len(effective.Hashtags) != 1 || effective.Hashtags[0] != "#launch" {
			t.Fatalf("%s hashtags = %v", platform, effective.Hashtags)
		}
	}
}

func TestBuildSessionPerPlatformOverrides(t *testing.T) {
	t.Parallel()

	draft := &Draft{
		Brand:     "acme",
		EditMode:  "per-platform",
		Platforms: []string{"x", "threads"},
		Caption:   "shared",
		Title:     "Launch",
		Overrides: map[string]DraftOverride{
			"threads": {Caption: "threads flavor"},
		},
	}
	session, err := draft.BuildSession()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}

	if got := session.EffectiveContent(rules.PlatformX).Caption; got != "shared" {
		t.Fatalf("x caption = %q", got)
	}
	if got := session.EffectiveContent(rules.PlatformThreads).Caption; got != "threads flavor" {
		t.Fatalf("threads caption = %q", got)
	}
	// Per-platform mode applies the draft title to each platform individually.
	for _, platform := range []rules.Platform{rules.PlatformX, rules.PlatformThreads} {
		if got := session.EffectiveContent(platform).Title; got != "Launch" {
			t.Fatalf("%s title = %q", platform, got)
		}
	}
}

func TestBuildSessionAppliesOverridesInPlatformOrder(t *testing.T) {
	t.Parallel()

	draft := &Draft{
		Brand:     "acme",
		Platforms: []string{"instagram", "x"},
		Caption:   "base",
		Overrides: map[string]DraftOverride{
			"instagram": {Caption: "primary override"},
			"x":         {Caption: "x override"},
		},
	}

	// In unified mode the primary platform's caption override propagates to
	// every selected platform; the non-primary override must still win on
	// its own platform no matter how the overrides map iterates.
	for i := 0; i < 50; i++ {
		session, err := draft.BuildSession()
		if err != nil {
			t.Fatalf("build session: %v", err)
		}
		if got := session.EffectiveContent(rules.PlatformInstagram).Caption; got != "primary override" {
			t.Fatalf("run %d: instagram caption = %q", i, got)
		}
		if got := session.EffectiveContent(rules.PlatformX).Caption; got != "x override" {
			t.Fatalf("run %d: x caption = %q", i, got)
		}
	}
}

func TestBuildSessionMediaDrivesFormatDetection(t *testing.T) {
	t.Parallel()

	draft := &Draft{
		Brand:     "acme",
		Platforms: []string{"instagram"},
		Caption:   "clip",
		Media:     []DraftMedia{{URL: "https://cdn.example.com/a.mp4"}},
	}
	session, err := draft.BuildSession()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}

	variant, ok := session.Variant(rules.PlatformInstagram)
	if !ok {
		t.Fatal("expected instagram variant")
	}
	if variant.Format != rules.FormatReel {
		t.Fatalf("expected reel from video media, got %q", variant.Format)
	}
	media := session.EffectiveMedia(rules.PlatformInstagram)
	if len(media) != 1 || media[0].Type != rules.MediaTypeVideo {
		t.Fatalf("expected inferred video media, got %v", media)
	}
}

func TestBuildSessionAppliesExplicitFormats(t *testing.T) {
	t.Parallel()

	draft := &Draft{
		Brand:     "acme",
		Platforms: []string{"x"},
		Caption:   "long form",
		Formats:   map[string]string{"x": "thread"},
	}
	session, err := draft.BuildSession()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}

	variant, _ := session.Variant(rules.PlatformX)
	if variant.Format != rules.FormatThread {
		t.Fatalf("expected thread format, got %q", variant.Format)
	}
}
