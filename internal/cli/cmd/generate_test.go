package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/postpilot/composer/internal/ai"
	"github.com/postpilot/composer/internal/config"
)

type fakeGenerator struct {
	brief     ai.Brief
	generated *ai.Generated
	err       error
}

func (g *fakeGenerator) Generate(_ context.Context, brief ai.Brief) (*ai.Generated, error) {
	g.brief = brief
	if g.err != nil {
		return nil, g.err
	}
	return g.generated, nil
}

func generateTestDeps(generator ai.Generator) generateDeps {
	return generateDeps{
		secrets: &fakeSecretStore{values: map[string]string{
			"keychain://composer/default/openai_key": "sk-test",
		}},
		newGenerator: func(_ *config.Config, apiKey string) (ai.Generator, error) {
			if apiKey != "sk-test" {
				return nil, errors.New("wrong api key")
			}
			return generator, nil
		},
	}
}

func generateTestConfig(t *testing.T) string {
	t.Helper()
	return writeTestConfig(t, func(cfg *config.Config) {
		cfg.AI.APIKeyRef = "keychain://composer/default/openai_key"
	})
}

func TestGenerateCommandMergesContentIntoSession(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{generated: &ai.Generated{
		Caption:  "Fresh roast, fresh start.",
		Hashtags: []string{"#coffee"},
	}}
	configPath := generateTestConfig(t)
	draftPath := writeDraftFile(t, "brand: acme\nplatforms: [x, threads]\n")

	cmd := newGenerateCommand(jsonRuntime(configPath), generateTestDeps(generator))
	stdout, stderr, err := runCommand(t, cmd, draftPath, "--topic", "new espresso blend", "--tone", "playful")
	if err != nil {
		t.Fatalf("execute generate: %v (stderr %q)", err, stderr)
	}

	if generator.brief.Topic != "new espresso blend" || generator.brief.Platform != "x" {
		t.Fatalf("unexpected brief %+v", generator.brief)
	}

	data := envelopeData(t, decodeEnvelope(t, stdout))
	if data["platform"] != "x" {
		t.Fatalf("expected primary platform target, got %v", data["platform"])
	}
	// The generated caption fills the empty draft, so validation now passes.
	if data["eligible"] != true {
		t.Fatalf("expected eligible session after merge, got %v", data["eligible"])
	}
	generated, ok := data["generated"].(map[string]any)
	if !ok || generated["caption"] != "Fresh roast, fresh start." {
		t.Fatalf("unexpected generated payload %#v", data["generated"])
	}
}

func TestGenerateCommandRequiresAPIKeyRef(t *testing.T) {
	t.Parallel()

	configPath := writeTestConfig(t, nil)
	draftPath := writeDraftFile(t, "brand: acme\nplatforms: [x]\n")

	cmd := newGenerateCommand(jsonRuntime(configPath), generateTestDeps(&fakeGenerator{}))
	_, stderr, err := runCommand(t, cmd, draftPath, "--topic", "anything")
	if err == nil {
		t.Fatal("expected missing api key ref error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitCodeAuth {
		t.Fatalf("expected auth exit code, got %v", err)
	}
	if !strings.Contains(stderr, "api_key_ref") {
		t.Fatalf("expected api_key_ref in stderr, got %q", stderr)
	}
}

func TestGenerateCommandRejectsUnselectedPlatform(t *testing.T) {
	t.Parallel()

	configPath := generateTestConfig(t)
	draftPath := writeDraftFile(t, "brand: acme\nplatforms: [x]\n")

	cmd := newGenerateCommand(jsonRuntime(configPath), generateTestDeps(&fakeGenerator{}))
	_, _, err := runCommand(t, cmd, draftPath, "--topic", "anything", "--platform", "tiktok")
	if err == nil {
		t.Fatal("expected unselected platform error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitCodeInput {
		t.Fatalf("expected input exit code, got %v", err)
	}
}

func TestGenerateCommandSurfacesGeneratorFailure(t *testing.T) {
	t.Parallel()

	configPath := generateTestConfig(t)
	draftPath := writeDraftFile(t, "brand: acme\nplatforms: [x]\n")

	cmd := newGenerateCommand(jsonRuntime(configPath), generateTestDeps(&fakeGenerator{err: errors.New("model unavailable")}))
	_, _, err := runCommand(t, cmd, draftPath, "--topic", "anything")
	if err == nil {
		t.Fatal("expected generator error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitCodeAPI {
		t.Fatalf("expected api exit code, got %v", err)
	}
}
