package cmd

import (
	"errors"
	"strings"
	"testing"
)

const planDraft = `brand: acme
platforms: [x, threads]
caption: launch day
link: https://example.com/launch
`

func TestPlanCommandBuildsRequestsWithoutDispatching(t *testing.T) {
	t.Parallel()

	configPath := writeTestConfig(t, nil)
	draftPath := writeDraftFile(t, planDraft)

	stdout, stderr, err := runCommand(t, NewPlanCommand(jsonRuntime(configPath)), draftPath)
	if err != nil {
		t.Fatalf("execute plan: %v (stderr %q)", err, stderr)
	}

	envelope := decodeEnvelope(t, stdout)
	if envelope["success"] != true {
		t.Fatalf("expected success envelope, got %v", envelope)
	}
	data := envelopeData(t, envelope)
	if data["eligible"] != true {
		t.Fatalf("expected eligible draft, got %v", data["eligible"])
	}
	if batchID, _ := data["batch_id"].(string); batchID == "" {
		t.Fatal("expected a batch id")
	}

	requests, ok := data["requests"].([]any)
	if !ok || len(requests) != 1 {
		t.Fatalf("expected one brand bucket, got %#v", data["requests"])
	}
	request, ok := requests[0].(map[string]any)
	if !ok {
		t.Fatalf("expected request object, got %#v", requests[0])
	}
	if request["brand_id"] != "acme" {
		t.Fatalf("unexpected brand %v", request["brand_id"])
	}
	platforms, ok := request["platforms"].([]any)
	if !ok || len(platforms) != 2 {
		t.Fatalf("expected two platform entries, got %#v", request["platforms"])
	}

	content, ok := request["content"].(map[string]any)
	if !ok {
		t.Fatalf("expected content object, got %#v", request["content"])
	}
	caption, _ := content["caption"].(string)
	if !strings.Contains(caption, "Link added in first comment") {
		t.Fatalf("expected first comment note in caption, got %q", caption)
	}
}

func TestPlanCommandReportsValidationProblems(t *testing.T) {
	t.Parallel()

	configPath := writeTestConfig(t, nil)
	// No caption and no media fails the text-first check on x.
	draftPath := writeDraftFile(t, "brand: acme\nplatforms: [x]\n")

	stdout, _, err := runCommand(t, NewPlanCommand(jsonRuntime(configPath)), draftPath)
	if err != nil {
		t.Fatalf("execute plan: %v", err)
	}

	data := envelopeData(t, decodeEnvelope(t, stdout))
	if data["eligible"] != false {
		t.Fatalf("expected ineligible draft, got %v", data["eligible"])
	}
	buildError, _ := data["build_error"].(string)
	if !strings.Contains(buildError, "failed validation") {
		t.Fatalf("expected build error, got %q", buildError)
	}
	validation, ok := data["validation"].(map[string]any)
	if !ok {
		t.Fatalf("expected validation map, got %#v", data["validation"])
	}
	problems, ok := validation["x"].([]any)
	if !ok || len(problems) == 0 {
		t.Fatalf("expected x validation problems, got %#v", validation["x"])
	}
}

func TestPlanCommandRejectsMissingDraft(t *testing.T) {
	t.Parallel()

	configPath := writeTestConfig(t, nil)

	_, stderr, err := runCommand(t, NewPlanCommand(jsonRuntime(configPath)), "/nonexistent/draft.yaml")
	if err == nil {
		t.Fatal("expected missing draft error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitCodeInput {
		t.Fatalf("expected input exit code, got %v", err)
	}
	if !strings.Contains(stderr, "read draft file") {
		t.Fatalf("expected error envelope on stderr, got %q", stderr)
	}
}

func TestPlanCommandRejectsBadScheduleFlag(t *testing.T) {
	t.Parallel()

	configPath := writeTestConfig(t, nil)
	draftPath := writeDraftFile(t, planDraft)

	_, _, err := runCommand(t, NewPlanCommand(jsonRuntime(configPath)), draftPath, "--at", "soon")
	if err == nil {
		t.Fatal("expected schedule parse error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitCodeInput {
		t.Fatalf("expected input exit code, got %v", err)
	}
}
