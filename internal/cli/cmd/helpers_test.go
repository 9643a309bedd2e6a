package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/postpilot/composer/internal/accounts"
	"github.com/postpilot/composer/internal/config"
	"github.com/postpilot/composer/internal/rules"
)

func jsonRuntime(configPath string) Runtime {
	output := "json"
	verbose := false
	return Runtime{ConfigPath: &configPath, Output: &output, Verbose: &verbose}
}

func writeTestConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.New()
	cfg.Accounts = []accounts.Account{
		{Platform: rules.PlatformX, AccountID: "x-100", BrandID: "acme"},
		{Platform: rules.PlatformThreads, AccountID: "th-200", BrandID: "acme"},
		{Platform: rules.PlatformLinkedIn, AccountID: "li-300", BrandID: "globex"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save test config: %v", err)
	}
	return path
}

func writeDraftFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "draft.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write draft file: %v", err)
	}
	return path
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeEnvelope(t *testing.T, raw string) map[string]any {
	t.Helper()

	decoded := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode envelope: %v (raw %q)", err, raw)
	}
	return decoded
}

func envelopeData(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", envelope["data"])
	}
	return data
}
