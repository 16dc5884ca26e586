package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dupscore/internal/config"
	"dupscore/internal/records"
	"dupscore/internal/scorer"
	"dupscore/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithModelArtifact())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	testsupport.MustOpenStore(t, cfg)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.Model)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestScoreCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"score", "--query", "q_sr_id=1&m_sr_id=2"}, env.configPath, "")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	requireContains(t, out, "title_token_sort_ratio")
	requireContains(t, out, "Class: valid")

	out, _, err = runCLI(t, []string{"score", "--json", "q_sr_id=1&m_sr_id=3"}, env.configPath, "")
	if err != nil {
		t.Fatalf("score --json: %v", err)
	}
	var payload scoreOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode score output: %v\n%s", err, out)
	}
	if payload.Class != "invalid" || len(payload.Order) != 19 || payload.Features["isrcs_coincidence"] != 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestScoreCommandErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"score", "--query", "q_sr_id=1"}, env.configPath, "")
	if err == nil || err.Error() != scorer.FormatMessage {
		t.Fatalf("expected format error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"score", "q_sr_id=1&m_sr_id=404"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected missing record error")
	}
	if _, msg := scorer.Classify(err); msg != "record 404 not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRecordsImportAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	csv := "sr_id,title,artists,contributors,isrcs\n10,Let It Be,The Beatles,,GBAYE0601713\n"
	out, _, err := runCLI(t, []string{"records", "import", "-"}, env.configPath, csv)
	if err != nil {
		t.Fatalf("records import: %v", err)
	}
	requireContains(t, out, "Imported 1 records into sqlite store")

	out, _, err = runCLI(t, []string{"records", "show", "10", "1"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records show: %v", err)
	}
	requireContains(t, out, "Let It Be")
	requireContains(t, out, "Imagine")

	out, _, err = runCLI(t, []string{"records", "show", "--json", "10"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records show --json: %v", err)
	}
	var shown []map[string]*string
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(shown) != 1 || shown[0]["contributors"] != nil || *shown[0]["isrcs"] != "GBAYE0601713" {
		t.Fatalf("unexpected records %v", shown)
	}

	_, _, err = runCLI(t, []string{"records", "show", "nope"}, env.configPath, "")
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordsShowPlainOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	csv := "sr_id,title,artists,contributors,isrcs\n20,The Boxer,Simon & Garfunkel,,USSM16900468\n"
	if _, _, err := runCLI(t, []string{"records", "import", "-"}, env.configPath, csv); err != nil {
		t.Fatalf("records import: %v", err)
	}

	out, _, err := runCLI(t, []string{"records", "show", "--json", "20"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records show --json: %v", err)
	}
	requireContains(t, out, `"Simon & Garfunkel"`)

	out, _, err = runCLI(t, []string{"records", "show", "20"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records show: %v", err)
	}
	requireContains(t, out, "+----")
	if strings.Contains(out, "╭") {
		t.Fatalf("expected ASCII borders for non-terminal output:\n%s", out)
	}
}
