package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg-config"))

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if filepath.Base(dir) != AppName {
		t.Fatalf("unexpected config dir: %q", dir)
	}

	envPath, err := DotEnvPath()
	if err != nil {
		t.Fatalf("DotEnvPath: %v", err)
	}
	if filepath.Dir(envPath) != dir || filepath.Base(envPath) != ".env" {
		t.Fatalf("unexpected .env path: %q", envPath)
	}
}

func TestEnsureKeyringDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg-config"))

	dir, err := EnsureKeyringDir()
	if err != nil {
		t.Fatalf("EnsureKeyringDir: %v", err)
	}
	st, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !st.IsDir() {
		t.Fatalf("expected dir at %q", dir)
	}
}

func TestLoadSheet_Defaults(t *testing.T) {
	cfg, err := LoadSheet(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if cfg.Credentials != DefaultCredentials {
		t.Fatalf("unexpected credentials default: %q", cfg.Credentials)
	}
	if cfg.SpreadsheetID != "" || cfg.Worksheet != "" {
		t.Fatalf("expected empty ids, got %#v", cfg)
	}
}

func TestLoadSheet_FromLookuper(t *testing.T) {
	cfg, err := LoadSheet(context.Background(), envconfig.MapLookuper(map[string]string{
		"GSHEET_CREDENTIALS":    " creds.json ",
		"GSHEET_SPREADSHEET_ID": "s1",
		"GSHEET_WORKSHEET":      "Data",
		"GSHEET_ACCOUNT":        "bot@p.iam.gserviceaccount.com",
	}))
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if cfg.Credentials != "creds.json" || cfg.SpreadsheetID != "s1" || cfg.Worksheet != "Data" {
		t.Fatalf("unexpected cfg: %#v", cfg)
	}
	if cfg.Account != "bot@p.iam.gserviceaccount.com" {
		t.Fatalf("unexpected account: %q", cfg.Account)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GSHEET_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GSHEET_TEST_DOTENV", "")
	os.Unsetenv("GSHEET_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("GSHEET_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("unexpected env: %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestSheetMerge(t *testing.T) {
	base := Sheet{Credentials: "a.json", SpreadsheetID: "s1", Worksheet: "One"}
	got := base.Merge(Sheet{SpreadsheetID: "s2", Worksheet: "  "})
	if got.Credentials != "a.json" || got.SpreadsheetID != "s2" || got.Worksheet != "One" {
		t.Fatalf("unexpected merge: %#v", got)
	}
}

func TestCredentialsMissingError(t *testing.T) {
	err := &CredentialsMissingError{Path: "/tmp/x.json", Cause: os.ErrNotExist}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected unwrap to ErrNotExist")
	}
}
