package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const DefaultCredentials = "service_account.json"

// Sheet is the configuration bundle a client is constructed from.
type Sheet struct {
	Credentials   string `env:"GSHEET_CREDENTIALS,default=service_account.json"`
	SpreadsheetID string `env:"GSHEET_SPREADSHEET_ID"`
	Worksheet     string `env:"GSHEET_WORKSHEET"`
	// Account selects a key stored with `gsheet auth add` instead of a file.
	Account string `env:"GSHEET_ACCOUNT"`
}

// LoadSheet reads Sheet from l, or from the process environment when l is nil.
func LoadSheet(ctx context.Context, l envconfig.Lookuper) (Sheet, error) {
	var cfg Sheet
	if l == nil {
		l = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, &cfg, l); err != nil {
		return Sheet{}, fmt.Errorf("load config from env: %w", err)
	}
	cfg.Credentials = strings.TrimSpace(cfg.Credentials)
	cfg.SpreadsheetID = strings.TrimSpace(cfg.SpreadsheetID)
	cfg.Worksheet = strings.TrimSpace(cfg.Worksheet)
	cfg.Account = strings.TrimSpace(cfg.Account)
	if cfg.Credentials == "" {
		cfg.Credentials = DefaultCredentials
	}
	return cfg, nil
}

// LoadDotEnv populates unset environment variables from path.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Merge overlays non-empty fields of override onto s.
func (s Sheet) Merge(override Sheet) Sheet {
	if v := strings.TrimSpace(override.Credentials); v != "" {
		s.Credentials = v
	}
	if v := strings.TrimSpace(override.SpreadsheetID); v != "" {
		s.SpreadsheetID = v
	}
	if v := strings.TrimSpace(override.Worksheet); v != "" {
		s.Worksheet = v
	}
	if v := strings.TrimSpace(override.Account); v != "" {
		s.Account = v
	}
	return s
}
