package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steipete/gsheet/internal/config"
	"github.com/steipete/gsheet/internal/credentials"
	"github.com/steipete/gsheet/internal/secrets"
	"github.com/steipete/gsheet/internal/sheetclient"
)

var (
	newClient        = sheetclient.New
	openSecretsStore = secrets.OpenDefault
	loadEnv          = loadDotEnvFiles
)

// sheetConfig layers flags over the environment over .env files.
func sheetConfig(ctx context.Context, flags *rootFlags) (config.Sheet, error) {
	if err := loadEnv(); err != nil {
		return config.Sheet{}, err
	}
	cfg, err := config.LoadSheet(ctx, nil)
	if err != nil {
		return config.Sheet{}, err
	}
	return cfg.Merge(config.Sheet{
		Credentials:   flags.Credentials,
		SpreadsheetID: flags.Spreadsheet,
		Worksheet:     flags.Worksheet,
		Account:       flags.Account,
	}), nil
}

func loadDotEnvFiles() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	path, err := config.DotEnvPath()
	if err != nil {
		slog.Debug("no config dir; skipping .env", "err", err)
		return nil
	}
	return config.LoadDotEnv(path)
}

func openClient(ctx context.Context, flags *rootFlags) (*sheetclient.Client, error) {
	cfg, err := sheetConfig(ctx, flags)
	if err != nil {
		return nil, err
	}

	opts := sheetclient.Options{}
	if !flags.NoInput {
		opts.Prompt = credentials.SurveyPrompt
	}
	if cfg.Account != "" {
		store, err := openSecretsStore()
		if err != nil {
			return nil, fmt.Errorf("open keyring: %w", err)
		}
		opts.Store = store
	}

	c, err := newClient(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("bound", "spreadsheet", c.Spreadsheet().ID, "worksheet", c.Worksheet().Title)
	return c, nil
}
