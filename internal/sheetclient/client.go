// Package sheetclient binds one spreadsheet and one worksheet and exposes
// read, write and structural operations against them.
package sheetclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/steipete/gsheet/internal/config"
	"github.com/steipete/gsheet/internal/credentials"
	"github.com/steipete/gsheet/internal/googleapi"
	"github.com/steipete/gsheet/internal/secrets"
)

var (
	newSheetsService = googleapi.NewSheets
	newDriveService  = googleapi.NewDrive
	openSecretsStore = secrets.OpenDefault
)

const (
	defaultRows = 100
	defaultCols = 26

	defaultWorksheetTitle = "Sheet1"

	spreadsheetFields = "spreadsheetId,spreadsheetUrl,properties.title,sheets.properties"
)

// Options tune how a Client finds its credentials.
type Options struct {
	// BaseDir is searched for the credentials file. Defaults to the
	// directory of the running executable.
	BaseDir string
	Fs      afero.Fs
	// Prompt is asked for a file name when the configured one cannot be
	// found. Nil keeps construction non-interactive.
	Prompt credentials.PromptFunc
	// Store holds keys for cfg.Account. Defaults to the OS keyring.
	Store secrets.Store
}

type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	fs     afero.Fs

	credentialsPath string
	spreadsheet     *Spreadsheet
	worksheet       *Worksheet
}

// New resolves credentials, opens cfg.SpreadsheetID and binds the worksheet
// titled cfg.Worksheet, falling back to the first worksheet.
func New(ctx context.Context, cfg config.Sheet, opts Options) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, &ConfigError{Field: "spreadsheet id", Msg: "required"}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	key, path, err := loadKey(cfg, opts)
	if err != nil {
		return nil, err
	}

	sh, err := newSheetsService(ctx, key)
	if err != nil {
		return nil, err
	}
	dr, err := newDriveService(ctx, key)
	if err != nil {
		return nil, err
	}

	c, err := NewFromServices(ctx, sh, dr, cfg, opts.Fs)
	if err != nil {
		return nil, err
	}
	c.credentialsPath = path
	return c, nil
}

// NewFromServices binds cfg using already authenticated services. Credential
// fields of cfg are ignored.
func NewFromServices(ctx context.Context, sh *sheets.Service, dr *drive.Service, cfg config.Sheet, fsys afero.Fs) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, &ConfigError{Field: "spreadsheet id", Msg: "required"}
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	c := &Client{
		sheets: sh,
		drive:  dr,
		fs:     fsys,
	}
	if err := c.open(ctx, strings.TrimSpace(cfg.SpreadsheetID), strings.TrimSpace(cfg.Worksheet)); err != nil {
		return nil, err
	}
	return c, nil
}

func loadKey(cfg config.Sheet, opts Options) ([]byte, string, error) {
	if account := strings.TrimSpace(cfg.Account); account != "" {
		store := opts.Store
		if store == nil {
			s, err := openSecretsStore()
			if err != nil {
				return nil, "", fmt.Errorf("open keyring: %w", err)
			}
			store = s
		}
		k, err := store.GetKey(account)
		if err != nil {
			return nil, "", fmt.Errorf("load key for %s: %w", account, err)
		}
		return k.JSON, "", nil
	}

	path, err := ResolveCredentials(cfg, opts)
	if err != nil {
		return nil, "", err
	}
	key, err := googleapi.ReadKeyFile(opts.Fs, path)
	if err != nil {
		return nil, path, err
	}
	return key, path, nil
}

// ResolveCredentials returns the key file path New would authenticate with.
func ResolveCredentials(cfg config.Sheet, opts Options) (string, error) {
	base := opts.BaseDir
	if strings.TrimSpace(base) == "" {
		dir, err := credentials.InstallDir()
		if err != nil {
			return "", err
		}
		base = dir
	}
	path, err := credentials.Resolve(opts.Fs, base, cfg.Credentials, opts.Prompt)
	if err != nil {
		return "", err
	}
	slog.Debug("resolved credentials", "path", path)
	return path, nil
}

func (c *Client) open(ctx context.Context, spreadsheetID, title string) error {
	ss, err := c.getSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return err
	}
	c.spreadsheet = ss

	if title != "" {
		if ws := ss.Worksheet(title); ws != nil {
			c.worksheet = ws
			slog.Debug("bound worksheet", "title", ws.Title, "id", ws.ID)
			return nil
		}
		slog.Debug("worksheet not found; using first sheet", "title", title)
	}
	if first := ss.First(); first != nil {
		c.worksheet = first
		slog.Debug("bound worksheet", "title", first.Title, "id", first.ID)
		return nil
	}

	if title == "" {
		title = defaultWorksheetTitle
	}
	ws, err := c.AddWorksheet(ctx, title, defaultRows, defaultCols, nil)
	if err != nil {
		return err
	}
	c.worksheet = ws
	return nil
}

func (c *Client) getSpreadsheet(ctx context.Context, id string) (*Spreadsheet, error) {
	resp, err := c.sheets.Spreadsheets.Get(id).
		Fields(spreadsheetFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", id, err)
	}
	return spreadsheetFromAPI(resp), nil
}

// Spreadsheet is the bound spreadsheet.
func (c *Client) Spreadsheet() *Spreadsheet { return c.spreadsheet }

// Worksheet is the bound worksheet.
func (c *Client) Worksheet() *Worksheet { return c.worksheet }

// CredentialsPath is the key file the client authenticated with; empty
// when the key came from the keyring.
func (c *Client) CredentialsPath() string { return c.credentialsPath }

// Refresh re-reads spreadsheet metadata and rebinds the current worksheet
// by ID.
func (c *Client) Refresh(ctx context.Context) (*Spreadsheet, error) {
	ss, err := c.getSpreadsheet(ctx, c.spreadsheet.ID)
	if err != nil {
		return nil, err
	}
	c.spreadsheet = ss
	for _, ws := range ss.Worksheets {
		if ws.ID == c.worksheet.ID {
			c.worksheet = ws
			return ss, nil
		}
	}
	if first := ss.First(); first != nil {
		c.worksheet = first
	}
	return ss, nil
}

// Use binds the worksheet titled title.
func (c *Client) Use(title string) error {
	ws := c.spreadsheet.Worksheet(title)
	if ws == nil {
		return fmt.Errorf("worksheet %q not found in %s", title, c.spreadsheet.ID)
	}
	c.worksheet = ws
	return nil
}

func (c *Client) target(ws *Worksheet) *Worksheet {
	if ws == nil {
		return c.worksheet
	}
	return ws
}

// rangeTarget parses rng and picks the worksheet it addresses. A sheet-qualified
// range selects that worksheet of the bound spreadsheet; it must agree with ws
// when both are given. The returned string is rng without its sheet prefix.
func (c *Client) rangeTarget(ws *Worksheet, rng string) (*Worksheet, a1Range, string, error) {
	r, err := parseA1Range(rng)
	if err != nil {
		return nil, a1Range{}, "", err
	}
	_, rangePart, err := splitA1Sheet(strings.TrimSpace(rng))
	if err != nil {
		return nil, a1Range{}, "", err
	}
	if r.SheetName == "" {
		return c.target(ws), r, rangePart, nil
	}
	if ws != nil {
		if ws.Title != r.SheetName {
			return nil, a1Range{}, "", &ValidationError{
				Op:  "range " + rng,
				Msg: fmt.Sprintf("names worksheet %q but %q was given", r.SheetName, ws.Title),
			}
		}
		return ws, r, rangePart, nil
	}
	named := c.spreadsheet.Worksheet(r.SheetName)
	if named == nil {
		return nil, a1Range{}, "", fmt.Errorf("worksheet %q not found in %s", r.SheetName, c.spreadsheet.ID)
	}
	return named, r, rangePart, nil
}

func (c *Client) spreadsheetID(ws *Worksheet) string {
	if ws != nil && ws.SpreadsheetID != "" {
		return ws.SpreadsheetID
	}
	return c.spreadsheet.ID
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, reqs ...*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	return c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
}
