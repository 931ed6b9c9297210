package errfmt

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/steipete/gsheet/internal/config"
	"github.com/steipete/gsheet/internal/sheetclient"
)

func Format(err error) string {
	if err == nil {
		return ""
	}

	var cfgErr *sheetclient.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Sprintf("%s. Pass --spreadsheet or set GSHEET_SPREADSHEET_ID", cfgErr.Error())
	}

	var valErr *sheetclient.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}

	var credErr *config.CredentialsMissingError
	if errors.As(err, &credErr) {
		return fmt.Sprintf("Service account key missing (expected at %s). Pass --credentials <key.json> or run: gsheet auth add <key.json>", credErr.Path)
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "Service account key not found in keyring. Run: gsheet auth add <key.json>"
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}

		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s", gerr.Code, reason, gerr.Message)
		}

		return fmt.Sprintf("Google API error (%d): %s", gerr.Code, gerr.Message)
	}

	return err.Error()
}
