package googleapi

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/steipete/gsheet/internal/config"
)

// ReadKeyFile loads a service-account key. A missing file is reported as
// *config.CredentialsMissingError.
func ReadKeyFile(fsys afero.Fs, path string) ([]byte, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &config.CredentialsMissingError{Path: path, Cause: err}
		}
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	return data, nil
}
