// Package credentials locates the service-account key file a client
// authenticates with.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/steipete/gsheet/internal/config"
)

// Subdir is the directory under the installation root that prompted and
// default key files live in.
const Subdir = "credentials"

// PromptFunc asks the operator for a key file name. An empty answer means
// "no answer".
type PromptFunc func(message string) (string, error)

var errFound = errors.New("found")

// Resolve returns the key file path for name.
//
// The installation tree under baseDir is searched first for a file called
// name. Failing that, name itself is used when it exists. Otherwise prompt
// (if any) is asked for a file name under baseDir/credentials, and if that
// does not exist either the default key file under the same directory is
// returned without checking that it exists.
func Resolve(fsys afero.Fs, baseDir, name string, prompt PromptFunc) (string, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	name = strings.TrimSpace(name)

	if found, err := find(fsys, baseDir, name); err != nil {
		return "", err
	} else if found != "" {
		slog.Debug("credentials found in install dir", "path", found)
		return found, nil
	}

	if name != "" {
		if ok, _ := afero.Exists(fsys, name); ok {
			return name, nil
		}
	}

	credDir := filepath.Join(baseDir, Subdir)
	if prompt != nil {
		answer, err := prompt("Enter path to the credentials file")
		if err != nil {
			slog.Debug("credentials prompt failed", "err", err)
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			candidate := filepath.Join(credDir, answer)
			if ok, _ := afero.Exists(fsys, candidate); ok {
				return candidate, nil
			}
		}
	}

	fallback := filepath.Join(credDir, config.DefaultCredentials)
	slog.Debug("credentials not found; using default", "path", fallback)
	return fallback, nil
}

func find(fsys afero.Fs, root, name string) (string, error) {
	if name == "" || strings.TrimSpace(root) == "" {
		return "", nil
	}
	var found string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			// unreadable subtrees are skipped, not fatal
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() && info.Name() == name {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("search %s: %w", root, err)
	}
	return found, nil
}

// InstallDir is the directory holding the running executable.
func InstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
