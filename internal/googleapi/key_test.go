package googleapi

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/steipete/gsheet/internal/config"
)

func TestReadKeyFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/k/sa.json", []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := ReadKeyFile(fsys, "/k/sa.json")
	if err != nil {
		t.Fatalf("ReadKeyFile: %v", err)
	}
	if string(data) != `{"type":"service_account"}` {
		t.Fatalf("unexpected data: %q", data)
	}

	_, err = ReadKeyFile(fsys, "/k/missing.json")
	var missing *config.CredentialsMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected CredentialsMissingError, got %v", err)
	}
	if missing.Path != "/k/missing.json" {
		t.Fatalf("unexpected path: %q", missing.Path)
	}
}
