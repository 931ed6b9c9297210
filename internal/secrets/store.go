package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/steipete/gsheet/internal/config"
)

// Store keeps service-account keys, keyed by the account's client email.
type Store interface {
	Keys() ([]string, error)
	SetKey(email string, key Key) error
	GetKey(email string) (Key, error)
	DeleteKey(email string) error
	ListKeys() ([]Key, error)
}

type KeyringStore struct {
	ring keyring.Keyring
}

type Key struct {
	Email     string    `json:"email"`
	ProjectID string    `json:"project_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	JSON      []byte    `json:"-"`
}

const keyringPasswordEnv = "GSHEET_KEYRING_PASSWORD"

var errNoKeyringPassword = errors.New("file keyring needs a password: set " + keyringPasswordEnv)

func OpenDefault() (Store, error) {
	// On Linux/WSL/containers, OS keychains (secret-service/kwallet) may be unavailable.
	// In that case github.com/99designs/keyring falls back to the "file" backend,
	// which *requires* both a directory and a password prompt function.
	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:      config.AppName,
		FileDir:          keyringDir,
		FilePasswordFunc: fileKeyringPasswordFuncFrom(os.Getenv(keyringPasswordEnv), isTerminal()),
	})
	if err != nil {
		return nil, err
	}
	return NewKeyringStore(ring), nil
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func fileKeyringPasswordFuncFrom(password string, tty bool) keyring.PromptFunc {
	if password != "" {
		return keyring.FixedStringPrompt(password)
	}
	if tty {
		return keyring.TerminalPrompt
	}
	return func(string) (string, error) {
		return "", errNoKeyringPassword
	}
}

func isTerminal() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}

func (s *KeyringStore) Keys() ([]string, error) {
	return s.ring.Keys()
}

type storedKey struct {
	JSON      json.RawMessage `json:"key"`
	ProjectID string          `json:"project_id,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

func (s *KeyringStore) SetKey(email string, key Key) error {
	email = normalize(email)
	if email == "" {
		return fmt.Errorf("missing email")
	}
	if len(key.JSON) == 0 {
		return fmt.Errorf("missing key material")
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(storedKey{
		JSON:      json.RawMessage(key.JSON),
		ProjectID: key.ProjectID,
		CreatedAt: key.CreatedAt,
	})
	if err != nil {
		return err
	}

	return s.ring.Set(keyring.Item{
		Key:   keyName(email),
		Data:  payload,
		Label: config.AppName + " " + email,
	})
}

func (s *KeyringStore) GetKey(email string) (Key, error) {
	email = normalize(email)
	if email == "" {
		return Key{}, fmt.Errorf("missing email")
	}
	it, err := s.ring.Get(keyName(email))
	if err != nil {
		return Key{}, err
	}
	var st storedKey
	if err := json.Unmarshal(it.Data, &st); err != nil {
		return Key{}, err
	}
	return Key{
		Email:     email,
		ProjectID: st.ProjectID,
		CreatedAt: st.CreatedAt,
		JSON:      []byte(st.JSON),
	}, nil
}

func (s *KeyringStore) DeleteKey(email string) error {
	email = normalize(email)
	if email == "" {
		return fmt.Errorf("missing email")
	}
	return s.ring.Remove(keyName(email))
}

func (s *KeyringStore) ListKeys() ([]Key, error) {
	names, err := s.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Key, 0)
	for _, k := range names {
		email, ok := ParseKeyName(k)
		if !ok {
			continue
		}
		key, err := s.GetKey(email)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}

func ParseKeyName(k string) (email string, ok bool) {
	const prefix = "serviceaccount:"
	if !strings.HasPrefix(k, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(k, prefix)
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

func keyName(email string) string {
	return fmt.Sprintf("serviceaccount:%s", email)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
