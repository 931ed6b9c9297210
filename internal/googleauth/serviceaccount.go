package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// KeyInfo is the subset of a service-account key file we inspect.
type KeyInfo struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

func ParseKey(data []byte) (KeyInfo, error) {
	var k KeyInfo
	if err := json.Unmarshal(data, &k); err != nil {
		return KeyInfo{}, fmt.Errorf("parse service account key: %w", err)
	}
	if k.Type != "service_account" {
		return KeyInfo{}, fmt.Errorf("unexpected key type %q (expected service_account)", k.Type)
	}
	if strings.TrimSpace(k.ClientEmail) == "" {
		return KeyInfo{}, errors.New("service account key has no client_email")
	}
	return k, nil
}

// Options turns a service-account key into client options scoped to services.
func Options(ctx context.Context, key []byte, services ...Service) ([]option.ClientOption, error) {
	if len(services) == 0 {
		return nil, errors.New("no services requested")
	}
	scopes, err := ScopesForServices(services)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, key, scopes...)
	if err != nil {
		return nil, fmt.Errorf("load service account credentials: %w", err)
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}
