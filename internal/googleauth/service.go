package googleauth

import (
	"errors"
	"fmt"
	"sort"
)

type Service string

const (
	ServiceSheets Service = "sheets"
	ServiceDrive  Service = "drive"
)

func Scopes(service Service) ([]string, error) {
	switch service {
	case ServiceSheets:
		return []string{"https://www.googleapis.com/auth/spreadsheets"}, nil
	case ServiceDrive:
		return []string{"https://www.googleapis.com/auth/drive"}, nil
	default:
		return nil, errors.New("unknown service")
	}
}

// ScopesForServices returns the sorted union of the scopes of services.
func ScopesForServices(services []Service) ([]string, error) {
	set := make(map[string]struct{})
	for _, svc := range services {
		scopes, err := Scopes(svc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, svc)
		}
		for _, s := range scopes {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
