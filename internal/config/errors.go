package config

import "fmt"

type CredentialsMissingError struct {
	Path  string
	Cause error
}

func (e *CredentialsMissingError) Error() string {
	return fmt.Sprintf("service account credentials missing at %s: %v", e.Path, e.Cause)
}

func (e *CredentialsMissingError) Unwrap() error {
	return e.Cause
}
