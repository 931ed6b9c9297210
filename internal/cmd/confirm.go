package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

var confirmPrompt = func(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message}, &ok)
	return ok, err
}

var errCancelled = errors.New("cancelled")

func confirmDestructive(flags *rootFlags, message string) error {
	if flags.Force {
		return nil
	}
	if flags.NoInput {
		return &ExitError{Code: 2, Err: fmt.Errorf("refusing without --force (--no-input): %s", message)}
	}
	ok, err := confirmPrompt(message)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}
	return nil
}
