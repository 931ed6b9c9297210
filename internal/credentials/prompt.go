package credentials

import (
	"github.com/AlecAivazis/survey/v2"
)

// SurveyPrompt asks on the terminal.
func SurveyPrompt(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Help:    "File name under the credentials directory next to the gsheet binary",
	}, &answer)
	if err != nil {
		return "", err
	}
	return answer, nil
}
