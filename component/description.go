package component

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxTextLength = 50

// ValidationError is a user input problem. Handlers show Message inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizeText trims the task text and enforces the length bound.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Message: "Task text is required"}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", &ValidationError{Message: fmt.Sprintf("Task text must be at most %d characters", MaxTextLength)}
	}
	return text, nil
}
