// Package common holds the error kinds and logging helpers shared by every
// groundwork package.
package common

import (
	"errors"
	"fmt"
)

// Error kinds. Callers wrap these with %w and test with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrValidation rejects an edit whose input is unusable: empty or
	// over-long names, malformed identifiers.
	ErrValidation = errors.New("validation failed")
	// ErrStructural rejects an edit that would break the hierarchy, such as
	// a category without a theme.
	ErrStructural = errors.New("structural constraint violated")

	ErrInvalidFormat = errors.New("invalid file format")

	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRejected reports whether err is a rejected coding operation. A
// rejected operation leaves the code tree untouched.
func IsRejected(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrStructural)
}

// UserError pairs an underlying error with the message a command prints.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message for the terminal.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// UserMessage returns the text to show for err: the outermost UserError's
// message, or the full error chain when there is none. A rejected coding
// operation adds its reason to the message.
func UserMessage(err error) string {
	var userErr *UserError
	if !errors.As(err, &userErr) {
		return err.Error()
	}
	if userErr.Err != nil && IsRejected(userErr.Err) && userErr.UserMessage != userErr.Err.Error() {
		return userErr.Error()
	}
	return userErr.UserMessage
}
