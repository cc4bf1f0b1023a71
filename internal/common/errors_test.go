package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected(fmt.Errorf("%w: empty name", ErrValidation)))
	assert.True(t, IsRejected(fmt.Errorf("add: %w", fmt.Errorf("%w: no theme", ErrStructural))))
	assert.False(t, IsRejected(ErrNotFound))
	assert.False(t, IsRejected(nil))
}

func TestUserError(t *testing.T) {
	cause := fmt.Errorf("%w: answer %q", ErrNotFound, "研究一")
	err := NewUserError("Could not delete answer", cause)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `Could not delete answer: not found: answer "研究一"`, err.Error())
	assert.Equal(t, "only message", (&UserError{UserMessage: "only message"}).Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{
			name: "plain error",
			err:  errors.New("disk full"),
			want: "disk full",
		},
		{
			name: "user error",
			err:  NewUserError("Could not read codes file codes.json", ErrInvalidFormat),
			want: "Could not read codes file codes.json",
		},
		{
			name: "wrapped user error",
			err:  fmt.Errorf("run: %w", NewUserError("Invalid rule id \"x\"", errors.New("parse"))),
			want: "Invalid rule id \"x\"",
		},
		{
			name: "rejection keeps reason",
			err:  NewUserError("Rules could not be applied", fmt.Errorf("%w: name too long", ErrValidation)),
			want: "Rules could not be applied: validation failed: name too long",
		},
		{
			name: "rejection used as message",
			err: func() error {
				cause := fmt.Errorf("%w: theme exists", ErrValidation)
				return NewUserError(cause.Error(), cause)
			}(),
			want: "validation failed: theme exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
