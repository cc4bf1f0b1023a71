package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "yes\n", want: "yes"},
		{name: "surrounding whitespace", input: "  删除  \n", want: "删除"},
		{name: "empty line", input: "\n", want: ""},
		{name: "windows line ending", input: "no\r\n", want: "no"},
		{name: "last line without newline", input: "y", want: "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))
			got, err := r.ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_Sequence(t *testing.T) {
	r := NewLineReader(strings.NewReader("first\nsecond\nthird"))
	ctx := context.Background()

	for _, want := range []string{"first", "second", "third"} {
		got, err := r.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_Cancellation(t *testing.T) {
	t.Run("already canceled", func(t *testing.T) {
		r := NewLineReader(strings.NewReader("ignored\n"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := r.ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("canceled while waiting keeps the line", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() { _ = pw.Close() })
		r := NewLineReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err := r.ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)

		go func() { _, _ = pw.Write([]byte("late\n")) }()
		got, err := r.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "late", got)
	})
}
