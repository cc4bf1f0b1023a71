package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabasePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("PROJECT_DIR", filepath.Join(home, "study"))

	tests := []struct {
		name       string
		configured string
		want       string
	}{
		{name: "default", configured: "", want: filepath.Join(home, ".local", "share", "groundwork", "groundwork.db")},
		{name: "tilde", configured: "~/coding/gw.db", want: filepath.Join(home, "coding", "gw.db")},
		{name: "env var", configured: "$PROJECT_DIR/gw.db", want: filepath.Join(home, "study", "gw.db")},
		{name: "in memory", configured: ":memory:", want: ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DatabasePath(tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatabasePathUsesXDGDataHome(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DatabasePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "groundwork", "groundwork.db"), got)
}
