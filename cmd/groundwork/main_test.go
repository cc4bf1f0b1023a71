package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/groundwork/internal/codefile"
	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewBufferString(""))
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	cmd := newRootCmd()

	want := []string{
		"number", "codes", "label", "diff", "merge", "mark", "answers",
		"rules", "suggest", "checkpoint", "migrate", "version",
	}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "log-level", "log-format", "db"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "groundwork dev\n", out)
}

func TestCodesCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")

	steps := [][]string{
		{"codes", "add-theme", "工作挑战", "-f", path},
		{"codes", "add-category", "C01", "时间管理", "-f", path},
		{"codes", "add-code", "经常加班", "--category", "B01", "--sentence", "1", "--source", "a.txt", "-f", path},
		{"codes", "add-code", "会议太多", "-f", path},
		{"codes", "move", "A02", "--to", "B01", "-f", path},
	}
	for _, args := range steps {
		_, err := execute(t, args...)
		require.NoError(t, err, args)
	}

	doc, err := codefile.Load(path, codetree.DefaultLimits())
	require.NoError(t, err)
	theme := doc.Tree.Theme("C01")
	require.NotNil(t, theme)
	assert.Equal(t, "工作挑战", theme.Name)
	require.Len(t, theme.Categories, 1)
	require.Len(t, theme.Categories[0].Entries, 2)
	assert.Equal(t, "经常加班", theme.Categories[0].Entries[0].Content)
	assert.Equal(t, 1, theme.Categories[0].Entries[0].SentenceCount)
	assert.Empty(t, doc.Tree.Unclassified())

	out, err := execute(t, "codes", "show", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "工作挑战")
	assert.Contains(t, out, "会议太多")
}

func TestCodesCommandRejectionLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")
	_, err := execute(t, "codes", "add-theme", "工作挑战", "-f", path)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = execute(t, "codes", "add-theme", "工作挑战", "-f", path)
	require.Error(t, err)
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)

	_, err = execute(t, "codes", "add-category", "C09", "时间管理", "-f", path)
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNumberCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("大家沟通很少。"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("我们经常加班。会议太多了！"), 0o600))

	out, err := execute(t, "number", filepath.Join(dir, "b.txt"), filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "我们经常加班。 [1]")
	assert.Contains(t, out, "会议太多了！ [2]")
	assert.Contains(t, out, "大家沟通很少。 [3]")

	outDir := filepath.Join(dir, "out")
	_, err = execute(t, "number", "-o", outDir, filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(outDir, "a.numbered.txt"))
	require.NoError(t, err)
	assert.Equal(t, "我们经常加班。 [1]\n会议太多了！ [2]\n", string(data))
}

func TestReadTextsRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "x"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x", "a.txt"), []byte("two"), 0o600))

	_, err := readTexts(context.Background(), []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "x", "a.txt")})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = readTexts(context.Background(), []string{filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)
}

func TestRulesCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "groundwork.db")

	out, err := execute(t, "rules", "add", "加班", "经常加班", "--category", "时间管理", "--theme", "工作挑战", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Created rule 1")

	_, err = execute(t, "rules", "add", "[", "坏规则", "--regex", "--db", db)
	require.Error(t, err)

	out, err = execute(t, "rules", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "经常加班")

	_, err = execute(t, "rules", "delete", "1", "--db", db)
	require.NoError(t, err)
	_, err = execute(t, "rules", "delete", "1", "--db", db)
	assert.Error(t, err)
}

func TestMigrateStatus(t *testing.T) {
	db := filepath.Join(t.TempDir(), "groundwork.db")
	out, err := execute(t, "migrate", "--status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 4 (latest 4)")
}

func TestNumberedName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"a.txt", "a.numbered.txt"},
		{"interview", "interview.numbered"},
		{"x.y.md", "x.y.numbered.md"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, numberedName(tt.file))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate("2025-03-04")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 4, got.Day())

	_, err = parseDate("04/03/2025")
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}
