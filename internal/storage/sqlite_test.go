package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Veraticus/groundwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testAnswer(name string) *model.StandardAnswer {
	return &model.StandardAnswer{
		Name:        name,
		Description: "第一轮编码",
		Structure:   []byte(`{"structured_codes": {}}`),
		Counts:      model.CodeCounts{Third: 1, Second: 2, First: 3},
	}
}

func TestNewSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
	assert.Equal(t, ":memory:", store.Path())
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestNewSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "groundwork.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.FileExists(t, dbPath)
}

func TestSQLiteStorage_TransactionCommit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	answer := testAnswer("tx-answer")
	require.NoError(t, tx.SaveStandardAnswer(ctx, answer))
	require.NoError(t, tx.AddRevision(ctx, &model.AnswerRevision{AnswerID: answer.ID, Record: model.NewModificationRecord()}))

	inside, err := tx.GetStandardAnswer(ctx, "tx-answer")
	require.NoError(t, err)
	require.NotNil(t, inside)
	require.NoError(t, tx.Commit())

	got, err := store.GetStandardAnswer(ctx, "tx-answer")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, answer.ID, got.ID)
}

func TestSQLiteStorage_TransactionRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveStandardAnswer(ctx, testAnswer("kept")))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	updated := testAnswer("kept")
	updated.Description = "changed inside tx"
	require.NoError(t, tx.SaveStandardAnswer(ctx, updated))
	require.NoError(t, tx.Rollback())

	got, err := store.GetStandardAnswer(ctx, "kept")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "第一轮编码", got.Description)
}

func TestSQLiteStorage_TransactionRestrictions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	assert.Error(t, tx.Migrate(ctx))
	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
	assert.Error(t, tx.Close())
}

func TestSQLiteStorage_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // exercising nil context handling
	_, err := store.GetStandardAnswer(nil, "x")
	assert.True(t, errors.Is(err, ErrNilContext))
}
