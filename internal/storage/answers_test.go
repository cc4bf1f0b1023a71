package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveStandardAnswer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	answer := testAnswer("访谈编码")
	require.NoError(t, store.SaveStandardAnswer(ctx, answer))

	_, err := uuid.Parse(answer.ID)
	require.NoError(t, err, "new answers get a UUID")
	assert.False(t, answer.CreatedAt.IsZero())

	got, err := store.GetStandardAnswer(ctx, "访谈编码")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, answer.ID, got.ID)
	assert.Equal(t, answer.Structure, got.Structure)
	assert.Equal(t, answer.Counts, got.Counts)
	assert.Equal(t, "第一轮编码", got.Description)
}

func TestSQLiteStorage_SaveStandardAnswerUpdatesInPlace(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := testAnswer("answer")
	require.NoError(t, store.SaveStandardAnswer(ctx, first))

	second := testAnswer("answer")
	second.Structure = []byte(`{"structured_codes": {"C01 新": {}}}`)
	second.Counts = model.CodeCounts{Third: 1}
	require.NoError(t, store.SaveStandardAnswer(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	got, err := store.GetStandardAnswer(ctx, "answer")
	require.NoError(t, err)
	assert.Equal(t, second.Structure, got.Structure)
	assert.Equal(t, model.CodeCounts{Third: 1}, got.Counts)

	all, err := store.ListStandardAnswers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStorage_GetStandardAnswerMissing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.GetStandardAnswer(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStorage_GetStandardAnswerReturnsCopies(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveStandardAnswer(ctx, testAnswer("answer")))

	got, err := store.GetStandardAnswer(ctx, "answer")
	require.NoError(t, err)
	got.Structure[0] = 'X'

	again, err := store.GetStandardAnswer(ctx, "answer")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again.Structure[0])
}

func TestSQLiteStorage_ListStandardAnswers(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"b", "c", "a"} {
		require.NoError(t, store.SaveStandardAnswer(ctx, testAnswer(name)))
	}

	all, err := store.ListStandardAnswers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestSQLiteStorage_DeleteStandardAnswer(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	answer := testAnswer("answer")
	require.NoError(t, store.SaveStandardAnswer(ctx, answer))
	require.NoError(t, store.AddRevision(ctx, &model.AnswerRevision{AnswerID: answer.ID, Record: model.NewModificationRecord()}))

	require.NoError(t, store.DeleteStandardAnswer(ctx, "answer"))

	got, err := store.GetStandardAnswer(ctx, "answer")
	require.NoError(t, err)
	assert.Nil(t, got, "cache must not serve deleted answers")

	revisions, err := store.GetRevisions(ctx, revisionsFor(answer.ID))
	require.NoError(t, err)
	assert.Empty(t, revisions)

	err = store.DeleteStandardAnswer(ctx, "answer")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_SaveStandardAnswerValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		answer  *model.StandardAnswer
		wantErr error
		name    string
	}{
		{name: "nil", answer: nil, wantErr: ErrNilParameter},
		{name: "blank name", answer: &model.StandardAnswer{Name: " ", Structure: []byte("{}")}, wantErr: ErrInvalidAnswer},
		{name: "no structure", answer: &model.StandardAnswer{Name: "x"}, wantErr: ErrInvalidAnswer},
		{name: "negative counts", answer: &model.StandardAnswer{Name: "x", Structure: []byte("{}"), Counts: model.CodeCounts{First: -1}}, wantErr: ErrInvalidAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.SaveStandardAnswer(ctx, tt.answer), tt.wantErr)
		})
	}
}
