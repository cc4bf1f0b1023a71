package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
)

var answerColumns = []string{
	"id", "name", "description", "structure",
	"third_count", "second_count", "first_count",
	"created_at", "updated_at",
}

// SaveStandardAnswer inserts an answer, or replaces the stored structure
// and counts when one with the same name exists. A new answer gets a UUID.
func (s *SQLiteStorage) SaveStandardAnswer(ctx context.Context, answer *model.StandardAnswer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStandardAnswer(answer); err != nil {
		return err
	}

	s.answerCache.Remove(answer.Name)
	if err := saveStandardAnswer(ctx, s.db, answer); err != nil {
		return err
	}
	s.answerCache.Add(answer.Name, copyAnswer(*answer))
	return nil
}

func saveStandardAnswer(ctx context.Context, q querier, answer *model.StandardAnswer) error {
	existing, err := getStandardAnswer(ctx, q, answer.Name)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if existing != nil {
		answer.ID = existing.ID
		answer.CreatedAt = existing.CreatedAt
		answer.UpdatedAt = now

		query, args, err := builder.Update("standard_answers").
			Set("description", answer.Description).
			Set("structure", string(answer.Structure)).
			Set("third_count", answer.Counts.Third).
			Set("second_count", answer.Counts.Second).
			Set("first_count", answer.Counts.First).
			Set("updated_at", answer.UpdatedAt).
			Where(sq.Eq{"id": answer.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build answer update: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update standard answer: %w", err)
		}
		return nil
	}

	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	answer.CreatedAt = now
	answer.UpdatedAt = now

	query, args, err := builder.Insert("standard_answers").
		Columns(answerColumns...).
		Values(
			answer.ID, answer.Name, answer.Description, string(answer.Structure),
			answer.Counts.Third, answer.Counts.Second, answer.Counts.First,
			answer.CreatedAt, answer.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build answer insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert standard answer: %w", err)
	}
	return nil
}

// GetStandardAnswer retrieves an answer by name. It returns nil and no
// error when no answer has that name.
func (s *SQLiteStorage) GetStandardAnswer(ctx context.Context, name string) (*model.StandardAnswer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	if cached, ok := s.answerCache.Get(name); ok {
		answer := copyAnswer(cached)
		return &answer, nil
	}

	answer, err := getStandardAnswer(ctx, s.db, name)
	if err != nil || answer == nil {
		return answer, err
	}
	s.answerCache.Add(name, copyAnswer(*answer))
	return answer, nil
}

func getStandardAnswer(ctx context.Context, q querier, name string) (*model.StandardAnswer, error) {
	query, args, err := builder.Select(answerColumns...).
		From("standard_answers").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build answer query: %w", err)
	}

	answer, err := scanAnswer(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standard answer: %w", err)
	}
	return answer, nil
}

// ListStandardAnswers returns every answer ordered by name.
func (s *SQLiteStorage) ListStandardAnswers(ctx context.Context) ([]model.StandardAnswer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listStandardAnswers(ctx, s.db)
}

func listStandardAnswers(ctx context.Context, q querier) ([]model.StandardAnswer, error) {
	query, args, err := builder.Select(answerColumns...).
		From("standard_answers").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build answer query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list standard answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []model.StandardAnswer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standard answer: %w", err)
		}
		answers = append(answers, *answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standard answers: %w", err)
	}
	return answers, nil
}

// DeleteStandardAnswer removes an answer and its revisions.
func (s *SQLiteStorage) DeleteStandardAnswer(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	s.answerCache.Remove(name)
	return deleteStandardAnswer(ctx, s.db, name)
}

func deleteStandardAnswer(ctx context.Context, q querier, name string) error {
	query, args, err := builder.Delete("standard_answers").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build answer delete: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete standard answer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: standard answer %q", common.ErrNotFound, name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnswer(row rowScanner) (*model.StandardAnswer, error) {
	var answer model.StandardAnswer
	var structure string
	err := row.Scan(
		&answer.ID, &answer.Name, &answer.Description, &structure,
		&answer.Counts.Third, &answer.Counts.Second, &answer.Counts.First,
		&answer.CreatedAt, &answer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	answer.Structure = []byte(structure)
	return &answer, nil
}

func copyAnswer(answer model.StandardAnswer) model.StandardAnswer {
	answer.Structure = append([]byte(nil), answer.Structure...)
	return answer
}
