package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/service"
)

// AddRevision stores a modification record against an answer. The record
// is kept as JSON; its summary counters are also stored as columns.
func (s *SQLiteStorage) AddRevision(ctx context.Context, revision *model.AnswerRevision) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRevision(revision); err != nil {
		return err
	}
	return addRevision(ctx, s.db, revision)
}

func addRevision(ctx context.Context, q querier, revision *model.AnswerRevision) error {
	record, err := json.Marshal(revision.Record)
	if err != nil {
		return fmt.Errorf("failed to encode modification record: %w", err)
	}
	if revision.CreatedAt.IsZero() {
		revision.CreatedAt = time.Now().UTC()
	}

	query, args, err := builder.Insert("answer_revisions").
		Columns("answer_id", "record", "added_codes", "deleted_codes", "created_at").
		Values(
			revision.AnswerID, string(record),
			revision.Record.Summary.AddedCodes, revision.Record.Summary.DeletedCodes,
			revision.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revision insert: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get revision ID: %w", err)
	}
	revision.ID = id
	return nil
}

// GetRevisions returns revisions matching filter, oldest first.
func (s *SQLiteStorage) GetRevisions(ctx context.Context, filter service.RevisionFilter) ([]model.AnswerRevision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRevisionFilter(filter); err != nil {
		return nil, err
	}
	return getRevisions(ctx, s.db, filter)
}

func getRevisions(ctx context.Context, q querier, filter service.RevisionFilter) ([]model.AnswerRevision, error) {
	sel := builder.Select("id", "answer_id", "record", "created_at").
		From("answer_revisions").
		OrderBy("created_at ASC", "id ASC")

	if filter.AnswerID != "" {
		sel = sel.Where(sq.Eq{"answer_id": filter.AnswerID})
	}
	if filter.Since != nil {
		sel = sel.Where(sq.GtOrEq{"created_at": filter.Since.UTC()})
	}
	if filter.Until != nil {
		sel = sel.Where(sq.LtOrEq{"created_at": filter.Until.UTC()})
	}
	if filter.Limit > 0 {
		sel = sel.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			sel = sel.Limit(uint64(1<<63 - 1))
		}
		sel = sel.Offset(uint64(filter.Offset))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build revision query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var revisions []model.AnswerRevision
	for rows.Next() {
		var rev model.AnswerRevision
		var record string
		if err := rows.Scan(&rev.ID, &rev.AnswerID, &record, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		if err := json.Unmarshal([]byte(record), &rev.Record); err != nil {
			return nil, fmt.Errorf("failed to decode revision %d: %w", rev.ID, err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revisions: %w", err)
	}
	return revisions, nil
}
