package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/service"
)

var ruleColumns = []string{
	"id", "name", "pattern", "is_regex",
	"first_order", "second_order", "third_order",
	"priority", "is_active", "use_count",
	"created_at", "updated_at",
}

// CreateRule creates a new coding rule.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.CodingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCodingRule(rule); err != nil {
		return err
	}
	return createRule(ctx, s.db, rule)
}

func createRule(ctx context.Context, q querier, rule *model.CodingRule) error {
	now := time.Now().UTC()
	query, args, err := builder.Insert("coding_rules").
		Columns(ruleColumns[1:]...).
		Values(
			rule.Name, rule.Pattern, rule.IsRegex,
			rule.FirstOrder, rule.SecondOrder, rule.ThirdOrder,
			rule.Priority, rule.IsActive, rule.UseCount,
			now, now,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rule insert: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create coding rule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get coding rule ID: %w", err)
	}

	rule.ID = int(id)
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

// GetRule retrieves a coding rule by ID.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int) (*model.CodingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRule(ctx, s.db, id)
}

func getRule(ctx context.Context, q querier, id int) (*model.CodingRule, error) {
	query, args, err := builder.Select(ruleColumns...).
		From("coding_rules").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rule query: %w", err)
	}

	rule, err := scanRule(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: coding rule %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coding rule: %w", err)
	}
	return rule, nil
}

// GetActiveRules retrieves all active rules ordered by priority.
func (s *SQLiteStorage) GetActiveRules(ctx context.Context) ([]model.CodingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRules(ctx, s.db, service.RuleFilter{})
}

// GetRules retrieves rules matching filter ordered by priority.
func (s *SQLiteStorage) GetRules(ctx context.Context, filter service.RuleFilter) ([]model.CodingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRules(ctx, s.db, filter)
}

func getRules(ctx context.Context, q querier, filter service.RuleFilter) ([]model.CodingRule, error) {
	sel := builder.Select(ruleColumns...).
		From("coding_rules").
		OrderBy("priority DESC", "id ASC")

	if !filter.IncludeInactive {
		sel = sel.Where(sq.Eq{"is_active": true})
	}
	if filter.ThirdOrder != "" {
		sel = sel.Where(sq.Eq{"third_order": filter.ThirdOrder})
	}
	if filter.SecondOrder != "" {
		sel = sel.Where(sq.Eq{"second_order": filter.SecondOrder})
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rule query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get coding rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CodingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coding rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coding rules: %w", err)
	}
	return rules, nil
}

// UpdateRule rewrites a rule's pattern, code path, priority and state.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.CodingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCodingRule(rule); err != nil {
		return err
	}
	return updateRule(ctx, s.db, rule)
}

func updateRule(ctx context.Context, q querier, rule *model.CodingRule) error {
	now := time.Now().UTC()
	query, args, err := builder.Update("coding_rules").
		Set("name", rule.Name).
		Set("pattern", rule.Pattern).
		Set("is_regex", rule.IsRegex).
		Set("first_order", rule.FirstOrder).
		Set("second_order", rule.SecondOrder).
		Set("third_order", rule.ThirdOrder).
		Set("priority", rule.Priority).
		Set("is_active", rule.IsActive).
		Set("updated_at", now).
		Where(sq.Eq{"id": rule.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rule update: %w", err)
	}

	if err := execOne(ctx, q, query, args, fmt.Sprintf("coding rule %d", rule.ID)); err != nil {
		return err
	}
	rule.UpdatedAt = now
	return nil
}

// DeleteRule removes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteRule(ctx, s.db, id)
}

func deleteRule(ctx context.Context, q querier, id int) error {
	query, args, err := builder.Delete("coding_rules").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rule delete: %w", err)
	}
	return execOne(ctx, q, query, args, fmt.Sprintf("coding rule %d", id))
}

// IncrementRuleUseCount records that a rule produced a code.
func (s *SQLiteStorage) IncrementRuleUseCount(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return incrementRuleUseCount(ctx, s.db, id)
}

func incrementRuleUseCount(ctx context.Context, q querier, id int) error {
	query, args, err := builder.Update("coding_rules").
		Set("use_count", sq.Expr("use_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build use count update: %w", err)
	}
	return execOne(ctx, q, query, args, fmt.Sprintf("coding rule %d", id))
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, q querier, query string, args []any, what string) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, what)
	}
	return nil
}

func scanRule(row rowScanner) (*model.CodingRule, error) {
	var rule model.CodingRule
	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Pattern, &rule.IsRegex,
		&rule.FirstOrder, &rule.SecondOrder, &rule.ThirdOrder,
		&rule.Priority, &rule.IsActive, &rule.UseCount,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
