// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/groundwork/internal/model"
)

// RevisionFilter defines filtering options for revision queries.
type RevisionFilter struct {
	Since    *time.Time
	Until    *time.Time
	AnswerID string
	Limit    int
	Offset   int
}

// RuleFilter defines filtering options for coding rule queries.
type RuleFilter struct {
	ThirdOrder      string
	SecondOrder     string
	IncludeInactive bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Standard answer operations
	SaveStandardAnswer(ctx context.Context, answer *model.StandardAnswer) error
	GetStandardAnswer(ctx context.Context, name string) (*model.StandardAnswer, error)
	ListStandardAnswers(ctx context.Context) ([]model.StandardAnswer, error)
	DeleteStandardAnswer(ctx context.Context, name string) error

	// Revision operations
	AddRevision(ctx context.Context, revision *model.AnswerRevision) error
	GetRevisions(ctx context.Context, filter RevisionFilter) ([]model.AnswerRevision, error)

	// Coding rule operations
	CreateRule(ctx context.Context, rule *model.CodingRule) error
	GetRule(ctx context.Context, id int) (*model.CodingRule, error)
	GetActiveRules(ctx context.Context) ([]model.CodingRule, error)
	GetRules(ctx context.Context, filter RuleFilter) ([]model.CodingRule, error)
	UpdateRule(ctx context.Context, rule *model.CodingRule) error
	DeleteRule(ctx context.Context, id int) error
	IncrementRuleUseCount(ctx context.Context, id int) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
