// Package storage provides the SQLite persistence layer for standard
// answers, their revision history and coding rules.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultAnswerCacheSize bounds the number of standard answers kept in
// memory by name.
const DefaultAnswerCacheSize = 128

var _ service.Storage = (*SQLiteStorage)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// builder produces SQLite flavored statements.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db          *sql.DB
	answerCache *lru.Cache[string, model.StandardAnswer]
	dbPath      string
}

// NewSQLiteStorage creates a new SQLite storage instance. The special path
// ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	var dsn string
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	} else {
		dsn = "file::memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache, err := lru.New[string, model.StandardAnswer](DefaultAnswerCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create answer cache: %w", err)
	}

	return &SQLiteStorage{
		db:          db,
		dbPath:      dbPath,
		answerCache: cache,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.answerCache.Purge()
	return s.db.Close()
}

// Path returns the database location the storage was opened with.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
		touched: make(map[string]struct{}),
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction. Answers
// written inside the transaction bypass the cache and are evicted from it
// when the transaction ends.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
	touched map[string]struct{}
	mu      sync.Mutex
}

func (t *sqliteTransaction) touch(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touched[name] = struct{}{}
	t.storage.answerCache.Remove(name)
}

func (t *sqliteTransaction) evictTouched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name := range t.touched {
		t.storage.answerCache.Remove(name)
	}
}

func (t *sqliteTransaction) Commit() error {
	defer t.evictTouched()
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	defer t.evictTouched()
	return t.tx.Rollback()
}

func (t *sqliteTransaction) SaveStandardAnswer(ctx context.Context, answer *model.StandardAnswer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStandardAnswer(answer); err != nil {
		return err
	}
	t.touch(answer.Name)
	return saveStandardAnswer(ctx, t.tx, answer)
}

func (t *sqliteTransaction) GetStandardAnswer(ctx context.Context, name string) (*model.StandardAnswer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getStandardAnswer(ctx, t.tx, name)
}

func (t *sqliteTransaction) ListStandardAnswers(ctx context.Context) ([]model.StandardAnswer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listStandardAnswers(ctx, t.tx)
}

func (t *sqliteTransaction) DeleteStandardAnswer(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	t.touch(name)
	return deleteStandardAnswer(ctx, t.tx, name)
}

func (t *sqliteTransaction) AddRevision(ctx context.Context, revision *model.AnswerRevision) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRevision(revision); err != nil {
		return err
	}
	return addRevision(ctx, t.tx, revision)
}

func (t *sqliteTransaction) GetRevisions(ctx context.Context, filter service.RevisionFilter) ([]model.AnswerRevision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRevisionFilter(filter); err != nil {
		return nil, err
	}
	return getRevisions(ctx, t.tx, filter)
}

func (t *sqliteTransaction) CreateRule(ctx context.Context, rule *model.CodingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCodingRule(rule); err != nil {
		return err
	}
	return createRule(ctx, t.tx, rule)
}

func (t *sqliteTransaction) GetRule(ctx context.Context, id int) (*model.CodingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRule(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetActiveRules(ctx context.Context) ([]model.CodingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRules(ctx, t.tx, service.RuleFilter{})
}

func (t *sqliteTransaction) GetRules(ctx context.Context, filter service.RuleFilter) ([]model.CodingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRules(ctx, t.tx, filter)
}

func (t *sqliteTransaction) UpdateRule(ctx context.Context, rule *model.CodingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCodingRule(rule); err != nil {
		return err
	}
	return updateRule(ctx, t.tx, rule)
}

func (t *sqliteTransaction) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteRule(ctx, t.tx, id)
}

func (t *sqliteTransaction) IncrementRuleUseCount(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return incrementRuleUseCount(ctx, t.tx, id)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
