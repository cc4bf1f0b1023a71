// Package testutil provides test utilities for storage-backed tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/groundwork/internal/service"
	"github.com/Veraticus/groundwork/internal/storage"
	"github.com/Veraticus/groundwork/internal/testutil/rules"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
	Rules   rules.Rules
}

// SetupTestDB creates a new migrated in-memory test database. It closes
// the database when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithBuilder creates a test database seeded by a rule builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b rules.Builder) rules.Builder {
//		return b.WithFixture(rules.FixtureWorkplace)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(rules.Builder) rules.Builder) *TestDB {
	t.Helper()

	builder := rules.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	db := SetupTestDB(t)
	seeded, err := builder.Build(context.Background(), db.Storage)
	if err != nil {
		t.Fatalf("failed to build rules: %v", err)
	}
	db.Rules = seeded
	return db
}

// MustGetRule returns the seeded rule producing firstOrder or fails the test.
func (db *TestDB) MustGetRule(firstOrder string) int {
	db.t.Helper()
	return db.Rules.MustFind(db.t, firstOrder).ID
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}
