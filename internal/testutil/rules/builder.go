// Package rules provides test infrastructure for seeding coding rules.
//
// Example usage:
//
//	seeded, err := rules.NewBuilder(t).
//		WithFixture(rules.FixtureWorkplace).
//		WithRule(rules.Literal("薪酬", "工资太低")).
//		Build(ctx, storage)
package rules

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/service"
)

// Builder provides a fluent interface for constructing test rules.
type Builder interface {
	// WithRule adds a single rule to the builder.
	WithRule(rule model.CodingRule) Builder

	// WithFixture adds rules from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the rules in the provided storage and returns them
	// with their assigned ids, in insertion order.
	Build(ctx context.Context, storage service.Storage) (Rules, error)
}

// Rules represents a collection of created test rules.
type Rules []model.CodingRule

// Find returns the rule producing firstOrder, or nil if not found.
func (r Rules) Find(firstOrder string) *model.CodingRule {
	for i := range r {
		if r[i].FirstOrder == firstOrder {
			return &r[i]
		}
	}
	return nil
}

// MustFind returns the rule producing firstOrder, or fails the test.
func (r Rules) MustFind(t *testing.T, firstOrder string) model.CodingRule {
	t.Helper()
	rule := r.Find(firstOrder)
	if rule == nil {
		t.Fatalf("rule for %q not found in test data", firstOrder)
	}
	return *rule
}

// Literal returns an active substring rule producing an unclassified code.
func Literal(pattern, firstOrder string) model.CodingRule {
	return model.CodingRule{
		Name:       firstOrder,
		Pattern:    pattern,
		FirstOrder: firstOrder,
		IsActive:   true,
	}
}

// Classified returns an active substring rule placing its code under a
// theme and category.
func Classified(pattern, firstOrder, secondOrder, thirdOrder string) model.CodingRule {
	rule := Literal(pattern, firstOrder)
	rule.SecondOrder = secondOrder
	rule.ThirdOrder = thirdOrder
	return rule
}

type ruleBuilder struct {
	t     *testing.T
	rules []model.CodingRule
}

// NewBuilder creates a new rule builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &ruleBuilder{t: t}
}

func (b *ruleBuilder) WithRule(rule model.CodingRule) Builder {
	b.rules = append(b.rules, rule)
	return b
}

func (b *ruleBuilder) WithFixture(fixture Fixture) Builder {
	b.rules = append(b.rules, fixture.Rules()...)
	return b
}

func (b *ruleBuilder) Build(ctx context.Context, storage service.Storage) (Rules, error) {
	b.t.Helper()

	created := make(Rules, 0, len(b.rules))
	for _, rule := range b.rules {
		if err := storage.CreateRule(ctx, &rule); err != nil {
			return nil, fmt.Errorf("failed to create rule %q: %w", rule.Pattern, err)
		}
		created = append(created, rule)
	}
	return created, nil
}
