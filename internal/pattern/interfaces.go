// Package pattern provides user-defined rule matching that suggests
// first-order codes for transcript sentences.
package pattern

import (
	"context"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/model"
)

// PlacementValidator checks that a suggestion fits the current code tree.
type PlacementValidator interface {
	// ValidatePlacement ensures the suggested code does not already live
	// somewhere other than the suggested category.
	ValidatePlacement(ctx context.Context, suggestion Suggestion, tree *codetree.Tree) error
}

// CodeSuggester provides code suggestions based on coding rules.
type CodeSuggester interface {
	// Suggest returns code suggestions with reasons.
	Suggest(ctx context.Context, sentence model.Sentence) ([]Suggestion, error)
	// SuggestWithValidation returns only suggestions that fit the tree.
	SuggestWithValidation(ctx context.Context, sentence model.Sentence, tree *codetree.Tree) ([]Suggestion, error)
}

// Matcher evaluates sentences against coding rules.
type Matcher interface {
	// Match evaluates a sentence against all active rules and returns the
	// matching ones, highest priority first.
	Match(ctx context.Context, sentence model.Sentence) ([]Rule, error)
}

// Suggestion is a first-order code proposed for a sentence.
type Suggestion struct {
	RuleID      *int
	FirstOrder  string
	SecondOrder string
	ThirdOrder  string
	Reason      string
	Priority    int
}

// Classified reports whether the suggestion names a category and theme.
func (s Suggestion) Classified() bool {
	return s.SecondOrder != "" && s.ThirdOrder != ""
}

// Rule is an alias to the model.CodingRule type for convenience.
type Rule = model.CodingRule
