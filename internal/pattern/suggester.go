package pattern

import (
	"context"
	"fmt"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/model"
)

var _ CodeSuggester = (*Suggester)(nil)

// Suggester implements CodeSuggester using coding rules.
type Suggester struct {
	matcher   Matcher
	validator PlacementValidator
}

// NewSuggester creates a new code suggester.
func NewSuggester(matcher Matcher, validator PlacementValidator) *Suggester {
	return &Suggester{
		matcher:   matcher,
		validator: validator,
	}
}

// Suggest returns one suggestion per distinct first-order code, taken from
// the highest priority rule proposing it.
func (s *Suggester) Suggest(ctx context.Context, sentence model.Sentence) ([]Suggestion, error) {
	rules, err := s.matcher.Match(ctx, sentence)
	if err != nil {
		return nil, fmt.Errorf("failed to match rules: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(rules))
	seen := make(map[string]bool)

	for _, rule := range rules {
		code := codetree.CleanContent(rule.FirstOrder)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		suggestions = append(suggestions, Suggestion{
			RuleID:      &rule.ID,
			FirstOrder:  code,
			SecondOrder: codetree.CleanName(rule.SecondOrder),
			ThirdOrder:  codetree.CleanName(rule.ThirdOrder),
			Reason:      generateReason(rule),
			Priority:    rule.Priority,
		})
	}

	return suggestions, nil
}

// generateReason creates a human-readable explanation for a suggestion.
func generateReason(rule Rule) string {
	var reason string
	if rule.IsRegex {
		reason = fmt.Sprintf("Sentences matching /%s/", rule.Pattern)
	} else {
		reason = fmt.Sprintf("Sentences containing %q", rule.Pattern)
	}

	reason += fmt.Sprintf(" are coded as %q", codetree.CleanContent(rule.FirstOrder))
	if rule.Classified() {
		reason += fmt.Sprintf(" under %s / %s", codetree.CleanName(rule.ThirdOrder), codetree.CleanName(rule.SecondOrder))
	}
	if rule.Name != "" {
		reason += fmt.Sprintf(" (rule %s)", rule.Name)
	}

	return reason
}

// SuggestWithValidation returns only suggestions that fit the tree.
func (s *Suggester) SuggestWithValidation(ctx context.Context, sentence model.Sentence, tree *codetree.Tree) ([]Suggestion, error) {
	suggestions, err := s.Suggest(ctx, sentence)
	if err != nil {
		return nil, err
	}

	var valid []Suggestion
	for _, suggestion := range suggestions {
		if err := s.validator.ValidatePlacement(ctx, suggestion, tree); err == nil {
			valid = append(valid, suggestion)
		}
	}

	return valid, nil
}
