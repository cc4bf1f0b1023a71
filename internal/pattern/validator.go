package pattern

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
)

// Validator checks rules and suggestions against tree limits and contents.
type Validator struct {
	limits codetree.Limits
}

// NewValidator creates a validator enforcing limits.
func NewValidator(limits codetree.Limits) *Validator {
	return &Validator{limits: limits}
}

// ValidateRule ensures a rule can produce codes the tree would accept.
func (v *Validator) ValidateRule(rule Rule) error {
	if rule.Pattern == "" {
		return fmt.Errorf("%w: rule pattern cannot be empty", common.ErrValidation)
	}
	if rule.IsRegex {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%w: invalid regex %q: %w", common.ErrValidation, rule.Pattern, err)
		}
	}

	code := codetree.CleanContent(rule.FirstOrder)
	if code == "" {
		return fmt.Errorf("%w: rule must name a first-order code", common.ErrValidation)
	}
	if n := utf8.RuneCountInString(code); n > v.limits.MaxFirstOrder {
		return fmt.Errorf("%w: code is %d characters, limit is %d", common.ErrValidation, n, v.limits.MaxFirstOrder)
	}

	if (rule.SecondOrder == "") != (rule.ThirdOrder == "") {
		return fmt.Errorf("%w: category and theme must be given together", common.ErrValidation)
	}
	for _, name := range []string{rule.SecondOrder, rule.ThirdOrder} {
		if n := utf8.RuneCountInString(codetree.CleanName(name)); n > v.limits.MaxCategory {
			return fmt.Errorf("%w: name %q is %d characters, limit is %d", common.ErrValidation, name, n, v.limits.MaxCategory)
		}
	}

	return nil
}

// ValidatePlacement rejects a classified suggestion whose code already sits
// in a different category of the tree.
func (v *Validator) ValidatePlacement(_ context.Context, suggestion Suggestion, tree *codetree.Tree) error {
	existing := tree.EntryByContent(suggestion.FirstOrder)
	if existing == nil || !suggestion.Classified() {
		return nil
	}

	cat := existing.Parent()
	if cat == nil {
		return nil
	}
	if cat.Name != suggestion.SecondOrder || cat.Parent().Name != suggestion.ThirdOrder {
		return fmt.Errorf("%w: code %q already belongs to %s", common.ErrStructural, suggestion.FirstOrder, cat.Display())
	}

	return nil
}
