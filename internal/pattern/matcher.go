package pattern

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
)

// MatcherImpl implements Matcher for evaluating coding rules.
type MatcherImpl struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []Rule
}

// NewMatcher creates a new rule matcher. Regex rules that fail to compile
// are logged and never match.
func NewMatcher(rules []Rule) *MatcherImpl {
	m := &MatcherImpl{
		rules:         rules,
		compiledRegex: make(map[int]*regexp.Regexp),
	}

	for _, rule := range rules {
		if !rule.IsRegex || rule.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			common.LogError(err, "skipping coding rule with invalid pattern", common.Fields{
				"rule_id": rule.ID,
				"name":    rule.Name,
			})
			continue
		}
		m.compiledRegex[rule.ID] = re
	}

	return m
}

// Match evaluates a sentence against all active rules.
func (m *MatcherImpl) Match(_ context.Context, sentence model.Sentence) ([]Rule, error) {
	var matches []Rule

	for _, rule := range m.rules {
		if !rule.IsActive {
			continue
		}

		if m.matchesRule(sentence.Text, rule) {
			matches = append(matches, rule)
		}
	}

	sortByPriority(matches)

	return matches, nil
}

// matchesRule checks the sentence text against a rule pattern. Literal
// patterns match as case-insensitive substrings.
func (m *MatcherImpl) matchesRule(text string, rule Rule) bool {
	if rule.Pattern == "" || text == "" {
		return false
	}

	if rule.IsRegex {
		if re, ok := m.compiledRegex[rule.ID]; ok {
			return re.MatchString(text)
		}
		return false
	}

	return strings.Contains(strings.ToLower(text), strings.ToLower(rule.Pattern))
}

// sortByPriority sorts rules by priority (highest first), then by id.
func sortByPriority(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}
