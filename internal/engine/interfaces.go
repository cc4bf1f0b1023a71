package engine

import (
	"context"

	"github.com/Veraticus/groundwork/internal/model"
)

// Matcher finds the coding rules that apply to a sentence, best first.
type Matcher interface {
	Match(ctx context.Context, sentence model.Sentence) ([]model.CodingRule, error)
}

// Label is a predicted or user-assigned first-order code for one numbered
// sentence. SecondOrder and ThirdOrder are either both set, placing the
// code under that category, or both empty, leaving it unclassified.
type Label struct {
	FirstOrder  string
	SecondOrder string
	ThirdOrder  string
	SentenceID  int
}

// Classified reports whether the label names a full path.
func (l Label) Classified() bool {
	return l.SecondOrder != "" && l.ThirdOrder != ""
}

// ApplyStats summarizes a call to ApplyLabels or ApplyRules.
type ApplyStats struct {
	// RuleHits counts applied labels per rule ID. Only ApplyRules fills it.
	RuleHits map[int]int
	Created  int
	Extended int
	Skipped  int
}
