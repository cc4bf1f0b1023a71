package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
)

// ApplyLabels codes sentences. A label whose content already exists adds
// the sentence to that entry, and classifies it if it was pending and the
// label names a path; otherwise a new entry is created, under the named
// category (created on demand) or unclassified. Labels for unknown sentence
// ids are skipped.
//
// Labels are applied to a copy of the tree; if any is rejected the session
// tree is left untouched and the error is returned.
func (s *Session) ApplyLabels(labels []Label) (ApplyStats, error) {
	stats := ApplyStats{}
	work := s.tree.Clone()

	for _, label := range labels {
		sentence, ok := s.numberer.Sentence(label.SentenceID)
		if !ok {
			common.LogDebug("skipping label for unknown sentence", common.Fields{"sentence_id": label.SentenceID})
			stats.Skipped++
			continue
		}
		created, err := applyLabel(work, label, sentence.Record())
		if err != nil {
			return ApplyStats{}, fmt.Errorf("label for sentence %d: %w", label.SentenceID, err)
		}
		if created {
			stats.Created++
		} else {
			stats.Extended++
		}
	}

	s.tree = work
	return stats, nil
}

func applyLabel(tree *codetree.Tree, label Label, record model.SentenceRecord) (bool, error) {
	if (label.SecondOrder == "") != (label.ThirdOrder == "") {
		return false, fmt.Errorf("%w: category and theme must be given together", common.ErrValidation)
	}

	entry := tree.EntryByContent(codetree.CleanContent(label.FirstOrder))
	var category *codetree.SecondOrderCategory
	if label.Classified() && (entry == nil || entry.Parent() == nil) {
		var err error
		if category, err = ensurePath(tree, label.ThirdOrder, label.SecondOrder); err != nil {
			return false, err
		}
	}

	if entry != nil {
		if category != nil {
			if err := tree.MoveEntries([]string{entry.CodeID}, category.CodeID); err != nil {
				return false, err
			}
		}
		return false, tree.AttachSentence(entry.CodeID, record)
	}

	details := []model.SentenceRecord{record}
	if category == nil {
		_, err := tree.AddUnclassifiedFirstOrder(label.FirstOrder, details)
		return true, err
	}
	_, err := tree.AddFirstOrder(category.CodeID, label.FirstOrder, details)
	return true, err
}

func ensurePath(tree *codetree.Tree, themeName, categoryName string) (*codetree.SecondOrderCategory, error) {
	theme := tree.ThemeByName(codetree.CleanName(themeName))
	if theme == nil {
		var err error
		if theme, err = tree.AddThirdOrder(themeName); err != nil {
			return nil, err
		}
	}
	if category := theme.CategoryByName(codetree.CleanName(categoryName)); category != nil {
		return category, nil
	}
	return tree.AddSecondOrder(theme.CodeID, categoryName)
}

// ApplyRules labels every sentence that carries no code yet with the
// highest priority matching rule. Sentences no rule matches are left alone.
func (s *Session) ApplyRules(ctx context.Context, matcher Matcher) (ApplyStats, error) {
	var labels []Label
	ruleOf := make(map[int]int)

	for _, sentence := range s.numberer.Sentences() {
		if err := ctx.Err(); err != nil {
			return ApplyStats{}, err
		}
		if len(s.tree.CodesForSentence(sentence.ID)) > 0 {
			continue
		}
		rules, err := matcher.Match(ctx, sentence)
		if err != nil {
			return ApplyStats{}, fmt.Errorf("match sentence %d: %w", sentence.ID, err)
		}
		if len(rules) == 0 {
			continue
		}
		best := rules[0]
		labels = append(labels, Label{
			SentenceID:  sentence.ID,
			FirstOrder:  best.FirstOrder,
			SecondOrder: best.SecondOrder,
			ThirdOrder:  best.ThirdOrder,
		})
		ruleOf[sentence.ID] = best.ID
	}

	stats, err := s.ApplyLabels(labels)
	if err != nil {
		return ApplyStats{}, err
	}
	stats.RuleHits = make(map[int]int)
	for _, ruleID := range ruleOf {
		stats.RuleHits[ruleID]++
	}

	common.LogInfo("Applied coding rules", common.Fields{
		"labels":   len(labels),
		"created":  stats.Created,
		"extended": stats.Extended,
	})
	return stats, nil
}
