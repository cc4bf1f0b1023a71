package codetree

import (
	"sort"

	"github.com/Veraticus/groundwork/internal/model"
)

// SentencesForCode returns the sentence ids coded under id. For categories
// and themes the ids of every nested first-order code are combined.
func (t *Tree) SentencesForCode(id string) []int {
	var entries []*FirstOrderEntry
	switch model.LevelOf(id) {
	case model.LevelFirst:
		if e := t.Entry(id); e != nil {
			entries = append(entries, e)
		}
	case model.LevelSecond:
		if cat := t.Category(id); cat != nil {
			entries = cat.Entries
		}
	case model.LevelThird:
		if theme := t.Theme(id); theme != nil {
			for _, cat := range theme.Categories {
				entries = append(entries, cat.Entries...)
			}
		}
	}

	seen := make(map[int]struct{})
	var ids []int
	for _, e := range entries {
		for _, sid := range e.SentenceSources() {
			if _, ok := seen[sid]; ok {
				continue
			}
			seen[sid] = struct{}{}
			ids = append(ids, sid)
		}
	}
	sort.Ints(ids)
	return ids
}

// CodesForSentence returns the first-order codes that reference sentenceID,
// in tree order.
func (t *Tree) CodesForSentence(sentenceID int) []string {
	var codes []string
	t.eachEntry(func(e *FirstOrderEntry) bool {
		for _, d := range e.SentenceDetails {
			if d.SentenceID == sentenceID {
				codes = append(codes, e.CodeID)
				break
			}
		}
		return true
	})
	return codes
}

// Path returns the display path of a code, e.g.
// ["C01 工作挑战", "B01 时间管理", "A01 时间管理是最困难的"].
// Unknown ids yield nil.
func (t *Tree) Path(id string) []string {
	switch model.LevelOf(id) {
	case model.LevelThird:
		if theme := t.Theme(id); theme != nil {
			return []string{theme.Display()}
		}
	case model.LevelSecond:
		if cat := t.Category(id); cat != nil {
			return []string{cat.parent.Display(), cat.Display()}
		}
	case model.LevelFirst:
		if e := t.Entry(id); e != nil {
			if e.parent == nil {
				return []string{e.Display()}
			}
			return []string{e.parent.parent.Display(), e.parent.Display(), e.Display()}
		}
	}
	return nil
}
