package codetree

import "github.com/Veraticus/groundwork/internal/model"

// NextIdentifier returns the next free identifier for level: one past the
// largest numeric suffix currently used by that letter anywhere in the tree.
// It rescans the live tree on every call, so numbering follows whatever the
// tree holds now, including trees imported with gaps.
func NextIdentifier(level model.Level, tree *Tree) string {
	highest := 0
	if tree != nil {
		tree.walkIDs(func(id string) {
			l, n, ok := model.ParseCodeID(id)
			if ok && l == level && n > highest {
				highest = n
			}
		})
	}
	return model.FormatCodeID(level, highest+1)
}

// walkIDs visits every identifier held by a live node.
func (t *Tree) walkIDs(visit func(id string)) {
	for _, theme := range t.themes {
		visit(theme.CodeID)
		for _, cat := range theme.Categories {
			visit(cat.CodeID)
			for _, entry := range cat.Entries {
				visit(entry.CodeID)
			}
		}
	}
	for _, entry := range t.unclassified {
		visit(entry.CodeID)
	}
}
