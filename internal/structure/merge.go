package structure

import (
	"fmt"
	"sort"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
)

// Merge applies rec to a copy of original and returns the copy. Deletions
// are applied before additions so content moved between categories never
// collides with itself. Re-applying a record that is already reflected in
// the tree changes nothing. On error the original tree is untouched.
//
// Added first-order codes keep their identifier when it is free; a code
// whose content sits in the unclassified list is moved into place instead
// of being created twice. Names are visited in sorted order, so merged
// additions land in a stable order.
func Merge(original *codetree.Tree, rec model.ModificationRecord) (*codetree.Tree, error) {
	tree := original.Clone()
	m := merger{tree: tree}

	m.deleteThemes(rec.Deleted)
	for _, themeName := range sortedKeys(rec.Modified) {
		change := rec.Modified[themeName]
		theme := tree.ThemeByName(themeName)
		if theme == nil {
			continue
		}
		m.deleteCategories(theme, change.Deleted)
		for _, catName := range sortedKeys(change.Modified) {
			if cat := theme.CategoryByName(catName); cat != nil {
				m.deleteEntries(cat, change.Modified[catName].Deleted)
			}
		}
	}

	if err := m.addThemes(rec.Added); err != nil {
		return nil, err
	}
	for _, themeName := range sortedKeys(rec.Modified) {
		change := rec.Modified[themeName]
		theme, err := m.ensureTheme(themeName)
		if err != nil {
			return nil, err
		}
		if err := m.addCategories(theme, change.Added); err != nil {
			return nil, err
		}
		for _, catName := range sortedKeys(change.Modified) {
			cat, err := m.ensureCategory(theme, catName)
			if err != nil {
				return nil, err
			}
			if err := m.addEntries(cat, change.Modified[catName].Added); err != nil {
				return nil, err
			}
		}
	}

	return tree, nil
}

type merger struct {
	tree *codetree.Tree
}

func (m merger) deleteThemes(themes model.ThemeEntries) {
	for _, themeName := range sortedKeys(themes) {
		theme := m.tree.ThemeByName(themeName)
		if theme == nil {
			continue
		}
		m.deleteCategories(theme, themes[themeName])
		if len(theme.Categories) == 0 {
			_ = m.tree.DeleteEntry(theme.CodeID)
		}
	}
}

// deleteCategories removes the listed codes and then any listed category
// left empty. Codes added to a category since the record was taken keep
// the category alive.
func (m merger) deleteCategories(theme *codetree.ThirdOrderTheme, cats model.CategoryEntries) {
	for _, catName := range sortedKeys(cats) {
		cat := theme.CategoryByName(catName)
		if cat == nil {
			continue
		}
		m.deleteEntries(cat, cats[catName])
		if len(cat.Entries) == 0 {
			_ = m.tree.DeleteEntry(cat.CodeID)
		}
	}
}

func (m merger) deleteEntries(cat *codetree.SecondOrderCategory, entries []model.CodeEntry) {
	for _, e := range entries {
		existing := m.tree.EntryByContent(e.Content)
		if existing == nil || existing.Parent() != cat {
			continue
		}
		_ = m.tree.DeleteEntry(existing.CodeID)
	}
}

func (m merger) addThemes(themes model.ThemeEntries) error {
	for _, themeName := range sortedKeys(themes) {
		theme, err := m.ensureTheme(themeName)
		if err != nil {
			return err
		}
		if err := m.addCategories(theme, themes[themeName]); err != nil {
			return err
		}
	}
	return nil
}

func (m merger) addCategories(theme *codetree.ThirdOrderTheme, cats model.CategoryEntries) error {
	for _, catName := range sortedKeys(cats) {
		cat, err := m.ensureCategory(theme, catName)
		if err != nil {
			return err
		}
		if err := m.addEntries(cat, cats[catName]); err != nil {
			return err
		}
	}
	return nil
}

func (m merger) addEntries(cat *codetree.SecondOrderCategory, entries []model.CodeEntry) error {
	for _, e := range entries {
		existing := m.tree.EntryByContent(e.Content)
		if existing == nil {
			if _, err := m.tree.InsertFirstOrder(cat.CodeID, e); err != nil {
				return fmt.Errorf("merge code %q into %s: %w", e.Content, cat.CodeID, err)
			}
			continue
		}

		if existing.Parent() != cat {
			if existing.Parent() != nil {
				common.LogDebug("moving code to merged category", common.Fields{
					"code_id": existing.CodeID,
					"from":    existing.Parent().CodeID,
					"to":      cat.CodeID,
				})
				if err := m.tree.DetachEntry(existing.CodeID); err != nil {
					return err
				}
			}
			if err := m.tree.MoveEntries([]string{existing.CodeID}, cat.CodeID); err != nil {
				return fmt.Errorf("merge code %q into %s: %w", e.Content, cat.CodeID, err)
			}
		}
		for _, d := range e.SentenceDetails {
			if err := m.tree.AttachSentence(existing.CodeID, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m merger) ensureTheme(name string) (*codetree.ThirdOrderTheme, error) {
	theme, err := m.tree.InsertThirdOrder(name)
	if err != nil {
		return nil, fmt.Errorf("merge theme %q: %w", name, err)
	}
	return theme, nil
}

func (m merger) ensureCategory(theme *codetree.ThirdOrderTheme, name string) (*codetree.SecondOrderCategory, error) {
	cat, err := m.tree.InsertSecondOrder(theme.CodeID, name)
	if err != nil {
		return nil, fmt.Errorf("merge category %q: %w", name, err)
	}
	return cat, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
