// Package structure compares two coding structures and applies the
// resulting modification record to bring one structure up to date with
// the other.
//
// Comparison works on cleaned names and content, so identifiers that were
// renumbered between two snapshots never count as a change. First-order
// codes are compared as sets of content strings per category: editing the
// text of a code shows up as one deletion plus one addition. The summary
// counts first-order codes only, which leaves modified_codes at zero under
// this accounting. Unclassified codes are outside the structure and are
// not compared.
package structure

import (
	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/model"
)

// Diff returns what changed going from original to modified.
func Diff(original, modified *codetree.Tree) model.ModificationRecord {
	return DiffStructured(original.Structured(), modified.Structured())
}

// DiffStructured compares two nested structures keyed by cleaned names.
func DiffStructured(original, modified model.ThemeEntries) model.ModificationRecord {
	rec := model.NewModificationRecord()

	for theme, cats := range modified {
		if _, ok := original[theme]; ok {
			continue
		}
		rec.Added[theme] = copyCategories(cats)
		rec.Summary.AddedCodes += cats.CountFirstOrder()
	}

	for theme, cats := range original {
		if _, ok := modified[theme]; ok {
			continue
		}
		rec.Deleted[theme] = copyCategories(cats)
		rec.Summary.DeletedCodes += cats.CountFirstOrder()
	}

	for theme, origCats := range original {
		modCats, ok := modified[theme]
		if !ok {
			continue
		}
		change := diffTheme(origCats, modCats, &rec.Summary)
		if !change.Empty() {
			rec.Modified[theme] = change
		}
	}

	rec.HasChanges = rec.Summary.Total() != 0
	return rec
}

func diffTheme(original, modified model.CategoryEntries, summary *model.ModificationSummary) model.ThemeChange {
	change := model.ThemeChange{
		Added:    model.CategoryEntries{},
		Modified: map[string]model.CategoryChange{},
		Deleted:  model.CategoryEntries{},
	}

	for cat, entries := range modified {
		if _, ok := original[cat]; ok {
			continue
		}
		change.Added[cat] = copyEntries(entries)
		summary.AddedCodes += len(entries)
	}

	for cat, entries := range original {
		if _, ok := modified[cat]; ok {
			continue
		}
		change.Deleted[cat] = copyEntries(entries)
		summary.DeletedCodes += len(entries)
	}

	for cat, origEntries := range original {
		modEntries, ok := modified[cat]
		if !ok {
			continue
		}
		catChange := diffCategory(origEntries, modEntries)
		if catChange.Empty() {
			continue
		}
		summary.AddedCodes += len(catChange.Added)
		summary.DeletedCodes += len(catChange.Deleted)
		change.Modified[cat] = catChange
	}

	return change
}

// diffCategory is a set difference on content, keeping input order.
func diffCategory(original, modified []model.CodeEntry) model.CategoryChange {
	origSet := contentSet(original)
	modSet := contentSet(modified)

	var change model.CategoryChange
	for _, e := range modified {
		if _, ok := origSet[e.Content]; !ok {
			change.Added = append(change.Added, e)
		}
	}
	for _, e := range original {
		if _, ok := modSet[e.Content]; !ok {
			change.Deleted = append(change.Deleted, e)
		}
	}
	return change
}

func contentSet(entries []model.CodeEntry) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.Content] = struct{}{}
	}
	return set
}

func copyCategories(cats model.CategoryEntries) model.CategoryEntries {
	out := make(model.CategoryEntries, len(cats))
	for name, entries := range cats {
		out[name] = copyEntries(entries)
	}
	return out
}

func copyEntries(entries []model.CodeEntry) []model.CodeEntry {
	out := make([]model.CodeEntry, len(entries))
	copy(out, entries)
	return out
}
