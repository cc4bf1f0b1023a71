package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/model"
)

// TreeOptions controls RenderTree.
type TreeOptions struct {
	// ShowSentences lists the sentence ids under each first-order code.
	ShowSentences bool
}

// RenderTree draws the code tree with box-drawing branches, followed by
// the unclassified codes.
func RenderTree(tree *codetree.Tree, opts TreeOptions) string {
	var b strings.Builder

	themes := tree.Themes()
	for _, theme := range themes {
		b.WriteString(ThemeStyle.Render(theme.Display()))
		b.WriteByte('\n')
		for ci, cat := range theme.Categories {
			lastCat := ci == len(theme.Categories)-1
			b.WriteString(branch(lastCat))
			b.WriteString(CategoryStyle.Render(cat.Display()))
			b.WriteByte('\n')
			for ei, entry := range cat.Entries {
				b.WriteString(stem(lastCat))
				b.WriteString(branch(ei == len(cat.Entries)-1))
				b.WriteString(renderEntry(entry, opts))
				b.WriteByte('\n')
			}
		}
	}

	if pending := tree.Unclassified(); len(pending) > 0 {
		if len(themes) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(SubtleStyle.Render("Unclassified"))
		b.WriteByte('\n')
		for i, entry := range pending {
			b.WriteString(branch(i == len(pending)-1))
			b.WriteString(renderEntry(entry, opts))
			b.WriteByte('\n')
		}
	}

	counts := tree.CountCodes()
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d themes, %d categories, %d codes", counts.Third, counts.Second, counts.First)))
	return b.String()
}

func renderEntry(entry *codetree.FirstOrderEntry, opts TreeOptions) string {
	line := CodeStyle.Render(entry.Display())
	if !opts.ShowSentences {
		return line
	}
	ids := entry.SentenceSources()
	if len(ids) == 0 {
		return line
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("[%d]", id)
	}
	return line + " " + SubtleStyle.Render(strings.Join(parts, " "))
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func stem(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

// RenderRecord lists a modification record as +/- lines grouped by theme
// and category, followed by its summary.
func RenderRecord(rec model.ModificationRecord) string {
	if !rec.HasChanges {
		return FormatInfo("No changes")
	}

	var b strings.Builder
	writeEntries := func(prefix string, style func(...string) string, theme, category string, entries []model.CodeEntry) {
		for _, e := range entries {
			fmt.Fprintf(&b, "%s\n", style(fmt.Sprintf("%s %s / %s / %s", prefix, theme, category, e.Content)))
		}
	}
	writeThemes := func(prefix string, style func(...string) string, themes model.ThemeEntries) {
		for _, theme := range sortedNames(themes) {
			cats := themes[theme]
			for _, category := range sortedNames(cats) {
				writeEntries(prefix, style, theme, category, cats[category])
			}
		}
	}

	writeThemes("+", AddedStyle.Render, rec.Added)
	writeThemes("-", DeletedStyle.Render, rec.Deleted)
	for _, theme := range sortedNames(rec.Modified) {
		change := rec.Modified[theme]
		writeThemes("+", AddedStyle.Render, model.ThemeEntries{theme: change.Added})
		writeThemes("-", DeletedStyle.Render, model.ThemeEntries{theme: change.Deleted})
		for _, category := range sortedNames(change.Modified) {
			catChange := change.Modified[category]
			writeEntries("+", AddedStyle.Render, theme, category, catChange.Added)
			writeEntries("-", DeletedStyle.Render, theme, category, catChange.Deleted)
		}
	}

	s := rec.Summary
	b.WriteString(BoldStyle.Render(fmt.Sprintf("%d added, %d modified, %d deleted", s.AddedCodes, s.ModifiedCodes, s.DeletedCodes)))
	return b.String()
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
