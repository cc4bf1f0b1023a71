package codetree

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/groundwork/internal/model"
)

// Snapshot is an ordered, serializable copy of a tree.
type Snapshot struct {
	Themes       []ThemeSnapshot   `json:"themes"`
	Unclassified []model.CodeEntry `json:"unclassified,omitempty"`
}

// ThemeSnapshot is the serializable form of a theme.
type ThemeSnapshot struct {
	Name       string             `json:"name"`
	CodeID     string             `json:"code_id,omitempty"`
	Categories []CategorySnapshot `json:"categories"`
}

// CategorySnapshot is the serializable form of a category.
type CategorySnapshot struct {
	Name    string            `json:"name"`
	CodeID  string            `json:"code_id,omitempty"`
	Entries []model.CodeEntry `json:"entries"`
}

// Snapshot copies the tree into its serializable form.
func (t *Tree) Snapshot() Snapshot {
	snap := Snapshot{Themes: make([]ThemeSnapshot, 0, len(t.themes))}
	for _, theme := range t.themes {
		ts := ThemeSnapshot{
			Name:       theme.Name,
			CodeID:     theme.CodeID,
			Categories: make([]CategorySnapshot, 0, len(theme.Categories)),
		}
		for _, cat := range theme.Categories {
			cs := CategorySnapshot{
				Name:    cat.Name,
				CodeID:  cat.CodeID,
				Entries: make([]model.CodeEntry, 0, len(cat.Entries)),
			}
			for _, e := range cat.Entries {
				cs.Entries = append(cs.Entries, e.export())
			}
			ts.Categories = append(ts.Categories, cs)
		}
		snap.Themes = append(snap.Themes, ts)
	}
	for _, e := range t.unclassified {
		snap.Unclassified = append(snap.Unclassified, e.export())
	}
	return snap
}

// Structured returns the tree as nested maps keyed by cleaned names.
// Unclassified entries are not part of the structure.
func (t *Tree) Structured() model.ThemeEntries {
	out := make(model.ThemeEntries, len(t.themes))
	for _, theme := range t.themes {
		cats := make(model.CategoryEntries, len(theme.Categories))
		for _, cat := range theme.Categories {
			entries := make([]model.CodeEntry, 0, len(cat.Entries))
			for _, e := range cat.Entries {
				entries = append(entries, e.export())
			}
			cats[cat.Name] = entries
		}
		out[theme.Name] = cats
	}
	return out
}

// Clone returns an independent deep copy.
func (t *Tree) Clone() *Tree {
	return Rebuild(t.Snapshot(), t.limits)
}

// Rebuild reconstructs a tree from a snapshot. Identifiers are restored
// verbatim; nodes without one, or whose identifier is malformed or already
// taken at that level, get a freshly minted identifier once every valid
// identifier has been placed. Names and content are taken as stored, so
// callers reading external data clean them first. Empty content is
// skipped, and an entry repeating earlier content donates its sentence
// details to the earlier entry instead of being added.
func Rebuild(snap Snapshot, limits Limits) *Tree {
	t := New(limits)
	taken := map[string]bool{}
	claim := func(level model.Level, id string) string {
		if model.LevelOf(id) != level || taken[id] {
			return ""
		}
		taken[id] = true
		return id
	}

	var (
		needTheme []*ThirdOrderTheme
		needCat   []*SecondOrderCategory
		needEntry []*FirstOrderEntry
	)

	addEntry := func(e model.CodeEntry, cat *SecondOrderCategory) {
		content := strings.TrimSpace(e.Content)
		if content == "" {
			slog.Debug("skipping empty code during rebuild", "code_id", e.CodeID)
			return
		}
		if existing := t.EntryByContent(content); existing != nil {
			slog.Debug("merging duplicate code during rebuild", "content", content, "into", existing.CodeID)
			for _, d := range e.SentenceDetails {
				existing.attach(d)
			}
			return
		}
		entry := &FirstOrderEntry{
			parent:          cat,
			Content:         content,
			CodeID:          claim(model.LevelFirst, e.CodeID),
			SentenceDetails: append([]model.SentenceRecord(nil), e.SentenceDetails...),
		}
		entry.refreshCount()
		if entry.CodeID == "" {
			needEntry = append(needEntry, entry)
		}
		if cat != nil {
			cat.Entries = append(cat.Entries, entry)
		} else {
			t.unclassified = append(t.unclassified, entry)
		}
	}

	for _, ts := range snap.Themes {
		name := strings.TrimSpace(ts.Name)
		theme := t.ThemeByName(name)
		if theme == nil {
			theme = &ThirdOrderTheme{Name: name, CodeID: claim(model.LevelThird, ts.CodeID)}
			if theme.CodeID == "" {
				needTheme = append(needTheme, theme)
			}
			t.themes = append(t.themes, theme)
		}
		for _, cs := range ts.Categories {
			catName := strings.TrimSpace(cs.Name)
			cat := theme.CategoryByName(catName)
			if cat == nil {
				cat = &SecondOrderCategory{parent: theme, Name: catName, CodeID: claim(model.LevelSecond, cs.CodeID)}
				if cat.CodeID == "" {
					needCat = append(needCat, cat)
				}
				theme.Categories = append(theme.Categories, cat)
			}
			for _, e := range cs.Entries {
				addEntry(e, cat)
			}
		}
	}
	for _, e := range snap.Unclassified {
		addEntry(e, nil)
	}

	for _, theme := range needTheme {
		theme.CodeID = NextIdentifier(model.LevelThird, t)
	}
	for _, cat := range needCat {
		cat.CodeID = NextIdentifier(model.LevelSecond, t)
	}
	for _, e := range needEntry {
		e.CodeID = NextIdentifier(model.LevelFirst, t)
	}

	return t
}

// FromStructured builds a tree from nested maps, as read from a legacy
// structured-code mapping. Map iteration order is not stable, so keys are
// visited in sorted order.
func FromStructured(structured model.ThemeEntries, limits Limits) *Tree {
	return Rebuild(SnapshotFromStructured(structured), limits)
}

// SnapshotFromStructured orders nested maps into a snapshot by sorted keys.
func SnapshotFromStructured(structured model.ThemeEntries) Snapshot {
	var snap Snapshot
	for _, themeName := range sortedKeys(structured) {
		ts := ThemeSnapshot{Name: themeName}
		cats := structured[themeName]
		for _, catName := range sortedKeys(cats) {
			ts.Categories = append(ts.Categories, CategorySnapshot{
				Name:    catName,
				Entries: cats[catName],
			})
		}
		snap.Themes = append(snap.Themes, ts)
	}
	return snap
}
