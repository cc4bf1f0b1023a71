// Package codetree holds the three-level coding hierarchy: first-order codes
// grouped into second-order categories grouped into third-order themes,
// plus a flat list of first-order codes not yet classified.
//
// Names and content are always stored without identifier prefixes; the
// prefixed display form is derived from CodeID. A Tree is owned by a single
// session and is not safe for concurrent mutation.
package codetree

import (
	"sort"

	"github.com/Veraticus/groundwork/internal/config"
	"github.com/Veraticus/groundwork/internal/model"
)

// FirstOrderEntry is a concrete code attached to the sentences it came from.
type FirstOrderEntry struct {
	parent          *SecondOrderCategory
	Content         string
	CodeID          string
	SentenceDetails []model.SentenceRecord
	SentenceCount   int
}

// Parent returns the owning category, or nil for an unclassified entry.
func (e *FirstOrderEntry) Parent() *SecondOrderCategory {
	return e.parent
}

// Display returns the prefixed form, e.g. "A01 时间管理是最困难的".
func (e *FirstOrderEntry) Display() string {
	return Display(e.CodeID, e.Content)
}

// FileSources returns the distinct source files of the entry's sentences.
func (e *FirstOrderEntry) FileSources() []string {
	seen := make(map[string]struct{})
	var files []string
	for _, d := range e.SentenceDetails {
		if d.FilePath == "" {
			continue
		}
		if _, ok := seen[d.FilePath]; ok {
			continue
		}
		seen[d.FilePath] = struct{}{}
		files = append(files, d.FilePath)
	}
	sort.Strings(files)
	return files
}

// SentenceSources returns the distinct sentence ids the entry was coded from.
func (e *FirstOrderEntry) SentenceSources() []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, d := range e.SentenceDetails {
		if d.SentenceID <= 0 {
			continue
		}
		if _, ok := seen[d.SentenceID]; ok {
			continue
		}
		seen[d.SentenceID] = struct{}{}
		ids = append(ids, d.SentenceID)
	}
	sort.Ints(ids)
	return ids
}

func (e *FirstOrderEntry) refreshCount() {
	e.SentenceCount = max(len(e.SentenceDetails), 1)
}

func (e *FirstOrderEntry) export() model.CodeEntry {
	details := make([]model.SentenceRecord, len(e.SentenceDetails))
	copy(details, e.SentenceDetails)
	return model.CodeEntry{
		Content:         e.Content,
		CodeID:          e.CodeID,
		SentenceDetails: details,
		SentenceCount:   e.SentenceCount,
	}
}

// SecondOrderCategory groups first-order entries.
type SecondOrderCategory struct {
	parent  *ThirdOrderTheme
	Name    string
	CodeID  string
	Entries []*FirstOrderEntry
}

// Parent returns the owning theme.
func (c *SecondOrderCategory) Parent() *ThirdOrderTheme {
	return c.parent
}

// Display returns the prefixed form, e.g. "B01 时间管理".
func (c *SecondOrderCategory) Display() string {
	return Display(c.CodeID, c.Name)
}

// ThirdOrderTheme groups second-order categories.
type ThirdOrderTheme struct {
	Name       string
	CodeID     string
	Categories []*SecondOrderCategory
}

// Display returns the prefixed form, e.g. "C01 工作挑战".
func (t *ThirdOrderTheme) Display() string {
	return Display(t.CodeID, t.Name)
}

// Limits bounds the length of stored names and content, in runes.
type Limits struct {
	MaxFirstOrder int
	MaxCategory   int
}

// LimitsFromConfig extracts tree limits from the coding configuration.
func LimitsFromConfig(cfg config.CodingConfig) Limits {
	return Limits{
		MaxFirstOrder: cfg.MaxFirstOrderLength,
		MaxCategory:   cfg.MaxCategoryLength,
	}
}

// DefaultLimits returns the stock 300/100 rune limits.
func DefaultLimits() Limits {
	return LimitsFromConfig(config.DefaultCodingConfig())
}

// Tree is the in-memory coding structure.
type Tree struct {
	themes       []*ThirdOrderTheme
	unclassified []*FirstOrderEntry
	limits       Limits
}

// New creates an empty tree with the given limits.
func New(limits Limits) *Tree {
	if limits.MaxFirstOrder <= 0 || limits.MaxCategory <= 0 {
		limits = DefaultLimits()
	}
	return &Tree{limits: limits}
}

// NewDefault creates an empty tree with default limits.
func NewDefault() *Tree {
	return New(DefaultLimits())
}

// Limits returns the tree's validation limits.
func (t *Tree) Limits() Limits {
	return t.limits
}

// Themes returns the third-order themes in order.
func (t *Tree) Themes() []*ThirdOrderTheme {
	out := make([]*ThirdOrderTheme, len(t.themes))
	copy(out, t.themes)
	return out
}

// Unclassified returns first-order entries with no category.
func (t *Tree) Unclassified() []*FirstOrderEntry {
	out := make([]*FirstOrderEntry, len(t.unclassified))
	copy(out, t.unclassified)
	return out
}

// Empty reports whether the tree holds no codes at all.
func (t *Tree) Empty() bool {
	return len(t.themes) == 0 && len(t.unclassified) == 0
}

// Theme looks up a theme by identifier.
func (t *Tree) Theme(id string) *ThirdOrderTheme {
	for _, theme := range t.themes {
		if theme.CodeID == id {
			return theme
		}
	}
	return nil
}

// ThemeByName looks up a theme by its stored (cleaned) name.
func (t *Tree) ThemeByName(name string) *ThirdOrderTheme {
	for _, theme := range t.themes {
		if theme.Name == name {
			return theme
		}
	}
	return nil
}

// Category looks up a category by identifier.
func (t *Tree) Category(id string) *SecondOrderCategory {
	for _, theme := range t.themes {
		for _, cat := range theme.Categories {
			if cat.CodeID == id {
				return cat
			}
		}
	}
	return nil
}

// CategoryByName looks up a category by its stored (cleaned) name.
func (theme *ThirdOrderTheme) CategoryByName(name string) *SecondOrderCategory {
	for _, cat := range theme.Categories {
		if cat.Name == name {
			return cat
		}
	}
	return nil
}

// Entry looks up a first-order entry by identifier, classified or not.
func (t *Tree) Entry(id string) *FirstOrderEntry {
	var found *FirstOrderEntry
	t.eachEntry(func(e *FirstOrderEntry) bool {
		if e.CodeID == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// EntryByContent looks up a first-order entry by its stored (cleaned)
// content.
func (t *Tree) EntryByContent(content string) *FirstOrderEntry {
	var found *FirstOrderEntry
	t.eachEntry(func(e *FirstOrderEntry) bool {
		if e.Content == content {
			found = e
			return false
		}
		return true
	})
	return found
}

// Entries returns every first-order entry, classified ones first in tree
// order, then unclassified ones.
func (t *Tree) Entries() []*FirstOrderEntry {
	var out []*FirstOrderEntry
	t.eachEntry(func(e *FirstOrderEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// eachEntry visits first-order entries until visit returns false.
func (t *Tree) eachEntry(visit func(*FirstOrderEntry) bool) {
	for _, theme := range t.themes {
		for _, cat := range theme.Categories {
			for _, e := range cat.Entries {
				if !visit(e) {
					return
				}
			}
		}
	}
	for _, e := range t.unclassified {
		if !visit(e) {
			return
		}
	}
}

// CountCodes returns how many codes the tree holds at each level.
// Unclassified entries count as first-order codes.
func (t *Tree) CountCodes() model.CodeCounts {
	var counts model.CodeCounts
	for _, theme := range t.themes {
		counts.Third++
		for _, cat := range theme.Categories {
			counts.Second++
			counts.First += len(cat.Entries)
		}
	}
	counts.First += len(t.unclassified)
	return counts
}
