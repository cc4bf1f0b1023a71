package codetree

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
)

func (t *Tree) validateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s name cannot be empty", common.ErrValidation, kind)
	}
	if n := utf8.RuneCountInString(name); n > t.limits.MaxCategory {
		return fmt.Errorf("%w: %s name is %d characters, limit is %d", common.ErrValidation, kind, n, t.limits.MaxCategory)
	}
	return nil
}

// validateContent checks first-order content. except is ignored by the
// uniqueness check so an entry can be re-validated against itself.
func (t *Tree) validateContent(content string, except *FirstOrderEntry) error {
	if content == "" {
		return fmt.Errorf("%w: code content cannot be empty", common.ErrValidation)
	}
	if n := utf8.RuneCountInString(content); n > t.limits.MaxFirstOrder {
		return fmt.Errorf("%w: code content is %d characters, limit is %d", common.ErrValidation, n, t.limits.MaxFirstOrder)
	}
	if existing := t.EntryByContent(content); existing != nil && existing != except {
		return fmt.Errorf("%w: %w: code %q already exists as %s", common.ErrValidation, common.ErrDuplicateEntry, content, existing.CodeID)
	}
	return nil
}

// AddThirdOrder creates a theme with a fresh C identifier.
func (t *Tree) AddThirdOrder(name string) (*ThirdOrderTheme, error) {
	name = CleanName(name)
	if err := t.validateName("theme", name); err != nil {
		return nil, err
	}
	if existing := t.ThemeByName(name); existing != nil {
		return nil, fmt.Errorf("%w: %w: theme %q already exists", common.ErrValidation, common.ErrDuplicateEntry, existing.Display())
	}

	theme := &ThirdOrderTheme{
		Name:   name,
		CodeID: NextIdentifier(model.LevelThird, t),
	}
	t.themes = append(t.themes, theme)
	return theme, nil
}

// AddSecondOrder creates a category with a fresh B identifier under the
// theme parentID.
func (t *Tree) AddSecondOrder(parentID, name string) (*SecondOrderCategory, error) {
	theme := t.Theme(parentID)
	if theme == nil {
		return nil, fmt.Errorf("%w: theme %q does not exist", common.ErrStructural, parentID)
	}
	name = CleanName(name)
	if err := t.validateName("category", name); err != nil {
		return nil, err
	}
	if existing := theme.CategoryByName(name); existing != nil {
		return nil, fmt.Errorf("%w: %w: category %q already exists in %s", common.ErrValidation, common.ErrDuplicateEntry, name, theme.CodeID)
	}

	cat := &SecondOrderCategory{
		parent: theme,
		Name:   name,
		CodeID: NextIdentifier(model.LevelSecond, t),
	}
	theme.Categories = append(theme.Categories, cat)
	return cat, nil
}

func (t *Tree) newEntry(content string, details []model.SentenceRecord) (*FirstOrderEntry, error) {
	content = CleanContent(content)
	if err := t.validateContent(content, nil); err != nil {
		return nil, err
	}
	entry := &FirstOrderEntry{
		Content:         content,
		CodeID:          NextIdentifier(model.LevelFirst, t),
		SentenceDetails: append([]model.SentenceRecord(nil), details...),
	}
	entry.refreshCount()
	return entry, nil
}

// AddFirstOrder creates a first-order code with a fresh A identifier under
// the category parentID. Content must be unique across the whole tree.
func (t *Tree) AddFirstOrder(parentID, content string, details []model.SentenceRecord) (*FirstOrderEntry, error) {
	cat := t.Category(parentID)
	if cat == nil {
		return nil, fmt.Errorf("%w: category %q does not exist", common.ErrStructural, parentID)
	}
	entry, err := t.newEntry(content, details)
	if err != nil {
		return nil, err
	}
	entry.parent = cat
	cat.Entries = append(cat.Entries, entry)
	return entry, nil
}

// AddUnclassifiedFirstOrder creates a first-order code that belongs to no
// category yet.
func (t *Tree) AddUnclassifiedFirstOrder(content string, details []model.SentenceRecord) (*FirstOrderEntry, error) {
	entry, err := t.newEntry(content, details)
	if err != nil {
		return nil, err
	}
	t.unclassified = append(t.unclassified, entry)
	return entry, nil
}

// MoveEntries assigns unclassified first-order entries to the category
// newParentID. The move is all-or-nothing: if any entry already has a
// category, or any id is unknown, nothing changes. Categories cannot be
// moved: every category has its theme, so a theme is never a target.
func (t *Tree) MoveEntries(ids []string, newParentID string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no entries selected", common.ErrValidation)
	}
	if model.LevelOf(newParentID) == model.LevelThird {
		return fmt.Errorf("%w: categories always belong to a theme and cannot be moved to %s", common.ErrStructural, newParentID)
	}
	cat := t.Category(newParentID)
	if cat == nil {
		return fmt.Errorf("%w: category %q does not exist", common.ErrStructural, newParentID)
	}

	selected := make(map[*FirstOrderEntry]struct{}, len(ids))
	for _, id := range ids {
		if model.LevelOf(id) != model.LevelFirst {
			return fmt.Errorf("%w: %q is not a first-order code", common.ErrStructural, id)
		}
		entry := t.Entry(id)
		if entry == nil {
			return fmt.Errorf("%w: code %q does not exist", common.ErrStructural, id)
		}
		if entry.parent != nil {
			return fmt.Errorf("%w: code %s already belongs to %s", common.ErrStructural, id, entry.parent.CodeID)
		}
		selected[entry] = struct{}{}
	}

	remaining := t.unclassified[:0]
	var moved []*FirstOrderEntry
	for _, entry := range t.unclassified {
		if _, ok := selected[entry]; ok {
			moved = append(moved, entry)
			continue
		}
		remaining = append(remaining, entry)
	}
	t.unclassified = remaining

	for _, entry := range moved {
		entry.parent = cat
		cat.Entries = append(cat.Entries, entry)
	}
	return nil
}

// DetachEntry moves a classified first-order entry back to the unclassified
// list. Identifier and content are kept.
func (t *Tree) DetachEntry(id string) error {
	entry := t.Entry(id)
	if entry == nil {
		return fmt.Errorf("%w: code %q", common.ErrNotFound, id)
	}
	if entry.parent == nil {
		return nil
	}
	cat := entry.parent
	cat.Entries = removeEntry(cat.Entries, entry)
	entry.parent = nil
	t.unclassified = append(t.unclassified, entry)
	return nil
}

// DeleteEntry removes the node with identifier id and, for categories and
// themes, everything below it. Sibling identifiers are left as they are.
func (t *Tree) DeleteEntry(id string) error {
	switch model.LevelOf(id) {
	case model.LevelThird:
		for i, theme := range t.themes {
			if theme.CodeID == id {
				t.themes = append(t.themes[:i], t.themes[i+1:]...)
				return nil
			}
		}
	case model.LevelSecond:
		if cat := t.Category(id); cat != nil {
			theme := cat.parent
			for i, c := range theme.Categories {
				if c == cat {
					theme.Categories = append(theme.Categories[:i], theme.Categories[i+1:]...)
					break
				}
			}
			return nil
		}
	case model.LevelFirst:
		if entry := t.Entry(id); entry != nil {
			if entry.parent != nil {
				entry.parent.Entries = removeEntry(entry.parent.Entries, entry)
			} else {
				t.unclassified = removeEntry(t.unclassified, entry)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: code %q", common.ErrNotFound, id)
}

// UpdateContent replaces the name or content of the node id, keeping its
// identifier.
func (t *Tree) UpdateContent(id, text string) error {
	switch model.LevelOf(id) {
	case model.LevelThird:
		theme := t.Theme(id)
		if theme == nil {
			break
		}
		name := CleanName(text)
		if err := t.validateName("theme", name); err != nil {
			return err
		}
		if other := t.ThemeByName(name); other != nil && other != theme {
			return fmt.Errorf("%w: %w: theme %q already exists", common.ErrValidation, common.ErrDuplicateEntry, name)
		}
		theme.Name = name
		return nil
	case model.LevelSecond:
		cat := t.Category(id)
		if cat == nil {
			break
		}
		name := CleanName(text)
		if err := t.validateName("category", name); err != nil {
			return err
		}
		if other := cat.parent.CategoryByName(name); other != nil && other != cat {
			return fmt.Errorf("%w: %w: category %q already exists in %s", common.ErrValidation, common.ErrDuplicateEntry, name, cat.parent.CodeID)
		}
		cat.Name = name
		return nil
	case model.LevelFirst:
		entry := t.Entry(id)
		if entry == nil {
			break
		}
		content := CleanContent(text)
		if err := t.validateContent(content, entry); err != nil {
			return err
		}
		entry.Content = content
		return nil
	}
	return fmt.Errorf("%w: code %q", common.ErrNotFound, id)
}

// AttachSentence records that the first-order entry id was coded from
// record. A sentence already attached is not added twice.
func (t *Tree) AttachSentence(id string, record model.SentenceRecord) error {
	entry := t.Entry(id)
	if entry == nil {
		return fmt.Errorf("%w: code %q", common.ErrNotFound, id)
	}
	entry.attach(record)
	return nil
}

func (e *FirstOrderEntry) attach(record model.SentenceRecord) {
	for _, d := range e.SentenceDetails {
		if sameSentence(d, record) {
			return
		}
	}
	e.SentenceDetails = append(e.SentenceDetails, record)
	e.refreshCount()
}

func sameSentence(a, b model.SentenceRecord) bool {
	if a.SentenceID > 0 || b.SentenceID > 0 {
		return a.SentenceID == b.SentenceID
	}
	return a.Text == b.Text && a.FilePath == b.FilePath
}

func removeEntry(entries []*FirstOrderEntry, target *FirstOrderEntry) []*FirstOrderEntry {
	for i, e := range entries {
		if e == target {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

// InsertThirdOrder adds a theme whose name is already in stored form,
// returning the existing theme when one has that name.
func (t *Tree) InsertThirdOrder(name string) (*ThirdOrderTheme, error) {
	name = strings.TrimSpace(name)
	if existing := t.ThemeByName(name); existing != nil {
		return existing, nil
	}
	if err := t.validateName("theme", name); err != nil {
		return nil, err
	}
	theme := &ThirdOrderTheme{
		Name:   name,
		CodeID: NextIdentifier(model.LevelThird, t),
	}
	t.themes = append(t.themes, theme)
	return theme, nil
}

// InsertSecondOrder is InsertThirdOrder for a category under parentID.
func (t *Tree) InsertSecondOrder(parentID, name string) (*SecondOrderCategory, error) {
	theme := t.Theme(parentID)
	if theme == nil {
		return nil, fmt.Errorf("%w: theme %q does not exist", common.ErrStructural, parentID)
	}
	name = strings.TrimSpace(name)
	if existing := theme.CategoryByName(name); existing != nil {
		return existing, nil
	}
	if err := t.validateName("category", name); err != nil {
		return nil, err
	}
	cat := &SecondOrderCategory{
		parent: theme,
		Name:   name,
		CodeID: NextIdentifier(model.LevelSecond, t),
	}
	theme.Categories = append(theme.Categories, cat)
	return cat, nil
}

// InsertFirstOrder adds a serialized entry under the category parentID, or
// to the unclassified list when parentID is empty. The entry keeps its own
// identifier when that identifier is a first-order id not used anywhere in
// the tree; otherwise a new one is minted.
func (t *Tree) InsertFirstOrder(parentID string, src model.CodeEntry) (*FirstOrderEntry, error) {
	var cat *SecondOrderCategory
	if parentID != "" {
		if cat = t.Category(parentID); cat == nil {
			return nil, fmt.Errorf("%w: category %q does not exist", common.ErrStructural, parentID)
		}
	}

	content := strings.TrimSpace(src.Content)
	if err := t.validateContent(content, nil); err != nil {
		return nil, err
	}

	id := src.CodeID
	if model.LevelOf(id) != model.LevelFirst || t.hasID(id) {
		id = NextIdentifier(model.LevelFirst, t)
	}

	entry := &FirstOrderEntry{
		parent:          cat,
		Content:         content,
		CodeID:          id,
		SentenceDetails: append([]model.SentenceRecord(nil), src.SentenceDetails...),
	}
	entry.refreshCount()
	if cat != nil {
		cat.Entries = append(cat.Entries, entry)
	} else {
		t.unclassified = append(t.unclassified, entry)
	}
	return entry, nil
}

func (t *Tree) hasID(id string) bool {
	found := false
	t.walkIDs(func(existing string) {
		if existing == id {
			found = true
		}
	})
	return found
}
