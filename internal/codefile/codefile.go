// Package codefile reads and writes structured-code documents and
// modification records as indented UTF-8 JSON.
//
// A document's "structured_codes" object nests theme -> category -> list of
// first-order codes. Keys are written in display form ("C01 工作挑战") and
// in tree order. On read, keys and content may or may not carry identifier
// prefixes, and a first-order code may be a bare string instead of an
// object; both are normalized to clean names with identifiers.
package codefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
)

// Metadata describes where a document came from.
type Metadata struct {
	SavedAt     time.Time        `json:"saved_at"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Counts      model.CodeCounts `json:"counts"`
}

// Document is a decoded structured-code file.
type Document struct {
	Tree     *codetree.Tree
	Metadata Metadata
}

type rawDocument struct {
	StructuredCodes json.RawMessage   `json:"structured_codes"`
	Unclassified    []model.CodeEntry `json:"unclassified_codes"`
	Metadata        Metadata          `json:"metadata"`
}

var displayKey = regexp.MustCompile(`^([A-Z]\d+)\s*(\D.*)$`)

// splitKey separates an identifier prefix such as "C01 " or "C01" from a
// name. Without an identifier the name is cleaned like any stored name; a
// key that cleans to nothing is kept whole.
func splitKey(key string) (id, name string) {
	key = strings.TrimSpace(key)
	if m := displayKey.FindStringSubmatch(key); m != nil {
		if name := strings.TrimSpace(m[2]); name != "" {
			return m[1], name
		}
	}
	if name := codetree.CleanName(key); name != "" {
		return "", name
	}
	return "", key
}

func normalizeEntry(e model.CodeEntry) model.CodeEntry {
	id, content := splitKey(e.Content)
	if id != "" && model.LevelOf(id) == model.LevelFirst {
		if e.CodeID == "" {
			e.CodeID = id
		}
		e.Content = content
	} else {
		e.Content = codetree.CleanContent(e.Content)
	}
	return e
}

// Decode parses a structured-code document.
func Decode(data []byte, limits codetree.Limits) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidFormat, err)
	}
	if len(raw.StructuredCodes) == 0 || bytes.Equal(raw.StructuredCodes, []byte("null")) {
		return nil, fmt.Errorf("%w: missing structured_codes", common.ErrInvalidFormat)
	}

	themes, err := decodeObject(raw.StructuredCodes)
	if err != nil {
		return nil, fmt.Errorf("%w: structured_codes: %w", common.ErrInvalidFormat, err)
	}

	var snap codetree.Snapshot
	for _, theme := range themes {
		id, name := splitKey(theme.key)
		ts := codetree.ThemeSnapshot{Name: name, CodeID: id}

		cats, err := decodeObject(theme.value)
		if err != nil {
			return nil, fmt.Errorf("%w: theme %q: %w", common.ErrInvalidFormat, theme.key, err)
		}
		for _, cat := range cats {
			catID, catName := splitKey(cat.key)
			var entries []model.CodeEntry
			if err := json.Unmarshal(cat.value, &entries); err != nil {
				return nil, fmt.Errorf("%w: category %q: %w", common.ErrInvalidFormat, cat.key, err)
			}
			for i := range entries {
				entries[i] = normalizeEntry(entries[i])
			}
			ts.Categories = append(ts.Categories, codetree.CategorySnapshot{
				Name:    catName,
				CodeID:  catID,
				Entries: entries,
			})
		}
		snap.Themes = append(snap.Themes, ts)
	}
	for _, e := range raw.Unclassified {
		snap.Unclassified = append(snap.Unclassified, normalizeEntry(e))
	}

	return &Document{
		Tree:     codetree.Rebuild(snap, limits),
		Metadata: raw.Metadata,
	}, nil
}

// Encode writes a document with keys in tree order. Counts in the metadata
// are recomputed from the tree.
func Encode(doc *Document) ([]byte, error) {
	snap := doc.Tree.Snapshot()

	themes := make(orderedObject, 0, len(snap.Themes))
	for _, ts := range snap.Themes {
		cats := make(orderedObject, 0, len(ts.Categories))
		for _, cs := range ts.Categories {
			cats = append(cats, member{
				key:   codetree.Display(cs.CodeID, cs.Name),
				value: entriesOrEmpty(cs.Entries),
			})
		}
		themes = append(themes, member{key: codetree.Display(ts.CodeID, ts.Name), value: cats})
	}

	meta := doc.Metadata
	meta.Counts = doc.Tree.CountCodes()

	root := orderedObject{
		{key: "structured_codes", value: themes},
		{key: "unclassified_codes", value: entriesOrEmpty(snap.Unclassified)},
		{key: "metadata", value: meta},
	}
	return indent(root)
}

func entriesOrEmpty(entries []model.CodeEntry) []model.CodeEntry {
	if entries == nil {
		return []model.CodeEntry{}
	}
	for i := range entries {
		if entries[i].SentenceDetails == nil {
			entries[i].SentenceDetails = []model.SentenceRecord{}
		}
	}
	return entries
}

// Load reads a document from path.
func Load(path string, limits codetree.Limits) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Decode(data, limits)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// Save writes doc to path, creating parent directories.
func Save(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// DecodeRecord parses a modification record. Display prefixes on names and
// content are removed so the record lines up with a tree's stored names.
func DecodeRecord(data []byte) (model.ModificationRecord, error) {
	var rec model.ModificationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("%w: %w", common.ErrInvalidFormat, err)
	}

	out := model.NewModificationRecord()
	out.Summary = rec.Summary
	out.HasChanges = rec.HasChanges
	for theme, cats := range rec.Added {
		out.Added[keyName(theme)] = normalizeCategories(cats)
	}
	for theme, cats := range rec.Deleted {
		out.Deleted[keyName(theme)] = normalizeCategories(cats)
	}
	for theme, change := range rec.Modified {
		norm := model.ThemeChange{
			Added:    normalizeCategories(change.Added),
			Deleted:  normalizeCategories(change.Deleted),
			Modified: make(map[string]model.CategoryChange, len(change.Modified)),
		}
		for cat, cc := range change.Modified {
			norm.Modified[keyName(cat)] = model.CategoryChange{
				Added:   normalizeEntries(cc.Added),
				Deleted: normalizeEntries(cc.Deleted),
			}
		}
		out.Modified[keyName(theme)] = norm
	}
	return out, nil
}

func keyName(key string) string {
	_, name := splitKey(key)
	return name
}

func normalizeCategories(cats model.CategoryEntries) model.CategoryEntries {
	out := make(model.CategoryEntries, len(cats))
	for name, entries := range cats {
		out[keyName(name)] = normalizeEntries(entries)
	}
	return out
}

func normalizeEntries(entries []model.CodeEntry) []model.CodeEntry {
	out := make([]model.CodeEntry, len(entries))
	for i, e := range entries {
		out[i] = normalizeEntry(e)
	}
	return out
}

// EncodeRecord writes a modification record. Map keys come out sorted.
func EncodeRecord(rec model.ModificationRecord) ([]byte, error) {
	return indent(rec)
}

// LoadRecord reads a modification record from path.
func LoadRecord(path string) (model.ModificationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ModificationRecord{}, fmt.Errorf("read %s: %w", path, err)
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		return rec, fmt.Errorf("load %s: %w", path, err)
	}
	return rec, nil
}

// SaveRecord writes rec to path, creating parent directories.
func SaveRecord(path string, rec model.ModificationRecord) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
