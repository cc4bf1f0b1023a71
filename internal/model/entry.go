package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CodeEntry is the serialized form of a first-order code. Legacy files store
// a first-order code as a bare string; UnmarshalJSON accepts both shapes so
// nothing past the decoding boundary has to care.
type CodeEntry struct {
	Content         string           `json:"content"`
	CodeID          string           `json:"code_id,omitempty"`
	SentenceDetails []SentenceRecord `json:"sentence_details"`
	SentenceCount   int              `json:"sentence_count"`
}

type codeEntryJSON CodeEntry

// UnmarshalJSON decodes either a plain string or an entry object.
func (e *CodeEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var content string
		if err := json.Unmarshal(data, &content); err != nil {
			return err
		}
		*e = CodeEntry{Content: content, SentenceCount: 1}
		return nil
	}

	var raw codeEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode code entry: %w", err)
	}
	*e = CodeEntry(raw)
	if e.SentenceCount < 1 {
		e.SentenceCount = max(len(e.SentenceDetails), 1)
	}
	return nil
}

type sentenceRecordJSON struct {
	Text       *string `json:"text"`
	Content    *string `json:"content"`
	FilePath   string  `json:"file_path"`
	SentenceID any     `json:"sentence_id"`
}

// UnmarshalJSON accepts "content" as an alias for "text" and sentence ids
// written either as numbers or as numeric strings.
func (r *SentenceRecord) UnmarshalJSON(data []byte) error {
	var raw sentenceRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode sentence detail: %w", err)
	}

	*r = SentenceRecord{FilePath: raw.FilePath}
	switch {
	case raw.Text != nil:
		r.Text = *raw.Text
	case raw.Content != nil:
		r.Text = *raw.Content
	}

	switch v := raw.SentenceID.(type) {
	case float64:
		r.SentenceID = int(v)
	case string:
		if v != "" {
			if _, err := fmt.Sscanf(v, "%d", &r.SentenceID); err != nil {
				return fmt.Errorf("decode sentence id %q: %w", v, err)
			}
		}
	}
	return nil
}

// CategoryEntries maps a second-order category name to its first-order codes.
type CategoryEntries map[string][]CodeEntry

// ThemeEntries maps a third-order theme name to its categories. It is the
// shape of the "structured_codes" field.
type ThemeEntries map[string]CategoryEntries

// CountFirstOrder returns the number of first-order entries nested below.
func (t ThemeEntries) CountFirstOrder() int {
	total := 0
	for _, cats := range t {
		total += cats.CountFirstOrder()
	}
	return total
}

// CountFirstOrder returns the number of first-order entries nested below.
func (c CategoryEntries) CountFirstOrder() int {
	total := 0
	for _, entries := range c {
		total += len(entries)
	}
	return total
}
