// Package model defines the core domain models used throughout the application.
package model

// Sentence is a numbered span of transcript text.
type Sentence struct {
	Text       string
	SourceFile string
	ID         int
}

// SentenceRecord is a reference from a first-order code back to the sentence
// it was coded from. It is the persisted form of a Sentence.
type SentenceRecord struct {
	Text       string `json:"text"`
	FilePath   string `json:"file_path"`
	SentenceID int    `json:"sentence_id"`
}

// Record converts a sentence into the form stored on code entries.
func (s Sentence) Record() SentenceRecord {
	return SentenceRecord{
		Text:       s.Text,
		FilePath:   s.SourceFile,
		SentenceID: s.ID,
	}
}
