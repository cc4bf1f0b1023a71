// Package engine ties sentence numbering and the code tree into a coding
// session, and saves sessions as standard answers.
package engine

import (
	"fmt"
	"sort"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/marker"
	"github.com/Veraticus/groundwork/internal/numbering"
)

// Session owns the numbered transcripts and the code tree being built from
// them. It is not safe for concurrent use.
type Session struct {
	numberer *numbering.Numberer
	tree     *codetree.Tree
	numbered map[string]string
}

// NewSession creates a session over tree. A nil tree starts empty with
// default limits; a nil splitter uses the default segmenter.
func NewSession(tree *codetree.Tree, splitter numbering.Splitter) *Session {
	if tree == nil {
		tree = codetree.NewDefault()
	}
	return &Session{
		numberer: numbering.New(splitter),
		tree:     tree,
		numbered: make(map[string]string),
	}
}

// Tree returns the session's code tree.
func (s *Session) Tree() *codetree.Tree {
	return s.tree
}

// Numberer returns the session's sentence numberer.
func (s *Session) Numberer() *numbering.Numberer {
	return s.numberer
}

// LoadTexts numbers each file's text, continuing the session's id
// sequence. Files are numbered in filename order.
func (s *Session) LoadTexts(texts map[string]string) map[string]numbering.Result {
	results := s.numberer.BatchNumberTexts(texts)
	for file, result := range results {
		s.numbered[file] = result.Text
	}
	common.LogDebug("Loaded texts", common.Fields{
		"files":     len(texts),
		"sentences": s.numberer.Count(),
	})
	return results
}

// Files returns the names of loaded files, sorted.
func (s *Session) Files() []string {
	files := make([]string, 0, len(s.numbered))
	for f := range s.numbered {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// NumberedText returns the numbered text of a loaded file.
func (s *Session) NumberedText(file string) (string, bool) {
	text, ok := s.numbered[file]
	return text, ok
}

// Markup returns a loaded file's numbered text with code markers inserted
// after every coded sentence.
func (s *Session) Markup(file string) (string, error) {
	text, ok := s.numbered[file]
	if !ok {
		return "", fmt.Errorf("%w: file %q", common.ErrNotFound, file)
	}
	return marker.Markup(text, s.tree), nil
}
