// Package numbering assigns globally unique, monotonically increasing ids to
// segmented sentences and keeps the id, text and file indexes used for
// navigation.
package numbering

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/segment"
)

// DefaultFile is the placeholder filename that never gets a per-file index.
const DefaultFile = "default"

// Splitter turns raw text into sentences.
type Splitter interface {
	Segment(text string) []string
}

// Result is the outcome of numbering one text.
type Result struct {
	Mapping map[int]string
	Text    string
}

// Numberer owns the sentence counter for one coding session. It is not safe
// for concurrent use.
type Numberer struct {
	splitter   Splitter
	byNumber   map[int]string
	bySentence map[string]int
	byFile     map[string][]model.Sentence
	fileOf     map[int]string
	next       int
}

// New creates a numberer that segments text with splitter. A nil splitter
// falls back to the default segmenter.
func New(splitter Splitter) *Numberer {
	if splitter == nil {
		splitter = segment.Default()
	}
	n := &Numberer{splitter: splitter}
	n.Reset()
	return n
}

// Reset clears every index and restarts numbering at 1.
func (n *Numberer) Reset() {
	n.byNumber = make(map[int]string)
	n.bySentence = make(map[string]int)
	n.byFile = make(map[string][]model.Sentence)
	n.fileOf = make(map[int]string)
	n.next = 1
}

// NumberText segments text and numbers every sentence, continuing from the
// previous call. Each output line is the sentence followed by " [id]".
func (n *Numberer) NumberText(text, filename string) (string, map[int]string) {
	mapping := make(map[int]string)
	if strings.TrimSpace(text) == "" {
		return "", mapping
	}

	sentences := n.splitter.Segment(text)
	lines := make([]string, 0, len(sentences))
	track := filename != "" && filename != DefaultFile

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		id := n.next
		n.next++

		lines = append(lines, fmt.Sprintf("%s [%d]", sentence, id))
		mapping[id] = sentence
		n.byNumber[id] = sentence
		if _, seen := n.bySentence[sentence]; !seen {
			n.bySentence[sentence] = id
		}
		if track {
			n.byFile[filename] = append(n.byFile[filename], model.Sentence{
				ID:         id,
				Text:       sentence,
				SourceFile: filename,
			})
			n.fileOf[id] = filename
		}
	}

	return strings.Join(lines, "\n"), mapping
}

// SentenceByNumber returns the sentence numbered id, or "" if none.
func (n *Numberer) SentenceByNumber(id int) string {
	return n.byNumber[id]
}

// NumberBySentence returns the first id assigned to exactly this text, or 0.
func (n *Numberer) NumberBySentence(text string) int {
	return n.bySentence[strings.TrimSpace(text)]
}

// FileSentences returns the sentences numbered for filename in id order.
func (n *Numberer) FileSentences(filename string) []model.Sentence {
	sentences := n.byFile[filename]
	out := make([]model.Sentence, len(sentences))
	copy(out, sentences)
	return out
}

// Files returns every filename with recorded sentences, sorted.
func (n *Numberer) Files() []string {
	files := make([]string, 0, len(n.byFile))
	for f := range n.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Sentence returns the sentence numbered id with its source file.
func (n *Numberer) Sentence(id int) (model.Sentence, bool) {
	text, ok := n.byNumber[id]
	if !ok {
		return model.Sentence{}, false
	}
	return model.Sentence{ID: id, Text: text, SourceFile: n.fileOf[id]}, true
}

// Sentences returns every numbered sentence in id order.
func (n *Numberer) Sentences() []model.Sentence {
	out := make([]model.Sentence, 0, len(n.byNumber))
	for id := 1; id < n.next; id++ {
		if s, ok := n.Sentence(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// Count returns how many sentences have been numbered since the last reset.
func (n *Numberer) Count() int {
	return n.next - 1
}

// BatchNumberTexts numbers several files in filename order so ids are
// reproducible. A failing file is logged and returned unnumbered with an
// empty mapping; the other files are unaffected.
func (n *Numberer) BatchNumberTexts(texts map[string]string) map[string]Result {
	filenames := make([]string, 0, len(texts))
	for f := range texts {
		filenames = append(filenames, f)
	}
	sort.Strings(filenames)

	results := make(map[string]Result, len(texts))
	for _, filename := range filenames {
		text := texts[filename]
		numbered, mapping, err := n.numberSafely(text, filename)
		if err != nil {
			common.LogError(err, "failed to number file", common.Fields{"file": filename})
			results[filename] = Result{Text: text, Mapping: map[int]string{}}
			continue
		}
		results[filename] = Result{Text: numbered, Mapping: mapping}
	}
	return results
}

func (n *Numberer) numberSafely(text, filename string) (numbered string, mapping map[int]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("numbering %s: %v", filename, r)
		}
	}()
	numbered, mapping = n.NumberText(text, filename)
	return numbered, mapping, nil
}

var numberedLine = regexp.MustCompile(`^(.*?)\s*\[(\d+)\]((?:\s*\[[A-Z]\d+\])*)\s*$`)

// ParseNumbered recovers sentences from numbered text. Lines without a
// sentence marker are skipped; trailing code markers are ignored.
func ParseNumbered(numbered string) []model.Sentence {
	var sentences []model.Sentence
	for _, line := range strings.Split(numbered, "\n") {
		m := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		sentences = append(sentences, model.Sentence{ID: id, Text: m[1]})
	}
	return sentences
}
