// Package segment splits raw transcript text into sentence-like units.
//
// A sentence ends at one of the terminal marks 。！？!? (a run of them stays
// attached to the fragment it closes) or at a newline. Runs of horizontal
// whitespace collapse to a single space before splitting. Trailing text
// without a terminal mark is still emitted as its own sentence. Fragments
// shorter than the configured minimum, counted in runes after trimming,
// are dropped.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/groundwork/internal/config"
)

var (
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	lineBreaks      = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Segmenter splits text into sentences. The zero value keeps every
// non-empty fragment.
type Segmenter struct {
	MinLength int
}

// New creates a segmenter that drops fragments shorter than minLength runes.
func New(minLength int) *Segmenter {
	if minLength < 0 {
		minLength = 0
	}
	return &Segmenter{MinLength: minLength}
}

// Default creates a segmenter using the default minimum sentence length.
func Default() *Segmenter {
	return New(config.DefaultMinSentenceLength)
}

// IsTerminal reports whether r ends a sentence.
func IsTerminal(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?':
		return true
	}
	return false
}

// Normalize unifies line endings and collapses horizontal whitespace.
func Normalize(text string) string {
	text = lineBreaks.Replace(text)
	return horizontalSpace.ReplaceAllString(text, " ")
}

// Segment splits text into trimmed sentences in input order.
func (s *Segmenter) Segment(text string) []string {
	runes := []rune(Normalize(text))

	var (
		sentences []string
		current   strings.Builder
	)

	flush := func() {
		fragment := strings.TrimSpace(current.String())
		current.Reset()
		if fragment == "" || utf8.RuneCountInString(fragment) < s.MinLength {
			return
		}
		sentences = append(sentences, fragment)
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush()
			continue
		}

		current.WriteRune(r)
		if !IsTerminal(r) {
			continue
		}

		// Keep runs such as "？！" on the sentence they close.
		for i+1 < len(runes) && IsTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		flush()
	}
	flush()

	return sentences
}
