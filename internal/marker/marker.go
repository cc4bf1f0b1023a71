// Package marker renders code identifiers into numbered transcript text so
// a reader can see which sentences carry which first-order codes.
package marker

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/segment"
)

var (
	codeMarker     = regexp.MustCompile(`[ \t]*\[[A-Z]\d+\]`)
	anyMarker      = regexp.MustCompile(`\s*\[(?:\d+|[A-Z]\d+)\]`)
	leadingNumber  = regexp.MustCompile(`^[ \t]*\[\d+\]`)
	leadingCodeRun = regexp.MustCompile(`^(?:[ \t]*\[[A-Z]\d+\])+`)
	codeInRun      = regexp.MustCompile(`\[([A-Z]\d+)\]`)
)

// StripMarkers removes code markers such as "[A01]" and keeps sentence
// numbers.
func StripMarkers(text string) string {
	return codeMarker.ReplaceAllString(text, "")
}

// CleanSentence removes every sentence-number and code marker.
func CleanSentence(text string) string {
	return strings.TrimSpace(anyMarker.ReplaceAllString(text, ""))
}

type target struct {
	sentence string
	codeID   string
}

// Markup appends " [codeId]" after each coded sentence in numbered. The
// marker goes after the sentence's "[n]" number when there is one and
// directly after the sentence otherwise. Sentences are matched whole, the
// longest first, so a short sentence contained in a longer one is never
// marked inside it. Markers already present are not repeated.
func Markup(numbered string, tree *codetree.Tree) string {
	targets := collectTargets(tree)
	for _, tg := range targets {
		numbered = markSentence(numbered, tg)
	}
	return numbered
}

func collectTargets(tree *codetree.Tree) []target {
	seen := make(map[target]struct{})
	var targets []target
	for _, e := range tree.Entries() {
		if e.CodeID == "" || len(e.SentenceDetails) == 0 {
			continue
		}
		for _, d := range e.SentenceDetails {
			sentence := CleanSentence(d.Text)
			if sentence == "" {
				continue
			}
			tg := target{sentence: sentence, codeID: e.CodeID}
			if _, ok := seen[tg]; ok {
				continue
			}
			seen[tg] = struct{}{}
			targets = append(targets, tg)
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		li := utf8.RuneCountInString(targets[i].sentence)
		lj := utf8.RuneCountInString(targets[j].sentence)
		if li != lj {
			return li > lj
		}
		if targets[i].sentence != targets[j].sentence {
			return targets[i].sentence < targets[j].sentence
		}
		return targets[i].codeID < targets[j].codeID
	})
	return targets
}

func markSentence(text string, tg target) string {
	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(text[pos:], tg.sentence)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(tg.sentence)
		if !startsSentence(text, start) || !endsSentence(text, end, tg.sentence) {
			b.WriteString(text[pos:end])
			pos = end
			continue
		}

		insertAt := end
		if m := leadingNumber.FindString(text[insertAt:]); m != "" {
			insertAt += len(m)
		}
		run := leadingCodeRun.FindString(text[insertAt:])
		insertAt += len(run)

		b.WriteString(text[pos:insertAt])
		if !runHas(run, tg.codeID) {
			b.WriteString(" [")
			b.WriteString(tg.codeID)
			b.WriteString("]")
		}
		pos = insertAt
	}
	b.WriteString(text[pos:])
	return b.String()
}

func runHas(run, codeID string) bool {
	for _, m := range codeInRun.FindAllStringSubmatch(run, -1) {
		if m[1] == codeID {
			return true
		}
	}
	return false
}

// startsSentence reports whether a match at start begins a sentence: it
// sits at the start of the text or a line, or follows a marker or terminal
// punctuation, possibly with spaces between. A match after any other text
// is the tail of a longer sentence.
func startsSentence(text string, start int) bool {
	before := strings.TrimRight(text[:start], " \t")
	if before == "" {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(before)
	return prev == '\n' || prev == ']' || segment.IsTerminal(prev)
}

// endsSentence reports whether a match ending at end is not the head of a
// longer sentence.
func endsSentence(text string, end int, sentence string) bool {
	if end == len(text) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(sentence)
	if segment.IsTerminal(last) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		return !segment.IsTerminal(next)
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return unicode.IsSpace(next) || next == '['
}
