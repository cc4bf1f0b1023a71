package codetree

import (
	"regexp"
	"strings"
)

var (
	namePrefix    = regexp.MustCompile(`^[A-Z]\d*\s*`)
	contentPrefix = regexp.MustCompile(`^[A-Z]\d+\s*`)
)

// CleanName strips a display prefix such as "C01 " or "B " from a category
// or theme name.
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimSpace(namePrefix.ReplaceAllString(name, ""))
}

// CleanContent strips an identifier prefix such as "A12 " from first-order
// content. A lone capital letter is kept, since content may start with one.
func CleanContent(content string) string {
	content = strings.TrimSpace(content)
	return strings.TrimSpace(contentPrefix.ReplaceAllString(content, ""))
}

// Display renders a stored name or content with its identifier prefix.
func Display(codeID, text string) string {
	if codeID == "" {
		return text
	}
	return codeID + " " + text
}
