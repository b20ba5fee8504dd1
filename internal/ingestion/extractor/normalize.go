package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var markupTagRE = regexp.MustCompile(`<[^>]+>`)

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeUTF8(s string) string {
	if s == "" || utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, " ")
}

// stripMarkup drops every tag and collapses what is left.
func stripMarkup(xml string) string {
	return collapseWhitespace(markupTagRE.ReplaceAllString(xml, " "))
}

// joinLines trims each line, drops blanks and joins with newlines.
func joinLines(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
