package repair

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// FreeTextQuiz is a single quiz item recovered from a plain-text list.
type FreeTextQuiz struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

var (
	optionLineRE  = regexp.MustCompile(`^\(?([A-Da-d]|[1-4])\s*[\.\):]\s*(.+)$`)
	answerLineRE  = regexp.MustCompile(`(?i)^\**\s*(?:correct\s+answer|answer|correct)\s*\**\s*[:\-]\s*(.+)$`)
	correctMarkRE = regexp.MustCompile(`(?i)\s*[\(\[]\s*correct\s*[\)\]]\s*`)
	questionTagRE = regexp.MustCompile(`(?i)^(?:q(?:uestion)?\s*\d*\s*[:\.\)]|\d+\s*[\.\)])\s*`)
)

// ParseFreeTextQuiz reads a question followed by A-D or 1-4 option lines.
// The answer comes from an "Answer: X" line, else a "(correct)" marker,
// else the first option.
func ParseFreeTextQuiz(raw string) (FreeTextQuiz, bool) {
	lines := strings.Split(strings.ReplaceAll(StripFences(raw), "\r\n", "\n"), "\n")

	var (
		stem      []string
		options   []string
		marked    = -1
		answerRaw string
		inOptions bool
	)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := answerLineRE.FindStringSubmatch(line); m != nil {
			answerRaw = strings.TrimSpace(m[1])
			continue
		}
		if m := optionLineRE.FindStringSubmatch(line); m != nil && (inOptions || len(stem) > 0 || !isLeadingNumber(m[1])) {
			text := m[2]
			if correctMarkRE.MatchString(text) {
				text = correctMarkRE.ReplaceAllString(text, " ")
				if marked < 0 {
					marked = len(options)
				}
			}
			if text = strings.TrimSpace(text); text != "" {
				options = append(options, text)
				inOptions = true
			}
			continue
		}
		if !inOptions {
			stem = append(stem, line)
		}
	}
	if len(options) < 2 {
		return FreeTextQuiz{}, false
	}

	q := FreeTextQuiz{
		Question: strings.TrimSpace(questionTagRE.ReplaceAllString(strings.Join(stem, " "), "")),
		Options:  options,
	}
	switch {
	case answerRaw != "":
		q.Answer = resolveAnswer(answerRaw, options)
	case marked >= 0:
		q.Answer = options[marked]
	}
	if q.Answer == "" {
		q.Answer = options[0]
	}
	return q, true
}

// Record encodes q so it can flow through the regular quiz normalizer.
func (q FreeTextQuiz) Record() json.RawMessage {
	b, _ := json.Marshal(q)
	return b
}

// a line like "1. What is X?" before any stem is the question, not an option.
func isLeadingNumber(marker string) bool {
	_, err := strconv.Atoi(marker)
	return err == nil
}

func resolveAnswer(raw string, options []string) string {
	raw = strings.TrimSpace(strings.Trim(raw, "*"))
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	head := strings.Trim(fields[0], "().:")
	if len(head) == 1 {
		c := strings.ToUpper(head)[0]
		switch {
		case c >= 'A' && c <= 'D':
			if i := int(c - 'A'); i < len(options) {
				return options[i]
			}
		case c >= '1' && c <= '4':
			if i := int(c - '1'); i < len(options) {
				return options[i]
			}
		}
	}
	if m := optionLineRE.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[2])
	}
	for _, o := range options {
		if strings.EqualFold(o, raw) {
			return o
		}
	}
	return ""
}
