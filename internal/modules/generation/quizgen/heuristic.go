package quizgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/studypath/internal/domain/study"
)

const (
	definitionStem = "Which description best matches %s?"
	statementStem  = "Which statement is true based on the materials?"
	miniQuizStem   = "Which statement best describes %s?"
	maxDefinition  = 160
)

var (
	sentenceSplitRE = regexp.MustCompile(`[.!?\n]+`)
	definitionRE    = regexp.MustCompile(`(?i)^(.{2,80}?)\s+(is|are|refers to|means|denotes)\s+(.{10,})$`)

	definitionFillers = []string{
		"A commonly mistaken but incorrect description.",
		"An unrelated idea from a different topic.",
		NoneOfAbove,
	}
	statementFillers = []string{NoneOfAbove, "All of the above", "Cannot be determined from the materials"}

	negations = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\bis\b`), "is not"},
		{regexp.MustCompile(`\bare\b`), "are not"},
		{regexp.MustCompile(`\b(can|may)\b`), "cannot"},
		{regexp.MustCompile(`\b(contains|includes)\b`), "excludes"},
		{regexp.MustCompile(`\bwill\b`), "will not"},
		{regexp.MustCompile(`\balways\b`), "never"},
	}
)

type definition struct {
	term string
	text string
}

// Heuristic builds up to n quiz items from corpus without any provider.
// Definitional sentences become "which description matches" questions;
// otherwise negated statements serve as distractors. It always returns
// at least one valid item.
func Heuristic(corpus string, n int) []study.QuizItem {
	if n <= 0 {
		n = 1
	}
	sentences := candidateSentences(corpus)
	if defs := definitions(sentences); len(defs) > 0 {
		return fromDefinitions(defs, n)
	}
	if items := fromStatements(sentences, n); len(items) > 0 {
		return items
	}
	return []study.QuizItem{{
		Question: statementStem,
		Options: []string{
			"The materials did not contain enough text to build a question.",
			statementFillers[0], statementFillers[1], statementFillers[2],
		},
		Answer: "The materials did not contain enough text to build a question.",
	}}
}

// MiniQuizFallback is the single templated item used when a topic quiz
// cannot be generated.
func MiniQuizFallback(topic string) []study.QuizItem {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "this topic"
	}
	answer := "A fundamental idea of " + topic
	return []study.QuizItem{{
		Question: fmt.Sprintf(miniQuizStem, topic),
		Options:  []string{answer, "An unrelated historical event", "A random number", NoneOfAbove},
		Answer:   answer,
	}}
}

func candidateSentences(corpus string) []string {
	var out []string
	for _, s := range sentenceSplitRE.Split(corpus, -1) {
		s = strings.Join(strings.Fields(s), " ")
		if len(s) > 20 {
			out = append(out, s)
		}
	}
	return out
}

func definitions(sentences []string) []definition {
	seen := map[string]bool{}
	var out []definition
	for _, s := range sentences {
		m := definitionRE.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		term := strings.TrimSpace(m[1])
		key := strings.ToLower(term)
		if term == "" || seen[key] {
			continue
		}
		text := strings.TrimSpace(m[3])
		if r := []rune(text); len(r) > maxDefinition {
			text = strings.TrimSpace(string(r[:maxDefinition]))
		}
		seen[key] = true
		out = append(out, definition{term: term, text: text})
	}
	return out
}

func fromDefinitions(defs []definition, n int) []study.QuizItem {
	var out []study.QuizItem
	for i, d := range defs {
		if len(out) >= n {
			break
		}
		wrong := make([]string, 0, 3)
		for j := 1; j < len(defs) && len(wrong) < 3; j++ {
			other := defs[(i+j)%len(defs)].text
			if other != d.text && !contains(wrong, other) {
				wrong = append(wrong, other)
			}
		}
		for _, f := range definitionFillers {
			if len(wrong) >= 3 {
				break
			}
			if !contains(wrong, f) && f != d.text {
				wrong = append(wrong, f)
			}
		}
		out = append(out, study.QuizItem{
			Question: fmt.Sprintf(definitionStem, d.term),
			Options:  placeAnswer(d.text, wrong, i),
			Answer:   d.text,
		})
	}
	return out
}

func fromStatements(sentences []string, n int) []study.QuizItem {
	var out []study.QuizItem
	for i, s := range sentences {
		if len(out) >= n {
			break
		}
		wrong := make([]string, 0, 3)
		for _, neg := range negations {
			if len(wrong) >= 3 {
				break
			}
			if !neg.re.MatchString(s) {
				continue
			}
			v := replaceFirst(neg.re, s, neg.repl)
			if v != s && !contains(wrong, v) {
				wrong = append(wrong, v)
			}
		}
		for _, f := range statementFillers {
			if len(wrong) >= 3 {
				break
			}
			if !contains(wrong, f) {
				wrong = append(wrong, f)
			}
		}
		out = append(out, study.QuizItem{
			Question: statementStem,
			Options:  placeAnswer(s, wrong, i),
			Answer:   s,
		})
	}
	return out
}

// placeAnswer rotates the correct option through the four slots.
func placeAnswer(answer string, wrong []string, i int) []string {
	pos := i % study.QuizOptionCount
	if pos > len(wrong) {
		pos = len(wrong)
	}
	out := make([]string, 0, study.QuizOptionCount)
	out = append(out, wrong[:pos]...)
	out = append(out, answer)
	out = append(out, wrong[pos:]...)
	return out
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
