package quizgen

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yungbote/studypath/internal/modules/generation/repair"
)

// Accepted wire field names, in lookup priority order.
var (
	questionKeys = []string{"question", "q", "prompt", "text", "stem"}
	optionKeys   = []string{"options", "choices", "alternatives"}
	answerKeys   = []string{
		"answer", "correct", "solution", "correct_choice", "correctAnswer", "correct_answer",
		"answer_text", "answerValue", "correctIndex", "correct_index", "answerIndex", "answer_index",
	}
	letteredKeys = [][]string{
		{"optionA", "option_a", "A", "a"},
		{"optionB", "option_b", "B", "b"},
		{"optionC", "option_c", "C", "c"},
		{"optionD", "option_d", "D", "d"},
	}
	choiceTextKeys = []string{"text", "value", "label", "option", "choice", "answer"}
	choiceFlagKeys = []string{"is_correct", "isCorrect", "correct"}
)

type answerKind int

const (
	answerNone answerKind = iota
	answerIndex
	answerLetter
	answerLiteral
)

type answerRef struct {
	kind  answerKind
	index int
	text  string
}

// rawItem is the shape-independent result of decoding one wire record.
type rawItem struct {
	question string
	options  []string
	// flagged is the option carrying an embedded correctness flag, or -1.
	flagged int
	answer  answerRef
}

// decodeItem dispatches on the record's wire shape. It returns false for
// records that match none of the accepted shapes.
func decodeItem(msg json.RawMessage) (rawItem, bool) {
	b := bytes.TrimSpace(msg)
	if len(b) == 0 {
		return rawItem{}, false
	}
	switch b[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return rawItem{}, false
		}
		return decodeObject(obj)
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return rawItem{}, false
		}
		ft, ok := repair.ParseFreeTextQuiz(s)
		if !ok {
			return rawItem{}, false
		}
		return rawItem{
			question: ft.Question,
			options:  ft.Options,
			flagged:  -1,
			answer:   answerRef{kind: answerLiteral, text: ft.Answer},
		}, true
	default:
		return rawItem{}, false
	}
}

func decodeObject(obj map[string]json.RawMessage) (rawItem, bool) {
	it := rawItem{flagged: -1}
	it.question = firstString(obj, questionKeys)

	sawOptions := false
	for _, k := range optionKeys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if opts, flagged, ok := decodeOptionList(v); ok {
			it.options, it.flagged = opts, flagged
			sawOptions = true
			break
		}
	}
	if !sawOptions {
		if opts := decodeLettered(obj); len(opts) > 0 {
			it.options = opts
			sawOptions = true
		}
	}

	for _, k := range answerKeys {
		if v, ok := obj[k]; ok {
			if ref, ok := decodeAnswer(v); ok {
				it.answer = ref
				break
			}
		}
	}

	if !sawOptions && it.answer.kind != answerLiteral {
		return rawItem{}, false
	}
	return it, true
}

// decodeOptionList accepts ["a","b"] or [{"text":"a","is_correct":true}, ...].
func decodeOptionList(v json.RawMessage) ([]string, int, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(v, &elems); err != nil {
		return nil, -1, false
	}
	out := make([]string, 0, len(elems))
	flagged := -1
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) == 0 {
			continue
		}
		switch e[0] {
		case '{':
			var choice map[string]json.RawMessage
			if err := json.Unmarshal(e, &choice); err != nil {
				continue
			}
			text := firstString(choice, choiceTextKeys)
			if text == "" {
				continue
			}
			if flagged < 0 && firstBool(choice, choiceFlagKeys) {
				flagged = len(out)
			}
			out = append(out, text)
		default:
			if s, ok := scalarString(e); ok {
				out = append(out, s)
			}
		}
	}
	return out, flagged, true
}

func decodeLettered(obj map[string]json.RawMessage) []string {
	var out []string
	for _, keys := range letteredKeys {
		if s := firstString(obj, keys); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeAnswer(v json.RawMessage) (answerRef, bool) {
	b := bytes.TrimSpace(v)
	if len(b) == 0 || string(b) == "null" {
		return answerRef{}, false
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		return answerRef{kind: answerIndex, index: int(n)}, true
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return answerRef{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return answerRef{}, false
	}
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'D' {
		return answerRef{kind: answerLetter, index: int(s[0] - 'A'), text: s}, true
	}
	return answerRef{kind: answerLiteral, text: s}, true
}

func firstString(obj map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s, ok := scalarString(v); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstBool(obj map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			var b bool
			if err := json.Unmarshal(v, &b); err == nil {
				return b
			}
		}
	}
	return false
}

// scalarString renders strings and numbers as trimmed text.
func scalarString(v json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), true
	}
	return "", false
}

// LooksLikeQuizObject is used to promote a lone object to a one-item array.
func LooksLikeQuizObject(obj map[string]json.RawMessage) bool {
	if firstString(obj, questionKeys) == "" {
		return false
	}
	for _, k := range optionKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return len(decodeLettered(obj)) > 0
}
