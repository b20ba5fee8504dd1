// Package quizgen turns loosely shaped quiz records into canonical
// four-option QuizItems and builds quizzes locally when no provider can.
package quizgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/repair"
)

const (
	GenericStem = "Select the correct answer based on the materials."
	NoneOfAbove = "None of the above"
)

// fillers pad option lists once corpus distractors run out.
var fillers = []string{NoneOfAbove, "All of the above", "Cannot be determined from the materials"}

// WrapperKeys are the object fields that may hold a quiz array.
var WrapperKeys = []string{"questions", "items", "data", "quiz"}

// RepairOptions is the repair configuration for quiz responses.
func RepairOptions() repair.Options {
	return repair.Options{
		WrapperKeys: WrapperKeys,
		BruteForce:  true,
		WrapSingle:  LooksLikeQuizObject,
	}
}

// Normalize converts raw records into canonical QuizItems, dropping any
// record that cannot be salvaged. corpus feeds distractor synthesis and
// may be empty.
func Normalize(records []json.RawMessage, corpus string) []study.QuizItem {
	var pool *distractorPool
	out := make([]study.QuizItem, 0, len(records))
	for _, rec := range records {
		raw, ok := decodeItem(rec)
		if !ok {
			continue
		}
		if pool == nil {
			pool = newDistractorPool(corpus)
		}
		if item, ok := canonicalize(raw, pool); ok {
			out = append(out, item)
		}
	}
	return out
}

// FromText runs the repair layer and, failing that, the free-text parser.
func FromText(raw, corpus string) []study.QuizItem {
	if recs := repair.ToArray(raw, RepairOptions()); len(recs) > 0 {
		if items := Normalize(recs, corpus); len(items) > 0 {
			return items
		}
	}
	if ft, ok := repair.ParseFreeTextQuiz(raw); ok {
		return Normalize([]json.RawMessage{ft.Record()}, corpus)
	}
	return nil
}

func canonicalize(raw rawItem, pool *distractorPool) (study.QuizItem, bool) {
	question := strings.TrimSpace(raw.question)
	if question == "" {
		question = GenericStem
	}

	opts, remap := dedupe(raw.options)
	flagged := -1
	if raw.flagged >= 0 {
		flagged = remap[raw.flagged]
	}

	literal := ""
	if raw.answer.kind == answerLiteral {
		literal = strings.TrimSpace(raw.answer.text)
	}
	if len(opts) == 0 {
		if literal == "" {
			return study.QuizItem{}, false
		}
		opts = []string{literal}
	}

	if len(opts) < 2 {
		exclude := append([]string{literal}, opts...)
		for _, d := range pool.take(2, exclude) {
			opts = append(opts, d)
		}
		if len(opts) < 2 && !containsFold(opts, NoneOfAbove) {
			opts = append(opts, NoneOfAbove)
		}
	}

	answer := resolveAnswer(opts, flagged, raw.answer)
	if !contains(opts, answer) {
		answer = opts[0]
	}

	return study.QuizItem{Question: question, Options: fitToFour(opts, answer, pool), Answer: answer}, true
}

func resolveAnswer(opts []string, flagged int, ref answerRef) string {
	if flagged >= 0 && flagged < len(opts) {
		return opts[flagged]
	}
	switch ref.kind {
	case answerLetter:
		// A bare letter that is itself an option names that option.
		if contains(opts, ref.text) {
			return ref.text
		}
		return optionAt(opts, ref.index)
	case answerIndex:
		return optionAt(opts, ref.index)
	case answerLiteral:
		for _, o := range opts {
			if o == ref.text {
				return o
			}
		}
		for _, o := range opts {
			if strings.EqualFold(o, ref.text) {
				return o
			}
		}
		return ref.text
	default:
		return opts[0]
	}
}

func optionAt(opts []string, i int) string {
	if i < 0 {
		i = 0
	}
	if i >= len(opts) {
		i = len(opts) - 1
	}
	return opts[i]
}

// fitToFour pads or truncates opts to exactly four, keeping answer.
func fitToFour(opts []string, answer string, pool *distractorPool) []string {
	out := append([]string(nil), opts...)
	if len(out) > study.QuizOptionCount {
		kept := make([]string, 0, study.QuizOptionCount)
		room := study.QuizOptionCount - 1
		for _, o := range out {
			if o == answer {
				kept = append(kept, o)
				continue
			}
			if room > 0 {
				kept = append(kept, o)
				room--
			}
		}
		return kept
	}
	if len(out) < study.QuizOptionCount {
		out = append(out, pool.take(study.QuizOptionCount-len(out), append([]string{answer}, out...))...)
	}
	for _, f := range fillers {
		if len(out) >= study.QuizOptionCount {
			break
		}
		if !containsFold(out, f) {
			out = append(out, f)
		}
	}
	for n := 1; len(out) < study.QuizOptionCount; n++ {
		if f := fmt.Sprintf("Option %d", n); !containsFold(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// dedupe drops blanks and exact duplicates, returning a map from old to
// new index so embedded correctness flags survive.
func dedupe(in []string) ([]string, map[int]int) {
	out := make([]string, 0, len(in))
	remap := make(map[int]int, len(in))
	seen := map[string]int{}
	for i, o := range in {
		o = strings.TrimSpace(o)
		if o == "" {
			remap[i] = -1
			continue
		}
		if j, ok := seen[o]; ok {
			remap[i] = j
			continue
		}
		seen[o] = len(out)
		remap[i] = len(out)
		out = append(out, o)
	}
	return out, remap
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
