// Package checkpoints normalizes generated roadmap topics and derives a
// roadmap locally when no provider answers.
package checkpoints

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/repair"
)

var (
	titleKeys   = []string{"checkpoint", "topic", "title", "name", "heading"}
	orderKeys   = []string{"order", "index", "position", "step"}
	videoKeys   = []string{"videoUrl", "video_url", "video"}
	personaKeys = []string{"tutorPersona", "tutor_persona", "persona"}

	// WrapperKeys are the object fields that may hold a checkpoint array.
	WrapperKeys = []string{"checkpoints", "topics", "items", "data"}
)

// PlaceholderTitle is used when the corpus yields no usable line.
const PlaceholderTitle = "Key ideas from the materials"

const maxHeuristicTitle = 60

var letterRE = regexp.MustCompile(`\p{L}`)

func RepairOptions() repair.Options {
	return repair.Options{WrapperKeys: WrapperKeys}
}

// Normalize converts raw records into checkpoints. Items with an empty
// title are dropped, as are repeats of an earlier title. Order comes from
// an explicit numeric field, else the 1-based input position. The result
// is not re-sorted.
func Normalize(records []json.RawMessage) []study.Checkpoint {
	out := make([]study.Checkpoint, 0, len(records))
	seen := map[string]bool{}
	for i, rec := range records {
		cp, ok := decode(rec)
		if !ok {
			continue
		}
		key := strings.ToLower(cp.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		if cp.Order < 1 {
			cp.Order = i + 1
		}
		out = append(out, cp)
	}
	return out
}

// FromText repairs raw provider output and normalizes it.
func FromText(raw string) []study.Checkpoint {
	recs := repair.ToArray(raw, RepairOptions())
	if len(recs) == 0 {
		return nil
	}
	return Normalize(recs)
}

// decode reads one record. Order is left at 0 when no explicit field is set.
func decode(rec json.RawMessage) (study.Checkpoint, bool) {
	b := bytes.TrimSpace(rec)
	if len(b) == 0 {
		return study.Checkpoint{}, false
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return study.Checkpoint{}, false
		}
		t := cleanTitle(s)
		return study.Checkpoint{Title: t}, t != ""
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return study.Checkpoint{}, false
		}
		title := cleanTitle(firstString(obj, titleKeys))
		if title == "" {
			return study.Checkpoint{}, false
		}
		cp := study.Checkpoint{
			Title:        title,
			Order:        explicitOrder(obj),
			VideoURL:     firstString(obj, videoKeys),
			TutorPersona: firstString(obj, personaKeys),
			QuizItems:    quizItems(obj["quizItems"]),
		}
		if v, ok := obj["completed"]; ok {
			_ = json.Unmarshal(v, &cp.Completed)
		}
		return cp, true
	default:
		return study.Checkpoint{}, false
	}
}

func firstString(obj map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		var s string
		if v, ok := obj[k]; ok && json.Unmarshal(v, &s) == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// quizItems keeps the attached items that are already canonical.
func quizItems(raw json.RawMessage) []study.QuizItem {
	if len(raw) == 0 {
		return nil
	}
	var items []study.QuizItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]study.QuizItem, 0, len(items))
	for _, it := range items {
		if it.Valid() {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// explicitOrder returns the first numeric order field, or 0.
func explicitOrder(obj map[string]json.RawMessage) int {
	for _, k := range orderKeys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil && !math.IsNaN(f) && f == math.Trunc(f) {
			return int(f)
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n
			}
		}
	}
	return 0
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Heuristic picks up to count non-trivial corpus lines as checkpoints. It
// always returns at least one checkpoint.
func Heuristic(corpus string, count int) []study.Checkpoint {
	if count <= 0 {
		count = 1
	}
	var out []study.Checkpoint
	seen := map[string]bool{}
	for _, line := range strings.Split(corpus, "\n") {
		if len(out) >= count {
			break
		}
		line = cleanTitle(line)
		if len(line) <= 15 || !letterRE.MatchString(line) {
			continue
		}
		line = truncateRunes(line, maxHeuristicTitle)
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, study.Checkpoint{Title: line, Order: len(out) + 1})
	}
	if len(out) == 0 {
		out = append(out, study.Checkpoint{Title: PlaceholderTitle, Order: 1})
	}
	return out
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimRightFunc(string(r[:max]), unicode.IsSpace)
}
