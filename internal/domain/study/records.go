package study

import (
	"sort"
	"strings"
)

// QuizOptionCount is the fixed number of choices on every QuizItem.
const QuizOptionCount = 4

type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Valid reports whether q satisfies the canonical shape.
func (q QuizItem) Valid() bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Options) != QuizOptionCount {
		return false
	}
	seen := map[string]bool{}
	hasAnswer := false
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" || seen[o] {
			return false
		}
		seen[o] = true
		if o == q.Answer {
			hasAnswer = true
		}
	}
	return hasAnswer
}

func (q QuizItem) Clone() QuizItem {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func CloneQuiz(items []QuizItem) []QuizItem {
	if items == nil {
		return nil
	}
	out := make([]QuizItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

type Checkpoint struct {
	Title        string     `json:"title"`
	Order        int        `json:"order"`
	VideoURL     string     `json:"videoUrl,omitempty"`
	TutorPersona string     `json:"tutorPersona,omitempty"`
	QuizItems    []QuizItem `json:"quizItems,omitempty"`
	Completed    bool       `json:"completed"`
}

func (c Checkpoint) Clone() Checkpoint {
	c.QuizItems = CloneQuiz(c.QuizItems)
	return c
}

func CloneCheckpoints(cps []Checkpoint) []Checkpoint {
	if cps == nil {
		return nil
	}
	out := make([]Checkpoint, len(cps))
	for i, c := range cps {
		out[i] = c.Clone()
	}
	return out
}

// SortByOrder returns a copy ordered by Order; ties keep input precedence.
func SortByOrder(cps []Checkpoint) []Checkpoint {
	out := CloneCheckpoints(cps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// CheckpointPatch is a shallow update applied to one checkpoint, located by title.
type CheckpointPatch struct {
	VideoURL     *string
	TutorPersona *string
	QuizItems    []QuizItem
	Completed    *bool
}

func (p CheckpointPatch) Apply(c Checkpoint) Checkpoint {
	c = c.Clone()
	if p.VideoURL != nil {
		c.VideoURL = *p.VideoURL
	}
	if p.TutorPersona != nil {
		c.TutorPersona = *p.TutorPersona
	}
	if p.QuizItems != nil {
		c.QuizItems = CloneQuiz(p.QuizItems)
	}
	if p.Completed != nil {
		c.Completed = *p.Completed
	}
	return c
}
