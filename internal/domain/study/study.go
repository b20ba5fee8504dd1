package study

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a study.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ProgressAfterGeneration is where a study lands once its quiz and roadmap exist.
const ProgressAfterGeneration = 25

// Study is the top-level unit of learner progress.
type Study struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Status              Status    `json:"status"`
	Progress            int       `json:"progress"`
	CreatedAt           time.Time `json:"createdAt"`
	AssessmentCompleted bool      `json:"assessmentCompleted"`
	LastCheckpointTitle string    `json:"lastCheckpointTitle,omitempty"`
}

// Patch is a shallow update to a Study; nil fields are left alone.
type Patch struct {
	Name                *string
	Status              *Status
	Progress            *int
	AssessmentCompleted *bool
	LastCheckpointTitle *string
}

// Apply returns s with p merged in. Progress is clamped to 0..100.
func (p Patch) Apply(s Study) Study {
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Progress != nil {
		s.Progress = ClampProgress(*p.Progress)
	}
	if p.AssessmentCompleted != nil {
		s.AssessmentCompleted = *p.AssessmentCompleted
	}
	if p.LastCheckpointTitle != nil {
		s.LastCheckpointTitle = strings.TrimSpace(*p.LastCheckpointTitle)
	}
	return s
}

func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// DefaultName is used when a study is created without one.
func DefaultName(now time.Time) string {
	return "Study " + now.Format("1/2/2006")
}

// ProgressFor maps roadmap completion onto the 25..100 band that follows generation.
func ProgressFor(cps []Checkpoint) int {
	if len(cps) == 0 {
		return ProgressAfterGeneration
	}
	done := 0
	for _, cp := range cps {
		if cp.Completed {
			done++
		}
	}
	return ClampProgress(ProgressAfterGeneration + (100-ProgressAfterGeneration)*done/len(cps))
}
