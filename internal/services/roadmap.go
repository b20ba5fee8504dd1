package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/studypath/internal/domain/study"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/youtube"
)

// RoadmapItem is a checkpoint as shown to the learner.
type RoadmapItem struct {
	study.Checkpoint
	// Unlocked is always true; the roadmap has no gating.
	Unlocked bool   `json:"unlocked"`
	EmbedURL string `json:"embedUrl,omitempty"`
}

func (s *studyService) Roadmap(ctx context.Context, id string) ([]RoadmapItem, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return nil, err
	}
	cps, err := s.repo.Checkpoints(ctx, id)
	if err != nil {
		return nil, err
	}
	sorted := study.SortByOrder(cps)
	out := make([]RoadmapItem, 0, len(sorted))
	for _, cp := range sorted {
		item := RoadmapItem{Checkpoint: cp, Unlocked: true}
		if cp.VideoURL != "" {
			item.EmbedURL = youtube.EmbedURL(cp.VideoURL)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *studyService) RecordLastCheckpoint(ctx context.Context, id, title string) (study.Study, error) {
	cp, err := s.checkpoint(ctx, id, title)
	if err != nil {
		return study.Study{}, err
	}
	return s.repo.UpdateStudy(ctx, id, study.Patch{LastCheckpointTitle: &cp.Title})
}

func (s *studyService) CompleteCheckpoint(ctx context.Context, id, title string) (study.Study, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return study.Study{}, err
	}
	done := true
	cp, err := s.repo.UpdateCheckpoint(ctx, id, title, study.CheckpointPatch{Completed: &done})
	if err != nil {
		return study.Study{}, err
	}
	cps, err := s.repo.Checkpoints(ctx, id)
	if err != nil {
		return study.Study{}, err
	}
	progress := study.ProgressFor(cps)
	status := study.StatusInProgress
	if progress >= 100 {
		status = study.StatusCompleted
	}
	return s.repo.UpdateStudy(ctx, id, study.Patch{
		Progress:            &progress,
		Status:              &status,
		LastCheckpointTitle: &cp.Title,
	})
}

func (s *studyService) SetCheckpointVideo(ctx context.Context, id, title, videoURL string) (study.Checkpoint, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return study.Checkpoint{}, err
	}
	canon := youtube.CanonicalURL(videoURL)
	if canon == "" && strings.TrimSpace(videoURL) != "" {
		return study.Checkpoint{}, fmt.Errorf("video url %q: %w", videoURL, pkgerrors.ErrInvalidArgument)
	}
	return s.repo.UpdateCheckpoint(ctx, id, title, study.CheckpointPatch{VideoURL: &canon})
}

func (s *studyService) SetCheckpointPersona(ctx context.Context, id, title, persona string) (study.Checkpoint, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return study.Checkpoint{}, err
	}
	p, ok := study.ParsePersona(persona)
	if !ok {
		return study.Checkpoint{}, fmt.Errorf("persona %q: %w", persona, pkgerrors.ErrInvalidArgument)
	}
	name := string(p)
	return s.repo.UpdateCheckpoint(ctx, id, title, study.CheckpointPatch{TutorPersona: &name})
}

// ResolveCheckpointVideo returns the stored video or looks one up and
// persists it. "" means no provider found one.
func (s *studyService) ResolveCheckpointVideo(ctx context.Context, id, title string) (string, error) {
	cp, err := s.checkpoint(ctx, id, title)
	if err != nil {
		return "", err
	}
	if cp.VideoURL != "" {
		return cp.VideoURL, nil
	}
	url, err := s.gen.Video(ctx, cp.Title)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", nil
	}
	if _, err := s.repo.UpdateCheckpoint(ctx, id, cp.Title, study.CheckpointPatch{VideoURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}

// CheckpointQuiz returns the cached mini quiz or generates and stores one.
func (s *studyService) CheckpointQuiz(ctx context.Context, id, title string, n int) ([]study.QuizItem, error) {
	cp, err := s.checkpoint(ctx, id, title)
	if err != nil {
		return nil, err
	}
	if len(cp.QuizItems) > 0 {
		return cp.QuizItems, nil
	}
	items, err := s.gen.TopicQuiz(ctx, cp.Title, n)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateCheckpoint(ctx, id, cp.Title, study.CheckpointPatch{QuizItems: items}); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *studyService) checkpoint(ctx context.Context, id, title string) (study.Checkpoint, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return study.Checkpoint{}, err
	}
	cps, err := s.repo.Checkpoints(ctx, id)
	if err != nil {
		return study.Checkpoint{}, err
	}
	title = strings.TrimSpace(title)
	for _, cp := range cps {
		if cp.Title == title {
			return cp, nil
		}
	}
	for _, cp := range cps {
		if strings.EqualFold(cp.Title, title) {
			return cp, nil
		}
	}
	return study.Checkpoint{}, fmt.Errorf("checkpoint %q: %w", title, pkgerrors.ErrNotFound)
}
