package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/ingestion/extractor"
	"github.com/yungbote/studypath/internal/platform/apierr"
	"github.com/yungbote/studypath/internal/platform/notify"
)

type ProcessResult struct {
	Study       study.Study           `json:"study"`
	Files       []study.ExtractedText `json:"files"`
	Quiz        []study.QuizItem      `json:"quiz"`
	Checkpoints []study.Checkpoint    `json:"checkpoints"`
}

func (s *studyService) ProcessMaterials(ctx context.Context, id string) (*ProcessResult, error) {
	st, err := s.repo.GetStudy(ctx, id)
	if err != nil {
		return nil, err
	}
	uploads, err := s.repo.Uploads(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apierr.New(http.StatusUnprocessableEntity, "no_uploads",
			errors.New("Upload at least one file before generating your study. Please try again."))
	}

	docs := make([]study.RawDocument, 0, len(uploads))
	for _, u := range uploads {
		data, err := s.blobs.Get(ctx, u.FileRef)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Empty bytes fall through to the extractor's placeholder text.
			s.log.Warn("upload blob unreadable", "study_id", id, "file", u.FileName, "error", err)
		}
		docs = append(docs, study.RawDocument{
			FileName:       u.FileName,
			Bytes:          data,
			DeclaredFormat: study.FormatFromName(u.FileName),
		})
	}

	texts := s.extractor.ExtractAll(ctx, docs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	corpus := study.Corpus(texts)
	if corpus == "" {
		return nil, apierr.New(http.StatusUnprocessableEntity, "empty_corpus",
			errors.New("We could not read any text from your files. Please try again."))
	}
	failed := 0
	for _, t := range texts {
		if extractor.IsPlaceholder(t.Text) {
			failed++
		}
	}
	s.log.Info("materials extracted", "study_id", id, "files", len(texts), "failed", failed, "corpus_len", len(corpus))
	s.notifier.Notify(notify.EventUploadProcessed, map[string]any{
		"studyId": id, "files": len(texts), "failed": failed, "chars": len(corpus),
	})

	if err := s.gen.ProbeLocal(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if s.cfg.RequireLocal {
			return nil, apierr.New(http.StatusServiceUnavailable, "local_model_unavailable",
				fmt.Errorf("The local model is not available (%v). Please try again.", err))
		}
		s.log.Warn("local model probe failed, continuing", "error", err)
	}

	quiz, err := s.gen.Quiz(ctx, corpus)
	if err != nil {
		return nil, s.generationError(ctx, "quiz", err)
	}
	if len(quiz) == 0 {
		return nil, s.generationError(ctx, "quiz", nil)
	}

	cps, err := s.gen.Checkpoints(ctx, corpus)
	if err != nil {
		return nil, s.generationError(ctx, "checkpoints", err)
	}
	if len(cps) == 0 {
		return nil, s.generationError(ctx, "checkpoints", nil)
	}
	titles := make([]string, len(cps))
	for i, cp := range cps {
		titles[i] = cp.Title
	}
	videos, err := s.gen.Videos(ctx, titles)
	if err != nil {
		return nil, err
	}
	for i := range cps {
		cps[i].VideoURL = videos[i]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Nothing is stored until every task has produced its output.
	if err := s.repo.SetQuiz(ctx, id, quiz); err != nil {
		return nil, err
	}
	if err := s.repo.SetCheckpoints(ctx, id, cps); err != nil {
		return nil, err
	}

	progress := study.ProgressFor(cps)
	status := study.StatusInProgress
	st, err = s.repo.UpdateStudy(ctx, st.ID, study.Patch{Progress: &progress, Status: &status})
	if err != nil {
		return nil, err
	}
	s.log.Info("study generated", "study_id", id, "quiz", len(quiz), "checkpoints", len(cps))
	s.notifier.Notify(notify.EventStudyGenerated, map[string]any{
		"studyId": id, "quizItems": len(quiz), "checkpoints": len(cps),
	})
	return &ProcessResult{Study: st, Files: texts, Quiz: quiz, Checkpoints: cps}, nil
}

// generationError turns a task with no usable output into a learner-facing
// message. Cancellation passes through untouched.
func (s *studyService) generationError(ctx context.Context, task string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.log.Error("generation produced nothing", "task", task, "error", err)
	return apierr.New(http.StatusBadGateway, "generation_failed",
		fmt.Errorf("We could not generate your %s. Please try again.", task))
}
