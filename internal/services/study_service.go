package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studypath/internal/data/repos/studyrepo"
	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/orchestrator"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/blob"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/platform/notify"
)

// Generator is the slice of the orchestrator the study workflow uses.
type Generator interface {
	ProbeLocal(ctx context.Context) error
	PingCloud(ctx context.Context, message string) string
	Quiz(ctx context.Context, corpus string) ([]study.QuizItem, error)
	Checkpoints(ctx context.Context, corpus string) ([]study.Checkpoint, error)
	Video(ctx context.Context, topic string) (string, error)
	Videos(ctx context.Context, topics []string) ([]string, error)
	TopicQuiz(ctx context.Context, topic string, n int) ([]study.QuizItem, error)
	TutorReply(ctx context.Context, topic string, persona study.Persona, history []orchestrator.TutorTurn, message string) (string, error)
}

type Extractor interface {
	ExtractAll(ctx context.Context, docs []study.RawDocument) []study.ExtractedText
}

type StudyService interface {
	CreateStudy(ctx context.Context, name string) (study.Study, error)
	ListStudies(ctx context.Context) ([]study.Study, error)
	GetStudy(ctx context.Context, id string) (study.Study, error)
	UpdateStudy(ctx context.Context, id string, p study.Patch) (study.Study, error)
	DeleteStudy(ctx context.Context, id string) error

	AddUpload(ctx context.Context, id string, in UploadInput) (study.UploadRecord, error)
	Uploads(ctx context.Context, id string) ([]study.UploadRecord, error)

	// ProcessMaterials extracts every upload and generates the quiz and
	// roadmap. Cancelling ctx stops the whole run.
	ProcessMaterials(ctx context.Context, id string) (*ProcessResult, error)

	Quiz(ctx context.Context, id string) ([]study.QuizItem, error)
	CompleteAssessment(ctx context.Context, id string) (study.Study, error)

	Roadmap(ctx context.Context, id string) ([]RoadmapItem, error)
	RecordLastCheckpoint(ctx context.Context, id, title string) (study.Study, error)
	CompleteCheckpoint(ctx context.Context, id, title string) (study.Study, error)
	SetCheckpointVideo(ctx context.Context, id, title, videoURL string) (study.Checkpoint, error)
	SetCheckpointPersona(ctx context.Context, id, title, persona string) (study.Checkpoint, error)
	ResolveCheckpointVideo(ctx context.Context, id, title string) (string, error)
	CheckpointQuiz(ctx context.Context, id, title string, n int) ([]study.QuizItem, error)

	TutorReply(ctx context.Context, id, title string, history []orchestrator.TutorTurn, message string) (string, error)
	PingCloud(ctx context.Context, message string) string
}

type UploadInput struct {
	FileName string
	Kind     study.FileKind
	Data     []byte
}

type StudyServiceConfig struct {
	// RequireLocal makes a failed local model probe abort processing.
	RequireLocal bool
}

type studyService struct {
	log       *logger.Logger
	repo      studyrepo.StudyRepo
	blobs     blob.Store
	extractor Extractor
	gen       Generator
	notifier  notify.Notifier
	cfg       StudyServiceConfig
	now       func() time.Time
}

func NewStudyService(
	baseLog *logger.Logger,
	repo studyrepo.StudyRepo,
	blobs blob.Store,
	extractor Extractor,
	gen Generator,
	notifier notify.Notifier,
	cfg StudyServiceConfig,
) StudyService {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if notifier == nil {
		notifier = notify.Noop()
	}
	return &studyService{
		log:       baseLog.With("service", "StudyService"),
		repo:      repo,
		blobs:     blobs,
		extractor: extractor,
		gen:       gen,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *studyService) CreateStudy(ctx context.Context, name string) (study.Study, error) {
	now := s.now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name = study.DefaultName(now)
	}
	st := study.Study{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    study.StatusInProgress,
		Progress:  0,
		CreatedAt: now,
	}
	if err := s.repo.AddStudy(ctx, st); err != nil {
		return study.Study{}, fmt.Errorf("create study: %w", err)
	}
	s.log.Info("study created", "study_id", st.ID)
	s.notifier.Notify(notify.EventStudyCreated, map[string]any{"studyId": st.ID, "name": st.Name})
	return st, nil
}

func (s *studyService) ListStudies(ctx context.Context) ([]study.Study, error) {
	return s.repo.ListStudies(ctx)
}

func (s *studyService) GetStudy(ctx context.Context, id string) (study.Study, error) {
	return s.repo.GetStudy(ctx, id)
}

func (s *studyService) UpdateStudy(ctx context.Context, id string, p study.Patch) (study.Study, error) {
	return s.repo.UpdateStudy(ctx, id, p)
}

func (s *studyService) DeleteStudy(ctx context.Context, id string) error {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteStudy(ctx, id); err != nil {
		return err
	}
	if s.blobs != nil {
		if err := s.blobs.DeleteStudy(ctx, id); err != nil {
			s.log.Warn("failed to delete study blobs", "study_id", id, "error", err)
		}
	}
	return nil
}

func (s *studyService) AddUpload(ctx context.Context, id string, in UploadInput) (study.UploadRecord, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return study.UploadRecord{}, err
	}
	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return study.UploadRecord{}, fmt.Errorf("upload file name: %w", pkgerrors.ErrInvalidArgument)
	}
	kind := in.Kind
	if kind == "" {
		kind = study.FileKindSlide
	}
	ref, err := s.blobs.Put(ctx, id, name, in.Data)
	if err != nil {
		return study.UploadRecord{}, fmt.Errorf("store upload: %w", err)
	}
	rec := study.UploadRecord{
		FileName:   name,
		FileKind:   kind,
		FileRef:    ref,
		UploadedAt: s.now().UTC(),
	}
	if err := s.repo.AppendUpload(ctx, id, rec); err != nil {
		return study.UploadRecord{}, err
	}
	s.log.Info("upload stored", "study_id", id, "file", name, "kind", kind, "size", len(in.Data))
	return rec, nil
}

func (s *studyService) Uploads(ctx context.Context, id string) ([]study.UploadRecord, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Uploads(ctx, id)
}

func (s *studyService) Quiz(ctx context.Context, id string) ([]study.QuizItem, error) {
	if _, err := s.repo.GetStudy(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Quiz(ctx, id)
}

func (s *studyService) CompleteAssessment(ctx context.Context, id string) (study.Study, error) {
	done := true
	return s.repo.UpdateStudy(ctx, id, study.Patch{AssessmentCompleted: &done})
}

func (s *studyService) PingCloud(ctx context.Context, message string) string {
	if strings.TrimSpace(message) == "" {
		message = "ping"
	}
	return s.gen.PingCloud(ctx, message)
}
