// Package studyrepo owns all durable study state. Every collection is
// stored whole under a namespaced key, read as a defensive copy and
// written back as a full replacement.
package studyrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/studypath/internal/data/kv"
	"github.com/yungbote/studypath/internal/domain/study"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/logger"
)

type StudyRepo interface {
	ListStudies(ctx context.Context) ([]study.Study, error)
	SaveStudies(ctx context.Context, studies []study.Study) error
	GetStudy(ctx context.Context, id string) (study.Study, error)
	// AddStudy prepends s to the studies list.
	AddStudy(ctx context.Context, s study.Study) error
	UpdateStudy(ctx context.Context, id string, p study.Patch) (study.Study, error)
	// DeleteStudy removes the study and all of its collections.
	DeleteStudy(ctx context.Context, id string) error

	Uploads(ctx context.Context, id string) ([]study.UploadRecord, error)
	SetUploads(ctx context.Context, id string, uploads []study.UploadRecord) error
	AppendUpload(ctx context.Context, id string, u study.UploadRecord) error

	Quiz(ctx context.Context, id string) ([]study.QuizItem, error)
	SetQuiz(ctx context.Context, id string, items []study.QuizItem) error

	Checkpoints(ctx context.Context, id string) ([]study.Checkpoint, error)
	SetCheckpoints(ctx context.Context, id string, cps []study.Checkpoint) error
	// UpdateCheckpoint merges p into the checkpoint whose title matches and
	// writes the whole list back.
	UpdateCheckpoint(ctx context.Context, id, title string, p study.CheckpointPatch) (study.Checkpoint, error)
}

type studyRepo struct {
	store kv.Store
	ns    string
	log   *logger.Logger
}

func NewStudyRepo(store kv.Store, namespace string, baseLog *logger.Logger) StudyRepo {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "local"
	}
	return &studyRepo{store: store, ns: namespace, log: baseLog.With("repo", "StudyRepo")}
}

func (r *studyRepo) studiesKey() string { return r.ns + ":studies" }
func (r *studyRepo) uploadsKey(id string) string { return r.ns + ":uploads:" + id }
func (r *studyRepo) quizKey(id string) string { return r.ns + ":quiz:" + id }
func (r *studyRepo) topicsKey(id string) string { return r.ns + ":topics:" + id }

func (r *studyRepo) ListStudies(ctx context.Context) ([]study.Study, error) {
	var out []study.Study
	if err := r.load(ctx, r.studiesKey(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []study.Study{}
	}
	return out, nil
}

func (r *studyRepo) SaveStudies(ctx context.Context, studies []study.Study) error {
	if studies == nil {
		studies = []study.Study{}
	}
	return r.save(ctx, r.studiesKey(), studies)
}

func (r *studyRepo) GetStudy(ctx context.Context, id string) (study.Study, error) {
	all, err := r.ListStudies(ctx)
	if err != nil {
		return study.Study{}, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return study.Study{}, fmt.Errorf("study %s: %w", id, pkgerrors.ErrNotFound)
}

func (r *studyRepo) AddStudy(ctx context.Context, s study.Study) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("study id: %w", pkgerrors.ErrInvalidArgument)
	}
	all, err := r.ListStudies(ctx)
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.ID == s.ID {
			return fmt.Errorf("study %s already exists: %w", s.ID, pkgerrors.ErrInvalidArgument)
		}
	}
	return r.SaveStudies(ctx, append([]study.Study{s}, all...))
}

func (r *studyRepo) UpdateStudy(ctx context.Context, id string, p study.Patch) (study.Study, error) {
	all, err := r.ListStudies(ctx)
	if err != nil {
		return study.Study{}, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		all[i] = p.Apply(all[i])
		if err := r.SaveStudies(ctx, all); err != nil {
			return study.Study{}, err
		}
		return all[i], nil
	}
	return study.Study{}, fmt.Errorf("study %s: %w", id, pkgerrors.ErrNotFound)
}

func (r *studyRepo) DeleteStudy(ctx context.Context, id string) error {
	all, err := r.ListStudies(ctx)
	if err != nil {
		return err
	}
	kept := make([]study.Study, 0, len(all))
	for _, s := range all {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if err := r.SaveStudies(ctx, kept); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, r.uploadsKey(id), r.quizKey(id), r.topicsKey(id)); err != nil {
		return fmt.Errorf("delete study %s collections: %w", id, err)
	}
	r.log.Info("study deleted", "study_id", id, "existed", len(kept) != len(all))
	return nil
}

func (r *studyRepo) Uploads(ctx context.Context, id string) ([]study.UploadRecord, error) {
	var out []study.UploadRecord
	if err := r.load(ctx, r.uploadsKey(id), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []study.UploadRecord{}
	}
	return out, nil
}

func (r *studyRepo) SetUploads(ctx context.Context, id string, uploads []study.UploadRecord) error {
	if uploads == nil {
		uploads = []study.UploadRecord{}
	}
	return r.save(ctx, r.uploadsKey(id), uploads)
}

func (r *studyRepo) AppendUpload(ctx context.Context, id string, u study.UploadRecord) error {
	uploads, err := r.Uploads(ctx, id)
	if err != nil {
		return err
	}
	return r.SetUploads(ctx, id, append(uploads, u))
}

func (r *studyRepo) Quiz(ctx context.Context, id string) ([]study.QuizItem, error) {
	var out []study.QuizItem
	if err := r.load(ctx, r.quizKey(id), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []study.QuizItem{}
	}
	return out, nil
}

func (r *studyRepo) SetQuiz(ctx context.Context, id string, items []study.QuizItem) error {
	if items == nil {
		items = []study.QuizItem{}
	}
	return r.save(ctx, r.quizKey(id), items)
}

func (r *studyRepo) Checkpoints(ctx context.Context, id string) ([]study.Checkpoint, error) {
	var out []study.Checkpoint
	if err := r.load(ctx, r.topicsKey(id), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []study.Checkpoint{}
	}
	return out, nil
}

func (r *studyRepo) SetCheckpoints(ctx context.Context, id string, cps []study.Checkpoint) error {
	if cps == nil {
		cps = []study.Checkpoint{}
	}
	return r.save(ctx, r.topicsKey(id), cps)
}

func (r *studyRepo) UpdateCheckpoint(ctx context.Context, id, title string, p study.CheckpointPatch) (study.Checkpoint, error) {
	cps, err := r.Checkpoints(ctx, id)
	if err != nil {
		return study.Checkpoint{}, err
	}
	i := indexByTitle(cps, title)
	if i < 0 {
		return study.Checkpoint{}, fmt.Errorf("checkpoint %q: %w", title, pkgerrors.ErrNotFound)
	}
	cps[i] = p.Apply(cps[i])
	if err := r.SetCheckpoints(ctx, id, cps); err != nil {
		return study.Checkpoint{}, err
	}
	return cps[i].Clone(), nil
}

// indexByTitle prefers an exact match, then a case-insensitive one.
func indexByTitle(cps []study.Checkpoint, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		return -1
	}
	for i, cp := range cps {
		if cp.Title == title {
			return i
		}
	}
	for i, cp := range cps {
		if strings.EqualFold(cp.Title, title) {
			return i
		}
	}
	return -1
}

// load decodes the value under key into dst. A missing key leaves dst
// untouched. Decoding from fresh bytes is what makes the result a copy.
func (r *studyRepo) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.log.Warn("corrupt collection, treating as empty", "key", key, "error", err)
		return nil
	}
	return nil
}

func (r *studyRepo) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
