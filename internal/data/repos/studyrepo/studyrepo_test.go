package studyrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/studypath/internal/data/kv"
	"github.com/yungbote/studypath/internal/domain/study"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
)

func newRepo(t *testing.T) (StudyRepo, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	return NewStudyRepo(store, "test", nil), store
}

func seedStudy(t *testing.T, repo StudyRepo, id string) study.Study {
	t.Helper()
	s := study.Study{ID: id, Name: "Study " + id, Status: study.StatusInProgress, CreatedAt: time.Now().UTC()}
	if err := repo.AddStudy(context.Background(), s); err != nil {
		t.Fatalf("add study: %v", err)
	}
	return s
}

func quizItem() study.QuizItem {
	return study.QuizItem{Question: "Q?", Options: []string{"a", "b", "c", "d"}, Answer: "a"}
}

func TestDeleteStudyCascades(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)
	seedStudy(t, repo, "s1")

	if err := repo.AppendUpload(ctx, "s1", study.UploadRecord{FileName: "notes.pdf", FileKind: study.FileKindSlide, FileRef: "blob-1"}); err != nil {
		t.Fatalf("append upload: %v", err)
	}
	if err := repo.SetQuiz(ctx, "s1", []study.QuizItem{quizItem()}); err != nil {
		t.Fatalf("set quiz: %v", err)
	}
	if err := repo.SetCheckpoints(ctx, "s1", []study.Checkpoint{{Title: "Loops", Order: 1}}); err != nil {
		t.Fatalf("set checkpoints: %v", err)
	}

	if err := repo.DeleteStudy(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	studies, _ := repo.ListStudies(ctx)
	if len(studies) != 0 {
		t.Fatalf("study still listed: %+v", studies)
	}
	if ups, _ := repo.Uploads(ctx, "s1"); len(ups) != 0 {
		t.Fatalf("uploads survived: %+v", ups)
	}
	if q, _ := repo.Quiz(ctx, "s1"); len(q) != 0 {
		t.Fatalf("quiz survived: %+v", q)
	}
	if cps, _ := repo.Checkpoints(ctx, "s1"); len(cps) != 0 {
		t.Fatalf("checkpoints survived: %+v", cps)
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the studies key to remain, got %d keys", store.Len())
	}
	if _, err := repo.GetStudy(ctx, "s1"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLeavesOtherStudies(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	seedStudy(t, repo, "a")
	seedStudy(t, repo, "b")
	_ = repo.SetQuiz(ctx, "b", []study.QuizItem{quizItem()})

	if err := repo.DeleteStudy(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetStudy(ctx, "b"); err != nil {
		t.Fatalf("b should remain: %v", err)
	}
	if q, _ := repo.Quiz(ctx, "b"); len(q) != 1 {
		t.Fatalf("b quiz lost")
	}
}

func TestAddStudyPrependsAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	seedStudy(t, repo, "first")
	seedStudy(t, repo, "second")
	all, err := repo.ListStudies(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "second" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if err := repo.AddStudy(ctx, study.Study{ID: "first"}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestReadsAreDefensiveCopies(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	seedStudy(t, repo, "s")
	_ = repo.SetQuiz(ctx, "s", []study.QuizItem{quizItem()})

	q, _ := repo.Quiz(ctx, "s")
	q[0].Options[0] = "mutated"
	q[0].Question = "changed"

	again, _ := repo.Quiz(ctx, "s")
	if again[0].Question != "Q?" || again[0].Options[0] != "a" {
		t.Fatalf("stored quiz was mutated through a read: %+v", again[0])
	}
}

func TestUpdateCheckpointMergesByTitle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	seedStudy(t, repo, "s")
	_ = repo.SetCheckpoints(ctx, "s", []study.Checkpoint{
		{Title: "Loops", Order: 1, VideoURL: "https://www.youtube.com/watch?v=abc12345678"},
		{Title: "Functions", Order: 2},
	})

	persona := string(study.PersonaSocraticMentor)
	done := true
	got, err := repo.UpdateCheckpoint(ctx, "s", "loops", study.CheckpointPatch{TutorPersona: &persona, Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.VideoURL == "" || got.TutorPersona != persona || !got.Completed {
		t.Fatalf("unexpected merge %+v", got)
	}
	cps, _ := repo.Checkpoints(ctx, "s")
	if len(cps) != 2 || !cps[0].Completed || cps[1].Completed || cps[1].Title != "Functions" {
		t.Fatalf("unexpected list after merge %+v", cps)
	}

	if _, err := repo.UpdateCheckpoint(ctx, "s", "Recursion", study.CheckpointPatch{Completed: &done}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStudy(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	seedStudy(t, repo, "s")
	progress := 140
	done := true
	got, err := repo.UpdateStudy(ctx, "s", study.Patch{Progress: &progress, AssessmentCompleted: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Progress != 100 || !got.AssessmentCompleted || got.Name != "Study s" {
		t.Fatalf("unexpected study %+v", got)
	}
	if _, err := repo.UpdateStudy(ctx, "nope", study.Patch{}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCorruptCollectionReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewStudyRepo(store, "", nil)
	_ = store.Set(ctx, "local:quiz:s", []byte("{not json"))
	q, err := repo.Quiz(ctx, "s")
	if err != nil || len(q) != 0 {
		t.Fatalf("expected empty quiz, got %+v %v", q, err)
	}
}
