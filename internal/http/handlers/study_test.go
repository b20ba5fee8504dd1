package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/orchestrator"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/apierr"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/services"
)

type fakeStudies struct {
	services.StudyService

	studies    map[string]study.Study
	uploads    []services.UploadInput
	processErr error
	videoSet   string
	tutorHist  []orchestrator.TutorTurn
	quizN      int
}

func newFakeStudies() *fakeStudies {
	return &fakeStudies{studies: map[string]study.Study{
		"s1": {ID: "s1", Name: "Biology", Status: study.StatusInProgress, CreatedAt: time.Unix(0, 0).UTC()},
	}}
}

func (f *fakeStudies) get(id string) (study.Study, error) {
	st, ok := f.studies[id]
	if !ok {
		return study.Study{}, fmt.Errorf("study %s: %w", id, pkgerrors.ErrNotFound)
	}
	return st, nil
}

func (f *fakeStudies) CreateStudy(_ context.Context, name string) (study.Study, error) {
	st := study.Study{ID: "s2", Name: name, Status: study.StatusInProgress}
	f.studies[st.ID] = st
	return st, nil
}

func (f *fakeStudies) GetStudy(_ context.Context, id string) (study.Study, error) {
	return f.get(id)
}

func (f *fakeStudies) Uploads(_ context.Context, id string) ([]study.UploadRecord, error) {
	return nil, nil
}

func (f *fakeStudies) AddUpload(_ context.Context, id string, in services.UploadInput) (study.UploadRecord, error) {
	if _, err := f.get(id); err != nil {
		return study.UploadRecord{}, err
	}
	f.uploads = append(f.uploads, in)
	return study.UploadRecord{FileName: in.FileName, FileKind: in.Kind, FileRef: "local://" + in.FileName}, nil
}

func (f *fakeStudies) ProcessMaterials(_ context.Context, id string) (*services.ProcessResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	st, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return &services.ProcessResult{Study: st}, nil
}

func (f *fakeStudies) SetCheckpointVideo(_ context.Context, id, title, videoURL string) (study.Checkpoint, error) {
	f.videoSet = videoURL
	return study.Checkpoint{Title: title, VideoURL: videoURL}, nil
}

func (f *fakeStudies) ResolveCheckpointVideo(_ context.Context, id, title string) (string, error) {
	return "https://www.youtube.com/watch?v=abcdefghijk", nil
}

func (f *fakeStudies) CheckpointQuiz(_ context.Context, id, title string, n int) ([]study.QuizItem, error) {
	f.quizN = n
	return nil, nil
}

func (f *fakeStudies) TutorReply(_ context.Context, id, title string, history []orchestrator.TutorTurn, message string) (string, error) {
	f.tutorHist = history
	return "tutor: " + message, nil
}

func newTestRouter(t *testing.T, svc services.StudyService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewStudyHandler(logger.Nop(), svc)
	r := gin.New()
	r.POST("/api/studies", h.CreateStudy)
	r.GET("/api/studies/:id", h.GetStudy)
	r.POST("/api/studies/:id/uploads", h.Upload)
	r.POST("/api/studies/:id/process", h.Process)
	r.POST("/api/studies/:id/checkpoints/video", h.Video)
	r.POST("/api/studies/:id/checkpoints/quiz", h.CheckpointQuiz)
	r.POST("/api/studies/:id/tutor", h.Tutor)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code
}

func TestCreateAndGetStudy(t *testing.T) {
	svc := newFakeStudies()
	r := newTestRouter(t, svc)

	rec := doJSON(r, http.MethodPost, "/api/studies", `{"name":"Chemistry"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"Chemistry"`) {
		t.Fatalf("create body missing name: %s", rec.Body.String())
	}

	rec = doJSON(r, http.MethodGet, "/api/studies/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status=%d", rec.Code)
	}
	if code := errorCode(t, rec); code != "not_found" {
		t.Fatalf("code=%q", code)
	}
}

func TestUploadMultipart(t *testing.T) {
	svc := newFakeStudies()
	r := newTestRouter(t, svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("kind", "pastPaper")
	for _, name := range []string{"paper1.pdf", "notes.txt"} {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write([]byte("content of " + name))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/studies/s1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.uploads) != 2 {
		t.Fatalf("uploads=%d", len(svc.uploads))
	}
	if svc.uploads[0].Kind != study.FileKindPastPaper || string(svc.uploads[1].Data) != "content of notes.txt" {
		t.Fatalf("unexpected uploads %+v", svc.uploads)
	}
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	r := newTestRouter(t, newFakeStudies())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("kind", "poster")
	fw, _ := mw.CreateFormFile("files", "a.txt")
	_, _ = fw.Write([]byte("x"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/studies/s1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_file_kind" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestProcessSurfacesLearnerFacingErrors(t *testing.T) {
	svc := newFakeStudies()
	svc.processErr = fmt.Errorf("process: %w", apierr.Newf(http.StatusUnprocessableEntity, "no_uploads", "Please upload at least one file first."))
	r := newTestRouter(t, svc)

	rec := doJSON(r, http.MethodPost, "/api/studies/s1/process", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please upload at least one file first.") {
		t.Fatalf("body=%s", rec.Body.String())
	}

	svc.processErr = fmt.Errorf("db exploded")
	rec = doJSON(r, http.MethodPost, "/api/studies/s1/process", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db exploded") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestVideoSetsOrResolves(t *testing.T) {
	svc := newFakeStudies()
	r := newTestRouter(t, svc)

	rec := doJSON(r, http.MethodPost, "/api/studies/s1/checkpoints/video", `{"title":"Cells"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "abcdefghijk") {
		t.Fatalf("resolve status=%d body=%s", rec.Code, rec.Body.String())
	}
	if svc.videoSet != "" {
		t.Fatalf("resolve should not set a video")
	}

	rec = doJSON(r, http.MethodPost, "/api/studies/s1/checkpoints/video", `{"title":"Cells","videoUrl":"https://youtu.be/zzzzzzzzzzz"}`)
	if rec.Code != http.StatusOK || svc.videoSet != "https://youtu.be/zzzzzzzzzzz" {
		t.Fatalf("set status=%d videoSet=%q", rec.Code, svc.videoSet)
	}

	rec = doJSON(r, http.MethodPost, "/api/studies/s1/checkpoints/video", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing title status=%d", rec.Code)
	}
}

func TestCheckpointQuizCount(t *testing.T) {
	svc := newFakeStudies()
	r := newTestRouter(t, svc)

	cases := []struct {
		body string
		want int
	}{
		{`{"title":"Cells"}`, 1},
		{`{"title":"Cells","count":3}`, 3},
		{`{"title":"Cells","count":9}`, 1},
	}
	for _, tc := range cases {
		rec := doJSON(r, http.MethodPost, "/api/studies/s1/checkpoints/quiz", tc.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", tc.body, rec.Code)
		}
		if svc.quizN != tc.want {
			t.Fatalf("%s: n=%d want %d", tc.body, svc.quizN, tc.want)
		}
	}
}

func TestTutorPassesHistory(t *testing.T) {
	svc := newFakeStudies()
	r := newTestRouter(t, svc)

	rec := doJSON(r, http.MethodPost, "/api/studies/s1/tutor",
		`{"title":"Cells","message":"why?","history":[{"role":"user","text":"hi"},{"role":"tutor","text":"hello"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.tutorHist) != 2 || svc.tutorHist[1].Role != orchestrator.TutorRoleTutor {
		t.Fatalf("history=%+v", svc.tutorHist)
	}
	if !strings.Contains(rec.Body.String(), "tutor: why?") {
		t.Fatalf("body=%s", rec.Body.String())
	}
}
