package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/http/response"
	"github.com/yungbote/studypath/internal/modules/generation/orchestrator"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/services"
)

const (
	maxUploadBytes    = 32 << 20
	maxMultipartBytes = 64 << 20
)

type StudyHandler struct {
	log     *logger.Logger
	studies services.StudyService
}

func NewStudyHandler(log *logger.Logger, studies services.StudyService) *StudyHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StudyHandler{log: log.With("handler", "StudyHandler"), studies: studies}
}

type createStudyRequest struct {
	Name string `json:"name"`
}

// POST /api/studies
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	var req createStudyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	st, err := h.studies.CreateStudy(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"study": st})
}

// GET /api/studies
func (h *StudyHandler) ListStudies(c *gin.Context) {
	studies, err := h.studies.ListStudies(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"studies": studies})
}

// GET /api/studies/:id
func (h *StudyHandler) GetStudy(c *gin.Context) {
	st, err := h.studies.GetStudy(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	uploads, err := h.studies.Uploads(c.Request.Context(), st.ID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"study": st, "uploads": uploads})
}

type updateStudyRequest struct {
	Name *string `json:"name"`
}

// PATCH /api/studies/:id
func (h *StudyHandler) UpdateStudy(c *gin.Context) {
	var req updateStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := h.studies.UpdateStudy(c.Request.Context(), c.Param("id"), study.Patch{Name: req.Name})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"study": st})
}

// DELETE /api/studies/:id
func (h *StudyHandler) DeleteStudy(c *gin.Context) {
	if err := h.studies.DeleteStudy(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/studies/:id/uploads (multipart: files[], kind)
func (h *StudyHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBytes)
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	kind, ok := study.ParseFileKind(c.PostForm("kind"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_kind", errors.New("kind must be slide or pastPaper"))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.RespondError(c, http.StatusBadRequest, "no_files", errors.New("no files uploaded"))
		return
	}
	records := make([]study.UploadRecord, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxUploadBytes {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New(fh.Filename+" is too large"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.log.Error("cannot open uploaded file", "file", fh.Filename, "error", err)
			response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
			return
		}
		rec, err := h.studies.AddUpload(c.Request.Context(), c.Param("id"), services.UploadInput{
			FileName: fh.Filename,
			Kind:     kind,
			Data:     data,
		})
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		records = append(records, rec)
	}
	response.RespondCreated(c, gin.H{"uploads": records})
}

// POST /api/studies/:id/process
func (h *StudyHandler) Process(c *gin.Context) {
	res, err := h.studies.ProcessMaterials(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/studies/:id/quiz
func (h *StudyHandler) Quiz(c *gin.Context) {
	items, err := h.studies.Quiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": items})
}

// POST /api/studies/:id/assessment/complete
func (h *StudyHandler) CompleteAssessment(c *gin.Context) {
	st, err := h.studies.CompleteAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"study": st})
}

// GET /api/studies/:id/roadmap
func (h *StudyHandler) Roadmap(c *gin.Context) {
	items, err := h.studies.Roadmap(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkpoints": items, "personas": study.Personas()})
}

type checkpointRequest struct {
	Title    string `json:"title" binding:"required"`
	Persona  string `json:"persona"`
	VideoURL string `json:"videoUrl"`
	Count    int    `json:"count"`
}

func (h *StudyHandler) bindCheckpoint(c *gin.Context) (checkpointRequest, bool) {
	var req checkpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	return req, true
}

// POST /api/studies/:id/checkpoints/open
func (h *StudyHandler) OpenCheckpoint(c *gin.Context) {
	req, ok := h.bindCheckpoint(c)
	if !ok {
		return
	}
	st, err := h.studies.RecordLastCheckpoint(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"study": st})
}

// POST /api/studies/:id/checkpoints/complete
func (h *StudyHandler) CompleteCheckpoint(c *gin.Context) {
	req, ok := h.bindCheckpoint(c)
	if !ok {
		return
	}
	st, err := h.studies.CompleteCheckpoint(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"study": st})
}

// POST /api/studies/:id/checkpoints/persona
func (h *StudyHandler) SetPersona(c *gin.Context) {
	req, ok := h.bindCheckpoint(c)
	if !ok {
		return
	}
	cp, err := h.studies.SetCheckpointPersona(c.Request.Context(), c.Param("id"), req.Title, req.Persona)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkpoint": cp})
}

// POST /api/studies/:id/checkpoints/video
// With videoUrl the video is set; without it one is looked up.
func (h *StudyHandler) Video(c *gin.Context) {
	req, ok := h.bindCheckpoint(c)
	if !ok {
		return
	}
	if strings.TrimSpace(req.VideoURL) != "" {
		cp, err := h.studies.SetCheckpointVideo(c.Request.Context(), c.Param("id"), req.Title, req.VideoURL)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"videoUrl": cp.VideoURL})
		return
	}
	url, err := h.studies.ResolveCheckpointVideo(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videoUrl": url})
}

// POST /api/studies/:id/checkpoints/quiz
func (h *StudyHandler) CheckpointQuiz(c *gin.Context) {
	req, ok := h.bindCheckpoint(c)
	if !ok {
		return
	}
	n := req.Count
	if q := c.Query("count"); q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			n = v
		}
	}
	if n <= 0 || n > 3 {
		n = 1
	}
	items, err := h.studies.CheckpointQuiz(c.Request.Context(), c.Param("id"), req.Title, n)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": items})
}

type tutorRequest struct {
	Title   string                   `json:"title" binding:"required"`
	Message string                   `json:"message" binding:"required"`
	History []orchestrator.TutorTurn `json:"history"`
}

// POST /api/studies/:id/tutor
func (h *StudyHandler) Tutor(c *gin.Context) {
	var req tutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := h.studies.TutorReply(c.Request.Context(), c.Param("id"), req.Title, req.History, req.Message)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reply": reply})
}

// GET /api/providers/ping?message=...
func (h *StudyHandler) Ping(c *gin.Context) {
	response.RespondOK(c, gin.H{"reply": h.studies.PingCloud(c.Request.Context(), c.Query("message"))})
}
