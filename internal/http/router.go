package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studypath/internal/http/handlers"
	httpMW "github.com/yungbote/studypath/internal/http/middleware"
	"github.com/yungbote/studypath/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	StudyHandler  *httpH.StudyHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if h := cfg.StudyHandler; h != nil {
		// Studies
		api.POST("/studies", h.CreateStudy)
		api.GET("/studies", h.ListStudies)
		api.GET("/studies/:id", h.GetStudy)
		api.PATCH("/studies/:id", h.UpdateStudy)
		api.DELETE("/studies/:id", h.DeleteStudy)

		// Materials
		api.POST("/studies/:id/uploads", h.Upload)
		api.POST("/studies/:id/process", h.Process)

		// Assessment
		api.GET("/studies/:id/quiz", h.Quiz)
		api.POST("/studies/:id/assessment/complete", h.CompleteAssessment)

		// Roadmap
		api.GET("/studies/:id/roadmap", h.Roadmap)
		api.POST("/studies/:id/checkpoints/open", h.OpenCheckpoint)
		api.POST("/studies/:id/checkpoints/complete", h.CompleteCheckpoint)
		api.POST("/studies/:id/checkpoints/persona", h.SetPersona)
		api.POST("/studies/:id/checkpoints/video", h.Video)
		api.POST("/studies/:id/checkpoints/quiz", h.CheckpointQuiz)
		api.POST("/studies/:id/tutor", h.Tutor)

		// Providers
		api.GET("/providers/ping", h.Ping)
	}
	return r
}
