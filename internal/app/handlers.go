package app

import (
	httpH "github.com/yungbote/studypath/internal/http/handlers"
	"github.com/yungbote/studypath/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Study  *httpH.StudyHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Study:  httpH.NewStudyHandler(log, services.Study),
	}
}
