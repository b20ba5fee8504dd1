package app

import (
	apphttp "github.com/yungbote/studypath/internal/http"
	"github.com/yungbote/studypath/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *apphttp.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.ServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		StudyHandler:   handlers.Study,
		HealthHandler:  handlers.Health,
	})
}
