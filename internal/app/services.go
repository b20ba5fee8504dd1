package app

import (
	"github.com/yungbote/studypath/internal/data/repos/studyrepo"
	"github.com/yungbote/studypath/internal/ingestion/extractor"
	"github.com/yungbote/studypath/internal/modules/generation/orchestrator"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/services"
)

type Services struct {
	Generator *orchestrator.Generator
	Study     services.StudyService
}

func wireServices(log *logger.Logger, cfg Config, st *Storage, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	var cloud orchestrator.TextGenerator
	if clients.Gemini != nil {
		cloud = clients.Gemini
	}
	var local orchestrator.LocalGenerator
	if clients.Ollama != nil {
		local = clients.Ollama
	}
	gen, err := orchestrator.New(log, cloud, local, clients.Searchers, orchestrator.Config{
		QuizCount:       cfg.QuizCount,
		CheckpointCount: cfg.CheckpointCount,
		Denylist:        cfg.VideoDenylist,
	})
	if err != nil {
		return Services{}, err
	}

	repo := studyrepo.NewStudyRepo(st.KV, cfg.StoreNamespace, log)
	studySvc := services.NewStudyService(
		log,
		repo,
		st.Blobs,
		extractor.New(log),
		gen,
		clients.Notifier,
		services.StudyServiceConfig{RequireLocal: cfg.OllamaRequired},
	)
	return Services{Generator: gen, Study: studySvc}, nil
}
