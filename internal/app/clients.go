package app

import (
	"context"
	"errors"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/gemini"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/platform/notify"
	"github.com/yungbote/studypath/internal/platform/ollama"
	"github.com/yungbote/studypath/internal/platform/youtube"
)

// Clients are the external providers. Cloud and searchers are optional;
// an unset key leaves them nil.
type Clients struct {
	Gemini    *gemini.Client
	Ollama    *ollama.Client
	Searchers []youtube.Searcher
	Notifier  *notify.Dispatcher
}

func (c Clients) Close() {
	if c.Notifier != nil {
		c.Notifier.Wait()
	}
	if c.Gemini != nil {
		_ = c.Gemini.Close()
	}
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, st *Storage) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Gemini
	gc, err := gemini.New(ctx, log, gemini.Config{
		APIKey:    cfg.GeminiAPIKey,
		Primary:   cfg.GeminiModel,
		Fallbacks: cfg.GeminiFallbacks,
		Endpoint:  cfg.GeminiEndpoint,
	})
	switch {
	case errors.Is(err, pkgerrors.ErrNotConfigured):
		log.Warn("GEMINI_API_KEY not set, cloud provider disabled")
	case err != nil:
		return Clients{}, err
	default:
		out.Gemini = gc
	}

	// Ollama
	out.Ollama = ollama.New(log, ollama.Config{
		Host:       cfg.OllamaHost,
		Model:      cfg.OllamaModel,
		Timeout:    cfg.OllamaTimeout,
		NumPredict: cfg.OllamaNumPredict,
	})

	// Video search: web search first, then the platform API
	if s, err := youtube.NewCSESearcher(ctx, log, cfg.CSEAPIKey, cfg.CSECX); err == nil {
		out.Searchers = append(out.Searchers, s)
	} else if !errors.Is(err, pkgerrors.ErrNotConfigured) {
		out.Close()
		return Clients{}, err
	}
	if s, err := youtube.NewDataAPISearcher(ctx, log, cfg.YouTubeAPIKey); err == nil {
		out.Searchers = append(out.Searchers, s)
	} else if !errors.Is(err, pkgerrors.ErrNotConfigured) {
		out.Close()
		return Clients{}, err
	}

	// Notifications
	var sinks []notify.Sink
	if cfg.NotifyWebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.NotifyWebhookURL, nil))
	}
	if cfg.NotifyRedisChannel != "" && st != nil && st.Redis != nil {
		rs, err := notify.NewRedisSink(st.Redis, cfg.NotifyRedisChannel)
		if err != nil {
			out.Close()
			return Clients{}, err
		}
		sinks = append(sinks, rs)
	}
	out.Notifier = notify.NewDispatcher(log, sinks...)

	log.Info("Clients ready",
		"cloud", out.Gemini != nil,
		"local_model", out.Ollama.Model(),
		"searchers", len(out.Searchers),
		"notify_sinks", len(sinks),
	)
	return out, nil
}
