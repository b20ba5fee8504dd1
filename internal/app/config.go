package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/studypath/internal/modules/generation/orchestrator"
	"github.com/yungbote/studypath/internal/platform/envutil"
	"github.com/yungbote/studypath/internal/platform/gemini"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/platform/ollama"
)

const ConfigFileEnv = "STUDYPATH_CONFIG_FILE"

type Config struct {
	LogMode  string
	HTTPAddr string

	AllowedOrigins []string

	GeminiAPIKey    string
	GeminiModel     string
	GeminiFallbacks []string
	GeminiEndpoint  string

	OllamaHost       string
	OllamaModel      string
	OllamaTimeout    time.Duration
	OllamaNumPredict int
	OllamaRequired   bool

	YouTubeAPIKey string
	CSEAPIKey     string
	CSECX         string

	NotifyWebhookURL   string
	NotifyRedisChannel string

	StoreDriver    string
	SQLitePath     string
	PostgresDSN    string
	RedisAddr      string
	StoreNamespace string

	BlobDriver          string
	BlobDir             string
	UploadGCSBucket     string
	StorageEmulatorHost string
	GCPCredentialsJSON  string
	GCPCredentialsFile  string

	QuizCount       int
	CheckpointCount int
	VideoDenylist   []string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelHeaders     string
	OtelSampleRatio float64
	ServiceName     string
	Environment     string
	Version         string
}

// LoadConfig reads the environment. When STUDYPATH_CONFIG_FILE names a YAML
// file, its keys fill any variable that is not already set.
func LoadConfig(log *logger.Logger) (Config, error) {
	if path := envutil.String(ConfigFileEnv, ""); path != "" {
		n, err := applyOverlay(path)
		if err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Applied config overlay", "path", path, "keys", n)
		}
	}

	cfg := Config{
		LogMode:  envutil.String("LOG_MODE", "development"),
		HTTPAddr: envutil.String("HTTP_ADDR", ":8080"),

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		GeminiAPIKey:    envutil.String("GEMINI_API_KEY", ""),
		GeminiModel:     envutil.String("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiFallbacks: envutil.List("GEMINI_MODEL_FALLBACKS", gemini.DefaultModels),
		GeminiEndpoint:  envutil.String("GEMINI_ENDPOINT", ""),

		OllamaHost:       envutil.String("OLLAMA_HOST", ""),
		OllamaModel:      envutil.String("OLLAMA_MODEL", ollama.DefaultModel),
		OllamaTimeout:    envutil.DurationMS("OLLAMA_TIMEOUT_MS", 8*time.Second),
		OllamaNumPredict: envutil.Int("OLLAMA_NUM_PREDICT", 512),
		OllamaRequired:   envutil.Bool("OLLAMA_REQUIRED", true),

		YouTubeAPIKey: envutil.String("YOUTUBE_API_KEY", ""),
		CSEAPIKey:     envutil.String("GOOGLE_CSE_API_KEY", ""),
		CSECX:         envutil.String("GOOGLE_CSE_CX", ""),

		NotifyWebhookURL:   envutil.String("NOTIFY_WEBHOOK_URL", ""),
		NotifyRedisChannel: envutil.String("NOTIFY_REDIS_CHANNEL", ""),

		StoreDriver:    strings.ToLower(envutil.String("STORE_DRIVER", "memory")),
		SQLitePath:     envutil.String("SQLITE_PATH", "studypath.db"),
		PostgresDSN:    envutil.String("POSTGRES_DSN", ""),
		RedisAddr:      envutil.String("REDIS_ADDR", ""),
		StoreNamespace: envutil.String("STORE_NAMESPACE", "local"),

		BlobDriver:          strings.ToLower(envutil.String("BLOB_DRIVER", "local")),
		BlobDir:             envutil.String("BLOB_DIR", "./uploads"),
		UploadGCSBucket:     envutil.String("UPLOAD_GCS_BUCKET", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		GCPCredentialsJSON:  envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		GCPCredentialsFile:  envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""),

		QuizCount:       envutil.Int("QUIZ_COUNT", 3),
		CheckpointCount: envutil.Int("CHECKPOINT_COUNT", 6),
		VideoDenylist:   envutil.List("VIDEO_DENYLIST", orchestrator.DefaultDenylist()),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OtelSampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		ServiceName:     envutil.String("OTEL_SERVICE_NAME", "studypath"),
		Environment:     envutil.String("APP_ENV", "local"),
		Version:         envutil.String("APP_VERSION", "dev"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite", "redis":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if (c.StoreDriver == "redis" || c.NotifyRedisChannel != "") && c.RedisAddr == "" {
		return fmt.Errorf("redis store or notifications require REDIS_ADDR")
	}
	switch c.BlobDriver {
	case "local":
	case "gcs":
		if c.UploadGCSBucket == "" {
			return fmt.Errorf("BLOB_DRIVER=gcs requires UPLOAD_GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported BLOB_DRIVER %q", c.BlobDriver)
	}
	return nil
}

// applyOverlay sets unset env vars from a flat YAML mapping. Lists may be
// written as YAML sequences.
func applyOverlay(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return 0, fmt.Errorf("parse config file %s: %w", path, err)
	}
	applied := 0
	for k, v := range values {
		name := strings.ToUpper(strings.TrimSpace(k))
		if name == "" || envutil.Set(name) || v == nil {
			continue
		}
		if err := os.Setenv(name, overlayValue(v)); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func overlayValue(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
