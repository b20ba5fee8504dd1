// Package gemini is the cloud generative provider. A single logical
// request walks an ordered list of model identifiers until one answers.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/pkg/httpx"
	"github.com/yungbote/studypath/internal/platform/logger"
)

var DefaultModels = []string{"gemini-2.5-flash", "gemini-1.5-flash", "gemini-1.5-flash-latest"}

type Config struct {
	APIKey string
	// Primary is tried first; Fallbacks follow in order. Duplicates are dropped.
	Primary   string
	Fallbacks []string
	Endpoint  string
}

// ModelCaller sends one prompt to one model.
type ModelCaller interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
	Close() error
}

type Client struct {
	log    *logger.Logger
	caller ModelCaller
	models []string
}

// New dials the SDK client. It returns ErrNotConfigured without a key.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, pkgerrors.ErrNotConfigured
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	sdk, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewWithCaller(log, &sdkCaller{client: sdk}, ModelList(cfg.Primary, cfg.Fallbacks)), nil
}

func NewWithCaller(log *logger.Logger, caller ModelCaller, models []string) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if len(models) == 0 {
		models = append([]string(nil), DefaultModels...)
	}
	return &Client{log: log.With("service", "GeminiClient"), caller: caller, models: models}
}

// ModelList puts primary first and removes duplicates and blanks.
func ModelList(primary string, fallbacks []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range append([]string{primary}, fallbacks...) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func (c *Client) Models() []string { return append([]string(nil), c.models...) }

func (c *Client) Name() string { return "gemini" }

// Generate returns the first non-empty completion across the model list.
// Every failure moves on to the next model; only cancellation stops early.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range c.models {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c.log.Debug("gemini request", "model", model, "prompt_len", len(prompt))
		text, err := c.caller.GenerateText(ctx, model, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("empty completion")
		}
		if err == nil {
			c.log.Debug("gemini response", "model", model, "sample", logger.Sample(text, 200))
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		lastErr = fmt.Errorf("model %s: %w", model, err)
		if IsModelNotFound(err) {
			c.log.Warn("gemini model not found, trying next", "model", model)
			continue
		}
		c.log.Warn("gemini request failed, trying next", "model", model, "error", err)
	}
	if lastErr == nil {
		lastErr = errors.New("no models configured")
	}
	return "", fmt.Errorf("gemini: %w: %v", pkgerrors.ErrProvidersExhausted, lastErr)
}

func (c *Client) Close() error {
	if c == nil || c.caller == nil {
		return nil
	}
	return c.caller.Close()
}

// IsModelNotFound recognises the 404-equivalent from REST, gRPC and raw HTTP errors.
func IsModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.NotFound {
		return true
	}
	return httpx.IsNotFound(err)
}

type sdkCaller struct {
	client *genai.Client
}

func (s *sdkCaller) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	resp, err := s.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

func (s *sdkCaller) Close() error { return s.client.Close() }

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
