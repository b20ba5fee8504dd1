// Package ollama is the local inference provider.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/pkg/httpx"
	"github.com/yungbote/studypath/internal/platform/logger"
)

const (
	DefaultHost       = "http://localhost:11434"
	DefaultModel      = "gemma3:4b"
	DefaultTimeout    = 8 * time.Second
	DefaultNumPredict = 512
)

// ErrModelUnavailable means the configured model is not advertised by any
// reachable endpoint. The client never substitutes another model.
var ErrModelUnavailable = errors.New("preferred local model not available")

type Config struct {
	// Host is tried first; DefaultHost is always tried after it.
	Host       string
	Model      string
	Timeout    time.Duration
	NumPredict int
	HTTPClient *http.Client
}

type Client struct {
	log        *logger.Logger
	endpoints  []string
	model      string
	timeout    time.Duration
	numPredict int
	httpClient *http.Client
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

func New(log *logger.Logger, cfg Config) *Client {
	if log == nil {
		log = logger.Nop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	numPredict := cfg.NumPredict
	if numPredict <= 0 {
		numPredict = DefaultNumPredict
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		log:        log.With("service", "OllamaClient"),
		endpoints:  Endpoints(cfg.Host),
		model:      model,
		timeout:    timeout,
		numPredict: numPredict,
		httpClient: hc,
	}
}

// Endpoints returns the preferred host followed by the default one.
func Endpoints(host string) []string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	out := []string{}
	if host != "" {
		out = append(out, host)
	}
	if host != DefaultHost {
		out = append(out, DefaultHost)
	}
	return out
}

func (c *Client) Name() string  { return "ollama" }
func (c *Client) Model() string { return c.model }

// Generate sends prompt to each endpoint in turn. Every call carries its
// own deadline; a timeout or error advances to the next endpoint.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Format:  "json",
		Options: generateOptions{Temperature: 0, NumPredict: c.numPredict},
	}
	var lastErr error
	for _, ep := range c.endpoints {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c.log.Debug("ollama request", "endpoint", ep, "model", c.model, "prompt_len", len(prompt))
		var out generateResponse
		err := c.doOnce(ctx, http.MethodPost, ep+"/api/generate", body, &out)
		if err == nil && strings.TrimSpace(out.Error) != "" {
			err = fmt.Errorf("ollama: %s", out.Error)
		}
		if err == nil && strings.TrimSpace(out.Response) == "" {
			err = errors.New("ollama: empty response")
		}
		if err == nil {
			c.log.Debug("ollama response", "endpoint", ep, "sample", logger.Sample(out.Response, 200))
			return out.Response, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.log.Warn("ollama endpoint failed, trying next", "endpoint", ep, "retryable", httpx.IsRetryableError(err), "error", err)
		lastErr = err
	}
	return "", fmt.Errorf("ollama: %w: %v", pkgerrors.ErrProvidersExhausted, lastErr)
}

// Probe checks that the configured model is advertised by a reachable
// endpoint. An exact name match is required.
func (c *Client) Probe(ctx context.Context) error {
	reachable := false
	var lastErr error
	for _, ep := range c.endpoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		var tags tagsResponse
		if err := c.doOnce(ctx, http.MethodGet, ep+"/api/tags", nil, &tags); err != nil {
			c.log.Warn("ollama tags unavailable", "endpoint", ep, "error", err)
			lastErr = err
			continue
		}
		reachable = true
		names := make([]string, 0, len(tags.Models))
		for _, m := range tags.Models {
			names = append(names, m.Name)
			if m.Name == c.model || m.Model == c.model {
				c.log.Info("ollama model resolved", "endpoint", ep, "model", c.model)
				return nil
			}
		}
		c.log.Warn("ollama model missing on endpoint", "endpoint", ep, "model", c.model, "advertised", names)
	}
	if !reachable {
		return fmt.Errorf("ollama unreachable: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrModelUnavailable, c.model)
}

func (c *Client) doOnce(ctx context.Context, method, url string, body any, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(callCtx, method, url, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpx.StatusError{Provider: "ollama", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ollama decode: %w", err)
	}
	return nil
}
