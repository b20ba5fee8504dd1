package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/logger"
	"github.com/yungbote/studypath/internal/platform/youtube"
)

// TextGenerator is a generative provider that answers a prompt with text.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// LocalGenerator is the local inference provider.
type LocalGenerator interface {
	TextGenerator
	Probe(ctx context.Context) error
}

type Config struct {
	QuizCount        int
	CheckpointCount  int
	VideosPerTopic   int
	VideoConcurrency int
	// Denylist holds regular expressions matched case-insensitively
	// against video URLs and titles.
	Denylist []string
}

func DefaultDenylist() []string {
	return []string{`rick\s*astley`, `never\s*gon+a\s*give\s*you\s*up`}
}

// Generator runs every generation task. Cloud, local and searchers are
// optional; a missing provider is skipped.
type Generator struct {
	log       *logger.Logger
	cloud     TextGenerator
	local     LocalGenerator
	searchers []youtube.Searcher
	cfg       Config
	deny      []*regexp.Regexp
}

func New(log *logger.Logger, cloud TextGenerator, local LocalGenerator, searchers []youtube.Searcher, cfg Config) (*Generator, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.QuizCount <= 0 {
		cfg.QuizCount = 3
	}
	if cfg.CheckpointCount <= 0 {
		cfg.CheckpointCount = 6
	}
	if cfg.VideosPerTopic <= 0 {
		cfg.VideosPerTopic = 3
	}
	if cfg.VideoConcurrency <= 0 {
		cfg.VideoConcurrency = 4
	}
	if cfg.Denylist == nil {
		cfg.Denylist = DefaultDenylist()
	}
	deny := make([]*regexp.Regexp, 0, len(cfg.Denylist))
	for _, pat := range cfg.Denylist {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, fmt.Errorf("video denylist %q: %w", pat, err)
		}
		deny = append(deny, re)
	}
	kept := make([]youtube.Searcher, 0, len(searchers))
	for _, s := range searchers {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Generator{
		log:       log.With("service", "Generator"),
		cloud:     cloud,
		local:     local,
		searchers: kept,
		cfg:       cfg,
		deny:      deny,
	}, nil
}

// ProbeLocal checks the local provider's configured model.
func (g *Generator) ProbeLocal(ctx context.Context) error {
	if g.local == nil {
		return fmt.Errorf("local provider: %w", pkgerrors.ErrNotConfigured)
	}
	return g.local.Probe(ctx)
}

// PingCloud returns the cloud provider's raw reply, or "" on any failure.
func (g *Generator) PingCloud(ctx context.Context, message string) string {
	if g.cloud == nil {
		return ""
	}
	out, err := g.cloud.Generate(ctx, message)
	if err != nil {
		g.log.Warn("cloud ping failed", "error", err)
		return ""
	}
	return out
}

// generate calls p and logs prompt size and a response sample.
func (g *Generator) generate(ctx context.Context, p TextGenerator, task, prompt string) (string, error) {
	g.log.Debug("provider call", "task", task, "provider", p.Name(), "prompt_len", len(prompt))
	out, err := p.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	g.log.Debug("provider reply", "task", task, "provider", p.Name(), "sample", logger.Sample(out, 200))
	return out, nil
}
