package orchestrator

import (
	"context"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/checkpoints"
	"github.com/yungbote/studypath/internal/modules/generation/prompts"
)

// Checkpoints derives the ordered roadmap from the corpus.
func (g *Generator) Checkpoints(ctx context.Context, corpus string) ([]study.Checkpoint, error) {
	n := g.cfg.CheckpointCount
	var strategies []Strategy[[]study.Checkpoint]
	if g.cloud != nil {
		strategies = append(strategies, Attempt("cloud", func(ctx context.Context) ([]study.Checkpoint, error) {
			return g.providerCheckpoints(ctx, g.cloud, corpus, prompts.MaterialLimitCloud, n)
		}))
	}
	if g.local != nil {
		strategies = append(strategies, Attempt("local", func(ctx context.Context) ([]study.Checkpoint, error) {
			return g.providerCheckpoints(ctx, g.local, corpus, prompts.MaterialLimitLocal, n)
		}))
	}
	strategies = append(strategies, Attempt("heuristic", func(ctx context.Context) ([]study.Checkpoint, error) {
		return checkpoints.Heuristic(corpus, n), nil
	}))
	return FirstSuccess(ctx, g.log, "checkpoints", strategies...)
}

func (g *Generator) providerCheckpoints(ctx context.Context, p TextGenerator, corpus string, limit, n int) ([]study.Checkpoint, error) {
	prompt, err := prompts.Build(prompts.PromptCheckpoints, prompts.Input{
		Material: prompts.Truncate(corpus, limit),
		Count:    n,
	})
	if err != nil {
		return nil, err
	}
	raw, err := g.generate(ctx, p, "checkpoints", prompt)
	if err != nil {
		return nil, err
	}
	cps := checkpoints.FromText(raw)
	if len(cps) == 0 {
		return nil, ErrUnusable
	}
	if len(cps) > n {
		cps = cps[:n]
	}
	return cps, nil
}
