package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/modules/generation/prompts"
	"github.com/yungbote/studypath/internal/modules/generation/quizgen"
)

// Quiz builds the assessment quiz from the corpus. The local heuristic
// ends the chain, so only cancellation produces an error.
func (g *Generator) Quiz(ctx context.Context, corpus string) ([]study.QuizItem, error) {
	n := g.cfg.QuizCount
	var strategies []Strategy[[]study.QuizItem]
	if g.cloud != nil {
		strategies = append(strategies, Attempt("cloud", func(ctx context.Context) ([]study.QuizItem, error) {
			return g.cloudQuiz(ctx, corpus, n)
		}))
	}
	if g.local != nil {
		strategies = append(strategies, Attempt("local", func(ctx context.Context) ([]study.QuizItem, error) {
			return g.localQuiz(ctx, corpus, n)
		}))
	}
	strategies = append(strategies, Attempt("heuristic", func(ctx context.Context) ([]study.QuizItem, error) {
		return quizgen.Heuristic(corpus, n), nil
	}))
	return FirstSuccess(ctx, g.log, "quiz", strategies...)
}

func (g *Generator) cloudQuiz(ctx context.Context, corpus string, n int) ([]study.QuizItem, error) {
	prompt, err := prompts.Build(prompts.PromptQuizCloud, prompts.Input{
		Material: prompts.Truncate(corpus, prompts.MaterialLimitCloud),
		Count:    n,
	})
	if err != nil {
		return nil, err
	}
	raw, err := g.generate(ctx, g.cloud, "quiz", prompt)
	if err != nil {
		return nil, err
	}
	items := capQuiz(quizgen.FromText(raw, corpus), n)
	if len(items) == 0 {
		return nil, ErrUnusable
	}
	if g.local == nil {
		return items, nil
	}
	echoed, err := g.echoQuiz(ctx, items, corpus)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.log.Warn("local quiz echo failed, keeping cloud items", "error", err)
		return items, nil
	}
	if len(echoed) == 0 {
		g.log.Warn("local quiz echo unusable, keeping cloud items")
		return items, nil
	}
	return capQuiz(echoed, n), nil
}

// echoQuiz passes cloud items through the local provider so both paths
// produce the same canonical shape.
func (g *Generator) echoQuiz(ctx context.Context, items []study.QuizItem, corpus string) ([]study.QuizItem, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Build(prompts.PromptQuizEcho, prompts.Input{ItemsJSON: string(b)})
	if err != nil {
		return nil, err
	}
	raw, err := g.generate(ctx, g.local, "quiz_echo", prompt)
	if err != nil {
		return nil, err
	}
	return quizgen.FromText(raw, corpus), nil
}

func (g *Generator) localQuiz(ctx context.Context, corpus string, n int) ([]study.QuizItem, error) {
	prompt, err := prompts.Build(prompts.PromptQuizLocal, prompts.Input{
		Material: prompts.Truncate(corpus, prompts.MaterialLimitLocal),
		Count:    n,
	})
	if err != nil {
		return nil, err
	}
	raw, err := g.generate(ctx, g.local, "quiz", prompt)
	if err != nil {
		return nil, err
	}
	items := capQuiz(quizgen.FromText(raw, corpus), n)
	if len(items) == 0 {
		return nil, ErrUnusable
	}
	return items, nil
}

// TopicQuiz builds a short quiz for one checkpoint. Never fails except on
// cancellation.
func (g *Generator) TopicQuiz(ctx context.Context, topic string, n int) ([]study.QuizItem, error) {
	if n <= 0 {
		n = 1
	}
	var strategies []Strategy[[]study.QuizItem]
	if g.cloud != nil {
		strategies = append(strategies, Attempt("cloud", func(ctx context.Context) ([]study.QuizItem, error) {
			prompt, err := prompts.Build(prompts.PromptTopicMiniQuiz, prompts.Input{Topic: topic, Count: n})
			if err != nil {
				return nil, err
			}
			raw, err := g.generate(ctx, g.cloud, "topic_quiz", prompt)
			if err != nil {
				return nil, err
			}
			items := capQuiz(quizgen.FromText(raw, ""), n)
			if len(items) == 0 {
				return nil, ErrUnusable
			}
			return items, nil
		}))
	}
	strategies = append(strategies, Attempt("template", func(ctx context.Context) ([]study.QuizItem, error) {
		return quizgen.MiniQuizFallback(topic), nil
	}))
	return FirstSuccess(ctx, g.log, "topic_quiz", strategies...)
}

func capQuiz(items []study.QuizItem, n int) []study.QuizItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
