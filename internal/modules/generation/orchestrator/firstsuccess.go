// Package orchestrator drives each generation task through an ordered
// list of provider strategies and stops at the first usable result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/studypath/internal/observability"
	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/logger"
)

// ErrUnusable marks a provider response that parsed to no usable records.
// It is treated like any other provider failure.
var ErrUnusable = pkgerrors.ErrNoUsableRecords

// Strategy is one way of producing a task result.
type Strategy[T any] interface {
	Name() string
	Attempt(ctx context.Context) (T, error)
}

type funcStrategy[T any] struct {
	name string
	fn   func(ctx context.Context) (T, error)
}

func (s funcStrategy[T]) Name() string                           { return s.name }
func (s funcStrategy[T]) Attempt(ctx context.Context) (T, error) { return s.fn(ctx) }

// Attempt adapts a function into a Strategy.
func Attempt[T any](name string, fn func(ctx context.Context) (T, error)) Strategy[T] {
	return funcStrategy[T]{name: name, fn: fn}
}

// FirstSuccess tries strategies in order. A failed attempt is logged and
// the next one runs; nil strategies are skipped. Cancellation of ctx stops
// the chain and is returned as is.
func FirstSuccess[T any](ctx context.Context, log *logger.Logger, task string, strategies ...Strategy[T]) (T, error) {
	var zero T
	if log == nil {
		log = logger.Nop()
	}
	var errs []error
	for i, s := range strategies {
		if s == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		spanCtx, span := observability.StartSpan(ctx, "generation."+task,
			attribute.String("generation.task", task),
			attribute.String("generation.strategy", s.Name()),
			attribute.Int("generation.rank", i),
		)
		out, err := s.Attempt(spanCtx)
		observability.EndSpan(span, err)
		if err == nil {
			if i > 0 {
				log.Info("generation fallback used", "task", task, "strategy", s.Name(), "rank", i)
			}
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		log.Warn("generation strategy failed", "task", task, "strategy", s.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return zero, fmt.Errorf("%s: %w", task, pkgerrors.ErrProvidersExhausted)
	}
	return zero, fmt.Errorf("%s: %w: %w", task, pkgerrors.ErrProvidersExhausted, errors.Join(errs...))
}
