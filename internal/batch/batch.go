// Package batch runs one function over many project directories with a
// bounded number of workers. A failing project never stops the others; each
// outcome carries its own error.
package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"draftkit/internal/logging"
)

// Outcome is the result of running over one directory.
type Outcome[T any] struct {
	Dir   string
	Value T
	Err   error
}

// Func processes one project directory.
type Func[T any] func(ctx context.Context, dir string) (T, error)

// Run calls fn for every dir using at most workers goroutines and returns
// outcomes in dirs order. The returned error is non-nil only when ctx is
// cancelled; directories not started by then carry ctx's error.
func Run[T any](ctx context.Context, logger *slog.Logger, workers int, dirs []string, fn Func[T]) ([]Outcome[T], error) {
	if workers < 1 {
		workers = 1
	}
	logger = logging.NewComponentLogger(logger, "batch")
	outcomes := make([]Outcome[T], len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, dir := range dirs {
		outcomes[i].Dir = dir
		if err := gctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			value, err := fn(gctx, dir)
			outcomes[i].Value = value
			outcomes[i].Err = err
			if err != nil {
				logger.Warn("project failed",
					logging.String(logging.FieldEventType, "batch_item_failed"),
					logging.String(logging.FieldProject, dir),
					logging.Error(err),
					logging.String(logging.FieldImpact, "other projects continue"),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, ctx.Err()
}

// Tally counts successes and failures.
func Tally[T any](outcomes []Outcome[T]) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}
