package analysis

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of analysing one image in a batch.
type Result struct {
	Path    string
	Nucleus *Nucleus
	Err     error
}

// AnalyzeBatch analyses paths with at most workers images in flight.
//
// A failure on one image is recorded in its Result and does not stop the
// others. Results are returned in the order of paths. The returned error is
// non-nil only when ctx is cancelled, in which case images not yet started
// are reported with the context's error.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, paths []string, workers int) ([]Result, error) {
	results := make([]Result, len(paths))
	for i, path := range paths {
		results[i].Path = path
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))

	for i, path := range paths {
		if err := gCtx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			n, err := p.Analyze(gCtx, path)
			results[i].Nucleus, results[i].Err = n, err

			return nil
		})
	}

	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	p.logger.Info("batch analysed",
		slog.Int("images", len(paths)),
		slog.Int("failed", failed),
		slog.Int("workers", max(1, workers)))

	return results, ctx.Err()
}

// Nuclei returns the successfully analysed nuclei of a batch, in order.
func Nuclei(results []Result) []*Nucleus {
	out := make([]*Nucleus, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Nucleus != nil {
			out = append(out, r.Nucleus)
		}
	}

	return out
}
