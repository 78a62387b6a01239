package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll runs independent requests with at most parallelism invocations at
// a time. The first failure cancels the requests that have not finished;
// results of failed or cancelled requests are nil.
func RunAll(ctx context.Context, d *Driver, reqs []Request, parallelism int) ([]*Result, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	results := make([]*Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := d.Run(ctx, req)
			if err != nil {
				return err
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	return results, nil
}
