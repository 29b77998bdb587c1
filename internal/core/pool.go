package core

import "golang.org/x/sync/errgroup"

// validateParallel validates rows on up to workers goroutines and returns
// the outcomes in the same order as rows. Every goroutine has returned by
// the time it does.
func validateParallel(v *rowValidator, rows []*Row, workers int) []*Outcome {
	out := make([]*Outcome, len(rows))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, row := range rows {
		g.Go(func() error {
			out[i] = v.validate(row)
			return nil
		})
	}
	_ = g.Wait() // validate never fails

	return out
}
