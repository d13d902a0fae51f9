package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Exit code contract (per batch command):
// 0 = every enumerated unit succeeded
// 1 = at least one unit failed (run completed)
// 2 = fatal: invocation-machinery fault, the run aborted
const (
	ExitClean   = 0
	ExitPartial = 1
	ExitFault   = 2
)

func ExitCodeForRun(fault, partial bool) int {
	if fault {
		return ExitFault
	}
	if partial {
		return ExitPartial
	}
	return ExitClean
}

// FanOut runs one independent driver instance per jurisdiction. Instances
// share nothing but the log root, and each jurisdiction's ledger scope is its
// own directory, so no cross-instance coordination is needed. Each instance
// remains strictly sequential; workers bounds how many jurisdictions are in
// flight. A machinery fault in any instance cancels the rest.
func FanOut(ctx context.Context, jurisdictions []string, workers int, run func(ctx context.Context, fips string) (*RunResult, error)) ([]*RunResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*RunResult, len(jurisdictions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fips := range jurisdictions {
		i, fips := i, fips
		g.Go(func() error {
			res, err := run(gctx, fips)
			results[i] = res
			return err
		})
	}
	err := g.Wait()
	return results, err
}
