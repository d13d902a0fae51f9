package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"plbatch/internal/engine"
)

var retryCmd = &cobra.Command{
	Use:   "retry <fips>",
	Short: "Re-run the units that previously failed for a jurisdiction",
	Long: `Re-run exactly the retry-eligible units recorded in the jurisdiction's
failed_units.log: failed keys whose most recent ledger outcome is still
failure. Units that later succeeded are not re-invoked. Prerequisite gating
still applies, so a population unit whose geometry is still missing stays
flagged rather than being invoked.

Exit codes:
	0 = every retried unit succeeded (or nothing was eligible)
	1 = at least one retried unit failed again
	2 = fatal: the loader could not be invoked, or setup failed

Examples:
  plbatch retry 26 --log-root ./logs
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			fatal(err)
		}
		juris, err := jurisdictionArgs(args)
		if err != nil {
			fatal(err)
		}

		ctx := context.Background()
		rt, err := setupRuntime(ctx, cfg)
		if err != nil {
			fatal(err)
		}

		units, err := rt.ledger.Failures(juris[0])
		if err != nil {
			rt.close()
			fatal(err)
		}
		if len(units) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no retry-eligible units for %s\n", juris[0])
			finishRun(rt, nil, nil)
			return
		}

		seq := rt.sequencer(cfg)
		seq.Resume = true // a key may have succeeded since the log line was written
		res, runErr := seq.RunUnits(ctx, units)
		finishRun(rt, []*engine.RunResult{res}, runErr)
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)

	addLoaderFlags(retryCmd)
	addOutputFlags(retryCmd)
}
