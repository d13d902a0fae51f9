package cli

import (
	"context"

	"github.com/spf13/cobra"

	"plbatch/internal/engine"
	"plbatch/internal/flags"
)

var geoCmd = &cobra.Command{
	Use:   "geo <fips>",
	Short: "Load geometry batches for one jurisdiction",
	Long: `Load the geometry batches (state, tribal-area, substate) for one
jurisdiction. Population tables are not touched; pair with "plbatch pop"
once geometries are in.

Exit codes:
	0 = every enumerated unit succeeded
	1 = at least one unit failed (run completed)
	2 = fatal: the loader could not be invoked, or setup failed

Examples:
  plbatch geo 26 --log-root ./logs
  plbatch geo 26 --levels state,county --vintages 2020 --resume
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

		seq := rt.sequencer(cfg)
		seq.Tables = nil // geometry only
		res, runErr := seq.Run(ctx, juris[0])
		finishRun(rt, []*engine.RunResult{res}, runErr)
	},
}

func init() {
	rootCmd.AddCommand(geoCmd)

	geoCmd.Flags().StringSliceVar(&cfg.Targeting.Vintages, flags.FlagVintages, nil, "Census vintages to load: 2010|2020 (repeatable; default: both)")
	addPlanFlags(geoCmd)
	addLoaderFlags(geoCmd)
	addOutputFlags(geoCmd)
	geoCmd.Flags().BoolVar(&cfg.Runtime.Resume, flags.FlagResume, false, "Skip units the ledger already records as succeeded")
}
