package cli

import (
	"context"

	"github.com/spf13/cobra"

	"plbatch/internal/engine"
	"plbatch/internal/flags"
)

var popCmd = &cobra.Command{
	Use:   "pop <fips>",
	Short: "Load population tables for one jurisdiction",
	Long: `Load the PL 94-171 population tables (P1-P4) for one jurisdiction.

Each population unit is paired with its same-vintage, same-level geometry
unit: the table load is invoked only if the ledger records that geometry as
succeeded. Units whose geometry is absent or failed are flagged as failures
without being invoked; load geometries first ("plbatch geo").

Exit codes:
	0 = every enumerated unit succeeded
	1 = at least one unit failed (run completed)
	2 = fatal: the loader could not be invoked, or setup failed

Examples:
  plbatch pop 26 --log-root ./logs
  plbatch pop 26 --tables P1,P2 --levels county,tract --vintages 2020
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
		seq.PopulationOnly = true
		res, runErr := seq.Run(ctx, juris[0])
		finishRun(rt, []*engine.RunResult{res}, runErr)
	},
}

func init() {
	rootCmd.AddCommand(popCmd)

	popCmd.Flags().StringSliceVar(&cfg.Targeting.Vintages, flags.FlagVintages, nil, "Census vintages to load: 2010|2020 (repeatable; default: both)")
	addPlanFlags(popCmd)
	addLoaderFlags(popCmd)
	addOutputFlags(popCmd)
	popCmd.Flags().BoolVar(&cfg.Runtime.Resume, flags.FlagResume, false, "Skip units the ledger already records as succeeded")
}
