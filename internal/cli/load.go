package cli

import (
	"context"

	"github.com/spf13/cobra"

	"plbatch/internal/engine"
	"plbatch/internal/flags"
)

var loadCmd = &cobra.Command{
	Use:   "load [fips...]",
	Short: "Run the full load sequence for one or more jurisdictions",
	Long: `Run the full load sequence for one or more jurisdictions.

For each jurisdiction, batches run in dependency order: state geometry,
tribal-area geometry (where the vintage's allow-list includes the
jurisdiction), substate geometry, and finally the PL 94-171 population
tables. Population units are invoked only after their same-vintage,
same-level geometry unit has succeeded; units whose prerequisite failed are
flagged as failures without being invoked.

With no positional arguments, every known jurisdiction is loaded. With
--workers > 1, jurisdictions run in independent driver instances over
disjoint ledger scopes; each instance stays strictly sequential.

Resumption:
	--resume consults the ledger under --log-root and skips every unit already
	recorded as succeeded, so a killed run can be restarted with the same
	arguments.

Exit codes:
	0 = every enumerated unit succeeded
	1 = at least one unit failed (run completed; see failed_units.log)
	2 = fatal: the loader could not be invoked, or setup failed

Examples:
  # Core load (no block geometry) for Michigan, both vintages
  plbatch load 26 --log-root ./logs

  # Full load including block geometry, 2020 only, resumable
  plbatch load 26 --plan full --vintages 2020 --log-root ./logs --resume

  # Four jurisdictions, two at a time, machine-readable event stream
  plbatch load 26 27 55 19 --workers 2 --no-console --emit ndjson
`,
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

		results, runErr := engine.FanOut(ctx, juris, cfg.Runtime.Workers, func(ctx context.Context, fips string) (*engine.RunResult, error) {
			return rt.sequencer(cfg).Run(ctx, fips)
		})
		finishRun(rt, results, runErr)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	addTargetingFlags(loadCmd)
	addPlanFlags(loadCmd)
	addLoaderFlags(loadCmd)
	addOutputFlags(loadCmd)
	loadCmd.Flags().IntVar(&cfg.Runtime.Workers, flags.FlagWorkers, 1, "Jurisdictions loaded concurrently; each stays sequential internally (default: 1)")
	loadCmd.Flags().BoolVar(&cfg.Runtime.Resume, flags.FlagResume, false, "Skip units the ledger already records as succeeded")
}

func addTargetingFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&cfg.Targeting.Jurisdictions, flags.FlagJurisdictions, nil, "Jurisdiction FIPS codes (repeatable; comma-separated accepted; default: all)")
	cmd.Flags().StringSliceVar(&cfg.Targeting.Vintages, flags.FlagVintages, nil, "Census vintages to load: 2010|2020 (repeatable; default: both)")
}

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Plan.Name, flags.FlagPlan, "core", "Built-in level plan: core|full (core excludes block geometry)")
	cmd.Flags().StringVar(&cfg.Plan.File, flags.FlagPlanFile, "", "YAML plan file overriding levels/tables/exclusions")
	cmd.Flags().StringSliceVar(&cfg.Plan.Levels, flags.FlagLevels, nil, "Geometry levels to load (repeatable; default: per --plan)")
	cmd.Flags().StringSliceVar(&cfg.Plan.Tables, flags.FlagTables, nil, "Population tables to load: P1|P2|P3|P4 (repeatable; default: all)")
}

func addLoaderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Loader.Path, flags.FlagLoader, "pl-load", "Per-unit loader binary (path or $PATH name)")
	cmd.Flags().StringVar(&cfg.Loader.StoreDSN, flags.FlagStoreDSN, "", "Store PostgreSQL DSN for --verify-store (falls back to PLBATCH_STORE_DSN)")
	cmd.Flags().StringVar(&cfg.Loader.EnvFile, flags.FlagEnvFile, "", "Optional .env file loaded before reading environment configuration")
	cmd.Flags().BoolVar(&cfg.Loader.VerifyStore, flags.FlagVerifyStore, false, "Fail fast if the per-vintage namespace or a geo layer is missing from the store")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Output.LogRoot, flags.FlagLogRoot, "logs", "Log/ledger root directory")
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	cmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterOutcome, flags.FlagConsoleFilterOutcome, nil, "Filter console output by outcome (success, failure, skipped). Comma-separated.")
	cmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown run report to this path")
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	cmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
}
