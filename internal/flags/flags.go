package flags

// Package flags defines canonical CLI flag names shared across the CLI.
// Keeping these as constants helps avoid drift between Cobra flag wiring and
// other code paths that need to reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Targeting
	FlagJurisdictions = "fips"
	FlagVintages      = "vintages"

	// Plan
	FlagPlan     = "plan"
	FlagPlanFile = "plan-file"
	FlagLevels   = "levels"
	FlagTables   = "tables"

	// Loader / store
	FlagLoader      = "loader"
	FlagStoreDSN    = "store-dsn"
	FlagEnvFile     = "env-file"
	FlagVerifyStore = "verify-store"

	// Output
	FlagLogRoot              = "log-root"
	FlagConsoleFormat        = "console-format"
	FlagConsoleFilterOutcome = "console-filter-outcome"
	FlagReport               = "report"
	FlagOut                  = "out"
	FlagOutFormat            = "out-format"
	FlagEmit                 = "emit"
	FlagNoConsole            = "no-console"

	// Runtime
	FlagWorkers = "workers"
	FlagResume  = "resume"

	// Plan preview
	FlagQuiet   = "quiet"
	FlagSources = "sources"
)
