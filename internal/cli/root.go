package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "plbatch",
	Short: "Bulk-load U.S. Census PL 94-171 data into a namespaced geospatial store",
	Long: `plbatch drives bulk loads of U.S. Census PL 94-171 geographic boundary and
population data. It enumerates the (jurisdiction × vintage × level [× table])
space, invokes an external per-unit loader for each unit, and keeps an
append-only ledger under the log root so interrupted or partially failed runs
can be resumed and retried.

plbatch never parses Census data itself: the per-unit loader owns shapefile
and table ingestion, and plbatch owns sequencing, fault isolation, progress
tracking, and reporting.

Examples:
	# Show available commands and global flags
	plbatch --help

	# Full load for Michigan, resumable
	plbatch load 26 --log-root ./logs --resume

	# Geometry batch for one jurisdiction
	plbatch geo 26 --log-root ./logs

	# Re-run exactly the units that failed last time
	plbatch retry 26 --log-root ./logs

	# Preview the unit sequence without loading anything
	plbatch plan --fips 26 --vintages 2020

Output:
	By default, commands write human-readable output to stdout.
	Structured output is available via --emit/--out (see each command's --help).`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints full loader invocation details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
