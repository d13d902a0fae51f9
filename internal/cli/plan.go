package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"plbatch/internal/census"
	"plbatch/internal/engine"
	"plbatch/internal/enumerate"
	"plbatch/internal/flags"
)

var planQuiet bool
var planSources bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the unit sequence a load would run",
	Long: `Enumerate the (jurisdiction × vintage × level [× table]) units the current
plan would load, in execution order, without invoking the loader or touching
the ledger. Datasets the Census never published are dropped, exactly as the
load commands drop them.

Examples:
  plbatch plan --fips 26
  plbatch plan --fips 26 --vintages 2020 --levels vtd --sources
  plbatch plan --fips 26 --quiet > units.txt
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			fatal(err)
		}
		juris, err := jurisdictionArgs(args)
		if err != nil {
			fatal(err)
		}

		// Mirror the load sequence exactly: geometry batches in dependency
		// order, then population tables, per jurisdiction.
		seq := &engine.Sequencer{
			Vintages: cfg.Targeting.Vintages,
			Levels:   cfg.Levels(),
			Tables:   cfg.Tables(),
			Exclude:  cfg.Plan.Exclude,
		}
		var units []enumerate.UnitKey
		for _, fips := range juris {
			units = append(units, seq.Units(fips)...)
		}
		out := cmd.OutOrStdout()

		if planQuiet {
			for _, u := range units {
				fmt.Fprintln(out, u.String())
			}
			return
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		currentFIPS := ""
		for _, u := range units {
			if u.FIPS != currentFIPS {
				currentFIPS = u.FIPS
				name, _ := census.JurisdictionName(u.FIPS)
				fmt.Fprintf(out, "%s\n", bold(fmt.Sprintf("%s %s", u.FIPS, name)))
			}
			fmt.Fprintf(out, "  %s\n", u.String())
			if planSources {
				fmt.Fprintf(out, "    %s\n", faint(sourceURL(u)))
			}
		}
		fmt.Fprintf(out, "%d units\n", len(units))
	},
}

// sourceURL names the dataset the loader would fetch for a unit: the TIGER
// shapefile for geometry units, the decennial API for population units.
func sourceURL(u enumerate.UnitKey) string {
	if u.IsPopulation() {
		return census.PopulationSourceURL(u.Vintage)
	}
	url, ok := census.GeometrySourceURL(u.Level, u.Vintage, u.FIPS)
	if !ok {
		return "(no known source)"
	}
	return url
}

func init() {
	rootCmd.AddCommand(planCmd)

	addTargetingFlags(planCmd)
	addPlanFlags(planCmd)
	planCmd.Flags().BoolVar(&planQuiet, flags.FlagQuiet, false, "Print bare unit keys only, one per line")
	planCmd.Flags().BoolVar(&planSources, flags.FlagSources, false, "Print the upstream source URL under each unit")
}
