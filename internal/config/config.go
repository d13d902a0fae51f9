package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"plbatch/internal/census"
	"plbatch/internal/enumerate"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect load
	// behavior, keep the CLI flag wiring in internal/cli in sync.
	Targeting Targeting
	Plan      Plan
	Loader    Loader
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Jurisdictions is the list of 2-digit FIPS codes to load (see --fips and
	// the positional arguments of per-batch commands). Empty means every
	// known jurisdiction.
	Jurisdictions []string

	// Vintages is the list of census years to load (see --vintages).
	// Empty means all supported vintages.
	Vintages []string
}

type Plan struct {
	// Name selects a built-in level plan (see --plan).
	// Allowed values: core (everything but block geometry), full.
	Name string

	// File points at a YAML plan file overriding levels/tables/exclusions
	// (see --plan-file). Mutually exclusive with explicit --levels/--tables.
	File string

	// Levels overrides the plan's geometry levels (see --levels).
	Levels []string

	// Tables overrides the population tables to load (see --tables).
	Tables []string

	// Exclude suppresses matching units; populated from the plan file.
	Exclude []enumerate.Exclusion
}

type Loader struct {
	// Path is the per-unit loader binary (see --loader). Defaults to
	// "pl-load" resolved via $PATH.
	Path string

	// StoreDSN is the store's PostgreSQL DSN used for pre-run existence
	// verification (see --store-dsn; falls back to PLBATCH_STORE_DSN).
	StoreDSN string

	// EnvFile is an optional .env file loaded before reading environment
	// configuration (see --env-file).
	EnvFile string

	// VerifyStore enables the fail-fast namespace/layer existence check
	// (see --verify-store). Requires a DSN.
	VerifyStore bool
}

type Output struct {
	// LogRoot is the run's log/ledger directory namespace (see --log-root).
	LogRoot string

	// ConsoleFormat controls the human-facing console sink format
	// (see --console-format). Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterOutcome filters console output by outcome
	// (see --console-filter-outcome). Allowed values: success, failure, skipped.
	ConsoleFilterOutcome []string

	// Report writes a Markdown run report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, inferred from the extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Workers bounds how many jurisdictions run at once (see --workers).
	// Each jurisdiction's driver instance stays strictly sequential.
	Workers int

	// Resume skips units the ledger already records as succeeded (see --resume).
	Resume bool

	// Verbose makes the text console print each loader invocation with its
	// full argv (see --verbose).
	Verbose bool
}

func New() *Config {
	return &Config{
		Plan: Plan{
			Name: "core",
		},
		Loader: Loader{
			Path: "pl-load",
		},
		Output: Output{
			LogRoot:       "logs",
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Workers: 1,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Targeting.Jurisdictions = splitCommaList(c.Targeting.Jurisdictions)
	c.Targeting.Vintages = splitCommaList(c.Targeting.Vintages)
	c.Plan.Levels = splitCommaList(c.Plan.Levels)
	c.Plan.Tables = splitCommaList(c.Plan.Tables)

	for i, fips := range c.Targeting.Jurisdictions {
		norm, err := NormalizeFIPS(fips)
		if err != nil {
			return fmt.Errorf("invalid --%s value: %w", "fips", err)
		}
		c.Targeting.Jurisdictions[i] = norm
	}

	if len(c.Targeting.Vintages) == 0 {
		c.Targeting.Vintages = census.Vintages
	}
	for _, vintage := range c.Targeting.Vintages {
		if !census.ValidVintage(vintage) {
			return fmt.Errorf("unsupported vintage: %s (must be one of: %s)", vintage, strings.Join(census.Vintages, ", "))
		}
	}

	// Plan validation
	c.Plan.Name = normalizeEnumValue(c.Plan.Name)
	if c.Plan.Name == "" {
		c.Plan.Name = "core"
	}
	if c.Plan.Name != "core" && c.Plan.Name != "full" {
		return fmt.Errorf("unsupported --plan: %s (must be one of: core, full)", c.Plan.Name)
	}
	if c.Plan.File != "" && (len(c.Plan.Levels) > 0 || len(c.Plan.Tables) > 0) {
		return errors.New("--plan-file and explicit --levels/--tables are mutually exclusive")
	}
	if c.Plan.File != "" {
		spec, err := LoadPlanFile(c.Plan.File)
		if err != nil {
			return err
		}
		c.Plan.Levels = spec.Levels
		c.Plan.Tables = spec.Tables
		c.Plan.Exclude = spec.Exclude
		if len(spec.Vintages) > 0 {
			c.Targeting.Vintages = spec.Vintages
			for _, vintage := range c.Targeting.Vintages {
				if !census.ValidVintage(vintage) {
					return fmt.Errorf("plan file %s: unsupported vintage %s", c.Plan.File, vintage)
				}
			}
		}
	}
	for i, level := range c.Plan.Levels {
		c.Plan.Levels[i] = normalizeEnumValue(level)
	}
	for i, table := range c.Plan.Tables {
		c.Plan.Tables[i] = strings.ToUpper(strings.TrimSpace(table))
	}
	for _, level := range c.Plan.Levels {
		if !census.ValidLevel(level) {
			return fmt.Errorf("unsupported level: %s (must be one of: %s)", level, strings.Join(census.Levels(), ", "))
		}
	}
	for _, table := range c.Plan.Tables {
		if !census.ValidTable(table) {
			return fmt.Errorf("unsupported table: %s (must be one of: %s)", table, strings.Join(census.Tables, ", "))
		}
	}

	// Loader validation
	if strings.TrimSpace(c.Loader.Path) == "" {
		return errors.New("--loader must not be empty")
	}

	// Output validation
	if strings.TrimSpace(c.Output.LogRoot) == "" {
		return errors.New("--log-root must not be empty")
	}
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}
	for i, outcome := range c.Output.ConsoleFilterOutcome {
		v := normalizeEnumValue(outcome)
		if v != "success" && v != "failure" && v != "skipped" {
			return fmt.Errorf("unsupported --console-filter-outcome: %s (must be one of: success, failure, skipped)", outcome)
		}
		c.Output.ConsoleFilterOutcome[i] = v
	}
	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}
	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Workers <= 0 {
		return errors.New("--workers must be >= 1")
	}

	return nil
}

// Jurisdictions returns the targeted jurisdictions, defaulting to the full
// roster.
func (c *Config) Jurisdictions() []string {
	if len(c.Targeting.Jurisdictions) > 0 {
		return c.Targeting.Jurisdictions
	}
	return census.Jurisdictions()
}

// Levels returns the plan's geometry levels: the explicit override when set,
// otherwise the built-in plan.
func (c *Config) Levels() []string {
	if len(c.Plan.Levels) > 0 {
		return c.Plan.Levels
	}
	if c.Plan.Name == "full" {
		return census.Levels()
	}
	return census.CoreLevels()
}

// Tables returns the population tables to load, defaulting to all PL 94-171
// tables.
func (c *Config) Tables() []string {
	if len(c.Plan.Tables) > 0 {
		return c.Plan.Tables
	}
	return census.Tables
}

// NormalizeFIPS validates a jurisdiction code, zero-padding single digits.
func NormalizeFIPS(raw string) (string, error) {
	fips := strings.TrimSpace(raw)
	if len(fips) == 1 {
		fips = "0" + fips
	}
	if len(fips) != 2 {
		return "", fmt.Errorf("%q is not a 2-digit FIPS code", raw)
	}
	if _, err := strconv.Atoi(fips); err != nil {
		return "", fmt.Errorf("%q is not a 2-digit FIPS code", raw)
	}
	if !census.KnownJurisdiction(fips) {
		return "", fmt.Errorf("unknown jurisdiction FIPS code %q", fips)
	}
	return fips, nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
