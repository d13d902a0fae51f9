package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"plbatch/internal/census"
	"plbatch/internal/enumerate"
	"plbatch/internal/ledger"
	"plbatch/internal/loader"
	"plbatch/internal/output"
)

// Sequencer executes one jurisdiction's batches in dependency order:
//
//	(a) state geometry
//	(b) tribal-area geometry (vintage allow-list applies)
//	(c) substate geometry, gated on (a) for the same vintage
//	(d) population tables, gated on the same-vintage, same-level geometry
//
// A prerequisite failure flags the dependent unit instead of invoking it; the
// sequence never aborts on unit failures, only on machinery faults.
type Sequencer struct {
	Invoker loader.Invoker
	Ledger  *ledger.Ledger
	Out     *output.Manager
	Resume  bool

	// Vintages, Levels, and Tables describe the load plan. Levels covers the
	// geometry levels to load; Tables the population tables (empty disables
	// the population phase). Exclude carries plan-file exclusions into
	// enumeration.
	Vintages []string
	Levels   []string
	Tables   []string
	Exclude  []enumerate.Exclusion

	// PopulationOnly runs only the population phase, pairing against
	// geometry already in the ledger.
	PopulationOnly bool

	// Verify, when set, is called once per vintage before any unit runs and
	// must confirm the namespace and its geo layers exist. A verification
	// error is a machinery fault.
	Verify func(ctx context.Context, namespace string, levels []string) error
}

type batch struct {
	name  string
	units []enumerate.UnitKey
}

// Run executes all batches for one jurisdiction and returns the merged
// result.
func (s *Sequencer) Run(ctx context.Context, fips string) (*RunResult, error) {
	if err := s.verifyStore(ctx); err != nil {
		return &RunResult{Status: StatusAllSucceeded}, err
	}

	runID := uuid.NewString()
	total := &RunResult{RunID: runID, Status: StatusAllSucceeded}

	batches := s.batches(fips)
	units := 0
	for _, b := range batches {
		units += len(b.units)
	}
	s.write(output.Event{Type: "run.started", RunID: runID, Units: units})

	for _, b := range batches {
		if len(b.units) == 0 {
			continue
		}
		s.write(output.Event{Type: "batch.started", Phase: b.name, Units: len(b.units), RunID: runID})
		res, err := s.driver(runID).Run(ctx, b.units)
		total.merge(res)
		if err != nil {
			s.write(output.Event{Type: "run.finished", RunID: runID, ExitCode: ExitFault})
			return total, err
		}
		s.write(output.Event{Type: "batch.finished", Phase: b.name, RunID: runID})
	}

	s.finish(total)
	return total, nil
}

// RunUnits executes an explicit unit sequence (the retry path) under the same
// prerequisite gating as a full run.
func (s *Sequencer) RunUnits(ctx context.Context, units []enumerate.UnitKey) (*RunResult, error) {
	if err := s.verifyStore(ctx); err != nil {
		return &RunResult{Status: StatusAllSucceeded}, err
	}

	runID := uuid.NewString()
	s.write(output.Event{Type: "run.started", RunID: runID, Units: len(units)})

	total, err := s.driver(runID).Run(ctx, units)
	if err != nil {
		s.write(output.Event{Type: "run.finished", RunID: runID, ExitCode: ExitFault})
		return total, err
	}
	s.finish(total)
	return total, nil
}

// Units returns the unit sequence a Run for the jurisdiction would drive, in
// execution order. Used for plan previews.
func (s *Sequencer) Units(fips string) []enumerate.UnitKey {
	var units []enumerate.UnitKey
	for _, b := range s.batches(fips) {
		units = append(units, b.units...)
	}
	return units
}

func (s *Sequencer) driver(runID string) *Driver {
	return &Driver{
		Invoker: s.Invoker,
		Ledger:  s.Ledger,
		Out:     s.Out,
		Resume:  s.Resume,
		Gate:    s.unitGate,
		RunID:   runID,
	}
}

func (s *Sequencer) finish(total *RunResult) {
	s.write(output.Event{
		Type:     "run.finished",
		RunID:    total.RunID,
		ExitCode: ExitCodeForRun(false, total.Status == StatusPartialFailure),
	})
}

func (s *Sequencer) verifyStore(ctx context.Context) error {
	if s.Verify == nil {
		return nil
	}
	for _, vintage := range s.Vintages {
		ns := census.Namespace(vintage)
		if err := s.Verify(ctx, ns, s.Levels); err != nil {
			return fmt.Errorf("store verification for %s: %w", ns, err)
		}
	}
	return nil
}

func (s *Sequencer) batches(fips string) []batch {
	var stateLevels, tribalLevels, substateLevels []string
	for _, level := range s.Levels {
		switch level {
		case census.LevelState:
			stateLevels = append(stateLevels, level)
		case census.LevelAIANNH:
			tribalLevels = append(tribalLevels, level)
		default:
			substateLevels = append(substateLevels, level)
		}
	}

	plan := func(levels, tables []string) []enumerate.UnitKey {
		return enumerate.Plan{
			Jurisdictions: []string{fips},
			Vintages:      s.Vintages,
			Levels:        levels,
			Tables:        tables,
			Exclude:       s.Exclude,
		}.Units()
	}

	// With no tables configured the population phase is absent; enumerating
	// with an empty table list would yield geometry keys again.
	population := batch{name: "population-tables"}
	if len(s.Tables) > 0 {
		population.units = plan(s.Levels, s.Tables)
	}
	if s.PopulationOnly {
		return []batch{population}
	}
	return []batch{
		{name: "state-geometry", units: plan(stateLevels, nil)},
		{name: "tribal-geometry", units: plan(tribalLevels, nil)},
		{name: "substate-geometry", units: plan(substateLevels, nil)},
		population,
	}
}

// unitGate enforces inter-batch dependencies per unit. State and tribal-area
// geometries have no prerequisites; substate geometry requires the
// same-vintage state geometry; a population table requires its same-vintage,
// same-level geometry.
func (s *Sequencer) unitGate(unit enumerate.UnitKey) error {
	if unit.IsPopulation() {
		return s.requireLoaded(unit.GeometryKey(), "geometry")
	}
	switch unit.Level {
	case census.LevelState, census.LevelAIANNH:
		return nil
	default:
		state := enumerate.UnitKey{FIPS: unit.FIPS, Vintage: unit.Vintage, Level: census.LevelState}
		return s.requireLoaded(state, "state geometry")
	}
}

func (s *Sequencer) requireLoaded(prereq enumerate.UnitKey, what string) error {
	ok, err := s.Ledger.HasSucceeded(prereq)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s not loaded", what, prereq)
	}
	return nil
}

func (s *Sequencer) write(v any) {
	if s.Out == nil {
		return
	}
	_ = s.Out.Write(v)
}
