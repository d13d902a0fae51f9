package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"plbatch/internal/enumerate"
	"plbatch/internal/ledger"
	"plbatch/internal/loader"
	"plbatch/internal/output"
)

// Driver walks a unit sequence one unit at a time: invoke, record, continue.
// A unit failure marks the run partial-failure and moves on; an
// invocation-machinery fault aborts the run with an error. Within a run each
// unit completes and is recorded before the next begins, so ledger writes
// never race.
type Driver struct {
	Invoker loader.Invoker
	Ledger  *ledger.Ledger
	Out     *output.Manager

	// Resume skips units the ledger already records as succeeded.
	Resume bool

	// Gate is an optional prerequisite check. A non-nil error flags the unit
	// as failed (dependency violation) without invoking the loader.
	Gate func(unit enumerate.UnitKey) error

	// RunID stamps ledger entries and events. Assigned on first Run if empty.
	RunID string
}

// Run drives the unit sequence in order and returns the aggregate result.
// The returned error is non-nil only for machinery faults (including a
// ledger that cannot be written); the partial results accumulated before the
// fault are still returned.
func (d *Driver) Run(ctx context.Context, units []enumerate.UnitKey) (*RunResult, error) {
	if d.RunID == "" {
		d.RunID = uuid.NewString()
	}
	res := &RunResult{RunID: d.RunID, Status: StatusAllSucceeded}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if d.Resume {
			done, err := d.Ledger.HasSucceeded(unit)
			if err != nil {
				return res, err
			}
			if done {
				res.Skipped++
				d.write(output.Event{Type: "unit.skipped", Unit: unit.String(), RunID: d.RunID, Reason: "already loaded"})
				continue
			}
		}

		if d.Gate != nil {
			if gateErr := d.Gate(unit); gateErr != nil {
				entry := ledger.Entry{
					Unit:    unit,
					Outcome: ledger.OutcomeFailure,
					Message: fmt.Sprintf("prerequisite not satisfied: %v", gateErr),
					RunID:   d.RunID,
				}
				if err := d.Ledger.Record(entry); err != nil {
					return res, err
				}
				res.Attempted++
				res.Status = StatusPartialFailure
				res.Failed = append(res.Failed, unit)
				d.write(entry)
				continue
			}
		}

		d.write(output.Event{Type: "unit.started", Unit: unit.String(), RunID: d.RunID, Args: loader.Args(unit)})

		invRes, err := d.Invoker.Invoke(ctx, unit)
		if err != nil {
			// Machinery fault: there is no meaningful per-unit outcome to
			// record, so the batch aborts here.
			return res, err
		}

		entry := ledger.Entry{
			Unit:       unit,
			Diagnostic: invRes.Diagnostic,
			RunID:      d.RunID,
		}
		if invRes.OK {
			entry.Outcome = ledger.OutcomeSuccess
		} else {
			entry.Outcome = ledger.OutcomeFailure
		}
		if err := d.Ledger.Record(entry); err != nil {
			return res, err
		}

		res.Attempted++
		if invRes.OK {
			res.Succeeded++
		} else {
			res.Status = StatusPartialFailure
			res.Failed = append(res.Failed, unit)
		}
		d.write(entry)
	}

	return res, nil
}

func (d *Driver) write(v any) {
	if d.Out == nil {
		return
	}
	_ = d.Out.Write(v)
}
