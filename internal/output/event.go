package output

import "plbatch/internal/ledger"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - batch.started
// - unit.started
// - unit.skipped
// - unit.result
// - batch.finished
// - run.finished
//
// JSON mode remains an aggregate of ledger.Entry values.
type Event struct {
	Type string `json:"type"`
	Unit string `json:"unit,omitempty"`
	*ledger.Entry
	Phase    string `json:"phase,omitempty"`
	Units    int    `json:"units,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	// Args is the loader argv for unit.started events.
	Args []string `json:"args,omitempty"`
}

func eventFromEntry(e ledger.Entry) Event {
	// The embedded Entry's run_id is shadowed by Event.RunID, so lift it.
	return Event{Type: "unit.result", Unit: e.Unit.String(), Entry: &e, RunID: e.RunID}
}
