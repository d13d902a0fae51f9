package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"plbatch/internal/census"
	"plbatch/internal/ledger"
)

// ReportSink aggregates a run and writes a Markdown summary on Close.
type ReportSink struct {
	path         string
	file         *os.File
	mu           sync.Mutex
	entries      []ledger.Entry
	skipped      int
	runID        string
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{path: path, file: f}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case ledger.Entry:
		s.entries = append(s.entries, t)
		if s.runID == "" {
			s.runID = t.RunID
		}
	case Event:
		switch t.Type {
		case "unit.skipped":
			s.skipped++
		case "run.started":
			if t.RunID != "" {
				s.runID = t.RunID
			}
		case "run.finished":
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

type jurisdictionStats struct {
	fips      string
	succeeded int
	failed    int
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	perFIPS := make(map[string]*jurisdictionStats)
	var failed []ledger.Entry
	succeeded := 0
	for _, e := range s.entries {
		st, ok := perFIPS[e.Unit.FIPS]
		if !ok {
			st = &jurisdictionStats{fips: e.Unit.FIPS}
			perFIPS[e.Unit.FIPS] = st
		}
		if e.Outcome == ledger.OutcomeSuccess {
			succeeded++
			st.succeeded++
		} else {
			failed = append(failed, e)
			st.failed++
		}
	}

	var stats []*jurisdictionStats
	for _, st := range perFIPS {
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].fips < stats[j].fips })

	var b strings.Builder
	b.WriteString("# Census load report\n\n")
	if s.runID != "" {
		fmt.Fprintf(&b, "Run: `%s`\n\n", s.runID)
	}
	fmt.Fprintf(&b, "- Units recorded: %d\n", len(s.entries))
	fmt.Fprintf(&b, "- Succeeded: %d\n", succeeded)
	fmt.Fprintf(&b, "- Failed: %d\n", len(failed))
	fmt.Fprintf(&b, "- Skipped (already loaded): %d\n", s.skipped)
	if s.haveExitCode {
		fmt.Fprintf(&b, "- Exit code: %d\n", s.exitCode)
	}
	b.WriteString("\n")

	if len(stats) > 0 {
		b.WriteString("## Jurisdictions\n\n")
		b.WriteString("| FIPS | Jurisdiction | Succeeded | Failed |\n")
		b.WriteString("|------|--------------|-----------|--------|\n")
		for _, st := range stats {
			name, _ := census.JurisdictionName(st.fips)
			fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", st.fips, name, st.succeeded, st.failed)
		}
		b.WriteString("\n")
	}

	if len(failed) > 0 {
		b.WriteString("## Failed units\n\n")
		for _, e := range failed {
			if e.Diagnostic != "" {
				fmt.Fprintf(&b, "- `%s`: %s (`%s`)\n", e.Unit, valueOr(e.Message, "loader reported failure"), e.Diagnostic)
			} else {
				fmt.Fprintf(&b, "- `%s`: %s\n", e.Unit, valueOr(e.Message, "loader reported failure"))
			}
		}
		b.WriteString("\n")
	}

	_, writeErr := s.file.WriteString(b.String())
	closeErr := s.file.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func valueOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
