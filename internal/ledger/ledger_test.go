package ledger

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"plbatch/internal/enumerate"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return l
}

func TestOpen_RequiresRoot(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank root")
	}
}

func TestRecord_ThenLatest(t *testing.T) {
	l := newTestLedger(t)
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}

	if err := l.Record(Entry{Unit: unit, Outcome: OutcomeFailure, Message: "tiger fetch failed"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(Entry{Unit: unit, Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	latest, err := l.Latest(unit)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.Outcome != OutcomeSuccess {
		t.Fatalf("Latest = %+v, want success entry", latest)
	}
	if latest.RecordedAt.IsZero() {
		t.Fatal("RecordedAt not stamped")
	}
}

func TestRecord_AppendsNotRewrites(t *testing.T) {
	l := newTestLedger(t)
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "tract", Table: "P1"}

	for i := 0; i < 3; i++ {
		if err := l.Record(Entry{Unit: unit, Outcome: OutcomeFailure}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(l.UnitDir(unit), statusFileName))
	if err != nil {
		t.Fatalf("read status file: %v", err)
	}
	if got := strings.Count(string(raw), "\n"); got != 3 {
		t.Fatalf("status file has %d lines, want 3", got)
	}
}

func TestRecord_ValidatesEntry(t *testing.T) {
	l := newTestLedger(t)
	if err := l.Record(Entry{Unit: enumerate.UnitKey{FIPS: "26"}, Outcome: OutcomeSuccess}); err == nil {
		t.Fatal("expected error for incomplete unit key")
	}
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "state"}
	if err := l.Record(Entry{Unit: unit, Outcome: Outcome("maybe")}); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestRecord_FailureAppendsFailedLog(t *testing.T) {
	l := newTestLedger(t)

	fail := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}
	ok := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county"}
	if err := l.Record(Entry{Unit: fail, Outcome: OutcomeFailure}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(Entry{Unit: ok, Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(l.Root(), "26", FailedLogName))
	if err != nil {
		t.Fatalf("read failed log: %v", err)
	}
	if got, want := string(raw), "26\t2010\tcounty\n"; got != want {
		t.Fatalf("failed log = %q, want %q", got, want)
	}
}

func TestLatest_UnrecordedUnit(t *testing.T) {
	l := newTestLedger(t)
	latest, err := l.Latest(enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "state"})
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("Latest = %+v, want nil for unrecorded unit", latest)
	}
}

func TestHasSucceeded_FollowsLatestOutcome(t *testing.T) {
	l := newTestLedger(t)
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "state"}

	ok, err := l.HasSucceeded(unit)
	if err != nil || ok {
		t.Fatalf("HasSucceeded on empty ledger = %v, %v", ok, err)
	}

	if err := l.Record(Entry{Unit: unit, Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ok, _ = l.HasSucceeded(unit); !ok {
		t.Fatal("HasSucceeded = false after success")
	}

	// A later failure supersedes the earlier success.
	if err := l.Record(Entry{Unit: unit, Outcome: OutcomeFailure}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ok, _ = l.HasSucceeded(unit); ok {
		t.Fatal("HasSucceeded = true after superseding failure")
	}
}

func TestFailures_DedupesAndFiltersRecovered(t *testing.T) {
	l := newTestLedger(t)

	county := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}
	tract := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "tract"}
	pop := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county", Table: "P1"}

	// county fails twice, then tract and pop fail once each.
	for _, e := range []Entry{
		{Unit: county, Outcome: OutcomeFailure},
		{Unit: county, Outcome: OutcomeFailure},
		{Unit: tract, Outcome: OutcomeFailure},
		{Unit: pop, Outcome: OutcomeFailure},
	} {
		if err := l.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	// tract recovers on a later run.
	if err := l.Record(Entry{Unit: tract, Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := l.Failures("26")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	want := []enumerate.UnitKey{county, pop}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Failures = %v, want %v", got, want)
	}
}

func TestFailures_NoLogMeansNothingEligible(t *testing.T) {
	l := newTestLedger(t)
	got, err := l.Failures("26")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Failures = %v, want none", got)
	}
}

func TestFailures_ScopedToJurisdiction(t *testing.T) {
	l := newTestLedger(t)
	mi := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county"}
	wi := enumerate.UnitKey{FIPS: "55", Vintage: "2020", Level: "county"}
	for _, e := range []Entry{
		{Unit: mi, Outcome: OutcomeFailure},
		{Unit: wi, Outcome: OutcomeFailure},
	} {
		if err := l.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := l.Failures("26")
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if !reflect.DeepEqual(got, []enumerate.UnitKey{mi}) {
		t.Fatalf("Failures(26) = %v, want [%v]", got, mi)
	}
}

func TestUnitDir_MirrorsKeyFields(t *testing.T) {
	pop := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county", Table: "P1"}
	if got, want := UnitDir("logs", pop), filepath.Join("logs", "26", "2010", "county", "P1"); got != want {
		t.Fatalf("UnitDir = %q, want %q", got, want)
	}
	geom := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}
	if got, want := UnitDir("logs", geom), filepath.Join("logs", "26", "2010", "county"); got != want {
		t.Fatalf("UnitDir = %q, want %q", got, want)
	}
}
