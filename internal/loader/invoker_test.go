package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"plbatch/internal/enumerate"
	"plbatch/internal/ledger"
)

// fakeLoader writes a shell script standing in for the per-unit loader binary.
func fakeLoader(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pl-load")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake loader: %v", err)
	}
	return path
}

func newTestInvoker(t *testing.T, script string) *ExecInvoker {
	t.Helper()
	inv, err := NewExecInvoker(fakeLoader(t, script), t.TempDir())
	if err != nil {
		t.Fatalf("NewExecInvoker: %v", err)
	}
	return inv
}

func TestArgs(t *testing.T) {
	geom := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}
	want := []string{"--namespace", "census.2010", "--fips", "26", "--year", "2010", "--level", "county"}
	if got := Args(geom); !reflect.DeepEqual(got, want) {
		t.Fatalf("Args = %v, want %v", got, want)
	}

	pop := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "tract", Table: "P2"}
	want = []string{"--namespace", "census.2020", "--fips", "26", "--year", "2020", "--level", "tract", "--table", "P2"}
	if got := Args(pop); !reflect.DeepEqual(got, want) {
		t.Fatalf("Args = %v, want %v", got, want)
	}
}

func TestNewExecInvoker_Validates(t *testing.T) {
	if _, err := NewExecInvoker("", "logs"); err == nil {
		t.Fatal("expected error for empty loader path")
	}
	if _, err := NewExecInvoker("pl-load", " "); err == nil {
		t.Fatal("expected error for blank log root")
	}
}

func TestInvoke_Success(t *testing.T) {
	inv := newTestInvoker(t, "exit 0")
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county"}

	res, err := inv.Invoke(context.Background(), unit)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.OK || res.ExitCode != 0 {
		t.Fatalf("Result = %+v, want OK exit 0", res)
	}
	if res.Diagnostic != "" {
		t.Fatalf("silent success should leave no diagnostic, got %q", res.Diagnostic)
	}
}

func TestInvoke_UnitFailureWithStderr(t *testing.T) {
	inv := newTestInvoker(t, `echo "shapefile checksum mismatch" >&2; exit 1`)
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2010", Level: "vtd"}

	res, err := inv.Invoke(context.Background(), unit)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.OK || res.ExitCode != 1 {
		t.Fatalf("Result = %+v, want failed exit 1", res)
	}
	if res.Diagnostic == "" {
		t.Fatal("failed unit should have a diagnostic path")
	}
	raw, readErr := os.ReadFile(res.Diagnostic)
	if readErr != nil {
		t.Fatalf("read diagnostic: %v", readErr)
	}
	if !strings.Contains(string(raw), "shapefile checksum mismatch") {
		t.Fatalf("diagnostic missing stderr content: %q", raw)
	}
	if got, want := res.Diagnostic, filepath.Join(ledger.UnitDir(inv.LogRoot, unit), ledger.ErrorLogName); got != want {
		t.Fatalf("diagnostic path = %q, want %q", got, want)
	}
}

func TestInvoke_SilentFailureSynthesizesDiagnostic(t *testing.T) {
	inv := newTestInvoker(t, "exit 1")
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county", Table: "P1"}

	res, err := inv.Invoke(context.Background(), unit)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.OK {
		t.Fatal("expected unit failure")
	}
	raw, readErr := os.ReadFile(res.Diagnostic)
	if readErr != nil {
		t.Fatalf("read diagnostic: %v", readErr)
	}
	if !strings.Contains(string(raw), "produced no diagnostics") {
		t.Fatalf("expected synthesized diagnostic, got %q", raw)
	}
}

func TestInvoke_SuccessStderrStillPersisted(t *testing.T) {
	inv := newTestInvoker(t, `echo "3 degenerate rings repaired" >&2; exit 0`)
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "place"}

	res, err := inv.Invoke(context.Background(), unit)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.OK {
		t.Fatalf("Result = %+v, want OK", res)
	}
	if res.Diagnostic == "" {
		t.Fatal("noisy success should still persist its diagnostics")
	}
}

func TestInvoke_UnexpectedExitIsFault(t *testing.T) {
	inv := newTestInvoker(t, "exit 3")
	unit := enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county"}

	_, err := inv.Invoke(context.Background(), unit)
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected Fault, got %v", err)
	}
	if fault.Unit != unit {
		t.Fatalf("Fault.Unit = %v, want %v", fault.Unit, unit)
	}
	if !strings.Contains(fault.Error(), "unexpected exit status 3") {
		t.Fatalf("Fault message = %q", fault.Error())
	}
}

func TestInvoke_MissingBinaryIsFault(t *testing.T) {
	inv, err := NewExecInvoker(filepath.Join(t.TempDir(), "no-such-loader"), t.TempDir())
	if err != nil {
		t.Fatalf("NewExecInvoker: %v", err)
	}

	_, err = inv.Invoke(context.Background(), enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county"})
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected Fault, got %v", err)
	}
}

func TestInvoke_CanceledContextIsFault(t *testing.T) {
	inv := newTestInvoker(t, "exit 0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inv.Invoke(ctx, enumerate.UnitKey{FIPS: "26", Vintage: "2020", Level: "county"})
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected Fault, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
