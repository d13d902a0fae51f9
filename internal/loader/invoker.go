// Package loader invokes the external per-unit loader process. The loader's
// contract: exit 0 means the unit loaded, exit 1 means the unit could not be
// completed (reported, batch continues), anything else is an
// invocation-machinery fault. Diagnostics arrive on stderr and are persisted
// under the unit's log directory.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"plbatch/internal/census"
	"plbatch/internal/enumerate"
	"plbatch/internal/ledger"
)

// Result is the per-unit outcome of one invocation. Diagnostic is the path of
// the persisted error log ("" when the loader wrote nothing).
type Result struct {
	OK         bool
	ExitCode   int
	Diagnostic string
}

// Invoker runs one unit of work.
type Invoker interface {
	Invoke(ctx context.Context, unit enumerate.UnitKey) (Result, error)
}

// Fault is an invocation-machinery error: the loader could not be started,
// exited outside the 0/1 contract, or its diagnostics could not be persisted.
// Unlike a unit failure it aborts the batch.
type Fault struct {
	Unit enumerate.UnitKey
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("loader invocation fault for unit %s: %v", f.Unit, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// ExecInvoker invokes the loader binary as a subprocess.
type ExecInvoker struct {
	// Loader is the path (or $PATH name) of the per-unit loader binary.
	Loader string
	// LogRoot is where per-unit error logs are persisted.
	LogRoot string
}

func NewExecInvoker(loaderPath, logRoot string) (*ExecInvoker, error) {
	if strings.TrimSpace(loaderPath) == "" {
		return nil, errors.New("loader path required")
	}
	if strings.TrimSpace(logRoot) == "" {
		return nil, errors.New("log root required")
	}
	return &ExecInvoker{Loader: loaderPath, LogRoot: logRoot}, nil
}

// Args returns the loader argv for one unit.
func Args(unit enumerate.UnitKey) []string {
	args := []string{
		"--namespace", census.Namespace(unit.Vintage),
		"--fips", unit.FIPS,
		"--year", unit.Vintage,
		"--level", unit.Level,
	}
	if unit.Table != "" {
		args = append(args, "--table", unit.Table)
	}
	return args
}

// Invoke runs the loader for one unit and classifies the exit status. Unit
// failures (exit 1) come back as a Result, not an error; only machinery
// faults are errors.
func (inv *ExecInvoker) Invoke(ctx context.Context, unit enumerate.UnitKey) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Loader, Args(unit)...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return Result{}, &Fault{Unit: unit, Err: ctx.Err()}
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The process never ran (binary missing, permission denied, ...).
			return Result{}, &Fault{Unit: unit, Err: runErr}
		}
		exitCode = exitErr.ExitCode()
		if exitCode != 1 {
			return Result{}, &Fault{Unit: unit, Err: fmt.Errorf("unexpected exit status %d", exitCode)}
		}
	}

	diag, err := inv.persistDiagnostics(unit, stderr.Bytes(), exitCode)
	if err != nil {
		return Result{}, &Fault{Unit: unit, Err: err}
	}
	return Result{OK: exitCode == 0, ExitCode: exitCode, Diagnostic: diag}, nil
}

// persistDiagnostics writes the loader's stderr under the unit's log
// directory. A failed unit always gets a diagnostic file, even if the loader
// was silent.
func (inv *ExecInvoker) persistDiagnostics(unit enumerate.UnitKey, stderr []byte, exitCode int) (string, error) {
	if len(bytes.TrimSpace(stderr)) == 0 {
		if exitCode == 0 {
			return "", nil
		}
		stderr = []byte(fmt.Sprintf("loader exited with status %d and produced no diagnostics\n", exitCode))
	}

	dir := ledger.UnitDir(inv.LogRoot, unit)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create diagnostic dir: %w", err)
	}
	path := filepath.Join(dir, ledger.ErrorLogName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open diagnostic log: %w", err)
	}
	if _, err := f.Write(stderr); err != nil {
		f.Close()
		return "", fmt.Errorf("write diagnostic log: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close diagnostic log: %w", err)
	}
	return path, nil
}
