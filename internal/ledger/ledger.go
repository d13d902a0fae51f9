// Package ledger is the durable per-unit progress record. Entries are
// appended as NDJSON under a directory hierarchy mirroring the unit key
// (jurisdiction → vintage → level [→ table]); failed units are additionally
// appended to a flat, jurisdiction-scoped failed_units.log that drives the
// retry pass. Nothing is ever rewritten in place. The batch driver guarantees
// a single writer per unit, so no locking is needed.
package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plbatch/internal/enumerate"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

const (
	statusFileName = "status.ndjson"
	// FailedLogName is the flat per-jurisdiction failure log consumed by the
	// retry pass.
	FailedLogName = "failed_units.log"
	// ErrorLogName is the per-unit diagnostic file written by the invoker.
	ErrorLogName = "errors.log"
)

// Entry is one appended ledger record.
type Entry struct {
	Unit       enumerate.UnitKey `json:"unit"`
	Outcome    Outcome           `json:"outcome"`
	Diagnostic string            `json:"diagnostic,omitempty"`
	Message    string            `json:"message,omitempty"`
	RunID      string            `json:"run_id,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// UnitDir returns the unit's directory under a log root.
func UnitDir(root string, k enumerate.UnitKey) string {
	parts := append([]string{root}, k.Fields()...)
	return filepath.Join(parts...)
}

// Ledger reads and appends unit outcome records under one log root.
type Ledger struct {
	root string
}

func Open(root string) (*Ledger, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("ledger root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger root: %w", err)
	}
	return &Ledger{root: root}, nil
}

func (l *Ledger) Root() string { return l.root }

// UnitDir returns the directory holding one unit's status and diagnostics.
func (l *Ledger) UnitDir(k enumerate.UnitKey) string {
	return UnitDir(l.root, k)
}

// Record appends one entry to the unit's status file. Failures are also
// appended to the jurisdiction's failed_units.log.
func (l *Ledger) Record(e Entry) error {
	if e.Unit.FIPS == "" || e.Unit.Vintage == "" || e.Unit.Level == "" {
		return fmt.Errorf("incomplete unit key %q", e.Unit)
	}
	if e.Outcome != OutcomeSuccess && e.Outcome != OutcomeFailure {
		return fmt.Errorf("unknown outcome %q for unit %s", e.Outcome, e.Unit)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}

	dir := l.UnitDir(e.Unit)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create unit dir: %w", err)
	}
	if err := appendLine(filepath.Join(dir, statusFileName), func(f *os.File) error {
		return json.NewEncoder(f).Encode(e)
	}); err != nil {
		return fmt.Errorf("append status for %s: %w", e.Unit, err)
	}

	if e.Outcome == OutcomeFailure {
		line := strings.Join(e.Unit.Fields(), "\t") + "\n"
		logPath := filepath.Join(l.root, e.Unit.FIPS, FailedLogName)
		if err := appendLine(logPath, func(f *os.File) error {
			_, err := f.WriteString(line)
			return err
		}); err != nil {
			return fmt.Errorf("append failed-unit log for %s: %w", e.Unit, err)
		}
	}
	return nil
}

func appendLine(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Latest returns the unit's most recent entry, or nil if the unit was never
// recorded.
func (l *Ledger) Latest(k enumerate.UnitKey) (*Entry, error) {
	f, err := os.Open(filepath.Join(l.UnitDir(k), statusFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open status for %s: %w", k, err)
	}
	defer f.Close()

	var latest *Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("malformed status entry for %s: %w", k, err)
		}
		latest = &e
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read status for %s: %w", k, err)
	}
	return latest, nil
}

// HasSucceeded reports whether the unit's most recent outcome is success.
// This is the skip-on-resume check.
func (l *Ledger) HasSucceeded(k enumerate.UnitKey) (bool, error) {
	latest, err := l.Latest(k)
	if err != nil {
		return false, err
	}
	return latest != nil && latest.Outcome == OutcomeSuccess, nil
}

// Failures returns the jurisdiction's retry-eligible unit keys in first-failed
// order: keys from failed_units.log whose most recent outcome is still
// failure, deduplicated.
func (l *Ledger) Failures(fips string) ([]enumerate.UnitKey, error) {
	f, err := os.Open(filepath.Join(l.root, fips, FailedLogName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open failed-unit log for %s: %w", fips, err)
	}
	defer f.Close()

	seen := make(map[enumerate.UnitKey]struct{})
	var keys []enumerate.UnitKey
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		k, err := enumerate.ParseKey(line)
		if err != nil {
			return nil, fmt.Errorf("failed-unit log for %s: %w", fips, err)
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read failed-unit log for %s: %w", fips, err)
	}

	// A key may have succeeded on a later run; only keys still failing are
	// retry-eligible.
	var out []enumerate.UnitKey
	for _, k := range keys {
		ok, err := l.HasSucceeded(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, k)
		}
	}
	return out, nil
}
