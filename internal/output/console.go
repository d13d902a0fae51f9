package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"plbatch/internal/ledger"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
)

type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	verbose         bool
	mu              sync.Mutex
	entries         []ledger.Entry // For JSON array output
	allowedOutcomes map[string]bool
}

func NewConsoleSink(w io.Writer, format string, filterOutcomes []string, verbose bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:  w,
		format:  format,
		verbose: verbose,
	}

	if len(filterOutcomes) > 0 {
		s.allowedOutcomes = make(map[string]bool)
		for _, o := range filterOutcomes {
			s.allowedOutcomes[strings.ToLower(strings.TrimSpace(o))] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		if e, ok := v.(ledger.Entry); ok && s.allowed(string(e.Outcome)) {
			s.entries = append(s.entries, e)
		}
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			return encoder.Encode(t)
		case ledger.Entry:
			if !s.allowed(string(t.Outcome)) {
				return nil
			}
			return encoder.Encode(eventFromEntry(t))
		default:
			return nil
		}
	default:
		return s.writeText(v)
	}
}

func (s *ConsoleSink) writeText(v any) error {
	switch t := v.(type) {
	case ledger.Entry:
		switch t.Outcome {
		case ledger.OutcomeSuccess:
			if !s.allowed("success") {
				return nil
			}
			_, err := fmt.Fprintf(s.writer, "%s  %s\n", okColor.Sprint("ok  "), t.Unit)
			return err
		default:
			if !s.allowed("failure") {
				return nil
			}
			detail := t.Message
			if detail == "" && t.Diagnostic != "" {
				detail = "see " + t.Diagnostic
			}
			if detail != "" {
				_, err := fmt.Fprintf(s.writer, "%s  %s  (%s)\n", failColor.Sprint("FAIL"), t.Unit, detail)
				return err
			}
			_, err := fmt.Fprintf(s.writer, "%s  %s\n", failColor.Sprint("FAIL"), t.Unit)
			return err
		}
	case Event:
		switch t.Type {
		case "unit.skipped":
			if !s.allowed("skipped") {
				return nil
			}
			if t.Reason != "" {
				_, err := fmt.Fprintf(s.writer, "%s  %s  (%s)\n", skipColor.Sprint("skip"), t.Unit, t.Reason)
				return err
			}
			_, err := fmt.Fprintf(s.writer, "%s  %s\n", skipColor.Sprint("skip"), t.Unit)
			return err
		case "unit.started":
			// Quiet unless verbose; then show the full loader invocation.
			if !s.verbose {
				return nil
			}
			if len(t.Args) > 0 {
				_, err := fmt.Fprintf(s.writer, "run   %s  (%s)\n", t.Unit, strings.Join(t.Args, " "))
				return err
			}
			_, err := fmt.Fprintf(s.writer, "run   %s\n", t.Unit)
			return err
		case "batch.started":
			_, err := fmt.Fprintf(s.writer, "== %s (%d units)\n", t.Phase, t.Units)
			return err
		case "run.finished":
			_, err := fmt.Fprintf(s.writer, "run finished (exit %d)\n", t.ExitCode)
			return err
		default:
			// run.started and batch.finished stay quiet in text mode.
			return nil
		}
	default:
		return nil
	}
}

func (s *ConsoleSink) allowed(outcome string) bool {
	if s.allowedOutcomes == nil {
		return true
	}
	return s.allowedOutcomes[strings.ToLower(outcome)]
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s.entries)
	}
	return nil
}
