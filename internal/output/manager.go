// Package output fans run records out to configurable sinks: a human console,
// structured files/streams, and a Markdown run report. Sinks receive both
// ledger entries (unit outcomes) and lifecycle Events.
package output

import (
	"errors"
	"io"
)

// Sink is one destination for run records.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans each record out to every registered sink. A failing sink does
// not stop delivery to the others.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if s == nil {
		return errors.New("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
