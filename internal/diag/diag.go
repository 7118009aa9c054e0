// Package diag routes recovered errors and informational notices to the
// application log and retains a bounded tail for the UI console view.
package diag

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/shoalaudio/shoal/internal/errs"
)

// Severity grades a diagnostic entry.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Entry is a single diagnostic record.
type Entry struct {
	Source   string
	Text     string
	Severity Severity
}

const defaultTailSize = 200

// Sink collects diagnostics. Safe for concurrent use.
type Sink struct {
	log zerolog.Logger

	mu   sync.Mutex
	tail []Entry
	max  int
	subs []chan Entry
}

// NewSink creates a sink writing through the given logger.
func NewSink(log zerolog.Logger) *Sink {
	return &Sink{log: log, max: defaultTailSize}
}

// Report records a diagnostic entry.
func (s *Sink) Report(source string, severity Severity, text string) {
	entry := Entry{Source: source, Text: text, Severity: severity}

	switch severity {
	case Error:
		s.log.Error().Str("source", source).Msg(text)
	case Warning:
		s.log.Warn().Str("source", source).Msg(text)
	default:
		s.log.Info().Str("source", source).Msg(text)
	}

	s.mu.Lock()
	s.tail = append(s.tail, entry)
	if len(s.tail) > s.max {
		s.tail = s.tail[len(s.tail)-s.max:]
	}
	subs := s.subs
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- entry:
		default:
		}
	}
}

// ReportError records a recovered error under its operation label.
// The entry's source is derived from the error kind.
func (s *Sink) ReportError(op errs.Op, err error) {
	if err == nil {
		return
	}
	s.Report(errs.KindOf(err).String(), Error, errs.Format(op, err))
}

// Tail returns a copy of the retained entries, oldest first.
func (s *Sink) Tail() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.tail))
	copy(out, s.tail)
	return out
}

// Subscribe returns a channel receiving future entries.
// Entries are dropped for slow receivers rather than blocking reporters.
func (s *Sink) Subscribe() <-chan Entry {
	ch := make(chan Entry, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}
