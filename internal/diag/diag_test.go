package diag

import (
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shoalaudio/shoal/internal/errs"
)

func newTestSink() *Sink {
	return NewSink(zerolog.New(io.Discard))
}

func TestReport_AppendsToTail(t *testing.T) {
	s := newTestSink()

	s.Report("FileSystem", Error, "track inaccessible")

	tail := s.Tail()
	if len(tail) != 1 {
		t.Fatalf("Tail() len = %d, want 1", len(tail))
	}
	if tail[0].Source != "FileSystem" || tail[0].Severity != Error {
		t.Errorf("unexpected entry: %+v", tail[0])
	}
}

func TestReportError_DerivesSourceFromKind(t *testing.T) {
	s := newTestSink()

	s.ReportError(errs.OpScrobble, errs.New(errs.Network, "offline"))

	tail := s.Tail()
	if len(tail) != 1 {
		t.Fatalf("Tail() len = %d, want 1", len(tail))
	}
	if tail[0].Source != "Network" {
		t.Errorf("Source = %q, want Network", tail[0].Source)
	}
}

func TestReportError_NilIsNoop(t *testing.T) {
	s := newTestSink()
	s.ReportError(errs.OpScrobble, nil)
	if len(s.Tail()) != 0 {
		t.Error("nil error should not produce an entry")
	}
}

func TestTail_Bounded(t *testing.T) {
	s := newTestSink()
	s.max = 3

	for i := 0; i < 5; i++ {
		s.Report("test", Info, "entry")
	}

	if len(s.Tail()) != 3 {
		t.Errorf("Tail() len = %d, want bounded at 3", len(s.Tail()))
	}
}

func TestSubscribe_ReceivesEntries(t *testing.T) {
	s := newTestSink()
	ch := s.Subscribe()

	s.Report("Session", Warning, "resumed without track")

	select {
	case e := <-ch:
		if e.Text != "resumed without track" {
			t.Errorf("Text = %q", e.Text)
		}
	default:
		t.Fatal("expected entry on subscription channel")
	}
}
