package metrics

import (
	"testing"

	coremetrics "github.com/hospigo/fleetd/core/metrics"
)

type recordSink struct {
	ticks       int
	assignments int
}

func (r *recordSink) RecordTick(coremetrics.TickRecord) error {
	r.ticks++
	return nil
}

func (r *recordSink) RecordAssignment(coremetrics.AssignmentRecord) error {
	r.assignments++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordTick(coremetrics.TickRecord{}); err != nil {
		t.Fatalf("record tick: %v", err)
	}
	if err := m.RecordAssignment(coremetrics.AssignmentRecord{}); err != nil {
		t.Fatalf("record assignment: %v", err)
	}
	if s1.ticks != 1 || s2.ticks != 1 || s1.assignments != 1 || s2.assignments != 1 {
		t.Fatalf("records not forwarded")
	}
}
