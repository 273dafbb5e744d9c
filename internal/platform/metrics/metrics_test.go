package metrics

import (
	"testing"
	"time"
)

func TestRecordAndQuery(t *testing.T) {
	r := NewRecorder()
	tags := map[string]string{"type": "text", "status": "success"}
	r.Record("analysis.requests", 1, tags)
	r.Record("analysis.requests", 1, tags)

	got := r.Query("analysis.requests", tags)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].Name != "analysis.requests" || got[0].Value != 1 {
		t.Fatalf("unexpected sample: %+v", got[0])
	}
}

func TestQueryTagOrderIrrelevant(t *testing.T) {
	r := NewRecorder()
	r.Record("q.depth", 4, map[string]string{"a": "1", "b": "2"})
	if got := r.Query("q.depth", map[string]string{"b": "2", "a": "1"}); len(got) != 1 {
		t.Fatalf("tag order must not matter, got %d samples", len(got))
	}
}

func TestRingEviction(t *testing.T) {
	r := NewRecorder(WithCapacity(3))
	for i := 1; i <= 5; i++ {
		r.Record("m", float64(i), nil)
	}
	got := r.Query("m", nil)
	if len(got) != 3 {
		t.Fatalf("expected capped series of 3, got %d", len(got))
	}
	for i, want := range []float64{3, 4, 5} {
		if got[i].Value != want {
			t.Fatalf("sample %d = %f, want %f (oldest first)", i, got[i].Value, want)
		}
	}
}

func TestAggregateOps(t *testing.T) {
	r := NewRecorder()
	r.Record("analysis.duration", 10, map[string]string{"type": "text"})
	r.Record("analysis.duration", 30, map[string]string{"type": "video"})
	r.Record("other.metric", 99, nil)

	cases := []struct {
		op   AggregateOp
		want float64
	}{
		{OpSum, 40},
		{OpAvg, 20},
		{OpMin, 10},
		{OpMax, 30},
		{OpCount, 2},
	}
	for _, c := range cases {
		if got := r.Aggregate("analysis.duration", c.op); got != c.want {
			t.Fatalf("%s = %f, want %f", c.op, got, c.want)
		}
	}
}

func TestAggregateEmptyIsZero(t *testing.T) {
	r := NewRecorder()
	for _, op := range []AggregateOp{OpSum, OpAvg, OpMin, OpMax, OpCount} {
		if got := r.Aggregate("nope", op); got != 0 {
			t.Fatalf("%s on empty = %f, want 0", op, got)
		}
	}
}

func TestCountWhereSubset(t *testing.T) {
	r := NewRecorder()
	r.Incr("analysis.requests", map[string]string{"type": "text", "status": "success"})
	r.Incr("analysis.requests", map[string]string{"type": "video", "status": "success"})
	r.Incr("analysis.requests", map[string]string{"type": "text", "status": "failure"})

	if got := r.CountWhere("analysis.requests", map[string]string{"status": "success"}); got != 2 {
		t.Fatalf("success count = %d, want 2", got)
	}
	if got := r.CountWhere("analysis.requests", nil); got != 3 {
		t.Fatalf("total count = %d, want 3", got)
	}
}

func TestTimingRecordsMilliseconds(t *testing.T) {
	r := NewRecorder()
	r.Timing("analysis.duration", 250*time.Millisecond, nil)
	got := r.Query("analysis.duration", nil)
	if len(got) != 1 || got[0].Value != 250 {
		t.Fatalf("expected one 250ms sample, got %+v", got)
	}
}

func TestReset(t *testing.T) {
	r := NewRecorder()
	r.Incr("m", nil)
	r.Reset()
	if r.SeriesCount() != 0 {
		t.Fatalf("expected no series after reset")
	}
	if got := r.Aggregate("m", OpCount); got != 0 {
		t.Fatalf("count after reset = %f, want 0", got)
	}
}
