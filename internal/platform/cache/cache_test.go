package cache

import (
	"testing"
	"time"
)

type sized string

func (s sized) CacheSize() int { return len(s) }

func newFakeClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestPutGetRoundtrip(t *testing.T) {
	c := New[string]()
	c.Put("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get = (%q, %v), want (v, true)", got, ok)
	}
}

func TestGetExpired(t *testing.T) {
	now, clock := newFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := New(WithNow[string](clock))
	c.Put("k", "v", time.Minute)

	*now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should expire exactly at the deadline")
	}
	st := c.Stats()
	if st.Entries != 0 || st.Evictions != 1 || st.Misses != 1 {
		t.Fatalf("unexpected stats after lazy expiry: %+v", st)
	}
}

func TestPutZeroTTLIsNoop(t *testing.T) {
	c := New[string]()
	c.Put("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("zero ttl must not store")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int]()
	c.Put("k", 7, time.Minute)
	if !c.Invalidate("k") {
		t.Fatalf("expected present key")
	}
	if c.Invalidate("k") {
		t.Fatalf("second invalidate should report absent")
	}
}

func TestClearKeepsCounters(t *testing.T) {
	c := New[int]()
	c.Put("a", 1, time.Minute)
	c.Put("b", 2, time.Minute)
	c.Get("a")
	c.Get("missing")

	if n := c.Clear(); n != 2 {
		t.Fatalf("Clear = %d, want 2", n)
	}
	st := c.Stats()
	if st.Entries != 0 || st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("counters must survive clear: %+v", st)
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	now, clock := newFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := New(WithNow[string](clock))
	c.Put("short", "a", time.Second)
	c.Put("long", "b", time.Hour)

	*now = now.Add(time.Minute)
	if n := c.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatalf("live entry must survive a sweep")
	}
}

func TestApproxBytesTracksSizers(t *testing.T) {
	c := New[sized]()
	c.Put("a", sized("12345"), time.Minute)
	if st := c.Stats(); st.ApproxBytes != 5 {
		t.Fatalf("ApproxBytes = %d, want 5", st.ApproxBytes)
	}

	c.Put("a", sized("123"), time.Minute)
	if st := c.Stats(); st.ApproxBytes != 3 {
		t.Fatalf("overwrite must replace the old footprint, got %d", st.ApproxBytes)
	}

	c.Invalidate("a")
	if st := c.Stats(); st.ApproxBytes != 0 {
		t.Fatalf("ApproxBytes after invalidate = %d, want 0", st.ApproxBytes)
	}
}
