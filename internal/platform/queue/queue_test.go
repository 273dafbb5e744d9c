package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"sleuth/internal/platform/errors"
)

func TestPriorityOrder(t *testing.T) {
	q := New(WithConcurrency(1))

	var mu sync.Mutex
	var order []int

	ids := make([]uuid.UUID, 0, 3)
	chans := make([]<-chan Outcome, 0, 3)
	for _, p := range []int{1, 5, 3} {
		id, done := q.Submit(p, p, 0)
		ids = append(ids, id)
		chans = append(chans, done)
	}

	q.SetHandler(func(ctx context.Context, job *Job) (any, error) {
		mu.Lock()
		order = append(order, job.Priority)
		mu.Unlock()
		return job.Payload, nil
	})

	for _, done := range chans {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("job never finished")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{5, 3, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dispatch order = %v, want %v", order, want)
		}
	}
	_ = ids
}

func TestRetryExhaustion(t *testing.T) {
	q := New(WithConcurrency(1))

	var mu sync.Mutex
	attempts := 0
	q.SetHandler(func(ctx context.Context, job *Job) (any, error) {
		mu.Lock()
		attempts++
		mu.Unlock()
		return nil, errors.Unavailablef("analyzer down")
	})

	_, done := q.Submit("payload", 0, 2)
	out := <-done
	if out.Err == nil {
		t.Fatalf("expected terminal failure")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3 (1 initial + 2 retries)", attempts)
	}
}

func TestOutcomeCarriesResult(t *testing.T) {
	q := New()
	q.SetHandler(func(ctx context.Context, job *Job) (any, error) {
		return "done:" + job.Payload.(string), nil
	})

	_, done := q.Submit("x", 0, 0)
	out := <-done
	if out.Err != nil || out.Result != "done:x" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestStatusLifecycle(t *testing.T) {
	q := New()

	id, done := q.Submit("x", 0, 0)
	job, ok := q.Status(id)
	if !ok || job.Status != StatusPending {
		t.Fatalf("expected pending job before handler, got %+v ok=%v", job, ok)
	}

	q.SetHandler(func(ctx context.Context, job *Job) (any, error) { return nil, nil })
	<-done

	if _, ok := q.Status(id); ok {
		t.Fatalf("terminal jobs must not stay tracked")
	}
}

func TestDuplicateCompleteIsNoop(t *testing.T) {
	q := New()
	q.SetHandler(func(ctx context.Context, job *Job) (any, error) { return 1, nil })

	id, done := q.Submit("x", 0, 0)
	out := <-done
	if out.Result != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	// job is already gone; neither call may panic or redeliver
	q.MarkCompleted(id, 2)
	q.MarkFailed(id, errors.Internalf("late"))
}

func TestDispatchTimeout(t *testing.T) {
	q := New(WithConcurrency(1), WithDispatchTimeout(20*time.Millisecond))
	q.SetHandler(func(ctx context.Context, job *Job) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "too late", nil
		}
	})

	_, done := q.Submit("x", 0, 0)
	select {
	case out := <-done:
		if out.Err == nil {
			t.Fatalf("expected timeout failure, got %+v", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch did not respect its timeout")
	}
}

func TestDrainWaitsForBacklog(t *testing.T) {
	q := New(WithConcurrency(2))
	q.SetHandler(func(ctx context.Context, job *Job) (any, error) {
		time.Sleep(10 * time.Millisecond)
		return nil, nil
	})

	for i := 0; i < 6; i++ {
		q.Submit(i, 0, 0)
	}
	q.Drain()

	snap := q.Snapshot()
	if snap.Pending != 0 || snap.Processing != 0 || snap.ActiveWorkers != 0 {
		t.Fatalf("queue not empty after drain: %+v", snap)
	}
	if snap.Total != 6 {
		t.Fatalf("total = %d, want 6", snap.Total)
	}
}

func TestClearFailsPending(t *testing.T) {
	q := New() // no handler, jobs stay pending

	_, done := q.Submit("x", 0, 3)
	if n := q.Clear(); n != 1 {
		t.Fatalf("Clear = %d, want 1", n)
	}

	out := <-done
	if !errors.IsCode(out.Err, errors.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable error, got %v", out.Err)
	}
	if snap := q.Snapshot(); snap.Pending != 0 {
		t.Fatalf("pending after clear = %d", snap.Pending)
	}
}
