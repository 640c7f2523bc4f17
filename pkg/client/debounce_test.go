package client

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceCollapsesBurst(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var fired int32
	var last int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Schedule(func() {
			atomic.AddInt32(&fired, 1)
			atomic.StoreInt32(&last, n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("fired %d times; want 1", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Fatalf("ran function %d; want the last scheduled (5)", got)
	}
}

func TestDebounceFiresAgainAfterIdle(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var fired int32
	d.Schedule(func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(100 * time.Millisecond)
	d.Schedule(func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Fatalf("fired %d times; want 2", got)
	}
}

func TestFlushRunsPendingImmediately(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Stop()

	var fired int32
	d.Schedule(func() { atomic.AddInt32(&fired, 1) })
	d.Flush()

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("fired %d times after flush; want 1", got)
	}

	// Nothing pending anymore.
	d.Flush()
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("second flush re-ran the function: %d", got)
	}
}

func TestStopDropsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired int32
	d.Schedule(func() { atomic.AddInt32(&fired, 1) })
	d.Stop()
	d.Schedule(func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("fired %d times after stop; want 0", got)
	}
}
