package scheduler

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestVirtualRunsInDeadlineOrder(t *testing.T) {
	start := time.Unix(0, 0)
	v := NewVirtual(start)
	var order []string
	v.Schedule(300*time.Millisecond, func() { order = append(order, "c") })
	v.Schedule(100*time.Millisecond, func() { order = append(order, "a") })
	v.Schedule(100*time.Millisecond, func() { order = append(order, "b") })

	v.Advance(200 * time.Millisecond)
	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Fatalf("unexpected order after 200ms: %v", order)
	}
	if got := v.Now().Sub(start); got != 200*time.Millisecond {
		t.Fatalf("unexpected clock %v", got)
	}
	v.Advance(time.Second)
	if !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestVirtualCallbackSeesItsDeadline(t *testing.T) {
	start := time.Unix(0, 0)
	v := NewVirtual(start)
	var seen time.Duration
	v.Schedule(150*time.Millisecond, func() { seen = v.Now().Sub(start) })
	v.Advance(time.Second)
	if seen != 150*time.Millisecond {
		t.Fatalf("callback saw %v", seen)
	}
}

func TestVirtualNestedSchedule(t *testing.T) {
	v := NewVirtual(time.Unix(0, 0))
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			v.Schedule(100*time.Millisecond, tick)
		}
	}
	v.Schedule(100*time.Millisecond, tick)
	v.Advance(250 * time.Millisecond)
	if count != 2 {
		t.Fatalf("expected 2 ticks, got %d", count)
	}
	v.Advance(100 * time.Millisecond)
	if count != 3 || v.Pending() != 0 {
		t.Fatalf("expected 3 ticks and nothing pending, got %d/%d", count, v.Pending())
	}
}

func TestVirtualCancel(t *testing.T) {
	v := NewVirtual(time.Unix(0, 0))
	ran := false
	h := v.Schedule(time.Second, func() { ran = true })
	if !h.Cancel() {
		t.Fatalf("expected first cancel to succeed")
	}
	if h.Cancel() {
		t.Fatalf("expected second cancel to fail")
	}
	v.Advance(2 * time.Second)
	if ran {
		t.Fatalf("canceled callback ran")
	}

	done := v.Schedule(time.Millisecond, func() {})
	v.Advance(time.Millisecond)
	if done.Cancel() {
		t.Fatalf("cancel after run should report false")
	}
}

func TestLoopCancel(t *testing.T) {
	loop := NewLoop()
	defer loop.Stop()
	ran := false
	h := loop.Schedule(time.Hour, func() { ran = true })
	if !h.Cancel() {
		t.Fatalf("expected cancel of pending timer to succeed")
	}
	if h.Cancel() {
		t.Fatalf("second cancel should report false")
	}
	if ran {
		t.Fatalf("callback ran after cancel")
	}
}

func TestLoopRunsCallbacksOnDrainingGoroutine(t *testing.T) {
	loop := NewLoop()
	defer loop.Stop()
	// count is only touched by this goroutine; the race detector flags any
	// callback that runs on a timer goroutine.
	count := 0
	for i := 0; i < 20; i++ {
		loop.Schedule(time.Duration(i%4)*time.Millisecond, func() { count++ })
	}
	deadline := time.After(5 * time.Second)
	for count < 20 {
		select {
		case fn := <-loop.Tasks():
			fn()
		case <-deadline:
			t.Fatalf("only %d callbacks ran", count)
		}
	}
}

func TestLoopCancelAfterFireDropsQueuedCallback(t *testing.T) {
	loop := NewLoop()
	defer loop.Stop()
	ran := false
	h := loop.Schedule(time.Millisecond, func() { ran = true })
	var fn func()
	select {
	case fn = <-loop.Tasks():
	case <-time.After(5 * time.Second):
		t.Fatalf("timer never fired")
	}
	if !h.Cancel() {
		t.Fatalf("cancel before the queued callback runs should succeed")
	}
	fn()
	if ran {
		t.Fatalf("canceled callback ran")
	}
}

func TestLoopRunStopsWithContext(t *testing.T) {
	loop := NewLoop()
	defer loop.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	loop.Schedule(time.Millisecond, func() {
		close(done)
		cancel()
	})
	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	select {
	case <-done:
	default:
		t.Fatalf("callback did not run")
	}
}
