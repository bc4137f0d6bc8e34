package sim

import (
	"container/heap"
	"sync"
	"testing"
	"time"
)

// drainClock advances the clock until no wake events remain, waiting for
// quiescence between steps the way the driver loop does.
func drainClock(clk *Clock) {
	clk.WaitQuiescent()
	for clk.Advance() {
		clk.WaitQuiescent()
	}
}

func TestClock_StartsAtZero(t *testing.T) {
	clk := NewClock()
	if clk.Now() != 0 {
		t.Errorf("new clock: Now() got %v, want 0", clk.Now())
	}
	if clk.Advance() {
		t.Error("Advance on empty schedule should return false")
	}
}

func TestClock_AdvanceResumesEarliestFirst(t *testing.T) {
	// GIVEN three tasks sleeping until 30, 10, and 20
	clk := NewClock()
	var mu sync.Mutex
	var order []float64

	deadlines := []float64{30, 10, 20}
	clk.AddTasks(len(deadlines))
	for _, d := range deadlines {
		go func(d float64) {
			defer clk.TaskDone()
			clk.SleepUntil(d)
			mu.Lock()
			order = append(order, clk.Now())
			mu.Unlock()
		}(d)
	}

	// WHEN the clock is drained
	drainClock(clk)

	// THEN the tasks resumed in deadline order and now sits at the last one
	mu.Lock()
	defer mu.Unlock()
	want := []float64{10, 20, 30}
	if len(order) != len(want) {
		t.Fatalf("resumed %d tasks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("resume %d at T=%v, want T=%v", i, order[i], want[i])
		}
	}
	if clk.Now() != 30 {
		t.Errorf("final Now() got %v, want 30", clk.Now())
	}
}

func TestClock_CatchUpResumesAllDueEvents(t *testing.T) {
	// GIVEN three tasks sharing the same deadline
	clk := NewClock()
	var mu sync.Mutex
	resumed := 0

	clk.AddTasks(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer clk.TaskDone()
			clk.SleepUntil(10)
			mu.Lock()
			resumed++
			mu.Unlock()
		}()
	}
	clk.WaitQuiescent()
	if clk.PendingWakes() != 3 {
		t.Fatalf("PendingWakes got %d, want 3", clk.PendingWakes())
	}

	// WHEN the clock advances once
	if !clk.Advance() {
		t.Fatal("Advance should succeed with pending events")
	}
	clk.WaitQuiescent()

	// THEN all three resumed without further advancing
	mu.Lock()
	if resumed != 3 {
		t.Errorf("resumed %d tasks, want 3", resumed)
	}
	mu.Unlock()
	if clk.Now() != 10 {
		t.Errorf("Now() got %v, want 10", clk.Now())
	}
	if clk.Advance() {
		t.Error("no pending events should remain after catch-up")
	}
}

func TestClock_PastDeadlineSleepDoesNotRegister(t *testing.T) {
	clk := NewClock()

	if !clk.SleepUntil(0) {
		t.Error("SleepUntil at current time should return true")
	}
	if !clk.Sleep(-5) {
		t.Error("Sleep with negative duration should return true")
	}
	if clk.PendingWakes() != 0 {
		t.Errorf("past-deadline sleeps registered %d wake events, want 0", clk.PendingWakes())
	}
}

func TestClock_StopReleasesSleepers(t *testing.T) {
	clk := NewClock()
	clk.AddTasks(1)
	result := make(chan bool, 1)
	go func() {
		defer clk.TaskDone()
		result <- clk.SleepUntil(100)
	}()
	clk.WaitQuiescent()

	clk.Stop()

	select {
	case ok := <-result:
		if ok {
			t.Error("sleep interrupted by Stop should return false")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sleeper was not released by Stop")
	}

	if clk.SleepUntil(200) {
		t.Error("sleeping on a stopped clock should return false")
	}
	if clk.Now() != 0 {
		t.Errorf("Stop must not advance time: Now() got %v, want 0", clk.Now())
	}
}

func TestWakeHeap_EqualDeadlinesPopInRegistrationOrder(t *testing.T) {
	h := &wakeHeap{}
	for seq := uint64(0); seq < 3; seq++ {
		heap.Push(h, &wakeEvent{deadline: 5, seq: seq})
	}
	heap.Push(h, &wakeEvent{deadline: 1, seq: 99})

	if ev := heap.Pop(h).(*wakeEvent); ev.deadline != 1 {
		t.Fatalf("first pop deadline got %v, want 1", ev.deadline)
	}
	for want := uint64(0); want < 3; want++ {
		ev := heap.Pop(h).(*wakeEvent)
		if ev.seq != want {
			t.Errorf("equal-deadline pop seq got %d, want %d", ev.seq, want)
		}
	}
}
