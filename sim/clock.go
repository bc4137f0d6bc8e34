package sim

import (
	"container/heap"
	"runtime"
	"sync"
)

// wakeEvent is a single pending wake request registered by a sleeping task.
// The channel is closed when the clock reaches the deadline.
type wakeEvent struct {
	deadline float64
	seq      uint64 // registration order, breaks ties between equal deadlines
	ch       chan struct{}
}

// wakeHeap implements heap.Interface and orders wake events by deadline.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type wakeHeap []*wakeEvent

func (h wakeHeap) Len() int { return len(h) }
func (h wakeHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h wakeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *wakeHeap) Push(x any) {
	*h = append(*h, x.(*wakeEvent))
}

func (h *wakeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Clock is the virtual-time clock and cooperative scheduler that drives a
// simulation run. Time only moves when Advance pops the earliest pending
// wake event; tasks suspend with Sleep/SleepUntil instead of waiting on the
// wall clock.
//
// The clock also keeps the task accounting the driver loop needs: a task
// registered with AddTasks counts as runnable until it suspends in a sleep,
// blocks receiving from the admission channel (bracketed with
// BeginBlockedRecv/EndBlockedRecv), or finishes with TaskDone. The driver
// calls WaitQuiescent before each Advance so time never jumps while a task
// still has work to do at the current instant.
type Clock struct {
	mu   sync.Mutex
	cond *sync.Cond

	now     float64
	pending wakeHeap
	seq     uint64
	stopped bool

	// Task accounting for quiescence detection.
	active      int // tasks currently runnable
	blockedRecv int // tasks blocked on an admission receive
	queued      int // admissions sent but not yet received
}

// NewClock creates a clock starting at virtual time 0.
func NewClock() *Clock {
	c := &Clock{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Now returns the current virtual time.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Stopped reports whether Stop has been called.
func (c *Clock) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// PendingWakes returns the number of registered wake events.
func (c *Clock) PendingWakes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Sleep suspends the calling task for d units of virtual time. A
// non-positive duration yields the processor once without touching the
// schedule. Returns false if the clock was stopped before the deadline.
func (c *Clock) Sleep(d float64) bool {
	if d <= 0 {
		runtime.Gosched()
		return !c.Stopped()
	}
	return c.SleepUntil(c.Now() + d)
}

// SleepUntil suspends the calling task until virtual time reaches t. A
// deadline at or before the current time yields the processor once without
// registering a wake event; otherwise exactly one wake event is registered
// for this call. Returns false if the clock was stopped before the deadline.
func (c *Clock) SleepUntil(t float64) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	if t <= c.now {
		c.mu.Unlock()
		runtime.Gosched()
		return true
	}
	ev := &wakeEvent{deadline: t, seq: c.seq, ch: make(chan struct{})}
	c.seq++
	heap.Push(&c.pending, ev)
	c.active--
	c.cond.Broadcast()
	c.mu.Unlock()

	<-ev.ch
	return !c.Stopped()
}

// Advance pops the earliest pending wake event, moves now to its deadline,
// and resumes it. Any other events whose deadline is at or before the new
// now are resumed as well without moving now further. Returns false iff no
// pending events existed; the driver decides whether that means finished or
// stuck.
func (c *Clock) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return false
	}
	ev := heap.Pop(&c.pending).(*wakeEvent)
	c.now = ev.deadline
	c.active++
	close(ev.ch)
	// Catch-up for stale entries at or before the new now.
	for len(c.pending) > 0 && c.pending[0].deadline <= c.now {
		e := heap.Pop(&c.pending).(*wakeEvent)
		c.active++
		close(e.ch)
	}
	c.cond.Broadcast()
	return true
}

// Stop wakes every pending sleeper and marks the clock stopped. Sleeps
// interrupted this way return false so tasks can unwind; now is left at the
// time of the last successful Advance.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	for len(c.pending) > 0 {
		e := heap.Pop(&c.pending).(*wakeEvent)
		c.active++
		close(e.ch)
	}
	c.cond.Broadcast()
}

// AddTasks registers n runnable tasks. Call before spawning the goroutines
// so the driver cannot observe a spurious quiescent state.
func (c *Clock) AddTasks(n int) {
	c.mu.Lock()
	c.active += n
	c.cond.Broadcast()
	c.mu.Unlock()
}

// TaskDone unregisters a task registered with AddTasks.
func (c *Clock) TaskDone() {
	c.mu.Lock()
	c.active--
	c.cond.Broadcast()
	c.mu.Unlock()
}

// BeginBlockedRecv marks the calling task blocked on an admission receive.
func (c *Clock) BeginBlockedRecv() {
	c.mu.Lock()
	c.blockedRecv++
	c.active--
	c.cond.Broadcast()
	c.mu.Unlock()
}

// EndBlockedRecv marks the calling task runnable again after an admission
// receive; received tells whether a customer id was actually delivered.
func (c *Clock) EndBlockedRecv(received bool) {
	c.mu.Lock()
	c.blockedRecv--
	c.active++
	if received {
		c.queued--
	}
	c.cond.Broadcast()
	c.mu.Unlock()
}

// NoteQueuedSend records an admission about to be sent, so the driver does
// not advance time while the handoff to an idle server is still deliverable.
func (c *Clock) NoteQueuedSend() {
	c.mu.Lock()
	c.queued++
	c.cond.Broadcast()
	c.mu.Unlock()
}

// WaitQuiescent blocks until no task is runnable and no queued admission
// can be delivered to a blocked server. Only then may the driver advance
// time without racing a task that still has work at the current instant.
func (c *Clock) WaitQuiescent() {
	c.mu.Lock()
	for c.active > 0 || (c.queued > 0 && c.blockedRecv > 0) {
		c.cond.Wait()
	}
	c.mu.Unlock()
}
