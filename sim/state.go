package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// State is the exclusive owner of the customer list and the live counters.
// Every read-then-write sequence that spans a decision runs under one
// critical section, and the lock is never held across a suspension point:
// tasks snapshot the integrals, mutate the counters, and record the event in
// a single locked operation, then release the lock before sleeping.
type State struct {
	mu sync.Mutex

	customers       []Customer
	waitingQueueLen int
	busyServers     int
	numWindows      int
	currentTime     float64
	stats           Statistics

	sink   chan<- Notification
	logger EventLogger
}

func newState(numWindows int) *State {
	return &State{numWindows: numWindows}
}

// updateIntegral folds the interval since the last event into the
// time-weighted integrals using the counters as they stand, then moves the
// state's notion of current time forward. Must be called with the lock held,
// before any counter changes.
func (st *State) updateIntegral(now float64) {
	st.stats.UpdateIntegrals(now, st.waitingQueueLen, st.busyServers)
	if now > st.currentTime {
		st.currentTime = now
	}
}

// recordEvent pushes the transition to the sink and the persisted log, and
// keeps the max-queue and completion statistics current. Must be called with
// the lock held, after the counters changed. Sink delivery is best-effort: a
// full sink drops the notification rather than stalling the simulation.
func (st *State) recordEvent(now float64, kind EventKind, custID int) {
	if st.sink != nil {
		n := Notification{
			Time:        now,
			Kind:        kind,
			CustomerID:  custID,
			QueueLen:    st.waitingQueueLen,
			BusyServers: st.busyServers,
			NumWindows:  st.numWindows,
		}
		select {
		case st.sink <- n:
		default:
			logrus.Debugf("notification sink full, dropping %s for customer %d at T=%.2f", kind, custID, now)
		}
	}

	if st.logger != nil {
		if err := st.logger.Record(now, kind, custID, st.waitingQueueLen, st.busyServers); err != nil {
			// Best-effort: history must never stall the simulation.
			logrus.Debugf("event log write failed: %v", err)
		}
	}

	st.stats.UpdateMaxQueue(st.waitingQueueLen)

	if kind == EventServiceEnd && custID < len(st.customers) {
		c := &st.customers[custID]
		if c.Started() && c.Completed() {
			st.stats.RecordCompletion(c.ServiceStartTime-c.ArrivalTime, c.ServiceEndTime-c.ServiceStartTime)
		}
	}
}

// Arrive admits customer id into the waiting queue at its arrival time.
func (st *State) Arrive(id int, now float64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.updateIntegral(now)
	st.waitingQueueLen++
	st.recordEvent(now, EventArrival, id)
}

// StartService moves customer id from the queue into service and returns its
// service duration. An out-of-range id is logged and skipped (ok=false); a
// queue underflow attempt is logged and the queue left at zero.
func (st *State) StartService(id int, now float64) (duration float64, ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id < 0 || id >= len(st.customers) {
		logrus.Warnf("invalid customer id %d received by server at T=%.2f", id, now)
		return 0, false
	}

	st.updateIntegral(now)
	st.busyServers++
	if st.waitingQueueLen > 0 {
		st.waitingQueueLen--
	} else {
		logrus.Warnf("queue underflow prevented at T=%.2f", now)
	}
	st.customers[id].ServiceStartTime = now
	st.recordEvent(now, EventServiceStart, id)
	return st.customers[id].ServiceDuration, true
}

// EndService completes customer id's service, freeing its server and feeding
// the wait/service times into the completion statistics.
func (st *State) EndService(id int, now float64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.updateIntegral(now)
	st.busyServers--
	st.customers[id].ServiceEndTime = now
	st.recordEvent(now, EventServiceEnd, id)
}

// Finalize flushes the outstanding integrals up to finalTime using the last
// known counters, so a run truncated at max_time still accounts for the tail
// interval.
func (st *State) Finalize(finalTime float64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.currentTime < finalTime {
		st.stats.UpdateIntegrals(finalTime, st.waitingQueueLen, st.busyServers)
		st.currentTime = finalTime
	}
}

// InSystem returns the number of admitted customers not yet completed.
func (st *State) InSystem() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.waitingQueueLen + st.busyServers
}

// CurrentTime returns the time of the last recorded state change.
func (st *State) CurrentTime() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.currentTime
}

// Stats returns a copy of the accumulated statistics.
func (st *State) Stats() Statistics {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.stats
}

// Customers returns a copy of the customer list.
func (st *State) Customers() []Customer {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Customer, len(st.customers))
	copy(out, st.customers)
	return out
}
