package sim

import (
	"fmt"
	randv2 "math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// maxStallPolls bounds consecutive non-advancing driver polls before the run
// is declared stuck and terminated. A successful advance resets the count.
const maxStallPolls = 100

// RunOptions configures a single simulation run.
type RunOptions struct {
	// MaxTime forcibly halts the run once virtual time reaches it.
	// Zero or negative means run until all customers are served.
	MaxTime float64
	// HistoryPath, when non-empty, persists the event history there
	// (CSV, or SQLite for .sqlite3/.db paths). Best-effort.
	HistoryPath string
	// Events receives one Notification per state transition, in
	// non-decreasing time order. Run closes the channel when done.
	Events chan<- Notification
}

// Simulation coordinates one arrival producer and numWindows server workers
// against the shared state, all multiplexed on a virtual clock. Progress is
// governed entirely by virtual time; the goroutines only ever wait on the
// clock, the admission channel, or the state lock.
type Simulation struct {
	clock *Clock
	state *State
	src   randv2.Source
}

// New creates a simulation with the given number of service windows.
// Panics if numWindows is not positive.
func New(numWindows int) *Simulation {
	if numWindows <= 0 {
		panic("number of windows must be greater than 0")
	}
	return &Simulation{
		clock: NewClock(),
		state: newState(numWindows),
		src:   randv2.NewPCG(uint64(time.Now().UnixNano()), 0),
	}
}

// Seed makes subsequent random customer generation deterministic.
func (s *Simulation) Seed(seed int64) {
	s.src = randv2.NewPCG(uint64(seed), 0)
}

// AddCustomer appends a customer to the admission list.
// Panics if arrivalTime is negative or serviceDuration is not positive.
func (s *Simulation) AddCustomer(arrivalTime, serviceDuration float64) {
	if arrivalTime < 0 {
		panic(fmt.Sprintf("arrival time must be non-negative, got %v", arrivalTime))
	}
	if serviceDuration <= 0 {
		panic(fmt.Sprintf("service duration must be positive, got %v", serviceDuration))
	}
	s.state.customers = append(s.state.customers, Customer{
		ArrivalTime:      arrivalTime,
		ServiceDuration:  serviceDuration,
		ServiceStartTime: -1,
		ServiceEndTime:   -1,
	})
}

// CustomerCount returns the size of the admission list.
func (s *Simulation) CustomerCount() int {
	return len(s.state.Customers())
}

// Clock exposes the simulation's virtual clock.
func (s *Simulation) Clock() *Clock { return s.clock }

// State exposes the shared simulation state.
func (s *Simulation) State() *State { return s.state }

// Run executes the simulation to completion (or to opts.MaxTime). It returns
// once every task has unwound and the final integrals are flushed.
func (s *Simulation) Run(opts RunOptions) {
	if opts.HistoryPath != "" {
		logger, err := NewEventLogger(opts.HistoryPath)
		if err != nil {
			logrus.Warnf("failed to create event log %s: %v", opts.HistoryPath, err)
		} else {
			s.state.logger = logger
		}
	}
	s.state.sink = opts.Events

	s.SortCustomers()

	numWindows := s.state.numWindows
	admission := make(chan int, len(s.state.customers)+1)

	var wg sync.WaitGroup
	s.clock.AddTasks(numWindows + 1)

	for w := 0; w < numWindows; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.clock.TaskDone()
			s.serve(admission)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.clock.TaskDone()
		defer close(admission)
		s.produce(admission, opts.MaxTime)
	}()

	s.drive(opts.MaxTime)

	s.clock.Stop()
	wg.Wait()

	s.finalize(opts.MaxTime)
}

// produce admits customers in arrival order: sleep until each arrival, then
// update the shared state and hand the customer id to the servers. The state
// update happens before the send so an immediately dispatched ServiceStart
// can never be observed ahead of its Arrival.
func (s *Simulation) produce(admission chan<- int, maxTime float64) {
	total := len(s.state.customers)
	for i := 0; i < total; i++ {
		arrivalTime := s.state.customers[i].ArrivalTime
		if maxTime > 0 && arrivalTime > maxTime {
			// Remaining customers never enter the system.
			break
		}
		if !s.clock.SleepUntil(arrivalTime) {
			break
		}

		s.state.Arrive(i, arrivalTime)
		logrus.Infof("<< Arrival: customer %d at T=%.2f", i, arrivalTime)

		s.clock.NoteQueuedSend()
		admission <- i
	}
}

// serve is one server worker: receive the next customer id, serve it for its
// service duration, and record both transitions with a snapshot-before-mutate
// update each.
func (s *Simulation) serve(admission <-chan int) {
	for {
		s.clock.BeginBlockedRecv()
		id, ok := <-admission
		s.clock.EndBlockedRecv(ok)
		if !ok || s.clock.Stopped() {
			return
		}

		duration, ok := s.state.StartService(id, s.clock.Now())
		if !ok {
			continue
		}
		logrus.Infof("<< ServiceStart: customer %d at T=%.2f", id, s.clock.Now())

		if !s.clock.Sleep(duration) {
			// Run was truncated mid-service; the customer stays in system.
			return
		}

		s.state.EndService(id, s.clock.Now())
		logrus.Infof("<< ServiceEnd: customer %d at T=%.2f", id, s.clock.Now())
	}
}

// drive advances virtual time until the stop condition fires: max_time
// reached, or the schedule stayed empty for maxStallPolls consecutive polls.
// The latter is the liveness guard for a scheduler with no real-time ticking;
// it fires both at natural completion (nothing left to do) and on deadlock
// (nothing to advance while customers remain in system).
func (s *Simulation) drive(maxTime float64) {
	stall := 0
	for {
		s.clock.WaitQuiescent()

		if maxTime > 0 && s.clock.Now() >= maxTime {
			return
		}

		if s.clock.Advance() {
			stall = 0
			continue
		}

		stall++
		if stall > maxStallPolls {
			if inSystem := s.state.InSystem(); inSystem > 0 {
				logrus.Warnf("deadlock detected with %d customers still in system", inSystem)
			}
			return
		}
		runtime.Gosched()
	}
}

// finalize accounts for the tail interval after the last event, closes the
// persisted log, and closes the notification sink.
func (s *Simulation) finalize(maxTime float64) {
	finalTime := s.clock.Now()
	if maxTime > 0 {
		finalTime = maxTime
	}
	s.state.Finalize(finalTime)

	if s.state.logger != nil {
		if err := s.state.logger.Close(); err != nil {
			logrus.Debugf("event log close failed: %v", err)
		}
		s.state.logger = nil
	}
	if s.state.sink != nil {
		close(s.state.sink)
		s.state.sink = nil
	}
}

// PrintStatistics prints the final report for the run.
func (s *Simulation) PrintStatistics() {
	stats := s.state.Stats()
	stats.Report(s.state.CurrentTime(), len(s.state.customers), s.state.numWindows)
}
