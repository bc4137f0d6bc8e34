package sim

import "fmt"

// Statistics accumulates time-weighted integrals and per-completion sums
// incrementally. It never replays history: every counter is updated exactly
// once per state transition and all derived figures are computed only at
// reporting time.
type Statistics struct {
	// Running totals
	TotalWaitTime      float64
	TotalServiceTime   float64
	CompletedCustomers int

	// Time-weighted integrals
	QueueLengthIntegral float64
	ServerBusyIntegral  float64

	// Peak values
	MaxWaitTime    float64
	MaxQueueLength int

	// Tracking state
	LastEventTime float64
}

// UpdateIntegrals accumulates the elapsed interval since the last event
// under the counters as they were during that interval. Callers must pass
// the counters as they stood immediately before the current state change.
// Repeated or out-of-order calls at the same instant are no-ops.
func (s *Statistics) UpdateIntegrals(now float64, queueLen, busyServers int) {
	elapsed := now - s.LastEventTime
	if elapsed > 0 {
		s.QueueLengthIntegral += elapsed * float64(queueLen)
		s.ServerBusyIntegral += elapsed * float64(busyServers)
		s.LastEventTime = now
	}
}

// RecordCompletion folds one finished customer into the running sums.
func (s *Statistics) RecordCompletion(waitTime, serviceTime float64) {
	s.TotalWaitTime += waitTime
	s.TotalServiceTime += serviceTime
	s.CompletedCustomers++

	if waitTime > s.MaxWaitTime {
		s.MaxWaitTime = waitTime
	}
}

// UpdateMaxQueue raises the recorded maximum queue length if exceeded.
func (s *Statistics) UpdateMaxQueue(queueLen int) {
	if queueLen > s.MaxQueueLength {
		s.MaxQueueLength = queueLen
	}
}

// AverageWaitTime returns the mean wait across completed customers.
func (s Statistics) AverageWaitTime() float64 {
	if s.CompletedCustomers == 0 {
		return 0
	}
	return s.TotalWaitTime / float64(s.CompletedCustomers)
}

// AverageQueueLength returns the time-weighted mean queue length.
func (s Statistics) AverageQueueLength(currentTime float64) float64 {
	if currentTime <= 0 {
		return 0
	}
	return s.QueueLengthIntegral / currentTime
}

// Utilization returns the time-weighted fraction of busy server capacity,
// always in [0, 1] for a well-formed run.
func (s Statistics) Utilization(currentTime float64, numWindows int) float64 {
	if currentTime <= 0 || numWindows == 0 {
		return 0
	}
	return s.ServerBusyIntegral / (currentTime * float64(numWindows))
}

// Report prints the final statistics at the end of a run.
func (s Statistics) Report(currentTime float64, totalCustomers, numWindows int) {
	fmt.Println("\nSimulation Statistics:")
	fmt.Println("-----------------------------------------------")
	fmt.Printf("Total customers processed: %d\n", totalCustomers)
	fmt.Printf("Customers completed: %d\n", s.CompletedCustomers)

	if s.CompletedCustomers > 0 {
		avgService := s.TotalServiceTime / float64(s.CompletedCustomers)
		fmt.Printf("Average waiting time per customer: %s\n", FormatDuration(s.AverageWaitTime()))
		fmt.Printf("Maximum waiting time: %s\n", FormatDuration(s.MaxWaitTime))
		fmt.Printf("Average service time per customer: %s\n", FormatDuration(avgService))
	}

	if currentTime > 0 {
		fmt.Printf("Average queue length (time-weighted): %.0f customers\n", s.AverageQueueLength(currentTime))
		fmt.Printf("Maximum queue length: %d customers\n", s.MaxQueueLength)

		avgBusy := s.ServerBusyIntegral / currentTime
		fmt.Printf("Average servers busy (time-weighted): %.0f of %d windows\n", avgBusy, numWindows)
		fmt.Printf("Server utilization: %.2f%%\n", s.Utilization(currentTime, numWindows)*100)

		hours := currentTime / 3600.0
		if hours > 0 {
			fmt.Printf("Throughput: %.2f customers/hour\n", float64(s.CompletedCustomers)/hours)
		}
	}

	if inProgress := totalCustomers - s.CompletedCustomers; inProgress > 0 {
		fmt.Printf("\nNote: %d customers still in system (waiting or being served)\n", inProgress)
	}
}
