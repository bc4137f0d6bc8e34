package sim

import (
	"testing"
)

func TestStatistics_IntegralExactness(t *testing.T) {
	// GIVEN a fresh tracker
	var s Statistics

	// WHEN a constant state (queue=3, busy=2) holds for 10 time units
	s.UpdateIntegrals(10, 3, 2)

	// THEN exactly q*dt and b*dt are accumulated
	if s.QueueLengthIntegral != 30 {
		t.Errorf("queue integral got %v, want 30", s.QueueLengthIntegral)
	}
	if s.ServerBusyIntegral != 20 {
		t.Errorf("busy integral got %v, want 20", s.ServerBusyIntegral)
	}
	if s.LastEventTime != 10 {
		t.Errorf("last event time got %v, want 10", s.LastEventTime)
	}
}

func TestStatistics_IntegralIdempotentAtSameInstant(t *testing.T) {
	var s Statistics
	s.UpdateIntegrals(10, 3, 2)

	// Repeated call at the same instant adds nothing
	s.UpdateIntegrals(10, 5, 5)
	if s.QueueLengthIntegral != 30 || s.ServerBusyIntegral != 20 {
		t.Errorf("repeated update changed integrals: queue=%v busy=%v", s.QueueLengthIntegral, s.ServerBusyIntegral)
	}

	// Out-of-order call in the past adds nothing either
	s.UpdateIntegrals(5, 5, 5)
	if s.QueueLengthIntegral != 30 || s.ServerBusyIntegral != 20 {
		t.Errorf("out-of-order update changed integrals: queue=%v busy=%v", s.QueueLengthIntegral, s.ServerBusyIntegral)
	}
	if s.LastEventTime != 10 {
		t.Errorf("last event time moved backwards: got %v", s.LastEventTime)
	}
}

func TestStatistics_RecordCompletion(t *testing.T) {
	var s Statistics

	s.RecordCompletion(5, 30)
	s.RecordCompletion(15, 20)

	if s.CompletedCustomers != 2 {
		t.Errorf("completed got %d, want 2", s.CompletedCustomers)
	}
	if s.TotalWaitTime != 20 {
		t.Errorf("total wait got %v, want 20", s.TotalWaitTime)
	}
	if s.TotalServiceTime != 50 {
		t.Errorf("total service got %v, want 50", s.TotalServiceTime)
	}
	if s.MaxWaitTime != 15 {
		t.Errorf("max wait got %v, want 15", s.MaxWaitTime)
	}
	if s.AverageWaitTime() != 10 {
		t.Errorf("average wait got %v, want 10", s.AverageWaitTime())
	}
}

func TestStatistics_UpdateMaxQueueIsMonotone(t *testing.T) {
	var s Statistics

	s.UpdateMaxQueue(4)
	s.UpdateMaxQueue(2)

	if s.MaxQueueLength != 4 {
		t.Errorf("max queue got %d, want 4", s.MaxQueueLength)
	}
}

func TestStatistics_DerivedValuesOnEmptyRun(t *testing.T) {
	var s Statistics

	if s.AverageWaitTime() != 0 {
		t.Errorf("average wait on empty run got %v, want 0", s.AverageWaitTime())
	}
	if s.AverageQueueLength(0) != 0 {
		t.Errorf("average queue length at T=0 got %v, want 0", s.AverageQueueLength(0))
	}
	if s.Utilization(0, 3) != 0 {
		t.Errorf("utilization at T=0 got %v, want 0", s.Utilization(0, 3))
	}
}
