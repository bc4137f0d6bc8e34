package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateRandomCustomers fills the admission list with a Poisson arrival
// stream: exponentially distributed inter-arrival times with mean
// avgArrivalInterval and service times uniform in [minService, maxService].
// Generation stops once the accumulated arrival time exceeds maxTime.
//
// Panics if any bound is invalid; an unrunnable workload is a programming
// error, not a recoverable condition.
func (s *Simulation) GenerateRandomCustomers(maxTime, avgArrivalInterval, minService, maxService float64) {
	if maxTime <= 0 {
		panic("max time must be positive")
	}
	if avgArrivalInterval <= 0 {
		panic("average arrival interval must be positive")
	}
	if minService <= 0 {
		panic("minimum service time must be positive")
	}
	if maxService < minService {
		panic(fmt.Sprintf("maximum service time %v must be >= minimum service time %v", maxService, minService))
	}

	interArrival := distuv.Exponential{Rate: 1 / avgArrivalInterval, Src: s.src}
	service := distuv.Uniform{Min: minService, Max: maxService, Src: s.src}

	arrival := 0.0
	for {
		arrival += interArrival.Rand()
		if arrival > maxTime {
			break
		}
		s.AddCustomer(arrival, service.Rand())
	}
}

// SortCustomers orders the admission list by arrival time. Run calls this
// before starting; the producer walks the list sequentially and the FIFO
// discipline depends on non-decreasing arrivals. The sort is stable so
// customers sharing an arrival time keep their configured order.
func (s *Simulation) SortCustomers() {
	customers := s.state.customers
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].ArrivalTime < customers[j].ArrivalTime
	})
}
