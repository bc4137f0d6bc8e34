package sim

// Customer is a single customer moving through the system. ArrivalTime and
// ServiceDuration are fixed at admission-list construction; the start and
// end times are stamped exactly once each by the server task that handles
// the customer.
type Customer struct {
	ArrivalTime      float64
	ServiceDuration  float64
	ServiceStartTime float64 // -1 until service starts
	ServiceEndTime   float64 // -1 until service completes
}

// Started reports whether a server has begun serving this customer.
func (c *Customer) Started() bool { return c.ServiceStartTime >= 0 }

// Completed reports whether service finished.
func (c *Customer) Completed() bool { return c.ServiceEndTime >= 0 }

// WaitTime returns the time the customer spent waiting before service.
// Only meaningful once Started.
func (c *Customer) WaitTime() float64 { return c.ServiceStartTime - c.ArrivalTime }
