package sim

// EventKind identifies a customer state transition.
type EventKind int

const (
	// EventArrival marks a customer entering the waiting queue.
	EventArrival EventKind = iota
	// EventServiceStart marks a server picking up a customer.
	EventServiceStart
	// EventServiceEnd marks a customer leaving the system.
	EventServiceEnd
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "Arrival"
	case EventServiceStart:
		return "ServiceStart"
	case EventServiceEnd:
		return "ServiceEnd"
	default:
		return "Unknown"
	}
}

// Notification is one state transition pushed to the ordered event sink.
// Notifications are emitted in non-decreasing Time order, matching the order
// the transitions occur in the simulation.
type Notification struct {
	Time        float64
	Kind        EventKind
	CustomerID  int
	QueueLen    int
	BusyServers int
	NumWindows  int
}
