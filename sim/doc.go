// Package sim implements a discrete-event simulation of a multi-server
// queueing system driven by a virtual-time clock.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - clock.go: the virtual clock and cooperative scheduler (wake-event heap,
//     quiescence tracking for the driver loop)
//   - state.go: the shared aggregate of customers, counters, and statistics,
//     with snapshot-before-mutate critical sections
//   - simulation.go: the engine wiring one arrival producer, N server
//     workers, and the time-advancing driver loop
//
// Progress is governed entirely by virtual time: tasks suspend at explicit
// sleep points or while waiting on the admission channel, and the driver
// advances the clock only when every task is suspended. Statistics are
// accumulated incrementally as time-weighted integrals (stats.go) and never
// recomputed from history; the event history itself is streamed best-effort
// to the notification sink and the persisted log (history.go).
package sim
