// Package sim provides the discrete-event simulation engine used by the plant model.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - clock.go: virtual clock and event queue; events at equal times fire in scheduling order
//   - resource.go: Pool, a resizable counting resource with FIFO waiters and joint acquisition
//   - effect.go: TimedEffect, an applied mutation whose revert is registered with the Clock
//   - rng.go: per-subsystem deterministic random streams
//
// # Processes
//
// There are no goroutines. A process is a chain of continuations: it runs until
// it either schedules itself on the Clock (a timed wait) or hands a continuation
// to Pool.Acquire / AcquireBoth (a resource wait). Between those two points its
// reads and writes of shared state cannot interleave with any other process.
//
// Sub-packages:
//   - sim/factory/: the manufacturing plant (pipeline, disruptions, strategies, accounting)
//   - sim/telemetry/: outbound telemetry boundary with per-topic rate limiting
//   - sim/trace/: audit records of disruptions and strategy changes
package sim
