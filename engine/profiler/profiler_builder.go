package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler
// via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often Tick produces a report. Intervals of zero
// or less are ignored and the 1 second default is kept.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval to a profiler
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval <= 0 {
			return
		}
		p.updateInterval = interval
	}
}
