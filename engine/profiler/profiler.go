// package profiler provides lightweight per-tick performance reporting for
// long-running simulation loops.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is a point-in-time performance report emitted when the profiler's
// update interval elapses.
type Stats struct {
	TicksPerSecond float64 // ticks measured over the elapsed interval
	HeapMB         float64 // live heap objects in MB
	AllocRateMBs   float64 // heap allocation churn in MB/s over the interval
	GCCount        uint32  // cumulative GC cycles
	LastGCPauseUs  uint64  // most recent GC pause in microseconds
	MaxGCPauseUs   uint64  // longest GC pause since the previous report
	SysMB          float64 // total memory obtained from the OS in MB
}

// Profiler tracks tick rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with the given options applied.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		tickCount:      0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Tick should be called once per simulation tick to track timing.
// Logs and returns performance statistics when the update interval has
// elapsed. Statistics include: tick rate, heap usage, allocation rate,
// GC count/pause times, total memory.
//
// Returns:
//   - Stats: the report for the elapsed interval, zero-valued between reports
//   - bool: true if stats were produced this tick, false otherwise
func (p *Profiler) Tick() (Stats, bool) {
	p.tickCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	tps := float64(p.tickCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	// Calculate allocation rate (MB/sec)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// Calculate GC pause stats (last pause and max recent pause)
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		// Find max pause since the last report
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Profiler] TPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		tps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc

	return Stats{
		TicksPerSecond: tps,
		HeapMB:         allocMB,
		AllocRateMBs:   allocRateMB,
		GCCount:        gcCount,
		LastGCPauseUs:  lastPauseUs,
		MaxGCPauseUs:   maxPauseUs,
		SysMB:          sysMB,
	}, true
}
