// Package profiler logs frame timing, draw counts and memory statistics while the demo runs.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Sample is one reporting interval's worth of statistics.
type Sample struct {
	FPS            float64
	DrawsPerFrame  float64
	HeapMB         float64
	AllocRateMB    float64
	GCCount        uint32
	LastPauseUs    uint64
	MaxPauseUs     uint64
	SysMB          float64
	FramesInSample int
}

// Profiler tracks frame rate, draw calls and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	drawCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Sample

	now   func() time.Time
	quiet bool
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per presented frame with the number of draws that frame issued.
// When the update interval has elapsed it logs FPS, average draws per frame, heap usage,
// allocation rate, GC count and pause times, and total memory.
//
// Parameters:
//   - drawCalls: draws submitted by the frame just presented
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(drawCalls int) bool {
	p.frameCount++
	p.drawCount += drawCalls
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Sample{
		FPS:            float64(p.frameCount) / elapsed.Seconds(),
		DrawsPerFrame:  float64(p.drawCount) / float64(p.frameCount),
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:    float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
		FramesInSample: p.frameCount,
	}
	s.LastPauseUs, s.MaxPauseUs = pauses(&p.memStats, p.lastGCCount)

	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | Draws/frame: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			s.FPS, s.DrawsPerFrame, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB)
	}

	p.last = s
	p.frameCount = 0
	p.drawCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged sample, or the zero Sample before the first report.
func (p *Profiler) Last() Sample {
	return p.last
}

// pauses returns the last GC pause and the longest pause since sinceGC, in microseconds.
// PauseNs is a circular buffer of the last 256 pauses.
func pauses(m *runtime.MemStats, sinceGC uint32) (last, longest uint64) {
	gcCount := m.NumGC
	if gcCount == 0 {
		return 0, 0
	}
	last = m.PauseNs[(gcCount-1)%256] / 1000

	start := sinceGC
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		if pause := m.PauseNs[i%256] / 1000; pause > longest {
			longest = pause
		}
	}
	return last, longest
}
