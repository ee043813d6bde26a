// Package profiler reports frame rate, tick rate and memory statistics through the structured logger.
package profiler

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// Report is one interval's worth of measurements.
type Report struct {
	FPS         float64
	TPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Fields converts the report to logrus fields.
func (r Report) Fields() log.Fields {
	return log.Fields{
		"fps":           round2(r.FPS),
		"tps":           round2(r.TPS),
		"heap_mb":       round2(r.HeapMB),
		"alloc_rate_mb": round2(r.AllocRateMB),
		"sys_mb":        round2(r.SysMB),
		"gc":            r.GCCount,
		"gc_last_us":    r.LastPauseUs,
		"gc_max_us":     r.MaxPauseUs,
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is logged. Non-positive values keep the default of one second.
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
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

// CountTick records one fixed-step update.
func (p *Profiler) CountTick() {
	p.tickCount++
}

// Tick should be called once per rendered frame. When the update interval has elapsed it logs a report
// with any extra fields attached, then starts a new interval.
//
// Parameters:
//   - extra: fields added to the report line, such as draw call counts
//
// Returns:
//   - Report: the logged report
//   - bool: true if a report was logged this frame
func (p *Profiler) Tick(extra log.Fields) (Report, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	seconds := elapsed.Seconds()
	r := Report{
		FPS:    float64(p.frameCount) / seconds,
		TPS:    float64(p.tickCount) / seconds,
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
		// TotalAlloc only grows, so its delta is the allocation churn over the interval
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds,
		GCCount:     p.memStats.NumGC,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	log.WithFields(r.Fields()).WithFields(extra).Info("profile")

	p.frameCount = 0
	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}
