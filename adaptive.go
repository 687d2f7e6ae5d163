package lodkit

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
)

// PerformanceMonitor supplies the last-known performance snapshot.
// Implementations must never block: the pipeline reads these once per
// frame on the hot path and a stale value is always acceptable.
type PerformanceMonitor interface {
	AverageFPS() float32
	GPUUtilization() float32
}

const fpsWindow = 30

// FrameClock is the default PerformanceMonitor: a frame-delta ring
// that smooths FPS over the last fpsWindow frames. GPU utilization is
// fed in from outside (whatever backend counter the host has); reads
// are lock-free atomic snapshots.
type FrameClock struct {
	last    time.Time
	samples [fpsWindow]float32
	cursor  int
	filled  int

	fpsBits atomic.Uint32
	gpuBits atomic.Uint32
}

func NewFrameClock() *FrameClock {
	c := &FrameClock{}
	c.fpsBits.Store(math.Float32bits(0))
	c.gpuBits.Store(math.Float32bits(0))
	return c
}

// Tick records a frame boundary. Call once per frame from the owning
// loop; it is not safe for concurrent callers, matching the
// single-writer frame model.
func (c *FrameClock) Tick() {
	now := time.Now()
	if !c.last.IsZero() {
		dt := float32(now.Sub(c.last).Seconds())
		c.TickDelta(dt)
		return
	}
	c.last = now
}

// TickDelta records an externally measured frame delta in seconds.
func (c *FrameClock) TickDelta(dt float32) {
	c.last = time.Now()
	if dt <= 0 || math32.IsNaN(dt) {
		return
	}
	c.samples[c.cursor] = dt
	c.cursor = (c.cursor + 1) % fpsWindow
	if c.filled < fpsWindow {
		c.filled++
	}

	var sum float32
	for i := 0; i < c.filled; i++ {
		sum += c.samples[i]
	}
	avg := sum / float32(c.filled)
	if avg > 0 {
		c.fpsBits.Store(math.Float32bits(1 / avg))
	}
}

// SetGPUUtilization publishes the backend's busy fraction in [0,1].
func (c *FrameClock) SetGPUUtilization(v float32) {
	if math32.IsNaN(v) {
		v = 0
	}
	c.gpuBits.Store(math.Float32bits(clamp32(v, 0, 1)))
}

func (c *FrameClock) AverageFPS() float32 {
	return math.Float32frombits(c.fpsBits.Load())
}

func (c *FrameClock) GPUUtilization() float32 {
	return math.Float32frombits(c.gpuBits.Load())
}

// computeAdaptiveBias maps the performance snapshot into a distance
// bias in [-speed, speed]. Positive bias stretches effective
// distances (shed detail under load); negative compresses them
// (restore detail with headroom).
func computeAdaptiveBias(cfg AdaptiveConfig, fps, gpuUtil float32) float32 {
	if !cfg.Enabled || cfg.TargetFPS <= 0 {
		return 0
	}
	if math32.IsNaN(fps) || fps < 0 {
		fps = 0
	}
	if math32.IsNaN(gpuUtil) {
		gpuUtil = 0
	}
	if fps == 0 {
		// No samples yet; don't thrash detail before the first frames land.
		return 0
	}

	raw := (1 - fps/cfg.TargetFPS) + gpuUtil
	bias := clamp32(raw*cfg.QualityBias, -1, 1) * cfg.AdaptationSpeed
	if math32.IsNaN(bias) {
		return 0
	}
	return bias
}
