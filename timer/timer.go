// Package timer provides frame timing for driving a fixed-step simulation
// from variable wall-clock frames.
package timer

import "time"

const defaultFrameSamples = 60

// Timer measures per-frame delta time and keeps a rolling window of frame
// statistics. Call Update once per frame.
type Timer struct {
	start     time.Time
	lastFrame time.Time
	delta     time.Duration

	samples    []time.Duration
	maxSamples int

	now func() time.Time
}

// New creates a running timer.
func New() *Timer {
	return newTimer(time.Now)
}

func newTimer(now func() time.Time) *Timer {
	t := &Timer{maxSamples: defaultFrameSamples, now: now}
	t.Reset()
	return t
}

// WithFrameSamples sets the size of the rolling statistics window.
func (t *Timer) WithFrameSamples(n int) *Timer {
	if n > 0 {
		t.maxSamples = n
	}
	return t
}

// Reset restarts the timer, clearing total time and statistics.
func (t *Timer) Reset() {
	t.start = t.now()
	t.lastFrame = t.start
	t.delta = 0
	t.samples = t.samples[:0]
}

// Update marks a frame boundary and returns the frame's delta time in
// seconds.
func (t *Timer) Update() float64 {
	frameTime := t.now()
	t.delta = frameTime.Sub(t.lastFrame)
	t.lastFrame = frameTime

	t.samples = append(t.samples, t.delta)
	if len(t.samples) > t.maxSamples {
		t.samples = t.samples[1:]
	}
	return t.delta.Seconds()
}

// DeltaTime returns the last frame's duration in seconds.
func (t *Timer) DeltaTime() float64 {
	return t.delta.Seconds()
}

// TotalTime returns the seconds elapsed since the timer started.
func (t *Timer) TotalTime() float64 {
	return t.now().Sub(t.start).Seconds()
}

// FPS returns the instantaneous frame rate from the last delta.
func (t *Timer) FPS() float64 {
	if t.delta <= 0 {
		return 0
	}
	return 1.0 / t.delta.Seconds()
}

// AverageFPS returns the frame rate averaged over the sample window.
func (t *Timer) AverageFPS() float64 {
	if len(t.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range t.samples {
		total += s
	}
	if total <= 0 {
		return 0
	}
	return float64(len(t.samples)) / total.Seconds()
}

// MinFrameTime returns the shortest frame in the sample window, in seconds.
func (t *Timer) MinFrameTime() float64 {
	if len(t.samples) == 0 {
		return 0
	}
	m := t.samples[0]
	for _, s := range t.samples[1:] {
		if s < m {
			m = s
		}
	}
	return m.Seconds()
}

// MaxFrameTime returns the longest frame in the sample window, in seconds.
func (t *Timer) MaxFrameTime() float64 {
	if len(t.samples) == 0 {
		return 0
	}
	m := t.samples[0]
	for _, s := range t.samples[1:] {
		if s > m {
			m = s
		}
	}
	return m.Seconds()
}

// Accumulator converts variable frame deltas into a whole number of fixed
// simulation steps, carrying the remainder to the next frame.
type Accumulator struct {
	stepSize  float64
	remainder float64
}

// NewAccumulator creates an accumulator for the given fixed step in seconds.
func NewAccumulator(stepSize float64) *Accumulator {
	return &Accumulator{stepSize: stepSize}
}

// Steps consumes a frame delta and returns how many fixed steps to run.
func (a *Accumulator) Steps(delta float64) int {
	if a.stepSize <= 0 {
		return 0
	}
	a.remainder += delta
	n := 0
	for a.remainder >= a.stepSize {
		a.remainder -= a.stepSize
		n++
	}
	return n
}

// Alpha returns the interpolation fraction of the partial step left over,
// in [0, 1).
func (a *Accumulator) Alpha() float64 {
	if a.stepSize <= 0 {
		return 0
	}
	return a.remainder / a.stepSize
}
