package audio

import (
	"math"
	"sync"
)

// Analyzer computes RMS and peak levels from the frames routed through it.
// One analyzer is shared by every chain on a track, so its reading reflects
// the track's summed contribution for the most recent frame.
type Analyzer struct {
	mu   sync.RWMutex
	rms  float64
	peak float64
}

// NewAnalyzer creates an analyzer with zero levels.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Process updates the levels from one gain-weighted frame. Samples are
// normalized to [-1,1] before measurement.
func (a *Analyzer) Process(frame []float64) {
	if len(frame) == 0 {
		return
	}
	var sum, peak float64
	for _, v := range frame {
		n := v / 32768
		sum += n * n
		if abs := math.Abs(n); abs > peak {
			peak = abs
		}
	}
	rms := math.Sqrt(sum / float64(len(frame)))

	a.mu.Lock()
	a.rms = rms
	a.peak = peak
	a.mu.Unlock()
}

// Reset zeroes the levels. Called when a track goes silent.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	a.rms = 0
	a.peak = 0
	a.mu.Unlock()
}

// Levels returns the most recent RMS and peak, both in [0,1].
func (a *Analyzer) Levels() (rms, peak float64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rms, a.peak
}
