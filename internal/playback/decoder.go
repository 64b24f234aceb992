package playback

import (
	"fmt"
	"sync"
	"time"

	"reelcut/internal/media"
)

// Decoder is the continuous media decoder the clock samples. Loading is
// asynchronous: Load returns a one-shot channel that delivers nil on
// readiness or the load error. The decoder enforces real-time playback
// rate; its reported position is ground truth while a source is playing.
type Decoder interface {
	// Load begins loading a source, replacing whatever was loaded.
	Load(path string) <-chan error
	// Source returns the path of the loaded source, "" before the first
	// successful load.
	Source() string
	Play()
	Pause()
	// SeekTo jumps to a position in seconds within the loaded source.
	SeekTo(seconds float64) error
	// Position reports seconds into the loaded source.
	Position() float64
}

// RealtimeDecoder reports positions that advance at wall-clock rate while
// playing, the way a platform decode pipeline does. Load probes the file so
// a missing or unreadable source fails the transition instead of playing
// silence forever.
type RealtimeDecoder struct {
	mu        sync.Mutex
	source    string
	duration  float64
	base      float64
	startedAt time.Time
	playing   bool
}

// NewRealtimeDecoder creates a decoder with nothing loaded.
func NewRealtimeDecoder() *RealtimeDecoder {
	return &RealtimeDecoder{}
}

func (d *RealtimeDecoder) Load(path string) <-chan error {
	done := make(chan error, 1)
	go func() {
		dur, err := media.ProbeDuration(path)
		if err != nil {
			done <- err
			return
		}
		d.mu.Lock()
		d.source = path
		d.duration = dur
		d.base = 0
		d.playing = false
		d.mu.Unlock()
		done <- nil
	}()
	return done
}

func (d *RealtimeDecoder) Source() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source
}

func (d *RealtimeDecoder) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing || d.source == "" {
		return
	}
	d.playing = true
	d.startedAt = time.Now()
}

func (d *RealtimeDecoder) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.playing {
		return
	}
	d.base += time.Since(d.startedAt).Seconds()
	d.playing = false
}

func (d *RealtimeDecoder) SeekTo(seconds float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.source == "" {
		return fmt.Errorf("seek: no source loaded")
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > d.duration {
		seconds = d.duration
	}
	d.base = seconds
	d.startedAt = time.Now()
	return nil
}

func (d *RealtimeDecoder) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		return d.base + time.Since(d.startedAt).Seconds()
	}
	return d.base
}
