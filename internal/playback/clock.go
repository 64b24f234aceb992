package playback

import (
	"context"
	"log"
	"sync"
	"time"

	"reelcut/internal/timeline"
)

// State is the clock's transport state.
type State int

const (
	Paused State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

const (
	// TickInterval approximates a 60Hz display-refresh callback.
	TickInterval = 16 * time.Millisecond

	// driftTolerance is one frame interval in seconds: stored time is only
	// nudged toward decoder time past this, so the two never fight.
	driftTolerance = 0.016

	// boundaryEpsilon is the look-ahead for snapping to a clip boundary.
	boundaryEpsilon = 0.05
)

// Clock advances the model playhead during playback. The model says what
// exists at a given time; the decoder says what time it actually is; the
// clock reconciles the two every tick and drives source-switch transitions
// across clip boundaries.
type Clock struct {
	mu    sync.Mutex
	model *timeline.Model
	dec   Decoder

	state    State
	active   string // item id the decoder is settled on
	lastTick time.Time

	// transition bookkeeping; loadDone non-nil while a source loads
	loadDone   <-chan error
	pendingOff float64
}

// NewClock creates a paused clock over the given model and decoder.
func NewClock(model *timeline.Model, dec Decoder) *Clock {
	return &Clock{model: model, dec: dec}
}

// State returns the transport state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Play starts playback. The next tick resolves the active item and starts
// the decoder at the computed clip-relative offset. Idempotent.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		return
	}
	if c.model.Playhead() >= c.model.Duration() {
		c.model.SetPlayhead(0)
	}
	c.state = Playing
	c.active = "" // force re-resolution on the next tick
	c.lastTick = time.Time{}
}

// Pause stops playback and the decoder. Idempotent.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

func (c *Clock) pauseLocked() {
	if c.state == Paused {
		return
	}
	c.state = Paused
	c.dec.Pause()
}

// Seek scrubs the playhead. While playing, the next tick re-resolves the
// active item and transitions if needed.
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t < 0 {
		t = 0
	}
	if d := c.model.Duration(); t > d {
		t = d
	}
	c.model.SetPlayhead(t)
	c.active = ""
}

// Run drives the clock from a ticker until ctx is cancelled. This is the
// single scheduler loop; nothing inside a tick blocks.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.Tick(now)
		}
	}
}

// Tick performs one scheduler step. State is re-read from the model every
// tick: edits land between ticks and must be observed, never closed over.
func (c *Clock) Tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		c.lastTick = now
		return
	}

	elapsed := 0.0
	if !c.lastTick.IsZero() {
		elapsed = now.Sub(c.lastTick).Seconds()
	}
	c.lastTick = now

	// While a source loads, drift correction is suspended entirely and the
	// playhead free-runs on wall clock so visible progress continues.
	if c.loadDone != nil {
		c.pollTransition()
		if c.loadDone != nil {
			c.freeRun(elapsed)
		}
		return
	}

	playhead := c.model.Playhead()
	item, ok := c.model.TopActiveItemAt(playhead)
	if !ok {
		// Gap between clips: free-run until content or the end.
		c.active = ""
		c.freeRun(elapsed)
		return
	}

	if item.ID != c.active {
		c.beginTransition(item, playhead)
		return
	}

	// Settled: the decoder's reported position is ground truth.
	expected := item.StartTime + (c.dec.Position() - item.InTime)

	if expected >= item.EndTime-boundaryEpsilon {
		c.model.SetPlayhead(item.EndTime)
		if item.EndTime >= c.model.Duration() {
			c.pauseLocked()
		}
		// Otherwise the next tick resolves whatever starts at the boundary.
		c.active = ""
		return
	}

	if diff := expected - playhead; diff > driftTolerance || diff < -driftTolerance {
		c.model.SetPlayhead(expected)
	}
}

// beginTransition settles the decoder onto a newly resolved item. Same
// source needs only a seek; a different source is loaded asynchronously
// with output muted by the paused decoder. Must be called with mu held.
func (c *Clock) beginTransition(item timeline.Item, playhead float64) {
	clip, ok := c.model.ClipByID(item.ClipID)
	if !ok {
		// Unresolvable clip: treat the item as settled so the tick loop
		// does not re-enter every frame; playback free-runs over it.
		log.Printf("playback: item %s references unknown clip %s", item.ID, item.ClipID)
		c.active = item.ID
		return
	}

	offset := clipOffset(item, playhead)

	if c.dec.Source() == clip.Path {
		if err := c.dec.SeekTo(offset); err != nil {
			log.Printf("playback: seek failed: %v", err)
			return
		}
		c.dec.Play()
		c.active = item.ID
		return
	}

	c.dec.Pause()
	c.loadDone = c.dec.Load(clip.Path)
	c.active = item.ID
}

// pollTransition checks the pending load without blocking. Must be called
// with mu held.
func (c *Clock) pollTransition() {
	select {
	case err := <-c.loadDone:
		c.loadDone = nil
		if err != nil {
			// Abort to settled; a later resolution may succeed.
			log.Printf("playback: load failed: %v", err)
			c.active = ""
			return
		}
		// Recompute the offset against the free-run playhead.
		item, ok := c.model.ItemByID(c.active)
		if !ok {
			c.active = ""
			return
		}
		offset := clipOffset(item, c.model.Playhead())
		if err := c.dec.SeekTo(offset); err != nil {
			log.Printf("playback: post-load seek failed: %v", err)
			c.active = ""
			return
		}
		if c.state == Playing {
			c.dec.Play()
		}
	default:
	}
}

// freeRun advances the playhead by wall-clock delta. Must be called with mu
// held.
func (c *Clock) freeRun(elapsed float64) {
	t := c.model.Playhead() + elapsed
	if d := c.model.Duration(); t >= d {
		c.model.SetPlayhead(d)
		c.pauseLocked()
		return
	}
	c.model.SetPlayhead(t)
}

// clipOffset maps a composition time into an item's clip-relative time,
// clamped to the item's trim window.
func clipOffset(item timeline.Item, playhead float64) float64 {
	off := item.InTime + (playhead - item.StartTime)
	if off < item.InTime {
		off = item.InTime
	}
	if off > item.OutTime {
		off = item.OutTime
	}
	return off
}
