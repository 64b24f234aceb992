package mixgraph

import (
	"log"
	"math"
	"sync"

	"reelcut/internal/audio"
	"reelcut/internal/timeline"
)

const (
	// fadeFrames is the gain ramp length: ~100ms of 20ms frames. Chains fade
	// in from zero and out to zero so boundaries never click.
	fadeFrames = 5

	// resyncTolerance is how far element time may drift from the playhead
	// before a seek. Wider than the video drift threshold so frequent
	// repositioning never stutters audibly.
	resyncTolerance = 0.1

	// gainEpsilon: target gain writes below this delta are skipped.
	gainEpsilon = 0.001
)

type chainState int

const (
	fadingIn chainState = iota
	steady
	fadingOut
)

// chain is one item's audio path: source -> gain -> track analyzer ->
// master. It exists only while its item is (or was just) active.
type chain struct {
	itemID      string
	trackNumber int
	src         Source

	state    chainState
	gain     float64 // currently applied gain
	target   float64 // trackVolume * masterVolume
	fadeFrom float64 // gain at the start of the current ramp
	fadePos  int     // frames into the current ramp
}

// Graph produces the mixed preview audio for every item active at the
// playhead, independent of visual stacking. Chains live and die by presence
// in the active set; teardown is always fade-then-release.
type Graph struct {
	mu    sync.Mutex
	model *timeline.Model
	open  SourceOpener

	chains    map[string]*chain
	analyzers map[int]*audio.Analyzer
	closed    bool
}

// New creates an empty graph over the model. open is used to lazily create
// one source per active item.
func New(model *timeline.Model, open SourceOpener) *Graph {
	return &Graph{
		model:     model,
		open:      open,
		chains:    make(map[string]*chain),
		analyzers: make(map[int]*audio.Analyzer),
	}
}

// Analyzer returns the shared analysis node for a track number, creating it
// on first use. Metering consumers read it without owning the graph.
func (g *Graph) Analyzer(trackNumber int) *audio.Analyzer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.analyzerLocked(trackNumber)
}

func (g *Graph) analyzerLocked(trackNumber int) *audio.Analyzer {
	a, ok := g.analyzers[trackNumber]
	if !ok {
		a = audio.NewAnalyzer()
		g.analyzers[trackNumber] = a
	}
	return a
}

// Levels returns the current RMS level per track number.
func (g *Graph) Levels() map[int]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[int]float64, len(g.analyzers))
	for n, a := range g.analyzers {
		rms, _ := a.Levels()
		out[n] = rms
	}
	return out
}

// ActiveChains returns the number of live chains, fading ones included.
func (g *Graph) ActiveChains() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.chains)
}

// Update is the effect pass: it reconciles chains against the items active
// at the current playhead. With playing false the desired set is empty and
// every chain fades out. Live state is re-read here every call — edits land
// between passes.
func (g *Graph) Update(playing bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}

	playhead := g.model.Playhead()
	master := g.model.MasterVolume()

	desired := make(map[string]timeline.Item)
	if playing {
		for _, it := range g.model.AllActiveItemsAt(playhead) {
			tr, ok := g.model.TrackByNumber(it.TrackID)
			if !ok || tr.Muted {
				continue // mute is applied here, not in the query
			}
			desired[it.ID] = it
		}
	}

	// Items that left the active set (or muted) ramp out, then release.
	for id, ch := range g.chains {
		if _, ok := desired[id]; !ok && ch.state != fadingOut {
			ch.beginFade(fadingOut, 0)
		}
	}

	for id, it := range desired {
		tr, _ := g.model.TrackByNumber(it.TrackID)
		target := tr.Volume * master

		ch, ok := g.chains[id]
		if !ok {
			clip, ok := g.model.ClipByID(it.ClipID)
			if !ok {
				continue
			}
			src, err := g.open(clip.Path)
			if err != nil {
				log.Printf("mixgraph: open %s: %v", clip.Path, err)
				continue
			}
			if err := src.SeekTo(clipTime(it, playhead)); err != nil {
				log.Printf("mixgraph: seek %s: %v", clip.Path, err)
				src.Close()
				continue
			}
			ch = &chain{itemID: id, trackNumber: it.TrackID, src: src, target: target}
			ch.beginFade(fadingIn, target)
			g.analyzerLocked(it.TrackID)
			g.chains[id] = ch
			continue
		}

		// A chain mid-fade-out that became active again ramps back up.
		if ch.state == fadingOut {
			ch.beginFade(fadingIn, target)
		} else if math.Abs(ch.target-target) > gainEpsilon {
			ch.target = target
			if ch.state == steady {
				ch.beginFade(fadingIn, target)
			}
		}

		// Element time resyncs only on real drift.
		expected := clipTime(it, playhead)
		if math.Abs(ch.src.Position()-expected) > resyncTolerance {
			if err := ch.src.SeekTo(expected); err != nil {
				log.Printf("mixgraph: resync: %v", err)
			}
		}
	}
}

// RenderFrame mixes one 20ms frame from every chain into the master output,
// advancing fades and feeding the per-track analyzers. Chains that finish
// fading out are released here, never before.
func (g *Graph) RenderFrame() []int16 {
	g.mu.Lock()
	defer g.mu.Unlock()

	master := make([]float64, audio.FrameSamples)
	trackBuses := make(map[int][]float64)
	frame := make([]int16, audio.FrameSamples)

	for id, ch := range g.chains {
		gain := ch.step()
		if ch.state == fadingOut && ch.gain <= 0 {
			ch.src.Close()
			delete(g.chains, id)
			continue
		}

		for i := range frame {
			frame[i] = 0
		}
		ch.src.ReadFrame(frame)

		bus, ok := trackBuses[ch.trackNumber]
		if !ok {
			bus = make([]float64, audio.FrameSamples)
			trackBuses[ch.trackNumber] = bus
		}
		audio.MixInto(bus, frame, gain)
	}

	for n, a := range g.analyzers {
		bus, ok := trackBuses[n]
		if !ok {
			a.Reset()
			continue
		}
		a.Process(bus)
		for i, v := range bus {
			master[i] += v
		}
	}

	return audio.ClipBus(master)
}

// Close tears down every chain and analyzer immediately.
func (g *Graph) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, ch := range g.chains {
		ch.src.Close()
		delete(g.chains, id)
	}
	for _, a := range g.analyzers {
		a.Reset()
	}
	g.closed = true
}

// beginFade starts a smoothstep ramp from the current gain to target.
func (ch *chain) beginFade(state chainState, target float64) {
	ch.state = state
	ch.target = target
	ch.fadeFrom = ch.gain
	ch.fadePos = 0
}

// step advances the chain's ramp by one frame and returns the gain to apply.
func (ch *chain) step() float64 {
	switch ch.state {
	case steady:
		return ch.gain
	case fadingIn:
		ch.fadePos++
		t := float64(ch.fadePos) / fadeFrames
		ch.gain = ch.fadeFrom + (ch.target-ch.fadeFrom)*audio.Smoothstep(t)
		if ch.fadePos >= fadeFrames {
			ch.gain = ch.target
			ch.state = steady
		}
		return ch.gain
	default: // fadingOut
		ch.fadePos++
		t := float64(ch.fadePos) / fadeFrames
		ch.gain = ch.fadeFrom * (1 - audio.Smoothstep(t))
		if ch.fadePos >= fadeFrames {
			ch.gain = 0
		}
		return ch.gain
	}
}

// clipTime maps a composition time into an item's clip-relative time,
// clamped to the trim window.
func clipTime(it timeline.Item, playhead float64) float64 {
	t := it.InTime + (playhead - it.StartTime)
	if t < it.InTime {
		t = it.InTime
	}
	if t > it.OutTime {
		t = it.OutTime
	}
	return t
}
