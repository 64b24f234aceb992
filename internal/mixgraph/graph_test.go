package mixgraph

import (
	"errors"
	"testing"

	"reelcut/internal/audio"
	"reelcut/internal/timeline"
)

type fakeClips map[string]timeline.Clip

func (c fakeClips) Clip(id string) (timeline.Clip, bool) {
	clip, ok := c[id]
	return clip, ok
}

// fakeSource emits a constant sample value and records seeks.
type fakeSource struct {
	value  int16
	pos    float64
	seeks  []float64
	closed bool
}

func (s *fakeSource) ReadFrame(buf []int16) int {
	for i := range buf {
		buf[i] = s.value
	}
	s.pos += audio.FrameDuration.Seconds()
	return len(buf)
}

func (s *fakeSource) SeekTo(seconds float64) error {
	s.seeks = append(s.seeks, seconds)
	s.pos = seconds
	return nil
}

func (s *fakeSource) Position() float64 { return s.pos }

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fixture struct {
	model   *timeline.Model
	graph   *Graph
	sources map[string]*fakeSource
	openErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{sources: make(map[string]*fakeSource)}
	clips := fakeClips{
		"clipA": {ID: "clipA", Path: "/media/a.mp4", Duration: 10},
		"clipB": {ID: "clipB", Path: "/media/b.mp4", Duration: 20},
	}
	fx.model = timeline.NewModel(clips)
	fx.graph = New(fx.model, func(path string) (Source, error) {
		if fx.openErr != nil {
			return nil, fx.openErr
		}
		src := &fakeSource{value: 1000}
		fx.sources[path] = src
		return src, nil
	})
	return fx
}

// render advances the graph by n frames and returns the last frame.
func (fx *fixture) render(n int) []int16 {
	var frame []int16
	for i := 0; i < n; i++ {
		frame = fx.graph.RenderFrame()
	}
	return frame
}

// --- Chain lifecycle ---

func TestChainFadesInFromZero(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	if fx.graph.ActiveChains() != 1 {
		t.Fatalf("chains = %d, want 1", fx.graph.ActiveChains())
	}

	first := fx.render(1)
	if first[0] >= 1000 {
		t.Errorf("first frame amplitude = %d, want ramping below 1000", first[0])
	}

	// After the full ramp the chain is steady at full gain.
	settled := fx.render(fadeFrames)
	if settled[0] != 1000 {
		t.Errorf("settled amplitude = %d, want 1000", settled[0])
	}
}

func TestChainFadesOutThenReleases(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	fx.render(fadeFrames + 1)

	// Pause: the desired set empties and the chain ramps down.
	fx.graph.Update(false)
	if fx.graph.ActiveChains() != 1 {
		t.Fatal("chain released before its fade completed")
	}

	mid := fx.render(1)
	if mid[0] == 0 || mid[0] == 1000 {
		t.Errorf("mid-fade amplitude = %d, want between 0 and 1000", mid[0])
	}

	fx.render(fadeFrames)
	if fx.graph.ActiveChains() != 0 {
		t.Error("chain not released after fade-out")
	}
	if !fx.sources["/media/a.mp4"].closed {
		t.Error("source not closed on release")
	}
}

func TestMutedTrackRampsOut(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	fx.render(fadeFrames + 1)

	fx.model.ToggleMute(fx.model.Tracks()[0].ID)
	fx.graph.Update(true)

	// Never an abrupt cutoff: still live, ramping to zero.
	if fx.graph.ActiveChains() != 1 {
		t.Fatal("muted chain dropped without a fade")
	}
	fx.render(fadeFrames + 1)
	if fx.graph.ActiveChains() != 0 {
		t.Error("muted chain never released")
	}
}

func TestReactivatedChainRampsBackUp(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	fx.render(fadeFrames + 1)

	fx.graph.Update(false)
	fx.render(2) // partway through the fade-out

	fx.graph.Update(true)
	settled := fx.render(fadeFrames + 1)
	if settled[0] != 1000 {
		t.Errorf("reactivated amplitude = %d, want 1000", settled[0])
	}
	if fx.graph.ActiveChains() != 1 {
		t.Error("reactivated chain was released")
	}
}

// --- Gain and sync ---

func TestGainFollowsTrackAndMasterVolume(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)
	fx.model.SetTrackVolume(fx.model.Tracks()[0].ID, 0.5)
	fx.model.SetMasterVolume(0.5)

	fx.graph.Update(true)
	settled := fx.render(fadeFrames + 1)

	// 1000 * 0.5 * 0.5
	if settled[0] != 250 {
		t.Errorf("amplitude = %d, want 250", settled[0])
	}
}

func TestElementResyncOnlyOnRealDrift(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	src := fx.sources["/media/a.mp4"]
	initialSeeks := len(src.seeks) // the placement seek

	// Drift below tolerance: no repositioning, no stutter.
	src.pos = 1.05
	fx.graph.Update(true)
	if len(src.seeks) != initialSeeks {
		t.Errorf("seeks = %v, want no resync for 50ms drift", src.seeks)
	}

	// Real drift resyncs to the clip-relative time.
	src.pos = 3
	fx.graph.Update(true)
	if len(src.seeks) != initialSeeks+1 {
		t.Fatalf("seeks = %v, want one resync", src.seeks)
	}
	if got := src.seeks[len(src.seeks)-1]; got != 1 {
		t.Errorf("resync position = %v, want 1", got)
	}
}

func TestSourcePlacedAtClipRelativeTime(t *testing.T) {
	fx := newFixture(t)
	a := fx.model.AddItem("clipB", 1) // [0, 20)
	fx.model.UpdateItem(a, timeline.ItemPatch{
		StartTime: ptr(0.0), EndTime: ptr(15.0),
		InTime: ptr(5.0), OutTime: ptr(20.0),
	})
	fx.model.SetPlayhead(2)

	fx.graph.Update(true)
	src := fx.sources["/media/b.mp4"]
	if len(src.seeks) != 1 || src.seeks[0] != 7 {
		t.Errorf("placement seek = %v, want [7] (in 5 + offset 2)", src.seeks)
	}
}

func ptr(v float64) *float64 { return &v }

// --- Analyzers ---

func TestAnalyzerSharedPerTrack(t *testing.T) {
	fx := newFixture(t)
	if fx.graph.Analyzer(1) != fx.graph.Analyzer(1) {
		t.Error("analyzer not shared for a track number")
	}
}

func TestLevelsReflectActiveAudio(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	fx.render(fadeFrames + 1)

	levels := fx.graph.Levels()
	if levels[1] <= 0 {
		t.Errorf("track 1 level = %v, want > 0", levels[1])
	}

	// Silence zeroes the meter once the chain is gone.
	fx.graph.Update(false)
	fx.render(fadeFrames + 2)
	levels = fx.graph.Levels()
	if levels[1] != 0 {
		t.Errorf("track 1 level = %v after teardown, want 0", levels[1])
	}
}

// --- Failure and teardown ---

func TestOpenFailureSkipsChain(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)
	fx.openErr = errors.New("no such file")

	fx.graph.Update(true)
	if fx.graph.ActiveChains() != 0 {
		t.Error("chain created despite open failure")
	}

	// The failure is local: a later pass can succeed.
	fx.openErr = nil
	fx.graph.Update(true)
	if fx.graph.ActiveChains() != 1 {
		t.Error("graph did not recover after open failure")
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	fx := newFixture(t)
	fx.model.AddItem("clipA", 1)
	fx.model.SetPlayhead(1)

	fx.graph.Update(true)
	fx.graph.Close()

	if fx.graph.ActiveChains() != 0 {
		t.Error("chains survived Close")
	}
	if !fx.sources["/media/a.mp4"].closed {
		t.Error("source survived Close")
	}

	// Updates after Close are inert.
	fx.graph.Update(true)
	if fx.graph.ActiveChains() != 0 {
		t.Error("Update revived a closed graph")
	}
}
