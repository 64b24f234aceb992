package timeline

import (
	"sync"

	"github.com/google/uuid"
)

// MinItemDuration is the shortest trimmed span an item may be reduced to.
// Edits that would collapse an item below this are rejected.
const MinItemDuration = 0.1

// Clip is an imported source media reference, owned by the media library.
// The timeline only ever reads it.
type Clip struct {
	ID       string  `json:"id"`
	Path     string  `json:"path"`
	Duration float64 `json:"duration"` // seconds
}

// ClipLibrary resolves clip ids to clips.
type ClipLibrary interface {
	Clip(id string) (Clip, bool)
}

// Track is an ordered lane with independent visibility, lock, mute and volume.
// TrackNumber is the stable routing key; DisplayOrder is the stacking
// position (0 = topmost). The two are deliberately distinct: items reference
// TrackNumber, which is monotonically assigned and never reused.
type Track struct {
	ID           string  `json:"id"`
	TrackNumber  int     `json:"trackNumber"`
	DisplayOrder int     `json:"displayOrder"`
	Name         string  `json:"name"`
	Visible      bool    `json:"visible"`
	Locked       bool    `json:"locked"`
	Muted        bool    `json:"muted"`
	Volume       float64 `json:"volume"` // 0..1
}

// Item is a placement of a clip's trimmed span on a track. All times are in
// seconds. Invariant: EndTime-StartTime == OutTime-InTime and
// 0 <= InTime < OutTime <= clip duration.
type Item struct {
	ID        string  `json:"id"`
	ClipID    string  `json:"clipId"`
	TrackID   int     `json:"trackId"` // == Track.TrackNumber
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	InTime    float64 `json:"inTime"`
	OutTime   float64 `json:"outTime"`
}

// PlacedDuration returns the item's span on the timeline.
func (it Item) PlacedDuration() float64 {
	return it.EndTime - it.StartTime
}

// Contains reports whether composition time t falls inside [start, end).
func (it Item) Contains(t float64) bool {
	return it.StartTime <= t && t < it.EndTime
}

// Model owns the composition: tracks, items, playhead, selection and undo
// history. All mutation goes through it; collaborators hold read interfaces.
type Model struct {
	mu    sync.RWMutex
	clips ClipLibrary

	items        []Item
	tracks       []Track
	duration     float64
	playhead     float64
	selectedItem string
	masterVolume float64
	ripple       bool // global ripple-edit toggle

	fps             float64
	pixelsPerSecond float64

	history *history
}

// NewModel creates a composition with a single empty track.
func NewModel(clips ClipLibrary) *Model {
	m := &Model{
		clips:           clips,
		masterVolume:    1,
		fps:             30,
		pixelsPerSecond: 50,
		history:         newHistory(maxHistoryDepth),
	}
	m.tracks = []Track{{
		ID:          uuid.NewString(),
		TrackNumber: 1,
		Name:        "Track 1",
		Visible:     true,
		Volume:      1,
	}}
	return m
}

// Playhead returns the current composition-time cursor.
func (m *Model) Playhead() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playhead
}

// SetPlayhead moves the cursor. Negative values clamp to zero. The playhead
// is not part of undo history.
func (m *Model) SetPlayhead(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t < 0 {
		t = 0
	}
	m.playhead = t
}

// Duration returns the composition duration (max item end time).
func (m *Model) Duration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duration
}

// MasterVolume returns the master output volume in [0,1].
func (m *Model) MasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// SetMasterVolume updates the master volume, clamped to [0,1].
// Returns whether the value actually changed.
func (m *Model) SetMasterVolume(v float64) bool {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.masterVolume == v {
		return false
	}
	m.snapshot()
	m.masterVolume = v
	return true
}

// SelectedItem returns the selected item id, or "" when nothing is selected.
func (m *Model) SelectedItem() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selectedItem
}

// SelectItem sets the selection. Selection is not snapshotted on its own;
// it rides along with editing snapshots.
func (m *Model) SelectItem(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectedItem = id
}

// RippleEdit reports the global ripple toggle.
func (m *Model) RippleEdit() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ripple
}

// SetRippleEdit flips the global ripple toggle. An edit-mode preference,
// not an edit: no snapshot.
func (m *Model) SetRippleEdit(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ripple = on
}

// FPS returns the project frame rate.
func (m *Model) FPS() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fps
}

// SetFPS updates the project frame rate. Zero or negative values are ignored.
func (m *Model) SetFPS(fps float64) {
	if fps <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fps = fps
}

// PixelsPerSecond returns the timeline zoom level.
func (m *Model) PixelsPerSecond() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pixelsPerSecond
}

// SetPixelsPerSecond updates the zoom level. Zero or negative is ignored.
func (m *Model) SetPixelsPerSecond(pps float64) {
	if pps <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pixelsPerSecond = pps
}

// recomputeDuration refreshes duration from item end times. Must be called
// with mu held after every item mutation.
func (m *Model) recomputeDuration() {
	max := 0.0
	for _, it := range m.items {
		if it.EndTime > max {
			max = it.EndTime
		}
	}
	m.duration = max
}

func copyItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func copyTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}
