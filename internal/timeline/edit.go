package timeline

import (
	"math"

	"github.com/google/uuid"
)

// AddItem places a clip on a track, spanning the clip's full duration and
// starting at the current playhead. Returns the new item id, or "" when the
// clip or track cannot be resolved.
func (m *Model) AddItem(clipID string, trackNumber int) string {
	clip, ok := m.clips.Clip(clipID)
	if !ok || clip.Duration <= 0 {
		return ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trackByNumber(trackNumber) == nil {
		return ""
	}

	m.snapshot()
	it := Item{
		ID:        uuid.NewString(),
		ClipID:    clipID,
		TrackID:   trackNumber,
		StartTime: m.playhead,
		EndTime:   m.playhead + clip.Duration,
		InTime:    0,
		OutTime:   clip.Duration,
	}
	m.items = append(m.items, it)
	m.recomputeDuration()
	return it.ID
}

// RemoveItem deletes an item. With ripple (explicit or via the global
// toggle), every item on any track whose start is at or past the removed
// item's end shifts left by the removed duration. Unknown ids are a no-op.
func (m *Model) RemoveItem(itemID string, ripple bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.itemIndex(itemID)
	if idx < 0 {
		return false
	}
	removed := m.items[idx]

	m.snapshot()
	m.items = append(m.items[:idx], m.items[idx+1:]...)

	if ripple || m.ripple {
		gap := removed.PlacedDuration()
		for i := range m.items {
			if m.items[i].StartTime >= removed.EndTime {
				m.items[i].StartTime -= gap
				m.items[i].EndTime -= gap
			}
		}
	}

	if m.selectedItem == itemID {
		m.selectedItem = ""
	}
	m.recomputeDuration()
	return true
}

// SplitItemAtPlayhead cuts an item in two at composition time t. The left
// piece keeps the original id; the right piece gets a new id and the
// selection. A t outside [start, end) is a no-op, as is an unknown id.
func (m *Model) SplitItemAtPlayhead(itemID string, t float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.itemIndex(itemID)
	if idx < 0 {
		return false
	}
	it := m.items[idx]
	if t <= it.StartTime || t >= it.EndTime {
		return false
	}

	// Cut point in clip-relative time.
	cut := it.InTime + (t - it.StartTime)

	m.snapshot()

	left := it
	left.EndTime = t
	left.OutTime = cut

	right := it
	right.ID = uuid.NewString()
	right.StartTime = t
	right.InTime = cut

	m.items[idx] = left
	m.items = append(m.items, right)
	m.selectedItem = right.ID
	m.recomputeDuration()
	return true
}

// ItemPatch is a partial item update. Nil fields are left untouched.
type ItemPatch struct {
	TrackID   *int     `json:"trackId,omitempty"`
	StartTime *float64 `json:"startTime,omitempty"`
	EndTime   *float64 `json:"endTime,omitempty"`
	InTime    *float64 `json:"inTime,omitempty"`
	OutTime   *float64 `json:"outTime,omitempty"`
}

// UpdateItem applies a partial update to an item. A snapshot is taken only
// when at least one field actually changes, so no-op drags do not pollute
// history. Patches that would break the placement invariant, collapse the
// item below MinItemDuration, or trim outside the source clip are rejected.
func (m *Model) UpdateItem(itemID string, patch ItemPatch) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.itemIndex(itemID)
	if idx < 0 {
		return false
	}
	next := m.items[idx]

	if patch.TrackID != nil {
		next.TrackID = *patch.TrackID
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		next.EndTime = *patch.EndTime
	}
	if patch.InTime != nil {
		next.InTime = *patch.InTime
	}
	if patch.OutTime != nil {
		next.OutTime = *patch.OutTime
	}
	if next == m.items[idx] {
		return false
	}
	if !m.validItem(next) {
		return false
	}

	m.snapshot()
	m.items[idx] = next
	m.recomputeDuration()
	return true
}

// validItem checks the placement invariant against the item's clip.
// Must be called with mu held.
func (m *Model) validItem(it Item) bool {
	if m.trackByNumber(it.TrackID) == nil {
		return false
	}
	if it.StartTime < 0 || it.InTime < 0 {
		return false
	}
	trimmed := it.OutTime - it.InTime
	if trimmed < MinItemDuration {
		return false
	}
	if math.Abs(it.PlacedDuration()-trimmed) > 1e-9 {
		return false
	}
	if clip, ok := m.clips.Clip(it.ClipID); ok && it.OutTime > clip.Duration+1e-9 {
		return false
	}
	return true
}

// itemIndex returns the index of an item by id, or -1. Must be called with
// mu held.
func (m *Model) itemIndex(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}
