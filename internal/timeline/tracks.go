package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// AddTrack prepends a new track: it takes the next track number ever
// assigned and display order 0, pushing every existing track down one slot.
// Returns the new track's id.
func (m *Model) AddTrack() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot()

	next := 0
	for _, tr := range m.tracks {
		if tr.TrackNumber > next {
			next = tr.TrackNumber
		}
	}
	next++

	for i := range m.tracks {
		m.tracks[i].DisplayOrder++
	}
	tr := Track{
		ID:          uuid.NewString(),
		TrackNumber: next,
		Name:        fmt.Sprintf("Track %d", next),
		Visible:     true,
		Volume:      1,
	}
	m.tracks = append(m.tracks, tr)
	return tr.ID
}

// DeleteTrack removes a track and every item placed on it. Deleting the
// last remaining track is rejected.
func (m *Model) DeleteTrack(trackID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tracks) <= 1 {
		return false
	}
	idx := m.trackIndex(trackID)
	if idx < 0 {
		return false
	}
	number := m.tracks[idx].TrackNumber

	m.snapshot()
	m.tracks = append(m.tracks[:idx], m.tracks[idx+1:]...)

	kept := m.items[:0]
	for _, it := range m.items {
		if it.TrackID == number {
			if m.selectedItem == it.ID {
				m.selectedItem = ""
			}
			continue
		}
		kept = append(kept, it)
	}
	m.items = kept
	m.recomputeDuration()
	return true
}

// ReorderTracks assigns display order by position in orderedIDs. Tracks
// omitted from the list are appended afterward in their prior relative
// order.
func (m *Model) ReorderTracks(orderedIDs []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		pos[id] = i
	}

	m.snapshot()

	// Omitted tracks keep their relative order after the listed ones.
	next := len(orderedIDs)
	byOldOrder := make([]int, len(m.tracks))
	for i := range byOldOrder {
		byOldOrder[i] = i
	}
	sortTrackIndices(byOldOrder, m.tracks)
	for _, i := range byOldOrder {
		if p, ok := pos[m.tracks[i].ID]; ok {
			m.tracks[i].DisplayOrder = p
		} else {
			m.tracks[i].DisplayOrder = next
			next++
		}
	}
	return true
}

// ToggleVisibility flips a track's visibility. Unknown ids are a no-op.
func (m *Model) ToggleVisibility(trackID string) bool {
	return m.flipTrack(trackID, func(tr *Track) { tr.Visible = !tr.Visible })
}

// ToggleLock flips a track's lock flag.
func (m *Model) ToggleLock(trackID string) bool {
	return m.flipTrack(trackID, func(tr *Track) { tr.Locked = !tr.Locked })
}

// ToggleMute flips a track's mute flag.
func (m *Model) ToggleMute(trackID string) bool {
	return m.flipTrack(trackID, func(tr *Track) { tr.Muted = !tr.Muted })
}

// UpdateTrackName renames a track. Unchanged names take no snapshot.
func (m *Model) UpdateTrackName(trackID, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.trackIndex(trackID)
	if idx < 0 || m.tracks[idx].Name == name {
		return false
	}
	m.snapshot()
	m.tracks[idx].Name = name
	return true
}

// SetTrackVolume updates a track's volume, clamped to [0,1].
func (m *Model) SetTrackVolume(trackID string, v float64) bool {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.trackIndex(trackID)
	if idx < 0 || m.tracks[idx].Volume == v {
		return false
	}
	m.snapshot()
	m.tracks[idx].Volume = v
	return true
}

func (m *Model) flipTrack(trackID string, flip func(*Track)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.trackIndex(trackID)
	if idx < 0 {
		return false
	}
	m.snapshot()
	flip(&m.tracks[idx])
	return true
}

// trackIndex returns the index of a track by id, or -1. Must be called
// with mu held.
func (m *Model) trackIndex(id string) int {
	for i := range m.tracks {
		if m.tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// trackByNumber resolves a routing key. Must be called with mu held.
func (m *Model) trackByNumber(number int) *Track {
	for i := range m.tracks {
		if m.tracks[i].TrackNumber == number {
			return &m.tracks[i]
		}
	}
	return nil
}
