package timeline

import "sort"

// ItemsForTrack returns the items routed to a track number, sorted by start
// time.
func (m *Model) ItemsForTrack(trackNumber int) []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Item
	for _, it := range m.items {
		if it.TrackID == trackNumber {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// Items returns a copy of every item in the composition.
func (m *Model) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyItems(m.items)
}

// Tracks returns a copy of every track, sorted by display order.
func (m *Model) Tracks() []Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := copyTracks(m.tracks)
	sort.Slice(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// ItemByID resolves an item id.
func (m *Model) ItemByID(id string) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.itemIndex(id)
	if idx < 0 {
		return Item{}, false
	}
	return m.items[idx], true
}

// TrackByID resolves a track id.
func (m *Model) TrackByID(id string) (Track, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.trackIndex(id)
	if idx < 0 {
		return Track{}, false
	}
	return m.tracks[idx], true
}

// TrackByNumber resolves a routing key.
func (m *Model) TrackByNumber(number int) (Track, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tr := m.trackByNumber(number)
	if tr == nil {
		return Track{}, false
	}
	return *tr, true
}

// TopActiveItemAt returns the item that wins video compositing at time t:
// visible tracks are scanned in ascending display order and the first track
// with an item covering t wins.
func (m *Model) TopActiveItemAt(t float64) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ti := range m.visibleTrackOrder() {
		number := m.tracks[ti].TrackNumber
		for _, it := range m.items {
			if it.TrackID == number && it.Contains(t) {
				return it, true
			}
		}
	}
	return Item{}, false
}

// AllActiveItemsAt returns at most one item per visible track covering time
// t, in ascending display order. Muted tracks are NOT filtered here; mute is
// the mix graph's concern, so metering stays live on muted tracks.
func (m *Model) AllActiveItemsAt(t float64) []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Item
	for _, ti := range m.visibleTrackOrder() {
		number := m.tracks[ti].TrackNumber
		for _, it := range m.items {
			if it.TrackID == number && it.Contains(t) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// ClipByID resolves a clip through the injected library.
func (m *Model) ClipByID(id string) (Clip, bool) {
	return m.clips.Clip(id)
}

// visibleTrackOrder returns indices of visible tracks in ascending display
// order. Must be called with mu held.
func (m *Model) visibleTrackOrder() []int {
	var order []int
	for i := range m.tracks {
		if m.tracks[i].Visible {
			order = append(order, i)
		}
	}
	sortTrackIndices(order, m.tracks)
	return order
}

// sortTrackIndices orders track indices by ascending display order.
func sortTrackIndices(idx []int, tracks []Track) {
	sort.Slice(idx, func(i, j int) bool {
		return tracks[idx[i]].DisplayOrder < tracks[idx[j]].DisplayOrder
	})
}
