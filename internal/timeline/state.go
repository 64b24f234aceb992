package timeline

// ProjectState is the full serializable snapshot exchanged with the
// persistence collaborator.
type ProjectState struct {
	Items           []Item  `json:"items"`
	Tracks          []Track `json:"tracks"`
	FPS             float64 `json:"fps"`
	Duration        float64 `json:"duration"`
	PixelsPerSecond float64 `json:"pixelsPerSecond"`
}

// ProjectState captures the composition for saving.
func (m *Model) ProjectState() ProjectState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ProjectState{
		Items:           copyItems(m.items),
		Tracks:          copyTracks(m.tracks),
		FPS:             m.fps,
		Duration:        m.duration,
		PixelsPerSecond: m.pixelsPerSecond,
	}
}

// LoadProjectState replaces the whole composition with a loaded snapshot.
// History and selection are cleared; the playhead clamps into the new
// duration. A snapshot with no tracks is rejected — the model always keeps
// at least one track.
func (m *Model) LoadProjectState(s ProjectState) bool {
	if len(s.Tracks) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = copyItems(s.Items)
	m.tracks = copyTracks(s.Tracks)
	if s.FPS > 0 {
		m.fps = s.FPS
	}
	if s.PixelsPerSecond > 0 {
		m.pixelsPerSecond = s.PixelsPerSecond
	}
	m.selectedItem = ""
	m.history.reset()
	m.recomputeDuration()
	if m.playhead > m.duration {
		m.playhead = m.duration
	}
	return true
}

// ExportView is the read-only model an export collaborator consumes to
// reproduce the edit without touching playback state.
type ExportView struct {
	Items        []Item  `json:"items"`
	Tracks       []Track `json:"tracks"`
	MasterVolume float64 `json:"masterVolume"`
	Duration     float64 `json:"duration"`
}

// ExportView captures the edit for a batch re-render.
func (m *Model) ExportView() ExportView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ExportView{
		Items:        copyItems(m.items),
		Tracks:       copyTracks(m.tracks),
		MasterVolume: m.masterVolume,
		Duration:     m.duration,
	}
}
