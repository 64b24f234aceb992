package timeline

// maxHistoryDepth bounds the undo stack. Oldest snapshots drop first.
const maxHistoryDepth = 50

// snapshotState is a full value copy of everything undo restores.
type snapshotState struct {
	items        []Item
	tracks       []Track
	duration     float64
	selectedItem string
	masterVolume float64
}

// history is a bounded stack of snapshots with a cursor. The cursor points
// one past the last undone position; while no undo is in flight it equals
// the stack length.
type history struct {
	stack  []snapshotState
	cursor int
	depth  int
}

func newHistory(depth int) *history {
	return &history{depth: depth}
}

// push records a pre-mutation snapshot, truncating any redo tail.
func (h *history) push(s snapshotState) {
	h.stack = append(h.stack[:h.cursor], s)
	if len(h.stack) > h.depth {
		h.stack = h.stack[1:]
	}
	h.cursor = len(h.stack)
}

func (h *history) canUndo() bool {
	return h.cursor > 0
}

func (h *history) canRedo() bool {
	return h.cursor < len(h.stack)-1
}

// undo steps the cursor back and returns the snapshot to restore. The
// caller's current state is saved first so redo can return to it.
func (h *history) undo(current snapshotState) (snapshotState, bool) {
	if !h.canUndo() {
		return snapshotState{}, false
	}
	if h.cursor == len(h.stack) {
		h.stack = append(h.stack, current)
		if len(h.stack) > h.depth {
			h.stack = h.stack[1:]
			h.cursor--
		}
	}
	h.cursor--
	return h.stack[h.cursor], true
}

// redo steps the cursor forward and returns the snapshot to restore.
func (h *history) redo() (snapshotState, bool) {
	if !h.canRedo() {
		return snapshotState{}, false
	}
	h.cursor++
	return h.stack[h.cursor], true
}

func (h *history) reset() {
	h.stack = nil
	h.cursor = 0
}

func (h *history) len() int {
	return len(h.stack)
}

// snapshot pushes the current state onto the history stack. Must be called
// with mu held, strictly before the mutation it guards.
func (m *Model) snapshot() {
	m.history.push(m.captureState())
}

func (m *Model) captureState() snapshotState {
	return snapshotState{
		items:        copyItems(m.items),
		tracks:       copyTracks(m.tracks),
		duration:     m.duration,
		selectedItem: m.selectedItem,
		masterVolume: m.masterVolume,
	}
}

func (m *Model) restoreState(s snapshotState) {
	m.items = copyItems(s.items)
	m.tracks = copyTracks(s.tracks)
	m.duration = s.duration
	m.selectedItem = s.selectedItem
	m.masterVolume = s.masterVolume
}

// Undo restores the state before the most recent mutation.
// Returns false when there is nothing to undo.
func (m *Model) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.history.undo(m.captureState())
	if !ok {
		return false
	}
	m.restoreState(s)
	return true
}

// Redo reverses the most recent Undo. Returns false when there is nothing
// to redo.
func (m *Model) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.history.redo()
	if !ok {
		return false
	}
	m.restoreState(s)
	return true
}

// CanUndo reports whether an undo step is available.
func (m *Model) CanUndo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.canUndo()
}

// CanRedo reports whether a redo step is available.
func (m *Model) CanRedo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.canRedo()
}
