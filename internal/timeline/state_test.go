package timeline

import (
	"encoding/json"
	"testing"
)

func TestProjectStateRoundTrip(t *testing.T) {
	m := newTestModel()
	m.AddTrack()
	m.AddItem("clipA", 1)
	m.SetFPS(24)
	m.SetPixelsPerSecond(80)

	state := m.ProjectState()

	// The snapshot must survive the JSON boundary the persistence
	// collaborator uses.
	buf, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded ProjectState
	if err := json.Unmarshal(buf, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m2 := NewModel(testClips())
	if !m2.LoadProjectState(decoded) {
		t.Fatal("LoadProjectState rejected a valid snapshot")
	}

	if len(m2.Items()) != 1 || len(m2.Tracks()) != 2 {
		t.Errorf("restored %d items / %d tracks, want 1 / 2",
			len(m2.Items()), len(m2.Tracks()))
	}
	if m2.FPS() != 24 || m2.PixelsPerSecond() != 80 {
		t.Errorf("view settings = %v fps, %v pps, want 24, 80",
			m2.FPS(), m2.PixelsPerSecond())
	}
	if m2.Duration() != 10 {
		t.Errorf("Duration = %v, want 10", m2.Duration())
	}
}

func TestLoadProjectStateClearsHistory(t *testing.T) {
	m := newTestModel()
	m.AddItem("clipA", 1)
	if !m.CanUndo() {
		t.Fatal("setup: expected undo to be available")
	}

	m.LoadProjectState(ProjectState{Tracks: m.Tracks()})
	if m.CanUndo() || m.CanRedo() {
		t.Error("history survived a full state replace")
	}
	if m.SelectedItem() != "" {
		t.Error("selection survived a full state replace")
	}
}

func TestLoadProjectStateRejectsNoTracks(t *testing.T) {
	m := newTestModel()
	if m.LoadProjectState(ProjectState{}) {
		t.Error("snapshot without tracks was accepted")
	}
	if len(m.Tracks()) != 1 {
		t.Error("model lost its track")
	}
}

func TestExportViewIsDetached(t *testing.T) {
	m := newTestModel()
	m.AddItem("clipA", 1)
	m.SetMasterVolume(0.7)

	view := m.ExportView()
	if view.MasterVolume != 0.7 || len(view.Items) != 1 {
		t.Fatalf("view = %+v", view)
	}

	// Mutating the view must not touch the model.
	view.Items[0].StartTime = 99
	if it := m.Items()[0]; it.StartTime == 99 {
		t.Error("export view shares backing storage with the model")
	}
}
