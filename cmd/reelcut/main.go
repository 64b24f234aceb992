package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"reelcut/internal/audio"
	"reelcut/internal/config"
	"reelcut/internal/media"
	"reelcut/internal/mixgraph"
	"reelcut/internal/playback"
	"reelcut/internal/stream"
	"reelcut/internal/timeline"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("reelcut starting up...")

	if dir := filepath.Dir(cfg.LibraryPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("create library directory: %v", err)
		}
	}
	library, err := media.Open(cfg.LibraryPath)
	if err != nil {
		log.Fatalf("open clip library: %v", err)
	}
	defer library.Close()

	model := timeline.NewModel(library)
	model.SetFPS(cfg.FPS)
	model.SetPixelsPerSecond(cfg.PixelsPerSecond)
	model.SetRippleEdit(cfg.RippleEdit)

	clock := playback.NewClock(model, playback.NewRealtimeDecoder())
	go clock.Run(ctx)

	graph := mixgraph.New(model, mixgraph.OpenPCM)

	// Engine render loop: one frame of preview mix per 20ms tick.
	frames := make(chan []int16, 8)
	go func() {
		defer close(frames)
		defer graph.Close()
		ticker := time.NewTicker(audio.FrameDuration)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				graph.Update(clock.State() == playback.Playing)
				select {
				case frames <- graph.RenderFrame():
				default:
					// broadcaster backed up, drop the frame
				}
			}
		}
	}()

	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, frames)
	webrtcHandler := stream.NewWebRTCHandler(broadcaster)

	mux := http.NewServeMux()

	// Preview monitors
	mux.Handle("/preview", stream.NewHTTPHandler(broadcaster))
	mux.Handle("/offer", webrtcHandler)

	// Transport + status
	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"state":        clock.State().String(),
			"playhead":     model.Playhead(),
			"duration":     model.Duration(),
			"selectedItem": model.SelectedItem(),
			"masterVolume": model.MasterVolume(),
			"rippleEdit":   model.RippleEdit(),
			"canUndo":      model.CanUndo(),
			"canRedo":      model.CanRedo(),
			"monitors":     broadcaster.MonitorCount(),
			"peers":        webrtcHandler.PeerCount(),
			"levels":       graph.Levels(),
		})
	})

	mux.HandleFunc("POST /api/transport", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string   `json:"action"` // play | pause | seek
			Seek   *float64 `json:"seek,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		switch req.Action {
		case "play":
			clock.Play()
		case "pause":
			clock.Pause()
		case "seek":
			if req.Seek == nil {
				http.Error(w, "seek requires a target", http.StatusBadRequest)
				return
			}
			clock.Seek(*req.Seek)
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"state": clock.State().String(), "playhead": model.Playhead()})
	})

	// Clip registry
	mux.HandleFunc("POST /api/clips", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Path     string  `json:"path"`
			Title    string  `json:"title"`
			Duration float64 `json:"duration"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		rec, err := library.Add(req.Path, req.Title, req.Duration)
		if err != nil {
			log.Printf("add clip: %v", err)
			http.Error(w, "add clip failed", http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, rec)
	})

	mux.HandleFunc("GET /api/clips", func(w http.ResponseWriter, r *http.Request) {
		clips, err := library.Clips()
		if err != nil {
			http.Error(w, "list clips failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, clips)
	})

	mux.HandleFunc("DELETE /api/clips/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := library.Remove(r.PathValue("id")); err != nil {
			http.Error(w, "remove clip failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Items
	mux.HandleFunc("POST /api/items", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClipID  string `json:"clipId"`
			TrackID *int   `json:"trackId,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		trackID := 1
		if req.TrackID != nil {
			trackID = *req.TrackID
		}
		id := model.AddItem(req.ClipID, trackID)
		writeJSON(w, map[string]any{"id": id, "added": id != ""})
	})

	mux.HandleFunc("DELETE /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		ripple, _ := strconv.ParseBool(r.URL.Query().Get("ripple"))
		writeJSON(w, map[string]any{"removed": model.RemoveItem(r.PathValue("id"), ripple)})
	})

	mux.HandleFunc("POST /api/items/{id}/split", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			At *float64 `json:"at,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		at := model.Playhead()
		if req.At != nil {
			at = *req.At
		}
		writeJSON(w, map[string]any{"split": model.SplitItemAtPlayhead(r.PathValue("id"), at)})
	})

	mux.HandleFunc("PATCH /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch timeline.ItemPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"updated": model.UpdateItem(r.PathValue("id"), patch)})
	})

	mux.HandleFunc("GET /api/items", func(w http.ResponseWriter, r *http.Request) {
		if v := r.URL.Query().Get("track"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "invalid track number", http.StatusBadRequest)
				return
			}
			writeJSON(w, model.ItemsForTrack(n))
			return
		}
		writeJSON(w, model.Items())
	})

	// Tracks
	mux.HandleFunc("POST /api/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": model.AddTrack()})
	})

	mux.HandleFunc("GET /api/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.Tracks())
	})

	mux.HandleFunc("DELETE /api/tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"deleted": model.DeleteTrack(r.PathValue("id"))})
	})

	mux.HandleFunc("POST /api/tracks/reorder", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Order []string `json:"order"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"reordered": model.ReorderTracks(req.Order)})
	})

	mux.HandleFunc("POST /api/tracks/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Field string `json:"field"` // visibility | lock | mute
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		id := r.PathValue("id")
		var changed bool
		switch req.Field {
		case "visibility":
			changed = model.ToggleVisibility(id)
		case "lock":
			changed = model.ToggleLock(id)
		case "mute":
			changed = model.ToggleMute(id)
		default:
			http.Error(w, "unknown field", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"toggled": changed})
	})

	mux.HandleFunc("PATCH /api/tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   *string  `json:"name,omitempty"`
			Volume *float64 `json:"volume,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		id := r.PathValue("id")
		changed := false
		if req.Name != nil {
			changed = model.UpdateTrackName(id, *req.Name) || changed
		}
		if req.Volume != nil {
			changed = model.SetTrackVolume(id, *req.Volume) || changed
		}
		writeJSON(w, map[string]any{"updated": changed})
	})

	// Selection, volume, history
	mux.HandleFunc("POST /api/select", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ItemID string `json:"itemId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		model.SelectItem(req.ItemID)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/volume", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Master float64 `json:"master"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"changed": model.SetMasterVolume(req.Master)})
	})

	mux.HandleFunc("POST /api/undo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"undone": model.Undo(), "canUndo": model.CanUndo(), "canRedo": model.CanRedo()})
	})

	mux.HandleFunc("POST /api/redo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"redone": model.Redo(), "canUndo": model.CanUndo(), "canRedo": model.CanRedo()})
	})

	// Snap resolution for drags and trims
	mux.HandleFunc("POST /api/snap", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Candidate float64 `json:"candidate"`
			Exclude   string  `json:"exclude"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		edges := timeline.ItemEdges(model.Items(), req.Exclude)
		snapped, ok := timeline.Snap(req.Candidate, edges, cfg.SnapGrid)
		if !ok {
			snapped = req.Candidate
		}
		writeJSON(w, map[string]any{"time": snapped, "snapped": ok})
	})

	// Project state for the persistence collaborator
	mux.HandleFunc("GET /api/project", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.ProjectState())
	})

	mux.HandleFunc("PUT /api/project", func(w http.ResponseWriter, r *http.Request) {
		var state timeline.ProjectState
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			http.Error(w, "invalid project state", http.StatusBadRequest)
			return
		}
		if !model.LoadProjectState(state) {
			http.Error(w, "project state rejected", http.StatusUnprocessableEntity)
			return
		}
		clock.Pause()
		clock.Seek(model.Playhead())
		w.WriteHeader(http.StatusNoContent)
	})

	// Read-only edit model for the export collaborator
	mux.HandleFunc("GET /api/export", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.ExportView())
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		server.Shutdown(shutCtx)
	}()

	log.Printf("reelcut listening on :%d", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	log.Println("reelcut stopped")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
