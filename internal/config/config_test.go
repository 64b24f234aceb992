package config

import (
	"os"
	"testing"
)

var configEnvVars = []string{
	"REELCUT_PORT", "REELCUT_LIBRARY", "REELCUT_FPS",
	"REELCUT_PPS", "REELCUT_SNAP_GRID", "REELCUT_RIPPLE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Port != 8090 {
		t.Errorf("Port = %d, want 8090", cfg.Port)
	}
	if cfg.LibraryPath != "./data/reelcut.db" {
		t.Errorf("LibraryPath = %q, want ./data/reelcut.db", cfg.LibraryPath)
	}
	if cfg.FPS != 30 {
		t.Errorf("FPS = %v, want 30", cfg.FPS)
	}
	if cfg.PixelsPerSecond != 50 {
		t.Errorf("PixelsPerSecond = %v, want 50", cfg.PixelsPerSecond)
	}
	if cfg.SnapGrid != 0.25 {
		t.Errorf("SnapGrid = %v, want 0.25", cfg.SnapGrid)
	}
	if cfg.RippleEdit {
		t.Error("RippleEdit defaults on, want off")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REELCUT_PORT", "9000")
	t.Setenv("REELCUT_FPS", "23.976")
	t.Setenv("REELCUT_SNAP_GRID", "0.5")
	t.Setenv("REELCUT_RIPPLE", "true")

	cfg := Load()
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.FPS != 23.976 {
		t.Errorf("FPS = %v, want 23.976", cfg.FPS)
	}
	if cfg.SnapGrid != 0.5 {
		t.Errorf("SnapGrid = %v, want 0.5", cfg.SnapGrid)
	}
	if !cfg.RippleEdit {
		t.Error("RippleEdit override ignored")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REELCUT_PORT", "not-a-number")
	t.Setenv("REELCUT_FPS", "fast")
	t.Setenv("REELCUT_RIPPLE", "maybe")

	cfg := Load()
	if cfg.Port != 8090 || cfg.FPS != 30 || cfg.RippleEdit {
		t.Errorf("malformed values did not fall back: %+v", cfg)
	}
}
