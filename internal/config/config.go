package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Clip library
	LibraryPath string

	// Project defaults
	FPS             float64
	PixelsPerSecond float64
	SnapGrid        float64 // seconds; snap threshold and grid size
	RippleEdit      bool    // global ripple toggle at startup
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("REELCUT_PORT", 8090),

		LibraryPath: envStr("REELCUT_LIBRARY", "./data/reelcut.db"),

		FPS:             envFloat("REELCUT_FPS", 30),
		PixelsPerSecond: envFloat("REELCUT_PPS", 50),
		SnapGrid:        envFloat("REELCUT_SNAP_GRID", 0.25),
		RippleEdit:      envBool("REELCUT_RIPPLE", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
