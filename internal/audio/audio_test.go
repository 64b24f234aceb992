package audio

import (
	"testing"
	"time"
)

// --- Constants ---

func TestConstants(t *testing.T) {
	// 48kHz * 20ms = 960 samples per channel
	if got := SampleRate * int(FrameDuration/time.Millisecond) / 1000; got != FrameSize {
		t.Errorf("FrameSize mismatch: want %d, got %d", got, FrameSize)
	}
	if FrameSamples != FrameSize*Channels {
		t.Errorf("FrameSamples = %d, want %d", FrameSamples, FrameSize*Channels)
	}
	if FrameBytes != FrameSamples*2 {
		t.Errorf("FrameBytes = %d, want %d", FrameBytes, FrameSamples*2)
	}
}

// --- Smoothstep ---

func TestSmoothstepBoundaries(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		got := Smoothstep(tt.input)
		if got != tt.want {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSmoothstepMonotonic(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 100; i++ {
		x := float64(i) / 100.0
		val := Smoothstep(x)
		if val < prev {
			t.Errorf("Smoothstep not monotonic at %v: %v < %v", x, val, prev)
		}
		prev = val
	}
}

// --- MixInto / ClipBus ---

func TestMixIntoAccumulates(t *testing.T) {
	bus := make([]float64, 4)
	MixInto(bus, []int16{1000, -1000, 500, -500}, 0.5)
	MixInto(bus, []int16{1000, 1000, 1000, 1000}, 1)

	want := []float64{1500, 500, 1250, 750}
	for i, v := range want {
		if bus[i] != v {
			t.Errorf("bus[%d] = %v, want %v", i, bus[i], v)
		}
	}
}

func TestMixIntoZeroGainIsFree(t *testing.T) {
	bus := make([]float64, 2)
	MixInto(bus, []int16{32767, 32767}, 0)
	if bus[0] != 0 || bus[1] != 0 {
		t.Errorf("zero-gain mix wrote to the bus: %v", bus)
	}
}

func TestClipBusClipsToRange(t *testing.T) {
	bus := []float64{100000, -100000, 1234, -1234}
	out := ClipBus(bus)

	want := []int16{32767, -32768, 1234, -1234}
	for i, v := range want {
		if out[i] != v {
			t.Errorf("out[%d] = %d, want %d", i, out[i], v)
		}
	}
}

// --- Byte conversion ---

func TestSamplesBytesRoundTrip(t *testing.T) {
	original := []int16{0, 1, -1, 32767, -32768, 12345, -6789}
	buf := SamplesToBytes(original)
	if len(buf) != len(original)*2 {
		t.Fatalf("SamplesToBytes length = %d, want %d", len(buf), len(original)*2)
	}

	recovered := BytesToSamples(buf)
	for i, v := range original {
		if recovered[i] != v {
			t.Errorf("round-trip sample[%d]: got %d, want %d", i, recovered[i], v)
		}
	}
}

func TestBytesToSamplesDropsOddByte(t *testing.T) {
	samples := BytesToSamples([]byte{0x00, 0x01, 0xff})
	if len(samples) != 1 || samples[0] != 256 {
		t.Errorf("samples = %v, want [256]", samples)
	}
}

// --- Analyzer ---

func TestAnalyzerLevels(t *testing.T) {
	a := NewAnalyzer()
	rms, peak := a.Levels()
	if rms != 0 || peak != 0 {
		t.Errorf("fresh analyzer levels = %v/%v, want 0/0", rms, peak)
	}

	frame := make([]float64, 4)
	for i := range frame {
		frame[i] = 16384 // half of full scale
	}
	a.Process(frame)

	rms, peak = a.Levels()
	if rms < 0.49 || rms > 0.51 {
		t.Errorf("rms = %v, want ~0.5", rms)
	}
	if peak < 0.49 || peak > 0.51 {
		t.Errorf("peak = %v, want ~0.5", peak)
	}

	a.Reset()
	if rms, peak = a.Levels(); rms != 0 || peak != 0 {
		t.Errorf("levels after reset = %v/%v, want 0/0", rms, peak)
	}
}

func TestAnalyzerPeakTracksLoudestSample(t *testing.T) {
	a := NewAnalyzer()
	a.Process([]float64{0, -32768, 100, 0})
	_, peak := a.Levels()
	if peak < 0.99 {
		t.Errorf("peak = %v, want ~1.0", peak)
	}
}
