package audio

// Smoothstep returns the smoothstep interpolation for t in [0,1].
// Formula: 3t^2 - 2t^3.
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// MixInto accumulates a gain-weighted PCM frame into a float64 master bus.
// Frames shorter than the bus contribute only their own length.
func MixInto(bus []float64, frame []int16, gain float64) {
	if gain == 0 {
		return
	}
	n := len(frame)
	if n > len(bus) {
		n = len(bus)
	}
	for i := 0; i < n; i++ {
		bus[i] += float64(frame[i]) * gain
	}
}

// ClipBus converts a float64 master bus to int16 samples, clipping to range.
func ClipBus(bus []float64) []int16 {
	out := make([]int16, len(bus))
	for i, v := range bus {
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}
