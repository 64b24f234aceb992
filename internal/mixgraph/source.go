package mixgraph

import (
	"sync"

	"reelcut/internal/audio"
	"reelcut/internal/media"
)

// Source is one hidden audio element bound to a clip path. It hands out
// fixed-size PCM frames and tracks its own position, which the graph
// resynchronizes against the playhead when they drift apart.
type Source interface {
	// ReadFrame fills buf with the next interleaved samples, advancing the
	// position. Short or zero reads past the end leave the rest untouched.
	ReadFrame(buf []int16) int
	SeekTo(seconds float64) error
	Position() float64
	Close() error
}

// SourceOpener opens a source for a clip path. Injected so tests run
// without ffmpeg.
type SourceOpener func(path string) (Source, error)

// pcmSource holds a clip's decoded PCM in memory with a frame cursor.
type pcmSource struct {
	mu      sync.Mutex
	samples []int16
	cursor  int // sample offset, multiple of audio.Channels
}

// OpenPCM decodes a media file and returns a seekable PCM source.
func OpenPCM(path string) (Source, error) {
	samples, err := media.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return &pcmSource{samples: samples}, nil
}

func (s *pcmSource) ReadFrame(buf []int16) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(buf, s.samples[min(s.cursor, len(s.samples)):])
	s.cursor += n
	return n
}

func (s *pcmSource) SeekTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor := int(seconds*audio.SampleRate) * audio.Channels
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(s.samples) {
		cursor = len(s.samples)
	}
	s.cursor = cursor
	return nil
}

func (s *pcmSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.cursor/audio.Channels) / audio.SampleRate
}

func (s *pcmSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = nil
	s.cursor = 0
	return nil
}
