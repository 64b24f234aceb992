package stream

import (
	"context"
	"sync"
)

// Broadcaster fans out preview mix frames from the engine to N monitors.
type Broadcaster struct {
	mu       sync.RWMutex
	monitors map[*Monitor]struct{}
}

// Monitor receives PCM preview frames from the broadcaster.
type Monitor struct {
	C    chan []int16 // buffered channel of 20ms PCM frames
	done chan struct{}
}

// NewBroadcaster creates a broadcaster with no monitors attached.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		monitors: make(map[*Monitor]struct{}),
	}
}

// Subscribe attaches a new monitor.
func (b *Broadcaster) Subscribe() *Monitor {
	m := &Monitor{
		C:    make(chan []int16, 100), // ~2 seconds of buffer at 20ms/frame
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.monitors[m] = struct{}{}
	b.mu.Unlock()
	return m
}

// Unsubscribe detaches a monitor and signals it to stop.
func (b *Broadcaster) Unsubscribe(m *Monitor) {
	b.mu.Lock()
	delete(b.monitors, m)
	b.mu.Unlock()
	close(m.done)
}

// MonitorCount returns the number of attached monitors.
func (b *Broadcaster) MonitorCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.monitors)
}

// Run reads frames from source and fans out to every monitor. A slow
// monitor gets frames dropped rather than stalling the preview.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.mu.RLock()
			for m := range b.monitors {
				select {
				case m.C <- frame:
				default:
					// monitor too slow, drop the frame
				}
			}
			b.mu.RUnlock()
		}
	}
}
