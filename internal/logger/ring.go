// internal/logger/ring.go
package logger

import (
	"strings"
	"sync"
)

const defaultRingSize = 256

// Ring is a fixed-size, thread-safe ring of rendered log lines. It backs the
// UI log tail: the newest lines stay in memory while the rotated file keeps
// the full stream.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	next    int
	wrapped bool
	total   uint64
}

// NewRing creates a ring holding up to size lines.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Ring{lines: make([]string, size)}
}

// Write splits p into lines and stores each one. Implements
// zapcore.WriteSyncer so the ring can back a console core.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		r.lines[r.next] = line
		r.next = (r.next + 1) % len(r.lines)
		r.total++
		if r.total >= uint64(len(r.lines)) {
			r.wrapped = true
		}
	}
	return len(p), nil
}

// Sync is a no-op; the ring is memory only.
func (r *Ring) Sync() error {
	return nil
}

// Lines returns up to limit lines, oldest first. limit <= 0 returns all
// retained lines.
func (r *Ring) Lines(limit int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	start := 0
	if r.wrapped {
		count = len(r.lines)
		start = r.next
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, r.lines[(start+i)%len(r.lines)])
	}
	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out
}

// Total returns how many lines have ever been written.
func (r *Ring) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
