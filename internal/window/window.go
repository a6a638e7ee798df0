// Package window implements the fixed-capacity FIFO of keypoint vectors
// that forms one classification input.
package window

import (
	"fmt"

	"github.com/nickolaschua/beyondbinary-sub001/internal/landmark"
)

// Window holds the last N keypoint vectors, oldest first. It is owned by
// exactly one session and is not safe for concurrent use.
type Window struct {
	frames []landmark.Vector
	head   int
	count  int
}

// Snapshot is the read-only view returned by Push. Frames is nil until
// the window is full; once full it is an ordered copy (oldest first) that
// stays valid after further pushes.
type Snapshot struct {
	Frames    []landmark.Vector
	Collected int
	Needed    int
}

// Full reports whether the snapshot holds a complete classification input.
func (s Snapshot) Full() bool { return s.Frames != nil }

// New creates a window holding up to capacity vectors.
func New(capacity int) *Window {
	if capacity <= 0 {
		panic(fmt.Sprintf("window capacity must be positive, got %d", capacity))
	}
	return &Window{frames: make([]landmark.Vector, capacity)}
}

// Push appends v, evicting the oldest vector once the window is full.
// The vector must not be modified by the caller after Push; snapshots
// share it. A wrong-length vector is an upstream extraction bug and
// panics rather than being handled as a runtime condition.
func (w *Window) Push(v landmark.Vector) Snapshot {
	if err := v.Validate(); err != nil {
		panic(err)
	}

	capacity := len(w.frames)
	if w.count < capacity {
		w.frames[(w.head+w.count)%capacity] = v
		w.count++
	} else {
		w.frames[w.head] = v
		w.head = (w.head + 1) % capacity
	}

	snap := Snapshot{Collected: w.count, Needed: capacity}
	if w.count == capacity {
		ordered := make([]landmark.Vector, capacity)
		for i := 0; i < capacity; i++ {
			ordered[i] = w.frames[(w.head+i)%capacity]
		}
		snap.Frames = ordered
	}
	return snap
}

// Len returns the current fill count.
func (w *Window) Len() int { return w.count }

// Cap returns the configured capacity.
func (w *Window) Cap() int { return len(w.frames) }
