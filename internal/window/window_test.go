package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickolaschua/beyondbinary-sub001/internal/landmark"
)

// vec returns a valid vector whose first element tags its identity.
func vec(id float32) landmark.Vector {
	v := landmark.Zero()
	v[0] = id
	return v
}

func TestPushReportsFillCount(t *testing.T) {
	w := New(30)

	for i := 1; i <= 29; i++ {
		snap := w.Push(vec(float32(i)))
		assert.False(t, snap.Full())
		assert.Nil(t, snap.Frames)
		assert.Equal(t, i, snap.Collected)
		assert.Equal(t, 30, snap.Needed)
	}

	snap := w.Push(vec(30))
	assert.True(t, snap.Full())
	assert.Equal(t, 30, snap.Collected)
	require.Len(t, snap.Frames, 30)
}

func TestNeverExceedsCapacity(t *testing.T) {
	w := New(5)
	for i := 0; i < 100; i++ {
		w.Push(vec(float32(i)))
		assert.LessOrEqual(t, w.Len(), 5)
	}
	assert.Equal(t, 5, w.Len())
}

func TestFIFOOrderAfterEviction(t *testing.T) {
	w := New(5)
	var snap Snapshot
	for i := 0; i < 12; i++ {
		snap = w.Push(vec(float32(i)))
	}

	// After 12 pushes the window holds exactly the last 5, oldest first.
	require.True(t, snap.Full())
	for i, f := range snap.Frames {
		assert.Equal(t, float32(7+i), f[0])
	}
}

func TestSnapshotSurvivesLaterPushes(t *testing.T) {
	w := New(3)
	w.Push(vec(1))
	w.Push(vec(2))
	snap := w.Push(vec(3))
	require.True(t, snap.Full())

	w.Push(vec(4))
	w.Push(vec(5))

	assert.Equal(t, float32(1), snap.Frames[0][0])
	assert.Equal(t, float32(2), snap.Frames[1][0])
	assert.Equal(t, float32(3), snap.Frames[2][0])
}

func TestFullEveryPushOnceFull(t *testing.T) {
	w := New(3)
	w.Push(vec(1))
	w.Push(vec(2))
	w.Push(vec(3))

	for i := 4; i < 10; i++ {
		snap := w.Push(vec(float32(i)))
		assert.True(t, snap.Full())
		assert.Equal(t, float32(i), snap.Frames[2][0])
	}
}

func TestWrongLengthPanics(t *testing.T) {
	w := New(3)
	assert.Panics(t, func() {
		w.Push(make(landmark.Vector, 10))
	})
}

func TestBadCapacityPanics(t *testing.T) {
	assert.Panics(t, func() { New(0) })
	assert.Panics(t, func() { New(-1) })
}
