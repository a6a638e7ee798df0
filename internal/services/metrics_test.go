package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementFrames()
	m.IncrementFrames()
	m.IncrementSkipped()
	m.IncrementDropped()
	m.IncrementPredictions()
	m.IncrementDetections()
	m.IncrementErrors()
	m.SessionOpened()

	assert.Equal(t, int64(2), m.GetFramesProcessed())
	assert.Equal(t, int64(1), m.GetFramesSkipped())
	assert.Equal(t, int64(1), m.GetFramesDropped())
	assert.Equal(t, int64(1), m.GetPredictions())
	assert.Equal(t, int64(1), m.GetDetections())
	assert.Equal(t, int64(1), m.GetTotalErrors())
	assert.Equal(t, 1, m.GetActiveSessions())
	assert.NotZero(t, m.GetLastFrameTime())

	m.SessionClosed()
	assert.Equal(t, 0, m.GetActiveSessions())
}

func TestAvgInferenceMs(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, m.GetAvgInferenceMs())

	m.RecordInference(10 * time.Millisecond)
	m.RecordInference(20 * time.Millisecond)
	assert.InDelta(t, 15.0, m.GetAvgInferenceMs(), 0.001)
}

func TestMetricsConcurrentUse(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.IncrementFrames()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), m.GetFramesProcessed())
}

func TestGetMetricsSingleton(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}
