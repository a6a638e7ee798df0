package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates process-wide counters for /metrics and /health.
// All fields are atomics; safe to call from any session goroutine.
type Metrics struct {
	framesProcessed atomic.Int64
	framesSkipped   atomic.Int64
	framesDropped   atomic.Int64
	predictions     atomic.Int64
	detections      atomic.Int64
	totalErrors     atomic.Int64
	inferenceMs     atomic.Int64
	inferenceCount  atomic.Int64
	activeSessions  atomic.Int32
	lastFrameTime   atomic.Int64
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

func NewMetrics() *Metrics {
	return &Metrics{}
}

func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics()
	})
	return metricsInstance
}

// IncrementFrames counts one fully processed inbound frame.
func (m *Metrics) IncrementFrames() {
	m.framesProcessed.Add(1)
	m.lastFrameTime.Store(time.Now().Unix())
}

// IncrementSkipped counts a frame dropped for data reasons (undecodable,
// oversized, empty). These drops are not reported to the client.
func (m *Metrics) IncrementSkipped() {
	m.framesSkipped.Add(1)
}

// IncrementDropped counts a queued frame superseded by a newer one.
func (m *Metrics) IncrementDropped() {
	m.framesDropped.Add(1)
}

// IncrementPredictions counts one classifier invocation.
func (m *Metrics) IncrementPredictions() {
	m.predictions.Add(1)
}

// IncrementDetections counts one new stable sign.
func (m *Metrics) IncrementDetections() {
	m.detections.Add(1)
}

func (m *Metrics) IncrementErrors() {
	m.totalErrors.Add(1)
}

func (m *Metrics) RecordInference(d time.Duration) {
	m.inferenceMs.Add(d.Milliseconds())
	m.inferenceCount.Add(1)
}

func (m *Metrics) SessionOpened() {
	m.activeSessions.Add(1)
}

func (m *Metrics) SessionClosed() {
	m.activeSessions.Add(-1)
}

func (m *Metrics) GetFramesProcessed() int64 { return m.framesProcessed.Load() }
func (m *Metrics) GetFramesSkipped() int64   { return m.framesSkipped.Load() }
func (m *Metrics) GetFramesDropped() int64   { return m.framesDropped.Load() }
func (m *Metrics) GetPredictions() int64     { return m.predictions.Load() }
func (m *Metrics) GetDetections() int64      { return m.detections.Load() }
func (m *Metrics) GetTotalErrors() int64     { return m.totalErrors.Load() }
func (m *Metrics) GetActiveSessions() int    { return int(m.activeSessions.Load()) }
func (m *Metrics) GetLastFrameTime() int64   { return m.lastFrameTime.Load() }

// GetAvgInferenceMs returns the mean classifier latency in milliseconds.
func (m *Metrics) GetAvgInferenceMs() float64 {
	count := m.inferenceCount.Load()
	if count == 0 {
		return 0
	}
	return float64(m.inferenceMs.Load()) / float64(count)
}
