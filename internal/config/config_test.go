package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8001", cfg.HTTPPort)
	assert.Equal(t, 30, cfg.SequenceLength)
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold)
	assert.Equal(t, 8, cfg.StabilityWindow)
	assert.Equal(t, 60, cfg.RateLimitFrames)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 5*1024*1024, cfg.MaxFrameBytes)
	assert.Equal(t, DefaultActions, cfg.Actions)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.IsDev())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SENSEAI_PORT", "9000")
	t.Setenv("SENSEAI_SEQUENCE_LENGTH", "10")
	t.Setenv("SENSEAI_CONFIDENCE_THRESHOLD", "0.85")
	t.Setenv("SENSEAI_STABILITY_WINDOW", "4")
	t.Setenv("SENSEAI_ACTIONS", "Hello, Stop ,More")
	t.Setenv("SENSEAI_API_KEY", "k")
	t.Setenv("SENSEAI_ENVIRONMENT", "dev")

	cfg := LoadConfig()
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.SequenceLength)
	assert.Equal(t, 0.85, cfg.ConfidenceThreshold)
	assert.Equal(t, 4, cfg.StabilityWindow)
	assert.Equal(t, []string{"Hello", "Stop", "More"}, cfg.Actions)
	assert.True(t, cfg.AuthEnabled())
	assert.True(t, cfg.IsDev())
}

func TestLoadConfigIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("SENSEAI_SEQUENCE_LENGTH", "not-a-number")
	t.Setenv("SENSEAI_CONFIDENCE_THRESHOLD", "high")

	cfg := LoadConfig()
	assert.Equal(t, 30, cfg.SequenceLength)
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold)
}

func TestLoadConfigRejectsNonPositiveWindowSizes(t *testing.T) {
	t.Setenv("SENSEAI_SEQUENCE_LENGTH", "-5")
	t.Setenv("SENSEAI_STABILITY_WINDOW", "0")

	cfg := LoadConfig()
	assert.Equal(t, 30, cfg.SequenceLength)
	assert.Equal(t, 8, cfg.StabilityWindow)
}
