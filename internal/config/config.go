package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultActions is the sign vocabulary the bundled model was trained on.
// The sidecar reports the authoritative label order with every
// classification; this list only feeds /health and all_predictions keys.
var DefaultActions = []string{
	"Hello", "Thank_You", "Help", "Yes", "No",
	"Please", "Sorry", "I_Love_You", "Stop", "More",
}

type Config struct {
	HTTPPort      string
	InferenceAddr string
	CORSOrigins   string
	Environment   string

	SequenceLength      int
	ConfidenceThreshold float64
	StabilityWindow     int
	Actions             []string

	RateLimitFrames int
	RateLimitWindow time.Duration
	RateLimitCloses int
	MaxFrameBytes   int
	MaxConnections  int
	MaxInflight     int

	// APIKey enables the auth gate when set; APIKeyHash takes precedence
	// and holds a bcrypt hash of the key instead of the key itself.
	APIKey     string
	APIKeyHash string

	// DatabaseDSN enables the detection event store when set.
	DatabaseDSN string
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// AuthEnabled reports whether connections must present an API key.
func (c *Config) AuthEnabled() bool {
	return c.APIKey != "" || c.APIKeyHash != ""
}

func LoadConfig() *Config {
	// .env is optional; system environment wins when the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		HTTPPort:            getEnv("SENSEAI_PORT", "8001"),
		InferenceAddr:       getEnv("SENSEAI_INFERENCE_ADDR", "localhost:50051"),
		CORSOrigins:         getEnv("SENSEAI_CORS_ORIGINS", "*"),
		Environment:         getEnv("SENSEAI_ENVIRONMENT", "production"),
		SequenceLength:      getEnvInt("SENSEAI_SEQUENCE_LENGTH", 30),
		ConfidenceThreshold: getEnvFloat("SENSEAI_CONFIDENCE_THRESHOLD", 0.7),
		StabilityWindow:     getEnvInt("SENSEAI_STABILITY_WINDOW", 8),
		Actions:             getEnvList("SENSEAI_ACTIONS", DefaultActions),
		RateLimitFrames:     getEnvInt("SENSEAI_RATE_LIMIT_FRAMES", 60),
		RateLimitWindow:     time.Duration(getEnvInt("SENSEAI_RATE_LIMIT_WINDOW_SEC", 10)) * time.Second,
		RateLimitCloses:     getEnvInt("SENSEAI_RATE_LIMIT_CLOSE_AFTER", 20),
		MaxFrameBytes:       getEnvInt("SENSEAI_MAX_FRAME_MB", 5) * 1024 * 1024,
		MaxConnections:      getEnvInt("SENSEAI_MAX_CONNECTIONS", 1000),
		MaxInflight:         getEnvInt("SENSEAI_MAX_INFLIGHT", 0),
		APIKey:              getEnv("SENSEAI_API_KEY", ""),
		APIKeyHash:          getEnv("SENSEAI_API_KEY_HASH", ""),
		DatabaseDSN:         getEnv("SENSEAI_DB_DSN", ""),
	}

	if cfg.SequenceLength <= 0 {
		log.Println("WARNING: invalid sequence length, using 30")
		cfg.SequenceLength = 30
	}
	if cfg.StabilityWindow <= 0 {
		log.Println("WARNING: invalid stability window, using 8")
		cfg.StabilityWindow = 8
	}

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if floatVal, err := strconv.ParseFloat(v, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
