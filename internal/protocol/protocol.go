// Package protocol owns the wire format of the sign-detection stream:
// inbound envelopes, outbound messages, the error taxonomy and the
// frame payload decoding rules.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// Message types on the wire.
const (
	TypeFrame          = "frame"
	TypeBuffering      = "buffering"
	TypeSignPrediction = "sign_prediction"
	TypeError          = "error"
)

// Error codes carried in error responses.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeUnknownType      = "unknown_type"
	CodeRateLimited      = "rate_limited"
	CodeModelUnavailable = "model_unavailable"
)

// CloseUnauthorized is sent when the auth gate denies a connection.
// 4000-4999 is the application range of the WebSocket close code space.
const CloseUnauthorized = 4401

// Envelope is one inbound client message.
type Envelope struct {
	Type  string `json:"type"`
	Frame string `json:"frame,omitempty"`
}

// ErrInvalidJSON marks an inbound message that is not a JSON object.
var ErrInvalidJSON = errors.New("invalid JSON message")

// DecodeEnvelope parses one inbound text message.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, ErrInvalidJSON
	}
	return env, nil
}

// Frame payload decode failures. All of these are skipped silently by the
// session (no response) — a single bad frame must not cost the user their
// connection or flood a slow client with error chatter.
var (
	ErrEmptyFrame    = errors.New("empty frame payload")
	ErrFrameTooLarge = errors.New("frame payload exceeds byte budget")
	ErrBadEncoding   = errors.New("frame payload is not valid base64")
)

// DecodeFramePayload turns the base64 frame field (with or without a
// "data:image/...;base64," prefix) into raw image bytes. The size check
// runs before base64 decode so an oversized payload is never inflated.
func DecodeFramePayload(data string, maxBytes int) ([]byte, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyFrame
	}
	if strings.HasPrefix(data, "data:") {
		_, rest, found := strings.Cut(data, ",")
		if !found || rest == "" {
			return nil, ErrEmptyFrame
		}
		data = rest
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, ErrFrameTooLarge
	}
	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrBadEncoding
	}
	if len(img) == 0 {
		return nil, ErrEmptyFrame
	}
	return img, nil
}

// Buffering tells the client the window is not yet full.
type Buffering struct {
	Type            string `json:"type"`
	FramesCollected int    `json:"frames_collected"`
	FramesNeeded    int    `json:"frames_needed"`
	HandsDetected   bool   `json:"hands_detected"`
}

func NewBuffering(collected, needed int, hands bool) Buffering {
	return Buffering{
		Type:            TypeBuffering,
		FramesCollected: collected,
		FramesNeeded:    needed,
		HandsDetected:   hands,
	}
}

// SignPrediction is the per-frame decision after the stability filter.
type SignPrediction struct {
	Type             string             `json:"type"`
	Sign             string             `json:"sign"`
	Confidence       float64            `json:"confidence"`
	IsStable         bool               `json:"is_stable"`
	IsNewSign        bool               `json:"is_new_sign"`
	HandsDetected    bool               `json:"hands_detected"`
	AllPredictions   map[string]float64 `json:"all_predictions"`
	FramesProcessed  int64              `json:"frames_processed"`
	TotalInferenceMs float64            `json:"total_inference_ms"`
}

// ErrorMessage reports malformed input, rate limiting or a fatal
// collaborator condition. The session stays open unless the manager
// escalates.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(code, message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Code: code, Message: message}
}

// Round4 trims a probability to four decimals, matching what clients
// display.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
