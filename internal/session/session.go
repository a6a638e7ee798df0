// Package session holds the per-connection serving state (frame window,
// stability filter, counters) and the manager that multiplexes WebSocket
// connections onto it.
package session

import (
	"context"
	"errors"
	"log"

	"github.com/nickolaschua/beyondbinary-sub001/internal/config"
	"github.com/nickolaschua/beyondbinary-sub001/internal/database"
	"github.com/nickolaschua/beyondbinary-sub001/internal/landmark"
	"github.com/nickolaschua/beyondbinary-sub001/internal/protocol"
	"github.com/nickolaschua/beyondbinary-sub001/internal/services"
	"github.com/nickolaschua/beyondbinary-sub001/internal/stability"
	"github.com/nickolaschua/beyondbinary-sub001/internal/window"
)

// Gateway is the external inference capability a session talks to:
// landmark extraction per frame and classification per full window.
type Gateway interface {
	ExtractKeypoints(ctx context.Context, frame []byte) (landmark.Vector, error)
	Classify(ctx context.Context, snap window.Snapshot) (*services.ClassificationResult, error)
}

// Session is one connection's isolated serving state. ProcessFrame is
// called strictly sequentially from the connection's processing
// goroutine, so none of the state needs locking.
type Session struct {
	ID string

	gateway Gateway
	metrics *services.Metrics
	store   *database.Store

	window *window.Window
	filter *stability.Filter

	maxFrameBytes   int
	framesProcessed int64
}

// NewSession builds a session with an empty window and filter.
func NewSession(id string, cfg *config.Config, gw Gateway, metrics *services.Metrics, store *database.Store) *Session {
	return &Session{
		ID:            id,
		gateway:       gw,
		metrics:       metrics,
		store:         store,
		window:        window.New(cfg.SequenceLength),
		filter:        stability.New(cfg.StabilityWindow, cfg.ConfidenceThreshold),
		maxFrameBytes: cfg.MaxFrameBytes,
	}
}

// FramesProcessed returns the monotonic per-session frame counter.
func (s *Session) FramesProcessed() int64 { return s.framesProcessed }

// ProcessFrame runs one base64 frame payload through decode, extraction,
// the window and (once full) the classifier plus stability filter.
// A nil return means nothing is sent: bad frame data is skipped
// silently so a single bad frame never costs the user their session.
func (s *Session) ProcessFrame(ctx context.Context, payload string) interface{} {
	img, err := protocol.DecodeFramePayload(payload, s.maxFrameBytes)
	if err != nil {
		s.metrics.IncrementSkipped()
		return nil
	}

	vec, err := s.gateway.ExtractKeypoints(ctx, img)
	if err != nil {
		if errors.Is(err, services.ErrFrameUndecodable) {
			s.metrics.IncrementSkipped()
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("Session %s: extraction failed: %v", s.ID, err)
		s.metrics.IncrementErrors()
		return protocol.NewError(protocol.CodeModelUnavailable, "Model unavailable")
	}

	hands := vec.HandsDetected()
	snap := s.window.Push(vec)
	s.framesProcessed++
	s.metrics.IncrementFrames()

	if !snap.Full() {
		return protocol.NewBuffering(snap.Collected, snap.Needed, hands)
	}

	result, err := s.gateway.Classify(ctx, snap)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("Session %s: classify failed: %v", s.ID, err)
		s.metrics.IncrementErrors()
		return protocol.NewError(protocol.CodeModelUnavailable, "Model unavailable")
	}

	s.metrics.IncrementPredictions()
	s.metrics.RecordInference(result.InferenceTime)

	decision := s.filter.Update(result.Label, result.Confidence)
	if decision.IsNewSign {
		log.Printf("Session %s: new sign detected: %s (%.2f)", s.ID, decision.Sign, result.Confidence)
		s.metrics.IncrementDetections()
		s.store.RecordDetection(s.ID, decision.Sign, result.Confidence)
	}

	all := make(map[string]float64, len(result.Probabilities))
	for label, p := range result.Probabilities {
		all[label] = protocol.Round4(p)
	}

	return protocol.SignPrediction{
		Type:             protocol.TypeSignPrediction,
		Sign:             decision.Sign,
		Confidence:       protocol.Round4(result.Confidence),
		IsStable:         decision.IsStable,
		IsNewSign:        decision.IsNewSign,
		HandsDetected:    hands,
		AllPredictions:   all,
		FramesProcessed:  s.framesProcessed,
		TotalInferenceMs: float64(result.InferenceTime.Microseconds()) / 1000.0,
	}
}
