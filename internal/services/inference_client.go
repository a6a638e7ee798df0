package services

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"github.com/nickolaschua/beyondbinary-sub001/internal/landmark"
	"github.com/nickolaschua/beyondbinary-sub001/internal/window"
	"github.com/nickolaschua/beyondbinary-sub001/pkg/pb"
)

// ClassificationResult is one classifier invocation's output.
type ClassificationResult struct {
	Label         string
	Confidence    float64
	Probabilities map[string]float64
	InferenceTime time.Duration
}

// ErrFrameUndecodable marks a frame the sidecar could not parse as an
// image. Sessions skip these silently.
var ErrFrameUndecodable = fmt.Errorf("sidecar could not decode frame")

// InferenceClient adapts the Python inference sidecar (MediaPipe + the
// trained sequence model) to the serving core. All calls go through a
// weighted semaphore so one session's backlog cannot occupy every worker
// and starve the others.
type InferenceClient struct {
	conn   *grpc.ClientConn
	client pb.InferenceClient
	health healthpb.HealthClient
	sem    *semaphore.Weighted
	addr   string
}

// NewInferenceClient dials the sidecar. maxInflight bounds concurrent
// calls; 0 means one per CPU.
func NewInferenceClient(addr string, maxInflight int) (*InferenceClient, error) {
	log.Printf("Connecting to inference sidecar at %s", addr)

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(16*1024*1024),
			grpc.MaxCallSendMsgSize(16*1024*1024),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not connect to inference sidecar at %s: %w", addr, err)
	}

	if maxInflight <= 0 {
		maxInflight = runtime.GOMAXPROCS(0)
	}

	log.Printf("Connected to inference sidecar at %s (max inflight %d)", addr, maxInflight)

	return &InferenceClient{
		conn:   conn,
		client: pb.NewInferenceClient(conn),
		health: healthpb.NewHealthClient(conn),
		sem:    semaphore.NewWeighted(int64(maxInflight)),
		addr:   addr,
	}, nil
}

// ExtractKeypoints sends one JPEG frame to the sidecar and returns the
// flattened keypoint vector. Returns ErrFrameUndecodable when the image
// itself is bad; any other error is a collaborator fault.
func (ic *InferenceClient) ExtractKeypoints(ctx context.Context, frame []byte) (landmark.Vector, error) {
	if err := ic.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer ic.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := ic.client.ExtractKeypoints(ctx, &pb.FrameRequest{ImageData: frame})
	if err != nil {
		if status.Code(err) == codes.InvalidArgument {
			return nil, ErrFrameUndecodable
		}
		return nil, fmt.Errorf("extract keypoints: %w", err)
	}

	vec := landmark.Vector(res.Keypoints)
	if err := vec.Validate(); err != nil {
		return nil, fmt.Errorf("sidecar returned bad vector: %w", err)
	}
	return vec, nil
}

// Classify runs the sequence model over a full window.
func (ic *InferenceClient) Classify(ctx context.Context, snap window.Snapshot) (*ClassificationResult, error) {
	if !snap.Full() {
		return nil, fmt.Errorf("classify called on a window with %d/%d frames", snap.Collected, snap.Needed)
	}

	if err := ic.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer ic.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req := &pb.ClassifyRequest{Frames: make([]*pb.FrameKeypoints, len(snap.Frames))}
	for i, vec := range snap.Frames {
		req.Frames[i] = &pb.FrameKeypoints{Keypoints: vec}
	}

	start := time.Now()
	res, err := ic.client.Classify(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	probs := make(map[string]float64, len(res.Labels))
	for i, label := range res.Labels {
		if i < len(res.Probabilities) {
			probs[label] = float64(res.Probabilities[i])
		}
	}

	elapsed := time.Since(start)
	if res.InferenceTimeMs > 0 {
		elapsed = time.Duration(float64(res.InferenceTimeMs) * float64(time.Millisecond))
	}

	return &ClassificationResult{
		Label:         res.Label,
		Confidence:    float64(res.Confidence),
		Probabilities: probs,
		InferenceTime: elapsed,
	}, nil
}

// HealthCheck reports whether the sidecar has its model loaded, via the
// standard gRPC health protocol.
func (ic *InferenceClient) HealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := ic.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return false
	}
	return res.Status == healthpb.HealthCheckResponse_SERVING
}

func (ic *InferenceClient) Close() error {
	if ic.conn != nil {
		return ic.conn.Close()
	}
	return nil
}
