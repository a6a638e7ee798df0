package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nickolaschua/beyondbinary-sub001/internal/landmark"
	"github.com/nickolaschua/beyondbinary-sub001/internal/window"
	"github.com/nickolaschua/beyondbinary-sub001/pkg/pb"
)

type fakeInference struct {
	extractRes  *pb.KeypointsResult
	extractErr  error
	classifyRes *pb.ClassifyResult
	classifyErr error
}

func (f *fakeInference) ExtractKeypoints(context.Context, *pb.FrameRequest, ...grpc.CallOption) (*pb.KeypointsResult, error) {
	return f.extractRes, f.extractErr
}

func (f *fakeInference) Classify(context.Context, *pb.ClassifyRequest, ...grpc.CallOption) (*pb.ClassifyResult, error) {
	return f.classifyRes, f.classifyErr
}

func newTestClient(fake *fakeInference) *InferenceClient {
	return &InferenceClient{
		client: fake,
		sem:    semaphore.NewWeighted(2),
	}
}

func fullSnapshot(n int) window.Snapshot {
	w := window.New(n)
	var snap window.Snapshot
	for i := 0; i < n; i++ {
		snap = w.Push(landmark.Zero())
	}
	return snap
}

func TestExtractKeypointsReturnsVector(t *testing.T) {
	kp := make([]float32, landmark.VectorLen)
	kp[0] = 0.25
	ic := newTestClient(&fakeInference{extractRes: &pb.KeypointsResult{Keypoints: kp}})

	vec, err := ic.ExtractKeypoints(context.Background(), []byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), vec[0])
	assert.NoError(t, vec.Validate())
}

func TestExtractKeypointsUndecodableFrame(t *testing.T) {
	ic := newTestClient(&fakeInference{
		extractErr: status.Error(codes.InvalidArgument, "cannot decode image"),
	})

	_, err := ic.ExtractKeypoints(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrFrameUndecodable)
}

func TestExtractKeypointsCollaboratorFault(t *testing.T) {
	ic := newTestClient(&fakeInference{
		extractErr: status.Error(codes.Unavailable, "model not loaded"),
	})

	_, err := ic.ExtractKeypoints(context.Background(), []byte{1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFrameUndecodable)
}

func TestExtractKeypointsRejectsBadVectorLength(t *testing.T) {
	ic := newTestClient(&fakeInference{
		extractRes: &pb.KeypointsResult{Keypoints: []float32{1, 2, 3}},
	})

	_, err := ic.ExtractKeypoints(context.Background(), []byte{1})
	assert.Error(t, err, "a wrong-shape vector is an extraction contract violation")
}

func TestClassifyMapsResult(t *testing.T) {
	ic := newTestClient(&fakeInference{classifyRes: &pb.ClassifyResult{
		Label:           "Hello",
		Confidence:      0.92,
		Labels:          []string{"Hello", "No"},
		Probabilities:   []float32{0.92, 0.08},
		InferenceTimeMs: 12.5,
	}})

	res, err := ic.Classify(context.Background(), fullSnapshot(3))
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Label)
	assert.InDelta(t, 0.92, res.Confidence, 1e-6)
	assert.InDelta(t, 0.92, res.Probabilities["Hello"], 1e-6)
	assert.InDelta(t, 0.08, res.Probabilities["No"], 1e-6)
	assert.Equal(t, 12500*time.Microsecond, res.InferenceTime)
}

func TestClassifyRejectsPartialWindow(t *testing.T) {
	ic := newTestClient(&fakeInference{})

	w := window.New(5)
	snap := w.Push(landmark.Zero())
	_, err := ic.Classify(context.Background(), snap)
	assert.Error(t, err)
}
