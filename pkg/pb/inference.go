// Package pb holds the wire types and client stubs for the inference
// sidecar. The types are hand-maintained against inference.proto; the
// struct tags carry the field numbers, so keep both files in sync.
package pb

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/protoadapt"
)

type FrameRequest struct {
	ImageData []byte `protobuf:"bytes,1,opt,name=image_data,proto3" json:"image_data,omitempty"`
}

func (m *FrameRequest) Reset()         { *m = FrameRequest{} }
func (m *FrameRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*FrameRequest) ProtoMessage()    {}

type KeypointsResult struct {
	Keypoints []float32 `protobuf:"fixed32,1,rep,packed,name=keypoints,proto3" json:"keypoints,omitempty"`
}

func (m *KeypointsResult) Reset()         { *m = KeypointsResult{} }
func (m *KeypointsResult) String() string { return fmt.Sprintf("%+v", *m) }
func (*KeypointsResult) ProtoMessage()    {}

type FrameKeypoints struct {
	Keypoints []float32 `protobuf:"fixed32,1,rep,packed,name=keypoints,proto3" json:"keypoints,omitempty"`
}

func (m *FrameKeypoints) Reset()         { *m = FrameKeypoints{} }
func (m *FrameKeypoints) String() string { return fmt.Sprintf("%+v", *m) }
func (*FrameKeypoints) ProtoMessage()    {}

type ClassifyRequest struct {
	Frames []*FrameKeypoints `protobuf:"bytes,1,rep,name=frames,proto3" json:"frames,omitempty"`
}

func (m *ClassifyRequest) Reset()         { *m = ClassifyRequest{} }
func (m *ClassifyRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ClassifyRequest) ProtoMessage()    {}

type ClassifyResult struct {
	Label           string    `protobuf:"bytes,1,opt,name=label,proto3" json:"label,omitempty"`
	Confidence      float32   `protobuf:"fixed32,2,opt,name=confidence,proto3" json:"confidence,omitempty"`
	Probabilities   []float32 `protobuf:"fixed32,3,rep,packed,name=probabilities,proto3" json:"probabilities,omitempty"`
	Labels          []string  `protobuf:"bytes,4,rep,name=labels,proto3" json:"labels,omitempty"`
	InferenceTimeMs float32   `protobuf:"fixed32,5,opt,name=inference_time_ms,proto3" json:"inference_time_ms,omitempty"`
}

func (m *ClassifyResult) Reset()         { *m = ClassifyResult{} }
func (m *ClassifyResult) String() string { return fmt.Sprintf("%+v", *m) }
func (*ClassifyResult) ProtoMessage()    {}

// The gRPC proto codec accepts legacy messages through protoadapt.
var (
	_ protoadapt.MessageV1 = (*FrameRequest)(nil)
	_ protoadapt.MessageV1 = (*KeypointsResult)(nil)
	_ protoadapt.MessageV1 = (*FrameKeypoints)(nil)
	_ protoadapt.MessageV1 = (*ClassifyRequest)(nil)
	_ protoadapt.MessageV1 = (*ClassifyResult)(nil)
)

const (
	inferenceExtractKeypointsMethod = "/senseai.inference.v1.Inference/ExtractKeypoints"
	inferenceClassifyMethod         = "/senseai.inference.v1.Inference/Classify"
)

// InferenceClient is the client API for the Inference service.
type InferenceClient interface {
	ExtractKeypoints(ctx context.Context, in *FrameRequest, opts ...grpc.CallOption) (*KeypointsResult, error)
	Classify(ctx context.Context, in *ClassifyRequest, opts ...grpc.CallOption) (*ClassifyResult, error)
}

type inferenceClient struct {
	cc grpc.ClientConnInterface
}

func NewInferenceClient(cc grpc.ClientConnInterface) InferenceClient {
	return &inferenceClient{cc: cc}
}

func (c *inferenceClient) ExtractKeypoints(ctx context.Context, in *FrameRequest, opts ...grpc.CallOption) (*KeypointsResult, error) {
	out := new(KeypointsResult)
	if err := c.cc.Invoke(ctx, inferenceExtractKeypointsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inferenceClient) Classify(ctx context.Context, in *ClassifyRequest, opts ...grpc.CallOption) (*ClassifyResult, error) {
	out := new(ClassifyResult)
	if err := c.cc.Invoke(ctx, inferenceClassifyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
