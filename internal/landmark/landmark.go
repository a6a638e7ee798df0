// Package landmark defines the fixed-length keypoint vector produced by
// the extraction sidecar for one video frame.
//
// Section order is [pose, face, left hand, right hand] and must match the
// training pipeline exactly. A section the detector did not find is all
// zeros, never shorter.
package landmark

import "fmt"

const (
	// Pose: 33 landmarks x (x, y, z, visibility).
	PoseLen = 33 * 4
	// Face mesh: 468 landmarks x (x, y, z).
	FaceLen = 468 * 3
	// Each hand: 21 landmarks x (x, y, z).
	HandLen = 21 * 3

	PoseOffset      = 0
	FaceOffset      = PoseOffset + PoseLen
	LeftHandOffset  = FaceOffset + FaceLen
	RightHandOffset = LeftHandOffset + HandLen

	// VectorLen is 132 + 1404 + 63 + 63 = 1662.
	VectorLen = RightHandOffset + HandLen
)

// Vector is one frame's flattened keypoints, length exactly VectorLen.
type Vector []float32

// Zero returns an all-zero vector (nothing detected).
func Zero() Vector {
	return make(Vector, VectorLen)
}

// Validate checks the length contract. A wrong length means the
// extraction sidecar and this server disagree on the model input shape.
func (v Vector) Validate() error {
	if len(v) != VectorLen {
		return fmt.Errorf("landmark vector has length %d, want %d", len(v), VectorLen)
	}
	return nil
}

func (v Vector) Pose() []float32      { return v[PoseOffset:FaceOffset] }
func (v Vector) Face() []float32      { return v[FaceOffset:LeftHandOffset] }
func (v Vector) LeftHand() []float32  { return v[LeftHandOffset:RightHandOffset] }
func (v Vector) RightHand() []float32 { return v[RightHandOffset:VectorLen] }

// HasLeftHand reports whether the left-hand section is non-zero, i.e. the
// detector actually saw a left hand in the frame.
func (v Vector) HasLeftHand() bool { return anyNonZero(v.LeftHand()) }

// HasRightHand reports whether the right-hand section is non-zero.
func (v Vector) HasRightHand() bool { return anyNonZero(v.RightHand()) }

// HandsDetected reports whether either hand was seen.
func (v Vector) HandsDetected() bool { return v.HasLeftHand() || v.HasRightHand() }

func anyNonZero(s []float32) bool {
	for _, f := range s {
		if f != 0 {
			return true
		}
	}
	return false
}
