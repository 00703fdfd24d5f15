// package rig contains the skeleton data model for skeletal animation: joint
// identifiers, inverse bind matrices, the hierarchy table, and the decomposed
// transform type animation sampling produces. Everything here is plain data,
// built once by the loader and shared read-only across animator instances.
package rig

import (
	"math"

	"github.com/Carmen-Shannon/rig-go/common"
)

// JointID identifies a joint within a skeleton. IDs are dense, starting at 0,
// and double as indices into the skeleton's joint, parent, children, and name
// tables.
type JointID uint32

const (
	// NullJointID is the reserved sentinel for "no joint", used as the parent
	// of the root joint.
	NullJointID JointID = math.MaxUint32

	// RootJointID is the id of the root joint. A valid skeleton always has
	// its root at index 0.
	RootJointID JointID = 0
)

// Joint represents a single joint in a skeleton. The joint's id is its index
// in the skeleton's Joints slice; hierarchy and debug names live in
// skeleton-level tables.
type Joint struct {
	// InverseBindMatrix transforms mesh-space bind-pose geometry into this
	// joint's local space (column-major). Combined with the joint's animated
	// global transform it produces the final skinning matrix.
	InverseBindMatrix [16]float32
}

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// RestTransform returns the rest/identity transform: zero translation,
// identity rotation, unit scale. Channels with no keyframes sample to this
// value component-wise.
//
// Returns:
//   - Transform: the rest transform
func RestTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// Matrix composes the transform into a 4x4 column-major matrix (T * R * S)
// written to out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (t Transform) Matrix(out []float32) {
	common.ComposeTRS(out, t.Translation, t.Rotation, t.Scale)
}
