package rig

// Skeleton represents a joint hierarchy for skeletal animation. It is built
// once at load time (see the loader package), shared read-only across every
// animator instance that uses it, and never mutated after construction.
//
// Invariants established by the loader and trusted at runtime: joint 0 is the
// root (its parent is NullJointID); the hierarchy is a tree with a single
// root and no cycles; parents precede children in index order; every JointID
// stored in Parents or Children is < JointCount().
type Skeleton struct {
	// Joints is the ordered array of all joints. A joint's id is its index.
	Joints []Joint

	// Parents holds each joint's parent id, NullJointID for the root.
	Parents []JointID

	// Children holds each joint's ordered child ids.
	Children [][]JointID

	// Names maps each joint id to its display name. Debug only: runtime
	// evaluation never consults names.
	Names []string

	// NameToID maps joint names to their ids for quick lookup.
	NameToID map[string]JointID
}

// JointCount returns the number of joints in the skeleton.
//
// Returns:
//   - int: the joint count
func (s *Skeleton) JointCount() int {
	return len(s.Joints)
}

// Parent returns the parent id of the given joint, NullJointID for the root.
// The id must be valid (< JointCount()); an out-of-range id is a caller bug
// and faults on the slice access.
//
// Parameters:
//   - id: the joint to look up
//
// Returns:
//   - JointID: the parent id, or NullJointID
func (s *Skeleton) Parent(id JointID) JointID {
	return s.Parents[id]
}

// ChildrenOf returns the ordered child ids of the given joint. The returned
// slice is the skeleton's own table and must not be modified. The id must be
// valid (< JointCount()).
//
// Parameters:
//   - id: the joint to look up
//
// Returns:
//   - []JointID: the joint's children (possibly empty)
func (s *Skeleton) ChildrenOf(id JointID) []JointID {
	return s.Children[id]
}

// InverseBindMatrix returns the inverse bind matrix of the given joint.
// The id must be valid (< JointCount()).
//
// Parameters:
//   - id: the joint to look up
//
// Returns:
//   - [16]float32: the column-major inverse bind matrix
func (s *Skeleton) InverseBindMatrix(id JointID) [16]float32 {
	return s.Joints[id].InverseBindMatrix
}

// Name returns the display name of the given joint, for debugging. The id
// must be valid (< JointCount()).
//
// Parameters:
//   - id: the joint to look up
//
// Returns:
//   - string: the joint's name (may be empty)
func (s *Skeleton) Name(id JointID) string {
	return s.Names[id]
}
