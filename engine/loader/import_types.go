package loader

// VectorKeyframe is a single timestamped vec3 key in an import table, used
// for translation and scale tracks. Time is in seconds from clip start.
type VectorKeyframe struct {
	Time  float32
	Value [3]float32
}

// QuaternionKeyframe is a single timestamped rotation key in an import table.
// Value is a quaternion as [x, y, z, w].
type QuaternionKeyframe struct {
	Time  float32
	Value [4]float32
}

// ImportedJoint is one row of a skeleton import table, as produced by an
// asset pipeline. Joints may appear in any order; BuildSkeleton reorders
// them so parents always precede children.
type ImportedJoint struct {
	// Name identifies the joint for animation channel targeting. Empty names
	// are replaced with a synthesized "joint_N" name; non-empty names must be
	// unique within the table.
	Name string

	// Parent is the index of the parent joint within the import table, or
	// any negative value for the root. Exactly one joint must be the root.
	Parent int32

	// InverseBindMatrix transforms from model space to this joint's local
	// bind space, column-major.
	InverseBindMatrix [16]float32
}

// ImportedChannel is the keyframe data a clip carries for one joint,
// targeted by joint name. Tracks are independent: any of them may be empty,
// in which case the joint holds the corresponding rest component. Times
// within each track must be strictly increasing.
type ImportedChannel struct {
	Joint           string
	TranslationKeys []VectorKeyframe
	RotationKeys    []QuaternionKeyframe
	ScaleKeys       []VectorKeyframe
}

// ImportedClip is one animation clip as produced by an asset pipeline, with
// explicitly timestamped keys at whatever rate the authoring tool exported.
// BuildAnimation resamples the tracks onto the engine's fixed sample grid.
type ImportedClip struct {
	Name     string
	Duration float32
	Looped   bool
	Channels []ImportedChannel
}
