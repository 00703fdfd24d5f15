// package animation contains the animation clip data model and the fixed-rate
// keyframe sampler. Clips are built once by the loader (channels already
// resampled onto the uniform 30 Hz key grid), shared read-only across
// animator instances, and never mutated after construction.
package animation

// SampleRate is the fixed keyframe rate of every channel, in keys per
// second. Keys carry no explicit timestamps: key i sits at i/SampleRate
// seconds. Importers feeding this engine must resample onto this grid (the
// loader package does exactly that for explicitly timestamped source keys).
const SampleRate float32 = 30.0

// AnimationChannel contains the keyframe data animating a single joint.
// Each key slice is implicitly timestamped at multiples of 1/SampleRate
// seconds. An empty slice means the component is not animated and samples
// to its rest value (zero translation, identity rotation, unit scale).
type AnimationChannel struct {
	// TranslationKeys are the translation values per key.
	TranslationKeys [][3]float32

	// RotationKeys are the rotation quaternions per key (x, y, z, w).
	RotationKeys [][4]float32

	// ScaleKeys are the scale values per key.
	ScaleKeys [][3]float32
}

// SkeletalAnimation represents a single clip (walk, run, attack, etc.) for a
// specific skeleton layout.
type SkeletalAnimation struct {
	// Name is the clip identifier. Assigning a clip with the same name as an
	// animator's current clip is a no-op (see the animator package).
	Name string

	// Duration is the total clip length in seconds (> 0).
	Duration float32

	// Looped selects wrap-around playback; when false the clip is one-shot
	// and playback finishes at Duration.
	Looped bool

	// Channels holds one channel per joint, parallel-indexed by JointID.
	// len(Channels) must equal the joint count of any skeleton this clip is
	// played on; the animator enforces this when the clip is assigned.
	Channels []AnimationChannel
}
