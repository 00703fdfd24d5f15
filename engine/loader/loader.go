// package loader turns in-memory import tables, the output of an asset
// pipeline, into engine-ready rig and animation data. It validates the joint
// hierarchy, reorders joints so parents precede children, and resamples
// authored keyframes onto the engine's fixed sample grid. It does no file
// I/O: parsing asset containers into import tables is the pipeline's job.
package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/rig-go/engine/animation"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
)

var (
	// ErrNoJoints is returned when the joint table is empty.
	ErrNoJoints = errors.New("loader: import table has no joints")

	// ErrNoRoot is returned when no joint has a negative parent index,
	// which means every joint sits on a cycle.
	ErrNoRoot = errors.New("loader: skeleton has no root joint")

	// ErrMultipleRoots is returned when more than one joint has a negative
	// parent index. The runtime hierarchy is a single tree.
	ErrMultipleRoots = errors.New("loader: skeleton has multiple root joints")

	// ErrInvalidParent is returned when a joint's parent index is outside
	// the joint table.
	ErrInvalidParent = errors.New("loader: joint parent index out of range")

	// ErrUnreachableJoint is returned when a joint cannot be reached from
	// the root, which covers both orphaned subtrees and parent cycles.
	ErrUnreachableJoint = errors.New("loader: joint unreachable from the root")

	// ErrDuplicateJointName is returned when two joints share a non-empty
	// name. Channel targeting is by name, so names must be unique.
	ErrDuplicateJointName = errors.New("loader: duplicate joint name")

	// ErrUnknownJoint is returned when a clip channel targets a joint name
	// that does not exist in the skeleton.
	ErrUnknownJoint = errors.New("loader: animation channel targets unknown joint")

	// ErrDuplicateChannel is returned when a clip carries two channels for
	// the same joint.
	ErrDuplicateChannel = errors.New("loader: clip has two channels for the same joint")

	// ErrInvalidDuration is returned when a clip's duration is zero or
	// negative.
	ErrInvalidDuration = errors.New("loader: clip duration must be positive")

	// ErrUnsortedKeyframes is returned when a track's key times are not
	// strictly increasing.
	ErrUnsortedKeyframes = errors.New("loader: keyframe times must be strictly increasing")
)

// importer is the implementation of the Importer interface.
type importer struct {
	joints []ImportedJoint
	clips  []ImportedClip
}

// Importer builds engine-ready skeletal data from a set of in-memory import
// tables. The importer validates everything the runtime assumes; skeletons
// and clips that reach the animator are never re-validated per tick.
type Importer interface {
	// BuildSkeleton validates the joint table and produces a skeleton whose
	// joints are reordered root-first, parents before children, with the
	// root at index 0. All parent references, child lists, and the
	// name-to-id index are rewritten for the new order.
	//
	// Returns:
	//   - *rig.Skeleton: the validated, reordered skeleton
	//   - error: error if the table is empty, has zero or multiple roots,
	//     an out-of-range parent, an unreachable joint, or duplicate names
	BuildSkeleton() (*rig.Skeleton, error)

	// BuildAnimation resamples one clip against the skeleton. Every track is
	// resampled onto the fixed grid of animation.SampleRate keys per second;
	// a track with a single authored key collapses to a single constant key,
	// and an absent track stays empty so the joint holds its rest component.
	// The returned clip has exactly one channel per skeleton joint, indexed
	// by joint id.
	//
	// Parameters:
	//   - skeleton: the skeleton the clip targets, from BuildSkeleton
	//   - clipIndex: the index of the clip in the import table
	//
	// Returns:
	//   - *animation.SkeletalAnimation: the resampled clip
	//   - error: error if the index is out of range, the duration is not
	//     positive, a channel targets an unknown or duplicate joint, or a
	//     track's key times are not strictly increasing
	BuildAnimation(skeleton *rig.Skeleton, clipIndex int) (*animation.SkeletalAnimation, error)

	// BuildAnimations resamples every clip in the import table against the
	// skeleton.
	//
	// Parameters:
	//   - skeleton: the skeleton the clips target, from BuildSkeleton
	//
	// Returns:
	//   - []*animation.SkeletalAnimation: the resampled clips, in table order
	//   - error: the first per-clip error, wrapped with the clip index
	BuildAnimations(skeleton *rig.Skeleton) ([]*animation.SkeletalAnimation, error)

	// Build runs BuildSkeleton followed by BuildAnimations in one call.
	//
	// Returns:
	//   - *rig.Skeleton: the validated, reordered skeleton
	//   - []*animation.SkeletalAnimation: the resampled clips, in table order
	//   - error: error if any build step fails
	Build() (*rig.Skeleton, []*animation.SkeletalAnimation, error)
}

// Ensure importer implements Importer interface.
var _ Importer = &importer{}

func (im *importer) BuildSkeleton() (*rig.Skeleton, error) {
	n := len(im.joints)
	if n == 0 {
		return nil, ErrNoJoints
	}

	// First pass: resolve names and find the root.
	names := make([]string, n)
	rootIndex := -1
	for i := range im.joints {
		j := &im.joints[i]

		names[i] = j.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("joint_%d", i)
		}

		if j.Parent < 0 {
			if rootIndex >= 0 {
				return nil, fmt.Errorf("joints %d and %d: %w", rootIndex, i, ErrMultipleRoots)
			}
			rootIndex = i
			continue
		}
		if int(j.Parent) >= n {
			return nil, fmt.Errorf("joint %d %q: parent %d: %w", i, names[i], j.Parent, ErrInvalidParent)
		}
	}
	if rootIndex < 0 {
		return nil, ErrNoRoot
	}

	// Build child lists in table order, then BFS from the root so the final
	// order visits parents before children.
	children := make([][]int32, n)
	for i := range im.joints {
		if p := im.joints[i].Parent; p >= 0 {
			children[p] = append(children[p], int32(i))
		}
	}

	order := make([]int32, 0, n)
	queue := []int32{int32(rootIndex)}
	for len(queue) > 0 {
		oldIdx := queue[0]
		queue = queue[1:]
		order = append(order, oldIdx)
		queue = append(queue, children[oldIdx]...)
	}

	if len(order) < n {
		visited := make([]bool, n)
		for _, idx := range order {
			visited[idx] = true
		}
		for i := range visited {
			if !visited[i] {
				return nil, fmt.Errorf("joint %d %q: %w", i, names[i], ErrUnreachableJoint)
			}
		}
	}

	// Rewrite everything for the new order.
	oldToNew := make([]rig.JointID, n)
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = rig.JointID(newIdx)
	}

	skeleton := &rig.Skeleton{
		Joints:   make([]rig.Joint, n),
		Parents:  make([]rig.JointID, n),
		Children: make([][]rig.JointID, n),
		Names:    make([]string, n),
		NameToID: make(map[string]rig.JointID, n),
	}

	for newIdx, oldIdx := range order {
		src := &im.joints[oldIdx]

		skeleton.Joints[newIdx] = rig.Joint{InverseBindMatrix: src.InverseBindMatrix}
		skeleton.Names[newIdx] = names[oldIdx]

		if src.Parent < 0 {
			skeleton.Parents[newIdx] = rig.NullJointID
		} else {
			skeleton.Parents[newIdx] = oldToNew[src.Parent]
		}

		if _, exists := skeleton.NameToID[names[oldIdx]]; exists {
			return nil, fmt.Errorf("joint %q: %w", names[oldIdx], ErrDuplicateJointName)
		}
		skeleton.NameToID[names[oldIdx]] = rig.JointID(newIdx)
	}

	for id, parent := range skeleton.Parents {
		if parent != rig.NullJointID {
			skeleton.Children[parent] = append(skeleton.Children[parent], rig.JointID(id))
		}
	}

	return skeleton, nil
}

func (im *importer) BuildAnimation(skeleton *rig.Skeleton, clipIndex int) (*animation.SkeletalAnimation, error) {
	if clipIndex < 0 || clipIndex >= len(im.clips) {
		return nil, fmt.Errorf("loader: clip index %d out of range", clipIndex)
	}
	clip := &im.clips[clipIndex]

	if clip.Duration <= 0 {
		return nil, fmt.Errorf("clip %q: duration %g: %w", clip.Name, clip.Duration, ErrInvalidDuration)
	}

	grid := sampleGrid(clip.Duration)
	channels := make([]animation.AnimationChannel, skeleton.JointCount())
	seen := make(map[rig.JointID]bool, len(clip.Channels))

	for i := range clip.Channels {
		ch := &clip.Channels[i]

		id, ok := skeleton.NameToID[ch.Joint]
		if !ok {
			return nil, fmt.Errorf("clip %q: joint %q: %w", clip.Name, ch.Joint, ErrUnknownJoint)
		}
		if seen[id] {
			return nil, fmt.Errorf("clip %q: joint %q: %w", clip.Name, ch.Joint, ErrDuplicateChannel)
		}
		seen[id] = true

		if err := validateVectorTimes(ch.TranslationKeys); err != nil {
			return nil, fmt.Errorf("clip %q: joint %q: translation: %w", clip.Name, ch.Joint, err)
		}
		if err := validateQuaternionTimes(ch.RotationKeys); err != nil {
			return nil, fmt.Errorf("clip %q: joint %q: rotation: %w", clip.Name, ch.Joint, err)
		}
		if err := validateVectorTimes(ch.ScaleKeys); err != nil {
			return nil, fmt.Errorf("clip %q: joint %q: scale: %w", clip.Name, ch.Joint, err)
		}

		channels[id] = animation.AnimationChannel{
			TranslationKeys: resampleVec3(ch.TranslationKeys, grid),
			RotationKeys:    resampleQuat(ch.RotationKeys, grid),
			ScaleKeys:       resampleVec3(ch.ScaleKeys, grid),
		}
	}

	return &animation.SkeletalAnimation{
		Name:     clip.Name,
		Duration: clip.Duration,
		Looped:   clip.Looped,
		Channels: channels,
	}, nil
}

func (im *importer) BuildAnimations(skeleton *rig.Skeleton) ([]*animation.SkeletalAnimation, error) {
	clips := make([]*animation.SkeletalAnimation, len(im.clips))
	for i := range im.clips {
		clip, err := im.BuildAnimation(skeleton, i)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		clips[i] = clip
	}
	return clips, nil
}

func (im *importer) Build() (*rig.Skeleton, []*animation.SkeletalAnimation, error) {
	skeleton, err := im.BuildSkeleton()
	if err != nil {
		return nil, nil, err
	}
	clips, err := im.BuildAnimations(skeleton)
	if err != nil {
		return nil, nil, err
	}
	return skeleton, clips, nil
}
