// package animator contains the per-instance playback engine: it owns the
// playback clock and state machine for one animated entity and recomputes
// that entity's joint-matrix palette from the shared skeleton and clip data
// every tick.
package animator

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animation"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
)

// skeletonAnimator is the implementation of the SkeletonAnimator interface.
type skeletonAnimator struct {
	// skeleton and anim are borrowed references to shared immutable data.
	// The animator never owns them; both must outlive the animator.
	skeleton *rig.Skeleton
	anim     *animation.SkeletalAnimation

	time     float32
	speed    float32
	finished bool

	// jointMatrices is the output palette: one column-major 4x4 skinning
	// matrix per joint (16 floats each) in skeleton joint order. Recomputed
	// in place every tick; resized only when a clip for a different-sized
	// skeleton is assigned.
	jointMatrices []float32
}

// SkeletonAnimator drives skeletal animation playback for a single animated
// instance. It holds the instance's playback time, a finished flag, borrowed
// references to the active skeleton and clip, and the output joint-matrix
// palette consumed by the renderer for GPU skinning.
//
// The animator moves between three states: Idle (no clip assigned), Playing
// (time advancing), and Finished (a one-shot clip reached its end). Playback
// stops advancing once Finished; it resumes only via SetAnimation or a seek.
//
// A SkeletonAnimator is NOT safe for concurrent use: Update, SetAnimation,
// and SetNormalizedProgress mutate the time, flag, and palette in place with
// no internal synchronization. Callers serialize externally; the scene
// package guarantees this for bulk updates by giving each animator to
// exactly one worker per tick. The skeleton and clip the animator references
// are immutable and safely shared across many animators.
type SkeletonAnimator interface {
	// SetAnimation assigns the clip to play on the given skeleton. When a
	// clip with the same name is already assigned this is a no-op, so
	// redundant calls from game logic do not restart the clip. Otherwise the
	// palette is resized to the skeleton's joint count, time resets to 0,
	// the finished flag clears, both references are adopted (borrowed, they
	// must outlive the animator), and the palette is recomputed immediately
	// so the pose is valid before the first Update.
	//
	// Panics if skeleton or anim is nil, or if the clip's channel count does
	// not match the skeleton's joint count (broken asset pipeline).
	//
	// Parameters:
	//   - skeleton: the skeleton whose hierarchy drives the pose
	//   - anim: the clip to play
	SetAnimation(skeleton *rig.Skeleton, anim *animation.SkeletalAnimation)

	// Update advances playback by dt seconds (scaled by the speed
	// multiplier) and recomputes the palette at the resulting time.
	//
	// No-op when no clip is assigned or the animator is Finished. dt <= 0 is
	// tolerated as a no-visible-change tick. A looped clip wraps its time
	// modulo the clip duration (a dt larger than the clip wraps as many
	// times as needed); a one-shot clip clamps time to the exact duration
	// and transitions to Finished, freezing the palette on the final pose.
	//
	// Parameters:
	//   - dt: elapsed simulation time since the previous tick, in seconds
	Update(dt float32)

	// SetNormalizedProgress seeks to the given fraction of the clip's
	// duration and recomputes the palette there. Seeking never alters the
	// finished flag: it neither finishes a playing clip nor restarts a
	// finished one. t is clamped to [0, 1].
	//
	// Panics if no clip is assigned.
	//
	// Parameters:
	//   - t: playback position as a fraction of the clip duration
	SetNormalizedProgress(t float32)

	// NormalizedProgress returns the playback position as a fraction of the
	// clip duration, or 0 when no clip is assigned.
	//
	// Returns:
	//   - float32: time / duration, or 0
	NormalizedProgress() float32

	// IsAnimationFinished reports whether a one-shot clip has reached its
	// end. Looped clips never finish.
	//
	// Returns:
	//   - bool: true once a non-looped clip has played through
	IsAnimationFinished() bool

	// Time returns the current playback time in seconds, always within
	// [0, duration] of the assigned clip (0 when none is assigned).
	//
	// Returns:
	//   - float32: the playback time in seconds
	Time() float32

	// SetSpeed sets the playback speed multiplier applied to every Update's
	// dt (1.0 = normal, 0.5 = half speed). Negative values are clamped to 0,
	// which pauses playback while keeping the animator in Playing state.
	//
	// Parameters:
	//   - speed: the speed multiplier
	SetSpeed(speed float32)

	// Speed returns the current playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed multiplier
	Speed() float32

	// JointMatrices returns the joint-matrix palette: 16 floats per joint,
	// column-major, in skeleton joint order. The returned slice is the
	// animator's own storage: its contents are overwritten in place on
	// every Update/SetAnimation/seek while its identity stays stable, so
	// renderers must copy or upload it every tick rather than caching the
	// contents across ticks. Nil while Idle.
	//
	// Returns:
	//   - []float32: the palette backing storage (read-only by contract)
	JointMatrices() []float32

	// JointMatrix returns a copy of one joint's skinning matrix from the
	// palette. The id must be valid for the assigned skeleton.
	//
	// Parameters:
	//   - id: the joint to read
	//
	// Returns:
	//   - [16]float32: the joint's column-major skinning matrix
	JointMatrix(id rig.JointID) [16]float32

	// Skeleton returns the borrowed skeleton currently driving the pose, or
	// nil while Idle.
	//
	// Returns:
	//   - *rig.Skeleton: the active skeleton or nil
	Skeleton() *rig.Skeleton

	// Animation returns the borrowed clip currently assigned, or nil while
	// Idle.
	//
	// Returns:
	//   - *animation.SkeletalAnimation: the active clip or nil
	Animation() *animation.SkeletalAnimation
}

// Ensure skeletonAnimator implements SkeletonAnimator interface.
var _ SkeletonAnimator = &skeletonAnimator{}

// NewSkeletonAnimator creates a SkeletonAnimator in the Idle state with a
// speed multiplier of 1.0, then applies the given options. Use
// WithAnimation to assign a clip at construction time.
//
// Parameters:
//   - options: functional options to configure the animator
//
// Returns:
//   - SkeletonAnimator: the newly created animator
func NewSkeletonAnimator(options ...SkeletonAnimatorBuilderOption) SkeletonAnimator {
	sa := &skeletonAnimator{
		speed: 1.0,
	}
	for _, option := range options {
		option(sa)
	}
	return sa
}

func (sa *skeletonAnimator) SetAnimation(skeleton *rig.Skeleton, anim *animation.SkeletalAnimation) {
	if skeleton == nil {
		panic("animator: SetAnimation requires a non-nil skeleton")
	}
	if anim == nil {
		panic("animator: SetAnimation requires a non-nil animation")
	}
	if sa.anim != nil && sa.anim.Name == anim.Name {
		return
	}
	if len(anim.Channels) != skeleton.JointCount() {
		panic(fmt.Sprintf("animator: clip %q has %d channels for a %d-joint skeleton",
			anim.Name, len(anim.Channels), skeleton.JointCount()))
	}

	need := 16 * skeleton.JointCount()
	if cap(sa.jointMatrices) < need {
		sa.jointMatrices = make([]float32, need)
	} else {
		sa.jointMatrices = sa.jointMatrices[:need]
	}

	sa.skeleton = skeleton
	sa.anim = anim
	sa.time = 0
	sa.finished = false
	sa.recompute()
}

func (sa *skeletonAnimator) Update(dt float32) {
	if sa.anim == nil || sa.finished {
		return
	}
	if dt <= 0 {
		return
	}

	sa.time += dt * sa.speed
	if sa.time > sa.anim.Duration {
		if sa.anim.Looped {
			sa.time = float32(math.Mod(float64(sa.time), float64(sa.anim.Duration)))
		} else {
			sa.time = sa.anim.Duration
			sa.finished = true
		}
	}
	sa.recompute()
}

func (sa *skeletonAnimator) SetNormalizedProgress(t float32) {
	if sa.anim == nil {
		panic("animator: SetNormalizedProgress called with no animation assigned")
	}
	sa.time = common.Clamp01(t) * sa.anim.Duration
	sa.recompute()
}

func (sa *skeletonAnimator) NormalizedProgress() float32 {
	if sa.anim == nil {
		return 0
	}
	return sa.time / sa.anim.Duration
}

func (sa *skeletonAnimator) IsAnimationFinished() bool {
	return sa.finished
}

func (sa *skeletonAnimator) Time() float32 {
	return sa.time
}

func (sa *skeletonAnimator) SetSpeed(speed float32) {
	if speed < 0 {
		speed = 0
	}
	sa.speed = speed
}

func (sa *skeletonAnimator) Speed() float32 {
	return sa.speed
}

func (sa *skeletonAnimator) JointMatrices() []float32 {
	return sa.jointMatrices
}

func (sa *skeletonAnimator) JointMatrix(id rig.JointID) [16]float32 {
	var m [16]float32
	copy(m[:], sa.jointMatrices[int(id)*16:int(id)*16+16])
	return m
}

func (sa *skeletonAnimator) Skeleton() *rig.Skeleton {
	return sa.skeleton
}

func (sa *skeletonAnimator) Animation() *animation.SkeletalAnimation {
	return sa.anim
}

// recompute rebuilds the whole palette at the current time by walking the
// hierarchy root-first. Not incremental: skeletons are small (tens of
// joints), so a full walk per tick is cheaper than tracking dirty subtrees.
// Allocates nothing.
func (sa *skeletonAnimator) recompute() {
	var identity [16]float32
	common.Identity(identity[:])
	sa.recomputeJoint(rig.RootJointID, identity[:])
}

// recomputeJoint samples the joint's local transform at the current time,
// composes it with the parent's global transform, writes
// global * inverseBind into the joint's palette slot, and recurses into the
// children. Parents are always resolved before children by construction.
func (sa *skeletonAnimator) recomputeJoint(id rig.JointID, parentGlobal []float32) {
	var local, global [16]float32
	sa.anim.Sample(id, sa.time).Matrix(local[:])
	common.Mul4(global[:], parentGlobal, local[:])

	ibm := sa.skeleton.Joints[id].InverseBindMatrix
	slot := sa.jointMatrices[int(id)*16 : int(id)*16+16]
	common.Mul4(slot, global[:], ibm[:])

	for _, child := range sa.skeleton.Children[id] {
		sa.recomputeJoint(child, global[:])
	}
}
