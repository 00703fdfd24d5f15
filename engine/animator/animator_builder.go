package animator

import (
	"github.com/Carmen-Shannon/rig-go/engine/animation"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
)

// SkeletonAnimatorBuilderOption defines a function type for configuring a
// skeletonAnimator during creation.
type SkeletonAnimatorBuilderOption func(*skeletonAnimator)

// WithAnimation assigns a clip to play on the given skeleton at construction
// time, leaving the animator posed at time 0. Equivalent to calling
// SetAnimation immediately after NewSkeletonAnimator, including its panics on
// nil or mismatched inputs.
//
// Parameters:
//   - skeleton: the skeleton whose hierarchy drives the pose
//   - anim: the clip to play
//
// Returns:
//   - SkeletonAnimatorBuilderOption: the option function
func WithAnimation(skeleton *rig.Skeleton, anim *animation.SkeletalAnimation) SkeletonAnimatorBuilderOption {
	return func(sa *skeletonAnimator) {
		sa.SetAnimation(skeleton, anim)
	}
}

// WithSpeed sets the initial playback speed multiplier (1.0 = normal).
// Negative values are clamped to 0.
//
// Parameters:
//   - speed: the speed multiplier
//
// Returns:
//   - SkeletonAnimatorBuilderOption: the option function
func WithSpeed(speed float32) SkeletonAnimatorBuilderOption {
	return func(sa *skeletonAnimator) {
		sa.SetSpeed(speed)
	}
}
