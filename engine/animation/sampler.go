package animation

import (
	"math"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
)

// SurroundingKeys locates the pair of keys bracketing the given playback time
// on the implicit fixed-rate key grid, plus the blend factor between them.
//
// Keys sit at multiples of 1/SampleRate seconds, so the lookup is O(1):
//
//	prevIndex = min(floor(time * SampleRate), keyCount-1)
//	nextIndex = min(prevIndex + 1, keyCount-1)
//
// blendFactor is 0 whenever prevIndex == nextIndex (end of clip, or a
// single-key channel), otherwise the fractional grid position
// time*SampleRate - prevIndex, in [0, 1). Time is clamped to [0, duration]
// before the lookup.
//
// keyCount must be >= 1; channels with zero keys are resolved to rest values
// by the caller without consulting the sampler.
//
// Parameters:
//   - keyCount: the number of keys in the channel (>= 1)
//   - time: the playback time in seconds
//   - duration: the clip duration in seconds
//
// Returns:
//   - int: prevIndex, the key at or before time
//   - int: nextIndex, the key after time (== prevIndex at the clip end)
//   - float32: blendFactor in [0, 1) between the two keys
func SurroundingKeys(keyCount int, time, duration float32) (int, int, float32) {
	time = common.Clamp(time, 0, duration)

	prevIndex := int(math.Floor(float64(time * SampleRate)))
	if prevIndex > keyCount-1 {
		prevIndex = keyCount - 1
	}
	nextIndex := prevIndex + 1
	if nextIndex > keyCount-1 {
		nextIndex = keyCount - 1
	}

	var blendFactor float32
	if prevIndex != nextIndex {
		blendFactor = time*SampleRate - float32(prevIndex)
	}
	return prevIndex, nextIndex, blendFactor
}

// Sample evaluates the clip's channels for one joint at the given time and
// composes the decomposed local transform. Components with no keys resolve
// to their rest value; single-key components hold their key at all times.
//
// Translation and scale interpolate linearly between the surrounding keys.
// Rotation uses normalized linear interpolation (nlerp), NOT spherical
// interpolation. The approximation is visually acceptable because adjacent
// keys on the 30 Hz grid are close together.
//
// The joint id must be < len(a.Channels).
//
// Parameters:
//   - joint: the joint whose channels to sample
//   - time: the playback time in seconds (clamped to [0, Duration])
//
// Returns:
//   - rig.Transform: the joint's local transform at time
func (a *SkeletalAnimation) Sample(joint rig.JointID, time float32) rig.Transform {
	out := rig.RestTransform()
	ch := &a.Channels[joint]

	if n := len(ch.TranslationKeys); n > 0 {
		prev, next, blend := SurroundingKeys(n, time, a.Duration)
		out.Translation = common.Lerp3(ch.TranslationKeys[prev], ch.TranslationKeys[next], blend)
	}
	if n := len(ch.RotationKeys); n > 0 {
		prev, next, blend := SurroundingKeys(n, time, a.Duration)
		if prev == next {
			out.Rotation = ch.RotationKeys[prev]
		} else {
			out.Rotation = common.NlerpQuat(ch.RotationKeys[prev], ch.RotationKeys[next], blend)
		}
	}
	if n := len(ch.ScaleKeys); n > 0 {
		prev, next, blend := SurroundingKeys(n, time, a.Duration)
		out.Scale = common.Lerp3(ch.ScaleKeys[prev], ch.ScaleKeys[next], blend)
	}
	return out
}
