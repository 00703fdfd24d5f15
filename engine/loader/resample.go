package loader

import (
	"math"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animation"
)

// sampleGrid returns the key times of the engine's fixed sample grid for a
// clip of the given duration: one key every 1/animation.SampleRate seconds
// starting at 0. The last key lands at or just before the duration; the tail
// between it and the duration holds the last key's value.
func sampleGrid(duration float32) []float32 {
	count := int(math.Floor(float64(duration*animation.SampleRate))) + 1
	grid := make([]float32, count)
	for k := range grid {
		grid[k] = float32(k) / animation.SampleRate
	}
	return grid
}

// validateVectorTimes checks that a vector track's key times are strictly
// increasing.
func validateVectorTimes(keys []VectorKeyframe) error {
	for i := 1; i < len(keys); i++ {
		if keys[i].Time <= keys[i-1].Time {
			return ErrUnsortedKeyframes
		}
	}
	return nil
}

// validateQuaternionTimes checks that a rotation track's key times are
// strictly increasing.
func validateQuaternionTimes(keys []QuaternionKeyframe) error {
	for i := 1; i < len(keys); i++ {
		if keys[i].Time <= keys[i-1].Time {
			return ErrUnsortedKeyframes
		}
	}
	return nil
}

// resampleVec3 evaluates a timestamped vector track at every grid time.
// Grid times before the first key or after the last clamp to the end values.
// An empty track stays empty and a single-key track collapses to one
// constant key; both cases are what the runtime sampler expects.
func resampleVec3(keys []VectorKeyframe, grid []float32) [][3]float32 {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) == 1 {
		return [][3]float32{keys[0].Value}
	}

	out := make([][3]float32, len(grid))
	cursor := 0
	for k, t := range grid {
		// Grid times ascend, so the span cursor only moves forward.
		for cursor+1 < len(keys)-1 && keys[cursor+1].Time <= t {
			cursor++
		}

		prev, next := keys[cursor], keys[cursor+1]
		switch {
		case t <= prev.Time:
			out[k] = prev.Value
		case t >= next.Time:
			out[k] = next.Value
		default:
			blend := (t - prev.Time) / (next.Time - prev.Time)
			out[k] = common.Lerp3(prev.Value, next.Value, blend)
		}
	}
	return out
}

// resampleQuat evaluates a timestamped rotation track at every grid time
// using the same clamping rules as resampleVec3. Interpolation is normalized
// linear, matching the runtime sampler. Grid times that land exactly on an
// authored key copy its value untouched.
func resampleQuat(keys []QuaternionKeyframe, grid []float32) [][4]float32 {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) == 1 {
		return [][4]float32{keys[0].Value}
	}

	out := make([][4]float32, len(grid))
	cursor := 0
	for k, t := range grid {
		for cursor+1 < len(keys)-1 && keys[cursor+1].Time <= t {
			cursor++
		}

		prev, next := keys[cursor], keys[cursor+1]
		switch {
		case t <= prev.Time:
			out[k] = prev.Value
		case t >= next.Time:
			out[k] = next.Value
		default:
			blend := (t - prev.Time) / (next.Time - prev.Time)
			out[k] = common.NlerpQuat(prev.Value, next.Value, blend)
		}
	}
	return out
}
