package animator_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animation"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
)

const epsilon = 1e-5

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

func approxEqualPalettes(t *testing.T, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d palette floats, got %d", len(want), len(got))
	}
	for i := range want {
		if !approxEqual(got[i], want[i]) {
			t.Fatalf("palette float %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func identityMatrix() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// chainSkeleton builds an n-joint chain (each joint parented to the previous
// one) with identity inverse bind matrices.
func chainSkeleton(n int) *rig.Skeleton {
	s := &rig.Skeleton{
		Joints:   make([]rig.Joint, n),
		Parents:  make([]rig.JointID, n),
		Children: make([][]rig.JointID, n),
		Names:    make([]string, n),
		NameToID: make(map[string]rig.JointID, n),
	}
	for i := 0; i < n; i++ {
		s.Joints[i].InverseBindMatrix = identityMatrix()
		s.Names[i] = fmt.Sprintf("joint_%d", i)
		s.NameToID[s.Names[i]] = rig.JointID(i)
		if i == 0 {
			s.Parents[i] = rig.NullJointID
		} else {
			s.Parents[i] = rig.JointID(i - 1)
			s.Children[i-1] = append(s.Children[i-1], rig.JointID(i))
		}
	}
	return s
}

// restClip builds a clip whose channels are all empty, so every joint holds
// its rest transform for the whole duration.
func restClip(name string, duration float32, looped bool, joints int) *animation.SkeletalAnimation {
	return &animation.SkeletalAnimation{
		Name:     name,
		Duration: duration,
		Looped:   looped,
		Channels: make([]animation.AnimationChannel, joints),
	}
}

func TestNewSkeletonAnimatorDefaults(t *testing.T) {
	a := animator.NewSkeletonAnimator()

	if a.Time() != 0 {
		t.Errorf("expected time 0, got %v", a.Time())
	}
	if a.Speed() != 1 {
		t.Errorf("expected speed 1, got %v", a.Speed())
	}
	if a.NormalizedProgress() != 0 {
		t.Errorf("expected progress 0, got %v", a.NormalizedProgress())
	}
	if a.IsAnimationFinished() {
		t.Error("expected a fresh animator to not be finished")
	}
	if a.JointMatrices() != nil {
		t.Errorf("expected a nil palette while idle, got %d floats", len(a.JointMatrices()))
	}
	if a.Skeleton() != nil || a.Animation() != nil {
		t.Error("expected no skeleton or clip while idle")
	}

	// Updating an idle animator is a no-op, not a fault.
	a.Update(0.5)
	if a.Time() != 0 {
		t.Errorf("expected idle Update to be a no-op, got time %v", a.Time())
	}
}

func TestSetAnimation(t *testing.T) {
	t.Run("poses immediately at time zero", func(t *testing.T) {
		skeleton := chainSkeleton(2)
		a := animator.NewSkeletonAnimator()
		a.SetAnimation(skeleton, restClip("idle", 1, true, 2))

		palette := a.JointMatrices()
		if len(palette) != 32 {
			t.Fatalf("expected 32 palette floats, got %d", len(palette))
		}
		// Rest channels against identity binds compose to exact identity.
		id := identityMatrix()
		for j := 0; j < 2; j++ {
			for i, v := range palette[j*16 : j*16+16] {
				if v != id[i] {
					t.Fatalf("joint %d element %d: expected %v, got %v", j, i, id[i], v)
				}
			}
		}
	})

	t.Run("replacing a clip resets playback", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, restClip("walk", 2, true, 1)))
		a.Update(0.5)

		a.SetAnimation(skeleton, restClip("run", 2, true, 1))
		if a.Time() != 0 {
			t.Errorf("expected time reset to 0, got %v", a.Time())
		}
		if a.IsAnimationFinished() {
			t.Error("expected the finished flag to be cleared")
		}
	})

	t.Run("same clip name is a no-op", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		first := restClip("walk", 2, true, 1)
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, first))
		a.Update(0.5)

		a.SetAnimation(skeleton, restClip("walk", 5, false, 1))
		if a.Time() != 0.5 {
			t.Errorf("expected time to stay 0.5, got %v", a.Time())
		}
		if a.Animation() != first {
			t.Error("expected the original clip to stay assigned")
		}
	})

	t.Run("replacing a finished clip plays again", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, restClip("shoot", 1, false, 1)))
		a.Update(2)
		if !a.IsAnimationFinished() {
			t.Fatal("expected the one-shot clip to finish")
		}

		a.SetAnimation(skeleton, restClip("reload", 1, false, 1))
		if a.IsAnimationFinished() {
			t.Error("expected the new clip to start unfinished")
		}
		a.Update(0.25)
		if !approxEqual(a.Time(), 0.25) {
			t.Errorf("expected playback to resume, got time %v", a.Time())
		}
	})

	t.Run("palette grows and shrinks with the skeleton", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("small", 1, true, 1)))
		if len(a.JointMatrices()) != 16 {
			t.Fatalf("expected 16 floats, got %d", len(a.JointMatrices()))
		}

		a.SetAnimation(chainSkeleton(3), restClip("large", 1, true, 3))
		if len(a.JointMatrices()) != 48 {
			t.Fatalf("expected 48 floats, got %d", len(a.JointMatrices()))
		}

		a.SetAnimation(chainSkeleton(1), restClip("small again", 1, true, 1))
		if len(a.JointMatrices()) != 16 {
			t.Fatalf("expected 16 floats, got %d", len(a.JointMatrices()))
		}
	})

	t.Run("panics on nil skeleton", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		animator.NewSkeletonAnimator().SetAnimation(nil, restClip("walk", 1, true, 1))
	})

	t.Run("panics on nil animation", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		animator.NewSkeletonAnimator().SetAnimation(chainSkeleton(1), nil)
	})

	t.Run("panics on channel count mismatch", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		animator.NewSkeletonAnimator().SetAnimation(chainSkeleton(2), restClip("walk", 1, true, 3))
	})
}

func TestUpdate(t *testing.T) {
	t.Run("advances time by dt", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 2, true, 1)))
		a.Update(0.25)
		if !approxEqual(a.Time(), 0.25) {
			t.Errorf("expected time 0.25, got %v", a.Time())
		}
		if !approxEqual(a.NormalizedProgress(), 0.125) {
			t.Errorf("expected progress 0.125, got %v", a.NormalizedProgress())
		}
	})

	t.Run("split updates accumulate like one", func(t *testing.T) {
		skeleton := chainSkeleton(2)
		clip := &animation.SkeletalAnimation{
			Name:     "slide",
			Duration: 1,
			Looped:   true,
			Channels: []animation.AnimationChannel{
				{TranslationKeys: rampKeys(31, 1, 0, 0)},
				{TranslationKeys: rampKeys(31, 0, 2, 0)},
			},
		}

		split := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))
		split.Update(0.2)
		split.Update(0.3)

		whole := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))
		whole.Update(0.5)

		if !approxEqual(split.Time(), whole.Time()) {
			t.Errorf("expected equal times, got %v and %v", split.Time(), whole.Time())
		}
		approxEqualPalettes(t, split.JointMatrices(), whole.JointMatrices())
	})

	t.Run("non-positive dt changes nothing", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 2, true, 1)))
		a.Update(0.5)

		before := append([]float32(nil), a.JointMatrices()...)
		a.Update(0)
		a.Update(-1)

		if a.Time() != 0.5 {
			t.Errorf("expected time 0.5, got %v", a.Time())
		}
		for i, v := range a.JointMatrices() {
			if v != before[i] {
				t.Fatalf("palette float %d changed on a non-positive dt", i)
			}
		}
	})

	t.Run("looped clip wraps around", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 1, true, 1)))
		a.Update(0.75)
		a.Update(0.5)
		if !approxEqual(a.Time(), 0.25) {
			t.Errorf("expected time to wrap to 0.25, got %v", a.Time())
		}
	})

	t.Run("large dt wraps multiple times", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 1, true, 1)))
		a.Update(2.3)
		if !approxEqual(a.Time(), 0.3) {
			t.Errorf("expected time to wrap to 0.3, got %v", a.Time())
		}
	})

	t.Run("looped clip never finishes", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 0.5, true, 1)))
		for i := 0; i < 100; i++ {
			a.Update(0.4)
		}
		if a.IsAnimationFinished() {
			t.Error("expected a looped clip to never finish")
		}
	})

	t.Run("one-shot clamps to the exact duration", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("shoot", 1, false, 1)))
		a.Update(1.7)

		if a.Time() != 1 {
			t.Errorf("expected time clamped to exactly 1, got %v", a.Time())
		}
		if !a.IsAnimationFinished() {
			t.Error("expected the clip to be finished")
		}
		if a.NormalizedProgress() != 1 {
			t.Errorf("expected progress 1, got %v", a.NormalizedProgress())
		}
	})

	t.Run("landing exactly on the duration does not finish", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("shoot", 1, false, 1)))
		a.Update(1)

		if a.Time() != 1 {
			t.Fatalf("expected time 1, got %v", a.Time())
		}
		if a.IsAnimationFinished() {
			t.Error("expected the clip to still be playing at exactly its duration")
		}

		a.Update(0.1)
		if !a.IsAnimationFinished() {
			t.Error("expected the clip to finish once time passes the duration")
		}
	})

	t.Run("finished animator freezes", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		clip := &animation.SkeletalAnimation{
			Name:     "shoot",
			Duration: 1,
			Looped:   false,
			Channels: []animation.AnimationChannel{
				{TranslationKeys: rampKeys(31, 1, 0, 0)},
			},
		}
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))
		a.Update(5)

		frozen := append([]float32(nil), a.JointMatrices()...)
		a.Update(0.5)
		a.Update(100)

		if a.Time() != 1 {
			t.Errorf("expected time to stay 1, got %v", a.Time())
		}
		for i, v := range a.JointMatrices() {
			if v != frozen[i] {
				t.Fatalf("palette float %d changed after the clip finished", i)
			}
		}
	})
}

func TestSetNormalizedProgress(t *testing.T) {
	t.Run("seeks to a fraction of the duration", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 2, true, 1)))
		a.SetNormalizedProgress(0.5)
		if a.Time() != 1 {
			t.Errorf("expected time 1, got %v", a.Time())
		}
		if a.NormalizedProgress() != 0.5 {
			t.Errorf("expected progress 0.5, got %v", a.NormalizedProgress())
		}
	})

	t.Run("clamps out-of-range fractions", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 2, true, 1)))

		a.SetNormalizedProgress(4)
		if a.NormalizedProgress() != 1 {
			t.Errorf("expected progress 1, got %v", a.NormalizedProgress())
		}
		a.SetNormalizedProgress(-1)
		if a.NormalizedProgress() != 0 {
			t.Errorf("expected progress 0, got %v", a.NormalizedProgress())
		}
	})

	t.Run("seeking to the end does not finish the clip", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("shoot", 1, false, 1)))
		a.SetNormalizedProgress(1)
		if a.IsAnimationFinished() {
			t.Error("expected seeking to not finish the clip")
		}

		// Time only passes the duration on the next advance.
		a.Update(0.01)
		if !a.IsAnimationFinished() {
			t.Error("expected the next Update to finish the clip")
		}
	})

	t.Run("seeking does not revive a finished clip", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		clip := &animation.SkeletalAnimation{
			Name:     "shoot",
			Duration: 1,
			Looped:   false,
			Channels: []animation.AnimationChannel{
				{TranslationKeys: rampKeys(31, 1, 0, 0)},
			},
		}
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))
		a.Update(2)
		if !a.IsAnimationFinished() {
			t.Fatal("expected the clip to finish")
		}

		a.SetNormalizedProgress(0.25)
		if !a.IsAnimationFinished() {
			t.Error("expected the finished flag to survive a seek")
		}
		if a.Time() != 0.25 {
			t.Errorf("expected the seek to land at 0.25, got %v", a.Time())
		}

		// The pose reflects the seek even though playback stays stopped.
		fresh := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))
		fresh.SetNormalizedProgress(0.25)
		approxEqualPalettes(t, a.JointMatrices(), fresh.JointMatrices())

		a.Update(0.5)
		if a.Time() != 0.25 {
			t.Errorf("expected Update to stay a no-op while finished, got time %v", a.Time())
		}
	})

	t.Run("panics with no clip assigned", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		animator.NewSkeletonAnimator().SetNormalizedProgress(0.5)
	})
}

func TestSpeed(t *testing.T) {
	t.Run("scales every update", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(
			animator.WithAnimation(chainSkeleton(1), restClip("walk", 2, true, 1)),
			animator.WithSpeed(2),
		)
		a.Update(0.25)
		if !approxEqual(a.Time(), 0.5) {
			t.Errorf("expected time 0.5 at double speed, got %v", a.Time())
		}
	})

	t.Run("negative speed clamps to a pause", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(1), restClip("walk", 2, true, 1)))
		a.Update(0.5)

		a.SetSpeed(-3)
		if a.Speed() != 0 {
			t.Errorf("expected speed 0, got %v", a.Speed())
		}

		a.Update(1)
		if a.Time() != 0.5 {
			t.Errorf("expected time to hold at 0.5, got %v", a.Time())
		}
		if a.IsAnimationFinished() {
			t.Error("expected a paused animator to stay unfinished")
		}
	})
}

func TestPaletteComposition(t *testing.T) {
	t.Run("root translation lands in the palette", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		clip := &animation.SkeletalAnimation{
			Name:     "offset",
			Duration: 1,
			Looped:   true,
			Channels: []animation.AnimationChannel{
				{TranslationKeys: [][3]float32{{1, 2, 3}}},
			},
		}
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))

		m := a.JointMatrix(0)
		if m[12] != 1 || m[13] != 2 || m[14] != 3 {
			t.Errorf("expected translation (1, 2, 3), got (%v, %v, %v)", m[12], m[13], m[14])
		}
	})

	t.Run("child transforms compose with the parent", func(t *testing.T) {
		skeleton := chainSkeleton(2)
		clip := &animation.SkeletalAnimation{
			Name:     "chain",
			Duration: 1,
			Looped:   true,
			Channels: []animation.AnimationChannel{
				{TranslationKeys: [][3]float32{{1, 0, 0}}},
				{TranslationKeys: [][3]float32{{0, 1, 0}}},
			},
		}
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))

		m := a.JointMatrix(1)
		if m[12] != 1 || m[13] != 1 || m[14] != 0 {
			t.Errorf("expected child translation (1, 1, 0), got (%v, %v, %v)", m[12], m[13], m[14])
		}
	})

	t.Run("parent rotation carries children", func(t *testing.T) {
		skeleton := chainSkeleton(2)
		clip := &animation.SkeletalAnimation{
			Name:     "swing",
			Duration: 1,
			Looped:   true,
			Channels: []animation.AnimationChannel{
				{RotationKeys: [][4]float32{common.QuatFromAxisAngle([3]float32{0, 0, 1}, float32(math.Pi/2))}},
				{TranslationKeys: [][3]float32{{1, 0, 0}}},
			},
		}
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))

		// The child sits one unit along the parent's rotated X axis.
		m := a.JointMatrix(1)
		if !approxEqual(m[12], 0) || !approxEqual(m[13], 1) || !approxEqual(m[14], 0) {
			t.Errorf("expected child translation (0, 1, 0), got (%v, %v, %v)", m[12], m[13], m[14])
		}
	})

	t.Run("inverse bind cancels the bind pose", func(t *testing.T) {
		skeleton := chainSkeleton(1)
		ibm := identityMatrix()
		ibm[13] = -1 // bind position one unit up
		skeleton.Joints[0].InverseBindMatrix = ibm

		clip := &animation.SkeletalAnimation{
			Name:     "hold",
			Duration: 1,
			Looped:   true,
			Channels: []animation.AnimationChannel{
				{TranslationKeys: [][3]float32{{0, 1, 0}}},
			},
		}
		a := animator.NewSkeletonAnimator(animator.WithAnimation(skeleton, clip))

		// A joint posed at its bind position skins to the identity.
		m := a.JointMatrix(0)
		id := identityMatrix()
		for i, v := range m {
			if v != id[i] {
				t.Fatalf("element %d: expected %v, got %v", i, id[i], v)
			}
		}
	})

	t.Run("palette identity is stable across updates", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(2), restClip("walk", 1, true, 2)))

		first := a.JointMatrices()
		a.Update(0.25)
		second := a.JointMatrices()

		if &first[0] != &second[0] {
			t.Error("expected Update to reuse the palette backing storage")
		}
	})

	t.Run("JointMatrix copies the palette slot", func(t *testing.T) {
		a := animator.NewSkeletonAnimator(animator.WithAnimation(chainSkeleton(2), restClip("walk", 1, true, 2)))

		m := a.JointMatrix(1)
		palette := a.JointMatrices()
		for i, v := range m {
			if v != palette[16+i] {
				t.Fatalf("element %d: expected %v, got %v", i, palette[16+i], v)
			}
		}
	})
}

// rampKeys builds count keys running linearly from the origin to the given
// end point, one grid step apart.
func rampKeys(count int, x, y, z float32) [][3]float32 {
	keys := make([][3]float32, count)
	for i := range keys {
		f := float32(i) / float32(count-1)
		keys[i] = [3]float32{x * f, y * f, z * f}
	}
	return keys
}
