// Profiling:
// go build ./profile/animators
// go tool pprof -http=":8000" -nodefraction=0.001 ./animators mem.pprof

package main

import (
	"log"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animation"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/loader"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
	"github.com/Carmen-Shannon/rig-go/engine/scene"
	"github.com/pkg/profile"
)

const jointCount = 16

func main() {
	rounds := 20
	ticks := 2000
	animators := 500
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, ticks, animators)
	p.Stop()
}

func run(rounds, ticks, numAnimators int) {
	skeleton, clip := buildRig()
	const dt = float32(1.0 / 60.0)

	for range rounds {
		sc := scene.NewScene("profile")
		for i := 0; i < numAnimators; i++ {
			a := animator.NewSkeletonAnimator(
				animator.WithAnimation(skeleton, clip),
			)
			a.SetNormalizedProgress(float32(i) / float32(numAnimators))
			sc.Add(a)
		}

		for range ticks {
			sc.Update(dt)
			_ = sc.PaletteWrites()
		}
		sc.Clear()
	}
}

func buildRig() (*rig.Skeleton, *animation.SkeletalAnimation) {
	joints := make([]loader.ImportedJoint, jointCount)
	channels := make([]loader.ImportedChannel, jointCount)
	for i := range joints {
		name := string(rune('a' + i))
		joints[i] = loader.ImportedJoint{
			Name:   name,
			Parent: int32(i) - 1,
			InverseBindMatrix: [16]float32{
				1, 0, 0, 0,
				0, 1, 0, 0,
				0, 0, 1, 0,
				0, -float32(i), 0, 1,
			},
		}
		channels[i] = loader.ImportedChannel{
			Joint: name,
			RotationKeys: []loader.QuaternionKeyframe{
				{Time: 0, Value: common.QuatFromAxisAngle([3]float32{0, 1, 0}, 0)},
				{Time: 1, Value: common.QuatFromAxisAngle([3]float32{0, 1, 0}, 1)},
				{Time: 2, Value: common.QuatFromAxisAngle([3]float32{0, 1, 0}, 0)},
			},
		}
		if i > 0 {
			channels[i].TranslationKeys = []loader.VectorKeyframe{
				{Time: 0, Value: [3]float32{0, 1, 0}},
			}
		}
	}

	skeleton, clips, err := loader.NewImporter(
		loader.WithJoints(joints),
		loader.WithClips(loader.ImportedClip{
			Name:     "twist",
			Duration: 2,
			Looped:   true,
			Channels: channels,
		}),
	).Build()
	if err != nil {
		log.Fatalf("Failed to build rig: %v", err)
	}
	return skeleton, clips[0]
}
