package scene_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/rig-go/engine/animation"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/rig"
	"github.com/Carmen-Shannon/rig-go/engine/scene"
)

func identityMatrix() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// chainSkeleton builds an n-joint chain with identity inverse bind matrices.
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

// slideClip animates the root linearly along X so different times produce
// different palettes.
func slideClip(joints int) *animation.SkeletalAnimation {
	keys := make([][3]float32, 31)
	for i := range keys {
		keys[i] = [3]float32{float32(i), 0, 0}
	}
	channels := make([]animation.AnimationChannel, joints)
	channels[0] = animation.AnimationChannel{TranslationKeys: keys}
	return &animation.SkeletalAnimation{
		Name:     "slide",
		Duration: 1,
		Looped:   true,
		Channels: channels,
	}
}

func posedAnimator(joints int) animator.SkeletonAnimator {
	return animator.NewSkeletonAnimator(
		animator.WithAnimation(chainSkeleton(joints), slideClip(joints)),
	)
}

func TestNewSceneDefaults(t *testing.T) {
	s := scene.NewScene("main")

	if s.Name() != "main" {
		t.Errorf("expected name %q, got %q", "main", s.Name())
	}
	if s.Active() {
		t.Error("expected a new scene to start inactive")
	}
	if s.Count() != 0 {
		t.Errorf("expected an empty registry, got %d", s.Count())
	}
	if s.UpdateWorkers() < 1 {
		t.Errorf("expected at least one update worker, got %d", s.UpdateWorkers())
	}
	if len(s.PaletteWrites()) != 0 {
		t.Errorf("expected no staged writes, got %d", len(s.PaletteWrites()))
	}
}

func TestSceneOptions(t *testing.T) {
	a1 := posedAnimator(1)
	a2 := posedAnimator(2)
	s := scene.NewScene("options",
		scene.WithActive(true),
		scene.WithAnimators(a1, nil, a2),
		scene.WithUpdateWorkers(3),
	)

	if !s.Active() {
		t.Error("expected the scene to be active")
	}
	if s.Count() != 2 {
		t.Errorf("expected 2 animators (nil skipped), got %d", s.Count())
	}
	if s.Get(1) != a1 || s.Get(2) != a2 {
		t.Error("expected ids assigned in argument order starting at 1")
	}
	if s.UpdateWorkers() != 3 {
		t.Errorf("expected 3 update workers, got %d", s.UpdateWorkers())
	}

	t.Run("worker count clamps to one", func(t *testing.T) {
		s := scene.NewScene("clamped", scene.WithUpdateWorkers(0))
		if s.UpdateWorkers() != 1 {
			t.Errorf("expected 1 update worker, got %d", s.UpdateWorkers())
		}
	})
}

func TestRegistry(t *testing.T) {
	s := scene.NewScene("registry")

	a1 := posedAnimator(1)
	a2 := posedAnimator(1)
	id1 := s.Add(a1)
	id2 := s.Add(a2)

	if id1 != 1 || id2 != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", id1, id2)
	}
	if s.Count() != 2 {
		t.Errorf("expected 2 animators, got %d", s.Count())
	}
	if s.Get(id1) != a1 {
		t.Error("expected Get to return the registered animator")
	}
	if s.Get(99) != nil {
		t.Error("expected Get of an unknown id to return nil")
	}

	s.Remove(id1)
	if s.Count() != 1 || s.Get(id1) != nil {
		t.Error("expected the animator to be removed")
	}
	s.Remove(99) // unknown ids are ignored

	// Ids are never reused.
	if id3 := s.Add(posedAnimator(1)); id3 != 3 {
		t.Errorf("expected id 3, got %d", id3)
	}

	s.Clear()
	if s.Count() != 0 {
		t.Errorf("expected an empty registry after Clear, got %d", s.Count())
	}

	t.Run("nil animator panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		s.Add(nil)
	})
}

func TestUpdateAdvancesAnimators(t *testing.T) {
	s := scene.NewScene("tick")
	a := posedAnimator(2)
	s.Add(a)

	s.Update(0.25)
	if a.Time() != 0.25 {
		t.Errorf("expected the animator to advance to 0.25, got %v", a.Time())
	}

	s.Update(0.25)
	if a.Time() != 0.5 {
		t.Errorf("expected the animator to advance to 0.5, got %v", a.Time())
	}
}

func TestPaletteWrites(t *testing.T) {
	s := scene.NewScene("writes")
	s.Add(posedAnimator(1))
	s.Add(animator.NewSkeletonAnimator()) // idle, stages nothing
	s.Add(posedAnimator(2))
	s.Add(posedAnimator(3))

	s.Update(0.1)
	writes := s.PaletteWrites()

	if len(writes) != 3 {
		t.Fatalf("expected 3 writes (idle skipped), got %d", len(writes))
	}

	wantIDs := []uint64{1, 3, 4}
	wantLens := []int{64, 128, 192}
	var wantOffset uint64
	for i, w := range writes {
		if w.ID != wantIDs[i] {
			t.Errorf("write %d: expected id %d, got %d", i, wantIDs[i], w.ID)
		}
		if len(w.Data) != wantLens[i] {
			t.Errorf("write %d: expected %d bytes, got %d", i, wantLens[i], len(w.Data))
		}
		if w.Offset != wantOffset {
			t.Errorf("write %d: expected offset %d, got %d", i, wantOffset, w.Offset)
		}
		wantOffset += uint64(len(w.Data))
	}

	t.Run("removed animators stop staging", func(t *testing.T) {
		s.Remove(1)
		s.Update(0.1)

		writes := s.PaletteWrites()
		if len(writes) != 2 || writes[0].ID != 3 || writes[1].ID != 4 {
			t.Fatalf("expected writes for ids 3 and 4, got %+v", writes)
		}
		if writes[0].Offset != 0 {
			t.Errorf("expected offsets to repack from 0, got %d", writes[0].Offset)
		}
	})

	t.Run("empty scene stages nothing", func(t *testing.T) {
		s := scene.NewScene("empty")
		s.Update(0.1)
		if len(s.PaletteWrites()) != 0 {
			t.Errorf("expected no writes, got %d", len(s.PaletteWrites()))
		}
	})
}

func TestUpdateParallelMatchesSerial(t *testing.T) {
	const animators = 64

	build := func(workers int) (scene.Scene, []animator.SkeletonAnimator) {
		s := scene.NewScene("compare", scene.WithUpdateWorkers(workers))
		as := make([]animator.SkeletonAnimator, animators)
		for i := range as {
			as[i] = posedAnimator(3)
			as[i].SetNormalizedProgress(float32(i) / animators)
			s.Add(as[i])
		}
		return s, as
	}

	serial, serialAs := build(1)
	parallel, parallelAs := build(8)

	for i := 0; i < 4; i++ {
		serial.Update(0.05)
		parallel.Update(0.05)
	}

	// Each animator's evaluation is independent, so the fan-out must not
	// change any result.
	for i := range serialAs {
		want := serialAs[i].JointMatrices()
		got := parallelAs[i].JointMatrices()
		for j := range want {
			if want[j] != got[j] {
				t.Fatalf("animator %d float %d: expected %v, got %v", i, j, want[j], got[j])
			}
		}
	}

	serialWrites := serial.PaletteWrites()
	parallelWrites := parallel.PaletteWrites()
	if len(serialWrites) != len(parallelWrites) {
		t.Fatalf("expected %d writes, got %d", len(serialWrites), len(parallelWrites))
	}
	for i := range serialWrites {
		if !bytes.Equal(serialWrites[i].Data, parallelWrites[i].Data) {
			t.Fatalf("write %d: staged bytes differ between worker counts", i)
		}
	}
}

func TestSceneNameAndActive(t *testing.T) {
	s := scene.NewScene("before")
	s.SetName("after")
	if s.Name() != "after" {
		t.Errorf("expected name %q, got %q", "after", s.Name())
	}

	s.SetActive(true)
	if !s.Active() {
		t.Error("expected the scene to be active")
	}
	s.SetActive(false)
	if s.Active() {
		t.Error("expected the scene to be inactive")
	}
}

func TestProfilerToggle(t *testing.T) {
	// EnableProfiler and DisableProfiler must be safe around Update.
	s := scene.NewScene("profiled")
	s.Add(posedAnimator(1))

	s.EnableProfiler()
	s.EnableProfiler() // idempotent
	s.Update(0.1)
	s.DisableProfiler()
	s.Update(0.1)
}
