package scene

import (
	"time"

	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/profiler"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for ticking.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithAnimators registers initial animators with the scene, assigning ids in
// argument order. Nil entries are skipped.
//
// Parameters:
//   - animators: the animators to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimators(animators ...animator.SkeletonAnimator) SceneBuilderOption {
	return func(s *scene) {
		for _, a := range animators {
			if a == nil {
				continue
			}
			id := s.nextID
			s.nextID++
			s.registry[id] = a
			s.order = append(s.order, id)
		}
	}
}

// WithUpdateWorkers sets the number of worker goroutines used during the
// parallel phase of Update. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput with many animators on wide machines;
// lower values reduce scheduling overhead for small scenes.
//
// Parameters:
//   - n: the number of update workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.updateWorkers = n
	}
}

// WithProfiling enables per-tick performance reporting at the given interval.
// Equivalent to calling EnableProfiler after construction, with a custom
// reporting interval.
//
// Parameters:
//   - interval: how often the profiler logs a report
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProfiling(interval time.Duration) SceneBuilderOption {
	return func(s *scene) {
		s.prof = profiler.NewProfiler(profiler.WithUpdateInterval(interval))
	}
}
