package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/profiler"
)

// PaletteWrite describes one animator's staged palette data for the tick that
// just ran. Offsets pack the palettes back to back in animator id order, so a
// consumer can treat the set as one contiguous upload. Data aliases the
// animator's palette storage and is valid only until the next Update.
type PaletteWrite struct {
	ID     uint64 // the animator's id within the scene
	Offset uint64 // byte offset within the coalesced upload
	Data   []byte // little-endian matrix bytes, 64 per joint
}

// Scene manages a registry of SkeletonAnimators and drives them as a group:
// one Update call advances every registered animator, fanned out across a
// persistent worker pool, and stages every resulting palette as a coalesced
// write batch for an upload layer to consume.
// Scenes can be hot-swapped via the Active flag to switch between different
// views or levels. Thread-safe for concurrent access, except that Update must
// only run from one goroutine at a time.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for ticking.
	Active() bool

	// SetActive sets whether this scene is active for ticking.
	SetActive(active bool)

	// Add registers an animator with the scene and assigns it an id. The
	// scene takes over calling Update on the animator; callers keep their
	// reference for per-instance control such as SetAnimation or seeks.
	//
	// Panics if a is nil.
	//
	// Parameters:
	//   - a: the animator to register
	//
	// Returns:
	//   - uint64: the assigned animator id
	Add(a animator.SkeletonAnimator) uint64

	// Get retrieves a registered animator by its id.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the animator's unique id
	//
	// Returns:
	//   - animator.SkeletonAnimator: the animator or nil
	Get(id uint64) animator.SkeletonAnimator

	// Remove unregisters an animator by id. The animator itself is untouched
	// and can be re-added or driven manually afterwards.
	//
	// Parameters:
	//   - id: the animator's unique id
	Remove(id uint64)

	// Clear unregisters all animators from the scene.
	Clear()

	// Count returns the number of registered animators.
	//
	// Returns:
	//   - int: the animator count
	Count() int

	// Update advances every registered animator by deltaTime and stages their
	// palettes for upload. Animators are updated in parallel across the
	// scene's worker pool, each owned by exactly one worker per tick, and the
	// call returns only after every animator has finished. The staged batch
	// is available from PaletteWrites until the next Update.
	//
	// Must only be called from one goroutine at a time.
	//
	// Parameters:
	//   - deltaTime: elapsed simulation time since the previous tick, in seconds
	Update(deltaTime float32)

	// PaletteWrites returns the palette batch staged by the most recent
	// Update, in animator id order. Idle animators stage nothing. The
	// returned slice and the byte views inside it are reused by the next
	// Update; consumers must submit or copy them before then.
	//
	// Returns:
	//   - []PaletteWrite: the staged palette writes
	PaletteWrites() []PaletteWrite

	// UpdateWorkers returns the number of worker goroutines the scene fans
	// Update out across.
	//
	// Returns:
	//   - int: the configured worker count
	UpdateWorkers() int

	// EnableProfiler starts per-tick performance reporting. Stats are logged
	// at the profiler's update interval. No-op if already enabled.
	EnableProfiler()

	// DisableProfiler stops per-tick performance reporting.
	DisableProfiler()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry map[uint64]animator.SkeletonAnimator
	order    []uint64 // registered ids, ascending; drives deterministic tick and staging order
	nextID   uint64

	prof *profiler.Profiler

	// Pre-allocated slices reused each tick to avoid per-tick allocations.
	writePool []PaletteWrite
	tickPool  []animator.SkeletonAnimator

	// updatePool manages a bounded set of reusable goroutines for the
	// parallel animator update phase. Workers persist across ticks, avoiding
	// per-tick goroutine spawn/teardown overhead.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int // stored so we can log/inspect the configured count
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with an empty animator registry and the given
// options applied. The parallel update pool is sized to runtime.NumCPU()-1
// workers unless WithUpdateWorkers overrides it.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		active:        false,
		registry:      make(map[uint64]animator.SkeletonAnimator),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the update pool after options so WithUpdateWorkers can
	// override the default. Queue size of 256 holds the chunked task counts
	// with plenty of headroom, since Update never submits more tasks than
	// there are workers.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Add(a animator.SkeletonAnimator) uint64 {
	if a == nil {
		panic("scene: Add requires a non-nil animator")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.registry[id] = a
	// nextID is monotonic, so appending keeps order ascending.
	s.order = append(s.order, id)
	return id
}

func (s *scene) Get(id uint64) animator.SkeletonAnimator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[id]; !ok {
		return
	}
	delete(s.registry, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uint64]animator.SkeletonAnimator)
	s.order = s.order[:0]
	s.writePool = s.writePool[:0]
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		s.writePool = s.writePool[:0]
		if s.prof != nil {
			s.prof.Tick()
		}
		return
	}

	// Snapshot animators in id order so chunk boundaries and staging order
	// are deterministic regardless of map iteration.
	animators := s.tickPool[:0]
	for _, id := range s.order {
		animators = append(animators, s.registry[id])
	}
	s.tickPool = animators

	// Phase 1: parallel update. Fan contiguous chunks out to the pool, at
	// most one task per worker. Workers are reused across ticks (no goroutine
	// spawn overhead). A WaitGroup provides the per-tick barrier since
	// pool.Wait() blocks until workers idle-exit, which is unsuitable for
	// frame-rate workloads.
	chunk := (len(animators) + s.updateWorkers - 1) / s.updateWorkers
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(animators); start += chunk {
		end := min(start+chunk, len(animators))

		wg.Add(1)
		batch := animators[start:end] // capture for closure
		id := taskID
		taskID++
		s.updatePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, a := range batch {
					a.Update(deltaTime)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: coalesced palette staging. Collect every posed animator's
	// palette bytes into a single batch so an upload layer submits one write
	// instead of N. The byte views alias animator storage and stay valid
	// only until the next Update.
	allWrites := s.writePool[:0]
	var offset uint64
	for i, a := range animators {
		palette := a.JointMatrices()
		if len(palette) == 0 {
			continue
		}
		data := common.SliceToBytes(palette)
		allWrites = append(allWrites, PaletteWrite{
			ID:     s.order[i],
			Offset: offset,
			Data:   data,
		})
		offset += uint64(len(data))
	}
	s.writePool = allWrites

	if s.prof != nil {
		s.prof.Tick()
	}
}

func (s *scene) PaletteWrites() []PaletteWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writePool
}

func (s *scene) UpdateWorkers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateWorkers
}

func (s *scene) EnableProfiler() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prof == nil {
		s.prof = profiler.NewProfiler()
	}
}

func (s *scene) DisableProfiler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prof = nil
}
