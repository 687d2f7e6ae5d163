package lodkit

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// parallelCutoff is the live-object count above which the per-object
// evaluation fans out across workers. Below it a single linear scan
// beats the goroutine overhead.
const parallelCutoff = 2048

// Pipeline is the per-frame LOD and batching core. One instance per
// scene; the host calls UpdateLOD once per frame from its main loop,
// then BatchDrawCalls with the visible object list. Nothing in here
// blocks, and no method ever fails mid-frame — bad input degrades to
// a safe result instead.
type Pipeline struct {
	cfg         PipelineConfig
	table       levelTable
	store       objectStore
	transitions *TransitionManager

	meshes  *MeshLibrary
	atlas   *AtlasRegistry
	monitor PerformanceMonitor
	clock   *FrameClock
	log     Logger

	camera Camera
	frame  uint64

	pendingMu  sync.Mutex
	pendingCfg *PipelineConfig

	stats    BatchingStatistics
	lodStats LODStatistics
}

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

func WithLogger(l Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMonitor replaces the built-in FrameClock with the host's own
// performance source.
func WithMonitor(m PerformanceMonitor) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.monitor = m
		}
	}
}

func WithMeshLibrary(l *MeshLibrary) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.meshes = l
		}
	}
}

func WithAtlasRegistry(r *AtlasRegistry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.atlas = r
		}
	}
}

func NewPipeline(cfg PipelineConfig, opts ...Option) *Pipeline {
	cfg = cfg.normalized()

	p := &Pipeline{
		cfg:         cfg,
		table:       newLevelTable(cfg.Levels),
		store:       newObjectStore(),
		transitions: NewTransitionManager(cfg.Transitions.Curve),
		meshes:      NewMeshLibrary(nil),
		atlas:       NewAtlasRegistry(),
		clock:       NewFrameClock(),
		log:         NewNopLogger(),
	}
	p.monitor = p.clock

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Clock returns the built-in frame clock. Hosts using WithMonitor can
// ignore it; everyone else calls Clock().Tick() once per frame and
// feeds GPU utilization when they have it.
func (p *Pipeline) Clock() *FrameClock { return p.clock }

// Atlases returns the texture atlas registry consulted by the batch
// merge step.
func (p *Pipeline) Atlases() *AtlasRegistry { return p.atlas }

// Meshes returns the shared mesh reference tracker.
func (p *Pipeline) Meshes() *MeshLibrary { return p.meshes }

// SetConfig schedules a configuration change. It is safe to call from
// a tuning UI at any time; the change is applied atomically at the
// start of the next UpdateLOD or BatchDrawCalls, never mid-scan.
func (p *Pipeline) SetConfig(cfg PipelineConfig) {
	p.pendingMu.Lock()
	c := cfg
	p.pendingCfg = &c
	p.pendingMu.Unlock()
}

// Config returns the currently applied configuration.
func (p *Pipeline) Config() PipelineConfig { return p.cfg }

func (p *Pipeline) applyPendingConfig() {
	p.pendingMu.Lock()
	pending := p.pendingCfg
	p.pendingCfg = nil
	p.pendingMu.Unlock()

	if pending == nil {
		return
	}
	p.cfg = pending.normalized()
	p.table = newLevelTable(p.cfg.Levels)
	p.transitions.SetCurve(p.cfg.Transitions.Curve)
	p.log.Infof("pipeline config applied: %d levels, adaptive=%v, instancing threshold %d",
		p.table.Len(), p.cfg.Adaptive.Enabled, p.cfg.Batching.InstancingThreshold)
}

// RegisterObject adds (or re-adds) an object to LOD management. The
// variant map is copied; every referenced mesh gains a shared
// reference held until deregistration.
func (p *Pipeline) RegisterObject(id ObjectID, bounds AABB, variants MeshVariants, importance float32, opts ...RegisterOption) {
	if old, ok := p.store.lookup(id); ok {
		for _, h := range old.variants {
			p.meshes.Release(h)
		}
		p.transitions.Cancel(id)
	}

	s := p.store.register(id, bounds, variants, importance, opts...)
	for _, h := range s.variants {
		p.meshes.Retain(h)
	}

	if p.log.DebugEnabled() {
		p.log.Debugf("registered object %d: %d mesh variants, importance %.2f", id, len(s.variants), s.importance)
	}
}

// DeregisterObject removes an object, dropping its mesh references
// and any in-flight transition. Unknown ids are ignored.
func (p *Pipeline) DeregisterObject(id ObjectID) {
	variants, ok := p.store.deregister(id)
	if !ok {
		return
	}
	p.transitions.Cancel(id)
	for _, h := range variants {
		p.meshes.Release(h)
	}
}

// ObjectMesh resolves the mesh the object should draw with right now.
// Mid-transition it already reports the target level's mesh. Falls
// back to the nearest populated variant; returns false only for
// unknown objects or objects with no variants.
func (p *Pipeline) ObjectMesh(id ObjectID) (MeshHandle, bool) {
	s, ok := p.store.lookup(id)
	if !ok {
		return "", false
	}
	level := s.currentLOD
	if s.progress < 1 {
		level = s.targetLOD
	}
	return s.resolveMesh(level)
}

// ObjectLOD reports the object's settled detail level.
func (p *Pipeline) ObjectLOD(id ObjectID) (int, bool) {
	s, ok := p.store.lookup(id)
	if !ok {
		return 0, false
	}
	return s.currentLOD, true
}

// ObjectVisible reports whether the object survived max-distance
// culling on the last update. Unknown objects are not visible.
func (p *Pipeline) ObjectVisible(id ObjectID) bool {
	s, ok := p.store.lookup(id)
	return ok && s.visible
}

// TransitionProgress reports the eased blend progress for the object,
// 1.0 when settled.
func (p *Pipeline) TransitionProgress(id ObjectID) float32 {
	s, ok := p.store.lookup(id)
	if !ok {
		return 1
	}
	return s.progress
}

// Statistics returns the batching rollup from the most recent
// BatchDrawCalls.
func (p *Pipeline) Statistics() *BatchingStatistics { return &p.stats }

// LODStats returns the detail rollup from the most recent UpdateLOD.
func (p *Pipeline) LODStats() *LODStatistics { return &p.lodStats }

// pendingSwitch is a level change decided during the evaluation scan,
// applied after it. Workers append to private buffers so the scan
// stays write-disjoint; the merge happens on the calling goroutine.
type pendingSwitch struct {
	row   int
	level int
}

// UpdateLOD runs the once-per-frame decision pass: sample the
// performance snapshot, evaluate every registered object's effective
// distance, pick target levels, and advance transitions by dt
// (seconds).
func (p *Pipeline) UpdateLOD(cam *Camera, dt float32, frameID uint64) {
	p.applyPendingConfig()
	p.frame = frameID

	if cam != nil {
		p.camera = *cam
	}
	if math32.IsNaN(dt) || dt < 0 {
		dt = 0
	}

	bias := computeAdaptiveBias(p.cfg.Adaptive, p.monitor.AverageFPS(), p.monitor.GPUUtilization())
	camPos := p.camera.Position

	var switches []pendingSwitch
	if p.store.len() > parallelCutoff {
		switches = p.evaluateParallel(camPos, bias)
	} else {
		switches = p.evaluateRange(0, len(p.store.states), camPos, bias, nil)
	}

	for _, sw := range switches {
		s := &p.store.states[sw.row]
		if !s.live {
			continue
		}
		if sw.level == s.currentLOD {
			// The decision swung back to the settled level mid-blend;
			// drop the blend instead of transitioning to where we are.
			p.transitions.Cancel(s.id)
			s.targetLOD = s.currentLOD
			s.progress = 1
			continue
		}
		from := s.currentLOD
		s.targetLOD = sw.level
		if p.transitions.Start(s.id, from, sw.level, p.cfg.Transitions.Seconds) {
			s.progress = 0
		} else {
			// Instant switch: zero-duration transitions complete on the spot.
			s.currentLOD = sw.level
			s.progress = 1
		}
	}

	p.transitions.Update(dt, func(id ObjectID, tr *Transition, done bool) {
		s, ok := p.store.lookup(id)
		if !ok {
			return
		}
		if done {
			s.currentLOD = tr.To
			s.targetLOD = tr.To
			s.progress = 1
		} else {
			s.progress = tr.Eased
		}
	})

	p.lodStats.reset()
	for i := range p.store.states {
		s := &p.store.states[i]
		if !s.live {
			continue
		}
		p.lodStats.record(s.currentLOD, s.visible)
	}
	p.lodStats.finalize(p.transitions.Count())

	if p.log.DebugEnabled() && frameID%120 == 0 {
		p.log.Debugf("frame %d: %d objects (%d visible, %d culled), avg level %.2f, bias %.3f, %d transitions",
			frameID, p.lodStats.TotalObjects, p.lodStats.VisibleObjects, p.lodStats.CulledObjects,
			p.lodStats.AverageLevel, bias, p.lodStats.ActiveTransitions)
	}
}

// evaluateParallel fans the arena scan out over fixed chunks. Each
// worker touches only its own rows and its own switch buffer; buffers
// are concatenated afterwards so transition starts stay serialized.
func (p *Pipeline) evaluateParallel(camPos mgl32.Vec3, bias float32) []pendingSwitch {
	n := len(p.store.states)
	workers := runtime.GOMAXPROCS(0)
	if workers > 8 {
		workers = 8
	}
	chunk := (n + workers - 1) / workers

	buffers := make([][]pendingSwitch, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			buffers[w] = p.evaluateRange(start, end, camPos, bias, nil)
		}(w, start, end)
	}
	wg.Wait()

	var merged []pendingSwitch
	for _, buf := range buffers {
		merged = append(merged, buf...)
	}
	return merged
}

// evaluateRange scans rows [start,end), updating cached distances and
// visibility in place and collecting level switches into out.
func (p *Pipeline) evaluateRange(start, end int, camPos mgl32.Vec3, bias float32, out []pendingSwitch) []pendingSwitch {
	dc := p.cfg.Distance

	for i := start; i < end; i++ {
		s := &p.store.states[i]
		if !s.live {
			continue
		}

		dist := s.bounds.DistanceTo(camPos)
		if math32.IsNaN(dist) {
			dist = math32.MaxFloat32
		}

		adjusted := dist
		if dc.SizeScaling {
			size := s.bounds.Size().Len()
			factor := clamp32(size/dc.ReferenceSize, 0.25, 4)
			adjusted /= factor
		}
		adjusted /= math32.Max(s.importance, 0.1)

		// Pull toward last frame's value to damp boundary flicker. The
		// pull never overshoots the previous distance.
		if s.lastDistance >= 0 && dc.HysteresisMargin > 0 {
			if adjusted > s.lastDistance {
				adjusted = math32.Max(s.lastDistance, adjusted-dc.HysteresisMargin)
			} else if adjusted < s.lastDistance {
				adjusted = math32.Min(s.lastDistance, adjusted+dc.HysteresisMargin)
			}
		}
		s.lastDistance = adjusted

		biased := adjusted * (1 + bias)
		if biased < 0 || math32.IsNaN(biased) {
			biased = 0
		}

		s.visible = dc.MaxDistance <= 0 || biased <= dc.MaxDistance

		var level int
		switch {
		case s.pinned:
			level = s.pinnedLevel
			if level < 0 {
				level = 0
			}
			if level >= p.table.Len() {
				level = p.table.Len() - 1
			}
		case len(s.customRanges) > 0:
			level = p.table.selectCustom(biased, s.customRanges)
		default:
			level = p.table.Select(biased)
		}

		if level != s.targetLOD {
			out = append(out, pendingSwitch{row: i, level: level})
		}
	}
	return out
}
