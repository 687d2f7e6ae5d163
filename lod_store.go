package lodkit

// objectState is the per-object runtime LOD record. States live in a
// dense arena scanned linearly every frame; the id map is consulted
// only at registration, deregistration and point lookups.
type objectState struct {
	id         ObjectID
	live       bool
	bounds     AABB
	variants   MeshVariants
	importance float32

	currentLOD   int
	targetLOD    int
	progress     float32 // eased transition progress, 1 when settled
	lastDistance float32 // post-adjustment distance from the previous frame
	visible      bool

	pinned       bool
	pinnedLevel  int
	customRanges []float32
}

// RegisterOption customizes an object at registration time.
type RegisterOption func(*objectState)

// WithPinnedLevel locks the object to one detail level regardless of
// distance. Hero objects and UI-attached props use this.
func WithPinnedLevel(level int) RegisterOption {
	return func(s *objectState) {
		s.pinned = true
		s.pinnedLevel = level
	}
}

// WithCustomRanges replaces the shared distance table with per-object
// upper bounds, one per level in ascending order.
func WithCustomRanges(thresholds []float32) RegisterOption {
	return func(s *objectState) {
		s.customRanges = append([]float32(nil), thresholds...)
	}
}

// objectStore owns one state per registered object. Rows are
// recycled: deregistering frees the row for the next registration,
// so the arena stays dense across churn.
type objectStore struct {
	states []objectState
	index  map[ObjectID]int
	free   []int
}

func newObjectStore() objectStore {
	return objectStore{
		index: make(map[ObjectID]int),
	}
}

func (st *objectStore) len() int { return len(st.index) }

// register creates (or resets) the state for id and returns it.
func (st *objectStore) register(id ObjectID, bounds AABB, variants MeshVariants, importance float32, opts ...RegisterOption) *objectState {
	row, exists := st.index[id]
	if !exists {
		if n := len(st.free); n > 0 {
			row = st.free[n-1]
			st.free = st.free[:n-1]
		} else {
			st.states = append(st.states, objectState{})
			row = len(st.states) - 1
		}
		st.index[id] = row
	}

	if importance <= 0 {
		importance = 1
	}

	s := &st.states[row]
	*s = objectState{
		id:           id,
		live:         true,
		bounds:       bounds,
		variants:     variants.clone(),
		importance:   importance,
		progress:     1,
		visible:      true,
		lastDistance: -1, // no previous frame yet, hysteresis skipped
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// deregister removes id and returns its mesh variants so the caller
// can release the shared references. Unknown ids are a no-op.
func (st *objectStore) deregister(id ObjectID) (MeshVariants, bool) {
	row, ok := st.index[id]
	if !ok {
		return nil, false
	}
	variants := st.states[row].variants
	st.states[row] = objectState{}
	delete(st.index, id)
	st.free = append(st.free, row)
	return variants, true
}

func (st *objectStore) lookup(id ObjectID) (*objectState, bool) {
	row, ok := st.index[id]
	if !ok {
		return nil, false
	}
	return &st.states[row], true
}

// resolveMesh picks the mesh for the requested level, falling back to
// the nearest populated variant when the exact level has none. Ties
// prefer the lower index (higher quality). Returns false only when
// the object has no variants at all.
func (s *objectState) resolveMesh(level int) (MeshHandle, bool) {
	if len(s.variants) == 0 {
		return "", false
	}
	if h, ok := s.variants[level]; ok {
		return h, true
	}

	bestIdx := -1
	var best MeshHandle
	for idx, h := range s.variants {
		if bestIdx == -1 {
			bestIdx, best = idx, h
			continue
		}
		da, db := absInt(idx-level), absInt(bestIdx-level)
		if da < db || (da == db && idx < bestIdx) {
			bestIdx, best = idx, h
		}
	}
	return best, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
