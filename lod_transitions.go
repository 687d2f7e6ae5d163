package lodkit

// BlendCurve selects the easing applied to LOD transition progress.
// Curves are a closed set resolved by switch; the per-frame update
// never goes through a function value.
type BlendCurve int

const (
	BlendLinear BlendCurve = iota
	BlendSmoothStep
	BlendEaseInOut
)

// Apply maps raw progress t in [0,1] onto the curve. All curves pin
// f(0)=0 and f(1)=1 exactly.
func (c BlendCurve) Apply(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch c {
	case BlendSmoothStep:
		return t * t * (3 - 2*t)
	case BlendEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		u := 1 - t
		return 1 - 2*u*u
	default:
		return t
	}
}

// Transition is one in-flight blend between two levels of a single
// object.
type Transition struct {
	Object   ObjectID
	From     int
	To       int
	Elapsed  float32
	Duration float32
	Eased    float32
}

// TransitionManager owns every active blend, at most one per object.
// Starting a new transition for an object that already has one
// replaces it outright; blends never stack.
type TransitionManager struct {
	active map[ObjectID]*Transition
	curve  BlendCurve
}

func NewTransitionManager(curve BlendCurve) *TransitionManager {
	return &TransitionManager{
		active: make(map[ObjectID]*Transition),
		curve:  curve,
	}
}

func (m *TransitionManager) SetCurve(curve BlendCurve) { m.curve = curve }

func (m *TransitionManager) Count() int { return len(m.active) }

// Start begins a blend from the object's current level. A zero or
// negative duration completes instantly and registers nothing.
func (m *TransitionManager) Start(id ObjectID, from, to int, duration float32) bool {
	if duration <= 0 {
		delete(m.active, id)
		return false
	}
	m.active[id] = &Transition{
		Object:   id,
		From:     from,
		To:       to,
		Duration: duration,
	}
	return true
}

// Cancel drops any active blend for the object.
func (m *TransitionManager) Cancel(id ObjectID) {
	delete(m.active, id)
}

// Progress reports the eased progress of the object's active blend,
// or 1 if none is running.
func (m *TransitionManager) Progress(id ObjectID) float32 {
	if tr, ok := m.active[id]; ok {
		return tr.Eased
	}
	return 1
}

// Update advances every blend by dt and invokes apply for each, with
// done=true on the frame a blend reaches full progress. Completed
// blends are removed before Update returns.
func (m *TransitionManager) Update(dt float32, apply func(id ObjectID, tr *Transition, done bool)) {
	if dt < 0 {
		dt = 0
	}
	for id, tr := range m.active {
		tr.Elapsed += dt
		raw := tr.Elapsed / tr.Duration
		eased := m.curve.Apply(raw)
		if eased < tr.Eased {
			eased = tr.Eased // monotone until completion
		}
		tr.Eased = eased

		done := raw >= 1
		if done {
			tr.Eased = 1
			delete(m.active, id)
		}
		if apply != nil {
			apply(id, tr, done)
		}
	}
}
