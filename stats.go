package lodkit

// maxTrackedLevels caps the LOD distribution histogram.
const maxTrackedLevels = 8

// BatchingStatistics is the per-frame draw-call rollup. It is fully
// recomputed by every BatchDrawCalls call; nothing carries over.
type BatchingStatistics struct {
	InputObjects      int
	FinalDrawCalls    int
	InstancedBatches  int
	SingleDrawBatches int
	InstancedObjects  int
	BatchEfficiency   float32 // input objects per emitted draw call
}

func (s *BatchingStatistics) reset() {
	*s = BatchingStatistics{}
}

func (s *BatchingStatistics) finalize() {
	if s.FinalDrawCalls > 0 {
		s.BatchEfficiency = float32(s.InputObjects) / float32(s.FinalDrawCalls)
	} else {
		s.BatchEfficiency = 0
	}
}

// DrawCallReduction reports the fraction of draw calls eliminated by
// batching, in [0,1).
func (s *BatchingStatistics) DrawCallReduction() float32 {
	if s.InputObjects == 0 {
		return 0
	}
	return 1 - float32(s.FinalDrawCalls)/float32(s.InputObjects)
}

// InstancingEfficiency reports the average instance count of the
// instanced batches.
func (s *BatchingStatistics) InstancingEfficiency() float32 {
	if s.InstancedBatches == 0 {
		return 0
	}
	return float32(s.InstancedObjects) / float32(s.InstancedBatches)
}

// LODStatistics is the per-frame detail rollup, recomputed at the end
// of every UpdateLOD.
type LODStatistics struct {
	TotalObjects      int
	VisibleObjects    int
	CulledObjects     int
	ActiveTransitions int
	AverageLevel      float32
	// Distribution counts visible objects per level; levels past
	// maxTrackedLevels fold into the last bucket.
	Distribution [maxTrackedLevels]int
}

func (s *LODStatistics) reset() {
	*s = LODStatistics{}
}

func (s *LODStatistics) record(level int, visible bool) {
	s.TotalObjects++
	if !visible {
		s.CulledObjects++
		return
	}
	s.VisibleObjects++
	bucket := level
	if bucket >= maxTrackedLevels {
		bucket = maxTrackedLevels - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	s.Distribution[bucket]++
	s.AverageLevel += float32(level)
}

func (s *LODStatistics) finalize(activeTransitions int) {
	s.ActiveTransitions = activeTransitions
	if s.VisibleObjects > 0 {
		s.AverageLevel /= float32(s.VisibleObjects)
	}
}
