package lodkit

// BatchKey is the grouping identity for instancing: two objects can
// share a draw only when material, mesh and shader variant all match.
type BatchKey struct {
	Material MaterialHandle
	Mesh     MeshHandle
	Variant  uint32
}

func batchKeyOf(o *RenderObject) BatchKey {
	return BatchKey{
		Material: o.Material,
		Mesh:     o.Mesh,
		Variant:  shaderVariant(o),
	}
}

// InstanceGroup is a run of sorted objects sharing one BatchKey.
type InstanceGroup struct {
	Key     BatchKey
	Objects []RenderObject
}

// RenderBatch is one GPU draw submission: a material/mesh pair plus
// the packed per-instance records. Transient; built and consumed
// within a single frame.
type RenderBatch struct {
	Key       BatchKey
	Material  MaterialHandle
	Mesh      MeshHandle
	Instanced bool
	Instances []RenderInstance
}

// groupInstances partitions the already-sorted object list into runs
// sharing a key. Sorting has placed equal keys adjacently, so one
// linear scan suffices.
func groupInstances(sorted []RenderObject) []InstanceGroup {
	if len(sorted) == 0 {
		return nil
	}

	groups := make([]InstanceGroup, 0, 8)
	start := 0
	key := batchKeyOf(&sorted[0])

	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) {
			if next := batchKeyOf(&sorted[i]); next == key {
				continue
			} else {
				groups = append(groups, InstanceGroup{Key: key, Objects: sorted[start:i]})
				start, key = i, next
				continue
			}
		}
		groups = append(groups, InstanceGroup{Key: key, Objects: sorted[start:i]})
	}
	return groups
}

// BatchDrawCalls turns the frame's render list into an ordered set of
// draw batches and recomputes the frame's BatchingStatistics. The
// input slice is not modified.
func (p *Pipeline) BatchDrawCalls(objects []RenderObject) []RenderBatch {
	p.applyPendingConfig()
	cfg := p.cfg.Batching

	p.stats.reset()
	p.stats.InputObjects = len(objects)
	if len(objects) == 0 {
		p.stats.finalize()
		return nil
	}

	work := make([]RenderObject, len(objects))
	copy(work, objects)
	if cfg.EnableStateSorting {
		sortRenderObjects(work, &p.camera)
	}

	var batches []RenderBatch
	if cfg.EnableInstancing {
		for _, group := range groupInstances(work) {
			if len(group.Objects) >= cfg.InstancingThreshold && len(group.Objects) > 1 {
				batches = append(batches, makeBatch(group.Key, group.Objects, true))
			} else {
				for i := range group.Objects {
					batches = append(batches, makeBatch(group.Key, group.Objects[i:i+1], false))
				}
			}
		}
	} else {
		for i := range work {
			batches = append(batches, makeBatch(batchKeyOf(&work[i]), work[i:i+1], false))
		}
	}

	if cfg.EnableAtlasMerge && p.atlas != nil {
		batches = mergeAtlasBatches(batches, p.atlas)
	}
	batches = splitOversized(batches, cfg.MaxInstancesPerBatch)

	p.tallyBatches(batches)
	return batches
}

// IndividualDraws emits one single-instance batch per object with no
// grouping at all. Debug paths and batching A/B comparisons use it;
// statistics are populated the same way.
func (p *Pipeline) IndividualDraws(objects []RenderObject) []RenderBatch {
	p.applyPendingConfig()

	p.stats.reset()
	p.stats.InputObjects = len(objects)

	batches := make([]RenderBatch, 0, len(objects))
	for i := range objects {
		o := &objects[i]
		batches = append(batches, makeBatch(batchKeyOf(o), objects[i:i+1], false))
	}

	p.tallyBatches(batches)
	return batches
}

func makeBatch(key BatchKey, objects []RenderObject, instanced bool) RenderBatch {
	instances := make([]RenderInstance, len(objects))
	for i := range objects {
		instances[i] = newRenderInstance(&objects[i])
	}
	return RenderBatch{
		Key:       key,
		Material:  key.Material,
		Mesh:      key.Mesh,
		Instanced: instanced && len(instances) > 1,
		Instances: instances,
	}
}

// splitOversized caps every batch at max instances, preserving the
// relative instance order across the resulting chunks. Overflow is
// always resolved by splitting, never by dropping instances.
func splitOversized(batches []RenderBatch, max int) []RenderBatch {
	if max < 1 {
		max = 1
	}

	needsSplit := false
	for i := range batches {
		if len(batches[i].Instances) > max {
			needsSplit = true
			break
		}
	}
	if !needsSplit {
		return batches
	}

	out := make([]RenderBatch, 0, len(batches)+4)
	for _, b := range batches {
		if len(b.Instances) <= max {
			out = append(out, b)
			continue
		}
		for start := 0; start < len(b.Instances); start += max {
			end := start + max
			if end > len(b.Instances) {
				end = len(b.Instances)
			}
			chunk := b
			chunk.Instances = b.Instances[start:end]
			chunk.Instanced = len(chunk.Instances) > 1
			out = append(out, chunk)
		}
	}
	return out
}

// mergeAtlasBatches folds adjacent batches whose materials sample the
// same texture atlas (and that already agree on mesh and variant)
// into one draw. Best effort: anything that cannot merge passes
// through untouched.
func mergeAtlasBatches(batches []RenderBatch, atlas *AtlasRegistry) []RenderBatch {
	if len(batches) < 2 {
		return batches
	}

	out := make([]RenderBatch, 0, len(batches))
	out = append(out, batches[0])

	for _, b := range batches[1:] {
		last := &out[len(out)-1]
		if b.Mesh == last.Mesh &&
			b.Key.Variant == last.Key.Variant &&
			b.Material != last.Material &&
			atlas.sharedAtlas(last.Material, b.Material) {
			last.Instances = append(last.Instances, b.Instances...)
			last.Instanced = len(last.Instances) > 1
			continue
		}
		out = append(out, b)
	}
	return out
}

func (p *Pipeline) tallyBatches(batches []RenderBatch) {
	p.stats.FinalDrawCalls = len(batches)
	for i := range batches {
		if batches[i].Instanced {
			p.stats.InstancedBatches++
			p.stats.InstancedObjects += len(batches[i].Instances)
		} else {
			p.stats.SingleDrawBatches++
		}
	}
	p.stats.finalize()

	if p.log.DebugEnabled() && p.stats.InputObjects > 0 {
		p.log.Debugf("batched %d objects into %d draws (%.2fx, %d instanced / %d single)",
			p.stats.InputObjects, p.stats.FinalDrawCalls, p.stats.BatchEfficiency,
			p.stats.InstancedBatches, p.stats.SingleDrawBatches)
	}
}
