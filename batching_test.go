package lodkit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchTestPipeline(mutate func(*PipelineConfig)) *Pipeline {
	cfg := DefaultConfig()
	cfg.Adaptive.Enabled = false
	cfg.Transitions.Seconds = 0
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPipeline(cfg)
}

func sameKeyObjects(n int, mat MaterialHandle, mesh MeshHandle) []RenderObject {
	out := make([]RenderObject, n)
	for i := range out {
		out[i] = RenderObject{
			Object:   ObjectID(i + 1),
			Material: mat,
			Mesh:     mesh,
			Position: mgl32.Vec3{0, 0, 10},
			Params:   [4]float32{float32(i)},
		}
	}
	return out
}

func totalInstances(batches []RenderBatch) int {
	n := 0
	for i := range batches {
		n += len(batches[i].Instances)
	}
	return n
}

func TestBatchingInstancesAboveThreshold(t *testing.T) {
	p := batchTestPipeline(nil)

	batches := p.BatchDrawCalls(sameKeyObjects(5, "mat", "mesh"))
	require.Len(t, batches, 1)
	assert.True(t, batches[0].Instanced)
	assert.Len(t, batches[0].Instances, 5)

	stats := p.Statistics()
	assert.Equal(t, 5, stats.InputObjects)
	assert.Equal(t, 1, stats.FinalDrawCalls)
	assert.Equal(t, float32(5), stats.BatchEfficiency)
	assert.Equal(t, float32(5), stats.InstancingEfficiency())
}

func TestBatchingBelowThresholdStaysSingle(t *testing.T) {
	p := batchTestPipeline(nil) // threshold 3

	batches := p.BatchDrawCalls(sameKeyObjects(2, "mat", "mesh"))
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.False(t, b.Instanced)
		assert.Len(t, b.Instances, 1)
	}
	assert.Equal(t, float32(1), p.Statistics().BatchEfficiency)
}

func TestBatchingInstancingDisabled(t *testing.T) {
	p := batchTestPipeline(func(c *PipelineConfig) {
		c.Batching.EnableInstancing = false
	})

	batches := p.BatchDrawCalls(sameKeyObjects(6, "mat", "mesh"))
	assert.Len(t, batches, 6)
	assert.Equal(t, 0, p.Statistics().InstancedBatches)
}

func TestBatchingCapSplit(t *testing.T) {
	p := batchTestPipeline(func(c *PipelineConfig) {
		c.Batching.MaxInstancesPerBatch = 4
	})

	batches := p.BatchDrawCalls(sameKeyObjects(10, "mat", "mesh"))
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Instances, 4)
	assert.Len(t, batches[1].Instances, 4)
	assert.Len(t, batches[2].Instances, 2)

	// Instance order survives the split.
	tag := float32(0)
	for _, b := range batches {
		assert.True(t, b.Instanced)
		for _, inst := range b.Instances {
			assert.Equal(t, tag, inst.Params[0])
			tag++
		}
	}
}

func TestBatchingNeverExceedsInput(t *testing.T) {
	p := batchTestPipeline(nil)

	objects := append(sameKeyObjects(4, "a", "m1"), sameKeyObjects(2, "b", "m2")...)
	objects = append(objects, RenderObject{
		Object: 99, Material: "c", Mesh: "m3",
		Position: mgl32.Vec3{0, 0, 5},
		Flags:    RenderFlags{Transparent: true},
	})

	batches := p.BatchDrawCalls(objects)
	stats := p.Statistics()

	assert.LessOrEqual(t, stats.FinalDrawCalls, stats.InputObjects)
	assert.Equal(t, len(objects), totalInstances(batches))
	assert.InDelta(t, float64(stats.InputObjects)/float64(stats.FinalDrawCalls), float64(stats.BatchEfficiency), 1e-5)
}

func TestBatchingMixedKeysSplitGroups(t *testing.T) {
	p := batchTestPipeline(nil)

	// Same material and mesh but a different shader variant must not
	// share a draw.
	objects := sameKeyObjects(4, "mat", "mesh")
	doubleSided := sameKeyObjects(4, "mat", "mesh")
	for i := range doubleSided {
		doubleSided[i].Object += 100
		doubleSided[i].Flags.DoubleSided = true
	}
	objects = append(objects, doubleSided...)

	batches := p.BatchDrawCalls(objects)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.True(t, b.Instanced)
		assert.Len(t, b.Instances, 4)
	}
	assert.NotEqual(t, batches[0].Key.Variant, batches[1].Key.Variant)
}

func TestBatchingEmptyInput(t *testing.T) {
	p := batchTestPipeline(nil)
	assert.Nil(t, p.BatchDrawCalls(nil))
	assert.Equal(t, 0, p.Statistics().FinalDrawCalls)
	assert.Equal(t, float32(0), p.Statistics().BatchEfficiency)
}

func TestBatchingAtlasMerge(t *testing.T) {
	p := batchTestPipeline(func(c *PipelineConfig) {
		c.Batching.EnableAtlasMerge = true
	})

	atlas := NewAtlasID()
	texA, texB := NewTextureHandle(), NewTextureHandle()
	p.Atlases().AssignTexture(texA, AtlasRegion{Atlas: atlas})
	p.Atlases().AssignTexture(texB, AtlasRegion{Atlas: atlas})
	p.Atlases().BindMaterial("matA", texA)
	p.Atlases().BindMaterial("matB", texB)

	objects := []RenderObject{
		{Object: 1, Material: "matA", Mesh: "mesh", Position: mgl32.Vec3{0, 0, 10}},
		{Object: 2, Material: "matB", Mesh: "mesh", Position: mgl32.Vec3{0, 0, 12}},
	}

	batches := p.BatchDrawCalls(objects)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].Instanced)
	assert.Len(t, batches[0].Instances, 2)
	assert.Equal(t, float32(2), p.Statistics().BatchEfficiency)
}

func TestBatchingAtlasMergeRespectsMesh(t *testing.T) {
	p := batchTestPipeline(func(c *PipelineConfig) {
		c.Batching.EnableAtlasMerge = true
	})

	atlas := NewAtlasID()
	texA, texB := NewTextureHandle(), NewTextureHandle()
	p.Atlases().AssignTexture(texA, AtlasRegion{Atlas: atlas})
	p.Atlases().AssignTexture(texB, AtlasRegion{Atlas: atlas})
	p.Atlases().BindMaterial("matA", texA)
	p.Atlases().BindMaterial("matB", texB)

	// Shared atlas is not enough: differing meshes keep their draws.
	objects := []RenderObject{
		{Object: 1, Material: "matA", Mesh: "meshA", Position: mgl32.Vec3{0, 0, 10}},
		{Object: 2, Material: "matB", Mesh: "meshB", Position: mgl32.Vec3{0, 0, 12}},
	}
	assert.Len(t, p.BatchDrawCalls(objects), 2)
}

func TestIndividualDraws(t *testing.T) {
	p := batchTestPipeline(nil)

	batches := p.IndividualDraws(sameKeyObjects(5, "mat", "mesh"))
	require.Len(t, batches, 5)
	for _, b := range batches {
		assert.False(t, b.Instanced)
		assert.Len(t, b.Instances, 1)
	}
	assert.Equal(t, float32(1), p.Statistics().BatchEfficiency)
	assert.Equal(t, float32(0), p.Statistics().DrawCallReduction())
}
