package lodkit

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderFlags are the visual switches that feed the shader variant.
type RenderFlags struct {
	Transparent    bool
	DoubleSided    bool
	CastsShadow    bool
	ReceivesShadow bool
}

// RenderObject is one candidate draw for the current frame. The scene
// graph builds the list; it is treated as immutable for the duration
// of a BatchDrawCalls pass.
type RenderObject struct {
	Object   ObjectID
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Material MaterialHandle
	Mesh     MeshHandle
	Flags    RenderFlags

	Color  [4]float32
	Params [4]float32
}

// shaderVariant packs the flags into the bitmask that keys batch
// compatibility: objects with differing variants need different
// pipeline state and can never share a draw.
func shaderVariant(o *RenderObject) uint32 {
	var v uint32
	if o.Flags.CastsShadow {
		v |= 1
	}
	if o.Flags.ReceivesShadow {
		v |= 2
	}
	if o.Flags.Transparent {
		v |= 4
	}
	if o.Flags.DoubleSided {
		v |= 8
	}
	return v
}

// sortRenderObjects orders the frame's draw list to minimize GPU
// state changes: opaque before transparent, then material, then mesh,
// then depth — front-to-back for opaque (early depth reject),
// back-to-front for transparent (correct blending). The sort is
// stable, so objects with fully equal keys keep their submission
// order.
func sortRenderObjects(objects []RenderObject, cam *Camera) {
	if len(objects) < 2 {
		return
	}

	depths := make([]float32, len(objects))
	for i := range objects {
		depths[i] = cam.DistanceTo(objects[i].Position)
	}

	// Sort an index permutation so depth lookups stay attached to
	// their objects while the slice moves.
	order := make([]int, len(objects))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(x, y int) bool {
		a, b := &objects[order[x]], &objects[order[y]]

		if a.Flags.Transparent != b.Flags.Transparent {
			return !a.Flags.Transparent
		}
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.Mesh != b.Mesh {
			return a.Mesh < b.Mesh
		}

		da, db := depths[order[x]], depths[order[y]]
		if da == db {
			return false // stable: keep submission order
		}
		if a.Flags.Transparent {
			return da > db
		}
		return da < db
	})

	sorted := make([]RenderObject, len(objects))
	for i, idx := range order {
		sorted[i] = objects[idx]
	}
	copy(objects, sorted)
}
