package lodkit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func obj(mat MaterialHandle, mesh MeshHandle, z float32, transparent bool, tag float32) RenderObject {
	return RenderObject{
		Material: mat,
		Mesh:     mesh,
		Position: mgl32.Vec3{0, 0, z},
		Flags:    RenderFlags{Transparent: transparent},
		Params:   [4]float32{tag},
	}
}

func TestSortOpaqueBeforeTransparent(t *testing.T) {
	cam := CameraAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 60)
	objects := []RenderObject{
		obj("a", "m", 10, true, 0),
		obj("z", "m", 10, false, 1),
		obj("b", "m", 10, true, 2),
	}

	sortRenderObjects(objects, &cam)

	if objects[0].Flags.Transparent {
		t.Fatal("opaque objects must sort before transparent ones")
	}
	for _, o := range objects[1:] {
		if !o.Flags.Transparent {
			t.Fatal("transparent run interrupted by an opaque object")
		}
	}
}

func TestSortByMaterialThenMesh(t *testing.T) {
	cam := CameraAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 60)
	objects := []RenderObject{
		obj("b", "m2", 10, false, 0),
		obj("a", "m2", 10, false, 1),
		obj("b", "m1", 10, false, 2),
		obj("a", "m1", 10, false, 3),
	}

	sortRenderObjects(objects, &cam)

	want := []struct {
		mat  MaterialHandle
		mesh MeshHandle
	}{
		{"a", "m1"}, {"a", "m2"}, {"b", "m1"}, {"b", "m2"},
	}
	for i, w := range want {
		if objects[i].Material != w.mat || objects[i].Mesh != w.mesh {
			t.Errorf("slot %d = %s/%s, want %s/%s", i, objects[i].Material, objects[i].Mesh, w.mat, w.mesh)
		}
	}
}

func TestSortDepthDirections(t *testing.T) {
	cam := CameraAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 60)

	// Opaque: near first for early depth rejection.
	opaque := []RenderObject{
		obj("a", "m", 30, false, 0),
		obj("a", "m", 10, false, 1),
		obj("a", "m", 20, false, 2),
	}
	sortRenderObjects(opaque, &cam)
	for i := 1; i < len(opaque); i++ {
		if cam.DistanceTo(opaque[i].Position) < cam.DistanceTo(opaque[i-1].Position) {
			t.Fatal("opaque objects must sort front to back")
		}
	}

	// Transparent: far first for correct blending.
	transparent := []RenderObject{
		obj("a", "m", 10, true, 0),
		obj("a", "m", 30, true, 1),
		obj("a", "m", 20, true, 2),
	}
	sortRenderObjects(transparent, &cam)
	for i := 1; i < len(transparent); i++ {
		if cam.DistanceTo(transparent[i].Position) > cam.DistanceTo(transparent[i-1].Position) {
			t.Fatal("transparent objects must sort back to front")
		}
	}
}

func TestSortIsStable(t *testing.T) {
	cam := CameraAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 60)

	// Fully equal sort keys keep submission order.
	objects := make([]RenderObject, 6)
	for i := range objects {
		objects[i] = obj("a", "m", 10, false, float32(i))
	}
	sortRenderObjects(objects, &cam)

	for i := range objects {
		if objects[i].Params[0] != float32(i) {
			t.Fatalf("submission order broken at slot %d: tag %v", i, objects[i].Params[0])
		}
	}
}

func TestShaderVariantBits(t *testing.T) {
	o := RenderObject{}
	if shaderVariant(&o) != 0 {
		t.Error("flagless object must have variant 0")
	}

	o.Flags = RenderFlags{CastsShadow: true, ReceivesShadow: true, Transparent: true, DoubleSided: true}
	if got := shaderVariant(&o); got != 0b1111 {
		t.Errorf("all flags = %b, want 1111", got)
	}

	o.Flags = RenderFlags{Transparent: true}
	if got := shaderVariant(&o); got != 4 {
		t.Errorf("transparent bit = %d, want 4", got)
	}
}
