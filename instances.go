package lodkit

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f32"
)

// RenderInstance is the packed per-instance record uploaded alongside
// a batch. Matrices use the f32 row-major convention (m[4*r+c]); a
// backend expecting column-major uploads the transpose.
type RenderInstance struct {
	Transform    f32.Mat4
	NormalMatrix f32.Mat3
	Color        f32.Vec4
	Params       f32.Vec4
}

// newRenderInstance derives the instance record from the object's
// scene transform. The normal matrix is the true inverse-transpose of
// the world matrix's upper 3x3, correct under non-uniform scale and
// shear; for a singular transform it falls back to the plain upper
// 3x3.
func newRenderInstance(o *RenderObject) RenderInstance {
	scale := o.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := o.Rotation
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}

	world := mgl32.Translate3D(o.Position.X(), o.Position.Y(), o.Position.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))

	color := o.Color
	if color == ([4]float32{}) {
		color = [4]float32{1, 1, 1, 1}
	}

	upper := world.Mat3()
	normal := upper.Inv()
	if normal == (mgl32.Mat3{}) {
		normal = upper
	} else {
		normal = normal.Transpose()
	}

	return RenderInstance{
		Transform:    packMat4(world),
		NormalMatrix: packMat3(normal),
		Color:        f32.Vec4{color[0], color[1], color[2], color[3]},
		Params:       f32.Vec4{o.Params[0], o.Params[1], o.Params[2], o.Params[3]},
	}
}

// packMat4 converts mgl32's column-major layout into f32's row-major
// one.
func packMat4(m mgl32.Mat4) f32.Mat4 {
	var out f32.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[4*r+c] = m.At(r, c)
		}
	}
	return out
}

func packMat3(m mgl32.Mat3) f32.Mat3 {
	var out f32.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[3*r+c] = m.At(r, c)
		}
	}
	return out
}
