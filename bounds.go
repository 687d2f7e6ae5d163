package lodkit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB builds a box around center. Negative half extents are
// treated as their absolute value so mirrored scales don't invert the
// box.
func NewAABB(center, halfExtents mgl32.Vec3) AABB {
	he := mgl32.Vec3{
		math32.Abs(halfExtents.X()),
		math32.Abs(halfExtents.Y()),
		math32.Abs(halfExtents.Z()),
	}
	return AABB{
		Min: center.Sub(he),
		Max: center.Add(he),
	}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// ClosestPoint clamps p into the box.
func (b AABB) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		clamp32(p.X(), b.Min.X(), b.Max.X()),
		clamp32(p.Y(), b.Min.Y(), b.Max.Y()),
		clamp32(p.Z(), b.Min.Z(), b.Max.Z()),
	}
}

// DistanceTo returns the distance from p to the surface of the box,
// zero if p is inside.
func (b AABB) DistanceTo(p mgl32.Vec3) float32 {
	d := p.Sub(b.ClosestPoint(p))
	return math32.Sqrt(d.X()*d.X() + d.Y()*d.Y() + d.Z()*d.Z())
}

// Translated returns the box shifted by offset.
func (b AABB) Translated(offset mgl32.Vec3) AABB {
	return AABB{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
