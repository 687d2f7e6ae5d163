package lodkit

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the read-only view the pipeline samples once per frame.
type Camera struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	FOV      float32 // vertical, degrees
}

// CameraAt builds a camera looking from pos toward target.
func CameraAt(pos, target mgl32.Vec3, fov float32) Camera {
	forward := target.Sub(pos)
	if forward.Len() > 0 {
		forward = forward.Normalize()
	} else {
		forward = mgl32.Vec3{0, 0, -1}
	}
	return Camera{Position: pos, Forward: forward, FOV: fov}
}

// DistanceTo returns the straight-line distance from the camera to p.
func (c *Camera) DistanceTo(p mgl32.Vec3) float32 {
	d := p.Sub(c.Position)
	return math32.Sqrt(d.X()*d.X() + d.Y()*d.Y() + d.Z()*d.Z())
}
