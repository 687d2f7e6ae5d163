package lodkit

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestAABBDistance(t *testing.T) {
	box := NewAABB(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{1, 1, 1})

	// Point inside: distance zero.
	if got := box.DistanceTo(mgl32.Vec3{0.5, 0, 10}); got != 0 {
		t.Errorf("inside distance = %v, want 0", got)
	}
	// Straight ahead of a face.
	if got := box.DistanceTo(mgl32.Vec3{0, 0, 0}); math32.Abs(got-9) > 1e-5 {
		t.Errorf("face distance = %v, want 9", got)
	}
	// Off a corner: Euclidean to the nearest vertex.
	want := math32.Sqrt(3)
	if got := box.DistanceTo(mgl32.Vec3{2, 2, 12}); math32.Abs(got-want) > 1e-5 {
		t.Errorf("corner distance = %v, want %v", got, want)
	}
}

func TestAABBNegativeHalfExtents(t *testing.T) {
	// Mirrored scales must not invert the box.
	box := NewAABB(mgl32.Vec3{}, mgl32.Vec3{-2, 1, -1})
	if box.Min.X() != -2 || box.Max.X() != 2 {
		t.Errorf("negative extent not absorbed: min %v max %v", box.Min, box.Max)
	}
	if got := box.Size(); got != (mgl32.Vec3{4, 2, 2}) {
		t.Errorf("size = %v, want {4 2 2}", got)
	}
}

func TestAABBCenterAndTranslate(t *testing.T) {
	box := NewAABB(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1})
	if got := box.Center(); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("center = %v", got)
	}

	moved := box.Translated(mgl32.Vec3{10, 0, 0})
	if got := moved.Center(); got != (mgl32.Vec3{11, 2, 3}) {
		t.Errorf("translated center = %v", got)
	}
}

func TestCameraAt(t *testing.T) {
	cam := CameraAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, 60)
	if got := cam.Forward; got != (mgl32.Vec3{0, 0, -1}) {
		t.Errorf("forward = %v, want -z", got)
	}
	if got := cam.DistanceTo(mgl32.Vec3{0, 0, 0}); math32.Abs(got-5) > 1e-5 {
		t.Errorf("distance = %v, want 5", got)
	}

	// Degenerate look-at keeps a usable forward.
	same := CameraAt(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, 60)
	if same.Forward.Len() == 0 {
		t.Error("degenerate camera must still have a forward vector")
	}
}
