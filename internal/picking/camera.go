package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a center point and turns screen positions into
// picking rays.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // Radians above the horizon
	Yaw      float32 // Radians around +Y

	FovY      float32 // Vertical field of view, radians
	Near, Far float32

	MinPitch, MaxPitch float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance: 60,
		Pitch:    0.6,
		FovY:     mgl32.DegToRad(60),
		Near:     0.1,
		Far:      2000,
		MinPitch: 0.05,
		MaxPitch: 1.55,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := math.Cos(float64(c.Pitch)), math.Sin(float64(c.Pitch))
	cy, sy := math.Cos(float64(c.Yaw)), math.Sin(float64(c.Yaw))
	return c.Center.Add(mgl32.Vec3{
		c.Distance * float32(cp*sy),
		c.Distance * float32(sp),
		c.Distance * float32(cp*cy),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// Projection returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Orbit rotates the camera, keeping the pitch inside its limits.
func (c *OrbitCamera) Orbit(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, c.MinPitch, c.MaxPitch)
}

// FitToBounds centres the camera on a box and backs off until it is in view.
func (c *OrbitCamera) FitToBounds(box AABB) {
	c.Center = mgl32.Vec3{
		(box.Min[0] + box.Max[0]) / 2,
		(box.Min[1] + box.Max[1]) / 2,
		(box.Min[2] + box.Max[2]) / 2,
	}
	size := max(box.Max[0]-box.Min[0], box.Max[2]-box.Min[2])
	c.Distance = max(size, 1) / float32(math.Tan(float64(c.FovY)/2))
}

// ScreenRay returns the world ray under pixel (sx, sy) of a width x height
// viewport. Y grows downwards, as in window coordinates.
func (c *OrbitCamera) ScreenRay(sx, sy, width, height float32) Ray {
	vp := c.Projection(width / height).Mul4(c.ViewMatrix())
	return ScreenToRay(sx, sy, width, height, vp.Inv())
}

// ScreenToRay converts screen coordinates to a world-space ray given the
// inverse view-projection matrix.
func ScreenToRay(sx, sy, width, height float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*sx/width - 1
	ndcY := 1 - 2*sy/height

	near := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	if near[3] != 0 {
		near = near.Mul(1 / near[3])
	}
	if far[3] != 0 {
		far = far.Mul(1 / far[3])
	}

	return NewRay(near.Vec3(), far.Vec3().Sub(near.Vec3()))
}
