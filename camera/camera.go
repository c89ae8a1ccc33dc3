// Package camera provides an orbit camera and perspective projection for the
// point cloud.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/particlemorph/config"
)

// nearPlane is the minimum view depth that still projects.
const nearPlane = 0.1

// maxPitch keeps the camera off the poles where the basis degenerates.
const maxPitch = math.Pi/2 - 0.01

var worldUp = r3.Vec{Y: 1}

// Camera orbits the world origin.
type Camera struct {
	// Orbit angles in radians. Yaw 0, pitch 0 looks down -Z from +Z.
	Yaw, Pitch float64

	// Distance from the origin
	Distance float64

	// Vertical field of view in degrees
	FOV float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinDistance, MaxDistance float64

	homeDistance float64
}

// New creates a camera on the +Z axis at the configured distance.
func New(viewportW, viewportH float64, cfg config.CameraConfig) *Camera {
	return &Camera{
		Distance:     cfg.Distance,
		FOV:          cfg.FOV,
		ViewportW:    viewportW,
		ViewportH:    viewportH,
		MinDistance:  cfg.MinDistance,
		MaxDistance:  cfg.MaxDistance,
		homeDistance: cfg.Distance,
	}
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() r3.Vec {
	cp := math.Cos(c.Pitch)
	return r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
}

// basis returns the camera right, up and forward unit vectors.
func (c *Camera) basis() (right, up, forward r3.Vec) {
	forward = r3.Unit(r3.Scale(-1, c.Eye()))
	right = r3.Unit(r3.Cross(forward, worldUp))
	up = r3.Cross(right, forward)
	return right, up, forward
}

// FocalLength returns the projection scale in pixels.
func (c *Camera) FocalLength() float64 {
	half := c.FOV * math.Pi / 360
	return c.ViewportH / 2 / math.Tan(half)
}

// Project converts a world point to screen coordinates. depth is the view
// space distance along the camera axis; ok is false for points at or behind
// the near plane.
func (c *Camera) Project(p r3.Vec) (sx, sy, depth float64, ok bool) {
	right, up, forward := c.basis()
	rel := r3.Sub(p, c.Eye())
	depth = r3.Dot(rel, forward)
	if depth <= nearPlane {
		return 0, 0, depth, false
	}
	f := c.FocalLength() / depth
	sx = c.ViewportW/2 + r3.Dot(rel, right)*f
	sy = c.ViewportH/2 - r3.Dot(rel, up)*f
	return sx, sy, depth, true
}

// Projector caches the camera basis for projecting many points in one frame.
type Projector struct {
	eye, right, up, forward r3.Vec
	focal, cx, cy          float64
}

// Projector snapshots the current camera state.
func (c *Camera) Projector() Projector {
	right, up, forward := c.basis()
	return Projector{
		eye:     c.Eye(),
		right:   right,
		up:      up,
		forward: forward,
		focal:   c.FocalLength(),
		cx:      c.ViewportW / 2,
		cy:      c.ViewportH / 2,
	}
}

// Project is Camera.Project against the snapshotted state.
func (pr *Projector) Project(p r3.Vec) (sx, sy, depth float64, ok bool) {
	rel := r3.Sub(p, pr.eye)
	depth = r3.Dot(rel, pr.forward)
	if depth <= nearPlane {
		return 0, 0, depth, false
	}
	f := pr.focal / depth
	return pr.cx + r3.Dot(rel, pr.right)*f, pr.cy - r3.Dot(rel, pr.up)*f, depth, true
}

// ScreenToPlane casts a ray through a screen position and intersects it with
// the z=0 world plane. ok is false when the ray misses the plane.
func (c *Camera) ScreenToPlane(sx, sy float64) (r3.Vec, bool) {
	right, up, forward := c.basis()
	f := c.FocalLength()
	dir := r3.Add(forward, r3.Add(
		r3.Scale((sx-c.ViewportW/2)/f, right),
		r3.Scale(-(sy-c.ViewportH/2)/f, up),
	))
	eye := c.Eye()
	if math.Abs(dir.Z) < 1e-12 {
		return r3.Vec{}, false
	}
	t := -eye.Z / dir.Z
	if t <= 0 {
		return r3.Vec{}, false
	}
	p := r3.Add(eye, r3.Scale(t, dir))
	p.Z = 0
	return p, true
}

// Orbit rotates the camera around the origin. Pitch is clamped short of the
// poles.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy moves the camera closer (negative) or further (positive).
func (c *Camera) ZoomBy(delta float64) {
	c.SetDistance(c.Distance + delta)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to the default orbit and distance.
func (c *Camera) Reset() {
	c.Yaw = 0
	c.Pitch = 0
	c.Distance = c.homeDistance
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
