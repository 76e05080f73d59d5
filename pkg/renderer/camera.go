package renderer

import (
	"math"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// Camera generates primary rays from a viewport placed one unit in front of
// the eye. Lens effects are applied later by the integrator.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	forward         core.Vec3
}

// NewCamera creates a look-at camera for an image with the given aspect ratio
func NewCamera(config scene.CameraConfig, aspectRatio float64) *Camera {
	if aspectRatio <= 0 || math.IsNaN(aspectRatio) {
		aspectRatio = 1
	}
	vfov := config.VFov
	if vfov <= 0 || vfov >= 180 {
		vfov = 90
	}

	viewportHeight := 2.0 * math.Tan(vfov*math.Pi/360)
	viewportWidth := aspectRatio * viewportHeight

	w := config.Center.Subtract(config.LookAt).Normalize()
	if w.LengthSquared() == 0 {
		w = core.NewVec3(0, 0, 1)
	}
	up := config.Up
	if up.Cross(w).LengthSquared() < 1e-12 {
		// up is parallel to the view direction; pick any perpendicular axis
		up, _ = core.OrthonormalBasis(w)
	}
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		forward:         w.Negate(),
	}
}

// GetRay generates a ray for viewport coordinates (s, t) where 0 <= s,t <= 1
// and (0, 0) is the lower-left corner
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.forward
}
