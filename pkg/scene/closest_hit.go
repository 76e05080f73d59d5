package scene

import (
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
)

// SpherePlacement returns the center and radius of sphere i for a ray sampled
// at time. An animated sphere takes its center from the track, extrapolated
// along the track velocity by MotionBlurIntensity*(time - clock time), and
// multiplies its radius by the keyframe's X scale when that is positive.
func (s *Scene) SpherePlacement(i int, time float64) (core.Vec3, float64) {
	sphere := &s.Spheres[i]
	track, ok := s.SphereTracks[i]
	if !ok || track == nil || track.Len() == 0 {
		return sphere.Center, sphere.Radius
	}

	kf := track.Interpolate(time)
	shift := s.MotionBlurIntensity * (time - s.Clock.CurrentTime)
	center := kf.Position.Add(kf.Velocity.Multiply(shift))
	radius := sphere.Radius
	if kf.Scale.X > 0 {
		radius *= kf.Scale.X
	}
	return center, radius
}

// MeshPose returns the placement of mesh i for a ray sampled at time. Track
// rotation replaces the stored rotation; a zero track scale keeps the stored
// scale.
func (s *Scene) MeshPose(i int, time float64) geometry.Pose {
	mesh := &s.Meshes[i]
	track, ok := s.MeshTracks[i]
	if !ok || track == nil || track.Len() == 0 {
		return mesh.Pose()
	}

	kf := track.Interpolate(time)
	shift := s.MotionBlurIntensity * (time - s.Clock.CurrentTime)
	pose := geometry.Pose{
		Position: kf.Position.Add(kf.Velocity.Multiply(shift)),
		Rotation: kf.Rotation,
		Scale:    kf.Scale,
	}
	if pose.Scale == (core.Vec3{}) {
		pose.Scale = mesh.Scale
	}
	return pose
}

// ClosestHit finds the nearest intersection along ray within [tMin, tMax]
// across all spheres and meshes at their poses for ray.Time. Spheres are
// scanned before meshes. Stored primitives are never modified.
func (s *Scene) ClosestHit(ray core.Ray, tMin, tMax float64) (geometry.HitRecord, bool) {
	var closest geometry.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for i := range s.Spheres {
		center, radius := s.SpherePlacement(i, ray.Time)
		if hit, ok := s.Spheres[i].HitAt(ray, tMin, closestSoFar, center, radius); ok {
			hit.Index = i
			closest = hit
			closestSoFar = hit.T
			hitAnything = true
		}
	}

	for i := range s.Meshes {
		pose := s.MeshPose(i, ray.Time)
		if hit, ok := s.Meshes[i].HitAt(ray, tMin, closestSoFar, pose); ok {
			hit.Index = i
			closest = hit
			closestSoFar = hit.T
			hitAnything = true
		}
	}

	return closest, hitAnything
}

// Occluded reports whether anything blocks ray strictly between tMin and maxDistance
func (s *Scene) Occluded(ray core.Ray, tMin, maxDistance float64) bool {
	if maxDistance <= tMin {
		return false
	}
	hit, ok := s.ClosestHit(ray, tMin, maxDistance)
	return ok && hit.T < maxDistance
}
