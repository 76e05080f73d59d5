package geometry

import (
	"math"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/material"
)

const (
	// sphereDirectionEpsilon rejects rays whose direction has (almost) no length
	sphereDirectionEpsilon = 1e-12
	// sphereDiscriminantEpsilon turns grazing, near-tangent rays into misses
	sphereDiscriminantEpsilon = 1e-9
	// polarBlendStart is |cos(theta)| above which v is blended toward the linear mapping
	polarBlendStart = 0.999
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) Sphere {
	return Sphere{Center: center, Radius: radius, Material: mat}
}

// Hit tests the ray against the sphere at its stored center and radius
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	return s.HitAt(ray, tMin, tMax, s.Center, s.Radius)
}

// HitAt tests the ray against the sphere as if it were placed at center with
// the given radius. The stored sphere is not modified.
func (s *Sphere) HitAt(ray core.Ray, tMin, tMax float64, center core.Vec3, radius float64) (HitRecord, bool) {
	if radius <= 0 {
		return HitRecord{}, false
	}

	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(center)

	// Quadratic equation coefficients: at² + 2*halfB*t + c = 0
	a := ray.Direction.Dot(ray.Direction)
	if a < sphereDirectionEpsilon {
		return HitRecord{}, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - a*c
	if discriminant < sphereDiscriminantEpsilon {
		return HitRecord{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return HitRecord{}, false
		}
	}

	point := ray.At(root)
	local := point.Subtract(center)
	return HitRecord{
		T:        root,
		Point:    point,
		Normal:   local.Multiply(1.0 / radius),
		UV:       SphereUV(local),
		Material: &s.Material,
		Kind:     KindSphere,
	}, true
}

// SphereUV maps a center-relative point to spherical texture coordinates.
// Near the poles v is blended toward (1-cos(theta))/2, which shares its end
// points with the angular mapping but has no singular derivative there.
func SphereUV(local core.Vec3) core.Vec2 {
	length := local.Length()
	if length < 1e-12 {
		return core.NewVec2(0.5, 0.5)
	}

	phi := math.Atan2(local.Z, local.X)
	u := (phi + math.Pi) / (2 * math.Pi)

	cosTheta := max(-1, min(1, local.Y/length))
	v := math.Acos(cosTheta) / math.Pi
	if abs := math.Abs(cosTheta); abs > polarBlendStart {
		w := (abs - polarBlendStart) / (1 - polarBlendStart)
		v = v*(1-w) + 0.5*(1-cosTheta)*w
	}
	return core.NewVec2(u, v)
}
