package geometry

import (
	"github.com/df07/go-animated-raytracer/pkg/core"
)

// triangleEpsilon bounds the determinant below which a ray is treated as parallel
const triangleEpsilon = 1e-8

// Triangle is a single mesh face. VertexNormals are only used when Smooth is set.
type Triangle struct {
	V0, V1, V2    core.Vec3
	Normal        core.Vec3
	VertexNormals [3]core.Vec3
	Smooth        bool
}

// TriangleHit is the result of a ray-triangle test
type TriangleHit struct {
	T      float64
	U, V   float64
	Normal core.Vec3
}

// NewTriangle creates a flat-shaded triangle with a counter-clockwise face normal
func NewTriangle(v0, v1, v2 core.Vec3) Triangle {
	normal := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	return Triangle{
		V0:            v0,
		V1:            v1,
		V2:            v2,
		Normal:        normal,
		VertexNormals: [3]core.Vec3{normal, normal, normal},
	}
}

// NewSmoothTriangle creates a triangle that blends the given vertex normals
func NewSmoothTriangle(v0, v1, v2, n0, n1, n2 core.Vec3) Triangle {
	t := NewTriangle(v0, v1, v2)
	t.VertexNormals = [3]core.Vec3{n0.Normalize(), n1.Normalize(), n2.Normalize()}
	t.Smooth = true
	return t
}

// Hit tests if a ray intersects the triangle using the Möller-Trumbore
// algorithm. Both faces are hit. The ray direction need not be unit length;
// T is measured in multiples of it.
func (tri *Triangle) Hit(ray core.Ray, tMin, tMax float64) (TriangleHit, bool) {
	edge1 := tri.V1.Subtract(tri.V0)
	edge2 := tri.V2.Subtract(tri.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -triangleEpsilon && a < triangleEpsilon {
		return TriangleHit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(tri.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return TriangleHit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return TriangleHit{}, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return TriangleHit{}, false
	}

	return TriangleHit{T: t, U: u, V: v, Normal: tri.shadingNormal(u, v)}, true
}

// shadingNormal blends vertex normals with barycentric weights scaled by the
// total length of the edges meeting at each vertex
func (tri *Triangle) shadingNormal(u, v float64) core.Vec3 {
	if !tri.Smooth {
		return tri.Normal
	}

	l01 := tri.V1.Subtract(tri.V0).Length()
	l12 := tri.V2.Subtract(tri.V1).Length()
	l20 := tri.V0.Subtract(tri.V2).Length()

	w0 := (1 - u - v) * (l01 + l20)
	w1 := u * (l01 + l12)
	w2 := v * (l12 + l20)
	sum := w0 + w1 + w2
	if sum <= 0 {
		return tri.Normal
	}

	n := tri.VertexNormals[0].Multiply(w0 / sum).
		Add(tri.VertexNormals[1].Multiply(w1 / sum)).
		Add(tri.VertexNormals[2].Multiply(w2 / sum)).
		Normalize()
	if n.LengthSquared() == 0 {
		return tri.Normal
	}
	return n
}
