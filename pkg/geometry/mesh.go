package geometry

import (
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/material"
)

// Mesh is a triangle list placed in the world by a position, Euler rotation
// and per-axis scale. Triangles are stored in mesh-local space.
type Mesh struct {
	Triangles []Triangle
	Position  core.Vec3
	Rotation  core.Vec3
	Scale     core.Vec3
	Material  material.Material
}

// NewMesh creates an empty mesh at position with unit scale
func NewMesh(position core.Vec3, mat material.Material) Mesh {
	return Mesh{
		Position: position,
		Scale:    core.NewVec3(1, 1, 1),
		Material: mat,
	}
}

// NewCubeMesh creates an axis-aligned cube of the given edge length centered on position
func NewCubeMesh(position core.Vec3, size float64, mat material.Material) Mesh {
	m := NewMesh(position, mat)
	s := size / 2
	v := [8]core.Vec3{
		core.NewVec3(-s, -s, -s), // left bottom back
		core.NewVec3(s, -s, -s),  // right bottom back
		core.NewVec3(s, s, -s),   // right top back
		core.NewVec3(-s, s, -s),  // left top back
		core.NewVec3(-s, -s, s),  // left bottom front
		core.NewVec3(s, -s, s),   // right bottom front
		core.NewVec3(s, s, s),    // right top front
		core.NewVec3(-s, s, s),   // left top front
	}
	faces := [12][3]int{
		{4, 5, 6}, {4, 6, 7}, // front
		{1, 0, 2}, {2, 0, 3}, // back
		{5, 1, 6}, {6, 1, 2}, // right
		{0, 4, 3}, {3, 4, 7}, // left
		{3, 7, 2}, {2, 7, 6}, // top
		{4, 0, 5}, {5, 0, 1}, // bottom
	}
	for _, f := range faces {
		m.AddTriangle(v[f[0]], v[f[1]], v[f[2]])
	}
	return m
}

// AddTriangle appends a flat-shaded triangle in mesh-local coordinates
func (m *Mesh) AddTriangle(v0, v1, v2 core.Vec3) {
	m.Triangles = append(m.Triangles, NewTriangle(v0, v1, v2))
}

// SetSmoothShading assigns every vertex the normalized average of the face
// normals that share its position and enables normal blending
func (m *Mesh) SetSmoothShading() {
	sums := make(map[core.Vec3]core.Vec3)
	for _, tri := range m.Triangles {
		for _, p := range [3]core.Vec3{tri.V0, tri.V1, tri.V2} {
			sums[p] = sums[p].Add(tri.Normal)
		}
	}
	for i := range m.Triangles {
		tri := &m.Triangles[i]
		for j, p := range [3]core.Vec3{tri.V0, tri.V1, tri.V2} {
			n := sums[p].Normalize()
			if n.LengthSquared() == 0 {
				n = tri.Normal
			}
			tri.VertexNormals[j] = n
		}
		tri.Smooth = true
	}
}

// Pose returns the mesh's stored placement
func (m *Mesh) Pose() Pose {
	return Pose{Position: m.Position, Rotation: m.Rotation, Scale: m.Scale}
}

// Transform returns the local-to-world transform for a pose
func (p Pose) Transform() core.Transform {
	return core.NewTransform(p.Position, p.Rotation, p.Scale)
}

// Hit tests the ray against the mesh at its stored pose
func (m *Mesh) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	return m.HitAt(ray, tMin, tMax, m.Pose())
}

// HitAt tests the ray against the mesh placed at pose. The ray is carried
// into mesh-local space by the inverse transform without renormalizing, so
// local and world T agree. A pose with a degenerate scale never hits.
func (m *Mesh) HitAt(ray core.Ray, tMin, tMax float64, pose Pose) (HitRecord, bool) {
	toWorld := pose.Transform()
	toLocal, ok := toWorld.Inverse()
	if !ok {
		return HitRecord{}, false
	}

	local := core.Ray{
		Origin:    toLocal.Point(ray.Origin),
		Direction: toLocal.Vector(ray.Direction),
	}

	var best TriangleHit
	found := false
	closest := tMax
	for i := range m.Triangles {
		if h, hit := m.Triangles[i].Hit(local, tMin, closest); hit {
			best = h
			closest = h.T
			found = true
		}
	}
	if !found {
		return HitRecord{}, false
	}

	normal := toLocal.TransposeVector(best.Normal).Normalize()
	return HitRecord{
		T:        best.T,
		Point:    toWorld.Point(local.At(best.T)),
		Normal:   normal,
		UV:       core.NewVec2(best.U, best.V),
		Material: &m.Material,
		Kind:     KindMesh,
	}, true
}
