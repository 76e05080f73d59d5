// Package geometry implements ray intersection for spheres, triangles and meshes.
package geometry

import (
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/material"
)

// PrimitiveKind records which kind of primitive produced a hit
type PrimitiveKind int

const (
	KindSphere PrimitiveKind = iota
	KindMesh
)

// String returns a lower-case name for the kind
func (k PrimitiveKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// HitRecord contains information about a ray-primitive intersection.
// Normal is the geometric outward normal; Material points at the stored
// primitive's material and must not be modified.
type HitRecord struct {
	T        float64
	Point    core.Vec3
	Normal   core.Vec3
	UV       core.Vec2
	Material *material.Material
	Kind     PrimitiveKind
	Index    int
}

// Pose is the instantaneous placement of a primitive
type Pose struct {
	Position core.Vec3
	Rotation core.Vec3
	Scale    core.Vec3
}
