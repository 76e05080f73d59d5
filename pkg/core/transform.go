package core

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Transform is an affine 4x4 transform stored row-major (m[4*row+col]).
// The bottom row is always (0, 0, 0, 1).
type Transform struct {
	m f64.Mat4
}

// IdentityTransform returns the identity transform
func IdentityTransform() Transform {
	return Transform{m: f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// NewTransform composes translate * rotate * scale. Rotation is given as
// Euler angles in radians and applied X first, then Y, then Z.
func NewTransform(position, rotation, scale Vec3) Transform {
	cx, sx := math.Cos(rotation.X), math.Sin(rotation.X)
	cy, sy := math.Cos(rotation.Y), math.Sin(rotation.Y)
	cz, sz := math.Cos(rotation.Z), math.Sin(rotation.Z)

	// R = Rz * Ry * Rx
	r00 := cz * cy
	r01 := cz*sy*sx - sz*cx
	r02 := cz*sy*cx + sz*sx
	r10 := sz * cy
	r11 := sz*sy*sx + cz*cx
	r12 := sz*sy*cx - cz*sx
	r20 := -sy
	r21 := cy * sx
	r22 := cy * cx

	return Transform{m: f64.Mat4{
		r00 * scale.X, r01 * scale.Y, r02 * scale.Z, position.X,
		r10 * scale.X, r11 * scale.Y, r12 * scale.Z, position.Y,
		r20 * scale.X, r21 * scale.Y, r22 * scale.Z, position.Z,
		0, 0, 0, 1,
	}}
}

// Matrix returns the underlying row-major matrix
func (t Transform) Matrix() f64.Mat4 {
	return t.m
}

// Point applies the full transform to a position
func (t Transform) Point(p Vec3) Vec3 {
	m := &t.m
	return Vec3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// Vector applies the linear part of the transform to a direction
func (t Transform) Vector(v Vec3) Vec3 {
	m := &t.m
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// TransposeVector applies the transpose of the linear part to v.
// Calling it on an inverse transform maps local normals to world normals.
func (t Transform) TransposeVector(v Vec3) Vec3 {
	m := &t.m
	return Vec3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Inverse returns the inverse affine transform. ok is false when the linear
// part is singular (for example a zero scale axis).
func (t Transform) Inverse() (Transform, bool) {
	m := &t.m
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[4], m[5], m[6]
	g, h, i := m[8], m[9], m[10]

	c00 := e*i - f*h
	c01 := f*g - d*i
	c02 := d*h - e*g
	det := a*c00 + b*c01 + c*c02
	if math.Abs(det) < 1e-12 {
		return IdentityTransform(), false
	}
	inv := 1 / det

	// Inverse of the 3x3 block is the transposed cofactor matrix over det
	n00 := c00 * inv
	n01 := (c*h - b*i) * inv
	n02 := (b*f - c*e) * inv
	n10 := c01 * inv
	n11 := (a*i - c*g) * inv
	n12 := (c*d - a*f) * inv
	n20 := c02 * inv
	n21 := (b*g - a*h) * inv
	n22 := (a*e - b*d) * inv

	tx, ty, tz := m[3], m[7], m[11]
	return Transform{m: f64.Mat4{
		n00, n01, n02, -(n00*tx + n01*ty + n02*tz),
		n10, n11, n12, -(n10*tx + n11*ty + n12*tz),
		n20, n21, n22, -(n20*tx + n21*ty + n22*tz),
		0, 0, 0, 1,
	}}, true
}
