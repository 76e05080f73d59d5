package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleUniformDisk maps a sample pair to a point on a disk of the given
// radius in the XY plane, r = radius*sqrt(u1) and theta = 2*pi*u2.
func SampleUniformDisk(sample Vec2, radius float64) Vec2 {
	r := radius * math.Sqrt(sample.X)
	theta := 2 * math.Pi * sample.Y
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// RadicalInverse mirrors the bits of i around the binary point (base-2 van der Corput)
func RadicalInverse(i uint32) float64 {
	bits := i
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float64(bits) * 2.3283064365386963e-10 // 1 / 2^32
}

// Hammersley returns the i-th point of an n-point Hammersley set in [0,1)^2
func Hammersley(i, n int) Vec2 {
	if n <= 0 {
		return Vec2{}
	}
	return NewVec2(float64(i)/float64(n), RadicalInverse(uint32(i)))
}

// Rotate applies a Cranley-Patterson rotation, shifting the point by offset modulo 1
func (v Vec2) Rotate(offset Vec2) Vec2 {
	x := v.X + offset.X
	y := v.Y + offset.Y
	return NewVec2(x-math.Floor(x), y-math.Floor(y))
}

// OrthonormalBasis builds two unit vectors perpendicular to w and to each other
func OrthonormalBasis(w Vec3) (Vec3, Vec3) {
	w = w.Normalize()
	var a Vec3
	if math.Abs(w.X) > 0.9 {
		a = NewVec3(0, 1, 0)
	} else {
		a = NewVec3(1, 0, 0)
	}
	u := a.Cross(w).Normalize()
	v := w.Cross(u)
	return u, v
}
