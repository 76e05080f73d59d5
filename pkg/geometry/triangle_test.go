package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitTriangle() Triangle {
	return NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	)
}

func TestTriangle_Hit(t *testing.T) {
	tri := unitTriangle()

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		hit       bool
		t         float64
	}{
		{"front face", core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1), true, 1},
		{"back face", core.NewVec3(0.25, 0.25, -2), core.NewVec3(0, 0, 1), true, 2},
		{"outside edge", core.NewVec3(0.8, 0.8, 1), core.NewVec3(0, 0, -1), false, 0},
		{"negative barycentric", core.NewVec3(-0.1, 0.5, 1), core.NewVec3(0, 0, -1), false, 0},
		{"parallel", core.NewVec3(0.25, 0.25, 1), core.NewVec3(1, 0, 0), false, 0},
		{"behind ray", core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, 1), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := tri.Hit(core.NewRay(tt.origin, tt.direction), 0.001, math.Inf(1))
			require.Equal(t, tt.hit, ok)
			if ok {
				assert.InDelta(t, tt.t, hit.T, 1e-12)
				assert.InDelta(t, 0.25, hit.U, 1e-12)
				assert.InDelta(t, 0.25, hit.V, 1e-12)
				assert.Equal(t, core.NewVec3(0, 0, 1), hit.Normal)
			}
		})
	}
}

func TestTriangle_HitRespectsRange(t *testing.T) {
	tri := unitTriangle()
	ray := core.NewRay(core.NewVec3(0.2, 0.2, 5), core.NewVec3(0, 0, -1))

	_, ok := tri.Hit(ray, 0.001, 4.9)
	assert.False(t, ok)
	_, ok = tri.Hit(ray, 5.1, 10)
	assert.False(t, ok)
}

func TestTriangle_SmoothNormal(t *testing.T) {
	n0 := core.NewVec3(-1, 0, 1)
	n1 := core.NewVec3(1, 0, 1)
	n2 := core.NewVec3(0, 1, 1)
	tri := NewSmoothTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		n0, n1, n2,
	)

	// At a vertex only that vertex's normal contributes
	assert.True(t, tri.shadingNormal(0, 0).Equals(n0.Normalize(), 1e-12))
	assert.True(t, tri.shadingNormal(1, 0).Equals(n1.Normalize(), 1e-12))
	assert.True(t, tri.shadingNormal(0, 1).Equals(n2.Normalize(), 1e-12))

	hit, ok := tri.Hit(core.NewRay(core.NewVec3(0.3, 0.3, 1), core.NewVec3(0, 0, -1)), 0.001, 10)
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.Normal.Length(), 1e-12)
	assert.Greater(t, hit.Normal.Z, 0.0)

	flat := unitTriangle()
	assert.Equal(t, flat.Normal, flat.shadingNormal(0.3, 0.3))
}

func TestTriangle_SmoothNormalFallsBack(t *testing.T) {
	// Opposing vertex normals cancel halfway along the first edge
	tri := NewSmoothTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0.5, math.Sqrt(3)/2, 0),
		core.NewVec3(0, 0, 1),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 0, 0),
	)
	n := tri.shadingNormal(0.5, 0)
	assert.Equal(t, tri.Normal, n)
}
