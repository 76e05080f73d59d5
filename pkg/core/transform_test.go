package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransform_Rotation(t *testing.T) {
	tests := []struct {
		name     string
		rotation Vec3
		input    Vec3
		expected Vec3
	}{
		{"no rotation", NewVec3(0, 0, 0), NewVec3(1, 0, 0), NewVec3(1, 0, 0)},
		{"90 degrees around Z", NewVec3(0, 0, math.Pi/2), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"90 degrees around Y", NewVec3(0, math.Pi/2, 0), NewVec3(1, 0, 0), NewVec3(0, 0, -1)},
		{"90 degrees around X", NewVec3(math.Pi/2, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"X applied before Z", NewVec3(math.Pi/2, 0, math.Pi/2), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransform(Vec3{}, tt.rotation, NewVec3(1, 1, 1))
			got := tr.Vector(tt.input)
			assert.True(t, got.Equals(tt.expected, 1e-12), "got %v", got)
		})
	}
}

func TestTransform_InverseRoundTrip(t *testing.T) {
	tr := NewTransform(NewVec3(1, -2, 3), NewVec3(0.3, 1.1, -0.7), NewVec3(2, 0.5, 1.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := NewVec3(0.25, 4, -1)
	assert.True(t, inv.Point(tr.Point(p)).Equals(p, 1e-9))
	assert.True(t, tr.Point(inv.Point(p)).Equals(p, 1e-9))
	assert.True(t, inv.Vector(tr.Vector(p)).Equals(p, 1e-9))
}

func TestTransform_InverseTransposeKeepsNormalsPerpendicular(t *testing.T) {
	tr := NewTransform(NewVec3(0, 1, 0), NewVec3(0.2, 0.4, 0.1), NewVec3(3, 1, 0.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	// plane z = 0 in local space
	tangent := NewVec3(1, 1, 0)
	normal := NewVec3(0, 0, 1)

	worldTangent := tr.Vector(tangent)
	worldNormal := inv.TransposeVector(normal)
	assert.InDelta(t, 0, worldTangent.Dot(worldNormal), 1e-9)
}

func TestTransform_SingularScale(t *testing.T) {
	tr := NewTransform(Vec3{}, Vec3{}, NewVec3(1, 0, 1))
	_, ok := tr.Inverse()
	assert.False(t, ok)
}

func TestTransform_Translation(t *testing.T) {
	tr := NewTransform(NewVec3(5, 0, 0), Vec3{}, NewVec3(1, 1, 1))
	assert.Equal(t, NewVec3(5, 0, 0), tr.Point(Vec3{}))
	assert.Equal(t, NewVec3(0, 1, 0), tr.Vector(NewVec3(0, 1, 0)))
	assert.Equal(t, float64(1), tr.Matrix()[15])
}
