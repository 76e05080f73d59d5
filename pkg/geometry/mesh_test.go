package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCubeMesh(t *testing.T) {
	cube := NewCubeMesh(core.Vec3{}, 2, testMaterial())
	require.Len(t, cube.Triangles, 12)

	// every face normal points away from the center
	for _, tri := range cube.Triangles {
		centroid := tri.V0.Add(tri.V1).Add(tri.V2).Multiply(1.0 / 3)
		assert.Greater(t, tri.Normal.Dot(centroid), 0.0)
	}
}

func TestMesh_HitAtPose(t *testing.T) {
	cube := NewCubeMesh(core.Vec3{}, 2, testMaterial())

	tests := []struct {
		name      string
		pose      Pose
		origin    core.Vec3
		direction core.Vec3
		expectedT float64
		normal    core.Vec3
	}{
		{
			name:      "identity",
			pose:      cube.Pose(),
			origin:    core.NewVec3(0.3, -0.2, 5),
			direction: core.NewVec3(0, 0, -1),
			expectedT: 4,
			normal:    core.NewVec3(0, 0, 1),
		},
		{
			name:      "translated",
			pose:      Pose{Position: core.NewVec3(3, 0, 0), Scale: core.NewVec3(1, 1, 1)},
			origin:    core.NewVec3(3.3, -0.2, 5),
			direction: core.NewVec3(0, 0, -1),
			expectedT: 4,
			normal:    core.NewVec3(0, 0, 1),
		},
		{
			name:      "scaled along z",
			pose:      Pose{Scale: core.NewVec3(1, 1, 3)},
			origin:    core.NewVec3(0.3, -0.2, 5),
			direction: core.NewVec3(0, 0, -1),
			expectedT: 2,
			normal:    core.NewVec3(0, 0, 1),
		},
		{
			name:      "rotated 45 degrees about y",
			pose:      Pose{Rotation: core.NewVec3(0, math.Pi/4, 0), Scale: core.NewVec3(1, 1, 1)},
			origin:    core.NewVec3(0.1, 0.2, 5),
			direction: core.NewVec3(0, 0, -1),
			expectedT: 5.1 - math.Sqrt2,
			normal:    core.NewVec3(math.Sqrt2/2, 0, math.Sqrt2/2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.origin, tt.direction)
			hit, ok := cube.HitAt(ray, 0.001, math.Inf(1), tt.pose)
			require.True(t, ok)
			assert.InDelta(t, tt.expectedT, hit.T, 1e-9)
			assert.True(t, hit.Point.Equals(ray.At(hit.T), 1e-9))
			assert.InDelta(t, 1.0, hit.Normal.Length(), 1e-9)
			assert.True(t, hit.Normal.Equals(tt.normal, 1e-9), "normal %v", hit.Normal)
			assert.Equal(t, KindMesh, hit.Kind)
			assert.Same(t, &cube.Material, hit.Material)
		})
	}
}

func TestMesh_NonUniformScaleNormal(t *testing.T) {
	// A tilted face under non-uniform scale needs the inverse transpose
	mesh := NewMesh(core.Vec3{}, testMaterial())
	mesh.AddTriangle(core.NewVec3(-5, -5, 5), core.NewVec3(5, -5, -5), core.NewVec3(0, 5, 0))
	pose := Pose{Scale: core.NewVec3(2, 1, 1)}

	ray := core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1))
	hit, ok := mesh.HitAt(ray, 0.001, math.Inf(1), pose)
	require.True(t, ok)

	// World-space edge of the scaled triangle must be perpendicular to the normal
	edge := core.NewVec3(10, 0, -10).MultiplyVec(core.NewVec3(2, 1, 1))
	assert.InDelta(t, 0, edge.Dot(hit.Normal), 1e-9)
}

func TestMesh_DegenerateScaleMisses(t *testing.T) {
	cube := NewCubeMesh(core.Vec3{}, 2, testMaterial())
	_, ok := cube.HitAt(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0.001, 100, Pose{})
	assert.False(t, ok)
}

func TestMesh_SetSmoothShading(t *testing.T) {
	cube := NewCubeMesh(core.Vec3{}, 2, testMaterial())
	cube.SetSmoothShading()

	for _, tri := range cube.Triangles {
		assert.True(t, tri.Smooth)
		for j, v := range [3]core.Vec3{tri.V0, tri.V1, tri.V2} {
			n := tri.VertexNormals[j]
			assert.InDelta(t, 1.0, n.Length(), 1e-12)
			// corner normals point outward along the diagonal octant
			assert.Greater(t, n.Dot(v), 0.0)
		}
	}
}
