package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = core.NewVec3(1, 1, 1)

func TestPointLight_AlwaysSamplesPosition(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 5, -2), white, 2)
	assert.False(t, light.IsArea())
	for _, s := range []core.Vec2{{}, core.NewVec2(0.9, 0.1), core.NewVec2(0.5, 0.99)} {
		assert.Equal(t, light.Position, light.SamplePosition(s))
	}
}

func TestDiskLight_SamplesStayOnDisk(t *testing.T) {
	light := NewDiskLight(core.NewVec3(0, 4, 0), white, 1, 0.5)
	require.True(t, light.IsArea())

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		p := light.SamplePosition(core.NewVec2(r.Float64(), r.Float64()))
		assert.Equal(t, 4.0, p.Y, "disk lies in the XZ plane")
		assert.LessOrEqual(t, math.Hypot(p.X, p.Z), 0.5+1e-12)
	}
	assert.Equal(t, light.Position, light.SamplePosition(core.NewVec2(0, 0.3)))
}

func TestRectangleLight_Corners(t *testing.T) {
	light := NewRectangleLight(core.NewVec3(0, 3, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 1), white, 1)
	require.True(t, light.IsArea())

	assert.Equal(t, core.NewVec3(-1, 3, -0.5), light.SamplePosition(core.NewVec2(0, 0)))
	assert.Equal(t, core.NewVec3(0, 3, 0), light.SamplePosition(core.NewVec2(0.5, 0.5)))
	assert.Equal(t, core.NewVec3(1, 3, 0.5), light.SamplePosition(core.NewVec2(1, 1)))
}

func TestLight_Sample(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 10, 0), white, 1)
	s := light.Sample(core.NewVec3(0, 2, 0), core.Vec2{})
	assert.Equal(t, 8.0, s.Distance)
	assert.Equal(t, core.NewVec3(0, 1, 0), s.Direction)

	same := light.Sample(light.Position, core.Vec2{})
	assert.Equal(t, 0.0, same.Distance)
	assert.True(t, same.Direction.IsFinite())
}

func TestParseLightShape(t *testing.T) {
	tests := map[string]LightShape{
		"point":       ShapePoint,
		"area":        ShapeDisk,
		"Disk":        ShapeDisk,
		"rectangular": ShapeRectangle,
	}
	for name, expected := range tests {
		got, err := ParseLightShape(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, got, name)
	}

	_, err := ParseLightShape("spot")
	assert.Error(t, err)
	assert.Equal(t, "rectangle", ShapeRectangle.String())
}
