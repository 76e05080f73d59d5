package renderer

import (
	"testing"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestPixelStats_Average(t *testing.T) {
	var ps PixelStats
	assert.Equal(t, core.Vec3{}, ps.GetColor())

	ps.AddSample(core.NewVec3(1, 0, 0))
	ps.AddSample(core.NewVec3(0, 1, 0.5))
	assert.Equal(t, 2, ps.SampleCount)
	assert.True(t, ps.GetColor().Equals(core.NewVec3(0.5, 0.5, 0.25), 1e-12))
}

func TestRenderStats_Merge(t *testing.T) {
	stats := RenderStats{TotalPixels: 4, TotalSamples: 16, InvalidSamples: 1}
	stats.Merge(RenderStats{TotalPixels: 2, TotalSamples: 4})
	stats.finalize()

	assert.Equal(t, 6, stats.TotalPixels)
	assert.Equal(t, 20, stats.TotalSamples)
	assert.Equal(t, 1, stats.InvalidSamples)
	assert.InDelta(t, 20.0/6.0, stats.AverageSamples, 1e-12)
}

func TestFrame_AverageLuminance(t *testing.T) {
	frame := NewFrame(2, 2)
	frame.Set(0, 0, core.NewVec3(1, 1, 1))
	frame.Set(1, 1, core.NewVec3(1, 1, 1))

	assert.InDelta(t, 0.5, frame.AverageLuminance(), 1e-12)
	assert.Equal(t, core.NewVec3(1, 1, 1), frame.At(1, 1))
	assert.Equal(t, 0.0, NewFrame(0, 0).AverageLuminance())
}
