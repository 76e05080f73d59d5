package renderer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/df07/go-animated-raytracer/pkg/animation"
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/lights"
	"github.com/df07/go-animated-raytracer/pkg/material"
	"github.com/df07/go-animated-raytracer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIntegrator returns a fixed color and records the time of every ray
type MockIntegrator struct {
	returnColor core.Vec3

	mu    sync.Mutex
	times []float64
}

func (m *MockIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	m.mu.Lock()
	m.times = append(m.times, ray.Time)
	m.mu.Unlock()
	return m.returnColor
}

func (m *MockIntegrator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.times)
}

func smallScene(width, height int) *scene.Scene {
	s := scene.NewDefaultScene()
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = height
	return s
}

func TestRenderFrame_SamplesEveryPixel(t *testing.T) {
	s := smallScene(20, 10)
	s.SamplingConfig.SamplesPerPixel = 3
	s.SamplingConfig.MotionSamples = 2
	mock := &MockIntegrator{returnColor: core.NewVec3(0.25, 0.5, 0.75)}

	rt := NewRaytracer(s, mock, RenderOptions{TileSize: 8, NumWorkers: 3, Seed: 1}, nil)
	frame, err := rt.RenderFrame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20*10*3*2, mock.callCount())
	assert.Equal(t, 200, frame.Stats.TotalPixels)
	assert.Equal(t, 1200, frame.Stats.TotalSamples)
	assert.InDelta(t, 6, frame.Stats.AverageSamples, 1e-12)
	for i, p := range frame.Pixels {
		require.True(t, p.Equals(mock.returnColor, 1e-12), "pixel %d: %v", i, p)
	}
}

func TestRenderFrame_MotionSampleTimes(t *testing.T) {
	s := smallScene(1, 1)
	s.SamplingConfig.MotionSamples = 4
	s.MotionBlurIntensity = 1
	s.Clock = animation.NewClock(24).AtFrame(2)
	mock := &MockIntegrator{}

	rt := NewRaytracer(s, mock, DefaultRenderOptions(), nil)
	_, err := rt.RenderFrame(context.Background())
	require.NoError(t, err)

	times := append([]float64(nil), mock.times...)
	sort.Float64s(times)
	require.Len(t, times, 4)
	step := 1.0 / 24
	for m, got := range times {
		assert.InDelta(t, 2*step+float64(m)/4*step, got, 1e-12)
	}
}

func TestRenderFrame_NoMotionBlurUsesClockTime(t *testing.T) {
	s := smallScene(2, 2)
	s.SamplingConfig.MotionSamples = 3
	s.MotionBlurIntensity = 0
	s.Clock = animation.NewClock(10).AtFrame(5)
	mock := &MockIntegrator{}

	_, err := NewRaytracer(s, mock, DefaultRenderOptions(), nil).RenderFrame(context.Background())
	require.NoError(t, err)
	for _, got := range mock.times {
		assert.InDelta(t, 0.5, got, 1e-12)
	}
}

type nanIntegrator struct{}

func (nanIntegrator) RayColor(core.Ray, *scene.Scene, core.Sampler) core.Vec3 {
	return core.NewVec3(math.NaN(), 0, 0)
}

func TestRenderFrame_DropsNonFiniteSamples(t *testing.T) {
	s := smallScene(4, 4)
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	frame, err := NewRaytracer(s, nanIntegrator{}, DefaultRenderOptions(), logger).RenderFrame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 16, frame.Stats.InvalidSamples)
	assert.Equal(t, 0, frame.Stats.TotalSamples)
	for _, p := range frame.Pixels {
		assert.Equal(t, core.Vec3{}, p)
	}
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestRenderFrame_DeterministicAcrossWorkerCounts(t *testing.T) {
	s := smallScene(24, 16)
	s.SamplingConfig.SamplesPerPixel = 2
	s.Aperture = 0.1
	s.FocalDistance = 5
	s.AddLight(lights.NewDiskLight(core.NewVec3(0, 5, -4), core.NewVec3(1, 1, 1), 1, 1))

	render := func(workers int) *Frame {
		rt := NewRaytracer(s, nil, RenderOptions{TileSize: 8, NumWorkers: workers, Seed: 7}, nil)
		frame, err := rt.RenderFrame(context.Background())
		require.NoError(t, err)
		return frame
	}

	a := render(1)
	b := render(4)
	assert.Equal(t, a.Pixels, b.Pixels)
	for _, p := range a.Pixels {
		require.True(t, p.IsFinite())
	}
}

func TestRenderFrame_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt := NewRaytracer(smallScene(16, 16), nil, DefaultRenderOptions(), nil)
	frame, err := rt.RenderFrame(ctx)
	assert.Nil(t, frame)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderFrame_SphereVisible(t *testing.T) {
	s := scene.New()
	s.SamplingConfig.Width = 9
	s.SamplingConfig.Height = 9
	m := material.NewMaterial(core.NewVec3(1, 1, 1))
	m.Reflectivity = 1
	m.Metallic = 1
	m.Roughness = 1
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, m))
	s.BackgroundColor = core.NewVec3(1, 0, 0)

	frame, err := NewRaytracer(s, nil, DefaultRenderOptions(), nil).RenderFrame(context.Background())
	require.NoError(t, err)

	// Corners see the background; the center sees the mirror reflect straight back
	assert.True(t, frame.At(0, 0).Equals(s.BackgroundColor, 1e-9))
	center := frame.At(4, 4)
	assert.InDelta(t, 1, center.X, 1e-6)
}

func TestRenderAnimation_FramesInOrder(t *testing.T) {
	s := smallScene(4, 3)
	track := animation.NewTrack()
	track.AddKeyframe(animation.Keyframe{Time: 0, Position: core.NewVec3(0, 0, -5), Scale: core.NewVec3(1, 1, 1)})
	track.AddKeyframe(animation.Keyframe{Time: 1, Position: core.NewVec3(1, 0, -5), Scale: core.NewVec3(1, 1, 1)})
	s.SetSphereTrack(0, track)

	var indices []int
	var times []float64
	rt := NewRaytracer(s, nil, DefaultRenderOptions(), nil)
	err := rt.RenderAnimation(context.Background(), 3, func(frame *Frame) error {
		indices = append(indices, frame.Index)
		times = append(times, frame.Time)
		assert.Len(t, frame.Pixels, 12)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, indices)
	for i, tm := range times {
		assert.InDelta(t, float64(i)/24, tm, 1e-12)
	}
	assert.Equal(t, 0, s.Clock.Frame, "source scene clock is untouched")
}

func TestRenderAnimation_DefaultFrameCount(t *testing.T) {
	s := smallScene(2, 2)
	s.Clock = animation.NewClock(4)
	track := animation.NewTrack()
	track.AddKeyframe(animation.Keyframe{Time: 0, Position: core.NewVec3(0, 0, -5)})
	track.AddKeyframe(animation.Keyframe{Time: 1, Position: core.NewVec3(0, 1, -5)})
	s.SetSphereTrack(0, track)

	count := 0
	err := NewRaytracer(s, nil, DefaultRenderOptions(), nil).RenderAnimation(context.Background(), 0, func(*Frame) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRenderAnimation_CallbackErrorStops(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := NewRaytracer(smallScene(2, 2), nil, DefaultRenderOptions(), nil).RenderAnimation(context.Background(), 5, func(*Frame) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Printf("Pass %d done\n", 3)
	logger.Printf("Warning: %s", "careful")
	logger.Printf("\n")
	logger.Printf("Debug: hidden at info level")

	out := buf.String()
	assert.Contains(t, out, `msg="Pass 3 done"`)
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=careful")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}
