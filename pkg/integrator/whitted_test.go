package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/lights"
	"github.com/df07/go-animated-raytracer/pkg/material"
	"github.com/df07/go-animated-raytracer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func assertColorNear(t *testing.T, expected, actual core.Vec3, tolerance float64) {
	t.Helper()
	assert.True(t, expected.Equals(actual, tolerance), "expected %v, got %v", expected, actual)
}

func matteWhite() material.Material {
	m := material.NewMaterial(core.NewVec3(1, 1, 1))
	m.Glossiness = 0
	return m
}

func TestTrace_DepthZeroIsBlack(t *testing.T) {
	s := scene.NewDefaultScene()
	s.BackgroundColor = core.NewVec3(1, 1, 1)
	w := NewWhittedIntegrator(DefaultConfig())
	sampler := newSampler(1)

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0)),
		core.NewRay(core.NewVec3(5, 5, 5), core.NewVec3(-1, -1, -1)),
	}
	for _, ray := range rays {
		assert.Equal(t, core.Vec3{}, w.Trace(s, ray, 0, true, sampler))
		assert.Equal(t, core.Vec3{}, w.Trace(s, ray, 0, false, sampler))
		assert.Equal(t, core.Vec3{}, w.Trace(s, ray, -3, false, sampler))
	}
}

func TestTrace_PointLightAboveApex(t *testing.T) {
	s := scene.New()
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, matteWhite()))
	light := lights.NewPointLight(core.NewVec3(0, 10, -5), core.NewVec3(1, 1, 1), 0.8)
	s.AddLight(light)

	w := NewWhittedIntegrator(DefaultConfig())
	ray := core.NewRay(core.NewVec3(0, 5, -5), core.NewVec3(0, -1, 0))

	color := w.RayColor(ray, s, newSampler(2))
	assertColorNear(t, light.Color.Multiply(light.Intensity), color, 1e-9)
}

func TestTrace_ColoredLightModulatesSurface(t *testing.T) {
	s := scene.New()
	m := material.NewMaterial(core.NewVec3(0.5, 1, 0.25))
	m.Glossiness = 0
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, m))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 10, -5), core.NewVec3(1, 0.5, 1), 2))

	w := NewWhittedIntegrator(Config{MaxDepth: 5, DispersionOffset: 0})
	color := w.RayColor(core.NewRay(core.NewVec3(0, 5, -5), core.NewVec3(0, -1, 0)), s, newSampler(3))
	assertColorNear(t, core.NewVec3(1, 1, 0.5), color, 1e-9)
}

func TestTrace_SpecularHighlight(t *testing.T) {
	s := scene.New()
	m := matteWhite()
	m.Glossiness = 0.5
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, m))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 10, -5), core.NewVec3(1, 1, 1), 1))

	w := NewWhittedIntegrator(Config{MaxDepth: 5})
	// Viewing straight down the reflected light direction gives the full gloss term
	color := w.RayColor(core.NewRay(core.NewVec3(0, 5, -5), core.NewVec3(0, -1, 0)), s, newSampler(4))
	assertColorNear(t, core.NewVec3(1.5, 1.5, 1.5), color, 1e-9)
}

func TestTrace_MirrorReturnsBackground(t *testing.T) {
	s := scene.New()
	s.BackgroundColor = core.NewVec3(0.3, 0.5, 0.7)
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewMirror(core.NewVec3(1, 1, 1))))

	w := NewWhittedIntegrator(DefaultConfig())
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	assertColorNear(t, s.BackgroundColor, w.Trace(s, ray, 2, false, newSampler(5)), 1e-12)
	assertColorNear(t, core.Vec3{}, w.Trace(s, ray, 1, false, newSampler(5)), 0)
	assertColorNear(t, s.BackgroundColor, w.RayColor(ray, s, newSampler(5)), 1e-12)
}

func TestTrace_ShadowedPointIsDark(t *testing.T) {
	build := func(withBlocker bool) *scene.Scene {
		s := scene.New()
		s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, matteWhite()))
		if withBlocker {
			s.AddSphere(geometry.NewSphere(core.NewVec3(0, 5, -5), 1, matteWhite()))
		}
		s.AddLight(lights.NewPointLight(core.NewVec3(0, 10, -5), core.NewVec3(1, 1, 1), 1))
		return s
	}

	target := core.NewVec3(0, math.Sqrt2/2, -5+math.Sqrt2/2)
	origin := core.NewVec3(0, 3, 0)
	ray := core.NewRay(origin, target.Subtract(origin))
	w := NewWhittedIntegrator(Config{MaxDepth: 5})

	lit := w.RayColor(ray, build(false), newSampler(6))
	shadowed := w.RayColor(ray, build(true), newSampler(6))

	assert.Greater(t, lit.X, 0.1)
	assertColorNear(t, core.Vec3{}, shadowed, 1e-12)
}

func TestTrace_LightBehindSurfaceGivesNoHighlight(t *testing.T) {
	build := func(lightY float64) *scene.Scene {
		s := scene.New()
		m := matteWhite()
		m.Glossiness = 1
		floor := geometry.NewMesh(core.Vec3{}, m)
		floor.AddTriangle(core.NewVec3(-20, 0, -25), core.NewVec3(20, 0, -25), core.NewVec3(0, 0, 15))
		s.AddMesh(floor)
		s.AddLight(lights.NewPointLight(core.NewVec3(8, lightY, -5), core.NewVec3(1, 1, 1), 1))
		return s
	}

	// Grazing view whose mirror direction lines up with the light on either side of the floor
	origin := core.NewVec3(-8, 1, -5)
	ray := core.NewRay(origin, core.NewVec3(0, 0, -5).Subtract(origin))
	w := NewWhittedIntegrator(Config{MaxDepth: 1})

	above := w.RayColor(ray, build(1), newSampler(8))
	below := w.RayColor(ray, build(-1), newSampler(8))

	assert.Greater(t, above.X, 0.5)
	assertColorNear(t, core.Vec3{}, below, 1e-12)
}

func TestTrace_AreaLightSoftShadow(t *testing.T) {
	s := scene.New()
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, matteWhite()))
	// blocker covers roughly half of the disk light as seen from the apex
	s.AddSphere(geometry.NewSphere(core.NewVec3(-1, 5, -5), 1, matteWhite()))
	s.AddLight(lights.NewDiskLight(core.NewVec3(0, 9, -5), core.NewVec3(1, 1, 1), 1, 2))

	w := NewWhittedIntegrator(Config{MaxDepth: 5, ShadowSamples: 16})
	ray := core.NewRay(core.NewVec3(0, 3, -5), core.NewVec3(0, -1, 0))
	color := w.RayColor(ray, s, newSampler(7))

	require.True(t, color.IsFinite())
	assert.Greater(t, color.X, 0.05)
	assert.Less(t, color.X, 0.95)
}

func TestTrace_EnvironmentOnMiss(t *testing.T) {
	s := scene.New()
	s.Environment = material.NewSkyTexture(16, 8, core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 1), core.NewVec3(0, 1, 0))
	w := NewWhittedIntegrator(DefaultConfig())

	up := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))
	assertColorNear(t, s.Environment.SampleEquirect(up.Direction), w.RayColor(up, s, newSampler(8)), 1e-12)

	down := core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0))
	assertColorNear(t, core.NewVec3(0, 1, 0), w.RayColor(down, s, newSampler(8)), 1e-9)
}

func TestApplyDepthOfField(t *testing.T) {
	s := scene.New()
	ray := core.NewRayAt(core.NewVec3(0, 0, 1), core.NewVec3(0.2, -0.1, -1), 0.75)
	sampler := newSampler(9)

	s.Aperture = 0
	s.FocalDistance = 4
	for i := 0; i < 10; i++ {
		assert.Equal(t, ray, ApplyDepthOfField(s, ray, sampler))
	}

	s.Aperture = 1e-9
	assert.Equal(t, ray, ApplyDepthOfField(s, ray, sampler))

	s.Aperture = 0.5
	focus := ray.At(s.FocalDistance)
	for i := 0; i < 200; i++ {
		jittered := ApplyDepthOfField(s, ray, sampler)
		offset := jittered.Origin.Subtract(ray.Origin)
		assert.LessOrEqual(t, offset.Length(), s.Aperture+1e-12)
		assert.InDelta(t, 0, offset.Dot(ray.Direction), 1e-12, "lens lies across the ray")

		distance := focus.Subtract(jittered.Origin).Length()
		assertColorNear(t, focus, jittered.At(distance), 1e-9)
		assert.Equal(t, ray.Time, jittered.Time)
	}
}

func TestFresnelReflectivity(t *testing.T) {
	normal := core.NewVec3(0, 0, 1)
	headOn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	grazing := core.NewRay(core.NewVec3(-1, 0, 0), core.NewVec3(1, 0, 0))

	m := material.NewMaterial(core.NewVec3(1, 1, 1))
	assert.Equal(t, 0.0, FresnelReflectivity(&m, headOn, normal), "no base reflectivity")

	m.Reflectivity = 1
	assert.InDelta(t, 0.04, FresnelReflectivity(&m, headOn, normal), 1e-12)
	assert.InDelta(t, 1.0, FresnelReflectivity(&m, grazing, normal), 1e-12)

	m.Reflectivity = 0.5
	assert.InDelta(t, 0.02, FresnelReflectivity(&m, headOn, normal), 1e-12)

	m.Reflectivity = 1
	m.Dispersion = 5
	shifted := FresnelReflectivity(&m, headOn.WithWavelengthOffset(0.02), normal)
	assert.InDelta(t, math.Pow(0.6/2.6, 2), shifted, 1e-12)

	m.Dispersion = 0
	m.Metallic = 1
	m.Roughness = 0.5
	assert.InDelta(t, 0.04+0.96*0.25, FresnelReflectivity(&m, headOn, normal), 1e-12)
}

func TestDispersionSeparatesChannels(t *testing.T) {
	s := scene.New()
	s.BackgroundColor = core.NewVec3(1, 1, 1)
	glass := material.NewMaterial(core.NewVec3(0, 0, 0))
	glass.Reflectivity = 1
	glass.Dispersion = 10
	glass.Glossiness = 0
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, glass))

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	plain := NewWhittedIntegrator(Config{MaxDepth: 5})
	c := plain.RayColor(ray, s, newSampler(10))
	assert.InDelta(t, c.X, c.Z, 1e-12)

	dispersive := NewWhittedIntegrator(Config{MaxDepth: 5, DispersionOffset: 0.05})
	d := dispersive.RayColor(ray, s, newSampler(10))
	assert.Greater(t, d.X, d.Y, "red trace sees a higher IOR")
	assert.Greater(t, d.Y, d.Z)
}

func TestNewWhittedIntegrator_ClampsShadowSamples(t *testing.T) {
	assert.Equal(t, 8, NewWhittedIntegrator(Config{ShadowSamples: 2}).Config().ShadowSamples)
	assert.Equal(t, 16, NewWhittedIntegrator(Config{ShadowSamples: 64}).Config().ShadowSamples)
	assert.Equal(t, 12, NewWhittedIntegrator(Config{ShadowSamples: 12}).Config().ShadowSamples)
	assert.Equal(t, DefaultConfig(), ConfigFromSampling(scene.DefaultSamplingConfig()))
}

func TestRayColor_DefaultSceneIsFinite(t *testing.T) {
	for _, name := range scene.BuiltinNames() {
		s, err := scene.NewBuiltin(name)
		require.NoError(t, err)
		w := NewWhittedIntegrator(ConfigFromSampling(s.SamplingConfig))
		sampler := newSampler(11)
		r := rand.New(rand.NewSource(12))
		for i := 0; i < 200; i++ {
			dir := core.NewVec3(r.Float64()*2-1, r.Float64()*2-1, -1)
			color := w.RayColor(core.NewRay(s.CameraConfig.Center, dir).WithTime(r.Float64()*2), s, sampler)
			require.True(t, color.IsFinite(), "%s: %v", name, color)
			assert.GreaterOrEqual(t, color.X, 0.0)
		}
	}
}
