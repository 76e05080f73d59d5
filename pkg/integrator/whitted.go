package integrator

import (
	"math"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/lights"
	"github.com/df07/go-animated-raytracer/pkg/material"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

const (
	// rayEpsilon is the minimum hit distance, keeping secondary rays off their own surface
	rayEpsilon = 0.001
	// lensEpsilon is the aperture (and focal distance) below which the camera is a pinhole
	lensEpsilon = 1e-6

	minShadowSamples = 8
	maxShadowSamples = 16
)

// Config contains the Whitted integrator settings
type Config struct {
	MaxDepth         int     // Bounce limit; camera rays start here
	ShadowSamples    int     // Shadow rays per area light, clamped to [8, 16]
	DispersionOffset float64 // Wavelength offset of the red and blue primary traces, 0 disables
}

// DefaultConfig returns depth 5, 8 shadow samples and a 0.02 dispersion offset
func DefaultConfig() Config {
	return Config{MaxDepth: 5, ShadowSamples: 8, DispersionOffset: 0.02}
}

// ConfigFromSampling extracts integrator settings from a scene's sampling config
func ConfigFromSampling(sc scene.SamplingConfig) Config {
	return Config{
		MaxDepth:         sc.MaxDepth,
		ShadowSamples:    sc.ShadowSamples,
		DispersionOffset: sc.DispersionOffset,
	}
}

// WhittedIntegrator implements recursive Whitted-style ray tracing: direct
// diffuse and specular lighting with soft shadows, plus one Fresnel-weighted
// mirror bounce per hit. Refraction is not traced; dispersion is approximated
// by tracing camera rays once per color channel with shifted IOR.
type WhittedIntegrator struct {
	config Config
}

// NewWhittedIntegrator creates a Whitted integrator
func NewWhittedIntegrator(config Config) *WhittedIntegrator {
	config.MaxDepth = max(0, config.MaxDepth)
	config.ShadowSamples = max(minShadowSamples, min(maxShadowSamples, config.ShadowSamples))
	config.DispersionOffset = max(0, config.DispersionOffset)
	return &WhittedIntegrator{config: config}
}

// Config returns the effective settings
func (w *WhittedIntegrator) Config() Config {
	return w.config
}

// RayColor traces a camera ray at the maximum depth
func (w *WhittedIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	return w.Trace(s, ray, w.config.MaxDepth, true, sampler)
}

// Trace returns the color arriving along ray with depth bounces left. Primary
// rays get thin-lens jitter and, when enabled, the per-channel dispersion
// traces; secondary rays never do.
func (w *WhittedIntegrator) Trace(s *scene.Scene, ray core.Ray, depth int, primary bool, sampler core.Sampler) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}
	if !primary {
		return w.shade(s, ray, depth, sampler)
	}

	ray = ApplyDepthOfField(s, ray, sampler)

	offset := w.config.DispersionOffset
	if offset <= 0 {
		return w.shade(s, ray, depth, sampler)
	}
	red := w.shade(s, ray.WithWavelengthOffset(offset), depth, sampler)
	green := w.shade(s, ray.WithWavelengthOffset(0), depth, sampler)
	blue := w.shade(s, ray.WithWavelengthOffset(-offset), depth, sampler)
	return core.NewVec3(red.X, green.Y, blue.Z)
}

// ApplyDepthOfField jitters the ray origin over a lens disk of radius
// Aperture, perpendicular to the ray, and re-aims it at the point FocalDistance
// along the original ray. Below the lens epsilon the ray is returned unchanged.
func ApplyDepthOfField(s *scene.Scene, ray core.Ray, sampler core.Sampler) core.Ray {
	if s.Aperture <= lensEpsilon || s.FocalDistance <= lensEpsilon {
		return ray
	}

	focus := ray.At(s.FocalDistance)
	lens := core.SampleUniformDisk(sampler.Get2D(), s.Aperture)
	u, v := core.OrthonormalBasis(ray.Direction)
	origin := ray.Origin.Add(u.Multiply(lens.X)).Add(v.Multiply(lens.Y))
	return ray.Spawn(origin, focus.Subtract(origin))
}

// shade evaluates one ray without the primary-ray treatment
func (w *WhittedIntegrator) shade(s *scene.Scene, ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	hit, ok := s.ClosestHit(ray, rayEpsilon, math.Inf(1))
	if !ok {
		return s.Background(ray)
	}

	m := hit.Material
	normal := hit.Normal
	if ray.Direction.Dot(normal) > 0 {
		normal = normal.Negate()
	}
	view := ray.Direction.Negate()
	surface := m.SurfaceColor(hit.Point, hit.UV)

	color := core.Vec3{}
	for i := range s.Lights {
		color = color.Add(w.directLight(s, &s.Lights[i], &hit, normal, view, surface, ray, sampler))
	}

	reflectivity := FresnelReflectivity(m, ray, normal)
	if reflectivity > 0 && depth > 1 {
		reflected := ray.Spawn(hit.Point, core.Reflect(ray.Direction, normal))
		bounce := w.Trace(s, reflected, depth-1, false, sampler)
		color = color.Add(bounce.Multiply(reflectivity))
	}

	return color
}

// directLight averages diffuse and specular light from one light over its
// shadow samples. Area lights are sampled on a Hammersley set rotated by a
// random offset; point lights take a single sample.
func (w *WhittedIntegrator) directLight(s *scene.Scene, light *lights.Light, hit *geometry.HitRecord,
	normal, view, surface core.Vec3, ray core.Ray, sampler core.Sampler) core.Vec3 {
	samples := 1
	var shift core.Vec2
	if light.IsArea() {
		samples = w.config.ShadowSamples
		shift = sampler.Get2D()
	}

	m := hit.Material
	exponent := 2 + 126*m.Glossiness
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		ls := light.Sample(hit.Point, core.Hammersley(i, samples).Rotate(shift))
		if ls.Distance <= rayEpsilon {
			continue
		}

		shadow := ray.Spawn(hit.Point, ls.Direction)
		if s.Occluded(shadow, rayEpsilon, ls.Distance) {
			continue
		}

		nDotL := normal.Dot(ls.Direction)
		// Specular is gated on the lit side too: no highlight from behind the surface
		if nDotL <= 0 {
			continue
		}
		radiance := surface.MultiplyVec(light.Color).Multiply(nDotL * light.Intensity)

		if m.Glossiness > 0 {
			r := core.Reflect(ls.Direction.Negate(), normal)
			if rv := r.Dot(view); rv > 0 {
				radiance = radiance.Add(light.Color.Multiply(m.Glossiness * math.Pow(rv, exponent)))
			}
		}
		sum = sum.Add(radiance)
	}
	return sum.Multiply(1.0 / float64(samples))
}

// FresnelReflectivity returns the mirror weight for a hit: Schlick's
// approximation with the IOR shifted by the ray's wavelength offset times
// the material dispersion, blended toward Metallic by Roughness squared and
// scaled by the base Reflectivity. normal must face against the ray.
func FresnelReflectivity(m *material.Material, ray core.Ray, normal core.Vec3) float64 {
	if m.Reflectivity <= 0 {
		return 0
	}

	cosTheta := max(0, min(1, -ray.Direction.Dot(normal)))
	ior := max(0, m.FresnelIOR+ray.WavelengthOffset*m.Dispersion)
	r0 := (ior - 1) / (ior + 1)
	r0 *= r0

	fresnel := r0 + (1-r0)*math.Pow(1-cosTheta, 5)*m.FresnelPower
	if m.Metallic > 0 {
		weight := m.Roughness * m.Roughness
		fresnel += (m.Metallic - fresnel) * weight
	}
	fresnel = max(0, min(1, fresnel))

	return fresnel * m.Reflectivity
}
