// Package material describes surface appearance for the Whitted shading model.
package material

import "github.com/df07/go-animated-raytracer/pkg/core"

// Material holds the shading parameters of one primitive
type Material struct {
	Color        core.Vec3
	Reflectivity float64
	FresnelIOR   float64
	FresnelPower float64
	Dispersion   float64
	Metallic     float64
	Roughness    float64
	Glossiness   float64
	Texture      *Texture
	TextureScale float64
	Pattern      Pattern
}

// NewMaterial creates a non-reflective material with default Fresnel and
// gloss settings and a solid pattern of color
func NewMaterial(color core.Vec3) Material {
	return Material{
		Color:        color,
		FresnelIOR:   1.5,
		FresnelPower: 1.0,
		Roughness:    0.5,
		Glossiness:   0.5,
		TextureScale: 1.0,
		Pattern:      NewSolidPattern(color),
	}
}

// NewMirror creates a fully reflective material tinted by color
func NewMirror(color core.Vec3) Material {
	m := NewMaterial(color)
	m.Reflectivity = 1
	m.Metallic = 1
	m.Roughness = 1
	m.Glossiness = 0
	return m
}

// SurfaceColor returns the diffuse color at a hit point: the pattern color
// modulated by the texture sample at uv
func (m *Material) SurfaceColor(point core.Vec3, uv core.Vec2) core.Vec3 {
	color := m.Pattern.Evaluate(point)
	if m.Texture == nil {
		return color
	}
	scale := m.TextureScale
	if scale <= 0 {
		scale = 1
	}
	return color.MultiplyVec(m.Texture.Sample(uv.Multiply(scale)))
}
