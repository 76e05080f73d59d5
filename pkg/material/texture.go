package material

import (
	"math"

	"github.com/df07/go-animated-raytracer/pkg/core"
)

// Texture is a decoded 8-bit image. Data is row-major with Channels bytes
// per pixel; row 0 is the top of the image (v = 0).
type Texture struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// NewTexture creates a texture over an existing pixel buffer
func NewTexture(width, height, channels int, data []byte) *Texture {
	return &Texture{Width: width, Height: height, Channels: channels, Data: data}
}

// valid reports whether the buffer can be sampled
func (t *Texture) valid() bool {
	return t != nil && t.Width > 0 && t.Height > 0 && t.Channels > 0 &&
		len(t.Data) >= t.Width*t.Height*t.Channels
}

// Sample returns a bilinearly filtered color in [0,1] at uv, wrapping in
// both directions. A nil or empty texture samples as white.
func (t *Texture) Sample(uv core.Vec2) core.Vec3 {
	return t.bilinear(uv, false)
}

func (t *Texture) bilinear(uv core.Vec2, clampV bool) core.Vec3 {
	if !t.valid() {
		return core.NewVec3(1, 1, 1)
	}
	if math.IsNaN(uv.X) || math.IsNaN(uv.Y) || math.IsInf(uv.X, 0) || math.IsInf(uv.Y, 0) {
		return t.texel(0, 0)
	}

	x := uv.X*float64(t.Width) - 0.5
	y := uv.Y*float64(t.Height) - 0.5
	x0f, y0f := math.Floor(x), math.Floor(y)
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)
	y1 := y0 + 1
	if clampV {
		y0 = max(0, min(t.Height-1, y0))
		y1 = max(0, min(t.Height-1, y1))
	}

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y1)
	c11 := t.texel(x0+1, y1)

	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	return top.Lerp(bottom, fy)
}

// SampleEquirect looks up the texture as an equirectangular environment map
// in the given direction. Longitude wraps; latitude clamps at the poles.
func (t *Texture) SampleEquirect(direction core.Vec3) core.Vec3 {
	return t.bilinear(EquirectUV(direction), true)
}

// EquirectUV maps a direction to spherical texture coordinates: u follows
// the azimuth around +Y and v runs from +Y (0) to -Y (1).
func EquirectUV(direction core.Vec3) core.Vec2 {
	d := direction.Normalize()
	if d.LengthSquared() == 0 {
		return core.NewVec2(0.5, 0.5)
	}
	phi := math.Atan2(d.Z, d.X)
	theta := math.Acos(max(-1, min(1, d.Y)))
	return core.NewVec2((phi+math.Pi)/(2*math.Pi), theta/math.Pi)
}

// texel reads one pixel with wrap-around addressing
func (t *Texture) texel(x, y int) core.Vec3 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}

	idx := (y*t.Width + x) * t.Channels
	const inv = 1.0 / 255.0
	if t.Channels < 3 {
		g := float64(t.Data[idx]) * inv
		return core.NewVec3(g, g, g)
	}
	return core.NewVec3(
		float64(t.Data[idx])*inv,
		float64(t.Data[idx+1])*inv,
		float64(t.Data[idx+2])*inv,
	)
}
