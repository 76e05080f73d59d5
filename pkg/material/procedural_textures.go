package material

import (
	"github.com/df07/go-animated-raytracer/pkg/core"
)

// NewTextureFromColors packs linear [0,1] colors into an RGB texture
func NewTextureFromColors(width, height int, pixels []core.Vec3) *Texture {
	data := make([]byte, width*height*3)
	for i, c := range pixels {
		c = c.Clamp(0, 1)
		data[i*3] = uint8(c.X*255 + 0.5)
		data[i*3+1] = uint8(c.Y*255 + 0.5)
		data[i*3+2] = uint8(c.Z*255 + 0.5)
	}
	return NewTexture(width, height, 3, data)
}

// NewCheckerboardTexture creates a checkerboard image with square checks of checkSize pixels
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *Texture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}
	return NewTextureFromColors(width, height, pixels)
}

// NewUVDebugTexture creates a texture showing UV coordinates as colors
// U maps to red channel, V maps to green channel
func NewUVDebugTexture(width, height int) *Texture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := float64(x) / float64(max(1, width-1))
			v := float64(y) / float64(max(1, height-1))
			pixels[y*width+x] = core.NewVec3(u, v, 0.0)
		}
	}
	return NewTextureFromColors(width, height, pixels)
}

// NewSkyTexture creates an equirectangular sky: zenith at the top row fading
// to horizon at the middle row, with ground below the horizon
func NewSkyTexture(width, height int, zenith, horizon, ground core.Vec3) *Texture {
	pixels := make([]core.Vec3, width*height)
	half := float64(max(1, height/2))
	for y := 0; y < height; y++ {
		var color core.Vec3
		if fy := float64(y); fy < half {
			color = zenith.Lerp(horizon, fy/half)
		} else {
			color = ground
		}
		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}
	return NewTextureFromColors(width, height, pixels)
}
