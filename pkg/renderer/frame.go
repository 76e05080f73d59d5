package renderer

import "github.com/df07/go-animated-raytracer/pkg/core"

// Frame is one rendered image in linear RGB. Pixels are stored row-major
// with row 0 at the top of the image.
type Frame struct {
	Index  int     // Animation frame number
	Time   float64 // Clock time the frame was rendered at
	Width  int
	Height int
	Pixels []core.Vec3
	Stats  RenderStats
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the color of pixel (x, y)
func (f *Frame) At(x, y int) core.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the color of pixel (x, y)
func (f *Frame) Set(x, y int, color core.Vec3) {
	f.Pixels[y*f.Width+x] = color
}

// AverageLuminance returns the mean luminance of the frame
func (f *Frame) AverageLuminance() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range f.Pixels {
		total += p.Luminance()
	}
	return total / float64(len(f.Pixels))
}
