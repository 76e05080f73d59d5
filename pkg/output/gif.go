package output

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/df07/go-animated-raytracer/pkg/renderer"
)

// EncodeGIF writes frames as a looping animated GIF played at fps. fps <= 0
// writes the minimum delay.
func EncodeGIF(w io.Writer, frames []*renderer.Frame, fps float64, gamma float64) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}

	delay := 0
	if fps > 0 {
		// GIF delays are in hundredths of a second
		delay = max(1, int(math.Round(100/fps)))
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		rgba := ToRGBA(frame, gamma)
		paletted := image.NewPaletted(rgba.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, rgba.Bounds(), rgba, image.Point{})
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}

// AnimationWriter collects frames and writes them as one GIF on Close
type AnimationWriter struct {
	path   string
	fps    float64
	gamma  float64
	frames []*renderer.Frame
}

// NewAnimationWriter creates a writer for an animated GIF at path
func NewAnimationWriter(path string, fps, gamma float64) *AnimationWriter {
	return &AnimationWriter{path: path, fps: fps, gamma: gamma}
}

// AddFrame appends a frame; it matches renderer.FrameCallback
func (aw *AnimationWriter) AddFrame(frame *renderer.Frame) error {
	if len(aw.frames) > 0 {
		first := aw.frames[0]
		if first.Width != frame.Width || first.Height != frame.Height {
			return fmt.Errorf("frame %d is %dx%d, expected %dx%d",
				frame.Index, frame.Width, frame.Height, first.Width, first.Height)
		}
	}
	aw.frames = append(aw.frames, frame)
	return nil
}

// Len returns the number of collected frames
func (aw *AnimationWriter) Len() int {
	return len(aw.frames)
}

// Close encodes the collected frames to the output path
func (aw *AnimationWriter) Close() error {
	expanded, err := prepareOutputPath(aw.path)
	if err != nil {
		return err
	}
	return writeFile(expanded, func(w io.Writer) error {
		return EncodeGIF(w, aw.frames, aw.fps, aw.gamma)
	})
}
