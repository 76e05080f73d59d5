// Package output converts rendered frames to 8-bit images and writes them to disk.
package output

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/mitchellh/go-homedir"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/renderer"
)

// jpegQuality is the quality used for .jpg output
const jpegQuality = 95

// ToByte converts a linear channel value to 8 bits, clamping to [0, 1]
// first. NaN maps to 0.
func ToByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(255.99 * max(0, min(1, v)))
}

// ToColor converts a linear color to RGBA after gamma encoding. gamma <= 0
// is treated as 1 (no encoding).
func ToColor(c core.Vec3, gamma float64) color.RGBA {
	if gamma > 0 && gamma != 1 {
		inv := 1 / gamma
		c = core.NewVec3(
			math.Pow(max(0, c.X), inv),
			math.Pow(max(0, c.Y), inv),
			math.Pow(max(0, c.Z), inv),
		)
	}
	return color.RGBA{R: ToByte(c.X), G: ToByte(c.Y), B: ToByte(c.Z), A: 255}
}

// ToRGBA converts a frame to an 8-bit image
func ToRGBA(frame *renderer.Frame, gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			img.SetRGBA(x, y, ToColor(frame.At(x, y), gamma))
		}
	}
	return img
}

// Thumbnail scales img down so its width is at most maxWidth
func Thumbnail(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	height := max(1, b.Dy()*maxWidth/b.Dx())
	return transform.Resize(img, maxWidth, height, transform.Linear)
}

// WritePPM writes a frame as an ASCII (P3) PPM image
func WritePPM(w io.Writer, frame *renderer.Frame, gamma float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", frame.Width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := ToColor(frame.At(x, y), gamma)
			fmt.Fprintf(bw, "%d %d %d\n", c.R, c.G, c.B)
		}
	}
	return bw.Flush()
}

// SaveFrame writes a frame to path; the extension selects PPM, PNG, JPEG,
// BMP or single-frame GIF. Missing directories are created and "~" expands
// to the home directory.
func SaveFrame(path string, frame *renderer.Frame, gamma float64) error {
	expanded, err := prepareOutputPath(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(expanded)); ext {
	case ".ppm":
		return writeFile(expanded, func(w io.Writer) error { return WritePPM(w, frame, gamma) })
	case ".gif":
		return writeFile(expanded, func(w io.Writer) error {
			return EncodeGIF(w, []*renderer.Frame{frame}, 0, gamma)
		})
	case ".png", ".jpg", ".jpeg", ".bmp":
		if err := imgio.Save(expanded, ToRGBA(frame, gamma), encoderFor(ext)); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}
}

// FramePath inserts a zero-padded frame number before the extension:
// "out/render.png" becomes "out/render_0007.png" for frame 7
func FramePath(path string, frame int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(path, ext), frame, ext)
}

func encoderFor(ext string) imgio.Encoder {
	switch ext {
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(jpegQuality)
	case ".bmp":
		return imgio.BMPEncoder()
	default:
		return imgio.PNGEncoder()
	}
}

func prepareOutputPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand output path %s: %w", path, err)
	}
	if dir := filepath.Dir(expanded); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return expanded, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
