package renderer

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/integrator"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// TileRenderer renders the pixels of one frame snapshot using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	camera     *Camera
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer for a scene snapshot
func NewTileRenderer(s *scene.Scene, camera *Camera, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		camera:     camera,
		integrator: integratorInst,
	}
}

// RenderTileBounds renders pixels within bounds into frame. Cancellation is
// checked between pixels.
func (tr *TileRenderer) RenderTileBounds(ctx context.Context, bounds image.Rectangle, frame *Frame, random *rand.Rand) (RenderStats, error) {
	sampler := core.NewRandomSampler(random)
	stats := RenderStats{}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			var ps PixelStats
			stats.InvalidSamples += tr.samplePixel(i, j, frame.Width, frame.Height, &ps, sampler)
			frame.Set(i, j, ps.GetColor())

			stats.TotalPixels++
			stats.TotalSamples += ps.SampleCount
		}
	}

	return stats, nil
}

// samplePixel traces SamplesPerPixel x MotionSamples primary rays through
// pixel (i, j), where j counts rows from the top. Positions are stratified
// over an nx x ny grid with exactly one cell per sample; cells are shuffled
// per pixel so a shutter offset is not tied to one region of the pixel. The
// shutter offset of motion sample m is m/M of MotionBlurIntensity*TimeStep
// past the clock time. Returns the number of non-finite samples that were dropped.
func (tr *TileRenderer) samplePixel(i, j, width, height int, ps *PixelStats, sampler core.Sampler) int {
	cfg := tr.scene.SamplingConfig
	spp := max(1, cfg.SamplesPerPixel)
	motionSamples := max(1, cfg.MotionSamples)
	total := spp * motionSamples
	nx, ny := strataGrid(total)
	cells := shuffledCells(total, sampler)

	clock := tr.scene.Clock
	shutter := tr.scene.MotionBlurIntensity * clock.TimeStep
	row := float64(height - 1 - j)

	invalid := 0
	for a := 0; a < spp; a++ {
		for m := 0; m < motionSamples; m++ {
			cell := cells[a*motionSamples+m]
			jitter := sampler.Get2D()
			sx := (float64(cell%nx) + jitter.X) / float64(nx)
			sy := (float64(cell/nx) + jitter.Y) / float64(ny)

			s := (float64(i) + sx) / float64(width)
			t := (row + sy) / float64(height)
			timeOffset := float64(m) / float64(motionSamples) * shutter
			ray := tr.camera.GetRay(s, t).WithTime(clock.CurrentTime + timeOffset)

			color := tr.integrator.RayColor(ray, tr.scene, sampler)
			if !color.IsFinite() {
				invalid++
				continue
			}
			ps.AddSample(color)
		}
	}
	return invalid
}

// strataGrid returns the most square nx x ny grid with nx*ny == total.
// A prime total degenerates to a 1 x total column of horizontal strips.
func strataGrid(total int) (nx, ny int) {
	nx = int(math.Sqrt(float64(total)))
	for nx > 1 && total%nx != 0 {
		nx--
	}
	nx = max(1, nx)
	return nx, total / nx
}

// shuffledCells returns a random permutation of 0..n-1 drawn from sampler
func shuffledCells(n int, sampler core.Sampler) []int {
	cells := make([]int, n)
	for k := range cells {
		cells[k] = k
	}
	for k := n - 1; k > 0; k-- {
		r := min(k, int(sampler.Get1D()*float64(k+1)))
		cells[k], cells[r] = cells[r], cells[k]
	}
	return cells
}
