package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/integrator"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// RenderOptions configures how frames are split across workers
type RenderOptions struct {
	TileSize   int   // Size of each square tile in pixels
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed of the per-tile random streams
}

// DefaultRenderOptions returns sensible default values
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		TileSize:   32,
		NumWorkers: 0, // Auto-detect CPU count
		Seed:       42,
	}
}

// FrameCallback receives each finished animation frame. Returning an error
// stops the animation.
type FrameCallback func(frame *Frame) error

// Raytracer renders still frames and animations of a scene
type Raytracer struct {
	scene      *scene.Scene
	width      int
	height     int
	camera     *Camera
	integrator integrator.Integrator
	options    RenderOptions
	logger     core.Logger
}

// NewRaytracer creates a raytracer for the scene's sampling resolution. A
// nil integrator selects the Whitted integrator configured from the scene;
// a nil logger discards messages.
func NewRaytracer(s *scene.Scene, integratorInst integrator.Integrator, options RenderOptions, logger core.Logger) *Raytracer {
	if integratorInst == nil {
		integratorInst = integrator.NewWhittedIntegrator(integrator.ConfigFromSampling(s.SamplingConfig))
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	if options.TileSize <= 0 {
		options.TileSize = DefaultRenderOptions().TileSize
	}

	width := max(1, s.SamplingConfig.Width)
	height := max(1, s.SamplingConfig.Height)

	return &Raytracer{
		scene:      s,
		width:      width,
		height:     height,
		camera:     NewCamera(s.CameraConfig, float64(width)/float64(height)),
		integrator: integratorInst,
		options:    options,
		logger:     logger,
	}
}

// Size returns the image resolution
func (rt *Raytracer) Size() (width, height int) {
	return rt.width, rt.height
}

// RenderFrame renders the scene at its current clock time
func (rt *Raytracer) RenderFrame(ctx context.Context) (*Frame, error) {
	return rt.renderSnapshot(ctx, rt.scene)
}

// RenderAnimation renders frames 0..frames-1 in order, each from its own
// scene snapshot, and hands every frame to callback. frames <= 0 renders the
// scene's own frame count.
func (rt *Raytracer) RenderAnimation(ctx context.Context, frames int, callback FrameCallback) error {
	if frames <= 0 {
		frames = rt.scene.FrameCount()
	}

	rt.logger.Printf("Rendering %d frames at %dx%d (%.1f fps)\n",
		frames, rt.width, rt.height, rt.scene.Clock.FrameRate)
	start := time.Now()

	for i := 0; i < frames; i++ {
		frame, err := rt.renderSnapshot(ctx, rt.scene.AtFrame(i))
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if callback != nil {
			if err := callback(frame); err != nil {
				return fmt.Errorf("frame %d callback: %w", i, err)
			}
		}
	}

	rt.logger.Printf("Animation completed in %v\n", time.Since(start))
	return nil
}

// renderSnapshot renders one frame of s using the worker pool
func (rt *Raytracer) renderSnapshot(ctx context.Context, s *scene.Scene) (*Frame, error) {
	start := time.Now()

	frame := NewFrame(rt.width, rt.height)
	frame.Index = s.Clock.Frame
	frame.Time = s.Clock.CurrentTime

	tiles := NewTileGrid(rt.width, rt.height, rt.options.TileSize)
	tileRenderer := NewTileRenderer(s, rt.camera, rt.integrator)
	pool := NewWorkerPool(rt.options.NumWorkers, len(tiles))

	rt.logger.Printf("Debug: frame %d (t=%.3f): %d tiles on %d workers\n",
		frame.Index, frame.Time, len(tiles), pool.GetNumWorkers())

	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{
			Tile:     tile,
			TaskID:   i,
			Seed:     tileSeed(rt.options.Seed, frame.Index, tile.ID),
			Renderer: tileRenderer,
			Frame:    frame,
		})
	}

	// Collect every result before stopping so no worker blocks on a full queue
	var stats RenderStats
	var errs []error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			errs = append(errs, errors.New("worker pool closed unexpectedly"))
			break
		}
		if result.Error != nil {
			errs = append(errs, result.Error)
			continue
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	if len(errs) > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			rt.logger.Printf("Rendering cancelled during frame %d\n", frame.Index)
			return nil, ctxErr
		}
		return nil, errors.Join(errs...)
	}

	stats.finalize()
	stats.Duration = time.Since(start)
	frame.Stats = stats

	if stats.InvalidSamples > 0 {
		rt.logger.Printf("Warning: frame %d dropped %d non-finite samples\n", frame.Index, stats.InvalidSamples)
	}
	rt.logger.Printf("Frame %d completed in %v (%.1f samples/pixel)\n",
		frame.Index, stats.Duration, stats.AverageSamples)

	return frame, nil
}
