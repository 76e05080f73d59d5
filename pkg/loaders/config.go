package loaders

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-animated-raytracer/pkg/renderer"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// RenderConfig is the TOML render configuration read by the command line
// tools. Zero values leave the scene's own settings alone.
type RenderConfig struct {
	Scene    string          `toml:"scene"`  // Built-in scene name or scene file path
	Output   string          `toml:"output"` // Output image path; the extension picks the format
	Frames   int             `toml:"frames"` // Animation frames, 0 = scene frame count
	Sampling SamplingSection `toml:"sampling"`
	Workers  WorkerSection   `toml:"workers"`
}

// SamplingSection overrides scene sampling settings
type SamplingSection struct {
	Width            int      `toml:"width"`
	Height           int      `toml:"height"`
	SamplesPerPixel  int      `toml:"samples_per_pixel"`
	MotionSamples    int      `toml:"motion_samples"`
	MaxDepth         int      `toml:"max_depth"`
	ShadowSamples    int      `toml:"shadow_samples"`
	DispersionOffset *float64 `toml:"dispersion_offset"`
}

// WorkerSection configures tile rendering
type WorkerSection struct {
	TileSize int   `toml:"tile_size"`
	Count    int   `toml:"count"`
	Seed     int64 `toml:"seed"`
}

// DefaultRenderConfig returns the configuration used when no file is given
func DefaultRenderConfig() RenderConfig {
	opts := renderer.DefaultRenderOptions()
	return RenderConfig{
		Scene:  "default",
		Output: "output.png",
		Workers: WorkerSection{
			TileSize: opts.TileSize,
			Count:    opts.NumWorkers,
			Seed:     opts.Seed,
		},
	}
}

// LoadRenderConfig reads a TOML configuration on top of the defaults
func LoadRenderConfig(path string) (RenderConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("failed to expand config path %s: %w", path, err)
	}
	file, err := os.Open(expanded)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg, err := ParseRenderConfig(file)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseRenderConfig decodes TOML on top of the defaults. Unknown keys are errors.
func ParseRenderConfig(r io.Reader) (RenderConfig, error) {
	cfg := DefaultRenderConfig()
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return RenderConfig{}, fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		return RenderConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Frames < 0 {
		return RenderConfig{}, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	return cfg, nil
}

// ApplySampling overrides the non-zero sampling settings onto cfg
func (c RenderConfig) ApplySampling(cfg *scene.SamplingConfig) {
	applyRender(cfg, &RenderSection{
		Width:            c.Sampling.Width,
		Height:           c.Sampling.Height,
		SamplesPerPixel:  c.Sampling.SamplesPerPixel,
		MotionSamples:    c.Sampling.MotionSamples,
		MaxDepth:         c.Sampling.MaxDepth,
		ShadowSamples:    c.Sampling.ShadowSamples,
		DispersionOffset: c.Sampling.DispersionOffset,
	})
}

// RenderOptions returns the worker settings
func (c RenderConfig) RenderOptions() renderer.RenderOptions {
	opts := renderer.DefaultRenderOptions()
	if c.Workers.TileSize > 0 {
		opts.TileSize = c.Workers.TileSize
	}
	if c.Workers.Count > 0 {
		opts.NumWorkers = c.Workers.Count
	}
	opts.Seed = c.Workers.Seed
	return opts
}

// ResolveScene returns the built-in scene with the configured name, or
// loads it as a file
func (c RenderConfig) ResolveScene() (*scene.Scene, error) {
	name := c.Scene
	if name == "" {
		name = "default"
	}
	if s, err := scene.NewBuiltin(name); err == nil {
		return s, nil
	}
	return LoadScene(name)
}
