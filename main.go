package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/loaders"
	"github.com/df07/go-animated-raytracer/pkg/output"
	"github.com/df07/go-animated-raytracer/pkg/renderer"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// watchDebounce coalesces bursts of file events from editors
const watchDebounce = 200 * time.Millisecond

// cliOptions holds the command line flags
type cliOptions struct {
	configPath string
	scene      string
	output     string
	frames     int
	width      int
	height     int
	spp        int
	workers    int
	seed       int64
	gamma      float64
	watch      bool
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "raytracer",
		Short: "Animated Whitted ray tracer",
		Long: "Renders a built-in scene or a YAML/JSON scene file to PPM, PNG, JPEG, BMP or GIF.\n" +
			"Animated scenes render every frame; a .gif output collects them into one animation.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := renderer.NewLogger(cmd.ErrOrStderr(), level)

			if err := render(ctx, cfg, opts.gamma, logger); err != nil {
				if !opts.watch {
					return err
				}
				logger.Printf("Warning: render failed: %v", err)
			}
			if opts.watch {
				reload := func() (loaders.RenderConfig, error) { return resolveConfig(cmd, opts) }
				return watch(ctx, watchedFiles(cfg, opts), reload, opts.gamma, logger)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML render configuration file")
	flags.StringVarP(&opts.scene, "scene", "s", "default",
		fmt.Sprintf("built-in scene (%s) or scene file path", strings.Join(scene.BuiltinNames(), ", ")))
	flags.StringVarP(&opts.output, "output", "o", "output.png", "output path; the extension selects the format")
	flags.IntVarP(&opts.frames, "frames", "f", 0, "animation frames to render (0 = full animation, 1 = still)")
	flags.IntVar(&opts.width, "width", 0, "image width (0 = scene setting)")
	flags.IntVar(&opts.height, "height", 0, "image height (0 = scene setting)")
	flags.IntVar(&opts.spp, "spp", 0, "anti-aliasing samples per pixel (0 = scene setting)")
	flags.IntVar(&opts.workers, "workers", 0, "parallel workers (0 = CPU count)")
	flags.Int64Var(&opts.seed, "seed", 42, "random seed")
	flags.Float64Var(&opts.gamma, "gamma", 1, "output gamma (1 = linear)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-render when the scene or config file changes")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug messages")

	cmd.AddCommand(newScenesCmd())
	return cmd
}

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes [dir]",
		Short: "List built-in scenes and scene files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "scenes"
			if len(args) > 0 {
				dir = args[0]
			}
			resp, err := scene.ListAllScenes(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, group := range resp.Groups {
				fmt.Fprintf(out, "%s:\n", group.Name)
				for _, info := range group.Scenes {
					name := info.ID
					if info.Type == "file" {
						name = info.FilePath
					}
					fmt.Fprintf(out, "  %-24s %s\n", name, info.Description)
				}
			}
			return nil
		},
	}
}

// resolveConfig merges the config file, if any, with explicitly set flags
func resolveConfig(cmd *cobra.Command, opts *cliOptions) (loaders.RenderConfig, error) {
	cfg := loaders.DefaultRenderConfig()
	if opts.configPath != "" {
		loaded, err := loaders.LoadRenderConfig(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("scene") || opts.configPath == "" {
		cfg.Scene = opts.scene
	}
	if flags.Changed("output") || opts.configPath == "" {
		cfg.Output = opts.output
	}
	if flags.Changed("frames") {
		cfg.Frames = opts.frames
	}
	if flags.Changed("width") {
		cfg.Sampling.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Sampling.Height = opts.height
	}
	if flags.Changed("spp") {
		cfg.Sampling.SamplesPerPixel = opts.spp
	}
	if flags.Changed("workers") {
		cfg.Workers.Count = opts.workers
	}
	if flags.Changed("seed") || opts.configPath == "" {
		cfg.Workers.Seed = opts.seed
	}
	return cfg, nil
}

// createScene resolves the configured scene and applies sampling overrides
func createScene(cfg loaders.RenderConfig) (*scene.Scene, error) {
	s, err := cfg.ResolveScene()
	if err != nil {
		return nil, err
	}
	cfg.ApplySampling(&s.SamplingConfig)
	return s, nil
}

// render renders a still or an animation and writes it to cfg.Output
func render(ctx context.Context, cfg loaders.RenderConfig, gamma float64, logger core.Logger) error {
	s, err := createScene(cfg)
	if err != nil {
		return err
	}

	rt := renderer.NewRaytracer(s, nil, cfg.RenderOptions(), logger)
	width, height := rt.Size()
	logger.Printf("Rendering scene %q at %dx%d\n", cfg.Scene, width, height)

	frames := cfg.Frames
	if frames == 0 && !s.IsAnimated() {
		frames = 1
	}

	if frames == 1 {
		frame, err := rt.RenderFrame(ctx)
		if err != nil {
			return err
		}
		if err := output.SaveFrame(cfg.Output, frame, gamma); err != nil {
			return err
		}
		logger.Printf("Render saved as %s\n", cfg.Output)
		return nil
	}

	if strings.EqualFold(filepath.Ext(cfg.Output), ".gif") {
		writer := output.NewAnimationWriter(cfg.Output, s.Clock.FrameRate, gamma)
		if err := rt.RenderAnimation(ctx, frames, writer.AddFrame); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		logger.Printf("Animation (%d frames) saved as %s\n", writer.Len(), cfg.Output)
		return nil
	}

	return rt.RenderAnimation(ctx, frames, func(frame *renderer.Frame) error {
		path := output.FramePath(cfg.Output, frame.Index)
		if err := output.SaveFrame(path, frame, gamma); err != nil {
			return err
		}
		logger.Printf("Frame %d saved as %s\n", frame.Index, path)
		return nil
	})
}

// watchedFiles returns the files whose changes trigger a re-render
func watchedFiles(cfg loaders.RenderConfig, opts *cliOptions) []string {
	var files []string
	if _, err := scene.NewBuiltin(cfg.Scene); err != nil {
		files = append(files, cfg.Scene)
	}
	if opts.configPath != "" {
		files = append(files, opts.configPath)
	}
	return files
}

// watch re-renders whenever one of files is written, reloading the
// configuration first, until ctx is done
func watch(ctx context.Context, files []string, reload func() (loaders.RenderConfig, error), gamma float64, logger core.Logger) error {
	if len(files) == 0 {
		return errors.New("nothing to watch: the scene is built in and no config file was given")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so editors that replace files are still seen
	targets := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		targets[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", f, err)
		}
	}
	logger.Printf("Watching %s for changes\n", strings.Join(files, ", "))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if targets[filepath.Clean(event.Name)] && event.Has(fsnotify.Write|fsnotify.Create) {
				timer = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("Warning: watch error: %v", err)
		case <-timer:
			timer = nil
			cfg, err := reload()
			if err != nil {
				logger.Printf("Warning: %v", err)
				continue
			}
			if err := render(ctx, cfg, gamma, logger); err != nil {
				logger.Printf("Warning: render failed: %v", err)
			}
		}
	}
}
