package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/df07/go-animated-raytracer/pkg/renderer"
	"github.com/df07/go-animated-raytracer/web/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port      int
		sceneDir  string
		staticDir string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:          "raytracer-web",
		Short:        "Web server streaming animated renders over websockets",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := renderer.NewLogger(cmd.ErrOrStderr(), level)

			webServer := server.NewServer(port, sceneDir, staticDir, logger)
			logger.Printf("Animated Raytracer Web Server")
			logger.Printf("Visit http://localhost:%d to start rendering", port)
			return webServer.Start()
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&port, "port", 8080, "Port to serve on")
	flags.StringVar(&sceneDir, "scenes", "scenes", "Directory of YAML/JSON scene files")
	flags.StringVar(&staticDir, "static", "static", "Directory of static web assets")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log per-frame debug output")
	return cmd
}
