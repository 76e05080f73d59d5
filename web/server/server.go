package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/loaders"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

const defaultScene = "default"

// Parameter limits shared by the render, inspect and scene-config endpoints
const (
	minImageSize     = 8
	maxImageSize     = 2000
	maxSamples       = 1024
	maxMotionSamples = 64
	maxDepthLimit    = 50
	maxFrames        = 600
)

// Server handles web requests for the animated raytracer
type Server struct {
	port      int
	sceneDir  string
	staticDir string
	logger    core.Logger
	upgrader  websocket.Upgrader
}

// NewServer creates a new web server. Scene files are listed from sceneDir
// and static assets are served from staticDir.
func NewServer(port int, sceneDir, staticDir string, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Server{
		port:      port,
		sceneDir:  sceneDir,
		staticDir: staticDir,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server and blocks until it fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files of the scene directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene":      sceneName,
		"animated":   sceneObj.IsAnimated(),
		"frameCount": sceneObj.FrameCount(),
		"frameRate":  sceneObj.Clock.FrameRate,
		"defaults": map[string]interface{}{
			"width":            config.Width,
			"height":           config.Height,
			"samplesPerPixel":  config.SamplesPerPixel,
			"motionSamples":    config.MotionSamples,
			"maxDepth":         config.MaxDepth,
			"shadowSamples":    config.ShadowSamples,
			"dispersionOffset": config.DispersionOffset,
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":          map[string]int{"min": minImageSize, "max": maxImageSize},
			"samplesPerPixel": map[string]int{"min": 1, "max": maxSamples},
			"motionSamples":   map[string]int{"min": 1, "max": maxMotionSamples},
			"maxDepth":        map[string]int{"min": 0, "max": maxDepthLimit},
			"frames":          map[string]int{"min": 0, "max": maxFrames},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// createScene builds a built-in scene by name, or a scene file by its "file:" id
func (s *Server) createScene(name string) (*scene.Scene, error) {
	if !strings.HasPrefix(name, "file:") {
		sceneObj, err := scene.NewBuiltin(name)
		if err != nil {
			return nil, fmt.Errorf("unknown scene: %s", name)
		}
		return sceneObj, nil
	}

	// Only ids returned by the scene listing resolve, so requests cannot
	// reach files outside the scene directory
	files, err := scene.ListSceneFiles(s.sceneDir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == name {
			return loaders.LoadScene(info.FilePath)
		}
	}
	return nil, fmt.Errorf("unknown scene: %s", name)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
