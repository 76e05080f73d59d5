package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/output"
	"github.com/df07/go-animated-raytracer/pkg/renderer"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

var renderCounter atomic.Int64

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string  `json:"scene"`           // Scene id (e.g., "animated" or "file:bouncing-ball")
	Width           int     `json:"width"`           // Image width
	Height          int     `json:"height"`          // Image height
	SamplesPerPixel int     `json:"samplesPerPixel"` // Anti-aliasing samples per pixel
	MotionSamples   int     `json:"motionSamples"`   // Shutter samples per anti-aliasing sample
	MaxDepth        int     `json:"maxDepth"`        // Maximum ray bounce depth
	Frames          int     `json:"frames"`          // Frames to render, 0 plays every track once
	Gamma           float64 `json:"gamma"`           // Output gamma, 1 is linear
	Thumbnail       int     `json:"thumbnail"`       // Maximum width of streamed images, 0 keeps full size
	Seed            int64   `json:"seed"`            // Base seed of the per-tile generators
}

// Event is one message of the render stream
type Event struct {
	Type string      `json:"type"` // "frame", "console", "complete" or "error"
	Data interface{} `json:"data"`
}

// FrameUpdate is sent once per rendered frame
type FrameUpdate struct {
	FrameNumber int     `json:"frameNumber"`
	TotalFrames int     `json:"totalFrames"`
	Time        float64 `json:"time"`
	ImageData   string  `json:"imageData"` // Base64 encoded PNG
	Stats       Stats   `json:"stats"`
	ElapsedMs   int64   `json:"elapsedMs"`
}

// Stats represents render statistics of one frame
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	InvalidSamples int     `json:"invalidSamples"`
	AverageSamples float64 `json:"averageSamples"`
	DurationMs     int64   `json:"durationMs"`
}

// Completion is the final message of a successful render
type Completion struct {
	Frames    int   `json:"frames"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// handleRender streams an animation render over a websocket, one message per frame
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request: " + err.Error()})
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	applyRequest(sceneObj, req)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("Warning: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine; every producer goes through events
	events := make(chan Event, 16)
	writerDone := make(chan struct{})
	go s.writeEvents(conn, events, cancel, writerDone)
	go readUntilClosed(conn, cancel)

	renderID := fmt.Sprintf("render-%d", renderCounter.Add(1))
	consoleChan, logger := s.setupConsoleLogging(renderID)
	consoleDone := make(chan struct{})
	go streamConsoleMessages(consoleChan, events, consoleDone)

	completion, err := s.runRender(ctx, req, sceneObj, logger, events)

	// Workers are stopped once the render returns, so nothing logs after this
	close(consoleChan)
	<-consoleDone

	switch {
	case err == nil:
		events <- Event{Type: "complete", Data: completion}
	case ctx.Err() != nil:
		s.logger.Printf("%s cancelled after %d frames", renderID, completion.Frames)
	default:
		events <- Event{Type: "error", Data: err.Error()}
	}
	close(events)
	<-writerDone
}

// runRender renders the requested frames and queues one frame event per frame
func (s *Server) runRender(ctx context.Context, req *RenderRequest, sceneObj *scene.Scene,
	logger core.Logger, events chan<- Event) (Completion, error) {

	options := renderer.DefaultRenderOptions()
	options.Seed = req.Seed
	raytracer := renderer.NewRaytracer(sceneObj, nil, options, logger)

	totalFrames := req.Frames
	if totalFrames <= 0 {
		totalFrames = sceneObj.FrameCount()
	}

	startTime := time.Now()
	delivered := 0
	err := raytracer.RenderAnimation(ctx, totalFrames, func(frame *renderer.Frame) error {
		imageData, err := imageToBase64PNG(output.Thumbnail(output.ToRGBA(frame, req.Gamma), req.Thumbnail))
		if err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}

		update := FrameUpdate{
			FrameNumber: frame.Index,
			TotalFrames: totalFrames,
			Time:        frame.Time,
			ImageData:   imageData,
			Stats: Stats{
				TotalPixels:    frame.Stats.TotalPixels,
				TotalSamples:   frame.Stats.TotalSamples,
				InvalidSamples: frame.Stats.InvalidSamples,
				AverageSamples: frame.Stats.AverageSamples,
				DurationMs:     frame.Stats.Duration.Milliseconds(),
			},
			ElapsedMs: time.Since(startTime).Milliseconds(),
		}

		select {
		case events <- Event{Type: "frame", Data: update}:
			delivered++
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	completion := Completion{Frames: delivered, ElapsedMs: time.Since(startTime).Milliseconds()}
	if err != nil {
		return completion, err
	}

	s.logger.Printf("Rendered %d frames of %s in %dms", delivered, req.Scene, completion.ElapsedMs)
	return completion, nil
}

// writeEvents writes queued events to the connection until events is closed.
// After a write failure the render is cancelled and remaining events are dropped.
func (s *Server) writeEvents(conn *websocket.Conn, events <-chan Event, cancel context.CancelFunc, done chan<- struct{}) {
	defer close(done)

	failed := false
	for event := range events {
		if failed {
			continue
		}
		if err := conn.SetWriteDeadline(time.Now().Add(30 * time.Second)); err != nil {
			s.logger.Printf("Debug: websocket write deadline: %v", err)
		}
		if err := conn.WriteJSON(event); err != nil {
			if !isClosedError(err) {
				s.logger.Printf("Warning: websocket write failed: %v", err)
			}
			failed = true
			cancel()
		}
	}

	if !failed {
		err := conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		if err != nil {
			s.logger.Printf("Debug: websocket close message: %v", err)
		}
	}
}

// readUntilClosed discards client messages and cancels the render when the
// client goes away
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging(renderID string) (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	return consoleChan, NewWebLogger(renderID, consoleChan, s.logger)
}

// streamConsoleMessages forwards console messages as events until consoleChan is closed
func streamConsoleMessages(consoleChan <-chan ConsoleMessage, events chan<- Event, done chan<- struct{}) {
	defer close(done)
	for msg := range consoleChan {
		events <- Event{Type: "console", Data: msg}
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	query := r.URL.Query()

	if sceneName := query.Get("scene"); sceneName != "" {
		req.Scene = sceneName
	} else {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, minImageSize, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 300, minImageSize, maxImageSize); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "samplesPerPixel", 4, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MotionSamples, err = parseIntParam(query, "motionSamples", 0, 0, maxMotionSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 0, maxDepthLimit); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(query, "frames", 0, 0, maxFrames); err != nil {
		return nil, err
	}
	if req.Thumbnail, err = parseIntParam(query, "thumbnail", 0, 0, maxImageSize); err != nil {
		return nil, err
	}
	if req.Gamma, err = parseFloatParam(query, "gamma", 1.0, 0.1, 5.0); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", 42, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	if req.Width*req.Height > 800*600 && req.SamplesPerPixel > 64 {
		s.logger.Printf("Warning: large image with high samples may render slowly")
	}
	return req, nil
}

// applyRequest overrides the scene's sampling configuration with the request.
// Zero motion samples and depth keep the scene's own values.
func applyRequest(sceneObj *scene.Scene, req *RenderRequest) {
	cfg := &sceneObj.SamplingConfig
	cfg.Width = req.Width
	cfg.Height = req.Height
	cfg.SamplesPerPixel = req.SamplesPerPixel
	if req.MotionSamples > 0 {
		cfg.MotionSamples = req.MotionSamples
	}
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// isClosedError reports whether err comes from a client that went away normally
func isClosedError(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, context.Canceled)
}
