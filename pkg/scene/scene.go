// Package scene holds the renderable world: primitives, lights, animation
// tracks and camera settings, plus the closest-hit query over them.
package scene

import (
	"github.com/df07/go-animated-raytracer/pkg/animation"
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/lights"
	"github.com/df07/go-animated-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering. It is built once and
// treated as read-only while frames render; per-frame copies come from AtFrame.
type Scene struct {
	Spheres  []geometry.Sphere
	Meshes   []geometry.Mesh
	Lights   []lights.Light
	Textures []*material.Texture

	// Optional animation tracks keyed by primitive index
	SphereTracks map[int]*animation.Track
	MeshTracks   map[int]*animation.Track

	Clock               animation.Clock
	Aperture            float64
	FocalDistance       float64
	MotionBlurIntensity float64
	BackgroundColor     core.Vec3
	Environment         *material.Texture

	CameraConfig   CameraConfig
	SamplingConfig SamplingConfig
}

// CameraConfig places the pinhole camera. VFov is the vertical field of view in degrees.
type CameraConfig struct {
	Center core.Vec3
	LookAt core.Vec3
	Up     core.Vec3
	VFov   float64
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width            int     // Image width
	Height           int     // Image height
	SamplesPerPixel  int     // Anti-aliasing samples per pixel
	MotionSamples    int     // Shutter-time samples per anti-aliasing sample
	MaxDepth         int     // Maximum ray bounce depth
	ShadowSamples    int     // Shadow rays per area light, clamped to [8, 16]
	DispersionOffset float64 // Per-channel wavelength offset for primary rays, 0 disables
}

// DefaultCameraConfig looks down -Z from (0, 0, 1) with a 90 degree field of view
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center: core.NewVec3(0, 0, 1),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   90,
	}
}

// DefaultSamplingConfig returns an 800x600 single-sample configuration
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:            800,
		Height:           600,
		SamplesPerPixel:  1,
		MotionSamples:    1,
		MaxDepth:         5,
		ShadowSamples:    8,
		DispersionOffset: 0.02,
	}
}

// New creates an empty scene with a grey background and a 24 fps clock
func New() *Scene {
	return &Scene{
		SphereTracks:    make(map[int]*animation.Track),
		MeshTracks:      make(map[int]*animation.Track),
		Clock:           animation.NewClock(24),
		BackgroundColor: core.NewVec3(0.2, 0.2, 0.2),
		CameraConfig:    DefaultCameraConfig(),
		SamplingConfig:  DefaultSamplingConfig(),
	}
}

// AddSphere appends a sphere and returns its index
func (s *Scene) AddSphere(sphere geometry.Sphere) int {
	s.Spheres = append(s.Spheres, sphere)
	return len(s.Spheres) - 1
}

// AddMesh appends a mesh and returns its index
func (s *Scene) AddMesh(mesh geometry.Mesh) int {
	s.Meshes = append(s.Meshes, mesh)
	return len(s.Meshes) - 1
}

// AddLight appends a light
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
}

// AddTexture registers a decoded texture and returns it
func (s *Scene) AddTexture(texture *material.Texture) *material.Texture {
	s.Textures = append(s.Textures, texture)
	return texture
}

// SetSphereTrack binds an animation track to the sphere at index
func (s *Scene) SetSphereTrack(index int, track *animation.Track) {
	if s.SphereTracks == nil {
		s.SphereTracks = make(map[int]*animation.Track)
	}
	s.SphereTracks[index] = track
}

// SetMeshTrack binds an animation track to the mesh at index
func (s *Scene) SetMeshTrack(index int, track *animation.Track) {
	if s.MeshTracks == nil {
		s.MeshTracks = make(map[int]*animation.Track)
	}
	s.MeshTracks[index] = track
}

// IsAnimated reports whether any primitive has a non-empty track
func (s *Scene) IsAnimated() bool {
	for _, t := range s.SphereTracks {
		if t != nil && t.Len() > 0 {
			return true
		}
	}
	for _, t := range s.MeshTracks {
		if t != nil && t.Len() > 0 {
			return true
		}
	}
	return false
}

// Duration returns the longest track duration in the scene
func (s *Scene) Duration() float64 {
	d := 0.0
	for _, t := range s.SphereTracks {
		if t != nil {
			d = max(d, t.Duration())
		}
	}
	for _, t := range s.MeshTracks {
		if t != nil {
			d = max(d, t.Duration())
		}
	}
	return d
}

// FrameCount returns the number of frames needed to play every track once
func (s *Scene) FrameCount() int {
	d := s.Duration()
	if d <= 0 || s.Clock.TimeStep <= 0 {
		return 1
	}
	return max(1, int(d/s.Clock.TimeStep+0.5))
}

// AtFrame returns a shallow copy of the scene with the clock moved to frame.
// Primitives, lights, textures and tracks are shared with the original.
func (s *Scene) AtFrame(frame int) *Scene {
	snapshot := *s
	snapshot.Clock = s.Clock.AtFrame(frame)
	return &snapshot
}

// Background returns the color seen by a ray that hits nothing
func (s *Scene) Background(ray core.Ray) core.Vec3 {
	if s.Environment != nil {
		return s.Environment.SampleEquirect(ray.Direction)
	}
	return s.BackgroundColor
}
