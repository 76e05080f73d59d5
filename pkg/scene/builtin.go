package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-animated-raytracer/pkg/animation"
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/lights"
	"github.com/df07/go-animated-raytracer/pkg/material"
)

var builtins = map[string]func() *Scene{
	"default":  NewDefaultScene,
	"patterns": NewPatternScene,
	"animated": NewAnimatedScene,
	"mirror":   NewMirrorScene,
}

// BuiltinNames returns the names accepted by NewBuiltin, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltin creates a built-in scene by name
func NewBuiltin(name string) (*Scene, error) {
	create, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, BuiltinNames())
	}
	return create(), nil
}

// sphereMaterial mirrors the classic scene setup: a colored diffuse surface
// with a base reflectivity
func sphereMaterial(color core.Vec3, reflectivity float64) material.Material {
	m := material.NewMaterial(color)
	m.Reflectivity = reflectivity
	return m
}

// NewDefaultScene creates three colored spheres on a large ground sphere lit by two point lights
func NewDefaultScene() *Scene {
	s := New()

	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, sphereMaterial(core.NewVec3(1, 0.2, 0.2), 0.3)))
	s.AddSphere(geometry.NewSphere(core.NewVec3(2, 0, -6), 1, sphereMaterial(core.NewVec3(0.2, 1, 0.2), 0.3)))
	s.AddSphere(geometry.NewSphere(core.NewVec3(-2, 0, -4), 1, sphereMaterial(core.NewVec3(0.2, 0.2, 1), 0.3)))
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -101, -5), 100, sphereMaterial(core.NewVec3(0.5, 0.5, 0.5), 0.1)))

	s.AddLight(lights.NewPointLight(core.NewVec3(5, 5, -5), core.NewVec3(1, 1, 1), 1))
	s.AddLight(lights.NewPointLight(core.NewVec3(-5, 5, -5), core.NewVec3(0.5, 0.5, 0.5), 0.5))

	return s
}

// NewPatternScene lines up one sphere per procedural pattern under an area light
func NewPatternScene() *Scene {
	s := New()
	s.CameraConfig = CameraConfig{
		Center: core.NewVec3(0, 1.5, 4),
		LookAt: core.NewVec3(0, 0, -4),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   50,
	}
	s.SamplingConfig.SamplesPerPixel = 4

	warm := core.NewVec3(0.9, 0.6, 0.3)
	cool := core.NewVec3(0.15, 0.2, 0.5)
	kinds := material.PatternKinds()
	spacing := 1.3
	start := -spacing * float64(len(kinds)-1) / 2
	for i, kind := range kinds {
		m := material.NewMaterial(warm)
		m.Pattern = material.NewPattern(kind, 3, warm, cool)
		m.Glossiness = 0.3
		center := core.NewVec3(start+spacing*float64(i), 0, -4)
		s.AddSphere(geometry.NewSphere(center, 0.55, m))
	}

	ground := material.NewMaterial(core.NewVec3(0.8, 0.8, 0.8))
	ground.Pattern = material.NewPattern(material.PatternCheckerboard, 1, core.NewVec3(0.85, 0.85, 0.85), core.NewVec3(0.25, 0.25, 0.25))
	ground.Glossiness = 0
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -100.55, -4), 100, ground))

	s.AddLight(lights.NewDiskLight(core.NewVec3(0, 6, -2), core.NewVec3(1, 1, 1), 0.9, 1.5))
	s.AddLight(lights.NewPointLight(core.NewVec3(-6, 3, 2), core.NewVec3(0.6, 0.7, 1), 0.3))
	return s
}

// NewAnimatedScene bounces a marble sphere past a spinning cube with motion
// blur, depth of field and a sky environment
func NewAnimatedScene() *Scene {
	s := New()
	s.CameraConfig = CameraConfig{
		Center: core.NewVec3(0, 1, 3),
		LookAt: core.NewVec3(0, 0.5, -3),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   55,
	}
	s.Clock = animation.NewClock(24)
	s.MotionBlurIntensity = 1
	s.Aperture = 0.05
	s.FocalDistance = 6
	s.SamplingConfig.Width = 480
	s.SamplingConfig.Height = 270
	s.SamplingConfig.SamplesPerPixel = 2
	s.SamplingConfig.MotionSamples = 4
	s.Environment = s.AddTexture(material.NewSkyTexture(256, 128,
		core.NewVec3(0.25, 0.45, 0.85), core.NewVec3(0.85, 0.9, 1), core.NewVec3(0.3, 0.27, 0.25)))

	marble := material.NewMaterial(core.NewVec3(0.9, 0.9, 0.9))
	marble.Pattern = material.NewPattern(material.PatternMarble, 2, core.NewVec3(0.95, 0.95, 0.92), core.NewVec3(0.3, 0.3, 0.35))
	marble.Reflectivity = 0.2
	ball := s.AddSphere(geometry.NewSphere(core.NewVec3(-1.5, 0.5, -3), 0.5, marble))

	bounce := animation.NewTrack(
		animation.Keyframe{Time: 0, Position: core.NewVec3(-1.5, 0.5, -3), Scale: core.NewVec3(1, 1, 1)},
		animation.Keyframe{Time: 0.5, Position: core.NewVec3(0, 1.8, -3), Scale: core.NewVec3(1, 1, 1)},
		animation.Keyframe{Time: 1, Position: core.NewVec3(1.5, 0.5, -3), Scale: core.NewVec3(1, 1, 1)},
		animation.Keyframe{Time: 2, Position: core.NewVec3(-1.5, 0.5, -3), Scale: core.NewVec3(1, 1, 1)},
	)
	s.SetSphereTrack(ball, bounce)

	wood := material.NewMaterial(core.NewVec3(0.6, 0.4, 0.2))
	wood.Pattern = material.NewPattern(material.PatternWood, 4, core.NewVec3(0.65, 0.45, 0.25), core.NewVec3(0.4, 0.25, 0.1))
	cube := s.AddMesh(geometry.NewCubeMesh(core.NewVec3(0, 0.4, -5), 0.8, wood))

	spin := animation.NewTrack(
		animation.Keyframe{Time: 0, Position: core.NewVec3(0, 0.4, -5), Scale: core.NewVec3(1, 1, 1)},
		animation.Keyframe{Time: 1, Position: core.NewVec3(0, 0.4, -5), Rotation: core.NewVec3(0, math.Pi, 0.3), Scale: core.NewVec3(1.2, 1.2, 1.2)},
		animation.Keyframe{Time: 2, Position: core.NewVec3(0, 0.4, -5), Rotation: core.NewVec3(0, 2*math.Pi, 0), Scale: core.NewVec3(1, 1, 1)},
	)
	s.SetMeshTrack(cube, spin)

	floor := material.NewMaterial(core.NewVec3(0.7, 0.7, 0.7))
	floor.Pattern = material.NewPattern(material.PatternCheckerboard, 1, core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.2))
	floor.Reflectivity = 0.15
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -1000, -4), 1000, floor))

	s.AddLight(lights.NewDiskLight(core.NewVec3(2, 5, -1), core.NewVec3(1, 0.95, 0.9), 0.8, 0.8))
	s.AddLight(lights.NewRectangleLight(core.NewVec3(-3, 4, -4), core.NewVec3(1.5, 0, 0), core.NewVec3(0, 0, 1.5), core.NewVec3(0.7, 0.8, 1), 0.4))
	return s
}

// NewMirrorScene shows Fresnel reflection and dispersion: mirrored and glassy
// spheres over a checkerboard, plus a UV-textured sphere
func NewMirrorScene() *Scene {
	s := New()
	s.CameraConfig = CameraConfig{
		Center: core.NewVec3(0, 1, 2),
		LookAt: core.NewVec3(0, 0.3, -4),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   60,
	}
	s.SamplingConfig.SamplesPerPixel = 4
	s.BackgroundColor = core.NewVec3(0.5, 0.6, 0.8)

	mirror := material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))
	s.AddSphere(geometry.NewSphere(core.NewVec3(-1.2, 0.6, -4), 0.6, mirror))

	glassy := material.NewMaterial(core.NewVec3(0.2, 0.25, 0.3))
	glassy.Reflectivity = 0.9
	glassy.FresnelIOR = 1.6
	glassy.FresnelPower = 2
	glassy.Dispersion = 4
	glassy.Glossiness = 0.9
	s.AddSphere(geometry.NewSphere(core.NewVec3(1.2, 0.6, -4), 0.6, glassy))

	textured := material.NewMaterial(core.NewVec3(1, 1, 1))
	textured.Texture = s.AddTexture(material.NewCheckerboardTexture(64, 32, 8, core.NewVec3(1, 1, 1), core.NewVec3(0.8, 0.1, 0.1)))
	textured.TextureScale = 2
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 0.4, -5.5), 0.4, textured))

	floor := material.NewMaterial(core.NewVec3(0.8, 0.8, 0.8))
	floor.Pattern = material.NewPattern(material.PatternCheckerboard, 1, core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.1, 0.1, 0.1))
	floor.Reflectivity = 0.1
	s.AddSphere(geometry.NewSphere(core.NewVec3(0, -1000, -4), 1000, floor))

	s.AddLight(lights.NewRectangleLight(core.NewVec3(0, 4, -3), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), core.NewVec3(1, 1, 1), 1))
	return s
}
