package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-animated-raytracer/pkg/animation"
	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/lights"
	"github.com/df07/go-animated-raytracer/pkg/material"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// SceneFile is the on-disk scene description. JSON documents are accepted
// too since they are valid YAML.
type SceneFile struct {
	Camera      *CameraConfig    `yaml:"camera"`
	Render      *RenderSection   `yaml:"render"`
	Background  *Vec3Config      `yaml:"background"`
	Environment *TextureConfig   `yaml:"environment"`
	MotionBlur  *float64         `yaml:"motion_blur"`
	FrameRate   *float64         `yaml:"frame_rate"`
	Spheres     []SphereConfig   `yaml:"spheres"`
	Meshes      []MeshConfig     `yaml:"meshes"`
	Lights      []LightConfig    `yaml:"lights"`
	Animations  *AnimationConfig `yaml:"animations"`
}

// Vec3Config is a vector written either as {x, y, z} or as [x, y, z].
// Missing mapping components are zero.
type Vec3Config struct {
	X, Y, Z float64
}

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Vec3Config) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("line %d: vector needs 3 components, got %d", node.Line, len(xs))
		}
		v.X, v.Y, v.Z = xs[0], xs[1], xs[2]
		return nil
	case yaml.MappingNode:
		*v = Vec3Config{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			var target *float64
			switch key.Value {
			case "x":
				target = &v.X
			case "y":
				target = &v.Y
			case "z":
				target = &v.Z
			default:
				return fmt.Errorf("line %d: unknown vector component %q", key.Line, key.Value)
			}
			if err := value.Decode(target); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: expected vector mapping or sequence", node.Line)
}

// Vec3 converts to a core vector
func (v Vec3Config) Vec3() core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}

// CameraConfig places the camera and its lens
type CameraConfig struct {
	Aperture      *float64    `yaml:"aperture"`
	FocalDistance *float64    `yaml:"focal_distance"`
	Position      *Vec3Config `yaml:"position"`
	LookAt        *Vec3Config `yaml:"look_at"`
	Up            *Vec3Config `yaml:"up"`
	VFov          *float64    `yaml:"vfov"`
}

// RenderSection overrides the scene's sampling settings
type RenderSection struct {
	Width            int      `yaml:"width"`
	Height           int      `yaml:"height"`
	SamplesPerPixel  int      `yaml:"samples_per_pixel"`
	MotionSamples    int      `yaml:"motion_samples"`
	MaxDepth         int      `yaml:"max_depth"`
	ShadowSamples    int      `yaml:"shadow_samples"`
	DispersionOffset *float64 `yaml:"dispersion_offset"`
}

// TextureConfig references an image file, relative to the scene file
type TextureConfig struct {
	Path  string   `yaml:"path"`
	Scale *float64 `yaml:"scale"`
}

// PatternConfig selects a procedural pattern
type PatternConfig struct {
	Type   string      `yaml:"type"`
	Scale  *float64    `yaml:"scale"`
	Color1 *Vec3Config `yaml:"color1"`
	Color2 *Vec3Config `yaml:"color2"`
}

// MaterialConfig holds the surface fields shared by spheres and meshes
type MaterialConfig struct {
	Color        *Vec3Config    `yaml:"color"`
	Reflectivity *float64       `yaml:"reflectivity"`
	FresnelIOR   *float64       `yaml:"fresnel_ior"`
	FresnelPower *float64       `yaml:"fresnel_power"`
	Dispersion   *float64       `yaml:"dispersion"`
	Metallic     *float64       `yaml:"metallic"`
	Roughness    *float64       `yaml:"roughness"`
	Glossiness   *float64       `yaml:"glossiness"`
	Texture      *TextureConfig `yaml:"texture"`
	Pattern      *PatternConfig `yaml:"pattern"`
}

// SphereConfig describes one sphere
type SphereConfig struct {
	Center         *Vec3Config `yaml:"center"`
	Radius         *float64    `yaml:"radius"`
	MaterialConfig `yaml:",inline"`
}

// MeshConfig describes a cube or an explicit triangle list
type MeshConfig struct {
	Type           string         `yaml:"type"` // "cube" or "triangles"
	Position       *Vec3Config    `yaml:"position"`
	Rotation       *Vec3Config    `yaml:"rotation"`
	Scale          *Vec3Config    `yaml:"scale"`
	Size           *float64       `yaml:"size"`
	Smooth         bool           `yaml:"smooth"`
	Triangles      [][]Vec3Config `yaml:"triangles"`
	MaterialConfig `yaml:",inline"`
}

// LightConfig describes one light
type LightConfig struct {
	Type      string      `yaml:"type"`
	Position  *Vec3Config `yaml:"position"`
	Color     *Vec3Config `yaml:"color"`
	Intensity *float64    `yaml:"intensity"`
	Radius    float64     `yaml:"radius"`
	Width     *Vec3Config `yaml:"width"`
	Height    *Vec3Config `yaml:"height"`
}

// AnimationConfig binds keyframe tracks to primitives
type AnimationConfig struct {
	Spheres []TrackConfig `yaml:"spheres"`
	Meshes  []TrackConfig `yaml:"meshes"`
}

// TrackConfig is one track. Index defaults to the track's position in its list.
type TrackConfig struct {
	Index     *int             `yaml:"index"`
	Keyframes []KeyframeConfig `yaml:"keyframes"`
}

// KeyframeConfig is one keyframe; scale defaults to (1, 1, 1)
type KeyframeConfig struct {
	Time     float64     `yaml:"time"`
	Position *Vec3Config `yaml:"position"`
	Rotation *Vec3Config `yaml:"rotation"`
	Scale    *Vec3Config `yaml:"scale"`
}

// LoadScene reads a scene description from path. Texture paths resolve
// relative to the scene file; "~" expands to the home directory.
func LoadScene(path string) (*scene.Scene, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand scene path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := ParseScene(data, filepath.Dir(expanded))
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", path, err)
	}
	return s, nil
}

// ParseScene decodes a scene description and builds the scene. Unknown
// fields are errors.
func ParseScene(data []byte, baseDir string) (*scene.Scene, error) {
	sf, err := DecodeSceneFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return BuildScene(sf, baseDir)
}

// DecodeSceneFile decodes a scene description without building it
func DecodeSceneFile(r io.Reader) (*SceneFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var sf SceneFile
	if err := decoder.Decode(&sf); err != nil {
		if errors.Is(err, io.EOF) {
			return &sf, nil
		}
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &sf, nil
}

// BuildScene turns a decoded description into a scene, loading every
// referenced texture
func BuildScene(sf *SceneFile, baseDir string) (*scene.Scene, error) {
	textures, err := loadSceneTextures(sf, baseDir)
	if err != nil {
		return nil, err
	}

	s := scene.New()
	for _, tex := range textures.ordered {
		s.AddTexture(tex)
	}

	if sf.FrameRate != nil {
		if *sf.FrameRate <= 0 {
			return nil, fmt.Errorf("frame_rate must be positive, got %g", *sf.FrameRate)
		}
		s.Clock = animation.NewClock(*sf.FrameRate)
	}
	s.MotionBlurIntensity = floatOr(sf.MotionBlur, 0)
	if sf.Background != nil {
		s.BackgroundColor = sf.Background.Vec3()
	}
	if sf.Environment != nil {
		s.Environment = textures.byPath[sf.Environment.Path]
	}

	applyCamera(s, sf.Camera)
	applyRender(&s.SamplingConfig, sf.Render)

	for i, sc := range sf.Spheres {
		mat, err := buildMaterial(sc.MaterialConfig, textures)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.AddSphere(geometry.NewSphere(vecOr(sc.Center, core.Vec3{}), floatOr(sc.Radius, 1), mat))
	}

	for i, mc := range sf.Meshes {
		mesh, err := buildMesh(mc, textures)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		s.AddMesh(mesh)
	}

	for i, lc := range sf.Lights {
		light, err := buildLight(lc)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.AddLight(light)
	}

	if sf.Animations != nil {
		for i, tc := range sf.Animations.Spheres {
			index := intOr(tc.Index, i)
			if index < 0 || index >= len(s.Spheres) {
				return nil, fmt.Errorf("sphere animation %d: no sphere at index %d", i, index)
			}
			s.SetSphereTrack(index, buildTrack(tc))
		}
		for i, tc := range sf.Animations.Meshes {
			index := intOr(tc.Index, i)
			if index < 0 || index >= len(s.Meshes) {
				return nil, fmt.Errorf("mesh animation %d: no mesh at index %d", i, index)
			}
			s.SetMeshTrack(index, buildTrack(tc))
		}
	}

	return s, nil
}

func applyCamera(s *scene.Scene, cc *CameraConfig) {
	if cc == nil {
		return
	}
	s.Aperture = floatOr(cc.Aperture, s.Aperture)
	s.FocalDistance = floatOr(cc.FocalDistance, s.FocalDistance)
	s.CameraConfig.Center = vecOr(cc.Position, s.CameraConfig.Center)
	s.CameraConfig.LookAt = vecOr(cc.LookAt, s.CameraConfig.LookAt)
	s.CameraConfig.Up = vecOr(cc.Up, s.CameraConfig.Up)
	s.CameraConfig.VFov = floatOr(cc.VFov, s.CameraConfig.VFov)
}

func applyRender(cfg *scene.SamplingConfig, rs *RenderSection) {
	if rs == nil {
		return
	}
	if rs.Width > 0 {
		cfg.Width = rs.Width
	}
	if rs.Height > 0 {
		cfg.Height = rs.Height
	}
	if rs.SamplesPerPixel > 0 {
		cfg.SamplesPerPixel = rs.SamplesPerPixel
	}
	if rs.MotionSamples > 0 {
		cfg.MotionSamples = rs.MotionSamples
	}
	if rs.MaxDepth > 0 {
		cfg.MaxDepth = rs.MaxDepth
	}
	if rs.ShadowSamples > 0 {
		cfg.ShadowSamples = rs.ShadowSamples
	}
	cfg.DispersionOffset = floatOr(rs.DispersionOffset, cfg.DispersionOffset)
}

func buildMaterial(mc MaterialConfig, textures *textureSet) (material.Material, error) {
	color := vecOr(mc.Color, core.NewVec3(1, 1, 1))
	m := material.NewMaterial(color)
	m.Reflectivity = floatOr(mc.Reflectivity, m.Reflectivity)
	m.FresnelIOR = floatOr(mc.FresnelIOR, m.FresnelIOR)
	m.FresnelPower = floatOr(mc.FresnelPower, m.FresnelPower)
	m.Dispersion = floatOr(mc.Dispersion, m.Dispersion)
	m.Metallic = floatOr(mc.Metallic, m.Metallic)
	m.Roughness = floatOr(mc.Roughness, m.Roughness)
	m.Glossiness = floatOr(mc.Glossiness, m.Glossiness)

	if mc.Texture != nil {
		m.Texture = textures.byPath[mc.Texture.Path]
		m.TextureScale = floatOr(mc.Texture.Scale, m.TextureScale)
	}

	if mc.Pattern != nil {
		kind, err := material.ParsePatternKind(mc.Pattern.Type)
		if err != nil {
			return m, err
		}
		m.Pattern = material.NewPattern(kind,
			floatOr(mc.Pattern.Scale, 1),
			vecOr(mc.Pattern.Color1, color),
			vecOr(mc.Pattern.Color2, core.Vec3{}))
	}
	return m, nil
}

func buildMesh(mc MeshConfig, textures *textureSet) (geometry.Mesh, error) {
	mat, err := buildMaterial(mc.MaterialConfig, textures)
	if err != nil {
		return geometry.Mesh{}, err
	}
	position := vecOr(mc.Position, core.Vec3{})

	kind := mc.Type
	if kind == "" {
		kind = "cube"
		if len(mc.Triangles) > 0 {
			kind = "triangles"
		}
	}

	var mesh geometry.Mesh
	switch kind {
	case "cube":
		mesh = geometry.NewCubeMesh(position, floatOr(mc.Size, 1), mat)
	case "triangles":
		mesh, err = trianglesMesh(position, mc.Triangles, mat)
	default:
		return geometry.Mesh{}, fmt.Errorf("unknown mesh type %q", mc.Type)
	}
	if err != nil {
		return geometry.Mesh{}, err
	}

	mesh.Rotation = vecOr(mc.Rotation, mesh.Rotation)
	mesh.Scale = vecOr(mc.Scale, mesh.Scale)
	if mc.Smooth {
		mesh.SetSmoothShading()
	}
	return mesh, nil
}

func trianglesMesh(position core.Vec3, triangles [][]Vec3Config, mat material.Material) (geometry.Mesh, error) {
	if len(triangles) == 0 {
		return geometry.Mesh{}, errors.New("triangle mesh has no triangles")
	}
	mesh := geometry.NewMesh(position, mat)
	for i, tri := range triangles {
		if len(tri) != 3 {
			return geometry.Mesh{}, fmt.Errorf("triangle %d has %d vertices", i, len(tri))
		}
		mesh.AddTriangle(tri[0].Vec3(), tri[1].Vec3(), tri[2].Vec3())
	}
	return mesh, nil
}

func buildLight(lc LightConfig) (lights.Light, error) {
	shape, err := lights.ParseLightShape(lc.Type)
	if err != nil {
		return lights.Light{}, err
	}
	position := vecOr(lc.Position, core.NewVec3(0, 5, 0))
	color := vecOr(lc.Color, core.NewVec3(1, 1, 1))
	intensity := floatOr(lc.Intensity, 1)

	switch shape {
	case lights.ShapeDisk:
		return lights.NewDiskLight(position, color, intensity, lc.Radius), nil
	case lights.ShapeRectangle:
		return lights.NewRectangleLight(position,
			vecOr(lc.Width, core.NewVec3(1, 0, 0)),
			vecOr(lc.Height, core.NewVec3(0, 0, 1)),
			color, intensity), nil
	default:
		return lights.NewPointLight(position, color, intensity), nil
	}
}

func buildTrack(tc TrackConfig) *animation.Track {
	track := animation.NewTrack()
	for _, kc := range tc.Keyframes {
		track.AddKeyframe(animation.Keyframe{
			Time:     kc.Time,
			Position: vecOr(kc.Position, core.Vec3{}),
			Rotation: vecOr(kc.Rotation, core.Vec3{}),
			Scale:    vecOr(kc.Scale, core.NewVec3(1, 1, 1)),
		})
	}
	return track
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func vecOr(v *Vec3Config, def core.Vec3) core.Vec3 {
	if v == nil {
		return def
	}
	return v.Vec3()
}
