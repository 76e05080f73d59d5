// Package lights describes point and area light sources and how they are sampled.
package lights

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-animated-raytracer/pkg/core"
)

// LightShape selects the footprint a light emits from
type LightShape int

const (
	ShapePoint LightShape = iota
	ShapeDisk
	ShapeRectangle
)

// String returns the scene-file name of the shape
func (s LightShape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeDisk:
		return "disk"
	case ShapeRectangle:
		return "rectangle"
	default:
		return fmt.Sprintf("LightShape(%d)", int(s))
	}
}

// ParseLightShape maps a scene-file name to a light shape. "area" and
// "circular" name a disk.
func ParseLightShape(name string) (LightShape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "point":
		return ShapePoint, nil
	case "disk", "disc", "area", "circular":
		return ShapeDisk, nil
	case "rectangle", "rectangular", "rect":
		return ShapeRectangle, nil
	}
	return ShapePoint, fmt.Errorf("unknown light type %q", name)
}

// Light is a point, disk or rectangle emitter. Disks lie in the XZ plane
// around Position; rectangles span Width and Height centered on Position.
type Light struct {
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64
	Shape     LightShape
	Radius    float64
	Width     core.Vec3
	Height    core.Vec3
}

// LightSample is a position on a light as seen from a shading point
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Direction core.Vec3 // Unit direction from shading point to light
	Distance  float64   // Distance to light
}

// NewPointLight creates a light that emits from a single position
func NewPointLight(position, color core.Vec3, intensity float64) Light {
	return Light{Position: position, Color: color, Intensity: intensity, Shape: ShapePoint}
}

// NewDiskLight creates a horizontal disk light of the given radius
func NewDiskLight(position, color core.Vec3, intensity, radius float64) Light {
	return Light{Position: position, Color: color, Intensity: intensity, Shape: ShapeDisk, Radius: radius}
}

// NewRectangleLight creates a parallelogram light spanned by width and height
func NewRectangleLight(position, width, height, color core.Vec3, intensity float64) Light {
	return Light{
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Shape:     ShapeRectangle,
		Width:     width,
		Height:    height,
	}
}

// IsArea reports whether the light has a footprint worth multiple shadow samples
func (l *Light) IsArea() bool {
	switch l.Shape {
	case ShapeDisk:
		return l.Radius > 0
	case ShapeRectangle:
		return l.Width.LengthSquared() > 0 || l.Height.LengthSquared() > 0
	default:
		return false
	}
}

// SamplePosition maps a sample in [0,1)^2 onto the light's footprint.
// Point lights always return their position.
func (l *Light) SamplePosition(sample core.Vec2) core.Vec3 {
	switch l.Shape {
	case ShapeDisk:
		r := l.Radius * math.Sqrt(sample.X)
		theta := 2 * math.Pi * sample.Y
		return l.Position.Add(core.NewVec3(r*math.Cos(theta), 0, r*math.Sin(theta)))
	case ShapeRectangle:
		return l.Position.
			Add(l.Width.Multiply(sample.X - 0.5)).
			Add(l.Height.Multiply(sample.Y - 0.5))
	default:
		return l.Position
	}
}

// Sample picks a position on the light and describes it relative to point
func (l *Light) Sample(point core.Vec3, sample core.Vec2) LightSample {
	p := l.SamplePosition(sample)
	toLight := p.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{Point: p}
	}
	return LightSample{
		Point:     p,
		Direction: toLight.Multiply(1.0 / distance),
		Distance:  distance,
	}
}
