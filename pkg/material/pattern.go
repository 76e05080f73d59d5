package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-animated-raytracer/pkg/core"
)

// PatternKind selects the procedural pattern evaluated by a Pattern
type PatternKind int

const (
	PatternSolid PatternKind = iota
	PatternCheckerboard
	PatternStripe
	PatternGradient
	PatternPerlin
	PatternMarble
	PatternWood
)

var patternNames = [...]string{
	PatternSolid:        "solid",
	PatternCheckerboard: "checkerboard",
	PatternStripe:       "stripe",
	PatternGradient:     "gradient",
	PatternPerlin:       "perlin",
	PatternMarble:       "marble",
	PatternWood:         "wood",
}

// String returns the scene-file name of the pattern kind
func (k PatternKind) String() string {
	if k < 0 || int(k) >= len(patternNames) {
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
	return patternNames[k]
}

// PatternKinds lists every pattern kind in declaration order
func PatternKinds() []PatternKind {
	kinds := make([]PatternKind, len(patternNames))
	for i := range patternNames {
		kinds[i] = PatternKind(i)
	}
	return kinds
}

// ParsePatternKind maps a scene-file name to a pattern kind. "perlin_noise"
// and "checker" are accepted as aliases.
func ParsePatternKind(name string) (PatternKind, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "solid":
		return PatternSolid, nil
	case "checker":
		return PatternCheckerboard, nil
	case "perlin_noise", "noise":
		return PatternPerlin, nil
	default:
		for i, known := range patternNames {
			if n == known {
				return PatternKind(i), nil
			}
		}
	}
	return PatternSolid, fmt.Errorf("unknown pattern %q", name)
}

// Pattern is a procedural color defined over 3D space
type Pattern struct {
	Kind   PatternKind
	Scale  float64
	Color1 core.Vec3
	Color2 core.Vec3
}

// NewSolidPattern returns a pattern that is color everywhere
func NewSolidPattern(color core.Vec3) Pattern {
	return Pattern{Kind: PatternSolid, Scale: 1, Color1: color, Color2: color}
}

// NewPattern creates a two-color pattern
func NewPattern(kind PatternKind, scale float64, color1, color2 core.Vec3) Pattern {
	return Pattern{Kind: kind, Scale: scale, Color1: color1, Color2: color2}
}

// Evaluate returns the pattern color at point. A non-positive scale is treated as 1.
func (p Pattern) Evaluate(point core.Vec3) core.Vec3 {
	if p.Kind == PatternSolid {
		return p.Color1
	}

	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	q := point.Multiply(scale)

	switch p.Kind {
	case PatternCheckerboard:
		sum := int64(math.Floor(q.X)) + int64(math.Floor(q.Y)) + int64(math.Floor(q.Z))
		if sum&1 == 0 {
			return p.Color1
		}
		return p.Color2
	case PatternStripe:
		if int64(math.Floor(q.X))&1 == 0 {
			return p.Color1
		}
		return p.Color2
	case PatternGradient:
		return p.blend(q.X - math.Floor(q.X))
	case PatternPerlin:
		return p.blend(0.5 * (Noise(q) + 1))
	case PatternMarble:
		return p.blend(0.5 * (1 + math.Sin(q.X+10*Turbulence(q, 6))))
	case PatternWood:
		rings := math.Hypot(q.X, q.Z) + 0.35*Noise(q)
		return p.blend(rings - math.Floor(rings))
	default:
		return p.Color1
	}
}

func (p Pattern) blend(t float64) core.Vec3 {
	return p.Color1.Lerp(p.Color2, max(0, min(1, t)))
}
