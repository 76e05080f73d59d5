// Package animation samples keyframed poses over time.
package animation

import (
	"math"
	"sort"

	"github.com/df07/go-animated-raytracer/pkg/core"
)

// minSegmentDuration guards the interpolation fraction against zero-length segments
const minSegmentDuration = 1e-9

// Keyframe is a time-stamped pose. Rotation holds Euler angles in radians.
// Velocity is the linear rate of position change, used for motion blur.
type Keyframe struct {
	Time     float64
	Position core.Vec3
	Rotation core.Vec3
	Scale    core.Vec3
	Velocity core.Vec3
}

// Track is a sequence of keyframes kept sorted by ascending time.
// The zero value is an empty track ready for use.
type Track struct {
	keyframes []Keyframe
	duration  float64
}

// NewTrack creates a track from keyframes in any order
func NewTrack(keyframes ...Keyframe) *Track {
	t := &Track{}
	for _, kf := range keyframes {
		t.AddKeyframe(kf)
	}
	return t
}

// AddKeyframe inserts kf after any keyframes with a time less than or equal
// to its own and grows the duration to cover it.
func (t *Track) AddKeyframe(kf Keyframe) {
	i := sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time > kf.Time
	})
	t.keyframes = append(t.keyframes, Keyframe{})
	copy(t.keyframes[i+1:], t.keyframes[i:])
	t.keyframes[i] = kf
	t.duration = max(t.duration, kf.Time)
}

// Duration returns the time of the latest keyframe ever added
func (t *Track) Duration() float64 {
	return t.duration
}

// Len returns the number of keyframes
func (t *Track) Len() int {
	return len(t.keyframes)
}

// Keyframes returns a copy of the keyframes in time order
func (t *Track) Keyframes() []Keyframe {
	out := make([]Keyframe, len(t.keyframes))
	copy(out, t.keyframes)
	return out
}

// Interpolate samples the track at the given time. The track loops with
// period Duration, so the returned Time is the wrapped time. An empty track
// yields the zero keyframe and a single keyframe is returned unchanged.
// Position, rotation and scale are blended with smoothstep easing; velocity
// is the un-eased rate across the segment.
//
// When the first keyframe sits at time 0 and the last at Duration, both
// describe the same instant of the loop and the first one wins.
func (t *Track) Interpolate(time float64) Keyframe {
	n := len(t.keyframes)
	if n == 0 {
		return Keyframe{}
	}
	if n == 1 {
		return t.keyframes[0]
	}

	target := 0.0
	if t.duration > 0 {
		target = math.Mod(time, t.duration)
		if target < 0 {
			target += t.duration
		}
	}

	next := n
	for i, kf := range t.keyframes {
		if kf.Time >= target {
			next = i
			break
		}
	}
	if next == 0 && t.keyframes[0].Time == target {
		// Exactly on the first keyframe: start its segment instead of finishing the wrap
		next = 1
	}

	var prev Keyframe
	var nextKf Keyframe
	if next == 0 || next == n {
		// Before the first keyframe or past the last: the segment wraps around
		prev = t.keyframes[n-1]
		nextKf = t.keyframes[0]
	} else {
		prev = t.keyframes[next-1]
		nextKf = t.keyframes[next]
	}

	segment := nextKf.Time - prev.Time
	if segment < 0 {
		segment += t.duration
	}
	if segment < minSegmentDuration {
		segment = 1
	}

	elapsed := target - prev.Time
	if elapsed < 0 {
		elapsed += t.duration
	}
	u := smoothstep(clamp01(elapsed / segment))

	return Keyframe{
		Time:     target,
		Position: prev.Position.Lerp(nextKf.Position, u),
		Rotation: prev.Rotation.Lerp(nextKf.Rotation, u),
		Scale:    prev.Scale.Lerp(nextKf.Scale, u),
		Velocity: nextKf.Position.Subtract(prev.Position).Multiply(1 / segment),
	}
}

func smoothstep(u float64) float64 {
	return u * u * (3 - 2*u)
}

func clamp01(x float64) float64 {
	return max(0, min(1, x))
}
