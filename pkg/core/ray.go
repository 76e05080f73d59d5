package core

// Ray is a half-line with a unit direction, a sample time used for motion
// blur and a wavelength offset used for the dispersion approximation.
// Rays are values; the With* helpers return modified copies.
type Ray struct {
	Origin           Vec3
	Direction        Vec3
	Time             float64
	WavelengthOffset float64
}

// NewRay creates a ray with a normalized direction
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// NewRayAt creates a ray with a normalized direction at the given sample time
func NewRayAt(origin, direction Vec3, time float64) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), Time: time}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// WithTime returns a copy of the ray at a different sample time
func (r Ray) WithTime(time float64) Ray {
	r.Time = time
	return r
}

// WithWavelengthOffset returns a copy of the ray carrying a wavelength offset
func (r Ray) WithWavelengthOffset(offset float64) Ray {
	r.WavelengthOffset = offset
	return r
}

// Spawn creates a secondary ray that inherits time and wavelength offset
func (r Ray) Spawn(origin, direction Vec3) Ray {
	return Ray{
		Origin:           origin,
		Direction:        direction.Normalize(),
		Time:             r.Time,
		WavelengthOffset: r.WavelengthOffset,
	}
}
