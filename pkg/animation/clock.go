package animation

// Clock tracks the current animation frame and time
type Clock struct {
	CurrentTime float64
	Frame       int
	FrameRate   float64
	TimeStep    float64
}

// NewClock creates a clock at frame 0. A non-positive frame rate falls back to 24.
func NewClock(frameRate float64) Clock {
	if frameRate <= 0 {
		frameRate = 24
	}
	return Clock{FrameRate: frameRate, TimeStep: 1 / frameRate}
}

// Advance moves the clock forward by one frame
func (c *Clock) Advance() {
	c.Frame++
	c.CurrentTime += c.TimeStep
}

// AtFrame returns a copy of the clock positioned at the given frame
func (c Clock) AtFrame(frame int) Clock {
	c.Frame = frame
	c.CurrentTime = float64(frame) * c.TimeStep
	return c
}
