package simulation

import (
	"fmt"
	"math"

	"maneuver-sim/internal/common"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// BaseAgent is a point agent moving in a straight line at constant heading and speed.
type BaseAgent struct {
	id             string
	position       common.Vector
	heading        float64 // radians, [0, 2π)
	speed          float64 // units per tick
	detectionRange float64
}

// NewAgent creates a new agent at (x, y).
// Heading is given in radians and normalized; speed and detection range must be non-negative.
func NewAgent(x, y, heading, speed, detectionRange float64) (*BaseAgent, error) {
	pos := common.NewVector(x, y)
	if !common.IsFinite(pos) {
		return nil, fmt.Errorf("agent at (%v, %v): %w", x, y, ErrInvalidPosition)
	}
	if math.IsNaN(heading) || math.IsInf(heading, 0) {
		return nil, fmt.Errorf("agent heading %v: %w", heading, ErrInvalidHeading)
	}
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("agent speed %v: %w", speed, ErrInvalidSpeed)
	}
	if detectionRange < 0 || math.IsNaN(detectionRange) || math.IsInf(detectionRange, 0) {
		return nil, fmt.Errorf("agent detection range %v: %w", detectionRange, ErrInvalidRange)
	}
	return &BaseAgent{
		id:             fmt.Sprintf("agent-%s", uuid.NewString()[:8]),
		position:       pos,
		heading:        common.NormalizeHeading(heading),
		speed:          speed,
		detectionRange: detectionRange,
	}, nil
}

// ID returns the unique identifier of the agent.
func (a *BaseAgent) ID() string {
	return a.id
}

// Position returns the current position of the agent.
func (a *BaseAgent) Position() common.Vector {
	return a.position
}

func (a *BaseAgent) Heading() float64 {
	return a.heading
}

func (a *BaseAgent) Speed() float64 {
	return a.speed
}

func (a *BaseAgent) DetectionRange() float64 {
	return a.detectionRange
}

// Advance moves the agent along its heading. Heading and speed stay constant.
func (a *BaseAgent) Advance(deltaTime float64) {
	if a.speed == 0 {
		return
	}
	a.position = r2.Add(a.position, common.Displacement(a.heading, a.speed, deltaTime))
	a.heading = common.NormalizeHeading(a.heading)
}

// Detect reports whether other lies within the detection range, boundary included.
func (a *BaseAgent) Detect(other Agent) bool {
	return common.Distance(a.position, other.Position()) <= a.detectionRange
}

// String renders the state as "x,y,heading,speed,range".
func (a *BaseAgent) String() string {
	return fmt.Sprintf("%.3f,%.3f,%.3f,%.3f,%.3f",
		a.position.X, a.position.Y, a.heading, a.speed, a.detectionRange)
}
