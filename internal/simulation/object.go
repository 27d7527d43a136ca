package simulation

import "maneuver-sim/internal/common"

// Agent defines the contract every participant of the simulation satisfies.
// Code holding an Agent must not depend on which concrete variant is bound.
type Agent interface {
	// ID returns the unique identifier of the agent.
	ID() string
	// Position returns the current position of the agent.
	Position() common.Vector
	// Heading returns the current heading in radians, normalized to [0, 2π).
	Heading() float64
	// Speed returns the speed in units per tick.
	Speed() float64
	// DetectionRange returns the maximum distance at which the agent senses others.
	DetectionRange() float64
	// Advance moves the agent along its heading for deltaTime.
	Advance(deltaTime float64)
	// Detect reports whether other lies within the agent's detection range.
	Detect(other Agent) bool
	// String renders the current state as a single stable line.
	String() string
}
