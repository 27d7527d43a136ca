package common

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector is a point or displacement in the 2-D simulation plane.
type Vector = r2.Vec

// NewVector creates a vector from its two coordinates.
func NewVector(x, y float64) Vector {
	return r2.Vec{X: x, Y: y}
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vector) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Direction returns the unit vector pointing along heading (radians, 0 = +X, counter-clockwise).
func Direction(heading float64) Vector {
	return r2.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
}

// Displacement returns how far something moving at speed along heading travels in deltaTime.
func Displacement(heading, speed, deltaTime float64) Vector {
	return r2.Scale(speed*deltaTime, Direction(heading))
}

// NormalizeHeading maps any finite angle into [0, 2π).
func NormalizeHeading(heading float64) float64 {
	h := math.Mod(heading, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	// math.Mod of a tiny negative value can round up to exactly 2π
	if h >= 2*math.Pi {
		h = 0
	}
	return h
}

// IsFinite reports whether both coordinates are finite numbers.
func IsFinite(v Vector) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// FormatVector returns a string representation of the vector.
func FormatVector(v Vector) string {
	return fmt.Sprintf("[%.3f, %.3f]", v.X, v.Y)
}
