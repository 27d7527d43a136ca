package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"maneuver-sim/internal/common"
)

// Detector is the detection capability of an agent. Every Agent is a Detector,
// and every decorator both consumes and exposes one, so decorators chain in any order.
type Detector interface {
	Position() common.Vector
	DetectionRange() float64
	Detect(other Agent) bool
}

// Decorator wraps a Detector with an additional detection policy.
// A decorator may only turn a positive detection negative, never the reverse.
type Decorator func(inner Detector) Detector

// Decorate applies decorators to d, innermost first: Decorate(d, b, a) evaluates
// b's policy before a's.
func Decorate(d Detector, decorators ...Decorator) Detector {
	for _, dec := range decorators {
		if dec == nil {
			continue
		}
		d = dec(d)
	}
	return d
}

// rangeScaled narrows detection to a fixed fraction of the wrapped range.
// It reports the narrowed range, so stacked scales compound and decorators
// wrapping it see the effective range.
type rangeScaled struct {
	Detector
	factor float64
}

// WithRangeScale returns a deterministic decorator comparing distance against
// factor * DetectionRange. A factor of 1 leaves detection unchanged; factors above 1
// cannot widen what the wrapped detector already rejects.
func WithRangeScale(factor float64) (Decorator, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("range scale %v: %w", factor, ErrInvalidScale)
	}
	return func(inner Detector) Detector {
		return &rangeScaled{Detector: inner, factor: factor}
	}, nil
}

// DetectionRange is the wrapped range times the factor, capped at the wrapped range.
func (r *rangeScaled) DetectionRange() float64 {
	return min(r.factor, 1) * r.Detector.DetectionRange()
}

func (r *rangeScaled) Detect(other Agent) bool {
	if !r.Detector.Detect(other) {
		return false
	}
	return common.Distance(r.Position(), other.Position()) <= r.DetectionRange()
}

// ProbabilityCurve maps a distance and the sensor's detection range to a
// probability of detection. Values outside [0, 1] are clamped.
type ProbabilityCurve func(distance, detectionRange float64) float64

// ConstantProbability returns a curve detecting with probability p at any distance.
func ConstantProbability(p float64) (ProbabilityCurve, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("probability %v: %w", p, ErrInvalidProbability)
	}
	return func(float64, float64) float64 { return p }, nil
}

// LinearFalloff decays linearly from 1 at zero distance to 0 at the detection range.
func LinearFalloff(distance, detectionRange float64) float64 {
	if detectionRange <= 0 {
		return 1
	}
	return 1 - distance/detectionRange
}

// probabilistic vetoes a positive detection unless a uniform draw falls below the curve.
type probabilistic struct {
	Detector
	curve ProbabilityCurve
	rng   *rand.Rand
}

// WithProbability returns a stochastic decorator drawing from rng.
// The draw only happens when the wrapped detector reports a detection.
func WithProbability(curve ProbabilityCurve, rng *rand.Rand) (Decorator, error) {
	if curve == nil {
		return nil, fmt.Errorf("nil probability curve: %w", ErrInvalidProbability)
	}
	if rng == nil {
		return nil, fmt.Errorf("stochastic decorator requires a random source")
	}
	return func(inner Detector) Detector {
		return &probabilistic{Detector: inner, curve: curve, rng: rng}
	}, nil
}

func (p *probabilistic) Detect(other Agent) bool {
	if !p.Detector.Detect(other) {
		return false
	}
	distance := common.Distance(p.Position(), other.Position())
	return p.rng.Float64() < clamp01(p.curve(distance, p.DetectionRange()))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
