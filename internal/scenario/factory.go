package scenario

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"maneuver-sim/internal/simulation"
)

// Agent variants.
const (
	VariantPlain   = "plain"
	VariantSpecial = "special"
)

// ProbabilityLinear selects linear falloff for the stochastic decorator.
const ProbabilityLinear = "linear"

var ErrUnknownVariant = errors.New("unknown agent variant")

// Factory builds agents and their detection decorators from descriptors.
type Factory struct {
	// DefaultVariant is used for descriptors that leave Variant empty.
	DefaultVariant string
	// Rand feeds stochastic decorators. Required only when a descriptor sets Probability.
	Rand *rand.Rand
}

// Build creates the agent described by d and its decorator chain, innermost first:
// range scaling, then probability.
func (f Factory) Build(d Descriptor) (simulation.Agent, []simulation.Decorator, error) {
	base, err := simulation.NewAgent(d.X, d.Y, d.Heading, d.Speed, d.DetectionRange)
	if err != nil {
		return nil, nil, err
	}

	variant := d.Variant
	if variant == "" {
		variant = f.DefaultVariant
	}
	var agent simulation.Agent
	switch strings.ToLower(variant) {
	case "", VariantPlain:
		agent = base
	case VariantSpecial:
		agent = simulation.NewSpecialAgent(base)
	default:
		return nil, nil, fmt.Errorf("%q: %w", variant, ErrUnknownVariant)
	}

	var decorators []simulation.Decorator
	if d.RangeScale != nil {
		dec, err := simulation.WithRangeScale(*d.RangeScale)
		if err != nil {
			return nil, nil, err
		}
		decorators = append(decorators, dec)
	}
	if d.Probability != "" {
		curve, err := probabilityCurve(d.Probability)
		if err != nil {
			return nil, nil, err
		}
		dec, err := simulation.WithProbability(curve, f.Rand)
		if err != nil {
			return nil, nil, err
		}
		decorators = append(decorators, dec)
	}
	return agent, decorators, nil
}

// Register builds every descriptor and registers the result with m in order.
func (f Factory) Register(m *simulation.Manager, descs []Descriptor) ([]simulation.Agent, error) {
	agents := make([]simulation.Agent, 0, len(descs))
	for i, d := range descs {
		agent, decorators, err := f.Build(d)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		if _, err := m.RegisterPublisher(agent, decorators...); err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

func probabilityCurve(raw string) (simulation.ProbabilityCurve, error) {
	if strings.EqualFold(raw, ProbabilityLinear) {
		return simulation.LinearFalloff, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("probability %q: %w", raw, simulation.ErrInvalidProbability)
	}
	return simulation.ConstantProbability(p)
}

// NewRand returns a PCG source for stochastic decorators. A zero seed seeds from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}
