package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func nan() float64 { return math.NaN() }

func inf() float64 { return math.Inf(1) }

func mustScale(t *testing.T, factor float64) Decorator {
	t.Helper()
	d, err := WithRangeScale(factor)
	require.NoError(t, err)
	return d
}

func mustProbability(t *testing.T, curve ProbabilityCurve, seed uint64) Decorator {
	t.Helper()
	d, err := WithProbability(curve, newRand(seed))
	require.NoError(t, err)
	return d
}

func constant(t *testing.T, p float64) ProbabilityCurve {
	t.Helper()
	c, err := ConstantProbability(p)
	require.NoError(t, err)
	return c
}

// targets spread from inside to well outside a range of 10 around the origin.
func spreadTargets(t *testing.T) []*BaseAgent {
	var out []*BaseAgent
	for x := 0.0; x <= 20; x += 0.5 {
		out = append(out, mustAgent(t, x, 0, 0, 0, 0))
	}
	return out
}

func TestWithRangeScale_Validation(t *testing.T) {
	for _, f := range []float64{-0.1, nan(), inf()} {
		d, err := WithRangeScale(f)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, ErrInvalidScale)
	}
	_, err := WithRangeScale(0)
	assert.NoError(t, err)
}

func TestConstantProbability_Validation(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01, nan()} {
		c, err := ConstantProbability(p)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrInvalidProbability)
	}
}

func TestWithProbability_Validation(t *testing.T) {
	_, err := WithProbability(nil, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidProbability)

	_, err = WithProbability(LinearFalloff, nil)
	assert.Error(t, err)
}

func TestRangeScale_UnitFactorIsIdentity(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	decorated := Decorate(observer, mustScale(t, 1.0))

	for _, target := range spreadTargets(t) {
		assert.Equal(t, observer.Detect(target), decorated.Detect(target), "target at %v", target.Position())
	}
}

func TestRangeScale_Degrades(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	decorated := Decorate(observer, mustScale(t, 0.5))

	assert.True(t, decorated.Detect(mustAgent(t, 5, 0, 0, 0, 0)))
	assert.False(t, decorated.Detect(mustAgent(t, 5.5, 0, 0, 0, 0)))
	assert.True(t, observer.Detect(mustAgent(t, 5.5, 0, 0, 0, 0)))
}

func TestRangeScale_CannotWiden(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	decorated := Decorate(observer, mustScale(t, 3))

	assert.False(t, decorated.Detect(mustAgent(t, 12, 0, 0, 0, 0)))
	assert.True(t, decorated.Detect(mustAgent(t, 10, 0, 0, 0, 0)))
}

func TestRangeScale_StackedScalesCompound(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	decorated := Decorate(observer, mustScale(t, 0.5), mustScale(t, 0.5))

	assert.Equal(t, 2.5, decorated.DetectionRange())
	assert.True(t, decorated.Detect(mustAgent(t, 2.5, 0, 0, 0, 0)))
	assert.False(t, decorated.Detect(mustAgent(t, 4, 0, 0, 0, 0)))
}

func TestRangeScale_ReportsEffectiveRange(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)

	assert.Equal(t, 10.0, Decorate(observer, mustScale(t, 3)).DetectionRange())
	assert.Equal(t, 0.0, Decorate(observer, mustScale(t, 0)).DetectionRange())
}

func TestProbabilistic_FalloffFollowsScaledRange(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	decorated := Decorate(observer, mustScale(t, 0.5), mustProbability(t, LinearFalloff, 13))

	// the scaled boundary at 5 has probability 0
	edge := mustAgent(t, 5, 0, 0, 0, 0)
	for i := 0; i < 200; i++ {
		assert.False(t, decorated.Detect(edge))
	}
	assert.True(t, decorated.Detect(mustAgent(t, 0, 0, 0, 0, 0)))
}

func TestProbabilistic_Extremes(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	always := Decorate(observer, mustProbability(t, constant(t, 1), 1))
	never := Decorate(observer, mustProbability(t, constant(t, 0), 2))

	for _, target := range spreadTargets(t) {
		assert.Equal(t, observer.Detect(target), always.Detect(target))
		assert.False(t, never.Detect(target))
	}
}

func TestProbabilistic_LinearFalloff(t *testing.T) {
	assert.Equal(t, 1.0, LinearFalloff(0, 10))
	assert.InDelta(t, 0.25, LinearFalloff(7.5, 10), 1e-12)
	assert.Equal(t, 0.0, LinearFalloff(10, 10))
	assert.Equal(t, 1.0, LinearFalloff(0, 0))

	observer := mustAgent(t, 0, 0, 0, 0, 10)
	decorated := Decorate(observer, mustProbability(t, LinearFalloff, 42))

	// probability 1 at zero distance, 0 at the boundary
	assert.True(t, decorated.Detect(mustAgent(t, 0, 0, 0, 0, 0)))
	assert.False(t, decorated.Detect(mustAgent(t, 10, 0, 0, 0, 0)))

	near := mustAgent(t, 1, 0, 0, 0, 0)
	far := mustAgent(t, 9, 0, 0, 0, 0)
	nearHits, farHits := 0, 0
	for i := 0; i < 2000; i++ {
		if decorated.Detect(near) {
			nearHits++
		}
		if decorated.Detect(far) {
			farHits++
		}
	}
	assert.Greater(t, nearHits, farHits)
	assert.InDelta(t, 1800, nearHits, 150)
	assert.InDelta(t, 200, farHits, 150)
}

func TestProbabilistic_ClampsCurve(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	target := mustAgent(t, 1, 0, 0, 0, 0)

	high := Decorate(observer, mustProbability(t, func(float64, float64) float64 { return 7 }, 3))
	low := Decorate(observer, mustProbability(t, func(float64, float64) float64 { return -2 }, 4))
	for i := 0; i < 100; i++ {
		assert.True(t, high.Detect(target))
		assert.False(t, low.Detect(target))
	}
}

func TestProbabilistic_DeterministicWithSeed(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	target := mustAgent(t, 5, 0, 0, 0, 0)
	a := Decorate(observer, mustProbability(t, constant(t, 0.5), 99))
	b := Decorate(observer, mustProbability(t, constant(t, 0.5), 99))

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Detect(target), b.Detect(target))
	}
}

func TestDecoratorChain_AttenuationOnly(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	chains := map[string][]Decorator{
		"scale then probability": {mustScale(t, 2), mustProbability(t, constant(t, 1), 5)},
		"probability then scale": {mustProbability(t, LinearFalloff, 6), mustScale(t, 1.5)},
		"stacked scales":         {mustScale(t, 4), mustScale(t, 1), mustScale(t, 0.9)},
		"stacked probabilities":  {mustProbability(t, constant(t, 1), 7), mustProbability(t, constant(t, 0.7), 8)},
	}

	for name, decs := range chains {
		t.Run(name, func(t *testing.T) {
			decorated := Decorate(observer, decs...)
			for _, target := range spreadTargets(t) {
				if !observer.Detect(target) {
					assert.False(t, decorated.Detect(target), "fabricated detection at %v", target.Position())
				}
			}
		})
	}
}

func TestDecoratorChain_Order(t *testing.T) {
	observer := mustAgent(t, 0, 0, 0, 0, 10)
	target := mustAgent(t, 8, 0, 0, 0, 0)

	var calls []string
	trace := func(name string) Decorator {
		return func(inner Detector) Detector {
			return tracingDetector{Detector: inner, name: name, calls: &calls}
		}
	}

	Decorate(observer, trace("inner"), trace("outer")).Detect(target)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestDecorate_PreservesGeometryAndState(t *testing.T) {
	observer := mustAgent(t, 2, 3, 1, 4, 10)
	before := observer.String()
	decorated := Decorate(observer, mustScale(t, 0.5), mustProbability(t, constant(t, 0.5), 11), nil)

	assert.Equal(t, observer.Position(), decorated.Position())
	assert.Equal(t, 5.0, decorated.DetectionRange())
	assert.Equal(t, 10.0, observer.DetectionRange())
	for _, target := range spreadTargets(t) {
		decorated.Detect(target)
	}
	assert.Equal(t, before, observer.String())
}

type tracingDetector struct {
	Detector
	name  string
	calls *[]string
}

func (d tracingDetector) Detect(other Agent) bool {
	*d.calls = append(*d.calls, d.name)
	return d.Detector.Detect(other)
}
