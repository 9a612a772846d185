package inequality

import (
	"github.com/rs/zerolog"
)

// Calculator wraps the index functions with an optional trace sink. The zero
// value is not usable; build one with NewCalculator.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a calculator that traces intermediate values at debug
// level. Pass zerolog.Nop() to disable tracing.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "inequality").Logger(),
	}
}

// Compute runs the index named by kind over values.
func (c *Calculator) Compute(kind Kind, values []float64, params Params) (float64, error) {
	if err := kind.Validate(); err != nil {
		return 0, err
	}

	value, err := Compute(kind, values, params)
	if err != nil {
		c.log.Debug().Err(err).Str("kind", kind.String()).Int("n", len(values)).Msg("Index computation failed")
		return 0, err
	}

	c.log.Debug().
		Str("kind", kind.String()).
		Int("n", len(values)).
		Float64("value", value).
		Msg("Index computed")

	return value, nil
}

// Lorentz builds a Lorentz curve, tracing the sorted pairs.
func (c *Calculator) Lorentz(population, income []float64, wantGini bool) (*LorentzCurve, error) {
	if e := c.log.Debug(); e.Enabled() {
		if groups, err := sortedGroups(population, income); err == nil {
			e.Interface("sorted", groups).Msg("Lorentz input sorted by income")
		} else {
			e.Discard()
		}
	}

	curve, err := Lorentz(population, income, wantGini)
	if err != nil {
		return nil, err
	}

	event := c.log.Debug().
		Floats64("population_shares", curve.Population).
		Floats64("income_shares", curve.Income)
	if curve.Gini != nil {
		event = event.Float64("gini", *curve.Gini)
	}
	event.Msg("Lorentz curve built")

	return curve, nil
}
