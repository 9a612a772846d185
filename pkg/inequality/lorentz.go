package inequality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// LorentzCurve holds cumulative population and income shares, both starting
// at 0 and ending at 1. Gini is set only when requested.
type LorentzCurve struct {
	Population []float64 `json:"population" msgpack:"population"`
	Income     []float64 `json:"income" msgpack:"income"`
	Gini       *float64  `json:"gini,omitempty" msgpack:"gini,omitempty"`
}

// Group is one (population count, shared income) pair of a weighted population.
type Group struct {
	Population float64 `json:"population"`
	Income     float64 `json:"income"`
}

// Lorentz builds Lorentz curve coordinates for population[i] people each
// earning income[i]. Pairs are stably sorted by income. When wantGini is set,
// the population is expanded into a flat sorted array and its Gini coefficient
// is returned as well; this requires integer population counts.
func Lorentz(population, income []float64, wantGini bool) (*LorentzCurve, error) {
	groups, err := sortedGroups(population, income)
	if err != nil {
		return nil, err
	}

	popShares := make([]float64, len(groups))
	incShares := make([]float64, len(groups))
	popTotal := floats.Sum(population)
	incTotal := floats.Sum(income)
	for i, g := range groups {
		popShares[i] = g.Population / popTotal
		incShares[i] = g.Income / incTotal
	}

	curve := &LorentzCurve{
		Population: cumulative(popShares),
		Income:     cumulative(incShares),
	}

	if !wantGini {
		return curve, nil
	}

	g, err := groupedGini(groups)
	if err != nil {
		return nil, err
	}
	curve.Gini = &g

	return curve, nil
}

// sortedGroups validates the parallel arrays and returns them paired and
// stably sorted by income.
func sortedGroups(population, income []float64) ([]Group, error) {
	if len(population) != len(income) {
		return nil, DomainError("lorentz", "population has %d entries, income has %d", len(population), len(income))
	}
	if err := checkFinite("lorentz", population); err != nil {
		return nil, err
	}
	if err := checkFinite("lorentz", income); err != nil {
		return nil, err
	}

	groups := make([]Group, len(population))
	for i := range population {
		if population[i] <= 0 {
			return nil, DomainError("lorentz", "population at position %d is not positive: %v", i, population[i])
		}
		if income[i] <= 0 {
			return nil, DomainError("lorentz", "income at position %d is not positive: %v", i, income[i])
		}
		groups[i] = Group{Population: population[i], Income: income[i]}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Income < groups[j].Income
	})

	return groups, nil
}

// cumulative returns the running sum of shares prefixed with 0. The last
// element is pinned to 1 so rounding never leaves the curve short of the end.
func cumulative(shares []float64) []float64 {
	out := make([]float64, len(shares)+1)
	floats.CumSum(out[1:], shares)
	out[len(out)-1] = 1
	return out
}

// groupedGini is the Gini coefficient of the population in which every group
// contributes Population people earning Income. Pairs inside a group differ by
// zero, so only cross-group pairs count, each weighted by p_a*p_b:
//
//	G = sum_{a<b} p_a*p_b*|x_a-x_b| / (N^2 * mean)
//
// This equals the pairwise formula over the expanded population without
// materializing it, so huge counts cost nothing extra.
func groupedGini(groups []Group) (float64, error) {
	n, weighted := 0.0, 0.0
	for i, g := range groups {
		if g.Population != math.Trunc(g.Population) {
			return 0, DomainError("lorentz", "population count at sorted position %d is not an integer: %v", i, g.Population)
		}
		n += g.Population
		weighted += g.Population * g.Income
	}
	// N^2 * mean
	denom := n * weighted
	if denom == 0 || math.IsInf(denom, 0) || math.IsNaN(denom) {
		return 0, DomainError("lorentz", "population total %v is out of range", n)
	}

	total := 0.0
	for a := 0; a < len(groups)-1; a++ {
		for b := a + 1; b < len(groups); b++ {
			total += groups[a].Population * groups[b].Population * math.Abs(groups[a].Income-groups[b].Income)
		}
	}

	g := total / denom
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return 0, DomainError("lorentz", "gini is not representable for population total %v", n)
	}
	return g, nil
}
