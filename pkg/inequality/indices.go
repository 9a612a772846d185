// Package inequality computes inequality indices (Gini, Robin Hood, Theil L and T)
// and Lorentz curve coordinates over a finite population of gains.
//
// All functions are pure: inputs are never reordered or modified. Degenerate
// inputs (empty, zero mean, non-positive values where a logarithm is taken)
// are reported as ErrDomain errors instead of NaN or Inf results.
package inequality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// propsTolerance is how far a proportions array may drift from summing to 1.
const propsTolerance = 1e-9

// checkFinite rejects empty input and NaN or infinite values.
func checkFinite(op string, x []float64) error {
	if len(x) == 0 {
		return DomainError(op, "empty input")
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DomainError(op, "value at position %d is not finite: %v", i, v)
		}
	}
	return nil
}

// sortedCopy returns an ascending copy of x.
func sortedCopy(x []float64) []float64 {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	return sorted
}

// Gini returns the Gini coefficient of x. The input does not need to be sorted;
// a private ascending copy is used.
func Gini(x []float64) (float64, error) {
	if err := checkFinite("gini", x); err != nil {
		return 0, err
	}
	return GiniSorted(sortedCopy(x))
}

// GiniSorted returns the Gini coefficient of an ascending sorted x using the
// pairwise mean absolute difference: sum_{i<j} |x_i - x_j| / (n^2 * mean).
// Unsorted input is rejected with a domain error.
func GiniSorted(x []float64) (float64, error) {
	if err := checkFinite("gini", x); err != nil {
		return 0, err
	}
	if !sort.Float64sAreSorted(x) {
		return 0, DomainError("gini", "input is not sorted ascending")
	}

	mean := stat.Mean(x, nil)
	if mean == 0 {
		return 0, DomainError("gini", "mean of input is zero")
	}

	total := 0.0
	for i := 0; i < len(x)-1; i++ {
		for j := i + 1; j < len(x); j++ {
			total += math.Abs(x[i] - x[j])
		}
	}

	n := float64(len(x))
	return total / (n * n * mean), nil
}

// RobinHood returns the share of total income that has to move from above
// average earners to below average earners to reach equality.
func RobinHood(x []float64) (float64, error) {
	if err := checkFinite("robin-hood", x); err != nil {
		return 0, err
	}

	sum := floats.Sum(x)
	if sum == 0 {
		return 0, DomainError("robin-hood", "sum of input is zero")
	}

	egal := sum / float64(len(x))
	shortfall := 0.0
	for _, v := range x {
		if v < egal {
			shortfall += egal - v
		}
	}

	return shortfall / sum, nil
}

// TheilL returns the mean log deviation: mean(ln(mu / x_i)).
// Every value must be strictly positive.
func TheilL(x []float64) (float64, error) {
	if err := checkFinite("theil-l", x); err != nil {
		return 0, err
	}
	for i, v := range x {
		if v <= 0 {
			return 0, DomainError("theil-l", "value at position %d is not positive: %v", i, v)
		}
	}

	mean := stat.Mean(x, nil)
	total := 0.0
	for _, v := range x {
		total += math.Log(mean / v)
	}

	return total / float64(len(x)), nil
}

// TheilT returns ln(n) - H_base(p), where p is x itself in props mode and x
// normalized by its sum in gains mode.
func TheilT(x []float64, params Params) (float64, error) {
	params, err := params.normalize()
	if err != nil {
		return 0, err
	}
	if err := checkFinite("theil-t", x); err != nil {
		return 0, err
	}
	for i, v := range x {
		if v < 0 {
			return 0, DomainError("theil-t", "value at position %d is negative: %v", i, v)
		}
	}

	sum := floats.Sum(x)
	props := x
	switch params.Mode {
	case ModeProps:
		if math.Abs(sum-1) > propsTolerance {
			return 0, DomainError("theil-t", "proportions sum to %v, expected 1", sum)
		}
	case ModeGains:
		if sum <= 0 {
			return 0, DomainError("theil-t", "sum of gains is not positive: %v", sum)
		}
		props = make([]float64, len(x))
		floats.ScaleTo(props, 1/sum, x)
	}

	return math.Log(float64(len(x))) - entropy(props, params.Base), nil
}

// entropy is the Shannon entropy of p in the given logarithm base.
func entropy(p []float64, base float64) float64 {
	h := stat.Entropy(p)
	if base == math.E {
		return h
	}
	return h / math.Log(base)
}

// Compute dispatches values to the index named by kind. Gini input is sorted
// on a private copy first.
func Compute(kind Kind, values []float64, params Params) (float64, error) {
	switch kind {
	case KindGini:
		return Gini(values)
	case KindRobinHood:
		return RobinHood(values)
	case KindTheilL:
		return TheilL(values)
	case KindTheilT:
		return TheilT(values, params)
	}
	return 0, kind.Validate()
}
