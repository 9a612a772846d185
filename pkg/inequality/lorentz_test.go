package inequality

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLorentz(t *testing.T) {
	// 50 people earn 100, 20 earn 300, 30 earn 200, 10 earn 30. Income values
	// are already class totals, so shares divide by their sum, 630.
	population := []float64{50, 20, 30, 10}
	income := []float64{100, 300, 200, 30}

	curve, err := Lorentz(population, income, false)
	require.NoError(t, err)
	assert.Nil(t, curve.Gini)

	expectedPop := []float64{0, 10.0 / 110, 60.0 / 110, 90.0 / 110, 1}
	expectedInc := []float64{0, 30.0 / 630, 130.0 / 630, 330.0 / 630, 1}

	require.Len(t, curve.Population, len(population)+1)
	require.Len(t, curve.Income, len(income)+1)
	for i := range expectedPop {
		assert.InDelta(t, expectedPop[i], curve.Population[i], 1e-12, "population share %d", i)
		assert.InDelta(t, expectedInc[i], curve.Income[i], 1e-12, "income share %d", i)
	}

	// caller data keeps its order
	assert.Equal(t, []float64{50, 20, 30, 10}, population)
	assert.Equal(t, []float64{100, 300, 200, 30}, income)
}

func TestLorentz_Endpoints(t *testing.T) {
	inputs := []struct {
		population []float64
		income     []float64
	}{
		{[]float64{1}, []float64{5}},
		{[]float64{3, 3, 3}, []float64{0.1, 0.2, 0.3}},
		{[]float64{7, 1, 13, 2, 9}, []float64{41, 17, 3, 99, 17}},
	}

	for _, in := range inputs {
		curve, err := Lorentz(in.population, in.income, false)
		require.NoError(t, err)
		assert.Equal(t, 0.0, curve.Population[0])
		assert.Equal(t, 0.0, curve.Income[0])
		assert.Equal(t, 1.0, curve.Population[len(curve.Population)-1])
		assert.Equal(t, 1.0, curve.Income[len(curve.Income)-1])
	}
}

func TestLorentz_GiniMatchesExpandedPopulation(t *testing.T) {
	curve, err := Lorentz([]float64{50, 20, 30, 10}, []float64{100, 300, 200, 30}, true)
	require.NoError(t, err)
	require.NotNil(t, curve.Gini)

	flat := make([]float64, 0, 110)
	for i := 0; i < 10; i++ {
		flat = append(flat, 30)
	}
	for i := 0; i < 50; i++ {
		flat = append(flat, 100)
	}
	for i := 0; i < 30; i++ {
		flat = append(flat, 200)
	}
	for i := 0; i < 20; i++ {
		flat = append(flat, 300)
	}

	direct, err := Gini(flat)
	require.NoError(t, err)
	assert.InDelta(t, direct, *curve.Gini, 1e-12)
	assert.InDelta(t, 0.28901734104046245, *curve.Gini, 1e-12)
}

func TestLorentz_GiniWithHugeCounts(t *testing.T) {
	tests := []struct {
		name       string
		population []float64
		income     []float64
		expected   float64
	}{
		// 1e20 people at 1 and one at 2: the rich outlier is negligible
		{"count beyond int range", []float64{1e20, 1}, []float64{1, 2}, 0},
		// halves of 1e12 at 1 and 3: sum of cross pairs (N/2)^2*2 over N^2*2
		{"two equal large groups", []float64{1e12, 1e12}, []float64{1, 3}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var curve *LorentzCurve
			var err error
			require.NotPanics(t, func() {
				curve, err = Lorentz(tt.population, tt.income, true)
			})
			require.NoError(t, err)
			require.NotNil(t, curve.Gini)
			assert.InDelta(t, tt.expected, *curve.Gini, 1e-12)
		})
	}
}

func TestLorentz_GiniRejectsUnrepresentableTotals(t *testing.T) {
	_, err := Lorentz([]float64{1e200, 1e200}, []float64{1, 2}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomain)

	// the curve alone is still fine
	curve, err := Lorentz([]float64{1e200, 1e200}, []float64{1, 2}, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, curve.Population[1], 1e-12)
}

func TestLorentz_StableTieBreak(t *testing.T) {
	curve, err := Lorentz([]float64{1, 3}, []float64{10, 10}, false)
	require.NoError(t, err)
	// equal incomes keep input order, so the group of 1 comes first
	assert.InDelta(t, 0.25, curve.Population[1], 1e-12)
}

func TestLorentz_Errors(t *testing.T) {
	tests := []struct {
		name       string
		population []float64
		income     []float64
		wantGini   bool
	}{
		{"length mismatch", []float64{1, 2}, []float64{1}, false},
		{"empty", []float64{}, []float64{}, false},
		{"zero population", []float64{0, 2}, []float64{1, 2}, false},
		{"negative income", []float64{1, 2}, []float64{-1, 2}, false},
		{"fractional count with gini", []float64{1.5, 2}, []float64{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lorentz(tt.population, tt.income, tt.wantGini)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDomain)
		})
	}
}

func TestLorentz_FractionalCountsWithoutGini(t *testing.T) {
	curve, err := Lorentz([]float64{1.5, 2.5}, []float64{1, 3}, false)
	require.NoError(t, err)
	assert.InDelta(t, 1.5/4, curve.Population[1], 1e-12)
}

func TestCalculator_TracesAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	calc := NewCalculator(log)

	curve, err := calc.Lorentz([]float64{2, 1}, []float64{5, 1}, true)
	require.NoError(t, err)
	require.NotNil(t, curve.Gini)

	output := buf.String()
	assert.Contains(t, output, "Lorentz input sorted by income")
	assert.Contains(t, output, "Lorentz curve built")
	assert.Contains(t, output, `"gini"`)

	buf.Reset()
	value, err := calc.Compute(KindRobinHood, []float64{5, 3, 5, 6, 9}, Params{})
	require.NoError(t, err)
	assert.InDelta(t, 3.8/28.0, value, 1e-12)
	assert.Contains(t, buf.String(), "Index computed")
}

func TestCalculator_NopLogger(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())

	_, err := calc.Compute(Kind("variance"), []float64{1}, Params{})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = calc.Compute(KindTheilL, []float64{1, 0}, Params{})
	assert.ErrorIs(t, err, ErrDomain)
}
