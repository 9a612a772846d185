package recode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/pkg/inequality"
)

var ageBands = []Interval{
	{Label: "young", Min: 20, Max: 30},
	{Label: "adult", Min: 31, Max: 50},
	{Label: "elder", Min: 51, Max: 70},
}

func TestCategorize(t *testing.T) {
	out, err := Categorize([]string{"20", "30", "30.9", "31", "64", "71", "5"}, ageBands)
	require.NoError(t, err)
	assert.Equal(t, []string{"young", "young", "young", "adult", "elder", "", ""}, out)
}

func TestCategorize_Errors(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		intervals []Interval
		kind      error
	}{
		{"not a number", []string{"forty"}, ageBands, inequality.ErrDomain},
		{"beyond int range", []string{"40", "1e20"}, ageBands, inequality.ErrDomain},
		{"below int range", []string{"-1e300"}, ageBands, inequality.ErrDomain},
		{"inverted interval", []string{"40"}, []Interval{{Label: "bad", Min: 10, Max: 1}}, inequality.ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Categorize(tt.values, tt.intervals)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestRename(t *testing.T) {
	out, err := Rename([]string{"1", "0", "1"}, map[string]string{"0": "female", "1": "male"})
	require.NoError(t, err)
	assert.Equal(t, []string{"male", "female", "male"}, out)

	_, err = Rename([]string{"2"}, map[string]string{"0": "female"})
	assert.ErrorIs(t, err, inequality.ErrNotFound)
}

func TestCategorizeColumn(t *testing.T) {
	table, err := dataset.New([]string{"age", "salary"}, [][]string{
		{"25", "1800"},
		{"45", "3000"},
		{"60", "3500"},
	})
	require.NoError(t, err)

	out, err := CategorizeColumn(table, "age", "age_band", ageBands)
	require.NoError(t, err)
	bands, err := out.Strings("age_band")
	require.NoError(t, err)
	assert.Equal(t, []string{"young", "adult", "elder"}, bands)

	// in place replacement when no target is given
	out, err = CategorizeColumn(table, "age", "", ageBands)
	require.NoError(t, err)
	ages, err := out.Strings("age")
	require.NoError(t, err)
	assert.Equal(t, []string{"young", "adult", "elder"}, ages)

	_, err = CategorizeColumn(table, "height", "", ageBands)
	assert.ErrorIs(t, err, inequality.ErrNotFound)
}

func TestRenameColumn(t *testing.T) {
	table, err := dataset.New([]string{"sex"}, [][]string{{"0"}, {"1"}})
	require.NoError(t, err)

	out, err := RenameColumn(table, "sex", "gender", map[string]string{"0": "f", "1": "m"})
	require.NoError(t, err)
	genders, err := out.Strings("gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "m"}, genders)
	assert.True(t, out.HasColumn("sex"))
}

func TestApply(t *testing.T) {
	table, err := dataset.New([]string{"age", "sex", "salary"}, [][]string{
		{"25", "0", "1800"},
		{"45", "1", "3000"},
	})
	require.NoError(t, err)

	out, err := Apply(table, []Step{
		{Column: "age", Target: "band", Intervals: ageBands},
		{Column: "sex", Mapping: map[string]string{"0": "f", "1": "m"}},
	})
	require.NoError(t, err)

	bands, err := out.Strings("band")
	require.NoError(t, err)
	assert.Equal(t, []string{"young", "adult"}, bands)
	sexes, err := out.Strings("sex")
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "m"}, sexes)

	same, err := Apply(table, nil)
	require.NoError(t, err)
	assert.Same(t, table, same)

	_, err = Apply(table, []Step{{Column: "age"}})
	assert.ErrorIs(t, err, inequality.ErrConfig)

	_, err = Apply(table, []Step{{Column: "age", Intervals: ageBands, Mapping: map[string]string{"a": "b"}}})
	assert.ErrorIs(t, err, inequality.ErrConfig)
}
