// Package recode derives categorical columns from existing ones, typically to
// build the grouping column of a cluster computation.
package recode

import (
	"math"
	"strconv"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// Interval maps the inclusive integer range [Min, Max] to Label.
type Interval struct {
	Label string `json:"label" msgpack:"label"`
	Min   int    `json:"min" msgpack:"min"`
	Max   int    `json:"max" msgpack:"max"`
}

// Categorize replaces numeric cells with the label of the first interval that
// contains them. Values are truncated to integers first; values outside every
// interval become the empty category.
func Categorize(values []string, intervals []Interval) ([]string, error) {
	for _, iv := range intervals {
		if iv.Min > iv.Max {
			return nil, inequality.ConfigError("categorize", "interval %q has min %d greater than max %d", iv.Label, iv.Min, iv.Max)
		}
	}

	out := make([]string, len(values))
	for i, cell := range values {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, inequality.DomainError("categorize", "row %d is not a number: %q", i, cell)
		}
		t := math.Trunc(v)
		if t < math.MinInt || t >= math.MaxInt {
			return nil, inequality.DomainError("categorize", "row %d is out of integer range: %q", i, cell)
		}
		n := int(t)
		for _, iv := range intervals {
			if iv.Min <= n && n <= iv.Max {
				out[i] = iv.Label
				break
			}
		}
	}
	return out, nil
}

// Rename maps every cell through mapping. A cell without a mapping is an error.
func Rename(values []string, mapping map[string]string) ([]string, error) {
	out := make([]string, len(values))
	for i, cell := range values {
		renamed, ok := mapping[cell]
		if !ok {
			return nil, inequality.NotFoundError("rename", "no mapping for value %q at row %d", cell, i)
		}
		out[i] = renamed
	}
	return out, nil
}

// CategorizeColumn returns a copy of table with target holding the categorized
// values of column.
func CategorizeColumn(table *dataset.Table, column, target string, intervals []Interval) (*dataset.Table, error) {
	values, err := table.Strings(column)
	if err != nil {
		return nil, err
	}
	categories, err := Categorize(values, intervals)
	if err != nil {
		return nil, err
	}
	return table.WithColumn(targetOr(target, column), categories)
}

// RenameColumn returns a copy of table with target holding the renamed values of column.
func RenameColumn(table *dataset.Table, column, target string, mapping map[string]string) (*dataset.Table, error) {
	values, err := table.Strings(column)
	if err != nil {
		return nil, err
	}
	renamed, err := Rename(values, mapping)
	if err != nil {
		return nil, err
	}
	return table.WithColumn(targetOr(target, column), renamed)
}

func targetOr(target, column string) string {
	if target == "" {
		return column
	}
	return target
}

// Step is one recoding applied to a table: interval categorization when
// Intervals is set, value renaming when Mapping is set.
type Step struct {
	Column    string            `json:"column" msgpack:"column"`
	Target    string            `json:"target,omitempty" msgpack:"target,omitempty"`
	Intervals []Interval        `json:"intervals,omitempty" msgpack:"intervals,omitempty"`
	Mapping   map[string]string `json:"mapping,omitempty" msgpack:"mapping,omitempty"`
}

// Apply runs steps in order and returns the resulting table.
func Apply(table *dataset.Table, steps []Step) (*dataset.Table, error) {
	var err error
	for i, step := range steps {
		switch {
		case len(step.Intervals) > 0 && len(step.Mapping) > 0:
			return nil, inequality.ConfigError("recode", "step %d sets both intervals and mapping", i)
		case len(step.Intervals) > 0:
			table, err = CategorizeColumn(table, step.Column, step.Target, step.Intervals)
		case len(step.Mapping) > 0:
			table, err = RenameColumn(table, step.Column, step.Target, step.Mapping)
		default:
			return nil, inequality.ConfigError("recode", "step %d sets neither intervals nor mapping", i)
		}
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}
