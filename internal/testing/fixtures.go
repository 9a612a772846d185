package testing

import (
	"strconv"

	"github.com/aristath/kafkanator/internal/dataset"
)

// NewSalaryFixtures returns an inline salary dataset with three diplomas of two rows each.
func NewSalaryFixtures() dataset.Source {
	return dataset.Source{
		Kind:    dataset.SourceInline,
		Columns: []string{"diploma", "salary"},
		Rows: [][]string{
			{"phd", "4000"},
			{"bsc", "2100"},
			{"phd", "3500"},
			{"bsc", "1900"},
			{"msc", "2800"},
			{"msc", "3000"},
		},
	}
}

// NewCreditFixtures returns an inline binary classifier dataset with a
// sensitive "sex" column, a "default" label and a "Prediction" column.
func NewCreditFixtures() dataset.Source {
	return dataset.Source{
		Kind:    dataset.SourceInline,
		Columns: []string{"sex", "default", "Prediction"},
		Rows: [][]string{
			{"f", "0", "0"}, {"f", "0", "1"}, {"f", "1", "1"}, {"f", "1", "1"},
			{"m", "0", "0"}, {"m", "0", "0"}, {"m", "1", "0"}, {"m", "1", "1"},
		},
	}
}

// NewGroupedFixtures returns a dataset of n rows spread over groups groups
// with strictly positive incomes.
func NewGroupedFixtures(n, groups int) dataset.Source {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{"g" + strconv.Itoa(i%groups), strconv.Itoa(100 + (i*37)%900)}
	}
	return dataset.Source{
		Kind:    dataset.SourceInline,
		Columns: []string{"group", "income"},
		Rows:    rows,
	}
}
