// Package fairness builds simple fairness-auditing tables: prediction counts
// per sensitive attribute value and per-group false positive and false
// negative rates of a binary classifier.
package fairness

import (
	"sort"

	"github.com/aristath/kafkanator/pkg/inequality"
)

// Default column names for ErrorRates, matching the usual credit-default layout.
const (
	DefaultLabelColumn      = "default"
	DefaultPredictionColumn = "Prediction"
)

// Source is the tabular collaborator fairness tables read from.
type Source interface {
	Strings(name string) ([]string, error)
}

// ParityRow counts the predictions of one value for one sensitive attribute value.
type ParityRow struct {
	Attribute  string `json:"attr"`
	Prediction string `json:"prediction"`
	Count      int    `json:"number"`
}

// Rates holds the error rates of one subgroup.
type Rates struct {
	FPR float64 `json:"fpr"`
	FNR float64 `json:"fnr"`
}

// StatisticalParity counts predictions per (attribute, prediction) pair. Rows
// with an empty prediction are ignored. Every combination of observed values
// appears, including zero counts, ordered by attribute then prediction.
func StatisticalParity(src Source, sensitive, prediction string) ([]ParityRow, error) {
	attrs, err := src.Strings(sensitive)
	if err != nil {
		return nil, err
	}
	preds, err := src.Strings(prediction)
	if err != nil {
		return nil, err
	}

	counts := make(map[[2]string]int)
	attrSet := make(map[string]struct{})
	predSet := make(map[string]struct{})
	for i, p := range preds {
		if p == "" {
			continue
		}
		counts[[2]string{attrs[i], p}]++
		attrSet[attrs[i]] = struct{}{}
		predSet[p] = struct{}{}
	}

	attrValues := sortedKeys(attrSet)
	predValues := sortedKeys(predSet)

	rows := make([]ParityRow, 0, len(attrValues)*len(predValues))
	for _, a := range attrValues {
		for _, p := range predValues {
			rows = append(rows, ParityRow{Attribute: a, Prediction: p, Count: counts[[2]string{a, p}]})
		}
	}
	return rows, nil
}

type confusion struct {
	tn, fp, fn, tp int
}

// ErrorRates computes FPR = FP/(FP+TN) and FNR = FN/(FN+TP) per sensitive
// attribute value. Labels and predictions must be "0" or "1". A group without
// actual negatives or actual positives makes its rate undefined and fails.
func ErrorRates(src Source, sensitive, label, prediction string) (map[string]Rates, error) {
	if label == "" {
		label = DefaultLabelColumn
	}
	if prediction == "" {
		prediction = DefaultPredictionColumn
	}

	attrs, err := src.Strings(sensitive)
	if err != nil {
		return nil, err
	}
	labels, err := src.Strings(label)
	if err != nil {
		return nil, err
	}
	preds, err := src.Strings(prediction)
	if err != nil {
		return nil, err
	}

	matrices := make(map[string]*confusion)
	for i := range attrs {
		actual, err := binary(label, i, labels[i])
		if err != nil {
			return nil, err
		}
		predicted, err := binary(prediction, i, preds[i])
		if err != nil {
			return nil, err
		}

		m, ok := matrices[attrs[i]]
		if !ok {
			m = &confusion{}
			matrices[attrs[i]] = m
		}
		switch {
		case !actual && !predicted:
			m.tn++
		case !actual && predicted:
			m.fp++
		case actual && !predicted:
			m.fn++
		default:
			m.tp++
		}
	}

	rates := make(map[string]Rates, len(matrices))
	for group, m := range matrices {
		if m.fp+m.tn == 0 {
			return nil, inequality.DomainError("error-rates", "group %q has no actual negatives", group)
		}
		if m.fn+m.tp == 0 {
			return nil, inequality.DomainError("error-rates", "group %q has no actual positives", group)
		}
		rates[group] = Rates{
			FPR: float64(m.fp) / float64(m.fp+m.tn),
			FNR: float64(m.fn) / float64(m.fn+m.tp),
		}
	}
	return rates, nil
}

func binary(column string, row int, cell string) (bool, error) {
	switch cell {
	case "0", "0.0", "false", "False":
		return false, nil
	case "1", "1.0", "true", "True":
		return true, nil
	}
	return false, inequality.DomainError("error-rates", "column %q row %d is not binary: %q", column, row, cell)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
