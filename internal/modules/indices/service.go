// Package indices applies inequality indices to columns of a tabular data
// source, either to a whole column or independently to every cluster of rows
// sharing a grouping value.
package indices

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// Source is the tabular collaborator the service reads from.
type Source interface {
	HasColumn(name string) bool
	Numeric(name string) ([]float64, error)
	GroupBy(name string) (map[string][]int, error)
	Rows(indices []int) (*dataset.Table, error)
}

// ClusterResult is the index value of one group.
type ClusterResult struct {
	Group string  `json:"group" msgpack:"group"`
	Value float64 `json:"value" msgpack:"value"`
	Size  int     `json:"size" msgpack:"size"`
}

// Service runs index computations over tabular sources.
type Service struct {
	calculator *inequality.Calculator
	workers    int
	log        zerolog.Logger
}

// NewService creates a service computing clusters with at most workers
// concurrent groups. workers <= 0 means runtime.NumCPU().
func NewService(calculator *inequality.Calculator, workers int, log zerolog.Logger) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Service{
		calculator: calculator,
		workers:    workers,
		log:        log.With().Str("service", "indices").Logger(),
	}
}

// Compute runs an index directly over values.
func (s *Service) Compute(kind inequality.Kind, values []float64, params inequality.Params) (float64, error) {
	return s.calculator.Compute(kind, values, params)
}

// Lorentz builds Lorentz curve coordinates.
func (s *Service) Lorentz(population, income []float64, wantGini bool) (*inequality.LorentzCurve, error) {
	return s.calculator.Lorentz(population, income, wantGini)
}

// IndexOnColumn sorts a copy of column ascending and applies kind to it.
func (s *Service) IndexOnColumn(ctx context.Context, src Source, column string, kind inequality.Kind, params inequality.Params) (float64, error) {
	if err := kind.Validate(); err != nil {
		return 0, err
	}
	if !src.HasColumn(column) {
		return 0, inequality.NotFoundError("index-on-column", "column %q does not exist", column)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	values, err := sortedColumn(src, column)
	if err != nil {
		return 0, err
	}

	return s.calculator.Compute(kind, values, params)
}

// IndexPerCluster partitions src by groupColumn and applies kind to the
// sorted incomeColumn of every group. Groups run concurrently; the first
// failure cancels the rest and is returned. Result order is unspecified.
func (s *Service) IndexPerCluster(ctx context.Context, src Source, groupColumn, incomeColumn string, kind inequality.Kind, params inequality.Params) ([]ClusterResult, error) {
	if !src.HasColumn(groupColumn) {
		return nil, inequality.NotFoundError("index-per-cluster", "group column %q does not exist", groupColumn)
	}
	if !src.HasColumn(incomeColumn) {
		return nil, inequality.NotFoundError("index-per-cluster", "income column %q does not exist", incomeColumn)
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	groups, err := src.GroupBy(groupColumn)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]ClusterResult, 0, len(groups))
	out := make(chan ClusterResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for key, rows := range groups {
		key, rows := key, rows
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sub, err := src.Rows(rows)
			if err != nil {
				return err
			}
			values, err := sortedColumn(sub, incomeColumn)
			if err != nil {
				return err
			}

			value, err := s.calculator.Compute(kind, values, params)
			if err != nil {
				s.log.Debug().Err(err).Str("group", key).Msg("Cluster index failed")
				return err
			}

			out <- ClusterResult{Group: key, Value: value, Size: len(rows)}
			return nil
		})
	}

	err = g.Wait()
	close(out)
	if err != nil {
		return nil, err
	}

	for r := range out {
		results = append(results, r)
	}

	s.log.Debug().
		Str("kind", kind.String()).
		Str("group_column", groupColumn).
		Int("groups", len(results)).
		Dur("duration_ms", time.Since(start)).
		Msg("Cluster indices computed")

	return results, nil
}

// SortByGroup orders results by group key, for callers that need a stable order.
func SortByGroup(results []ClusterResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Group < results[j].Group
	})
}

// sortedColumn extracts a numeric column and sorts the extracted copy.
func sortedColumn(src interface {
	Numeric(name string) ([]float64, error)
}, column string) ([]float64, error) {
	values, err := src.Numeric(column)
	if err != nil {
		return nil, err
	}
	sort.Float64s(values)
	return values, nil
}
