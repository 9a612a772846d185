package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/events"
	"github.com/aristath/kafkanator/internal/modules/indices"
	"github.com/aristath/kafkanator/internal/modules/recode"
)

// Loader resolves dataset sources.
type Loader interface {
	Load(ctx context.Context, src dataset.Source) (*dataset.Table, error)
}

// Runner executes report definitions and stores their results.
type Runner struct {
	repo    *Repository
	loader  Loader
	service *indices.Service
	events  *events.Manager
	log     zerolog.Logger
}

// NewRunner creates a new report runner
func NewRunner(repo *Repository, loader Loader, service *indices.Service, log zerolog.Logger) *Runner {
	return &Runner{
		repo:    repo,
		loader:  loader,
		service: service,
		log:     log.With().Str("component", "report_runner").Logger(),
	}
}

// SetEventManager makes the runner emit ReportCompleted and ReportFailed events
func (r *Runner) SetEventManager(m *events.Manager) {
	r.events = m
}

// Run loads the definition's dataset, applies its recoding, computes the
// overall index of the income column and the index of every group, and
// stores the result.
func (r *Runner) Run(ctx context.Context, id string) (*Result, error) {
	res, kind, err := r.run(ctx, id)
	if r.events == nil {
		return res, err
	}

	if err != nil {
		r.events.EmitTyped("reports", &events.ReportFailedData{ReportID: id, Error: err.Error()})
		return nil, err
	}
	r.events.EmitTyped("reports", &events.ReportCompletedData{
		ReportID: id,
		ResultID: res.ID,
		Kind:     kind,
		Overall:  res.Overall,
		Clusters: len(res.Clusters),
	})
	return res, nil
}

func (r *Runner) run(ctx context.Context, id string) (*Result, string, error) {
	start := time.Now()

	def, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	table, err := r.loader.Load(ctx, def.Source)
	if err != nil {
		return nil, "", fmt.Errorf("report %s: %w", def.Name, err)
	}
	table, err = recode.Apply(table, def.Recode)
	if err != nil {
		return nil, "", fmt.Errorf("report %s: %w", def.Name, err)
	}

	overall, err := r.service.IndexOnColumn(ctx, table, def.IncomeColumn, def.Kind, def.Params)
	if err != nil {
		return nil, "", fmt.Errorf("report %s: %w", def.Name, err)
	}

	clusters, err := r.service.IndexPerCluster(ctx, table, def.GroupColumn, def.IncomeColumn, def.Kind, def.Params)
	if err != nil {
		return nil, "", fmt.Errorf("report %s: %w", def.Name, err)
	}
	indices.SortByGroup(clusters)

	res := &Result{
		DefinitionID: def.ID,
		Overall:      overall,
		Clusters:     clusters,
	}
	if err := r.repo.SaveResult(ctx, res); err != nil {
		return nil, "", err
	}

	r.log.Info().
		Str("report", def.Name).
		Str("id", def.ID).
		Float64("overall", overall).
		Int("clusters", len(clusters)).
		Dur("duration", time.Since(start)).
		Msg("Report computed")

	return res, string(def.Kind), nil
}
