// Package reports stores named index computations over a dataset, runs them
// on demand or on a schedule and keeps their results.
package reports

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/modules/indices"
	"github.com/aristath/kafkanator/internal/modules/recode"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// Definition is a saved report: which dataset to read, how to recode it and
// which index to compute overall and per group.
type Definition struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Source       dataset.Source    `json:"source"`
	Recode       []recode.Step     `json:"recode,omitempty"`
	GroupColumn  string            `json:"group_column"`
	IncomeColumn string            `json:"income_column"`
	Kind         inequality.Kind   `json:"kind"`
	Params       inequality.Params `json:"params"`
	Schedule     string            `json:"schedule,omitempty"` // cron expression with seconds, empty for manual runs
	CreatedAt    time.Time         `json:"created_at"`
}

// Result is one run of a Definition.
type Result struct {
	ID           string                  `json:"id"`
	DefinitionID string                  `json:"definition_id"`
	Overall      float64                 `json:"overall"`
	Clusters     []indices.ClusterResult `json:"clusters"`
	ComputedAt   time.Time               `json:"computed_at"`
}

// scheduleParser accepts the same expressions as the scheduler.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the fields a definition needs before it can be stored.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return inequality.ConfigError("report", "name is required")
	}
	if d.GroupColumn == "" || d.IncomeColumn == "" {
		return inequality.ConfigError("report", "group and income columns are required")
	}
	if err := d.Kind.Validate(); err != nil {
		return err
	}
	if d.Params.Mode != "" {
		if err := d.Params.Mode.Validate(); err != nil {
			return err
		}
	}
	if d.Schedule != "" {
		if _, err := scheduleParser.Parse(d.Schedule); err != nil {
			return inequality.ConfigError("report", "invalid schedule %q: %v", d.Schedule, err)
		}
	}
	return nil
}
