package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/kafkanator/internal/modules/indices"
	"github.com/aristath/kafkanator/internal/modules/recode"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// definitionColumns is the column list of report_definitions.
// Order must match scanDefinition.
const definitionColumns = `id, name, source, recode, group_column, income_column, kind, params, schedule, created_at`

// Repository persists report definitions and results in reports.db.
// Structured fields are stored as msgpack BLOBs.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new report repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "reports").Logger(),
	}
}

// Create validates def, assigns its ID and creation time and stores it.
func (r *Repository) Create(ctx context.Context, def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	source, err := msgpack.Marshal(&def.Source)
	if err != nil {
		return fmt.Errorf("failed to encode source: %w", err)
	}
	var steps []byte
	if len(def.Recode) > 0 {
		if steps, err = msgpack.Marshal(def.Recode); err != nil {
			return fmt.Errorf("failed to encode recode steps: %w", err)
		}
	}
	params, err := msgpack.Marshal(&def.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO report_definitions (`+definitionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		def.Name,
		source,
		steps,
		def.GroupColumn,
		def.IncomeColumn,
		string(def.Kind),
		params,
		def.Schedule,
		now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report definition: %w", err)
	}

	def.ID = id
	def.CreatedAt = now

	r.log.Info().
		Str("id", id).
		Str("name", def.Name).
		Str("kind", def.Kind.String()).
		Str("schedule", def.Schedule).
		Msg("Report definition created")

	return nil
}

// Get returns the definition with the given ID.
func (r *Repository) Get(ctx context.Context, id string) (*Definition, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+definitionColumns+` FROM report_definitions WHERE id = ?`, id)

	def, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inequality.NotFoundError("report", "report %q does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

// List returns every definition, oldest first.
func (r *Repository) List(ctx context.Context) ([]Definition, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+definitionColumns+` FROM report_definitions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query report definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]Definition, 0)
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report definitions: %w", err)
	}
	return defs, nil
}

// Delete removes a definition together with its results.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM report_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report definition: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return inequality.NotFoundError("report", "report %q does not exist", id)
	}

	r.log.Info().Str("id", id).Msg("Report definition deleted")
	return nil
}

// SaveResult stores res, assigning its ID and computation time when unset.
func (r *Repository) SaveResult(ctx context.Context, res *Result) error {
	clusters, err := msgpack.Marshal(res.Clusters)
	if err != nil {
		return fmt.Errorf("failed to encode clusters: %w", err)
	}

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.ComputedAt.IsZero() {
		res.ComputedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO report_results (id, definition_id, overall, clusters, computed_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		res.ID,
		res.DefinitionID,
		res.Overall,
		clusters,
		res.ComputedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report result: %w", err)
	}
	return nil
}

// LatestResult returns the most recent result of a definition.
func (r *Repository) LatestResult(ctx context.Context, definitionID string) (*Result, error) {
	var (
		res        Result
		clusters   []byte
		computedAt int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, definition_id, overall, clusters, computed_at
		FROM report_results
		WHERE definition_id = ?
		ORDER BY computed_at DESC
		LIMIT 1
	`, definitionID).Scan(&res.ID, &res.DefinitionID, &res.Overall, &clusters, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inequality.NotFoundError("report", "report %q has no results", definitionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report result: %w", err)
	}

	if err := msgpack.Unmarshal(clusters, &res.Clusters); err != nil {
		return nil, fmt.Errorf("failed to decode clusters: %w", err)
	}
	if res.Clusters == nil {
		res.Clusters = []indices.ClusterResult{}
	}
	res.ComputedAt = time.Unix(0, computedAt).UTC()
	return &res, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDefinition(s scanner) (*Definition, error) {
	var (
		def            Definition
		kind           string
		source, params []byte
		steps          []byte
		createdAt      int64
	)

	err := s.Scan(
		&def.ID,
		&def.Name,
		&source,
		&steps,
		&def.GroupColumn,
		&def.IncomeColumn,
		&kind,
		&params,
		&def.Schedule,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan report definition: %w", err)
	}

	if err := msgpack.Unmarshal(source, &def.Source); err != nil {
		return nil, fmt.Errorf("failed to decode source of %s: %w", def.ID, err)
	}
	if len(steps) > 0 {
		var decoded []recode.Step
		if err := msgpack.Unmarshal(steps, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode recode steps of %s: %w", def.ID, err)
		}
		def.Recode = decoded
	}
	if err := msgpack.Unmarshal(params, &def.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params of %s: %w", def.ID, err)
	}

	def.Kind = inequality.Kind(kind)
	def.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &def, nil
}
