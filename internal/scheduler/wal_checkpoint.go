package scheduler

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// walFrameThreshold is the WAL size in frames above which the job forces a
// truncating checkpoint.
const walFrameThreshold = 1000

// WALDatabase is a SQLite database in WAL mode.
type WALDatabase interface {
	Conn() *sql.DB
	Name() string
}

// WALCheckpointJob checkpoints the WAL of each database and truncates it
// once it grows past walFrameThreshold frames.
type WALCheckpointJob struct {
	databases []WALDatabase
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(log zerolog.Logger, databases ...WALDatabase) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the checkpoint over every database. A failing database is
// logged and skipped; the first failure is returned after all ran.
func (j *WALCheckpointJob) Run() error {
	var firstErr error
	checked := 0

	for _, db := range j.databases {
		frames, err := j.checkpoint(db)
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", db.Name(), err)
			}
			continue
		}

		j.log.Debug().
			Str("database", db.Name()).
			Int("wal_frames", frames).
			Msg("WAL checkpoint status OK")
		checked++
	}

	j.log.Info().Int("checked", checked).Msg("WAL checkpoint completed")
	return firstErr
}

// checkpoint returns the WAL size in frames seen by the passive checkpoint
func (j *WALCheckpointJob) checkpoint(db WALDatabase) (int, error) {
	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, frames, checkpointed int
	if err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed); err != nil {
		return 0, err
	}

	if frames > walFrameThreshold {
		j.log.Warn().
			Str("database", db.Name()).
			Int("wal_frames", frames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, truncating")
		if _, err := db.Conn().Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return frames, err
		}
	}
	return frames, nil
}
