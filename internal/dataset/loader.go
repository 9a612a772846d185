package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/database"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// SourceKind selects where a dataset is read from.
type SourceKind string

const (
	SourceInline SourceKind = "inline"
	SourceCSV    SourceKind = "csv"
	SourceXLSX   SourceKind = "xlsx"
	SourceSQLite SourceKind = "sqlite"
	SourceS3     SourceKind = "s3"
)

// Source describes a dataset. Paths are relative to the loader's data directory.
type Source struct {
	Kind    SourceKind `json:"kind" msgpack:"kind"`
	Path    string     `json:"path,omitempty" msgpack:"path,omitempty"`
	Sheet   string     `json:"sheet,omitempty" msgpack:"sheet,omitempty"`
	Table   string     `json:"table,omitempty" msgpack:"table,omitempty"`
	Bucket  string     `json:"bucket,omitempty" msgpack:"bucket,omitempty"`
	Key     string     `json:"key,omitempty" msgpack:"key,omitempty"`
	Comma   string     `json:"comma,omitempty" msgpack:"comma,omitempty"`
	Columns []string   `json:"columns,omitempty" msgpack:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty" msgpack:"rows,omitempty"`
}

// Loader resolves Sources into Tables.
type Loader struct {
	dataDir string
	s3      *S3Fetcher
	log     zerolog.Logger
}

// NewLoader creates a loader rooted at dataDir. s3 may be nil, in which case
// S3 sources are rejected.
func NewLoader(dataDir string, s3 *S3Fetcher, log zerolog.Logger) *Loader {
	return &Loader{
		dataDir: dataDir,
		s3:      s3,
		log:     log.With().Str("component", "dataset_loader").Logger(),
	}
}

// Load reads the dataset described by src.
func (l *Loader) Load(ctx context.Context, src Source) (*Table, error) {
	var (
		table *Table
		err   error
	)

	switch src.Kind {
	case SourceInline:
		table, err = New(src.Columns, src.Rows)
	case SourceCSV:
		table, err = l.loadCSV(src)
	case SourceXLSX:
		table, err = l.loadXLSX(src)
	case SourceSQLite:
		table, err = l.loadSQLite(ctx, src)
	case SourceS3:
		if l.s3 == nil {
			return nil, inequality.ConfigError("load", "s3 sources are not configured")
		}
		table, err = l.s3.Fetch(ctx, src.Bucket, src.Key, src.Sheet)
	default:
		return nil, inequality.ConfigError("load", "unknown source kind %q", src.Kind)
	}
	if err != nil {
		return nil, err
	}

	l.log.Debug().
		Str("kind", string(src.Kind)).
		Int("rows", table.Len()).
		Strs("columns", table.Columns()).
		Msg("Dataset loaded")

	return table, nil
}

// resolve maps a source path into the data directory and refuses to leave it.
func (l *Loader) resolve(p string) (string, error) {
	if p == "" {
		return "", inequality.ConfigError("load", "source path is empty")
	}

	root, err := filepath.Abs(l.dataDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	full := filepath.Join(root, filepath.Clean(string(filepath.Separator)+p))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", inequality.ConfigError("load", "source path %q escapes the data directory", p)
	}
	return full, nil
}

func (l *Loader) loadCSV(src Source) (*Table, error) {
	full, err := l.resolve(src.Path)
	if err != nil {
		return nil, err
	}

	opts := CSVOptions{}
	if src.Comma != "" {
		r, size := utf8.DecodeRuneInString(src.Comma)
		if size != len(src.Comma) {
			return nil, inequality.ConfigError("load", "csv separator must be a single character, got %q", src.Comma)
		}
		opts.Comma = r
	}

	f, err := openSource(full, src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f, opts)
}

func (l *Loader) loadXLSX(src Source) (*Table, error) {
	full, err := l.resolve(src.Path)
	if err != nil {
		return nil, err
	}

	f, err := openSource(full, src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadXLSX(f, src.Sheet)
}

func (l *Loader) loadSQLite(ctx context.Context, src Source) (*Table, error) {
	full, err := l.resolve(src.Path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, inequality.NotFoundError("load", "dataset %s does not exist", src.Path)
		}
		return nil, fmt.Errorf("sqlite source %s: %w", src.Path, err)
	}

	db, err := database.New(database.Config{
		Path:    full,
		Profile: database.ProfileReadOnly,
		Name:    "dataset",
	})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return ReadSQLite(ctx, db.Conn(), src.Table)
}

// openSource opens a dataset file, reporting a missing file as NotFound.
func openSource(full, name string) (*os.File, error) {
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, inequality.NotFoundError("load", "dataset %s does not exist", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}
