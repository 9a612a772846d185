package testing

import (
	"context"
	"sync"

	"github.com/aristath/kafkanator/internal/dataset"
)

// MockLoader is a mock dataset loader for testing. Inline sources are
// materialized; anything else returns the configured table or error.
type MockLoader struct {
	mu     sync.Mutex
	table  *dataset.Table
	err    error
	loaded []dataset.Source
}

// NewMockLoader creates a new mock loader
func NewMockLoader() *MockLoader {
	return &MockLoader{}
}

// SetTable sets the table returned for non-inline sources
func (m *MockLoader) SetTable(table *dataset.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = table
}

// SetError sets the error to return
func (m *MockLoader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Loaded returns the sources passed to Load so far
func (m *MockLoader) Loaded() []dataset.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dataset.Source, len(m.loaded))
	copy(out, m.loaded)
	return out
}

// Load implements the dataset loader used by services and handlers
func (m *MockLoader) Load(_ context.Context, src dataset.Source) (*dataset.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = append(m.loaded, src)
	if m.err != nil {
		return nil, m.err
	}
	if src.Kind == dataset.SourceInline {
		return dataset.New(src.Columns, src.Rows)
	}
	return m.table, nil
}
