package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/internal/events"
)

// streamRecorder is a flushable ResponseWriter that is safe to read while
// the handler is still writing.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header { return r.header }
func (r *streamRecorder) WriteHeader(int)     {}
func (r *streamRecorder) Flush()              {}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func streamEvents(t *testing.T, bus *events.Bus, query string) (*streamRecorder, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	handler := NewEventsStreamHandler(bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/events/stream"+query, nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), `"type":"connected"`)
	}, time.Second, 5*time.Millisecond)
	return rec, cancel, done
}

func TestEventsStream_ForwardsEvents(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	rec, cancel, done := streamEvents(t, bus, "")

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	bus.Emit(events.ReportCompleted, "reports", map[string]interface{}{"report_id": "r1"})
	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), `"type":"REPORT_COMPLETED"`)
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, rec.String(), `"report_id":"r1"`)

	cancel()
	<-done
	assert.Equal(t, 0, bus.Subscribers(events.ReportCompleted))
}

func TestEventsStream_TypeFilter(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	rec, cancel, done := streamEvents(t, bus, "?types=REPORT_FAILED")

	assert.Equal(t, 0, bus.Subscribers(events.ReportCompleted))
	assert.Equal(t, 1, bus.Subscribers(events.ReportFailed))

	bus.Emit(events.ReportFailed, "reports", map[string]interface{}{"report_id": "r2"})
	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), `"type":"REPORT_FAILED"`)
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, bus.Subscribers(events.ReportFailed))
}
