package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/pkg/inequality"
)

type sampleRequest struct {
	Kind   string    `json:"kind" validate:"required"`
	Values []float64 `json:"values"`
}

func TestDecode(t *testing.T) {
	var req sampleRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"gini","values":[1,2]}`))
	require.NoError(t, Decode(r, &req))
	assert.Equal(t, "gini", req.Kind)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"values":[1]}`))
	err := Decode(r, &sampleRequest{})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, err.Error(), "Kind")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"gini","extra":1}`))
	assert.ErrorAs(t, Decode(r, &sampleRequest{}), &reqErr)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	assert.ErrorAs(t, Decode(r, &sampleRequest{}), &reqErr)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{&RequestError{Msg: "bad"}, http.StatusBadRequest, "invalid_request"},
		{inequality.ConfigError("kind", "unknown"), http.StatusBadRequest, "config"},
		{fmt.Errorf("wrapped: %w", inequality.NotFoundError("col", "missing")), http.StatusNotFound, "not_found"},
		{inequality.DomainError("gini", "empty"), http.StatusUnprocessableEntity, "domain"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		status, kind := Status(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.kind, kind)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, zerolog.Nop(), http.StatusCreated, map[string]float64{"value": 0.5})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Data     map[string]float64     `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0.5, body.Data["value"])
	assert.NotEmpty(t, body.Metadata["timestamp"])
}

func TestWriteError_HidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zerolog.Nop(), errors.New("secret path /var/db"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = httptest.NewRecorder()
	WriteError(rec, zerolog.Nop(), inequality.DomainError("theil-l", "value at position 0 is not positive: 0"))

	var body map[string]ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "domain", body["error"].Kind)
	assert.Contains(t, body["error"].Message, "not positive")
}
