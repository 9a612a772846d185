package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/internal/dataset"
	testingpkg "github.com/aristath/kafkanator/internal/testing"
)

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	return NewHandler(dataset.NewLoader(t.TempDir(), nil, logger), logger)
}

func credit() dataset.Source {
	return testingpkg.NewCreditFixtures()
}

func post(t *testing.T, handle http.HandlerFunc, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/fairness", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()
	handle(w, req)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return w, response
}

func TestHandleParity(t *testing.T) {
	handler := setupTestHandler(t)

	w, response := post(t, handler.HandleParity, map[string]interface{}{
		"source":    credit(),
		"sensitive": "sex",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	rows := response["data"].(map[string]interface{})["rows"].([]interface{})
	require.Len(t, rows, 4)

	got := make(map[string]float64)
	for _, r := range rows {
		row := r.(map[string]interface{})
		got[row["attr"].(string)+"/"+row["prediction"].(string)] = row["number"].(float64)
	}
	assert.Equal(t, map[string]float64{"f/0": 1, "f/1": 3, "m/0": 3, "m/1": 1}, got)
}

func TestHandleErrorRates(t *testing.T) {
	handler := setupTestHandler(t)

	w, response := post(t, handler.HandleErrorRates, map[string]interface{}{
		"source":    credit(),
		"sensitive": "sex",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	groups := response["data"].(map[string]interface{})["groups"].(map[string]interface{})

	f := groups["f"].(map[string]interface{})
	assert.InDelta(t, 0.5, f["fpr"].(float64), 1e-12)
	assert.InDelta(t, 0.0, f["fnr"].(float64), 1e-12)

	m := groups["m"].(map[string]interface{})
	assert.InDelta(t, 0.0, m["fpr"].(float64), 1e-12)
	assert.InDelta(t, 0.5, m["fnr"].(float64), 1e-12)
}

func TestHandleErrorRates_Errors(t *testing.T) {
	handler := setupTestHandler(t)

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"missing sensitive", map[string]interface{}{"source": credit()}, http.StatusBadRequest},
		{"unknown label column", map[string]interface{}{"source": credit(), "sensitive": "sex", "label": "target"}, http.StatusNotFound},
		{"no positives", map[string]interface{}{
			"source": map[string]interface{}{
				"kind":    "inline",
				"columns": []string{"sex", "default", "Prediction"},
				"rows":    [][]string{{"f", "0", "0"}, {"f", "0", "1"}},
			},
			"sensitive": "sex",
		}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := post(t, handler.HandleErrorRates, tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
