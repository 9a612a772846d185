// Package httpapi holds the JSON response envelope, request decoding and the
// mapping of engine error kinds to HTTP status codes shared by all handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/pkg/inequality"
)

// maxBodyBytes bounds request bodies; inline datasets are the largest payloads.
const maxBodyBytes = 32 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorBody is the error payload of every failed request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &RequestError{Msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return &RequestError{Msg: "validation failed: " + strings.Join(fields, ", ")}
		}
		return &RequestError{Msg: err.Error()}
	}
	return nil
}

// RequestError is a malformed or invalid request.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string {
	return e.Msg
}

// Status maps an error to its HTTP status and kind label.
func Status(err error) (int, string) {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, inequality.ErrConfig):
		return http.StatusBadRequest, "config"
	case errors.Is(err, inequality.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, inequality.ErrDomain):
		return http.StatusUnprocessableEntity, "domain"
	}
	return http.StatusInternalServerError, "internal"
}

// WriteJSON writes data wrapped in the response envelope.
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes err with the status its kind maps to. Internal errors are
// logged and their message hidden from the client.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, kind := Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		message = "internal server error"
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(map[string]ErrorBody{
		"error": {Kind: kind, Message: message},
	}); encErr != nil {
		log.Error().Err(encErr).Msg("Failed to encode JSON error")
	}
}
