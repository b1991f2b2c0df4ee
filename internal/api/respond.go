// Package api provides the uniform response envelope shared by all HTTP
// handlers: {success, data?, error?{message, details?}}.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/fees"
)

// ErrorBody is the error half of the envelope
type ErrorBody struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Envelope is the uniform response wrapper
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// WriteData writes a successful envelope
func WriteData(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	writeJSON(w, log, status, Envelope{Success: true, Data: data})
}

// WriteError writes a failed envelope
func WriteError(w http.ResponseWriter, log zerolog.Logger, status int, message string, details map[string]string) {
	writeJSON(w, log, status, Envelope{
		Success: false,
		Error:   &ErrorBody{Message: message, Details: details},
	})
}

// WriteEngineError maps an engine error kind to a status and writes the
// envelope: invalid input 400, configuration 422, no solution 422,
// anything else 500 with a generic message (the cause is logged, never
// leaked).
func WriteEngineError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var invalidInput *fees.InvalidInputError
	if errors.As(err, &invalidInput) {
		WriteError(w, log, http.StatusBadRequest, invalidInput.Error(), map[string]string{
			"field":  invalidInput.Field,
			"reason": invalidInput.Reason,
		})
		return
	}

	var configuration *fees.ConfigurationError
	if errors.As(err, &configuration) {
		WriteError(w, log, http.StatusUnprocessableEntity, configuration.Error(), map[string]string{
			"field":  configuration.Field,
			"reason": configuration.Reason,
		})
		return
	}

	var noSolution *fees.NoSolutionError
	if errors.As(err, &noSolution) {
		WriteError(w, log, http.StatusUnprocessableEntity, noSolution.Error(), map[string]string{
			"thresholdPercent": noSolution.ThresholdPercent.String(),
			"floorPercent":     noSolution.FloorPercent.String(),
		})
		return
	}

	log.Error().Err(err).Msg("Unhandled engine error")
	WriteError(w, log, http.StatusInternalServerError, "internal error", nil)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
