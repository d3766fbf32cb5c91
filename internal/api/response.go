// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
)

// respondJSON writes a JSON body with the given status. Encode failures
// after the header is committed can only be logged.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes the generic failure envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, models.ErrorResponse{
		Success: false,
		Code:    code,
		Error:   message,
	})
}
