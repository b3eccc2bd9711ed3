// Package api exposes the HTTP surface: post CRUD, counters, listings,
// drafts, dashboard aggregates, the RSS feed and the SSE change stream.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLogger.Error().Err(err).Msg("Error encoding response")
	}
}

type errResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
