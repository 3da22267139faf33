package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// QueryInt parses a required integer query parameter.
// Responds with 400 and returns false when the parameter is missing or malformed.
func QueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return 0, false
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// QueryIntDefault parses an optional integer query parameter, falling back to
// def when the parameter is absent. Responds with 400 and returns false when
// the parameter is present but malformed.
func QueryIntDefault(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// QueryDefault returns the query parameter value or def when absent.
func QueryDefault(r *http.Request, key, def string) string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def
	}
	return value
}
