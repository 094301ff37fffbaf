// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handler groups for the TechTrove API:
// the public catalog endpoints, the user endpoints and the admin
// authentication and management endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"techtrove/internal/store"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

// respondError maps an error to a JSON error response. Store errors carry
// their own status code and optional detail payload; anything else becomes
// an opaque 500.
func respondError(w http.ResponseWriter, err error) {
	var se *store.Error
	if !errors.As(err, &se) {
		slog.Error("unhandled error", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "Internal server error",
		})
		return
	}

	if se.Code == store.CodeInternal {
		slog.Error("internal error", "error", se)
	}

	body := map[string]any{"error": se.Message}
	for k, v := range se.Details {
		body[k] = v
	}
	respondJSON(w, se.Status, body)
}

// decodeJSON decodes the request body into dst, rejecting malformed bodies.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return store.NewInvalidInput("Invalid request body")
	}
	return nil
}
