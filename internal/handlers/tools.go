// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"techtrove/internal/cache"
	"techtrove/internal/format"
	"techtrove/internal/store"
	"techtrove/internal/token"
)

// Tools groups the catalog HTTP handlers: the public listing, search and
// hit counting, plus the admin-only mutation endpoints.
type Tools struct {
	catalog     *store.CategoryStore
	listing     *cache.ListingCache
	tokenSecret string
}

// NewTools creates a new Tools handler group. listing may be nil when
// caching is disabled (tests).
func NewTools(catalog *store.CategoryStore, listing *cache.ListingCache, tokenSecret string) *Tools {
	return &Tools{
		catalog:     catalog,
		listing:     listing,
		tokenSecret: tokenSecret,
	}
}

// List serves the public listing: active tools only, display-formatted,
// with a signed snapshot token the client can keep as a local cache
// artifact. The whole response body is cached in Valkey; the cache TTL is
// shorter than the snapshot token TTL so a cached token is never expired.
func (t *Tools) List(w http.ResponseWriter, r *http.Request) {
	if t.listing != nil {
		if body, ok := t.listing.Get(r.Context()); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	cats, err := t.catalog.ListActive()
	if err != nil {
		respondError(w, err)
		return
	}

	formatted := format.Listing(cats)
	tok, err := token.Sign(formatted, t.tokenSecret, token.ListingTTL)
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}

	body, err := json.Marshal(map[string]any{
		"message":       "AI Tools Fetched",
		"data":          formatted,
		"encryptedData": tok,
	})
	if err != nil {
		respondError(w, store.NewInternal(err))
		return
	}

	if t.listing != nil {
		t.listing.Set(r.Context(), body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Raw serves the unfiltered listing, inactive tools included. Admin only.
func (t *Tools) Raw(w http.ResponseWriter, r *http.Request) {
	cats, err := t.catalog.ListRaw()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "AI Tools Fetched",
		"data":    cats,
	})
}

// addRequest is the batch-add payload.
type addRequest struct {
	Category string          `json:"category"`
	Tools    []store.NewTool `json:"tools"`
}

// Add handles the admin batch-add endpoint. The whole batch succeeds or
// fails together; duplicates come back as a 409 listing the offending
// titles and urls.
func (t *Tools) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Category == "" || len(req.Tools) == 0 {
		respondError(w, store.NewInvalidInput("Category and at least one tool are required"))
		return
	}

	cat, err := t.catalog.AddTools(req.Category, req.Tools)
	if err != nil {
		respondError(w, err)
		return
	}

	t.invalidate(r)
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "AI Tool(s) added successfully",
		"data":    cat,
	})
}

// Get serves a single tool along with the name of its category.
func (t *Tools) Get(w http.ResponseWriter, r *http.Request) {
	categoryID, toolID, err := pathIDs(r)
	if err != nil {
		respondError(w, err)
		return
	}

	tool, categoryName, err := t.catalog.GetTool(categoryID, toolID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":  "AI Tool fetched successfully",
		"category": categoryName,
		"tool":     tool,
	})
}

// Hit increments a tool's hit counter and returns a summary. The listing
// cache is deliberately not invalidated here; hit counts are allowed to be
// a few minutes stale in the public listing.
func (t *Tools) Hit(w http.ResponseWriter, r *http.Request) {
	categoryID, toolID, err := pathIDs(r)
	if err != nil {
		respondError(w, err)
		return
	}

	tool, err := t.catalog.IncrementHit(categoryID, toolID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Hit count incremented successfully",
		"tool": map[string]any{
			"title":       tool.Title,
			"description": tool.Description,
			"url":         tool.URL,
			"hitCount":    tool.HitCount,
		},
	})
}

// Update applies a partial update to a tool. Admin only.
func (t *Tools) Update(w http.ResponseWriter, r *http.Request) {
	categoryID, toolID, err := pathIDs(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var patch store.ToolPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, err)
		return
	}

	tool, err := t.catalog.UpdateTool(categoryID, toolID, patch)
	if err != nil {
		respondError(w, err)
		return
	}

	t.invalidate(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Tool updated successfully",
		"tool":    tool,
	})
}

// Delete removes a tool from its category. Admin only. Deleting a tool
// that is already gone still succeeds as long as the category exists.
func (t *Tools) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, toolID, err := pathIDs(r)
	if err != nil {
		respondError(w, err)
		return
	}

	cat, err := t.catalog.DeleteTool(categoryID, toolID)
	if err != nil {
		respondError(w, err)
		return
	}

	t.invalidate(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Tool deleted successfully",
		"data":    cat,
	})
}

// toggleRequest addresses the category by name, matching the public
// client's payload.
type toggleRequest struct {
	Category string `json:"category"`
}

// Toggle flips a tool's active flag. Admin only. The category is addressed
// by name from the request body rather than by the path id.
func (t *Tools) Toggle(w http.ResponseWriter, r *http.Request) {
	_, toolID, err := pathIDs(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Category == "" {
		respondError(w, store.NewInvalidInput("Category is required"))
		return
	}

	tool, err := t.catalog.ToggleActive(req.Category, toolID)
	if err != nil {
		respondError(w, err)
		return
	}

	t.invalidate(r)
	msg := "Tool deactivated successfully"
	if tool.Active {
		msg = "Tool activated successfully"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"tool":    tool,
	})
}

// Search serves the public search endpoint. A category whose name matches
// returns all of its active tools; otherwise only the matching titles.
func (t *Tools) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   true,
			"message": "Search query is required",
		})
		return
	}

	cats, err := t.catalog.Search(query)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"error":   false,
		"tools":   format.Listing(cats),
		"message": "AI Tools matching the search query retrieved successfully",
	})
}

// invalidate drops the cached public listing after a mutation.
func (t *Tools) invalidate(r *http.Request) {
	if t.listing != nil {
		t.listing.Invalidate(r.Context())
	}
}

// pathIDs parses the category and tool ids from the URL. Malformed ids are
// reported as NotFound so unknown and invalid ids are indistinguishable.
func pathIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, store.NewNotFound("Category")
	}
	toolID, err := uuid.Parse(chi.URLParam(r, "toolID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, store.NewNotFound("AI Tool")
	}
	return categoryID, toolID, nil
}
