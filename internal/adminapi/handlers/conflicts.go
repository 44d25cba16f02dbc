package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/operation"
)

// ConflictHandler exposes the resolver's unresolved conflicts and lets
// an operator resolve one manually, enqueuing the conflict for a human
// decision when automatic resolution doesn't apply.
type ConflictHandler struct {
	resolver *conflict.Resolver
}

func NewConflictHandler(resolver *conflict.Resolver) *ConflictHandler {
	return &ConflictHandler{resolver: resolver}
}

// List returns every currently unresolved conflict. With ?stale=true it
// returns only those retained past the configured conflictTimeoutMs.
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stale") == "true" {
		writeJSON(w, http.StatusOK, h.resolver.Stale(time.Now().UnixMilli()))
		return
	}
	writeJSON(w, http.StatusOK, h.resolver.Unresolved())
}

// Stats returns the resolver's lifetime counters.
func (h *ConflictHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver.Stats())
}

type resolveRequest struct {
	Strategy     operation.Strategy `json:"strategy"`
	ResolvedData map[string]any     `json:"resolvedData,omitempty"`
}

// Resolve applies an operator-chosen strategy to a retained conflict.
// This is the admin surface's one mutating route and sits behind the
// JWT middleware.
func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Strategy == "" {
		writeError(w, http.StatusBadRequest, "strategy is required")
		return
	}

	c, ok := h.resolver.ResolveManually(id, req.Strategy, req.ResolvedData)
	if !ok {
		writeError(w, http.StatusNotFound, "conflict not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
