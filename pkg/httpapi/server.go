// SPDX-License-Identifier: Apache-2.0

// Package httpapi exposes the query pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/suqilabs/suqi/pkg/audit"
	"github.com/suqilabs/suqi/pkg/errors"
	"github.com/suqilabs/suqi/pkg/pipeline"
	"github.com/suqilabs/suqi/pkg/registry"
)

// Handler routes API requests to the pipeline and its stores.
type Handler struct {
	pipeline *pipeline.Pipeline
	registry *registry.Registry
	store    audit.Store
}

// NewHandler builds the API handler.
func NewHandler(p *pipeline.Pipeline, reg *registry.Registry, store audit.Store) *Handler {
	return &Handler{pipeline: p, registry: reg, store: store}
}

// Router assembles the chi router with the standard middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", h.query)
		r.Get("/capabilities", h.capabilities)
		r.Get("/audit", h.auditEvents)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSuqiError(w, errors.New(errors.CodeInvalidInput, "invalid request body", err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeSuqiError(w, errors.New(errors.CodeInvalidInput, "message is required", nil))
		return
	}

	resp := h.pipeline.Handle(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) capabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"capabilities": h.registry.List(),
	})
}

func (h *Handler) auditEvents(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeSuqiError(w, errors.New(errors.CodeNotFound, "audit store is not configured", nil))
		return
	}

	filter := audit.Filter{
		SessionID: r.URL.Query().Get("session_id"),
		Intent:    r.URL.Query().Get("intent"),
		Limit:     100,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeSuqiError(w, errors.New(errors.CodeInvalidInput, "limit must be a positive integer", nil))
			return
		}
		filter.Limit = limit
	}
	if r.URL.Query().Get("fallback_only") == "true" {
		filter.FallbackOnly = true
	}

	events, err := h.store.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "audit list failed", "error", err)
		writeSuqiError(w, errors.New(errors.CodeInternal, "failed to list audit events", err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(context.Background(), "response encode failed", "error", err)
	}
}

// writeSuqiError renders a typed error with its mapped status code.
// The cause is deliberately not exposed to clients.
func writeSuqiError(w http.ResponseWriter, se *errors.SuqiError) {
	writeJSON(w, se.StatusCode, map[string]string{
		"error": se.Message,
		"code":  string(se.Code),
	})
}
