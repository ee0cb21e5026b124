// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/poiesic/kindred/align"
	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/suggest"
	"github.com/poiesic/kindred/tabulate"
	"github.com/poiesic/kindred/upstream"
)

// ErrEngineRequired is returned when a Handler is created without an Engine.
var ErrEngineRequired = errors.New("engine required")

// errBadRequest marks query parameters that could not be parsed.
var errBadRequest = errors.New("bad request")

// Engine is what the handlers need from a kindred.Engine.
type Engine interface {
	Suggest(ctx context.Context, req suggest.Request) (*suggest.Result, error)
	SuggestTabulated(ctx context.Context, req suggest.Request, threshold float64) (*suggest.Result, *tabulate.Table, error)
	Threshold() float64
	Align(ctx context.Context, req align.Request) (*align.Result, error)
	SearchTerm(ctx context.Context, req align.Request) (*core.SearchPage, error)
}

// Handler serves the HTTP routes.
type Handler struct {
	engine         Engine
	metrics        *upstream.Metrics
	statsHistory   int
	allowedOrigins []string
	logger         *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler) error

// WithMetrics sets the collector served by /stats.
// Without one /stats reports no methods.
func WithMetrics(m *upstream.Metrics) Option {
	return func(h *Handler) error {
		h.metrics = m
		return nil
	}
}

// WithStatsHistory sets how many recent requests per method /stats summarizes
// when the request does not say. Zero means all of them.
func WithStatsHistory(n int) Option {
	return func(h *Handler) error {
		if n < 0 {
			return fmt.Errorf("stats history cannot be negative, got %d", n)
		}
		h.statsHistory = n
		return nil
	}
}

// WithAllowedOrigins sets the CORS origins.
// Default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) error {
		h.allowedOrigins = origins
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger.With("component", "http")
		return nil
	}
}

// NewHandler creates a Handler.
func NewHandler(engine Engine, opts ...Option) (*Handler, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	h := &Handler{
		engine:         engine,
		allowedOrigins: []string{"*"},
		logger:         slog.Default().With("component", "http"),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Router returns a chi router with middleware and every route registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the routes to r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/articles/suggest", h.Suggest)
	r.Get("/articles/suggest/tabulated", h.SuggestTabulated)
	r.Get("/articles/align", h.Align)
	r.Get("/articles/search", h.SearchTerm)
	r.Get("/stats", h.Stats)
	r.Delete("/stats", h.ResetStats)
}

type window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type suggestResponse struct {
	*suggest.Result
	Window  window `json:"window"`
	Ranking string `json:"ranking"`
}

type tabulatedResponse struct {
	suggestResponse
	Tabulated *tabulate.Table `json:"tabulatedArticles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// Suggest serves ranked suggestions.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.engine.Suggest(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSuggestResponse(result))
}

// SuggestTabulated serves suggestions plus their tabulation.
func (h *Handler) SuggestTabulated(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	threshold, err := core.ParseScoreThreshold(r.URL.Query().Get("threshold"), h.engine.Threshold())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, table, err := h.engine.SuggestTabulated(r.Context(), req, threshold)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tabulatedResponse{
		suggestResponse: newSuggestResponse(result),
		Tabulated:       table,
	})
}

// Align serves the articles mentioning a term, split around it.
func (h *Handler) Align(w http.ResponseWriter, r *http.Request) {
	req, err := parseAlignRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.engine.Align(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SearchTerm serves one page of articles mentioning a term.
func (h *Handler) SearchTerm(w http.ResponseWriter, r *http.Request) {
	req, err := parseAlignRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.engine.SearchTerm(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Stats serves the upstream metrics summary.
// The history parameter limits each method to its most recent requests.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	history := h.statsHistory
	if v := r.URL.Query().Get("history"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, fmt.Errorf("%w: history %q", errBadRequest, v))
			return
		}
		history = n
	}

	summary := map[string]upstream.Summary{}
	if h.metrics != nil {
		summary = h.metrics.Snapshot(history)
	}
	writeJSON(w, http.StatusOK, summary)
}

// ResetStats clears the upstream metrics.
func (h *Handler) ResetStats(w http.ResponseWriter, r *http.Request) {
	if h.metrics != nil {
		h.metrics.Reset()
	}
	w.WriteHeader(http.StatusNoContent)
}

func newSuggestResponse(result *suggest.Result) suggestResponse {
	return suggestResponse{
		Result:  result,
		Window:  window{From: result.Window.Earliest, To: result.Window.Latest},
		Ranking: result.Ranking.String(),
	}
}

func parseRequest(r *http.Request) (suggest.Request, error) {
	q := r.URL.Query()
	req := suggest.Request{}

	if ids := q.Get("ids"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.ExemplarIDs = append(req.ExemplarIDs, id)
			}
		}
	}

	var err error
	if req.DaysBefore, err = parseDays(q.Get("daysBefore")); err != nil {
		return req, fmt.Errorf("%w: daysBefore: %w", errBadRequest, err)
	}
	if req.DaysAfter, err = parseDays(q.Get("daysAfter")); err != nil {
		return req, fmt.Errorf("%w: daysAfter: %w", errBadRequest, err)
	}

	if name := q.Get("ranking"); name != "" {
		ranking, err := suggest.ParseRanking(name)
		if err != nil {
			return req, err
		}
		req.Ranking = &ranking
	}
	return req, nil
}

func parseAlignRequest(r *http.Request) (align.Request, error) {
	q := r.URL.Query()
	req := align.Request{Term: q.Get("term")}

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: year %q", errBadRequest, v)
		}
		req.Year = year
	}
	if name := q.Get("sortBy"); name != "" {
		sortBy, err := align.ParseSortBy(name)
		if err != nil {
			return req, err
		}
		req.SortBy = &sortBy
	}
	if name := q.Get("source"); name != "" {
		source, err := align.ParseSource(name)
		if err != nil {
			return req, err
		}
		req.Source = &source
	}
	return req, nil
}

func parseDays(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrInvalidScoreThreshold),
		errors.Is(err, core.ErrInvalidWindow),
		errors.Is(err, suggest.ErrUnknownRanking),
		errors.Is(err, align.ErrUnknownSortBy),
		errors.Is(err, align.ErrUnknownSource),
		errors.Is(err, align.ErrInvalidYear):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		h.logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// logRequests logs one line per request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}
