package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/davidbz/kiln/internal/advisor"
	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

// Response headers describing how a feature result was produced.
const (
	HeaderPartial     = "X-Kiln-Partial"
	HeaderCache       = "X-Kiln-Cache"
	HeaderFingerprint = "X-Kiln-Fingerprint"
	HeaderStale       = "X-Kiln-Stale"
)

// maxBodyBytes bounds feature request bodies.
const maxBodyBytes = 64 << 10

// FeatureRequest is the body of every feature endpoint.
type FeatureRequest struct {
	Entry      string `json:"entry"`
	Model      string `json:"model,omitempty"`
	Candidates []int  `json:"candidates,omitempty"`
	Force      bool   `json:"force,omitempty"`
	Proposal   bool   `json:"proposal,omitempty"`
}

func (r FeatureRequest) query() advisor.Query {
	return advisor.Query{
		Entry:    r.Entry,
		Model:    r.Model,
		Force:    r.Force,
		Proposal: r.Proposal,
	}
}

// Handler handles HTTP requests.
type Handler struct {
	advisor *advisor.Advisor
	ledger  *domain.UsageLedger
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(advisor *advisor.Advisor, ledger *domain.UsageLedger) *Handler {
	return &Handler{
		advisor: advisor,
		ledger:  ledger,
	}
}

// HandleRank serves POST /v1/rank.
func (h *Handler) HandleRank(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	result, meta, err := h.advisor.Rank(r.Context(), req.query())
	writeResult(w, r, result, meta, err)
}

// HandleDetail serves POST /v1/detail.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	result, meta, err := h.advisor.Detail(r.Context(), req.query(), req.Candidates)
	writeResult(w, r, result, meta, err)
}

// HandleAlternatives serves POST /v1/alternatives.
func (h *Handler) HandleAlternatives(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	result, meta, err := h.advisor.Alternatives(r.Context(), req.query())
	writeResult(w, r, result, meta, err)
}

// HandleContext serves POST /v1/context.
func (h *Handler) HandleContext(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	result, meta, err := h.advisor.Context(r.Context(), req.query())
	writeResult(w, r, result, meta, err)
}

// HandleScenario serves POST /v1/scenario.
func (h *Handler) HandleScenario(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	result, meta, err := h.advisor.Scenario(r.Context(), req.query())
	writeResult(w, r, result, meta, err)
}

// HandleThoughts serves POST /v1/thoughts.
func (h *Handler) HandleThoughts(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeatureRequest(w, r)
	if !ok {
		return
	}
	result, meta, err := h.advisor.Thoughts(r.Context(), req.query())
	writeResult(w, r, result, meta, err)
}

// HandleCancel serves DELETE /v1/inflight/{fingerprint}.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if !h.advisor.Cancel(r.PathValue("fingerprint")) {
		writeError(w, http.StatusNotFound, "no request in flight for fingerprint")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUsage serves GET /v1/usage.
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.ledger.Snapshot())
}

// HandleUsageFlush serves POST /v1/usage/flush.
func (h *Handler) HandleUsageFlush(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Flush(r.Context()); err != nil {
		observability.FromContext(r.Context()).Warn("usage flush failed", observability.Error(err))
		writeError(w, http.StatusBadGateway, fmt.Sprintf("usage flush failed: %v", err))
		return
	}
	writeJSON(w, r, http.StatusOK, h.ledger.Snapshot())
}

// HandleUsageReset serves DELETE /v1/usage.
func (h *Handler) HandleUsageReset(w http.ResponseWriter, _ *http.Request) {
	h.ledger.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func decodeFeatureRequest(w http.ResponseWriter, r *http.Request) (FeatureRequest, bool) {
	var req FeatureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return FeatureRequest{}, false
	}
	return req, true
}

func writeResult[T any](w http.ResponseWriter, r *http.Request, result domain.Result[T], meta advisor.Meta, err error) {
	logger := observability.FromContext(r.Context())

	if meta.Fingerprint != "" {
		w.Header().Set(HeaderFingerprint, meta.Fingerprint)
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, advisor.ErrDuplicateRequest):
			writeError(w, http.StatusConflict, err.Error())
		default:
			logger.Error("feature request failed", observability.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	cache := "MISS"
	if meta.Cached {
		cache = "HIT"
	}
	w.Header().Set(HeaderCache, cache)
	w.Header().Set(HeaderPartial, strconv.FormatBool(result.Partial()))
	if meta.Stale {
		w.Header().Set(HeaderStale, "true")
	}

	logger.Info("feature request served",
		observability.Bool("partial", result.Partial()),
		observability.Bool("cached", meta.Cached),
	)

	writeJSON(w, r, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(r.Context()).Error("failed to encode response", observability.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
