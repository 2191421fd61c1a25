package settings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/roms/internal/billing"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 16

// Summarizer provides the all-time sales figures shown next to the rate.
type Summarizer interface {
	Summary(ctx context.Context) (billing.Summary, error)
}

type Handler struct {
	store   *Store
	summary Summarizer
	logger  aqm.Logger
	tlm     *telemetry.HTTP
}

type RateUpdateRequest struct {
	Value *float64 `json:"value"`
}

type Response struct {
	GSTRate float64 `json:"gst_rate"`
	Version int64   `json:"version"`
	billing.Summary
}

func NewHandler(store *Store, summary Summarizer, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		store:   store,
		summary: summary,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.GetSettings)
	r.Get("/settings/gst-rate", h.GetRate)
	r.Patch("/settings/gst-rate", h.UpdateRate)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSettings")
	defer finish()
	log := h.log(r)

	current := h.store.Current()
	resp := Response{GSTRate: current.GSTRate, Version: current.Version}

	if h.summary != nil {
		summary, err := h.summary.Summary(r.Context())
		if err != nil {
			log.Error("cannot compute sales summary", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not load settings")
			return
		}
		resp.Summary = summary
	}

	aqm.RespondSuccess(w, resp)
}

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetRate")
	defer finish()

	current := h.store.Current()
	aqm.RespondSuccess(w, map[string]interface{}{
		"gst_rate": current.GSTRate,
		"version":  current.Version,
	})
}

func (h *Handler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateRate")
	defer finish()
	log := h.log(r)

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req RateUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("invalid gst rate payload", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Value == nil {
		aqm.RespondError(w, http.StatusBadRequest, "value is required")
		return
	}

	updated, err := h.store.SetRate(r.Context(), *req.Value)
	switch {
	case errors.Is(err, ErrInvalidRate):
		aqm.RespondError(w, http.StatusBadRequest, "GST rate must be a number between 0 and 1")
		return
	case errors.Is(err, ErrConcurrentUpdate):
		aqm.RespondError(w, http.StatusConflict, "Settings changed concurrently, retry")
		return
	case err != nil:
		log.Error("cannot update gst rate", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update GST rate")
		return
	}

	aqm.RespondSuccess(w, map[string]interface{}{
		"gst_rate": updated.GSTRate,
		"version":  updated.Version,
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}
