package order

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/appetiteclub/roms/internal/apperr"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

const dateLayout = "2006-01-02"

type Handler struct {
	logger  aqm.Logger
	config  *aqm.Config
	tlm     *telemetry.HTTP
	service *Service
}

func NewHandler(service *Service, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return &Handler{
		config:  config,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
		service: service,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.PlaceOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}", h.GetOrder)
	r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
	r.Patch("/orders/{id}/items/{index}/status", h.UpdateItemStatus)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PlaceOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req PlaceOrderRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, created, err := h.service.Place(ctx, req)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot place order")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	if created {
		w.WriteHeader(http.StatusCreated)
	}
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.service.Get(ctx, id)
	if err != nil {
		h.respondServiceError(w, log, err, "error loading order")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	filter, ok := h.parseListFilter(w, r, log)
	if !ok {
		return
	}

	orders, err := h.service.List(ctx, filter)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot list orders")
		return
	}

	aqm.RespondCollection(w, orders, "orders")
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot update order status")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		log.Debug("invalid item index", "index", chi.URLParam(r, "index"))
		aqm.RespondError(w, http.StatusBadRequest, "Invalid item index")
		return
	}

	var req ItemStatusUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.service.UpdateItemStatus(ctx, id, index, req)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot update item status")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

// Helpers

func (h *Handler) respondServiceError(w http.ResponseWriter, log aqm.Logger, err error, msg string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, "error", err)
	} else {
		log.Debug(msg, "error", err)
	}
	aqm.RespondError(w, status, apperr.PublicMessage(err))
}

func (h *Handler) parseListFilter(w http.ResponseWriter, r *http.Request, log aqm.Logger) (ListFilter, bool) {
	q := r.URL.Query()
	filter := ListFilter{Status: q.Get("status")}

	if raw := q.Get("table_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			log.Debug("invalid table_number filter", "value", raw)
			aqm.RespondError(w, http.StatusBadRequest, "Invalid table_number parameter")
			return ListFilter{}, false
		}
		filter.TableNumber = n
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid from parameter, expected YYYY-MM-DD")
			return ListFilter{}, false
		}
		filter.From = from
	}

	if raw := q.Get("to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid to parameter, expected YYYY-MM-DD")
			return ListFilter{}, false
		}
		filter.To = to.AddDate(0, 0, 1)
	}

	return filter, true
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("failed to decode request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}
