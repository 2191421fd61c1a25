package menu

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/appetiteclub/roms/internal/apperr"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the catalog over HTTP.
type Handler struct {
	catalog *Catalog
	logger  aqm.Logger
	config  *aqm.Config
	tlm     *telemetry.HTTP
}

func NewHandler(repo MenuItemRepo, notifier Notifier, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		catalog: NewCatalog(repo, notifier, logger),
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.ListMenuItems)
	r.Post("/menu", h.CreateMenuItem)
	r.Get("/menu/{id}", h.GetMenuItem)
	r.Put("/menu/{id}", h.UpdateMenuItem)
	r.Delete("/menu/{id}", h.DeleteMenuItem)
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateMenuItem")
	defer finish()
	log := h.log(r)

	var req MenuItemRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	item, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		h.fail(w, log, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, item, aqm.RESTfulLinksFor(item)...)
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenuItem")
	defer finish()
	log := h.log(r)

	id, ok := idParam(w, r, log)
	if !ok {
		return
	}

	item, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.fail(w, log, err)
		return
	}
	aqm.RespondSuccess(w, item, aqm.RESTfulLinksFor(item)...)
}

// ListMenuItems accepts optional category and available query filters.
func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenuItems")
	defer finish()

	q := r.URL.Query()
	filter := ListFilter{Category: q.Get("category")}
	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid available parameter")
			return
		}
		filter.Available = &available
	}

	items, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		h.fail(w, h.log(r), err)
		return
	}
	aqm.RespondCollection(w, items, "menu")
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMenuItem")
	defer finish()
	log := h.log(r)

	id, ok := idParam(w, r, log)
	if !ok {
		return
	}

	var req MenuItemRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	item, err := h.catalog.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, log, err)
		return
	}
	aqm.RespondSuccess(w, item, aqm.RESTfulLinksFor(item)...)
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMenuItem")
	defer finish()
	log := h.log(r)

	id, ok := idParam(w, r, log)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.fail(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, log aqm.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error("menu request failed", "error", err)
	}
	aqm.RespondError(w, status, apperr.PublicMessage(err))
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func idParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("bad menu item id", "id", raw)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, log aqm.Logger, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		log.Debug("bad menu payload", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}
