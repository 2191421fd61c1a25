package tables

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/appetiteclub/roms/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Notifier interface {
	Notify(ctx context.Context, signal event.Signal)
}

type Handler struct {
	repo     TableRepo
	orders   OpenOrders
	notifier Notifier
	logger   aqm.Logger
	config   *aqm.Config
	tlm      *telemetry.HTTP
}

func NewHandler(repo TableRepo, orders OpenOrders, notifier Notifier, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		repo:     repo,
		orders:   orders,
		notifier: notifier,
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.ListTables)
	r.Post("/tables", h.CreateTable)
	r.Get("/tables/{id}", h.GetTable)
	r.Patch("/tables/{id}", h.UpdateTable)
	r.Delete("/tables/{id}", h.DeleteTable)
}

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req TableCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if validationErrors := ValidateTableCreate(req); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	table := NewTable()
	table.Number = req.Number
	table.Capacity = req.Capacity
	if req.Status != "" {
		table.Status = strings.ToLower(strings.TrimSpace(req.Status))
	}
	table.BeforeCreate()

	if !h.ensureNumberFree(w, r, log, table.Number, uuid.Nil) {
		return
	}

	if err := h.repo.Create(ctx, table); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			aqm.RespondError(w, http.StatusBadRequest, "Table number already exists")
			return
		}
		log.Error("cannot create table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}

	h.notify(ctx)

	view, err := h.view(ctx, table)
	if err != nil {
		log.Error("cannot derive table status", "error", err)
		view = View{Table: table, DisplayStatus: DisplayStatus(table.Status, false)}
	}

	links := aqm.RESTfulLinksFor(table)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, view, links...)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load table")
		return
	}
	if table == nil {
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	view, err := h.view(ctx, table)
	if err != nil {
		log.Error("cannot derive table status", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load table")
		return
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, view, links...)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	tables, err := h.repo.List(ctx)
	if err != nil {
		log.Error("error retrieving tables", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	occupied, err := occupiedNumbers(ctx, h.orders)
	if err != nil {
		log.Error("cannot derive table status", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })

	views := viewsOf(tables, occupied)
	if status := strings.ToLower(r.URL.Query().Get("status")); status != "" {
		filtered := views[:0]
		for _, v := range views {
			if v.DisplayStatus == status {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	aqm.RespondCollection(w, views, "tables")
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TableUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if validationErrors := ValidateTableUpdate(req); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	table, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load table")
		return
	}
	if table == nil {
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	if req.Number != nil && *req.Number != table.Number {
		if !h.ensureNumberFree(w, r, log, *req.Number, table.ID) {
			return
		}
	}

	table.Apply(req)
	table.BeforeUpdate()

	if err := h.repo.Save(ctx, table); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateNumber):
			aqm.RespondError(w, http.StatusBadRequest, "Table number already exists")
		case errors.Is(err, ErrNotFound):
			aqm.RespondError(w, http.StatusNotFound, "Table not found")
		default:
			log.Error("cannot update table", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not update table")
		}
		return
	}

	h.notify(ctx)

	view, err := h.view(ctx, table)
	if err != nil {
		log.Error("cannot derive table status", "error", err)
		view = View{Table: table, DisplayStatus: DisplayStatus(table.Status, false)}
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, view, links...)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Table not found")
			return
		}
		log.Error("cannot delete table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete table")
		return
	}

	h.notify(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *Handler) view(ctx context.Context, table *Table) (View, error) {
	occupied, err := occupiedNumbers(ctx, h.orders)
	if err != nil {
		return View{}, err
	}
	return View{Table: table, DisplayStatus: DisplayStatus(table.Status, occupied[table.Number])}, nil
}

func (h *Handler) ensureNumberFree(w http.ResponseWriter, r *http.Request, log aqm.Logger, number int, self uuid.UUID) bool {
	existing, err := h.repo.GetByNumber(r.Context(), number)
	if err != nil {
		log.Error("cannot check table number", "error", err, "number", number)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not check table number")
		return false
	}
	if existing != nil && existing.ID != self {
		aqm.RespondError(w, http.StatusBadRequest, "Table number already exists")
		return false
	}
	return true
}

func (h *Handler) notify(ctx context.Context) {
	if h.notifier != nil {
		h.notifier.Notify(ctx, event.NewSignal(event.TablesUpdated))
	}
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
		log.Debug("invalid id parameter", "id", idStr, "error", err)
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
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}

	return true
}
