package billing

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/appetiteclub/roms/internal/apperr"
	"github.com/appetiteclub/roms/internal/order"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
	logger  aqm.Logger
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/{id}/invoice", h.GetInvoice)
	r.Get("/reports/orders", h.GetOrdersReport)
	r.Get("/reports/orders.csv", h.ExportOrdersCSV)
	r.Get("/metrics", h.GetDashboard)
	r.Get("/metrics/daily", h.GetDailyMetrics)
	r.Get("/metrics/weekly", h.GetWeeklyMetrics)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetInvoice")
	defer finish()
	log := h.log(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	invoice, err := h.service.Invoice(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot build invoice")
		return
	}

	aqm.RespondSuccess(w, invoice, aqm.RESTfulLinksFor(invoice)...)
}

func (h *Handler) GetOrdersReport(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrdersReport")
	defer finish()
	log := h.log(r)

	filter, ok := parseReportFilter(w, r)
	if !ok {
		return
	}

	report, err := h.service.Report(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot build report")
		return
	}

	aqm.RespondSuccess(w, report)
}

func (h *Handler) ExportOrdersCSV(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ExportOrdersCSV")
	defer finish()
	log := h.log(r)

	filter, ok := parseReportFilter(w, r)
	if !ok {
		return
	}

	report, err := h.service.Report(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, log, err, "cannot build report")
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, report.Rows); err != nil {
		log.Error("cannot render csv report", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not render report")
		return
	}

	filename := fmt.Sprintf("orders-report-%s.csv", report.GeneratedAt.Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDashboard")
	defer finish()

	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.respondServiceError(w, h.log(r), err, "cannot load dashboard")
		return
	}
	aqm.RespondSuccess(w, d)
}

func (h *Handler) GetDailyMetrics(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDailyMetrics")
	defer finish()

	m, err := h.service.Daily(r.Context())
	if err != nil {
		h.respondServiceError(w, h.log(r), err, "cannot load daily metrics")
		return
	}
	aqm.RespondSuccess(w, m)
}

func (h *Handler) GetWeeklyMetrics(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetWeeklyMetrics")
	defer finish()

	m, err := h.service.Weekly(r.Context())
	if err != nil {
		h.respondServiceError(w, h.log(r), err, "cannot load weekly metrics")
		return
	}
	aqm.RespondSuccess(w, m)
}

func parseReportFilter(w http.ResponseWriter, r *http.Request) (order.ListFilter, bool) {
	q := r.URL.Query()
	filter := order.ListFilter{Status: q.Get("status")}

	if raw := q.Get("table_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid table_number parameter")
			return order.ListFilter{}, false
		}
		filter.TableNumber = n
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid from parameter, expected YYYY-MM-DD")
			return order.ListFilter{}, false
		}
		filter.From = from
	}

	if raw := q.Get("to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid to parameter, expected YYYY-MM-DD")
			return order.ListFilter{}, false
		}
		filter.To = to.AddDate(0, 0, 1)
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		aqm.RespondError(w, http.StatusBadRequest, "from must not be after to")
		return order.ListFilter{}, false
	}

	return filter, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, log aqm.Logger, err error, msg string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, "error", err)
	}
	aqm.RespondError(w, status, apperr.PublicMessage(err))
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}
