package http

import (
	"bytes"
	"net/http"

	"billing/internal/repository"
	"billing/internal/service"
)

func period(r *http.Request) (repository.Period, error) {
	query := r.URL.Query()
	return service.ParsePeriod(query.Get("from"), query.Get("to"))
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) Profit(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profit, err := h.svc.Profit(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sales, err := h.svc.SalesTotal(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": p.From, "to": p.To, "sales": sales, "profit": profit})
}

func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.svc.SalesReport(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

func (h *Handler) ExportSalesReport(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if _, err := h.svc.ExportSalesReport(r.Context(), &buf, p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, xlsxContentType, "sales_report.xlsx", &buf)
}

func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.svc.Customers(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

func (h *Handler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	p, err := period(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if _, err := h.svc.ExportCustomers(r.Context(), &buf, p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, xlsxContentType, "customer_list.xlsx", &buf)
}

func (h *Handler) PartyLedger(w http.ResponseWriter, r *http.Request) {
	row, err := h.svc.PartyLedger(r.URL.Query().Get("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.svc.Monthly(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}
