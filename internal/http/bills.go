package http

import (
	"bytes"
	"net/http"
	"strings"

	"billing/internal/domain"
	"billing/internal/ledger"
	"billing/internal/mirror"

	"github.com/go-chi/chi/v5"
)

type billRequest struct {
	Kind         string             `json:"kind"`
	Counterparty string             `json:"counterparty"`
	Mode         string             `json:"mode"`
	Lines        []domain.LineInput `json:"lines"`
}

func (req billRequest) draft() (domain.BillDraft, error) {
	kind, err := domain.ParseBillKind(req.Kind)
	if err != nil {
		return domain.BillDraft{}, err
	}
	return domain.BillDraft{
		Kind:         kind,
		Counterparty: req.Counterparty,
		Mode:         req.Mode,
		Lines:        req.Lines,
	}, nil
}

type billResponse struct {
	Bill        domain.Bill            `json:"bill"`
	Warnings    []domain.StockShortage `json:"warnings"`
	Provisioned []string               `json:"provisioned"`
}

func newBillResponse(res ledger.BillResult) billResponse {
	out := billResponse{Bill: res.Bill, Warnings: res.Warnings, Provisioned: res.Provisioned}
	if out.Warnings == nil {
		out.Warnings = []domain.StockShortage{}
	}
	if out.Provisioned == nil {
		out.Provisioned = []string{}
	}
	return out
}

func billFilter(r *http.Request) (mirror.BillFilter, error) {
	query := r.URL.Query()
	filter := mirror.BillFilter{
		Text: query.Get("q"),
		From: query.Get("from"),
		To:   query.Get("to"),
	}
	if raw := strings.TrimSpace(query.Get("kind")); raw != "" && !strings.EqualFold(raw, "all") {
		kind, err := domain.ParseBillKind(raw)
		if err != nil {
			return mirror.BillFilter{}, err
		}
		filter.Kind = kind
	}
	return filter, nil
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	filter, err := billFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bills, err := h.svc.ListBills(filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": bills, "count": len(bills)})
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bill, err := h.svc.GetBill(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.CreateBill(r.Context(), draft)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newBillResponse(res))
}

// CheckBill reports stock shortages for a draft without writing anything. Pass
// ?editing=<id> when the draft replaces an existing bill.
func (h *Handler) CheckBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var editing int64
	if raw := strings.TrimSpace(r.URL.Query().Get("editing")); raw != "" {
		if editing, err = parseID(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	shortages := h.svc.CheckStock(draft, editing)
	if shortages == nil {
		shortages = []domain.StockShortage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": shortages, "grand_total": draft.GrandTotal()})
}

func (h *Handler) EditBill(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.EditBill(r.Context(), id, draft)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBillResponse(res))
}

func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteBill(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BillPDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	name, err := h.svc.BillPDF(&buf, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, "application/pdf", name, &buf)
}

func (h *Handler) ExportBills(w http.ResponseWriter, r *http.Request) {
	filter, err := billFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if _, err := h.svc.ExportBills(&buf, filter); err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, xlsxContentType, "bills_data.xlsx", &buf)
}
