package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/report"
	"consignhub/backend/internal/service"
)

func (a *API) handleStorefront(w http.ResponseWriter, r *http.Request) {
	if !a.publicLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many requests"))
		return
	}
	query := r.URL.Query()
	resp, err := a.service.StorefrontItems(r.Context(), chi.URLParam(r, "slug"), query.Get("category"), parsePositiveLimit(query.Get("limit"), 50, 200))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := a.service.GetOrganization(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"organization": org})
}

func (a *API) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req domain.OrganizationUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	org, err := a.service.UpdateOrganization(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"organization": org})
}

func (a *API) handleListConsignors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := a.service.ListConsignors(r.Context(), domain.ConsignorFilter{
		Status: query.Get("status"),
		Search: query.Get("q"),
		Offset: parseOffset(query.Get("offset")),
		Limit:  parsePositiveLimit(query.Get("limit"), 50, 200),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCreateConsignor(w http.ResponseWriter, r *http.Request) {
	var req domain.ConsignorCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	consignor, err := a.service.CreateConsignor(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"consignor": consignor})
}

func (a *API) handleGetConsignor(w http.ResponseWriter, r *http.Request) {
	consignor, err := a.service.GetConsignor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"consignor": consignor})
}

func (a *API) handleUpdateConsignor(w http.ResponseWriter, r *http.Request) {
	var req domain.ConsignorUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	consignor, err := a.service.UpdateConsignor(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"consignor": consignor})
}

func (a *API) handleConsignorSummaries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	descending := strings.EqualFold(query.Get("order"), "desc")
	resp, err := a.service.ConsignorSummaries(r.Context(), query.Get("sort_by"), descending, query.Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleConsignorMetrics(w http.ResponseWriter, r *http.Request) {
	resp, err := a.service.ConsignorMetrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleConsignorStatement(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format, err := report.ParseFormat(query.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	statement, err := a.service.ConsignorStatement(r.Context(), chi.URLParam(r, "id"), query.Get("month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := "statement-" + statement.Consignor.Number + "-" + statement.Month
	switch format {
	case report.FormatCSV:
		writeDownload(w, format, filename, func(out io.Writer) error { return report.WriteStatementCSV(out, statement) })
	case report.FormatXLSX:
		writeDownload(w, format, filename, func(out io.Writer) error { return report.WriteStatementXLSX(out, statement) })
	default:
		writeJSON(w, http.StatusOK, statement)
	}
}

func (a *API) handleListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := a.service.ListItems(r.Context(), domain.ItemFilter{
		ConsignorID: query.Get("consignor_id"),
		Status:      query.Get("status"),
		Category:    query.Get("category"),
		Search:      query.Get("q"),
		Offset:      parseOffset(query.Get("offset")),
		Limit:       parsePositiveLimit(query.Get("limit"), 50, 200),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.CreateItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": item})
}

func (a *API) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (a *API) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (a *API) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.service.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.TransactionFilter{
		ConsignorID: query.Get("consignor_id"),
		ItemID:      query.Get("item_id"),
		Limit:       parsePositiveLimit(query.Get("limit"), 100, 1000),
	}
	if raw := query.Get("from"); raw != "" {
		from, err := service.ParseDay(raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := service.ParseDay(raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	filter.UnpaidOnly, _ = strconv.ParseBool(query.Get("unpaid"))
	filter.IncludeVoided, _ = strconv.ParseBool(query.Get("include_voided"))

	sales, err := a.service.ListSales(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.RecordSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := a.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

// handleVoidSale requires the manager PIN on top of the admin role.
func (a *API) handleVoidSale(w http.ResponseWriter, r *http.Request) {
	if !a.pinLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many manager PIN attempts"))
		return
	}

	var req domain.VoidSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !a.auth.ValidateManagerPIN(req.ManagerPIN) {
		writeError(w, http.StatusForbidden, errors.New("invalid manager PIN"))
		return
	}

	sale, err := a.service.VoidSale(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := a.service.ListPayouts(r.Context(), domain.PayoutFilter{
		ConsignorID: query.Get("consignor_id"),
		Status:      query.Get("status"),
		Limit:       parsePositiveLimit(query.Get("limit"), 100, 500),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCreatePayout(w http.ResponseWriter, r *http.Request) {
	var req domain.PayoutCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.CreatePayout(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handlePayoutApprovals(w http.ResponseWriter, r *http.Request) {
	minBalance := decimal.Zero
	if raw := strings.TrimSpace(r.URL.Query().Get("min_balance")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("min_balance must be a decimal number"))
			return
		}
		minBalance = parsed
	}
	resp, err := a.service.PayoutApprovals(r.Context(), minBalance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetPayout(w http.ResponseWriter, r *http.Request) {
	resp, err := a.service.GetPayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handlePayPayout(w http.ResponseWriter, r *http.Request) {
	var req domain.PayoutPayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payout, err := a.service.MarkPayoutPaid(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payout": payout})
}

func (a *API) handleCancelPayout(w http.ResponseWriter, r *http.Request) {
	if err := a.service.CancelPayout(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := a.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format, err := report.ParseFormat(query.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := a.service.SalesReport(r.Context(), query.Get("from"), query.Get("to"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := "sales-" + rep.From + "-" + rep.To
	switch format {
	case report.FormatCSV:
		writeDownload(w, format, filename, func(out io.Writer) error { return report.WriteSalesCSV(out, rep) })
	case report.FormatXLSX:
		writeDownload(w, format, filename, func(out io.Writer) error { return report.WriteSalesXLSX(out, rep) })
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

func (a *API) handleAgingReport(w http.ResponseWriter, r *http.Request) {
	rep, err := a.service.InventoryAging(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func parseOffset(raw string) int {
	offset, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
