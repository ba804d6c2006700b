package handler

import (
	"net/http"
	"strconv"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/facade"
	"marketplace-portal/internal/service"
	"marketplace-portal/pkg/apierror"
)

type SellerHandler struct {
	api        *facade.SellerAPI
	dashboards *service.DashboardService
}

func NewSellerHandler(api *facade.SellerAPI, dashboards *service.DashboardService) *SellerHandler {
	return &SellerHandler{api: api, dashboards: dashboards}
}

func (h *SellerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboards.Seller(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, dashboard, nil)
}

func (h *SellerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetProfile(r.Context())
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *SellerHandler) AvailableOrders(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetAvailableOrders(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *SellerHandler) AcceptedOrders(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetAcceptedOrders(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *SellerHandler) Quotations(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetMyQuotations(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *SellerHandler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, false)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.api.CreateQuotation(r.Context(), body)
	writeResult(w, r, http.StatusCreated, payload, err)
}

// Analytics serves the overview for ?period=<days>, defaulting to 30.
func (h *SellerHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	period := 0
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, apierror.BadRequest("period must be a positive number of days", raw))
			return
		}
		period = parsed
	}

	payload, err := h.api.GetAnalytics(r.Context(), period)
	writeResult(w, r, http.StatusOK, payload, err)
}
