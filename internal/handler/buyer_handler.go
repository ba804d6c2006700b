package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/facade"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/service"
)

type BuyerHandler struct {
	api        *facade.BuyerAPI
	dashboards *service.DashboardService
	validator  *payloadValidator
}

func NewBuyerHandler(api *facade.BuyerAPI, dashboards *service.DashboardService) *BuyerHandler {
	return &BuyerHandler{api: api, dashboards: dashboards, validator: newPayloadValidator()}
}

func (h *BuyerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboards.Buyer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, dashboard, nil)
}

func (h *BuyerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetProfile(r.Context())
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *BuyerHandler) Products(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetProducts(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *BuyerHandler) Cart(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetCart(r.Context())
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *BuyerHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, false)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.api.AddToCart(r.Context(), body)
	writeResult(w, r, http.StatusCreated, payload, err)
}

func (h *BuyerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetOrders(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *BuyerHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, true)
	if err != nil {
		writeError(w, err)
		return
	}

	var order any
	if body != nil {
		order = body
	}

	payload, err := h.api.CreateOrderFromCart(r.Context(), order)
	writeResult(w, r, http.StatusCreated, payload, err)
}

func (h *BuyerHandler) Quotations(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetQuotations(r.Context(), chi.URLParam(r, "orderId"))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *BuyerHandler) AcceptQuotation(w http.ResponseWriter, r *http.Request) {
	req := model.AcceptQuotationRequest{QuotationID: chi.URLParam(r, "quotationId")}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.api.AcceptQuotation(r.Context(), chi.URLParam(r, "orderId"), req.QuotationID)
	writeResult(w, r, http.StatusOK, payload, err)
}
