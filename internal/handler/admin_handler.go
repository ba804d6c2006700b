package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/facade"
	"marketplace-portal/internal/service"
)

type AdminHandler struct {
	api        *facade.AdminAPI
	dashboards *service.DashboardService
}

func NewAdminHandler(api *facade.AdminAPI, dashboards *service.DashboardService) *AdminHandler {
	return &AdminHandler{api: api, dashboards: dashboards}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboards.Admin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, dashboard, nil)
}

func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetProfile(r.Context())
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *AdminHandler) Buyers(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetBuyers(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *AdminHandler) Sellers(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetSellers(r.Context(), apiclient.QueryFromValues(r.URL.Query()))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *AdminHandler) Admins(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.GetAdmins(r.Context())
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, false)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.api.CreateAdmin(r.Context(), body)
	writeResult(w, r, http.StatusCreated, payload, err)
}

func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.SuspendUser(r.Context(), chi.URLParam(r, "userId"))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *AdminHandler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.ActivateUser(r.Context(), chi.URLParam(r, "userId"))
	writeResult(w, r, http.StatusOK, payload, err)
}

func (h *AdminHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	payload, err := h.api.RemoveUser(r.Context(), chi.URLParam(r, "userId"))
	writeResult(w, r, http.StatusOK, payload, err)
}
