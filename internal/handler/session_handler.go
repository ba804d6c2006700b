package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketplace-portal/internal/middleware"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/service"
	"marketplace-portal/pkg/apierror"
)

// SessionHandler is the boundary to the external login flow: it accepts the
// credential a login produced and exposes what is currently stored.
type SessionHandler struct {
	service   *service.SessionService
	validator *payloadValidator
}

func NewSessionHandler(service *service.SessionService) *SessionHandler {
	return &SessionHandler{service: service, validator: newPayloadValidator()}
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	role, err := model.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var payload model.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := h.validator.Validate(payload); err != nil {
		writeError(w, err)
		return
	}

	info, err := h.service.SignIn(r.Context(), role, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, info, nil)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, nil)
}

func (h *SessionHandler) User(w http.ResponseWriter, r *http.Request) {
	role, err := model.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.User(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

// Logout clears every role and sends the browser to the landing page.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, middleware.RedirectTarget, http.StatusSeeOther)
}
