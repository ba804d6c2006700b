package handler

import (
	"net/http"

	"marketplace-portal/internal/middleware"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/service"
)

const portalName = "marketplace-portal"

type PortalHandler struct {
	sessions *service.SessionService
}

func NewPortalHandler(sessions *service.SessionService) *PortalHandler {
	return &PortalHandler{sessions: sessions}
}

// Landing lists every role with its sign-in state and entry points.
func (h *PortalHandler) Landing(w http.ResponseWriter, r *http.Request) {
	list, err := h.sessions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.LandingPage{Name: portalName, Sessions: list.Sessions}, nil)
}

func (h *PortalHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// NotFound sends unknown paths to the landing page.
func (h *PortalHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.RedirectTarget, http.StatusSeeOther)
}
