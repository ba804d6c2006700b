package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/event"
	"marketplace-portal/internal/facade"
	"marketplace-portal/internal/handler"
	"marketplace-portal/internal/middleware"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/service"
	"marketplace-portal/internal/session"
	"marketplace-portal/internal/websocket"
)

type backendCall struct {
	Method string
	URI    string
	Auth   string
	Body   string
}

type fakeMarketplace struct {
	mu       sync.Mutex
	calls    []backendCall
	status   int
	response string
}

func (f *fakeMarketplace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, backendCall{Method: r.Method, URI: r.URL.RequestURI(), Auth: r.Header.Get("Authorization"), Body: string(body)})
	status, response := f.status, f.response
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response))
}

func (f *fakeMarketplace) reply(status int, response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.response = status, response
}

func (f *fakeMarketplace) recorded() []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backendCall(nil), f.calls...)
}

type portal struct {
	handler http.Handler
	store   session.Store
	backend *fakeMarketplace
	events  <-chan event.Event
}

func newPortal(t *testing.T) *portal {
	t.Helper()

	backend := &fakeMarketplace{response: `{}`}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	t.Cleanup(unsubscribe)
	hub := websocket.NewHub(bus)

	sessions := service.NewSessionService(store, bus, hub)
	resolver := session.NewResolver(store)
	client := apiclient.New(resolver, store, apiclient.Options{
		BaseURL:          server.URL,
		OnSessionExpired: sessions.HandleExpired,
	})

	buyer := facade.NewBuyerAPI(client)
	seller := facade.NewSellerAPI(client)
	admin := facade.NewAdminAPI(client)
	dashboards := service.NewDashboardService(buyer, seller, admin, sessions)

	cfg := &config.Config{RequestTimeout: 5 * time.Second, SessionRateLimitRPM: 1000, CORSOrigins: []string{"*"}}
	h := New(cfg, middleware.NewSessionGuard(resolver), Handlers{
		Portal:  handler.NewPortalHandler(sessions),
		Session: handler.NewSessionHandler(sessions),
		Buyer:   handler.NewBuyerHandler(buyer, dashboards),
		Seller:  handler.NewSellerHandler(seller, dashboards),
		Admin:   handler.NewAdminHandler(admin, dashboards),
	}, hub)

	return &portal{handler: h, store: store, backend: backend, events: events}
}

func (p *portal) do(t *testing.T, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	return rec
}

func (p *portal) signIn(t *testing.T, role model.Role, token string) {
	t.Helper()
	require.NoError(t, p.store.Set(context.Background(), role, token, json.RawMessage(`{"name":"test"}`)))
}

func TestGuardedRouteRedirectsWithoutSession(t *testing.T) {
	p := newPortal(t)

	for _, target := range []string{"/buyer/dashboard", "/seller/orders", "/admin/users/buyers"} {
		rec := p.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get("Location"), target)
	}

	assert.Empty(t, p.backend.recorded())
}

func TestSignInThenBrowse(t *testing.T) {
	p := newPortal(t)

	rec := p.do(t, http.MethodPost, "/api/session/buyer", `{"token":"buyer-token","user":{"name":"Ada"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	p.backend.reply(http.StatusOK, `{"orders":[{"id":1}],"pagination":{"totalItems":1}}`)
	rec = p.do(t, http.MethodGet, "/buyer/orders?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"orders":[{"id":1}],"pagination":{"totalItems":1}}`, string(resp.Data))

	calls := p.backend.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/orders/my-orders?limit=5", calls[0].URI)
	assert.Equal(t, "Bearer buyer-token", calls[0].Auth)

	rec = p.do(t, http.MethodGet, "/api/session/buyer/user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada"`)
}

func TestSignInValidation(t *testing.T) {
	p := newPortal(t)

	rec := p.do(t, http.MethodPost, "/api/session/buyer", `{"user":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(t, http.MethodPost, "/api/session/courier", `{"token":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnauthorizedUpstreamClearsEverySession(t *testing.T) {
	p := newPortal(t)
	p.signIn(t, model.RoleBuyer, "buyer-token")
	p.signIn(t, model.RoleAdmin, "admin-token")

	p.backend.reply(http.StatusUnauthorized, `{"message":"jwt expired"}`)
	rec := p.do(t, http.MethodGet, "/admin/users/buyers?page=2", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	for _, role := range model.Roles() {
		_, err := p.store.Get(context.Background(), role)
		assert.ErrorIs(t, err, model.ErrNoSession, role.String())
	}

	var sawExpired, sawNavigate bool
	for len(p.events) > 0 {
		e := <-p.events
		sawExpired = sawExpired || e.Type == event.TypeSessionExpired
		sawNavigate = sawNavigate || e.Type == event.TypeNavigate
	}
	assert.True(t, sawExpired)
	assert.True(t, sawNavigate)

	rec = p.do(t, http.MethodGet, "/buyer/cart", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, p.backend.recorded(), 1)
}

func TestUpstreamFailureKeepsSession(t *testing.T) {
	p := newPortal(t)
	p.signIn(t, model.RoleSeller, "seller-token")

	p.backend.reply(http.StatusInternalServerError, `{"message":"db down"}`)
	rec := p.do(t, http.MethodGet, "/seller/quotations", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	sess, err := p.store.Get(context.Background(), model.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, "seller-token", sess.Token)
}

func TestAdminUserActions(t *testing.T) {
	p := newPortal(t)
	p.signIn(t, model.RoleAdmin, "admin-token")
	p.backend.reply(http.StatusOK, `{"success":true}`)

	rec := p.do(t, http.MethodPut, "/admin/users/u42/suspend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = p.do(t, http.MethodDelete, "/admin/users/u42", "")
	require.Equal(t, http.StatusOK, rec.Code)

	calls := p.backend.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, backendCall{Method: http.MethodPut, URI: "/api/admin/users/u42/suspend", Auth: "Bearer admin-token"}, calls[0])
	assert.Equal(t, backendCall{Method: http.MethodDelete, URI: "/api/admin/users/u42/remove", Auth: "Bearer admin-token"}, calls[1])
}

func TestAcceptQuotation(t *testing.T) {
	p := newPortal(t)
	p.signIn(t, model.RoleBuyer, "buyer-token")

	rec := p.do(t, http.MethodPost, "/buyer/orders/17/quotations/q9/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)

	calls := p.backend.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/orders/17/accept-quotation", calls[0].URI)
	assert.JSONEq(t, `{"quotation_id":"q9"}`, calls[0].Body)
}

func TestLandingLogoutAndCatchAll(t *testing.T) {
	p := newPortal(t)
	p.signIn(t, model.RoleSeller, "seller-token")

	rec := p.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"seller","signed_in":true`)

	rec = p.do(t, http.MethodGet, "/does/not/exist", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = p.do(t, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := p.store.Get(context.Background(), model.RoleSeller)
	assert.ErrorIs(t, err, model.ErrNoSession)
}

func TestHealth(t *testing.T) {
	p := newPortal(t)

	rec := p.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
