package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/model"
	"marketplace-portal/internal/session"
	"marketplace-portal/pkg/requestid"
)

type recordedRequest struct {
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Body    []byte
	HasBody bool
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{status: status, body: body}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Header:  r.Header.Clone(),
			Body:    payload,
			HasBody: len(payload) > 0,
		})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		_, _ = io.WriteString(w, api.body)
	}))
	t.Cleanup(server.Close)

	return api, server
}

func (a *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.requests)
	return a.requests[len(a.requests)-1]
}

type expirySpy struct {
	mu    sync.Mutex
	roles []model.Role
}

func (s *expirySpy) record(_ context.Context, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = append(s.roles, role)
}

func newTestClient(t *testing.T, baseURL string, store session.Store, spy *expirySpy, roleOnly bool) *Client {
	t.Helper()

	return New(session.NewResolver(store), store, Options{
		BaseURL:          baseURL,
		ClearRoleOnly:    roleOnly,
		OnSessionExpired: spy.record,
	})
}

func TestRequestAttachesBearerForRole(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusOK, `{"ok":true}`)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), model.RoleBuyer, "buyer-token", nil))
	client := newTestClient(t, server.URL, store, &expirySpy{}, false)

	data, err := client.Request(context.Background(), Descriptor{Endpoint: "/api/cart", Role: model.RoleBuyer})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(data))

	got := api.last(t)
	require.Equal(t, http.MethodGet, got.Method)
	require.Equal(t, "/api/cart", got.Path)
	require.Equal(t, "Bearer buyer-token", got.Header.Get("Authorization"))
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
	require.False(t, got.HasBody)
}

func TestRequestWithoutCredentialOmitsAuthorization(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusOK, `[]`)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), model.RoleSeller, "seller-token", nil))
	client := newTestClient(t, server.URL, store, &expirySpy{}, false)

	_, err := client.Request(context.Background(), Descriptor{Endpoint: "/api/profile", Role: model.RoleBuyer})
	require.NoError(t, err)

	got := api.last(t)
	require.Empty(t, got.Header.Values("Authorization"))
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
}

func TestRequestCallerHeadersWinOnCollision(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusOK, `{}`)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), model.RoleAdmin, "admin-token", nil))
	client := newTestClient(t, server.URL, store, &expirySpy{}, false)

	_, err := client.Request(context.Background(), Descriptor{
		Endpoint: "/api/admin/users/admins",
		Role:     model.RoleAdmin,
		Headers: map[string]string{
			"Content-Type": "application/vnd.api+json",
			"X-Trace":      "t-1",
		},
	})
	require.NoError(t, err)

	got := api.last(t)
	require.Equal(t, "application/vnd.api+json", got.Header.Get("Content-Type"))
	require.Equal(t, "t-1", got.Header.Get("X-Trace"))
	require.Equal(t, "Bearer admin-token", got.Header.Get("Authorization"))
}

func TestRequestSendsJSONBody(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusCreated, `{"id":"q1"}`)
	client := newTestClient(t, server.URL, session.NewMemoryStore(), &expirySpy{}, false)

	_, err := client.Request(context.Background(), Descriptor{
		Endpoint: "/api/seller/quotations/create",
		Method:   "post",
		Body:     map[string]any{"order_id": "o1", "price": 12.5},
		Role:     model.RoleSeller,
	})
	require.NoError(t, err)

	got := api.last(t)
	require.Equal(t, http.MethodPost, got.Method)
	require.JSONEq(t, `{"order_id":"o1","price":12.5}`, string(got.Body))
}

func TestRequestForwardsRequestID(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusOK, `{}`)
	client := newTestClient(t, server.URL, session.NewMemoryStore(), &expirySpy{}, false)

	ctx := requestid.With(context.Background(), "req-123")
	_, err := client.Request(ctx, Descriptor{Endpoint: "/api/profile", Role: model.RoleBuyer})
	require.NoError(t, err)
	require.Equal(t, "req-123", api.last(t).Header.Get(requestid.Header))
}

func TestRequestUnauthorizedClearsAllSessions(t *testing.T) {
	t.Parallel()

	_, server := newFakeAPI(t, http.StatusUnauthorized, `{"message":"expired"}`)
	ctx := context.Background()
	store := session.NewMemoryStore()
	for _, role := range model.Roles() {
		require.NoError(t, store.Set(ctx, role, "tok", nil))
	}
	spy := &expirySpy{}
	client := newTestClient(t, server.URL, store, spy, false)

	_, err := client.Request(ctx, Descriptor{Endpoint: "/api/orders/my-orders", Role: model.RoleBuyer})
	require.ErrorIs(t, err, ErrAuthExpired)
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))

	for _, role := range model.Roles() {
		_, getErr := store.Get(ctx, role)
		require.ErrorIs(t, getErr, model.ErrNoSession)
	}
	require.Equal(t, []model.Role{model.RoleBuyer}, spy.roles)
}

func TestRequestUnauthorizedRoleOnlyScope(t *testing.T) {
	t.Parallel()

	_, server := newFakeAPI(t, http.StatusUnauthorized, `{}`)
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, model.RoleBuyer, "b", nil))
	require.NoError(t, store.Set(ctx, model.RoleSeller, "s", nil))
	client := newTestClient(t, server.URL, store, &expirySpy{}, true)

	_, err := client.Request(ctx, Descriptor{Endpoint: "/api/cart", Role: model.RoleBuyer})
	require.ErrorIs(t, err, ErrAuthExpired)

	_, getErr := store.Get(ctx, model.RoleBuyer)
	require.ErrorIs(t, getErr, model.ErrNoSession)
	sess, getErr := store.Get(ctx, model.RoleSeller)
	require.NoError(t, getErr)
	require.Equal(t, "s", sess.Token)
}

func TestRequestServerErrorLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	_, server := newFakeAPI(t, http.StatusInternalServerError, `{"error":"boom"}`)
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, model.RoleSeller, "seller-token", nil))
	spy := &expirySpy{}
	client := newTestClient(t, server.URL, store, spy, false)

	_, err := client.Request(ctx, Descriptor{Endpoint: "/api/seller/orders/available", Role: model.RoleSeller})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.Status)
	require.Equal(t, "HTTP error! status: 500", err.Error())
	require.JSONEq(t, `{"error":"boom"}`, string(httpErr.Body))

	sess, getErr := store.Get(ctx, model.RoleSeller)
	require.NoError(t, getErr)
	require.Equal(t, "seller-token", sess.Token)
	require.Empty(t, spy.roles)
}

func TestRequestNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := newTestClient(t, baseURL, session.NewMemoryStore(), &expirySpy{}, false)
	_, err := client.Request(context.Background(), Descriptor{Endpoint: "/api/profile", Role: model.RoleAdmin})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, http.MethodGet, netErr.Method)
	require.Equal(t, 0, StatusCode(err))
}

func TestRequestParseError(t *testing.T) {
	t.Parallel()

	_, server := newFakeAPI(t, http.StatusOK, `<html>maintenance</html>`)
	client := newTestClient(t, server.URL, session.NewMemoryStore(), &expirySpy{}, false)

	_, err := client.Request(context.Background(), Descriptor{Endpoint: "/api/cart", Role: model.RoleBuyer})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestRequestConcurrentRolesDoNotMixCredentials(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusOK, `{}`)
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, model.RoleBuyer, "buyer-token", nil))
	require.NoError(t, store.Set(ctx, model.RoleSeller, "seller-token", nil))
	client := newTestClient(t, server.URL, store, &expirySpy{}, false)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		for _, role := range []model.Role{model.RoleBuyer, model.RoleSeller} {
			wg.Add(1)
			go func(role model.Role) {
				defer wg.Done()
				_, err := client.Request(ctx, Descriptor{
					Endpoint: "/api/profile",
					Role:     role,
					Headers:  map[string]string{"X-Role": role.String()},
				})
				errs <- err
			}(role)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.requests, 40)
	for _, req := range api.requests {
		require.Equal(t, "Bearer "+req.Header.Get("X-Role")+"-token", req.Header.Get("Authorization"))
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, model.Role) (string, bool, error) {
	return "", false, errors.New("store offline")
}

func TestRequestResolverFailure(t *testing.T) {
	t.Parallel()

	api, server := newFakeAPI(t, http.StatusOK, `{}`)
	client := New(failingResolver{}, session.NewMemoryStore(), Options{BaseURL: server.URL})

	_, err := client.Request(context.Background(), Descriptor{Endpoint: "/api/profile", Role: model.RoleBuyer})
	require.ErrorContains(t, err, "store offline")

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Empty(t, api.requests)
}

func TestNewDefaultsBaseURL(t *testing.T) {
	t.Parallel()

	client := New(session.NewResolver(session.NewMemoryStore()), session.NewMemoryStore(), Options{})
	require.Equal(t, DefaultBaseURL, client.BaseURL())

	client = New(session.NewResolver(session.NewMemoryStore()), session.NewMemoryStore(), Options{BaseURL: "https://api.test/"})
	require.Equal(t, "https://api.test", client.BaseURL())
}

func TestRequestReturnsPayloadUnchanged(t *testing.T) {
	t.Parallel()

	payload := `{"orders":[{"id":1,"total_amount":9.5}],"pagination":{"totalItems":1}}`
	_, server := newFakeAPI(t, http.StatusOK, payload)
	client := newTestClient(t, server.URL, session.NewMemoryStore(), &expirySpy{}, false)

	data, err := client.Request(context.Background(), Descriptor{Endpoint: "/api/orders/my-orders", Role: model.RoleBuyer})
	require.NoError(t, err)
	require.Equal(t, payload, string(data))
	require.True(t, json.Valid(data))
}
