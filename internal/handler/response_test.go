package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/model"
	"marketplace-portal/pkg/apierror"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"auth expired", fmt.Errorf("load dashboard: %w", apiclient.ErrAuthExpired), http.StatusSeeOther, "SESSION_EXPIRED"},
		{"upstream 404", &apiclient.HTTPError{Status: http.StatusNotFound, Body: []byte(`{"message":"nope"}`)}, http.StatusNotFound, "UPSTREAM_ERROR"},
		{"upstream 500", &apiclient.HTTPError{Status: http.StatusInternalServerError}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"network", &apiclient.NetworkError{Method: "GET", URL: "http://x", Err: errors.New("refused")}, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"parse", &apiclient.ParseError{Err: errors.New("bad json")}, http.StatusBadGateway, "UPSTREAM_BAD_PAYLOAD"},
		{"unknown role", model.ErrUnknownRole, http.StatusNotFound, "NOT_FOUND"},
		{"no session", model.ErrNoSession, http.StatusNotFound, "NO_SESSION"},
		{"invalid input", fmt.Errorf("%w: token is required", model.ErrInvalidInput), http.StatusBadRequest, "BAD_REQUEST"},
		{"api error", apierror.BadRequest("validation failed", "token is required"), http.StatusBadRequest, "BAD_REQUEST"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestWriteErrorAuthExpiredRedirectsHome(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, apiclient.ErrAuthExpired)

	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "/", decodeEnvelope(t, rec).Error.Redirect)
}

func TestWriteErrorUpstreamMessage(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, &apiclient.HTTPError{Status: http.StatusConflict, Body: []byte(strings.Repeat("x", 600))})

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "HTTP error! status: 409", resp.Error.Message)
	assert.Len(t, resp.Error.Details, maxUpstreamDetailLen+3)
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	t.Run("required body missing", func(t *testing.T) {
		_, err := readBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/buyer/cart", nil), false)
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("optional body missing", func(t *testing.T) {
		body, err := readBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/buyer/orders", nil), true)
		require.NoError(t, err)
		assert.Nil(t, body)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := readBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/buyer/cart", strings.NewReader("{")), false)
		require.Error(t, err)
	})

	t.Run("json passes through", func(t *testing.T) {
		body, err := readBody(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/buyer/cart", strings.NewReader(`{"product_id":3}`)), false)
		require.NoError(t, err)
		assert.JSONEq(t, `{"product_id":3}`, string(body))
	})
}

func TestPayloadValidator(t *testing.T) {
	t.Parallel()

	v := newPayloadValidator()
	err := v.Validate(model.SignInRequest{})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "token is required", apiErr.Details)

	require.NoError(t, v.Validate(model.SignInRequest{Token: "abc"}))
}
