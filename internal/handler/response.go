package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/middleware"
	"marketplace-portal/internal/model"
	"marketplace-portal/pkg/apierror"
	"marketplace-portal/pkg/requestid"
)

const (
	maxBodyBytes         = 1 << 20
	maxUpstreamDetailLen = 512
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// writeResult renders a marketplace API outcome: the payload unchanged on
// success, the classified error otherwise.
func writeResult(w http.ResponseWriter, r *http.Request, status int, payload json.RawMessage, err error) {
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, status, payload, &model.Meta{RequestID: requestid.From(r.Context()), Upstream: "marketplace"})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var (
		apiErr     *apierror.APIError
		httpErr    *apiclient.HTTPError
		networkErr *apiclient.NetworkError
		parseErr   *apiclient.ParseError
	)

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, apiclient.ErrAuthExpired):
		w.Header().Set("Location", middleware.RedirectTarget)
		status = http.StatusSeeOther
		body.Code = "SESSION_EXPIRED"
		body.Message = "Session expired, please sign in again"
		body.Redirect = middleware.RedirectTarget
	case errors.As(err, &httpErr):
		status = httpErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		body.Code = "UPSTREAM_ERROR"
		body.Message = httpErr.Error()
		body.Details = truncate(strings.TrimSpace(string(httpErr.Body)), maxUpstreamDetailLen)
	case errors.As(err, &networkErr):
		status = http.StatusBadGateway
		body.Code = "UPSTREAM_UNAVAILABLE"
		body.Message = "Marketplace API is unreachable"
		body.Details = networkErr.Err.Error()
	case errors.As(err, &parseErr):
		status = http.StatusBadGateway
		body.Code = "UPSTREAM_BAD_PAYLOAD"
		body.Message = "Marketplace API returned an unreadable response"
	case errors.Is(err, model.ErrUnknownRole):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Unknown role"
	case errors.Is(err, model.ErrNoSession):
		status = http.StatusNotFound
		body.Code = "NO_SESSION"
		body.Message = "Role is not signed in"
	case errors.Is(err, model.ErrMissingParam):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Missing path parameter"
		body.Details = err.Error()
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// readBody returns the request body as raw JSON. An empty body is an error
// unless optional is set, in which case it yields nil.
func readBody(w http.ResponseWriter, r *http.Request, optional bool) (json.RawMessage, error) {
	defer r.Body.Close()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apierror.BadRequest("request body too large or unreadable", err.Error())
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		if optional {
			return nil, nil
		}
		return nil, apierror.BadRequest("request body is required", "")
	}

	if !json.Valid(data) {
		return nil, apierror.BadRequest("invalid JSON body", "")
	}

	return json.RawMessage(data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
