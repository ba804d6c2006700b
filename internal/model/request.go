package model

import "encoding/json"

type SignInRequest struct {
	Token string          `json:"token" validate:"required"`
	User  json.RawMessage `json:"user"`
}

type AcceptQuotationRequest struct {
	QuotationID string `json:"quotation_id" validate:"required"`
}

type LandingPage struct {
	Name     string        `json:"name"`
	Sessions []SessionInfo `json:"sessions"`
}
