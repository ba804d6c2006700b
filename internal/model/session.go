package model

import (
	"encoding/json"
	"time"
)

type Session struct {
	Role  Role            `json:"role"`
	Token string          `json:"-"`
	User  json.RawMessage `json:"user,omitempty"`
}

type SessionInfo struct {
	Role      Role       `json:"role"`
	SignedIn  bool       `json:"signed_in"`
	LoginPath string     `json:"login_path"`
	HomePath  string     `json:"home_path"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type SessionList struct {
	Sessions []SessionInfo `json:"sessions"`
}
