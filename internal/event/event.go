package event

import "marketplace-portal/internal/model"

type Type string

const (
	TypeSessionSignedIn  Type = "session.signed_in"
	TypeSessionSignedOut Type = "session.signed_out"
	TypeSessionExpired   Type = "session.expired"
	TypeNavigate         Type = "navigate"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// SessionPayload accompanies the session.* events. Role is empty when every
// role was affected.
type SessionPayload struct {
	Role model.Role `json:"role,omitempty"`
}

// NavigatePayload tells connected tabs to load Target.
type NavigatePayload struct {
	Target string `json:"target"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
