package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"marketplace-portal/internal/event"
	"marketplace-portal/internal/metrics"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/session"
)

const landingPath = "/"

// Navigator sends every open tab of the portal to target.
type Navigator interface {
	Navigate(ctx context.Context, target string)
}

type SessionService struct {
	store     session.Store
	bus       event.Bus
	navigator Navigator
}

func NewSessionService(store session.Store, bus event.Bus, navigator Navigator) *SessionService {
	return &SessionService{store: store, bus: bus, navigator: navigator}
}

// SignIn stores the credential and user record produced by the external
// login flow, replacing whatever the role held before.
func (s *SessionService) SignIn(ctx context.Context, role model.Role, req model.SignInRequest) (model.SessionInfo, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return model.SessionInfo{}, fmt.Errorf("%w: token is required", model.ErrInvalidInput)
	}

	user := req.User
	if string(user) == "null" {
		user = nil
	}

	if err := s.store.Set(ctx, role, token, user); err != nil {
		return model.SessionInfo{}, fmt.Errorf("store %s session: %w", role, err)
	}

	metrics.SessionEventsTotal.WithLabelValues(role.String(), "signed_in").Inc()
	s.bus.Publish(event.New(event.TypeSessionSignedIn, event.SessionPayload{Role: role}))
	slog.Info("session signed in", "role", role)

	return sessionInfo(role, token), nil
}

// SignOut clears every role, like the logout button of any role view.
func (s *SessionService) SignOut(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	metrics.SessionEventsTotal.WithLabelValues("all", "signed_out").Inc()
	s.bus.Publish(event.New(event.TypeSessionSignedOut, event.SessionPayload{}))
	slog.Info("sessions signed out")

	return nil
}

// HandleExpired runs after the API client cleared the store for a 401. It
// sends every tab back to the landing page.
func (s *SessionService) HandleExpired(ctx context.Context, role model.Role) {
	metrics.SessionEventsTotal.WithLabelValues(role.String(), "expired").Inc()
	s.bus.Publish(event.New(event.TypeSessionExpired, event.SessionPayload{Role: role}))
	s.navigator.Navigate(ctx, landingPath)
}

func (s *SessionService) List(ctx context.Context) (model.SessionList, error) {
	list := model.SessionList{Sessions: make([]model.SessionInfo, 0, len(model.Roles()))}

	for _, role := range model.Roles() {
		sess, err := s.store.Get(ctx, role)
		if err != nil && !errors.Is(err, model.ErrNoSession) {
			return model.SessionList{}, fmt.Errorf("load %s session: %w", role, err)
		}
		list.Sessions = append(list.Sessions, sessionInfo(role, sess.Token))
	}

	return list, nil
}

// User returns the stored user record for role; nil when signed in without
// one. model.ErrNoSession when the role is signed out.
func (s *SessionService) User(ctx context.Context, role model.Role) (json.RawMessage, error) {
	sess, err := s.store.Get(ctx, role)
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}

func sessionInfo(role model.Role, token string) model.SessionInfo {
	info := model.SessionInfo{
		Role:      role,
		SignedIn:  token != "",
		LoginPath: role.LoginPath(),
		HomePath:  role.HomePath(),
	}
	if info.SignedIn {
		info.ExpiresAt = tokenExpiry(token)
	}
	return info
}

// tokenExpiry reads the exp claim of a JWT credential without verifying
// it. Opaque credentials have no expiry.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	expiresAt := exp.Time.UTC()
	return &expiresAt
}
