package session

import (
	"context"
	"encoding/json"
	"sync"

	"marketplace-portal/internal/model"
)

type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, role model.Role) (model.Session, error) {
	if !role.Valid() {
		return model.Session{}, model.ErrUnknownRole
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return sessionFromSlots(s.slots, role)
}

func (s *MemoryStore) Set(_ context.Context, role model.Role, token string, user json.RawMessage) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeSlots(s.slots, role, token, user)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, role model.Role) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, role.TokenKey())
	delete(s.slots, role.UserKey())
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = map[string]string{}
	return nil
}

func sessionFromSlots(slots map[string]string, role model.Role) (model.Session, error) {
	token, ok := slots[role.TokenKey()]
	if !ok || token == "" {
		return model.Session{}, model.ErrNoSession
	}

	sess := model.Session{Role: role, Token: token}
	if user, ok := slots[role.UserKey()]; ok && user != "" {
		sess.User = json.RawMessage(user)
	}

	return sess, nil
}

func writeSlots(slots map[string]string, role model.Role, token string, user json.RawMessage) {
	slots[role.TokenKey()] = token
	if len(user) == 0 {
		delete(slots, role.UserKey())
		return
	}
	slots[role.UserKey()] = string(user)
}
