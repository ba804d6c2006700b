// Package session holds the role-partitioned credential store and the
// resolver the API client reads bearer tokens through.
//
// Each role owns two slots, "<role>_token" and "<role>_user". Writing a role
// overwrites both slots; roles never affect one another except through
// ClearAll.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"marketplace-portal/internal/model"
)

// Store is the persisted key/value store behind every role's session.
// Get returns model.ErrNoSession when the role has no credential.
type Store interface {
	Get(ctx context.Context, role model.Role) (model.Session, error)
	Set(ctx context.Context, role model.Role, token string, user json.RawMessage) error
	Clear(ctx context.Context, role model.Role) error
	ClearAll(ctx context.Context) error
}

// Resolver looks up the credential for a role without side effects.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve reports the bearer credential for role. A missing credential is
// not an error: ok is false and err is nil.
func (r *Resolver) Resolve(ctx context.Context, role model.Role) (string, bool, error) {
	sess, err := r.store.Get(ctx, role)
	if errors.Is(err, model.ErrNoSession) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return sess.Token, sess.Token != "", nil
}
