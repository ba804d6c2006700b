package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-portal/internal/model"
)

// SessionRepository keeps the role slots in the portal_sessions table, one
// row per "<role>_token" / "<role>_user" key.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Get(ctx context.Context, role model.Role) (model.Session, error) {
	if !role.Valid() {
		return model.Session{}, model.ErrUnknownRole
	}

	rows, err := r.pool.Query(ctx,
		`SELECT key, value FROM portal_sessions WHERE key = ANY($1)`,
		[]string{role.TokenKey(), role.UserKey()})
	if err != nil {
		return model.Session{}, fmt.Errorf("query session: %w", err)
	}

	slots := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return model.Session{}, fmt.Errorf("scan session: %w", err)
		}
		slots[key] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.Session{}, fmt.Errorf("read session rows: %w", err)
	}

	token := slots[role.TokenKey()]
	if token == "" {
		return model.Session{}, model.ErrNoSession
	}

	sess := model.Session{Role: role, Token: token}
	if user := slots[role.UserKey()]; user != "" {
		sess.User = json.RawMessage(user)
	}

	return sess, nil
}

func (r *SessionRepository) Set(ctx context.Context, role model.Role, token string, user json.RawMessage) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.Exec(ctx,
			`INSERT INTO portal_sessions (key, value, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			role.TokenKey(), token, now); err != nil {
			return fmt.Errorf("store session token: %w", err)
		}

		if len(user) == 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM portal_sessions WHERE key = $1`, role.UserKey()); err != nil {
				return fmt.Errorf("drop session user: %w", err)
			}
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO portal_sessions (key, value, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			role.UserKey(), string(user), now); err != nil {
			return fmt.Errorf("store session user: %w", err)
		}
		return nil
	})
}

func (r *SessionRepository) Clear(ctx context.Context, role model.Role) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	_, err := r.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE key = ANY($1)`,
		[]string{role.TokenKey(), role.UserKey()})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ClearAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM portal_sessions`); err != nil {
		return fmt.Errorf("clear all sessions: %w", err)
	}
	return nil
}
