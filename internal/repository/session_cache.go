package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-portal/internal/model"
)

const defaultRedisTimeout = 5 * time.Second

type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// ConnectRedis initialises a Redis client and validates connectivity with a ping.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// SessionCache keeps the role slots as plain Redis strings.
// Key format: <prefix><role>_token and <prefix><role>_user.
type SessionCache struct {
	client redis.UniversalClient
	prefix string
}

func NewSessionCache(client redis.UniversalClient, prefix string) *SessionCache {
	return &SessionCache{client: client, prefix: prefix}
}

func (c *SessionCache) Get(ctx context.Context, role model.Role) (model.Session, error) {
	if !role.Valid() {
		return model.Session{}, model.ErrUnknownRole
	}

	values, err := c.client.MGet(ctx, c.key(role.TokenKey()), c.key(role.UserKey())).Result()
	if err != nil {
		return model.Session{}, fmt.Errorf("redis session get: %w", err)
	}

	token, _ := values[0].(string)
	if token == "" {
		return model.Session{}, model.ErrNoSession
	}

	sess := model.Session{Role: role, Token: token}
	if user, _ := values[1].(string); user != "" {
		sess.User = json.RawMessage(user)
	}

	return sess, nil
}

func (c *SessionCache) Set(ctx context.Context, role model.Role, token string, user json.RawMessage) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(role.TokenKey()), token, 0)
		if len(user) == 0 {
			pipe.Del(ctx, c.key(role.UserKey()))
		} else {
			pipe.Set(ctx, c.key(role.UserKey()), string(user), 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}

func (c *SessionCache) Clear(ctx context.Context, role model.Role) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	if err := c.client.Del(ctx, c.key(role.TokenKey()), c.key(role.UserKey())).Err(); err != nil {
		return fmt.Errorf("redis session clear: %w", err)
	}
	return nil
}

func (c *SessionCache) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, 2*len(model.Roles()))
	for _, role := range model.Roles() {
		keys = append(keys, c.key(role.TokenKey()), c.key(role.UserKey()))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis session clear all: %w", err)
	}
	return nil
}

func (c *SessionCache) key(slot string) string {
	return c.prefix + slot
}
