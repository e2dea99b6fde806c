package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

const sessionKeyPrefix = "recipebook:session:"

type redisSessionRepo struct {
	rdb goredis.UniversalClient
	log *logger.Logger
}

// NewRedisSessionRepo stores each session under its own key with a TTL that
// ends at the session expiry.
func NewRedisSessionRepo(rdb goredis.UniversalClient, baseLog *logger.Logger) SessionRepo {
	return &redisSessionRepo{rdb: rdb, log: baseLog.With("repo", "RedisSessionRepo")}
}

func sessionKey(id uuid.UUID) string { return sessionKeyPrefix + id.String() }

func (r *redisSessionRepo) Save(dbc dbctx.Context, s *types.Session) error {
	if s == nil || s.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: session already expired", pkgerrors.ErrInvalidArgument)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(dbc.Context(), sessionKey(s.ID), raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return pkgerrors.ErrConflict
	}
	return nil
}

func (r *redisSessionRepo) Get(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	raw, err := r.rdb.Get(dbc.Context(), sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeSession(raw)
}

func decodeSession(raw []byte) (*types.Session, error) {
	var s types.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(time.Now()) {
		return nil, pkgerrors.ErrNotFound
	}
	return &s, nil
}

// Consume relies on GETDEL so only one caller ever sees the payload.
func (r *redisSessionRepo) Consume(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	raw, err := r.rdb.GetDel(dbc.Context(), sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel: %w", err)
	}
	return decodeSession(raw)
}

func (r *redisSessionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if err := r.rdb.Del(dbc.Context(), sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
