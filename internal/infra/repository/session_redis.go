package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type sessionRedisRepository struct {
	rdb *redis.Client
}

func NewSessionRedisRepository(rdb *redis.Client) repo.SessionRepository {
	return &sessionRedisRepository{rdb: rdb}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

// Save はハッシュで保存し、ExpiresAtまでのTTLを付ける
func (r *sessionRedisRepository) Save(ctx context.Context, s model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	key := sessionKey(s.ID)
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, sessionFields(s))
		p.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (r *sessionRedisRepository) Find(ctx context.Context, id string) (model.Session, error) {
	val, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return model.Session{}, err
	}
	// 期限切れのキーは空のmapになる
	if len(val) == 0 {
		return model.Session{}, repo.ErrNotFound
	}
	return parseSession(id, val)
}

func (r *sessionRedisRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

func sessionFields(s model.Session) map[string]any {
	return map[string]any{
		"userId":    strconv.FormatInt(s.UserID, 10),
		"email":     s.Email,
		"role":      string(s.Role),
		"createdAt": s.CreatedAt.UTC().Format(time.RFC3339Nano),
		"expiresAt": s.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseSession(id string, val map[string]string) (model.Session, error) {
	userID, err := strconv.ParseInt(val["userId"], 10, 64)
	if err != nil {
		return model.Session{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, val["createdAt"])
	if err != nil {
		return model.Session{}, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, val["expiresAt"])
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		ID:        id,
		UserID:    userID,
		Email:     val["email"],
		Role:      model.Role(val["role"]),
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}
