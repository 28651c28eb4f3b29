package repository

import (
	"context"

	"woodify/internal/domain/model"
)

// ログインセッションの保存先（TTL付き）
type SessionRepository interface {
	Save(ctx context.Context, s model.Session) error
	// 期限切れ・削除済みはErrNotFound
	Find(ctx context.Context, id string) (model.Session, error)
	Delete(ctx context.Context, id string) error
}
