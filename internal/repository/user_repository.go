package repository

import (
	"context"
	"time"

	"woodify/internal/domain/model"
)

// 管理者アカウントの保存先
type UserRepository interface {
	// メールで1件。無ければnil
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertAdmin はメールが一致すればパスワードを差し替えて有効化する
	UpsertAdmin(ctx context.Context, email, passwordHash string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
