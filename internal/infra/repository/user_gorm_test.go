package repository

import (
	"context"
	"testing"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserGorm_UpsertAdmin(t *testing.T) {
	db := newTestDB(t)
	r := NewUserGormRepository(db)
	ctx := context.Background()

	first, err := r.UpsertAdmin(ctx, "admin@woodify.test", "hash-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, model.RoleAdmin, first.Role)
	assert.True(t, first.IsActive)

	// 無効化されていても再実行で戻る
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", first.ID).Update("is_active", false).Error)

	second, err := r.UpsertAdmin(ctx, "admin@woodify.test", "hash-2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "hash-2", second.PasswordHash)
	assert.True(t, second.IsActive)

	var n int64
	require.NoError(t, db.Model(&model.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUserGorm_FindByEmailMissing(t *testing.T) {
	r := NewUserGormRepository(newTestDB(t))

	u, err := r.FindByEmail(context.Background(), "ghost@woodify.test")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserGorm_TouchLastLogin(t *testing.T) {
	r := NewUserGormRepository(newTestDB(t))
	ctx := context.Background()

	u, err := r.UpsertAdmin(ctx, "admin@woodify.test", "hash")
	require.NoError(t, err)

	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.TouchLastLogin(ctx, u.ID, at))

	got, err := r.FindByEmail(ctx, "admin@woodify.test")
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(got.LastLoginAt.UTC()))

	assert.ErrorIs(t, r.TouchLastLogin(ctx, 999, at), repo.ErrNotFound)
}
