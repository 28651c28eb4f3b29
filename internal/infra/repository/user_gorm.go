package repository

import (
	"context"
	"errors"
	"time"

	"woodify/internal/domain/model"
	domainrepo "woodify/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// UpsertAdmin はemailの一意制約で作成か更新かを決める
func (r *userGormRepository) UpsertAdmin(ctx context.Context, email, passwordHash string) (*model.User, error) {
	u := model.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "is_active", "updated_at"}),
		}).
		Create(&u).Error
	if err != nil {
		return nil, err
	}

	// 更新になったときIDが返らないDBがあるので読み直す
	return r.FindByEmail(ctx, email)
}

// last_login_atだけ書く
func (r *userGormRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
