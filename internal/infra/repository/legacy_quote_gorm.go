package repository

import (
	"context"
	"errors"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"gorm.io/gorm"
)

type legacyQuoteGormRepository struct {
	db *gorm.DB
}

func NewLegacyQuoteGormRepository(db *gorm.DB) repo.LegacyQuoteRepository {
	return &legacyQuoteGormRepository{db: db}
}

func (r *legacyQuoteGormRepository) List(ctx context.Context) ([]model.LegacyQuote, error) {
	var qs []model.LegacyQuote
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *legacyQuoteGormRepository) FindByID(ctx context.Context, id int64) (model.LegacyQuote, error) {
	var q model.LegacyQuote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.LegacyQuote{}, repo.ErrNotFound
		}
		return model.LegacyQuote{}, err
	}
	return q, nil
}

func (r *legacyQuoteGormRepository) Create(ctx context.Context, q *model.LegacyQuote) error {
	if q.Status == "" {
		q.Status = model.LegacyQuoteStatusPending
	}
	if q.Attachments == nil {
		q.Attachments = []string{}
	}
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *legacyQuoteGormRepository) UpdateStatus(ctx context.Context, id int64, status model.LegacyQuoteStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.LegacyQuote{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *legacyQuoteGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.LegacyQuote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
