package repository

import (
	"context"
	"errors"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditPage = 50
	maxAuditPage     = 200
)

type auditLogGormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db, now: time.Now}
}

// Create は対象の無いログを受け付けない。時刻が空なら今にする
func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if log.ResourceType == "" || log.ResourceID == "" {
		return errors.New("audit log without resource")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.now()
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

// List は新しい順
func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Scopes(auditWhere(filter), auditPage(filter.Limit, filter.Offset)).
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func auditWhere(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.ActorUserID != nil {
			q = q.Where("actor_user_id = ?", *f.ActorUserID)
		}
		if f.Action != nil {
			q = q.Where("action = ?", *f.Action)
		}
		if f.ResourceType != nil {
			q = q.Where("resource_type = ?", *f.ResourceType)
		}
		if f.ResourceID != nil {
			q = q.Where("resource_id = ?", *f.ResourceID)
		}
		if f.CreatedFrom != nil {
			q = q.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			q = q.Where("created_at <= ?", *f.CreatedTo)
		}
		return q
	}
}

// 範囲外のlimitは既定値に戻す
func auditPage(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxAuditPage {
		limit = defaultAuditPage
	}
	if offset < 0 {
		offset = 0
	}
	return func(q *gorm.DB) *gorm.DB {
		return q.Limit(limit).Offset(offset)
	}
}
