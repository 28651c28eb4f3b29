package repository

import (
	"context"

	repo "woodify/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	legacyQuotes repo.LegacyQuoteRepository
	auditLogs    repo.AuditLogRepository
}

func (r *txReposGorm) LegacyQuotes() repo.LegacyQuoteRepository { return r.legacyQuotes }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			legacyQuotes: NewLegacyQuoteGormRepository(tx),
			auditLogs:    NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
