package repository

import (
	"context"

	"woodify/internal/domain/model"
)

// 旧API用の見積もり
type LegacyQuoteRepository interface {
	// 作成日の新しい順
	List(ctx context.Context) ([]model.LegacyQuote, error)
	FindByID(ctx context.Context, id int64) (model.LegacyQuote, error)
	Create(ctx context.Context, q *model.LegacyQuote) error
	UpdateStatus(ctx context.Context, id int64, status model.LegacyQuoteStatus) error
	Delete(ctx context.Context, id int64) error
}
