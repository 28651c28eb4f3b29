package model

import "time"

type LegacyQuoteStatus string

const (
	LegacyQuoteStatusPending   LegacyQuoteStatus = "pending"
	LegacyQuoteStatusReviewed  LegacyQuoteStatus = "reviewed"
	LegacyQuoteStatusCompleted LegacyQuoteStatus = "completed"
	LegacyQuoteStatusCancelled LegacyQuoteStatus = "cancelled"
)

func (s LegacyQuoteStatus) Valid() bool {
	switch s {
	case LegacyQuoteStatusPending, LegacyQuoteStatusReviewed, LegacyQuoteStatusCompleted, LegacyQuoteStatusCancelled:
		return true
	}
	return false
}

// 旧 /api/quotes の見積もり（RDB側）。ドキュメントDBとは連携しない
type LegacyQuote struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Email       string            `gorm:"type:varchar(255);not null" json:"email"`
	Phone       string            `gorm:"type:varchar(64);not null" json:"phone"`
	Description string            `gorm:"type:text" json:"description"`
	Timeline    string            `gorm:"type:varchar(64)" json:"timeline"`
	Attachments []string          `gorm:"serializer:json;type:text" json:"attachments"`
	Status      LegacyQuoteStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time         `gorm:"not null;index" json:"created_at"`
}
