package model

import "time"

// 商品の作成・更新・削除、見積もりステータス更新など。
type AuditAction string

const (
	AuditActionCreateProduct           AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct           AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct           AuditAction = "DELETE_PRODUCT"
	AuditActionUpdateQuoteStatus       AuditAction = "UPDATE_QUOTE_STATUS"
	AuditActionUpdateLegacyQuoteStatus AuditAction = "UPDATE_LEGACY_QUOTE_STATUS"
	AuditActionDeleteLegacyQuote       AuditAction = "DELETE_LEGACY_QUOTE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct     AuditResourceType = "product"
	AuditResourceQuote       AuditResourceType = "quote"
	AuditResourceLegacyQuote AuditResourceType = "legacy_quote"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。開発用バイパス経由は0
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//ドキュメントIDは文字列なのでそのまま持つ
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
