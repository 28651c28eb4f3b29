package model

import "time"

// ドキュメントDBの1件。中身はJSONのまま持つ
type Document struct {
	Collection string    `gorm:"type:varchar(64);primaryKey" json:"collection"`
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Data       string    `gorm:"type:text;not null" json:"-"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
