package db

import (
	"fmt"

	"woodify/internal/config"
	"woodify/internal/domain/model"
	"woodify/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config, l *zap.Logger) (*gorm.DB, error) {
	gl := logger.NewGormLogger(l, logger.MapGormLogLevel(cfg.LogLevel))

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// Models はマイグレーション対象
func Models() []any {
	return []any{
		&model.Document{},
		&model.User{},
		&model.AuditLog{},
		&model.LegacyQuote{},
	}
}

// Migrate はテーブルを作る（開発・テスト用）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
