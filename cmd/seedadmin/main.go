package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"woodify/internal/config"
	"woodify/internal/infra/db"
	infraRepo "woodify/internal/infra/repository"
	"woodify/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 管理者ユーザーを ADMIN_EMAIL / ADMIN_PASSWORD で作成・更新する（開発用）
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFmt)
	err = seed(log, cfg)
	if err != nil {
		log.Error("seed admin failed", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func seed(log *zap.Logger, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	pass := os.Getenv("ADMIN_PASSWORD")
	if email == "" || pass == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u, err := infraRepo.NewUserGormRepository(gormDB).UpsertAdmin(context.Background(), email, string(hash))
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	log.Info("admin ready", zap.String("email", u.Email), zap.Int64("id", u.ID))
	return nil
}
