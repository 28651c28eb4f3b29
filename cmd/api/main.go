package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"woodify/internal/config"
	"woodify/internal/handler"
	"woodify/internal/i18n"
	"woodify/internal/infra/db"
	"woodify/internal/infra/imaging"
	infraRepo "woodify/internal/infra/repository"
	"woodify/internal/infra/storage"
	"woodify/internal/logger"
	"woodify/internal/repository"
	"woodify/internal/server"
	"woodify/internal/usecase"
	"woodify/internal/validator"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFmt)
	err = run(cfg, log)
	if err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	//os.Exit の前に必ず書き出す
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DevOverrideEnabled() {
		log.Warn("DEV_ADMIN_OVERRIDE is on: admin routes accept the X-Dev-Admin header. Never use this in production")
	}

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//Redis（セッション）
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis not reachable, sign-in will fail until it is", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	blobs, uploadDir, err := newBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	//変更通知: 同一プロセスはhub、他インスタンスへはpg_notify
	hub := infraRepo.NewChangeHub()
	go infraRepo.NewPgListener(cfg.PostgresDSN(), hub, log).Run(ctx)
	gw := infraRepo.NewDocumentGormGateway(gormDB, hub, infraRepo.NewPgNotifier(gormDB, log))

	//Repository（GORM / Redis実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	legacyRepo := infraRepo.NewLegacyQuoteGormRepository(gormDB)
	sessionRepo := infraRepo.NewSessionRedisRepository(rdb)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//常駐の購読
	catalog := usecase.NewCatalogSync(gw, log)
	if err := catalog.Start(ctx); err != nil {
		return fmt.Errorf("catalog subscribe: %w", err)
	}
	defer catalog.Close()

	requests := usecase.NewRequestManager(gw, catalog, auditRepo, log)
	if err := requests.Start(ctx); err != nil {
		return fmt.Errorf("quote subscribe: %w", err)
	}
	defer requests.Close()

	//Usecase生成
	store := i18n.NewStore()
	authUC := usecase.NewAuthUsecase(cfg, userRepo, sessionRepo, validator.NewAuthValidator(), log)
	quoteUC := usecase.NewQuoteUsecase(gw, blobs, validator.NewQuoteValidator(), log)
	editor := usecase.NewProductEditor(gw, imaging.NewJPEGCompressor(), auditRepo, log)
	legacyUC := usecase.NewLegacyQuoteUsecase(legacyRepo, txm, blobs, log)

	//Handler生成
	openCatalog := func() handler.LiveCatalog { return usecase.NewCatalogSync(gw, log) }
	h := server.Handlers{
		Products:      handler.NewProductHandler(catalog, openCatalog, store, log),
		Quotes:        handler.NewQuoteHandler(quoteUC, store),
		I18n:          handler.NewI18nHandler(store),
		Auth:          handler.NewAuthHandler(authUC),
		AdminProducts: handler.NewAdminProductHandler(editor, catalog),
		AdminRequests: handler.NewAdminRequestHandler(requests, auditRepo),
		Legacy:        handler.NewLegacyQuoteHandler(legacyUC, pinger(gormDB), log),
		Sessions:      authUC,
		UploadDir:     uploadDir,
	}

	//Server起動
	e := server.New(cfg, log, h)
	return server.Start(ctx, e, cfg.Addr(), log)
}

// newBlobStore は STORAGE_BACKEND に応じて作る。localのときは配信ディレクトリも返す
func newBlobStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.BlobStore, string, error) {
	switch cfg.StorageBackend {
	case "s3":
		s, err := storage.NewS3ObjectStorage(ctx, cfg.S3, log)
		if err != nil {
			return nil, "", fmt.Errorf("s3 storage: %w", err)
		}
		return s, "", nil
	default:
		s, err := storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("local storage: %w", err)
		}
		return s, s.Dir(), nil
	}
}

func pinger(gormDB *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
