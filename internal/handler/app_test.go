package handler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"woodify/internal/config"
	"woodify/internal/domain/model"
	"woodify/internal/handler"
	"woodify/internal/i18n"
	infrarepo "woodify/internal/infra/repository"
	"woodify/internal/middleware"
	repo "woodify/internal/repository"
	"woodify/internal/usecase"
	"woodify/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testAdminEmail    = "admin@woodify.test"
	testAdminPassword = "Password123!"
)

// testApp は本番と同じ並びでハンドラを組んだもの（DBはSQLite、ドキュメントDBはメモリ）
type testApp struct {
	e        *echo.Echo
	cfg      config.Config
	gw       *fakeGateway
	blobs    *fakeBlobs
	db       *gorm.DB
	sessions *memSessions
	audit    repo.AuditLogRepository
	catalog  *usecase.CatalogSync
	manager  *usecase.RequestManager

	mu     sync.Mutex
	opened []*usecase.CatalogSync
}

// SSE接続ごとに開いた購読
func (a *testApp) openedCatalogs() []*usecase.CatalogSync {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*usecase.CatalogSync(nil), a.opened...)
}

// seedは購読開始前にドキュメントを入れる
func newTestApp(t *testing.T, seed func(gw *fakeGateway)) *testApp {
	t.Helper()

	cfg := config.Config{
		JWTSecret:        "test-secret",
		SessionTTL:       time.Hour,
		GoEnv:            config.EnvDev,
		DevAdminOverride: true,
	}
	log := zap.NewNop()
	store := i18n.NewStore()

	db := newTestDB(t)
	users := infrarepo.NewUserGormRepository(db)
	audit := infrarepo.NewAuditLogGormRepository(db)
	legacy := infrarepo.NewLegacyQuoteGormRepository(db)
	tx := infrarepo.NewTxManagerGorm(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.UpsertAdmin(context.Background(), testAdminEmail, string(hash))
	require.NoError(t, err)

	gw := newFakeGateway()
	if seed != nil {
		seed(gw)
	}
	blobs := &fakeBlobs{}
	sessions := newMemSessions()

	catalog := usecase.NewCatalogSync(gw, log)
	require.NoError(t, catalog.Start(context.Background()))
	t.Cleanup(catalog.Close)

	manager := usecase.NewRequestManager(gw, catalog, audit, log)
	require.NoError(t, manager.Start(context.Background()))
	t.Cleanup(manager.Close)

	app := &testApp{
		e:        echo.New(),
		cfg:      cfg,
		gw:       gw,
		blobs:    blobs,
		db:       db,
		sessions: sessions,
		audit:    audit,
		catalog:  catalog,
		manager:  manager,
	}

	authUC := usecase.NewAuthUsecase(cfg, users, sessions, validator.NewAuthValidator(), log)
	quoteUC := usecase.NewQuoteUsecase(gw, blobs, validator.NewQuoteValidator(), log)
	editor := usecase.NewProductEditor(gw, fakeEncoder{}, audit, log)
	legacyUC := usecase.NewLegacyQuoteUsecase(legacy, tx, blobs, log)

	open := func() handler.LiveCatalog {
		live := usecase.NewCatalogSync(gw, log)
		app.mu.Lock()
		app.opened = append(app.opened, live)
		app.mu.Unlock()
		return live
	}

	guard := middleware.AdminRouteGuard(cfg, authUC)

	handler.NewProductHandler(catalog, open, store, log).RegisterRoutes(app.e)
	handler.NewQuoteHandler(quoteUC, store).RegisterRoutes(app.e)
	handler.NewI18nHandler(store).RegisterRoutes(app.e)
	handler.NewAuthHandler(authUC).RegisterRoutes(app.e, cfg)

	admin := app.e.Group("/admin", guard)
	handler.NewAdminProductHandler(editor, catalog).RegisterRoutes(admin)
	handler.NewAdminRequestHandler(manager, audit).RegisterRoutes(admin)

	ping := func(ctx context.Context) error { return nil }
	handler.NewLegacyQuoteHandler(legacyUC, ping, log).RegisterRoutes(app.e, guard)

	return app
}

// 有効な商品1件
func seedProduct(t *testing.T, gw *fakeGateway, id string, names model.LocalizedText, category string, price string) {
	t.Helper()
	gw.put(t, model.CollectionProducts, id, map[string]any{
		"names":      names,
		"category":   category,
		"price":      price,
		"stock":      3,
		"images":     []string{"data:image/jpeg;base64,AAAA"},
		"status":     model.ProductStatusActive,
		"created_at": time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
}
