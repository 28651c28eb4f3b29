package server

import (
	"woodify/internal/config"
	"woodify/internal/handler"
	"woodify/internal/infra/storage"
	"woodify/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlers は main で組み立てたハンドラ一式
type Handlers struct {
	Products      *handler.ProductHandler
	Quotes        *handler.QuoteHandler
	I18n          *handler.I18nHandler
	Auth          *handler.AuthHandler
	AdminProducts *handler.AdminProductHandler
	AdminRequests *handler.AdminRequestHandler
	Legacy        *handler.LegacyQuoteHandler

	Sessions middleware.SessionChecker
	// ローカル保存のときだけ /uploads を配信する
	UploadDir string
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	guard := middleware.AdminRouteGuard(cfg, h.Sessions)

	//公開
	h.Products.RegisterRoutes(e)
	h.Quotes.RegisterRoutes(e)
	h.I18n.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, cfg)

	//管理画面
	admin := e.Group("/admin", guard)
	h.AdminProducts.RegisterRoutes(admin)
	h.AdminRequests.RegisterRoutes(admin)

	//旧API
	h.Legacy.RegisterRoutes(e, guard)
	if h.UploadDir != "" {
		e.Static(storage.UploadsPrefix, h.UploadDir)
	}
}
