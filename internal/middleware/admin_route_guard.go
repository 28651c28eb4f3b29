package middleware

import (
	"net/http"
	"strings"

	"woodify/internal/config"

	"github.com/labstack/echo/v4"
)

const (
	LoginPath = "/login"
	// 開発専用。本番では無視される
	DevAdminHeader = "X-Dev-Admin"
)

// 管理画面への入口。有効なセッション、または開発用バイパスのどちらかで通す。
// 通せないときはHTMLならログイン画面へ、APIなら401で返す
func AdminRouteGuard(cfg config.Config, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if devOverride(c, cfg) {
				c.Set(CtxDevOverrideKey, true)
				c.Logger().Warnf("dev admin override used: %s %s", c.Request().Method, c.Request().URL.Path)
				return next(c)
			}

			if err := authenticate(c, cfg); err != nil {
				return deny(c)
			}
			if err := checkSession(c, sessions); err != nil {
				return deny(c)
			}
			return next(c)
		}
	}
}

// 開発用バイパス。GO_ENV=dev かつ DEV_ADMIN_OVERRIDE が立っているときだけ
func devOverride(c echo.Context, cfg config.Config) bool {
	if !cfg.DevOverrideEnabled() {
		return false
	}
	return strings.EqualFold(c.Request().Header.Get(DevAdminHeader), "true")
}

func deny(c echo.Context) error {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML) {
		return c.Redirect(http.StatusFound, LoginPath)
	}
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Redirect: LoginPath})
}
