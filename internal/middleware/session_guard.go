package middleware

import (
	"context"
	"net/http"

	"woodify/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// SessionChecker は sid から有効なセッションを返す（AuthUsecase.CurrentSession）
type SessionChecker interface {
	CurrentSession(ctx context.Context, sessionID string) (model.Session, error)
}

// JWTのsidがRedisに残っていて、中身がトークンと一致するか確認。
// ログアウト・期限切れのトークンはここで弾く
func SessionGuard(sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := checkSession(c, sessions); err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

func checkSession(c echo.Context, sessions SessionChecker) error {
	//AuthJWTが入れた値を取得する
	userID, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return errUnauthorized
	}
	sid, ok := c.Get(CtxSessionIDKey).(string)
	if !ok || sid == "" {
		return errUnauthorized
	}

	s, err := sessions.CurrentSession(c.Request().Context(), sid)
	if err != nil {
		return errUnauthorized
	}

	//別ユーザーのsidを差し込まれていないか
	if s.UserID != userID {
		return errUnauthorized
	}
	//管理画面はADMINだけ
	if s.Role != model.RoleAdmin {
		return errUnauthorized
	}
	return nil
}
