package handler

import (
	"encoding/json"
	"net/http"

	"woodify/internal/config"
	"woodify/internal/middleware"
	"woodify/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/auth/login", h.login)

	guarded := e.Group("/auth", middleware.AuthJWT(cfg), middleware.SessionGuard(h.uc))
	guarded.POST("/logout", h.logout)
	guarded.GET("/session", h.session)
}

// loginはPOST /auth/login のハンドラ。
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SignIn(c.Request().Context(), usecase.AuthLoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	sid, _ := c.Get(middleware.CtxSessionIDKey).(string)
	if err := h.uc.SignOut(c.Request().Context(), sid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) session(c echo.Context) error {
	sid, _ := c.Get(middleware.CtxSessionIDKey).(string)
	s, err := h.uc.CurrentSession(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, usecase.ToSessionDTO(s))
}
