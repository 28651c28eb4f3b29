package handler

import (
	"errors"
	"net/http"

	"woodify/internal/domain/model"
	"woodify/internal/i18n"
	"woodify/internal/middleware"
	"woodify/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"field_errors"`
	// 見積もりフォームのどのステップで止まったか
	Step string `json:"step,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := usecase.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: "validation error", FieldErrors: ve.Fields})
	}
	if se, ok := usecase.AsSizeLimitError(err); ok {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: se.Error()})
	}
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, usecase.ErrNoSession):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrSubmissionInFlight), errors.Is(err, usecase.ErrInvalidStep):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ?lang= → Accept-Language → 英語
func requestLanguage(c echo.Context, store *i18n.Store) model.Language {
	if v := c.QueryParam("lang"); v != "" {
		return model.ParseLanguage(v)
	}
	return store.Match(c.Request().Header.Get("Accept-Language"))
}

// AdminRouteGuard が入れた値から操作者を作る
func actorFromContext(c echo.Context) (usecase.Actor, bool) {
	if dev, _ := c.Get(middleware.CtxDevOverrideKey).(bool); dev {
		return usecase.Actor{DevOverride: true}, true
	}
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return usecase.Actor{}, false
	}
	return usecase.Actor{UserID: id}, true
}
