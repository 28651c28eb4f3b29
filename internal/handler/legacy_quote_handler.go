package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"woodify/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 旧APIのレスポンス形
type LegacyEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

type LegacyUploadError struct {
	Message string `json:"message"`
}

// /api 以下の旧API。新しいフロントは使っていない
type LegacyQuoteHandler struct {
	uc   *usecase.LegacyQuoteUsecase
	ping func(ctx context.Context) error
	log  *zap.Logger
}

// DI
func NewLegacyQuoteHandler(uc *usecase.LegacyQuoteUsecase, ping func(ctx context.Context) error, log *zap.Logger) *LegacyQuoteHandler {
	return &LegacyQuoteHandler{uc: uc, ping: ping, log: log}
}

// adminは一覧・更新・削除に付けるガード
func (h *LegacyQuoteHandler) RegisterRoutes(e *echo.Echo, admin echo.MiddlewareFunc) {
	api := e.Group("/api", h.deprecated)

	api.GET("/", h.status)
	api.POST("/quotes", h.create)
	api.GET("/quotes", h.list, admin)
	api.PATCH("/quotes/:id/status", h.updateStatus, admin)
	api.DELETE("/quotes/:id", h.delete, admin)
	api.POST("/upload", h.upload)
}

func (h *LegacyQuoteHandler) deprecated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h.log.Warn("deprecated legacy api called",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
		)
		c.Response().Header().Set("Deprecation", "true")
		return next(c)
	}
}

func (h *LegacyQuoteHandler) status(c echo.Context) error {
	state := "Online"
	if h.ping == nil || h.ping(c.Request().Context()) != nil {
		state = "Offline"
	}
	return c.String(http.StatusOK, "Woodify API is running (Status: "+state+")")
}

func (h *LegacyQuoteHandler) create(c echo.Context) error {
	var in usecase.LegacyQuoteInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, LegacyEnvelope{Message: "invalid body"})
	}

	q, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return writeLegacyError(c, err)
	}
	return c.JSON(http.StatusCreated, LegacyEnvelope{
		Success: true,
		Data:    q,
		Message: "Quote request submitted successfully",
	})
}

func (h *LegacyQuoteHandler) list(c echo.Context) error {
	qs, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeLegacyError(c, err)
	}
	n := len(qs)
	return c.JSON(http.StatusOK, LegacyEnvelope{Success: true, Count: &n, Data: qs})
}

func (h *LegacyQuoteHandler) updateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, LegacyEnvelope{Message: "Quote not found"})
	}
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, LegacyEnvelope{Message: "invalid body"})
	}

	actor, _ := actorFromContext(c)
	q, err := h.uc.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return writeLegacyError(c, err)
	}
	return c.JSON(http.StatusOK, LegacyEnvelope{Success: true, Data: q})
}

func (h *LegacyQuoteHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, LegacyEnvelope{Message: "Quote not found"})
	}

	actor, _ := actorFromContext(c)
	if err := h.uc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeLegacyError(c, err)
	}
	return c.JSON(http.StatusOK, LegacyEnvelope{Success: true, Data: struct{}{}, Message: "Quote deleted successfully"})
}

// upload は multipart の image を1枚受ける
func (h *LegacyQuoteHandler) upload(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, LegacyUploadError{Message: "No file uploaded"})
	}
	if fh.Size > usecase.MaxLegacyUploadBytes {
		return c.JSON(http.StatusBadRequest, LegacyUploadError{Message: "File too large"})
	}
	data, err := readFileHeader(fh, usecase.MaxLegacyUploadBytes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, LegacyUploadError{Message: "Server error during upload"})
	}

	res, err := h.uc.Upload(c.Request().Context(), fh.Filename, fh.Header.Get(echo.HeaderContentType), data)
	if err != nil {
		if he, ok := usecase.AsHTTPError(err); ok {
			return c.JSON(he.Status, LegacyUploadError{Message: he.Message})
		}
		return c.JSON(http.StatusInternalServerError, LegacyUploadError{Message: "Server error during upload"})
	}

	// ローカル保存で相対URLのときはリクエストのホストを付ける
	if strings.HasPrefix(res.URL, "/") {
		res.URL = c.Scheme() + "://" + c.Request().Host + res.URL
	}
	return c.JSON(http.StatusOK, res)
}

func writeLegacyError(c echo.Context, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, LegacyEnvelope{Message: he.Message})
	}
	return c.JSON(http.StatusInternalServerError, LegacyEnvelope{Message: "Server Error"})
}
