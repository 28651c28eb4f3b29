package handler

import (
	"net/http"

	"woodify/internal/domain/model"
	"woodify/internal/i18n"

	"github.com/labstack/echo/v4"
)

type I18nResponse struct {
	Lang    model.Language    `json:"lang"`
	Strings map[string]string `json:"strings"`
}

// UIの文字列テーブル
type I18nHandler struct {
	store *i18n.Store
}

func NewI18nHandler(store *i18n.Store) *I18nHandler {
	return &I18nHandler{store: store}
}

func (h *I18nHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/i18n", h.negotiate)
	e.GET("/i18n/:lang", h.table)
}

func (h *I18nHandler) negotiate(c echo.Context) error {
	lang := h.store.Match(c.Request().Header.Get("Accept-Language"))
	return c.JSON(http.StatusOK, I18nResponse{Lang: lang, Strings: h.store.Table(lang)})
}

func (h *I18nHandler) table(c echo.Context) error {
	lang := model.ParseLanguage(c.Param("lang"))
	return c.JSON(http.StatusOK, I18nResponse{Lang: lang, Strings: h.store.Table(lang)})
}
