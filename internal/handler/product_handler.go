package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"woodify/internal/domain/model"
	"woodify/internal/i18n"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 公開カタログが読む一覧（usecase.CatalogSync）
type CatalogReader interface {
	PublicProducts(category string) []model.Product
	Products(category string) []model.Product
	Product(id string) (model.Product, bool)
	Loading() bool
	Err() error
}

// SSE接続ごとに開いて閉じる購読
type LiveCatalog interface {
	CatalogReader
	Start(ctx context.Context) error
	Updates() <-chan struct{}
	Close()
}

// 言語を解決した商品の表示用
type ProductView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Status      string          `json:"status"`
	StatusLabel string          `json:"status_label"`
	Materials   string          `json:"materials,omitempty"`
	Finishes    string          `json:"finishes,omitempty"`
	Dimensions  string          `json:"dimensions,omitempty"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
}

type ProductListResponse struct {
	Items   []ProductView `json:"items"`
	Loading bool          `json:"loading"`
	// 購読エラーで直前の一覧を出している
	Stale bool `json:"stale"`
}

const sseKeepAlive = 25 * time.Second

// /products の公開API
type ProductHandler struct {
	catalog CatalogReader
	open    func() LiveCatalog
	store   *i18n.Store
	log     *zap.Logger
}

// DI
func NewProductHandler(catalog CatalogReader, open func() LiveCatalog, store *i18n.Store, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, open: open, store: store, log: log}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/stream", h.stream)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	lang := requestLanguage(c, h.store)
	return c.JSON(http.StatusOK, h.listResponse(h.catalog, c.QueryParam("category"), lang))
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, ok := h.catalog.Product(c.Param("id"))
	if !ok || !p.Publishable() {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
	}
	return c.JSON(http.StatusOK, h.view(p, requestLanguage(c, h.store)))
}

// stream は接続中だけ購読して、スナップショットごとに一覧を送る
func (h *ProductHandler) stream(c echo.Context) error {
	ctx := c.Request().Context()
	category := c.QueryParam("category")
	lang := requestLanguage(c, h.store)

	live := h.open()
	defer live.Close()
	if err := live.Start(ctx); err != nil {
		h.log.Error("catalog stream subscribe failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "subscribe failed"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case <-live.Updates():
			if live.Loading() {
				continue
			}
			b, err := json.Marshal(h.listResponse(live, category, lang))
			if err != nil {
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: products\ndata: %s\n\n", b); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func (h *ProductHandler) listResponse(src CatalogReader, category string, lang model.Language) ProductListResponse {
	products := src.PublicProducts(category)
	items := make([]ProductView, 0, len(products))
	for _, p := range products {
		items = append(items, h.view(p, lang))
	}
	return ProductListResponse{Items: items, Loading: src.Loading(), Stale: src.Err() != nil}
}

func (h *ProductHandler) view(p model.Product, lang model.Language) ProductView {
	images := p.Images
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}
	label := "status_active"
	if p.Status == model.ProductStatusOutOfStock {
		label = "status_out_of_stock"
	}
	return ProductView{
		ID:          p.ID,
		Name:        p.DisplayName(lang),
		Description: p.DisplayDescription(lang),
		Category:    p.Category,
		Price:       p.PriceFor(lang),
		Stock:       p.Stock,
		Status:      string(p.Status),
		StatusLabel: h.store.T(lang, label),
		Materials:   p.Materials.Get(lang, ""),
		Finishes:    p.Finishes.Get(lang, ""),
		Dimensions:  p.Dimensions.Get(lang, ""),
		Image:       p.CoverImage(),
		Images:      images,
	}
}
