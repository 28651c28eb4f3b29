package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const CollectionProducts = "products"

// 1商品あたりの画像上限
const MaxProductImages = 5

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "Active"
	ProductStatusOutOfStock ProductStatus = "Out of Stock"
)

// 在庫から導出するステータス
func StatusForStock(stock int64) ProductStatus {
	if stock > 0 {
		return ProductStatusActive
	}
	return ProductStatusOutOfStock
}

// productsコレクションの1ドキュメント
type Product struct {
	ID string `json:"id,omitempty"`

	Names LocalizedText `json:"names"`
	// 多言語化前のデータに残っている単一の名前
	Name string `json:"name,omitempty"`

	Descriptions LocalizedText `json:"descriptions,omitempty"`
	Category     string        `json:"category"`

	Price          decimal.Decimal              `json:"price"`
	PriceOverrides map[Language]decimal.Decimal `json:"price_overrides,omitempty"`
	Stock          int64                        `json:"stock"`

	Materials  LocalizedText `json:"materials,omitempty"`
	Finishes   LocalizedText `json:"finishes,omitempty"`
	Dimensions LocalizedText `json:"dimensions,omitempty"`

	// URLまたはdata URL。先頭がImageにも入る
	Images []string `json:"images"`
	Image  string   `json:"image,omitempty"`

	Status    ProductStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (p Product) DisplayName(lang Language) string {
	return p.Names.Get(lang, p.Name)
}

func (p Product) DisplayDescription(lang Language) string {
	return p.Descriptions.Get(lang, "")
}

// PriceFor は言語別の上書き価格があればそれを返す
func (p Product) PriceFor(lang Language) decimal.Decimal {
	if v, ok := p.PriceOverrides[lang]; ok {
		return v
	}
	return p.Price
}

// CoverImage は代表画像。古いデータはImageだけ持っている
func (p Product) CoverImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.Image
}

// Publishable は公開してよい状態か
func (p Product) Publishable() bool {
	if p.CoverImage() == "" {
		return false
	}
	if p.Price.IsNegative() || p.Stock < 0 {
		return false
	}
	return p.Names.Any() || strings.TrimSpace(p.Name) != ""
}
