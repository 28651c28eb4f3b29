package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const CollectionQuotes = "quotes"

// special = 自由なオーダー相談 / product = 既存商品への見積もり
type QuoteMode string

const (
	QuoteModeSpecial QuoteMode = "special"
	QuoteModeProduct QuoteMode = "product"
)

func (m QuoteMode) Valid() bool {
	return m == QuoteModeSpecial || m == QuoteModeProduct
}

type QuoteStatus string

const (
	QuoteStatusPending QuoteStatus = "pending"
	QuoteStatusReplied QuoteStatus = "replied"
	QuoteStatusClosed  QuoteStatus = "closed"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusReplied, QuoteStatusClosed:
		return true
	}
	return false
}

// 希望納期（固定の選択肢）
type Timeline string

const (
	TimelineOneTwoWeeks Timeline = "1-2 Weeks"
	TimelineOneMonth    Timeline = "1 Month"
	TimelineFlexible    Timeline = "Flexible"
)

var Timelines = []Timeline{TimelineOneTwoWeeks, TimelineOneMonth, TimelineFlexible}

func (t Timeline) Valid() bool {
	for _, v := range Timelines {
		if v == t {
			return true
		}
	}
	return false
}

// 翻訳キー（q_t_1..3）
func (t Timeline) LabelKey() string {
	switch t {
	case TimelineOneMonth:
		return "q_t_2"
	case TimelineFlexible:
		return "q_t_3"
	default:
		return "q_t_1"
	}
}

// 送信時点の商品情報のコピー。元の商品が変わっても見積もりは変わらない
type ProductSnapshot struct {
	ID    string           `json:"id"`
	Names LocalizedText    `json:"names,omitempty"`
	Name  string           `json:"name,omitempty"`
	Image string           `json:"image,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

func NewProductSnapshot(p Product) *ProductSnapshot {
	price := p.Price
	return &ProductSnapshot{
		ID:    p.ID,
		Names: p.Names.Trimmed(),
		Name:  p.Name,
		Image: p.CoverImage(),
		Price: &price,
	}
}

// quotesコレクションの1ドキュメント。作成後はstatusだけ変わる
type QuoteRequest struct {
	ID string `json:"id,omitempty"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	Description string `json:"description,omitempty"`
	// productモードの納品先
	Location string `json:"location,omitempty"`

	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`

	Timeline Timeline         `json:"timeline,omitempty"`
	Mode     QuoteMode        `json:"mode"`
	Product  *ProductSnapshot `json:"product,omitempty"`

	Status    QuoteStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
