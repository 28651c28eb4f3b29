package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 売上見込みでスナップショットに価格が無いときの補完先
type ProductLookup interface {
	FindProduct(id string) (model.Product, bool)
}

type RequestFilter struct {
	Status string // "" / all / pending / replied / closed
	Search string // 名前・メール・電話の部分一致（大文字小文字無視）
	Sort   string // newest（既定） / oldest
}

type DayCount struct {
	Date    string `json:"date"` // 2006-01-02
	Count   int    `json:"count"`
	Percent int    `json:"percent"` // 最大の日を100とした割合
}

type RequestStats struct {
	Total   int             `json:"total"`
	Pending int             `json:"pending"`
	Daily   []DayCount      `json:"daily"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RequestManager は quotesコレクションを購読して一覧・集計・ステータス更新を行う
type RequestManager struct {
	gw       repo.DataGateway
	products ProductLookup
	audit    repo.AuditLogRepository
	log      *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	sub     repo.Subscription
	quotes  []model.QuoteRequest
	loading bool
	err     error
	closed  bool
}

// DI
func NewRequestManager(gw repo.DataGateway, products ProductLookup, audit repo.AuditLogRepository, log *zap.Logger) *RequestManager {
	return &RequestManager{
		gw:       gw,
		products: products,
		audit:    audit,
		log:      log,
		now:      time.Now,
		loading:  true,
	}
}

// Start は作成日の新しい順で購読する
func (m *RequestManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("request manager already closed")
	}
	if m.sub != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	sub, err := m.gw.Subscribe(ctx, model.CollectionQuotes, repo.Query{OrderBy: "created_at", Desc: true}, m.apply)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		sub.Unsubscribe()
		return errors.New("request manager already closed")
	}
	m.sub = sub
	return nil
}

func (m *RequestManager) apply(snap repo.Snapshot) {
	if snap.Err != nil {
		m.log.Warn("quote subscription error, keeping last list", zap.Error(snap.Err))
		m.mu.Lock()
		m.err = snap.Err
		m.loading = false
		m.mu.Unlock()
		return
	}

	quotes := make([]model.QuoteRequest, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		q, err := decodeQuote(d)
		if err != nil {
			m.log.Warn("skip broken quote", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		quotes = append(quotes, q)
	}

	m.mu.Lock()
	m.quotes = quotes
	m.err = nil
	m.loading = false
	m.mu.Unlock()
}

func (m *RequestManager) Close() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.closed = true
	m.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (m *RequestManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *RequestManager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Requests は絞り込み・検索・並び替えした一覧
func (m *RequestManager) Requests(f RequestFilter) []model.QuoteRequest {
	m.mu.RLock()
	src := m.quotes
	m.mu.RUnlock()

	status := strings.ToLower(strings.TrimSpace(f.Status))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.QuoteRequest, 0, len(src))
	for _, q := range src {
		if status != "" && status != "all" && string(q.Status) != status {
			continue
		}
		if search != "" && !matchesSearch(q, search) {
			continue
		}
		out = append(out, q)
	}

	oldest := strings.EqualFold(strings.TrimSpace(f.Sort), "oldest")
	sort.SliceStable(out, func(i, j int) bool {
		if oldest {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesSearch(q model.QuoteRequest, needle string) bool {
	for _, s := range []string{q.Name, q.Email, q.Phone} {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// Stats は今持っている一覧から集計する
func (m *RequestManager) Stats(now time.Time) RequestStats {
	m.mu.RLock()
	src := m.quotes
	m.mu.RUnlock()

	st := RequestStats{Total: len(src), Revenue: decimal.Zero}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	counts := make([]int, 7)

	for _, q := range src {
		if q.Status == model.QuoteStatusPending {
			st.Pending++
		}

		c := q.CreatedAt.In(loc)
		day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, loc)
		// 0 = 6日前, 6 = 今日
		diff := int(today.Sub(day).Hours()/24 + 0.5)
		if diff >= 0 && diff < 7 {
			counts[6-diff]++
		}

		if q.Mode == model.QuoteModeProduct && q.Product != nil {
			st.Revenue = st.Revenue.Add(m.quotePrice(q.Product))
		}
	}

	peak := 1
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	st.Daily = make([]DayCount, 7)
	for i, c := range counts {
		st.Daily[i] = DayCount{
			Date:    today.AddDate(0, 0, i-6).Format("2006-01-02"),
			Count:   c,
			Percent: c * 100 / peak,
		}
	}
	return st
}

// スナップショットの価格 → 無ければ今の商品価格
func (m *RequestManager) quotePrice(s *model.ProductSnapshot) decimal.Decimal {
	if s.Price != nil {
		return *s.Price
	}
	if m.products != nil {
		if p, ok := m.products.FindProduct(s.ID); ok {
			return p.Price
		}
	}
	return decimal.Zero
}

// UpdateStatus は status だけを書き換える。手元の一覧は購読の反映を待つ
func (m *RequestManager) UpdateStatus(ctx context.Context, actor Actor, id string, status model.QuoteStatus) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !status.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	before := m.cachedStatus(id)

	if err := m.gw.Update(ctx, model.CollectionQuotes, id, map[string]any{"status": status}); err != nil {
		m.log.Error("update quote status failed", zap.String("quote_id", id), zap.Error(err))
		return storeError(err, "update status")
	}

	log := model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       model.AuditActionUpdateQuoteStatus,
		ResourceType: model.AuditResourceQuote,
		ResourceID:   id,
		BeforeJSON:   `{"status":"` + string(before) + `"}`,
		AfterJSON:    `{"status":"` + string(status) + `"}`,
		CreatedAt:    m.now(),
	}
	if err := m.audit.Create(ctx, log); err != nil {
		m.log.Error("audit log failed", zap.String("quote_id", id), zap.Error(err))
	}
	return nil
}

func (m *RequestManager) cachedStatus(id string) model.QuoteStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quotes {
		if q.ID == id {
			return q.Status
		}
	}
	return ""
}
