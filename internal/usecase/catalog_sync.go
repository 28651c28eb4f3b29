package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"go.uber.org/zap"
)

// CategoryAll はカテゴリ絞り込みをしない
const CategoryAll = "all"

// CatalogSync は productsコレクションを購読して最新の一覧を持つ。
// 使い終わったら必ずCloseする
type CatalogSync struct {
	gw  repo.DataGateway
	log *zap.Logger

	mu       sync.RWMutex
	sub      repo.Subscription
	products []model.Product
	loading  bool
	err      error
	closed   bool

	updates chan struct{}
}

func NewCatalogSync(gw repo.DataGateway, log *zap.Logger) *CatalogSync {
	return &CatalogSync{
		gw:      gw,
		log:     log,
		loading: true,
		updates: make(chan struct{}, 1),
	}
}

// Start は購読を開始する。2回目以降は何もしない
func (s *CatalogSync) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("catalog sync already closed")
	}
	if s.sub != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	sub, err := s.gw.Subscribe(ctx, model.CollectionProducts, repo.Query{OrderBy: "created_at", Desc: true}, s.apply)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.Unsubscribe()
		return errors.New("catalog sync already closed")
	}
	s.sub = sub
	return nil
}

// apply はスナップショットを反映する。エラー時は直前の一覧をそのまま残す
func (s *CatalogSync) apply(snap repo.Snapshot) {
	if snap.Err != nil {
		s.log.Warn("product subscription error, keeping last list", zap.Error(snap.Err))
		s.mu.Lock()
		s.err = snap.Err
		s.loading = false
		s.mu.Unlock()
		s.notify()
		return
	}

	products := make([]model.Product, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		p, err := decodeProduct(d)
		if err != nil {
			s.log.Warn("skip broken product", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	s.mu.Lock()
	s.products = products
	s.err = nil
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *CatalogSync) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Updates はスナップショットが届くたびに鳴る（まとめて1回になることがある）
func (s *CatalogSync) Updates() <-chan struct{} {
	return s.updates
}

// Close は購読を解除する。以降コールバックは来ない
func (s *CatalogSync) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.closed = true
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// Loading は最初のスナップショットが届くまでtrue
func (s *CatalogSync) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err は直近の購読エラー。次に正常なスナップショットが来ると消える
func (s *CatalogSync) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Products はカテゴリで絞った一覧（""/"all" は全件）。並び順は購読のまま
func (s *CatalogSync) Products(category string) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category = strings.TrimSpace(category)
	all := category == "" || strings.EqualFold(category, CategoryAll)

	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if all || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// PublicProducts は公開できる商品だけ
func (s *CatalogSync) PublicProducts(category string) []model.Product {
	list := s.Products(category)
	out := list[:0]
	for _, p := range list {
		if p.Publishable() {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogSync) Product(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// FindProduct は売上見込みの補完に使う
func (s *CatalogSync) FindProduct(id string) (model.Product, bool) {
	return s.Product(id)
}
