package repository

import (
	"context"
	"sync"

	repo "woodify/internal/repository"
)

// 書き込み後にコレクションの変更を知らせる先
type ChangeNotifier interface {
	Notify(ctx context.Context, collection string)
}

// ChangeHub はプロセス内の購読者へ変更を配る
type ChangeHub struct {
	mu   sync.Mutex
	subs map[string]map[*hubSubscription]struct{}
}

func NewChangeHub() *ChangeHub {
	return &ChangeHub{subs: map[string]map[*hubSubscription]struct{}{}}
}

// Notify は購読者に再読込を促す。連続した通知は1回にまとまる
func (h *ChangeHub) Notify(_ context.Context, collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[collection] {
		s.signal()
	}
}

// NotifyAll は全コレクションの購読者に再読込を促す（再接続後など）
func (h *ChangeHub) NotifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for s := range set {
			s.signal()
		}
	}
}

// Subscribers は購読中の数（テスト・ログ用）
func (h *ChangeHub) Subscribers(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

type loadFunc func(ctx context.Context) ([]repo.DocumentSnapshot, error)

// subscribe は購読を登録して配信用goroutineを起動する
func (h *ChangeHub) subscribe(ctx context.Context, collection string, load loadFunc, fn func(repo.Snapshot)) *hubSubscription {
	s := &hubSubscription{
		hub:        h,
		collection: collection,
		load:       load,
		fn:         fn,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = map[*hubSubscription]struct{}{}
	}
	h.subs[collection][s] = struct{}{}
	h.mu.Unlock()

	go s.run(ctx)
	return s
}

func (h *ChangeHub) remove(s *hubSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.collection]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.collection)
		}
	}
}

type hubSubscription struct {
	hub        *ChangeHub
	collection string
	load       loadFunc
	fn         func(repo.Snapshot)

	wake chan struct{}
	done chan struct{}
	once sync.Once

	// 配信中はロックを持つ。closed後は配信しない
	mu     sync.Mutex
	closed bool
}

func (s *hubSubscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *hubSubscription) run(ctx context.Context) {
	defer s.hub.remove(s)

	// 最初のスナップショット
	s.reload(ctx)

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.wake:
			s.reload(ctx)
		}
	}
}

func (s *hubSubscription) reload(ctx context.Context) {
	docs, err := s.load(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(repo.Snapshot{Docs: docs, Err: err})
}

// Unsubscribe は配信中のコールバックが終わるまで待つ。
// コールバックの中から呼ぶとデッドロックする
func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
}
