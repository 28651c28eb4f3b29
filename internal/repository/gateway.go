package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 1ドキュメントの上限（バイト）。data URLの画像を抱えた商品が超えやすい
const MaxDocumentBytes = 1_000_000

// ErrDocumentTooLarge は保存前のサイズチェックで返す
var ErrDocumentTooLarge = errors.New("document too large")

// DocumentTooLargeError はサイズ付きで返す
type DocumentTooLargeError struct {
	Bytes int
}

func (e *DocumentTooLargeError) Error() string {
	return ErrDocumentTooLarge.Error()
}

func (e *DocumentTooLargeError) Unwrap() error { return ErrDocumentTooLarge }

// 購読時の並び順
type Query struct {
	OrderBy string // created_at / updated_at
	Desc    bool
}

// ドキュメント1件（IDとJSON本体）
type DocumentSnapshot struct {
	ID   string
	Data []byte
}

// 購読のたびに渡す全件スナップショット。Errがあれば購読エラー
type Snapshot struct {
	Docs []DocumentSnapshot
	Err  error
}

// Subscription は購読の解除口
type Subscription interface {
	// Unsubscribe 後はコールバックを呼ばない
	Unsubscribe()
}

// ドキュメントDBへの読み書き・変更購読をまとめた約束
type DataGateway interface {
	// Subscribe は開始時に1回、以降は変更のたびにfnを呼ぶ
	Subscribe(ctx context.Context, collection string, q Query, fn func(Snapshot)) (Subscription, error)
	GetByID(ctx context.Context, collection, id string) (DocumentSnapshot, error)
	// Create はIDを採番して返す
	Create(ctx context.Context, collection string, v any) (string, error)
	// Update はpatchのキーだけを書き換える
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// 保存したファイルの参照
type BlobRef struct {
	Path        string
	ContentType string
	Size        int64
}

// 添付ファイルの保存先（S3 / ローカル）
type BlobStore interface {
	UploadBlob(ctx context.Context, path, contentType string, data []byte) (BlobRef, error)
	// GetDownloadURL は閲覧用URLを返す（S3なら署名付き）
	GetDownloadURL(ctx context.Context, ref BlobRef) (string, error)
}
