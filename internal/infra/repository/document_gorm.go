package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentGormGateway は documents テーブルをドキュメントDBとして使う
type documentGormGateway struct {
	db        *gorm.DB
	hub       *ChangeHub
	notifiers []ChangeNotifier
	now       func() time.Time
}

// DI
// hubには必ず通知する。extraはpg_notifyなど他インスタンス向け
func NewDocumentGormGateway(db *gorm.DB, hub *ChangeHub, extra ...ChangeNotifier) repo.DataGateway {
	return &documentGormGateway{
		db:        db,
		hub:       hub,
		notifiers: append([]ChangeNotifier{hub}, extra...),
		now:       time.Now,
	}
}

func (g *documentGormGateway) Subscribe(ctx context.Context, collection string, q repo.Query, fn func(repo.Snapshot)) (repo.Subscription, error) {
	if fn == nil {
		return nil, errors.New("subscribe: callback is nil")
	}
	order, err := orderClause(q)
	if err != nil {
		return nil, err
	}
	load := func(ctx context.Context) ([]repo.DocumentSnapshot, error) {
		return g.list(ctx, collection, order)
	}
	return g.hub.subscribe(ctx, collection, load, fn), nil
}

func (g *documentGormGateway) GetByID(ctx context.Context, collection, id string) (repo.DocumentSnapshot, error) {
	var d model.Document
	err := g.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.DocumentSnapshot{}, repo.ErrNotFound
		}
		return repo.DocumentSnapshot{}, err
	}
	return repo.DocumentSnapshot{ID: d.ID, Data: []byte(d.Data)}, nil
}

func (g *documentGormGateway) Create(ctx context.Context, collection string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	if err := checkSize(data); err != nil {
		return "", err
	}

	now := g.now()
	d := model.Document{
		Collection: collection,
		ID:         uuid.NewString(),
		Data:       string(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := g.db.WithContext(ctx).Create(&d).Error; err != nil {
		return "", err
	}

	g.notify(ctx, collection)
	return d.ID, nil
}

// Update はpatchのキーだけ上書きする。nilの値はキーごと消す
func (g *documentGormGateway) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d model.Document
		if err := tx.Where("collection = ? AND id = ?", collection, id).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(d.Data), &fields); err != nil {
			return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		for k, v := range patch {
			if v == nil {
				delete(fields, k)
				continue
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal field %s: %w", k, err)
			}
			fields[k] = raw
		}

		data, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		if err := checkSize(data); err != nil {
			return err
		}

		return tx.Model(&model.Document{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{"data": string(data), "updated_at": g.now()}).Error
	})
	if err != nil {
		return err
	}

	g.notify(ctx, collection)
	return nil
}

func (g *documentGormGateway) Delete(ctx context.Context, collection, id string) error {
	res := g.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	g.notify(ctx, collection)
	return nil
}

func (g *documentGormGateway) list(ctx context.Context, collection, order string) ([]repo.DocumentSnapshot, error) {
	var rows []model.Document
	err := g.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order(order).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	docs := make([]repo.DocumentSnapshot, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, repo.DocumentSnapshot{ID: r.ID, Data: []byte(r.Data)})
	}
	return docs, nil
}

func (g *documentGormGateway) notify(ctx context.Context, collection string) {
	// 書き込みは成功しているのでリクエストのキャンセルに引きずられない
	ctx = context.WithoutCancel(ctx)
	for _, n := range g.notifiers {
		n.Notify(ctx, collection)
	}
}

// 並び順はホワイトリストのカラムだけ
func orderClause(q repo.Query) (string, error) {
	col := q.OrderBy
	switch col {
	case "":
		col = "created_at"
	case "created_at", "updated_at":
	default:
		return "", fmt.Errorf("subscribe: unsupported order %q", q.OrderBy)
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir), nil
}

func checkSize(data []byte) error {
	if len(data) > repo.MaxDocumentBytes {
		return &repo.DocumentTooLargeError{Bytes: len(data)}
	}
	return nil
}
