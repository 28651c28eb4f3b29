package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 管理画面のフォーム入力。数値は文字列のまま受けてここで検証する
type ProductDraft struct {
	Names        model.LocalizedText
	Descriptions model.LocalizedText
	Category     string
	Price        string
	// 言語別の上書き価格（任意）
	PriceOverrides map[model.Language]string
	Stock          string

	Materials  model.LocalizedText
	Finishes   model.LocalizedText
	Dimensions model.LocalizedText

	// 保存済みの画像（編集時）。並び順どおり
	ExistingImages []string
	// 旧データの単一画像
	Image string
}

// 未アップロードの画像ファイル
type ImageFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ValidationResult struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"field_errors"`
}

type AddImagesResult struct {
	Accepted []ImageFile
	Rejected []ImageFile
	Notice   string
}

// 画像をdata URLにする。Compressが失敗したらRawで無圧縮にする
type ImageEncoder interface {
	Compress(data []byte) (string, error)
	Raw(contentType string, data []byte) string
}

// 操作した管理者
type Actor struct {
	UserID      int64
	Email       string
	DevOverride bool
}

type ProductEditor struct {
	gw    repo.DataGateway
	enc   ImageEncoder
	audit repo.AuditLogRepository
	log   *zap.Logger
	now   func() time.Time
}

// DI
func NewProductEditor(gw repo.DataGateway, enc ImageEncoder, audit repo.AuditLogRepository, log *zap.Logger) *ProductEditor {
	return &ProductEditor{gw: gw, enc: enc, audit: audit, log: log, now: time.Now}
}

// Validate はルールを全部評価してエラーをまとめて返す
func (e *ProductEditor) Validate(d ProductDraft, pending []ImageFile) ValidationResult {
	fields := map[string]string{}

	if !d.Names.Has(model.LangEN) {
		fields["name_en"] = "English name is required"
	}
	if !d.Names.Has(model.LangTR) {
		fields["name_tr"] = "Turkish name is required"
	}

	if price, ok := parseDecimal(d.Price); !ok {
		fields["price"] = "price must be a number"
	} else if !price.IsPositive() {
		fields["price"] = "price must be greater than 0"
	}
	for lang, raw := range d.PriceOverrides {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if v, ok := parseDecimal(raw); !ok || !v.IsPositive() {
			fields["price_"+string(lang)] = "price must be greater than 0"
		}
	}

	if stock, ok := parseStock(d.Stock); !ok {
		fields["stock"] = "stock must be a whole number"
	} else if stock < 0 {
		fields["stock"] = "stock cannot be negative"
	}

	if strings.TrimSpace(d.Category) == "" {
		fields["category"] = "category is required"
	}

	images := d.ExistingImageCount() + len(pending)
	if images == 0 {
		fields["images"] = "at least one image is required"
	} else if images > model.MaxProductImages {
		fields["images"] = fmt.Sprintf("at most %d images are allowed", model.MaxProductImages)
	}

	return ValidationResult{Valid: len(fields) == 0, FieldErrors: fields}
}

// AddImages は残り枠まで受け付けて、はみ出した分は通知付きで返す
func (e *ProductEditor) AddImages(existingCount int, files []ImageFile) AddImagesResult {
	remaining := model.MaxProductImages - existingCount
	if remaining < 0 {
		remaining = 0
	}
	if len(files) <= remaining {
		return AddImagesResult{Accepted: files}
	}

	res := AddImagesResult{
		Accepted: files[:remaining],
		Rejected: files[remaining:],
	}
	res.Notice = fmt.Sprintf("You can upload at most %d images. %d file(s) were not added.", model.MaxProductImages, len(res.Rejected))
	return res
}

// Save は検証→画像エンコード→サイズ確認→作成/更新。editingIDが空なら新規
func (e *ProductEditor) Save(ctx context.Context, actor Actor, d ProductDraft, pending []ImageFile, editingID string) (model.Product, error) {
	if res := e.Validate(d, pending); !res.Valid {
		return model.Product{}, &ValidationError{Fields: res.FieldErrors}
	}

	p := e.assemble(d, e.encodeAll(pending))

	data, err := json.Marshal(p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "encode product")
	}
	if len(data) > repo.MaxDocumentBytes {
		return model.Product{}, &SizeLimitError{Bytes: len(data), Limit: repo.MaxDocumentBytes}
	}

	now := e.now().UTC()
	p.UpdatedAt = now

	if editingID == "" {
		p.CreatedAt = now
		id, err := e.gw.Create(ctx, model.CollectionProducts, p)
		if err != nil {
			e.log.Error("create product failed", zap.Error(err))
			return model.Product{}, storeError(err, "create product")
		}
		p.ID = id
		e.writeAudit(ctx, actor, model.AuditActionCreateProduct, id, nil, p)
		return p, nil
	}

	before, err := e.gw.GetByID(ctx, model.CollectionProducts, editingID)
	if err != nil {
		return model.Product{}, storeError(err, "load product")
	}

	patch, err := productPatch(p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "encode product")
	}
	if err := e.gw.Update(ctx, model.CollectionProducts, editingID, patch); err != nil {
		e.log.Error("update product failed", zap.String("product_id", editingID), zap.Error(err))
		return model.Product{}, storeError(err, "update product")
	}

	if old, err := decodeProduct(before); err == nil {
		p.CreatedAt = old.CreatedAt
	}
	p.ID = editingID
	e.writeAudit(ctx, actor, model.AuditActionUpdateProduct, editingID, json.RawMessage(before.Data), p)
	return p, nil
}

// Delete は商品を消す
func (e *ProductEditor) Delete(ctx context.Context, actor Actor, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	before, err := e.gw.GetByID(ctx, model.CollectionProducts, id)
	if err != nil {
		return storeError(err, "load product")
	}
	if err := e.gw.Delete(ctx, model.CollectionProducts, id); err != nil {
		e.log.Error("delete product failed", zap.String("product_id", id), zap.Error(err))
		return storeError(err, "delete product")
	}

	e.writeAudit(ctx, actor, model.AuditActionDeleteProduct, id, json.RawMessage(before.Data), nil)
	return nil
}

func (e *ProductEditor) encodeAll(files []ImageFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		url, err := e.enc.Compress(f.Data)
		if err != nil {
			// 圧縮できなくても画像は落とさない
			e.log.Warn("image compression failed, storing original", zap.String("file", f.FileName), zap.Error(err))
			url = e.enc.Raw(f.ContentType, f.Data)
		}
		out = append(out, url)
	}
	return out
}

// ExistingImageCount は保存時に残る既存画像の枚数。一覧が空なら旧形式の Image を1枚と数える
func (d ProductDraft) ExistingImageCount() int {
	if n := len(nonEmpty(d.ExistingImages)); n > 0 {
		return n
	}
	if strings.TrimSpace(d.Image) != "" {
		return 1
	}
	return 0
}

func (e *ProductEditor) assemble(d ProductDraft, encoded []string) model.Product {
	images := nonEmpty(d.ExistingImages)
	if len(images) == 0 && strings.TrimSpace(d.Image) != "" {
		images = []string{strings.TrimSpace(d.Image)}
	}
	images = append(images, encoded...)

	price, _ := parseDecimal(d.Price)
	stock, _ := parseStock(d.Stock)

	var overrides map[model.Language]decimal.Decimal
	for lang, raw := range d.PriceOverrides {
		if v, ok := parseDecimal(raw); ok {
			if overrides == nil {
				overrides = map[model.Language]decimal.Decimal{}
			}
			overrides[lang] = v
		}
	}

	names := d.Names.Trimmed()
	return model.Product{
		Names:          names,
		Name:           names.Get(model.LangEN, ""),
		Descriptions:   d.Descriptions.Trimmed(),
		Category:       strings.TrimSpace(d.Category),
		Price:          price,
		PriceOverrides: overrides,
		Stock:          stock,
		Materials:      d.Materials.Trimmed(),
		Finishes:       d.Finishes.Trimmed(),
		Dimensions:     d.Dimensions.Trimmed(),
		Images:         images,
		Image:          images[0],
		Status:         model.StatusForStock(stock),
	}
}

func (e *ProductEditor) writeAudit(ctx context.Context, actor Actor, action model.AuditAction, id string, before, after any) {
	log := model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   id,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		CreatedAt:    e.now(),
	}
	// ドキュメントは書き込み済みなので監査ログの失敗はログだけ
	if err := e.audit.Create(ctx, log); err != nil {
		e.log.Error("audit log failed", zap.String("action", string(action)), zap.String("resource_id", id), zap.Error(err))
	}
}

// productPatch は id / created_at 以外を全部上書きする
func productPatch(p model.Product) (map[string]any, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	patch := map[string]any{}
	if err := json.Unmarshal(b, &patch); err != nil {
		return nil, err
	}
	delete(patch, "id")
	delete(patch, "created_at")
	// 無くなった上書き価格などは消す
	for _, k := range []string{"price_overrides", "descriptions", "materials", "finishes", "dimensions"} {
		if _, ok := patch[k]; !ok {
			patch[k] = nil
		}
	}
	return patch, nil
}

// 画像のdata URLは監査ログに残さない
func auditJSON(v any) string {
	if v == nil {
		return ""
	}
	var m map[string]any
	switch t := v.(type) {
	case json.RawMessage:
		if err := json.Unmarshal(t, &m); err != nil {
			return ""
		}
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return ""
		}
	}
	if imgs, ok := m["images"].([]any); ok {
		m["images"] = len(imgs)
	}
	delete(m, "image")
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func parseStock(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
