package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 添付の上限（5MB）
const MaxAttachmentBytes = 5 * 1024 * 1024

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// validateAttachment は中身から種類を判定してContentTypeを上書きする
func validateAttachment(att *Attachment) map[string]string {
	fields := map[string]string{}
	switch {
	case len(att.Data) == 0:
		fields["file"] = "file is empty"
	case len(att.Data) > MaxAttachmentBytes:
		fields["file"] = "file is larger than 5 MB"
	default:
		ct := http.DetectContentType(att.Data)
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
		if !allowedAttachmentTypes[ct] {
			fields["file"] = "only jpeg, png, webp or pdf files are allowed"
		} else {
			att.ContentType = ct
		}
	}
	return fields
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "attachment"
	}
	return name
}

type QuoteUsecase struct {
	gw    repo.DataGateway
	blobs repo.BlobStore
	v     QuoteValidator
	log   *zap.Logger
	now   func() time.Time
}

// DI
func NewQuoteUsecase(gw repo.DataGateway, blobs repo.BlobStore, v QuoteValidator, log *zap.Logger) *QuoteUsecase {
	return &QuoteUsecase{gw: gw, blobs: blobs, v: v, log: log, now: time.Now}
}

// NewWorkflow はフォームを開く。productモードは商品を読んでスナップショットを取る
func (u *QuoteUsecase) NewWorkflow(ctx context.Context, mode model.QuoteMode, productID string) (*QuoteWorkflow, error) {
	var snap *model.ProductSnapshot
	if mode == model.QuoteModeProduct {
		s, err := u.NewProductSnapshot(ctx, productID)
		if err != nil {
			return nil, err
		}
		snap = s
	}
	return NewQuoteWorkflow(mode, snap, u.v)
}

// NewProductSnapshot は送信時点の商品情報（名前・画像・価格）をコピーする
func (u *QuoteUsecase) NewProductSnapshot(ctx context.Context, productID string) (*model.ProductSnapshot, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, &ValidationError{Fields: map[string]string{"product_id": "required"}}
	}

	doc, err := u.gw.GetByID(ctx, model.CollectionProducts, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "product not found")
		}
		u.log.Error("load product for quote failed", zap.String("product_id", productID), zap.Error(err))
		return nil, storeError(err, "load product")
	}

	p, err := decodeProduct(doc)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "broken product record")
	}
	return model.NewProductSnapshot(p), nil
}

// Submit は添付をアップロードしてURLを得てから、quotesを1件だけ作る。
// 失敗したらドキュメントは作らず、フォームは直前のステップに戻る
func (u *QuoteUsecase) Submit(ctx context.Context, wf *QuoteWorkflow) (*model.QuoteRequest, error) {
	d, err := wf.beginSubmit()
	if err != nil {
		return nil, err
	}

	rec, err := u.submit(ctx, d)
	wf.finishSubmit(rec, err)
	return rec, err
}

func (u *QuoteUsecase) submit(ctx context.Context, d quoteDraft) (*model.QuoteRequest, error) {
	rec := model.QuoteRequest{
		Name:        d.contact.Name,
		Email:       d.contact.Email,
		Phone:       d.contact.Phone,
		Description: d.description,
		Location:    d.location,
		Mode:        d.mode,
		Status:      model.QuoteStatusPending,
		CreatedAt:   u.now().UTC(),
	}
	switch d.mode {
	case model.QuoteModeSpecial:
		rec.Timeline = d.timeline
	case model.QuoteModeProduct:
		rec.Product = d.product
	}

	if d.attachment != nil {
		key := fmt.Sprintf("quotes/%s/%s", uuid.NewString(), safeFileName(d.attachment.FileName))

		ref, err := u.blobs.UploadBlob(ctx, key, d.attachment.ContentType, d.attachment.Data)
		if err != nil {
			u.log.Error("quote attachment upload failed", zap.String("key", key), zap.Error(err))
			return nil, NewHTTPError(http.StatusBadGateway, "file upload failed")
		}
		url, err := u.blobs.GetDownloadURL(ctx, ref)
		if err != nil {
			u.log.Error("quote attachment url failed", zap.String("key", key), zap.Error(err))
			return nil, NewHTTPError(http.StatusBadGateway, "file upload failed")
		}
		rec.FileURL = url
		rec.FileName = d.attachment.FileName
	}

	id, err := u.gw.Create(ctx, model.CollectionQuotes, rec)
	if err != nil {
		u.log.Error("create quote failed", zap.String("mode", string(d.mode)), zap.Error(err))
		return nil, storeError(err, "create quote")
	}
	rec.ID = id

	u.log.Info("quote submitted", zap.String("quote_id", id), zap.String("mode", string(d.mode)))
	return &rec, nil
}

func decodeProduct(d repo.DocumentSnapshot) (model.Product, error) {
	var p model.Product
	if err := json.Unmarshal(d.Data, &p); err != nil {
		return model.Product{}, err
	}
	p.ID = d.ID
	return p, nil
}

func decodeQuote(d repo.DocumentSnapshot) (model.QuoteRequest, error) {
	var q model.QuoteRequest
	if err := json.Unmarshal(d.Data, &q); err != nil {
		return model.QuoteRequest{}, err
	}
	q.ID = d.ID
	return q, nil
}
