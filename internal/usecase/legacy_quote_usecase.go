package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"go.uber.org/zap"
)

// 旧アップロードの上限（5MB）と許可する種類
const MaxLegacyUploadBytes = 5 * 1024 * 1024

var legacyImageTypes = regexp.MustCompile(`jpeg|jpg|png|webp`)

type LegacyQuoteInput struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Description string   `json:"description"`
	Timeline    string   `json:"timeline"`
	Attachments []string `json:"attachments"`
}

type LegacyUploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// LegacyQuoteUsecase は旧 /api/quotes 用。ドキュメントDBとは独立
type LegacyQuoteUsecase struct {
	quotes repo.LegacyQuoteRepository
	tx     repo.TransactionManager
	blobs  repo.BlobStore
	log    *zap.Logger
	now    func() time.Time
}

// DI
func NewLegacyQuoteUsecase(quotes repo.LegacyQuoteRepository, tx repo.TransactionManager, blobs repo.BlobStore, log *zap.Logger) *LegacyQuoteUsecase {
	return &LegacyQuoteUsecase{quotes: quotes, tx: tx, blobs: blobs, log: log, now: time.Now}
}

func (u *LegacyQuoteUsecase) Create(ctx context.Context, in LegacyQuoteInput) (model.LegacyQuote, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Email == "" || in.Phone == "" {
		return model.LegacyQuote{}, NewHTTPError(http.StatusBadRequest, "Please provide name, email, and phone")
	}

	q := model.LegacyQuote{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Description: in.Description,
		Timeline:    in.Timeline,
		Attachments: in.Attachments,
		Status:      model.LegacyQuoteStatusPending,
		CreatedAt:   u.now(),
	}
	if err := u.quotes.Create(ctx, &q); err != nil {
		u.log.Error("create legacy quote failed", zap.Error(err))
		return model.LegacyQuote{}, NewHTTPError(http.StatusInternalServerError, "Server Error")
	}
	return q, nil
}

// List は作成日の新しい順
func (u *LegacyQuoteUsecase) List(ctx context.Context) ([]model.LegacyQuote, error) {
	qs, err := u.quotes.List(ctx)
	if err != nil {
		u.log.Error("list legacy quotes failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "Server Error")
	}
	return qs, nil
}

// UpdateStatus はステータス更新と監査ログを同じTxで行う
func (u *LegacyQuoteUsecase) UpdateStatus(ctx context.Context, actor Actor, id int64, status string) (model.LegacyQuote, error) {
	newStatus := model.LegacyQuoteStatus(strings.TrimSpace(status))
	if !newStatus.Valid() {
		return model.LegacyQuote{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out model.LegacyQuote
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.LegacyQuotes().FindByID(ctx, id)
		if err != nil {
			return legacyRepoError(err)
		}
		if err := r.LegacyQuotes().UpdateStatus(ctx, id, newStatus); err != nil {
			return legacyRepoError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateLegacyQuoteStatus,
			ResourceType: model.AuditResourceLegacyQuote,
			ResourceID:   fmt.Sprint(id),
			BeforeJSON:   `{"status":"` + string(before.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
			CreatedAt:    u.now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "Server Error")
		}

		out = before
		out.Status = newStatus
		return nil
	})
	if err != nil {
		return model.LegacyQuote{}, err
	}
	return out, nil
}

func (u *LegacyQuoteUsecase) Delete(ctx context.Context, actor Actor, id int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.LegacyQuotes().Delete(ctx, id); err != nil {
			return legacyRepoError(err)
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionDeleteLegacyQuote,
			ResourceType: model.AuditResourceLegacyQuote,
			ResourceID:   fmt.Sprint(id),
			CreatedAt:    u.now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "Server Error")
		}
		return nil
	})
}

// Upload は画像1枚を <ミリ秒>-<乱数>.ext で保存する
func (u *LegacyQuoteUsecase) Upload(ctx context.Context, originalName, contentType string, data []byte) (LegacyUploadResult, error) {
	if len(data) == 0 {
		return LegacyUploadResult{}, NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if len(data) > MaxLegacyUploadBytes {
		return LegacyUploadResult{}, NewHTTPError(http.StatusBadRequest, "File too large")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !legacyImageTypes.MatchString(strings.ToLower(contentType)) || !legacyImageTypes.MatchString(ext) {
		return LegacyUploadResult{}, NewHTTPError(http.StatusBadRequest, "Only images (jpeg, jpg, png, webp) are allowed!")
	}

	name := fmt.Sprintf("%d-%d%s", u.now().UnixMilli(), rand.IntN(1_000_000_000), ext)
	ref, err := u.blobs.UploadBlob(ctx, name, contentType, data)
	if err != nil {
		u.log.Error("legacy upload failed", zap.String("file", name), zap.Error(err))
		return LegacyUploadResult{}, NewHTTPError(http.StatusInternalServerError, "Server error during upload")
	}
	url, err := u.blobs.GetDownloadURL(ctx, ref)
	if err != nil {
		return LegacyUploadResult{}, NewHTTPError(http.StatusInternalServerError, "Server error during upload")
	}
	return LegacyUploadResult{URL: url, Filename: name}, nil
}

func legacyRepoError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "Quote not found")
	}
	return NewHTTPError(http.StatusInternalServerError, "Server Error")
}
