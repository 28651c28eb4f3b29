package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"
	"woodify/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLegacy() (*usecase.LegacyQuoteUsecase, *LegacyQuoteRepoMock, *AuditRepoMock, *BlobStoreMock) {
	quotes := new(LegacyQuoteRepoMock)
	audit := new(AuditRepoMock)
	blobs := new(BlobStoreMock)
	tx := &TxManagerMock{Repos: &TxReposMock{legacy: quotes, audit: audit}}
	tx.On("WithinTx", mock.Anything)
	return usecase.NewLegacyQuoteUsecase(quotes, tx, blobs, zap.NewNop()), quotes, audit, blobs
}

func TestLegacyQuote_CreateRequiresContact(t *testing.T) {
	u, quotes, _, _ := newLegacy()

	_, err := u.Create(context.Background(), usecase.LegacyQuoteInput{Name: "Ali", Email: "a@b.c"})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "Please provide name, email, and phone", he.Message)
	quotes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLegacyQuote_CreatePending(t *testing.T) {
	u, quotes, _, _ := newLegacy()
	ctx := context.Background()

	quotes.On("Create", ctx, mock.MatchedBy(func(q *model.LegacyQuote) bool {
		return q.Status == model.LegacyQuoteStatusPending && q.Name == "Ali" && len(q.Attachments) == 1
	})).Run(func(args mock.Arguments) { args.Get(1).(*model.LegacyQuote).ID = 9 }).Return(nil).Once()

	q, err := u.Create(ctx, usecase.LegacyQuoteInput{Name: " Ali ", Email: "a@b.c", Phone: "1", Attachments: []string{"/uploads/x.png"}})
	require.NoError(t, err)
	assert.Equal(t, int64(9), q.ID)
	quotes.AssertExpectations(t)
}

func TestLegacyQuote_UpdateStatusWithAudit(t *testing.T) {
	u, quotes, audit, _ := newLegacy()
	ctx := context.Background()

	quotes.On("FindByID", ctx, int64(9)).Return(model.LegacyQuote{ID: 9, Status: model.LegacyQuoteStatusPending}, nil).Once()
	quotes.On("UpdateStatus", ctx, int64(9), model.LegacyQuoteStatusReviewed).Return(nil).Once()
	audit.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateLegacyQuoteStatus && l.ResourceID == "9" &&
			l.BeforeJSON == `{"status":"pending"}`
	})).Return(nil).Once()

	q, err := u.UpdateStatus(ctx, usecase.Actor{UserID: 1}, 9, "reviewed")
	require.NoError(t, err)
	assert.Equal(t, model.LegacyQuoteStatusReviewed, q.Status)
	quotes.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestLegacyQuote_UpdateStatusErrors(t *testing.T) {
	u, quotes, _, _ := newLegacy()
	ctx := context.Background()

	he, ok := usecase.AsHTTPError(func() error { _, err := u.UpdateStatus(ctx, usecase.Actor{}, 1, "done"); return err }())
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)

	quotes.On("FindByID", ctx, int64(404)).Return(nil, repo.ErrNotFound).Once()
	_, err := u.UpdateStatus(ctx, usecase.Actor{}, 404, "completed")
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "Quote not found", he.Message)
}

func TestLegacyQuote_Delete(t *testing.T) {
	u, quotes, audit, _ := newLegacy()
	ctx := context.Background()

	quotes.On("Delete", ctx, int64(9)).Return(nil).Once()
	audit.On("Create", ctx, mock.Anything).Return(nil).Once()
	require.NoError(t, u.Delete(ctx, usecase.Actor{}, 9))

	quotes.On("Delete", ctx, int64(10)).Return(repo.ErrNotFound).Once()
	he, ok := usecase.AsHTTPError(u.Delete(ctx, usecase.Actor{}, 10))
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
	audit.AssertNumberOfCalls(t, "Create", 1)
}

func TestLegacyQuote_Upload(t *testing.T) {
	u, _, _, blobs := newLegacy()
	ctx := context.Background()

	ref := repo.BlobRef{Path: "x.png"}
	blobs.On("UploadBlob", ctx, mock.MatchedBy(func(name string) bool {
		return regexp.MustCompile(`^\d+-\d+\.png$`).MatchString(name)
	}), "image/png", pngBytes).Return(ref, nil).Once()
	blobs.On("GetDownloadURL", ctx, ref).Return("/uploads/x.png", nil).Once()

	res, err := u.Upload(ctx, "Photo.PNG", "image/png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/x.png", res.URL)
	assert.Regexp(t, `\.png$`, res.Filename)
	blobs.AssertExpectations(t)
}

func TestLegacyQuote_UploadRejects(t *testing.T) {
	u, _, _, blobs := newLegacy()
	ctx := context.Background()

	cases := []struct {
		name, file, ct string
		data           []byte
		msg            string
	}{
		{"empty", "a.png", "image/png", nil, "No file uploaded"},
		{"too large", "a.png", "image/png", make([]byte, usecase.MaxLegacyUploadBytes+1), "File too large"},
		{"pdf", "a.pdf", "application/pdf", []byte("%PDF"), "Only images (jpeg, jpg, png, webp) are allowed!"},
		{"ext mismatch", "a.exe", "image/png", pngBytes, "Only images (jpeg, jpg, png, webp) are allowed!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Upload(ctx, tc.file, tc.ct, tc.data)
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, tc.msg, he.Message)
		})
	}

	blobs.On("UploadBlob", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("disk full")).Once()
	_, err := u.Upload(ctx, "a.jpg", "image/jpeg", []byte{0xff, 0xd8})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 500, he.Status)
}
