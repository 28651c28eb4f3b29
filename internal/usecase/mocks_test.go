package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// DataGateway / BlobStore mocks
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Subscribe(ctx context.Context, collection string, q repo.Query, fn func(repo.Snapshot)) (repo.Subscription, error) {
	args := m.Called(ctx, collection, q, fn)
	sub, _ := args.Get(0).(repo.Subscription)
	return sub, args.Error(1)
}

func (m *GatewayMock) GetByID(ctx context.Context, collection, id string) (repo.DocumentSnapshot, error) {
	args := m.Called(ctx, collection, id)
	d, _ := args.Get(0).(repo.DocumentSnapshot)
	return d, args.Error(1)
}

func (m *GatewayMock) Create(ctx context.Context, collection string, v any) (string, error) {
	args := m.Called(ctx, collection, v)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	args := m.Called(ctx, collection, id, patch)
	return args.Error(0)
}

func (m *GatewayMock) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

type SubscriptionMock struct{ mock.Mock }

func (m *SubscriptionMock) Unsubscribe() { m.Called() }

type BlobStoreMock struct{ mock.Mock }

func (m *BlobStoreMock) UploadBlob(ctx context.Context, path, contentType string, data []byte) (repo.BlobRef, error) {
	args := m.Called(ctx, path, contentType, data)
	ref, _ := args.Get(0).(repo.BlobRef)
	return ref, args.Error(1)
}

func (m *BlobStoreMock) GetDownloadURL(ctx context.Context, ref repo.BlobRef) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

// =====================
// Repository mocks
// =====================

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpsertAdmin(ctx context.Context, email, passwordHash string) (*model.User, error) {
	args := m.Called(ctx, email, passwordHash)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type SessionRepoMock struct{ mock.Mock }

func (m *SessionRepoMock) Save(ctx context.Context, s model.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SessionRepoMock) Find(ctx context.Context, id string) (model.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Session)
	return s, args.Error(1)
}

func (m *SessionRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type LegacyQuoteRepoMock struct{ mock.Mock }

func (m *LegacyQuoteRepoMock) List(ctx context.Context) ([]model.LegacyQuote, error) {
	args := m.Called(ctx)
	qs, _ := args.Get(0).([]model.LegacyQuote)
	return qs, args.Error(1)
}

func (m *LegacyQuoteRepoMock) FindByID(ctx context.Context, id int64) (model.LegacyQuote, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(model.LegacyQuote)
	return q, args.Error(1)
}

func (m *LegacyQuoteRepoMock) Create(ctx context.Context, q *model.LegacyQuote) error {
	return m.Called(ctx, q).Error(0)
}

func (m *LegacyQuoteRepoMock) UpdateStatus(ctx context.Context, id int64, s model.LegacyQuoteStatus) error {
	return m.Called(ctx, id, s).Error(0)
}

func (m *LegacyQuoteRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	legacy repo.LegacyQuoteRepository
	audit  repo.AuditLogRepository
}

func (r *TxReposMock) LegacyQuotes() repo.LegacyQuoteRepository { return r.legacy }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository       { return r.audit }

// =====================
// ImageEncoder mock
// =====================

type EncoderMock struct{ mock.Mock }

func (m *EncoderMock) Compress(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *EncoderMock) Raw(contentType string, data []byte) string {
	return m.Called(contentType, data).String(0)
}

// =====================
// helpers
// =====================

func docOf(t *testing.T, id string, v any) repo.DocumentSnapshot {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return repo.DocumentSnapshot{ID: id, Data: b}
}
