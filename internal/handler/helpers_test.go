package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// =====================
// インメモリのDataGateway
// =====================

type fakeGateway struct {
	mu   sync.Mutex
	seq  int
	docs map[string]map[string][]byte

	creates int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{docs: map[string]map[string][]byte{}}
}

func (g *fakeGateway) put(t *testing.T, collection, id string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.docs[collection] == nil {
		g.docs[collection] = map[string][]byte{}
	}
	g.docs[collection][id] = b
}

func (g *fakeGateway) count(collection string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.docs[collection])
}

func (g *fakeGateway) decode(t *testing.T, collection, id string, v any) {
	t.Helper()
	g.mu.Lock()
	b := g.docs[collection][id]
	g.mu.Unlock()
	require.NotNil(t, b)
	require.NoError(t, json.Unmarshal(b, v))
}

// 開始時に1回だけ配る
func (g *fakeGateway) Subscribe(_ context.Context, collection string, _ repo.Query, fn func(repo.Snapshot)) (repo.Subscription, error) {
	g.mu.Lock()
	ids := make([]string, 0, len(g.docs[collection]))
	for id := range g.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	snap := repo.Snapshot{}
	for _, id := range ids {
		snap.Docs = append(snap.Docs, repo.DocumentSnapshot{ID: id, Data: g.docs[collection][id]})
	}
	g.mu.Unlock()

	fn(snap)
	return noopSubscription{}, nil
}

func (g *fakeGateway) GetByID(_ context.Context, collection, id string) (repo.DocumentSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.docs[collection][id]
	if !ok {
		return repo.DocumentSnapshot{}, repo.ErrNotFound
	}
	return repo.DocumentSnapshot{ID: id, Data: b}, nil
}

func (g *fakeGateway) Create(_ context.Context, collection string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.creates++
	id := fmt.Sprintf("doc-%d", g.seq)
	if g.docs[collection] == nil {
		g.docs[collection] = map[string][]byte{}
	}
	g.docs[collection][id] = b
	return id, nil
}

func (g *fakeGateway) Update(_ context.Context, collection, id string, patch map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.docs[collection][id]
	if !ok {
		return repo.ErrNotFound
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for k, v := range patch {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	out, err := json.Marshal(m)
	if err != nil {
		return err
	}
	g.docs[collection][id] = out
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, collection, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.docs[collection][id]; !ok {
		return repo.ErrNotFound
	}
	delete(g.docs[collection], id)
	return nil
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

// =====================
// BlobStore / ImageEncoder / SessionRepository
// =====================

type fakeBlobs struct {
	mu    sync.Mutex
	paths []string
}

func (b *fakeBlobs) UploadBlob(_ context.Context, path, contentType string, data []byte) (repo.BlobRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, path)
	return repo.BlobRef{Path: path, ContentType: contentType, Size: int64(len(data))}, nil
}

func (b *fakeBlobs) GetDownloadURL(_ context.Context, ref repo.BlobRef) (string, error) {
	return "/uploads/" + ref.Path, nil
}

type fakeEncoder struct{}

func (fakeEncoder) Compress(data []byte) (string, error) {
	return fmt.Sprintf("data:image/jpeg;base64,%d", len(data)), nil
}

func (fakeEncoder) Raw(contentType string, data []byte) string {
	return "data:" + contentType + ";base64,raw"
}

type memSessions struct {
	mu sync.Mutex
	m  map[string]model.Session
}

func newMemSessions() *memSessions {
	return &memSessions{m: map[string]model.Session{}}
}

func (s *memSessions) Save(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = sess
	return nil
}

func (s *memSessions) Find(_ context.Context, id string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return model.Session{}, repo.ErrNotFound
	}
	return sess, nil
}

func (s *memSessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// =====================
// DB / HTTP helper
// =====================

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.AuditLog{}, &model.LegacyQuote{}))
	return db
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string][]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doRequest(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
