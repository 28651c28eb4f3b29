package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"woodify/internal/domain/model"
	"woodify/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T) func(gw *fakeGateway) {
	return func(gw *fakeGateway) {
		seedProduct(t, gw, "p1", model.LocalizedText{model.LangEN: "Desk", model.LangTR: "Masa"}, "office", "1200")
		seedProduct(t, gw, "p2", model.LocalizedText{model.LangEN: "Chair", model.LangTR: "Sandalye"}, "living", "300")
		// 画像が無いので公開しない
		gw.put(t, model.CollectionProducts, "p3", map[string]any{
			"names":    model.LocalizedText{model.LangEN: "Draft"},
			"category": "office",
			"price":    "10",
			"images":   []string{},
			"status":   model.ProductStatusActive,
		})
	}
}

func TestProductList_LocalizedAndFiltered(t *testing.T) {
	app := newTestApp(t, seedCatalog(t))

	req := httptest.NewRequest(http.MethodGet, "/products?category=office&lang=tr", nil)
	rec := doRequest(app.e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res handler.ProductListResponse
	decodeBody(t, rec, &res)
	assert.False(t, res.Loading)
	assert.False(t, res.Stale)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "p1", res.Items[0].ID)
	assert.Equal(t, "Masa", res.Items[0].Name)
	assert.Equal(t, "Aktif", res.Items[0].StatusLabel)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", res.Items[0].Image)
}

func TestProductList_AcceptLanguage(t *testing.T) {
	app := newTestApp(t, seedCatalog(t))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9")
	rec := doRequest(app.e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res handler.ProductListResponse
	decodeBody(t, rec, &res)
	names := []string{}
	for _, it := range res.Items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"Masa", "Sandalye"}, names)
}

func TestProductDetail(t *testing.T) {
	app := newTestApp(t, seedCatalog(t))

	t.Run("found", func(t *testing.T) {
		rec := doRequest(app.e, httptest.NewRequest(http.MethodGet, "/products/p2", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var v handler.ProductView
		decodeBody(t, rec, &v)
		assert.Equal(t, "Chair", v.Name)
		assert.Equal(t, "300", v.Price.String())
		assert.Equal(t, []string{"data:image/jpeg;base64,AAAA"}, v.Images)
	})

	t.Run("not publishable", func(t *testing.T) {
		rec := doRequest(app.e, httptest.NewRequest(http.MethodGet, "/products/p3", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := doRequest(app.e, httptest.NewRequest(http.MethodGet, "/products/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProductStream_SendsSnapshotAndClosesOnDisconnect(t *testing.T) {
	app := newTestApp(t, seedCatalog(t))
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/products/stream?lang=tr", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	sc := bufio.NewScanner(res.Body)
	var data string
	for sc.Scan() {
		line := sc.Text()
		if line == "event: products" {
			require.True(t, sc.Scan())
			data = strings.TrimPrefix(sc.Text(), "data: ")
			break
		}
	}
	require.NotEmpty(t, data)

	var list handler.ProductListResponse
	require.NoError(t, json.Unmarshal([]byte(data), &list))
	assert.Len(t, list.Items, 2)

	// 切断したら購読も閉じる
	cancel()
	require.Eventually(t, func() bool {
		opened := app.openedCatalogs()
		if len(opened) != 1 {
			return false
		}
		return opened[0].Start(context.Background()) != nil
	}, 2*time.Second, 20*time.Millisecond)
}
