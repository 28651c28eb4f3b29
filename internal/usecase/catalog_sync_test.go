package usecase_test

import (
	"context"
	"errors"
	"testing"

	"woodify/internal/domain/model"
	repo "woodify/internal/repository"
	"woodify/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// subscribeCapture は Subscribe に渡されたコールバックを取り出す
func subscribeCapture(gw *GatewayMock, collection string) (*func(repo.Snapshot), *SubscriptionMock) {
	var fn func(repo.Snapshot)
	sub := new(SubscriptionMock)
	gw.On("Subscribe", mock.Anything, collection, repo.Query{OrderBy: "created_at", Desc: true}, mock.Anything).
		Run(func(args mock.Arguments) { fn = args.Get(3).(func(repo.Snapshot)) }).
		Return(sub, nil).Once()
	return &fn, sub
}

func product(name, category string, stock int64) model.Product {
	return model.Product{
		Names:    model.LocalizedText{model.LangEN: name},
		Category: category,
		Price:    decimal.NewFromInt(10),
		Stock:    stock,
		Images:   []string{"img"},
		Status:   model.StatusForStock(stock),
	}
}

func TestCatalogSync_LoadingAndFilter(t *testing.T) {
	gw := new(GatewayMock)
	fn, sub := subscribeCapture(gw, model.CollectionProducts)

	s := usecase.NewCatalogSync(gw, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Loading())
	assert.Empty(t, s.Products(usecase.CategoryAll))

	(*fn)(repo.Snapshot{Docs: []repo.DocumentSnapshot{
		docOf(t, "p2", product("Chair", "Living", 3)),
		docOf(t, "p1", product("Desk", "Office", 0)),
		{ID: "broken", Data: []byte("{")},
	}})
	<-s.Updates()

	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())

	all := s.Products("")
	require.Len(t, all, 2)
	assert.Equal(t, "p2", all[0].ID)

	office := s.Products("Office")
	require.Len(t, office, 1)
	assert.Equal(t, "Desk", office[0].DisplayName(model.LangTR))

	assert.Empty(t, s.Products("Garden"))

	p, ok := s.FindProduct("p1")
	assert.True(t, ok)
	assert.Equal(t, model.ProductStatusOutOfStock, p.Status)

	sub.On("Unsubscribe").Return().Once()
	s.Close()
	s.Close()
	sub.AssertNumberOfCalls(t, "Unsubscribe", 1)
}

func TestCatalogSync_ErrorKeepsLastList(t *testing.T) {
	gw := new(GatewayMock)
	fn, sub := subscribeCapture(gw, model.CollectionProducts)
	sub.On("Unsubscribe").Return().Once()

	s := usecase.NewCatalogSync(gw, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	(*fn)(repo.Snapshot{Docs: []repo.DocumentSnapshot{docOf(t, "p1", product("Desk", "Office", 1))}})
	(*fn)(repo.Snapshot{Err: errors.New("connection lost")})

	assert.EqualError(t, s.Err(), "connection lost")
	assert.Len(t, s.Products(usecase.CategoryAll), 1)

	(*fn)(repo.Snapshot{})
	assert.NoError(t, s.Err())
	assert.Empty(t, s.Products(usecase.CategoryAll))

	s.Close()
	sub.AssertExpectations(t)

	assert.Error(t, s.Start(context.Background()))
}

// 初回がエラーでも読み込み中のままにはしない
func TestCatalogSync_FirstSnapshotError(t *testing.T) {
	gw := new(GatewayMock)
	fn, _ := subscribeCapture(gw, model.CollectionProducts)

	s := usecase.NewCatalogSync(gw, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	(*fn)(repo.Snapshot{Err: errors.New("denied")})
	assert.False(t, s.Loading())
	assert.Error(t, s.Err())
}

func TestCatalogSync_PublicProductsSkipsIncomplete(t *testing.T) {
	gw := new(GatewayMock)
	fn, _ := subscribeCapture(gw, model.CollectionProducts)

	s := usecase.NewCatalogSync(gw, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	noImage := product("Bare", "Office", 1)
	noImage.Images = nil
	(*fn)(repo.Snapshot{Docs: []repo.DocumentSnapshot{
		docOf(t, "p1", product("Desk", "Office", 1)),
		docOf(t, "p2", noImage),
	}})

	pub := s.PublicProducts("Office")
	require.Len(t, pub, 1)
	assert.Equal(t, "p1", pub[0].ID)
	assert.Len(t, s.Products("Office"), 2)
}

func TestCatalogSync_SubscribeFailure(t *testing.T) {
	gw := new(GatewayMock)
	gw.On("Subscribe", mock.Anything, model.CollectionProducts, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	s := usecase.NewCatalogSync(gw, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
	assert.True(t, s.Loading())
}
