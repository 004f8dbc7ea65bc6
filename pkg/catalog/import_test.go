package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/catalog-service/models"
	"gitlab.connectwisedev.com/catalog-service/pkg/cache"
	"gitlab.connectwisedev.com/catalog-service/pkg/catalog/catalogtest"
)

func TestImportProducts(t *testing.T) {
	store := catalogtest.NewStore()
	mc := cache.NewMemoryCache()
	svc, _ := newTestService(store, mc)
	ctx := context.Background()

	_, _, err := svc.ListProducts(ctx)
	require.NoError(t, err)

	res := svc.ImportProducts(ctx, []ImportRow{
		{Line: 2, Product: models.NewProduct{Name: "Widget", Price: price("9.99")}},
		{Line: 3, Product: models.NewProduct{Name: "", Price: price("1")}},
		{Line: 4, Product: models.NewProduct{Name: "Gadget", Price: price("-1")}},
		{Line: 5, Product: models.NewProduct{Name: "Doohickey", Price: price("2.50")}},
	})

	require.Len(t, res.Created, 2)
	assert.Equal(t, "Widget", res.Created[0].Name)
	assert.Equal(t, "Doohickey", res.Created[1].Name)
	assert.Equal(t, []ImportFailure{
		{Line: 3, Reason: "name is required"},
		{Line: 4, Reason: "price must be a non-negative decimal"},
	}, res.Failed)

	_, err = mc.Get(ctx, cache.CollectionKey())
	assert.ErrorIs(t, err, cache.ErrMiss)

	list, origin, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OriginDatabase, origin)
	assert.Len(t, list, 2)
}

func TestImportProductsNothingCreatedKeepsCache(t *testing.T) {
	store := catalogtest.NewStore(widget(1, 1))
	cc := &cancelCheckingCache{MemoryCache: cache.NewMemoryCache()}
	svc, _ := newTestService(store, cc)
	ctx := context.Background()

	_, _, err := svc.ListProducts(ctx)
	require.NoError(t, err)

	store.Fail(errors.New("database is read-only"))
	res := svc.ImportProducts(ctx, []ImportRow{
		{Line: 2, Product: models.NewProduct{Name: "Widget", Price: price("1")}},
	})
	assert.Empty(t, res.Created)
	assert.Equal(t, []ImportFailure{{Line: 2, Reason: "failed to create product"}}, res.Failed)
	assert.False(t, cc.deleted)
}
