package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/shop/shoptest"
)

func setup(t *testing.T) (*Service, *shoptest.Collection[shop.Product]) {
	products := shoptest.NewCollection(
		shop.Product{ID: "1", Name: "Pilot", Price: decimal.NewFromInt(100), Stock: 5},
		shop.Product{ID: "2", Name: "Diver", Price: decimal.NewFromInt(50), Stock: 1},
	)
	return New(products, nil), products
}

func stockOf(t *testing.T, c *shoptest.Collection[shop.Product], id string) int {
	p, ok, err := c.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	return p.Stock
}

func TestApplySaleAndPurchase(t *testing.T) {
	svc, products := setup(t)
	ctx := context.Background()

	sale := shop.Sale{Items: []shop.SaleItem{{ProductID: "1", Quantity: 2}}}
	require.NoError(t, svc.Apply(ctx, SaleMovements(sale)))
	assert.Equal(t, 3, stockOf(t, products, "1"))

	purchase := shop.Purchase{Items: []shop.PurchaseItem{{ProductID: "1", Quantity: 2}}}
	require.NoError(t, svc.Apply(ctx, PurchaseMovements(purchase)))
	assert.Equal(t, 5, stockOf(t, products, "1"))
}

func TestApplySkipsUnknownProducts(t *testing.T) {
	svc, products := setup(t)

	err := svc.Apply(context.Background(), []Movement{{ProductID: "missing", Qty: -1}, {ProductID: "2", Qty: -3}})
	require.NoError(t, err)
	// no floor: overselling drives stock negative
	assert.Equal(t, -2, stockOf(t, products, "2"))
}

func TestApplyPropagatesStorageErrors(t *testing.T) {
	svc, products := setup(t)
	products.Err = errors.New("boom")

	err := svc.Apply(context.Background(), []Movement{{ProductID: "1", Qty: 1}})
	assert.Error(t, err)
}

func TestLowStock(t *testing.T) {
	got := LowStock([]shop.Product{
		{ID: "a", Stock: 4},
		{ID: "b", Stock: 10},
		{ID: "c", Stock: 0},
		{ID: "d", Stock: 5},
	}, LowStockThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}
