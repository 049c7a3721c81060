// ABOUTME: Tests for the order composer
// ABOUTME: Verifies stock rules, exact totals and submission outcomes

package order

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/client/clienttest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cola  = client.Product{ID: "p1", Name: "Cola", Price: 1.10, Stock: 3}
	chips = client.Product{ID: "p2", Name: "Chips", Price: 2.25, Stock: 10}
	gum   = client.Product{ID: "p3", Name: "Gum", Price: 0.35, Stock: 0}
)

func TestAdd_RespectsStock(t *testing.T) {
	c := New()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(cola))
	}

	err := c.Add(cola)
	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, LimitReached, stockErr.Kind)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 3, c.Quantity("p1"))
	assert.Equal(t, 1, c.Len())
}

func TestAdd_NeverExceedsStock(t *testing.T) {
	for stock := 1; stock <= 6; stock++ {
		p := client.Product{ID: "p", Name: "P", Price: 1, Stock: stock}
		c := New()
		for i := 0; i < stock*2; i++ {
			before := c.Quantity("p")
			err := c.Add(p)
			if before == stock {
				assert.Error(t, err)
				assert.Equal(t, before, c.Quantity("p"))
			}
			assert.LessOrEqual(t, c.Quantity("p"), stock)
		}
		assert.Equal(t, stock, c.Quantity("p"))
	}
}

func TestAdd_ChecksLatestStock(t *testing.T) {
	c := New()
	fresh := client.Product{ID: "p1", Name: "Cola", Price: 1.10, Stock: 5}
	require.NoError(t, c.Add(fresh))
	require.NoError(t, c.Add(fresh))

	reloaded := fresh
	reloaded.Stock = 2
	err := c.Add(reloaded)
	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, LimitReached, stockErr.Kind)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, c.Quantity("p1"))

	assert.Error(t, c.SetQuantity("p1", 3), "the refreshed stock also bounds later edits")
}

func TestAdd_OutOfStockIsNoop(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.Add(gum), ErrOutOfStock)
	assert.Zero(t, c.Len())
}

func TestSetQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))

	tests := []struct {
		name      string
		q         int
		wantErr   error
		wantStock bool
		want      int
	}{
		{"zero", 0, ErrInvalidQuantity, false, 1},
		{"negative", -2, ErrInvalidQuantity, false, 1},
		{"within stock", 3, nil, false, 3},
		{"above stock", 4, nil, true, 3},
		{"back down", 2, nil, false, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.SetQuantity("p1", tc.q)
			switch {
			case tc.wantStock:
				var stockErr *StockError
				require.True(t, errors.As(err, &stockErr))
				assert.Equal(t, Insufficient, stockErr.Kind)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, c.Quantity("p1"))
		})
	}

	assert.ErrorIs(t, c.SetQuantity("missing", 1), ErrNoLine)
}

func TestSetQuantity_UsesSnapshotStock(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))

	// the bound is the stock captured by Add, even if the catalog restocks
	err := c.SetQuantity("p1", cola.Stock+1)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Quantity("p1"))
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.Add(chips))

	c.Remove("p1")
	c.Remove("missing")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "p2", c.Lines()[0].Product.ID)

	c.Clear()
	items, amount := c.Totals()
	assert.Zero(t, items)
	assert.True(t, amount.IsZero())
}

func TestTotals(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.Add(chips))
	require.NoError(t, c.SetQuantity("p2", 3))

	items, amount := c.Totals()
	assert.Equal(t, 5, items)
	// 2*1.10 + 3*2.25 without float drift
	assert.Equal(t, "8.95", amount.String())
}

func TestTotals_PermutationInvariant(t *testing.T) {
	products := []client.Product{
		cola,
		chips,
		{ID: "p4", Name: "Water", Price: 0.99, Stock: 8},
		{ID: "p5", Name: "Bread", Price: 3.333, Stock: 4},
	}
	quantities := map[string]int{"p1": 2, "p2": 7, "p4": 1, "p5": 4}

	build := func(order []client.Product) (int, decimal.Decimal) {
		c := New()
		for _, p := range order {
			require.NoError(t, c.Add(p))
			require.NoError(t, c.SetQuantity(p.ID, quantities[p.ID]))
		}
		return c.Totals()
	}

	wantItems, wantAmount := build(products)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]client.Product(nil), products...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		items, amount := build(shuffled)
		assert.Equal(t, wantItems, items)
		assert.True(t, wantAmount.Equal(amount), "%s != %s", wantAmount, amount)
	}
}

func TestLines_IsACopy(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.Quantity("p1"))
}

func TestClone_IsIndependent(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	clone := c.Clone()
	require.NoError(t, clone.Add(cola))
	clone.Remove("p1")

	assert.Equal(t, 1, c.Quantity("p1"))
	assert.Zero(t, clone.Len())
}

func TestSettle(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.Add(chips))
	sold := c.Lines()

	require.NoError(t, c.Add(cola))
	c.Settle(sold)

	require.Equal(t, 1, c.Len())
	line := c.Lines()[0]
	assert.Equal(t, "p1", line.Product.ID)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, cola.Stock-1, line.Product.Stock)
}

func TestRefreshProducts(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(chips))
	require.NoError(t, c.Add(chips))

	low := chips
	low.Stock = 1
	c.RefreshProducts([]Line{{Product: low, Quantity: 9}, {Product: cola, Quantity: 1}})

	assert.Equal(t, 2, c.Quantity("p2"))
	assert.Equal(t, 1, c.Lines()[0].Product.Stock)
	assert.Zero(t, c.Quantity("p1"))
}

func TestPayload(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(chips))
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.SetQuantity("p2", 4))

	assert.Equal(t, client.SalePayload{Details: []client.SaleDetailPayload{
		{Product: "p2", AmountSold: 4},
		{Product: "p1", AmountSold: 1},
	}}, c.Payload())
}

func TestRevalidate(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.SetQuantity("p1", 3))
	require.NoError(t, c.Add(chips))

	live := []client.Product{{ID: "p1", Name: "Cola", Price: 1.10, Stock: 1}, chips}
	err := c.Revalidate(live)

	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, Changed, stockErr.Kind)
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, c.Quantity("p1"), "quantities are never changed")
	assert.Equal(t, 1, c.Lines()[0].Product.Stock, "snapshot is refreshed")

	err = c.Revalidate([]client.Product{chips})
	require.Error(t, err, "missing product counts as out of stock")
}

type fakeSales struct {
	calls int
	err   error
}

func (f *fakeSales) CreateSale(ctx context.Context, p client.SalePayload) (*client.Sale, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &client.Sale{ID: "s1"}, nil
}

type fakeCatalog struct {
	products []client.Product
	err      error
}

func (f fakeCatalog) ListProducts(ctx context.Context) ([]client.Product, error) {
	return f.products, f.err
}

func TestSubmit_EmptyOrderMakesNoCall(t *testing.T) {
	sales := &fakeSales{}
	_, err := New().Submit(context.Background(), sales, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Zero(t, sales.calls)
}

func TestSubmit_SuccessClears(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	sales := &fakeSales{}

	sale, err := c.Submit(context.Background(), sales, fakeCatalog{products: []client.Product{cola}})
	require.NoError(t, err)
	assert.Equal(t, "s1", sale.ID)
	assert.Zero(t, c.Len())
}

func TestSubmit_FailureKeepsOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	sales := &fakeSales{err: &client.Error{Op: "create sale", Status: 400, Message: "Stock insuficiente para Cola"}}

	_, err := c.Submit(context.Background(), sales, nil)
	require.Error(t, err)
	assert.Equal(t, "Stock insuficiente para Cola", err.Error())
	assert.Equal(t, 1, c.Len())
}

func TestSubmit_StaleStockBlocksSubmission(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	require.NoError(t, c.Add(cola))
	sales := &fakeSales{}

	live := cola
	live.Stock = 1
	_, err := c.Submit(context.Background(), sales, fakeCatalog{products: []client.Product{live}})

	var stockErr *StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Zero(t, sales.calls)
	assert.Equal(t, 2, c.Quantity("p1"))
}

func TestSubmit_CatalogFailureDefersToServer(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(cola))
	sales := &fakeSales{}

	_, err := c.Submit(context.Background(), sales, fakeCatalog{err: errors.New("catalog down")})
	require.NoError(t, err)
	assert.Equal(t, 1, sales.calls)
}

func TestSubmit_AgainstBackend(t *testing.T) {
	backend := clienttest.New(t)
	token := backend.AddAccount(clienttest.Account{Name: "Ana", Email: "ana@store.test", Role: "empleado"})
	p := backend.AddProduct(clienttest.Product{Name: "Cola", Price: 1.5, Stock: 4})

	api := client.New(backend.URL(), client.WithTokenSource(staticToken(token)))
	products, err := api.ListProducts(context.Background())
	require.NoError(t, err)

	c := New()
	require.NoError(t, c.Add(products[0]))
	require.NoError(t, c.SetQuantity(p.ID, 3))

	// another register sells two units meanwhile
	backend.SetStock(p.ID, 2)
	_, err = c.Submit(context.Background(), api, api)
	require.Error(t, err)
	assert.Zero(t, backend.Hits("POST /api/sales"))

	require.NoError(t, c.SetQuantity(p.ID, 2))
	sale, err := c.Submit(context.Background(), api, api)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, sale.Total, 0.001)
	assert.Zero(t, backend.Stock(p.ID))
	assert.Zero(t, c.Len())
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
