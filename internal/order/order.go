// ABOUTME: In-progress sale composition with stock-aware quantity rules
// ABOUTME: Lines are keyed by product id; totals are an exact decimal fold

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/storefront/internal/client"
	"github.com/shopspring/decimal"
)

var (
	// ErrOutOfStock is returned by Add for a product with no stock. The
	// order is unchanged and callers usually ignore it.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrInvalidQuantity is returned by SetQuantity for quantities below 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNoLine is returned by SetQuantity for a product not in the order
	ErrNoLine = errors.New("product is not in the order")
	// ErrEmptyOrder is returned by Submit when there is nothing to sell
	ErrEmptyOrder = errors.New("the order is empty")
)

// StockKind says which stock rule rejected a change
type StockKind int

const (
	// LimitReached: adding one more unit would exceed the stock
	LimitReached StockKind = iota
	// Insufficient: the requested quantity exceeds the stock
	Insufficient
	// Changed: live stock dropped below the ordered quantity
	Changed
)

// StockError is a stock warning. The order is unchanged by the rejected call.
type StockError struct {
	Kind      StockKind
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	switch e.Kind {
	case LimitReached:
		return fmt.Sprintf("only %d units of %s in stock", e.Available, e.Name)
	case Changed:
		return fmt.Sprintf("stock of %s changed: %d available, %d in the order", e.Name, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for %s: %d available", e.Name, e.Available)
}

// Line is one product position. Product is the snapshot taken when the
// line was added; its Stock bounds Quantity.
type Line struct {
	Product  client.Product
	Quantity int
}

// Subtotal is quantity times unit price
func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Composer holds the lines of one in-progress sale. It is not safe for
// concurrent use; its owner serializes mutations.
type Composer struct {
	lines []Line
}

// New returns an empty order
func New() *Composer {
	return &Composer{}
}

func (c *Composer) index(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the order, adding a line if needed. The limit
// is the stock carried by p, not the stock seen when the line was created.
func (c *Composer) Add(p client.Product) error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	i := c.index(p.ID)
	if i < 0 {
		c.lines = append(c.lines, Line{Product: p, Quantity: 1})
		return nil
	}
	// p is the newest view of the product, so its stock replaces the snapshot
	l := &c.lines[i]
	l.Product = p
	if l.Quantity+1 > p.Stock {
		return &StockError{Kind: LimitReached, ProductID: p.ID, Name: p.Name, Requested: l.Quantity + 1, Available: p.Stock}
	}
	l.Quantity++
	return nil
}

// SetQuantity replaces a line's quantity, bounded by the stock captured on
// the line.
func (c *Composer) SetQuantity(productID string, q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	i := c.index(productID)
	if i < 0 {
		return ErrNoLine
	}
	l := &c.lines[i]
	if q > l.Product.Stock {
		return &StockError{Kind: Insufficient, ProductID: productID, Name: l.Product.Name, Requested: q, Available: l.Product.Stock}
	}
	l.Quantity = q
	return nil
}

// Remove deletes the product's line if present
func (c *Composer) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the order
func (c *Composer) Clear() {
	c.lines = nil
}

// Len is the number of lines
func (c *Composer) Len() int {
	return len(c.lines)
}

// Clone returns an independent copy of the order. The TUI submits a clone
// off the event loop so the live order stays editable.
func (c *Composer) Clone() *Composer {
	return &Composer{lines: c.Lines()}
}

// Settle takes recorded quantities off the order after a sale. Units added
// while the sale was in flight stay, with their stock reduced by what sold.
func (c *Composer) Settle(sold []Line) {
	for _, s := range sold {
		i := c.index(s.Product.ID)
		if i < 0 {
			continue
		}
		l := &c.lines[i]
		l.Quantity -= s.Quantity
		l.Product.Stock -= s.Quantity
		if l.Quantity <= 0 {
			c.Remove(s.Product.ID)
		}
	}
}

// RefreshProducts replaces the product snapshot of every matching line.
// Quantities are unchanged.
func (c *Composer) RefreshProducts(from []Line) {
	for _, f := range from {
		if i := c.index(f.Product.ID); i >= 0 {
			c.lines[i].Product = f.Product
		}
	}
}

// Lines returns a copy of the lines in insertion order
func (c *Composer) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Quantity returns the ordered quantity of a product, 0 if absent
func (c *Composer) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Totals returns the item count and amount of the current lines
func (c *Composer) Totals() (items int, amount decimal.Decimal) {
	amount = decimal.Zero
	for _, l := range c.lines {
		items += l.Quantity
		amount = amount.Add(l.Subtotal())
	}
	return items, amount
}

// Payload converts the lines to a sale creation request
func (c *Composer) Payload() client.SalePayload {
	details := make([]client.SaleDetailPayload, 0, len(c.lines))
	for _, l := range c.lines {
		details = append(details, client.SaleDetailPayload{Product: l.Product.ID, AmountSold: l.Quantity})
	}
	return client.SalePayload{Details: details}
}

// Revalidate refreshes each line's stock snapshot from the live catalog.
// Quantities are never changed. A product missing from the catalog counts
// as out of stock. It returns the first line whose quantity now exceeds
// its stock.
func (c *Composer) Revalidate(live []client.Product) error {
	stock := make(map[string]client.Product, len(live))
	for _, p := range live {
		stock[p.ID] = p
	}

	var first error
	for i := range c.lines {
		l := &c.lines[i]
		l.Product.Stock = 0
		if p, ok := stock[l.Product.ID]; ok {
			l.Product.Stock = p.Stock
		}
		if l.Quantity > l.Product.Stock && first == nil {
			first = &StockError{Kind: Changed, ProductID: l.Product.ID, Name: l.Product.Name, Requested: l.Quantity, Available: l.Product.Stock}
		}
	}
	return first
}

// SalesService records sales
type SalesService interface {
	CreateSale(ctx context.Context, p client.SalePayload) (*client.Sale, error)
}

// Catalog lists the live catalog
type Catalog interface {
	ListProducts(ctx context.Context) ([]client.Product, error)
}

// Submit records the order. With a catalog, stock is checked against live
// values first; if that lookup fails the server decides. On success the
// order is cleared; on failure it is left intact for a retry.
func (c *Composer) Submit(ctx context.Context, sales SalesService, catalog Catalog) (*client.Sale, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyOrder
	}

	if catalog != nil {
		live, err := catalog.ListProducts(ctx)
		if err != nil {
			slog.Warn("Could not revalidate stock before submitting", "error", err)
		} else if err := c.Revalidate(live); err != nil {
			return nil, err
		}
	}

	items, amount := c.Totals()
	sale, err := sales.CreateSale(ctx, c.Payload())
	if err != nil {
		slog.Warn("Sale submission failed", "lines", c.Len(), "items", items, "error", err)
		return nil, err
	}
	slog.Info("Order submitted", "lines", c.Len(), "items", items, "amount", amount.StringFixed(2))
	c.Clear()
	return sale, nil
}
