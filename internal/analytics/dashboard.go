// ABOUTME: Loads the dashboard by fetching recent sales and the catalog concurrently
// ABOUTME: Partial failures become warnings so the home screen always renders

package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/markalston/storefront/internal/client"
	"github.com/sourcegraph/conc/pool"
)

// Source is the backend the dashboard reads from
type Source interface {
	ListSales(ctx context.Context, f client.SalesFilter) (*client.SalesPage, error)
	ListProducts(ctx context.Context) ([]client.Product, error)
}

// pageLimit is the page size used to collect a week of sales
const pageLimit = 100

// maxPages bounds how much history one dashboard load pulls
const maxPages = 20

// Dashboard is everything the home screen shows
type Dashboard struct {
	Range     client.SalesFilter
	KPI       KPI
	Daily     []DayTotal
	Top       []ProductCount
	WeekCount int
	LowStock  []client.Product
	Products  int
	Warnings  []string
	LoadedAt  time.Time
}

// Load fetches the last week of sales and the catalog in parallel. Errors
// from either side are reported in Warnings; the other half still renders.
func Load(ctx context.Context, src Source, now time.Time, lowStockThreshold int) *Dashboard {
	d := &Dashboard{Range: LastWeek(now), LoadedAt: now}

	var (
		mu       sync.Mutex
		sales    []client.Sale
		products []client.Product
	)
	warn := func(what string, err error) {
		slog.Warn("Dashboard data unavailable", "source", what, "error", err)
		mu.Lock()
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s: %v", what, err))
		mu.Unlock()
	}

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		s, err := collectSales(ctx, src, d.Range)
		if err != nil {
			warn("sales", err)
			return nil
		}
		mu.Lock()
		sales = s
		mu.Unlock()
		return nil
	})
	p.Go(func(ctx context.Context) error {
		ps, err := src.ListProducts(ctx)
		if err != nil {
			warn("products", err)
			return nil
		}
		mu.Lock()
		products = ps
		mu.Unlock()
		return nil
	})
	_ = p.Wait()

	d.KPI = KPIs(sales)
	d.Daily = GroupByDate(sales, now.Location())
	d.Top = TopProducts(sales, 5)
	d.WeekCount = CountSince(sales, now.AddDate(0, 0, -7))
	d.LowStock = LowStock(products, lowStockThreshold)
	d.Products = len(products)
	return d
}

// collectSales walks the pages of the range
func collectSales(ctx context.Context, src Source, r client.SalesFilter) ([]client.Sale, error) {
	var all []client.Sale
	for page := 1; page <= maxPages; page++ {
		f := r
		f.Page, f.Limit = page, pageLimit
		res, err := src.ListSales(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Sales...)
		if page >= res.TotalPages || len(res.Sales) == 0 {
			break
		}
	}
	return all, nil
}
