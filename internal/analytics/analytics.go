// ABOUTME: Sales KPIs and chart series for the dashboard
// ABOUTME: Pure folds over recorded sales plus a concurrent dashboard loader

package analytics

import (
	"sort"
	"time"

	"github.com/markalston/storefront/internal/client"
	"github.com/shopspring/decimal"
)

// KPI summarizes a set of sales
type KPI struct {
	TotalRevenue  decimal.Decimal
	Transactions  int
	AverageTicket decimal.Decimal
}

// KPIs computes revenue, transaction count and average ticket. The
// average of no sales is zero.
func KPIs(sales []client.Sale) KPI {
	k := KPI{TotalRevenue: decimal.Zero, AverageTicket: decimal.Zero}
	for _, s := range sales {
		k.TotalRevenue = k.TotalRevenue.Add(decimal.NewFromFloat(s.Total))
	}
	k.Transactions = len(sales)
	if k.Transactions > 0 {
		k.AverageTicket = k.TotalRevenue.Div(decimal.NewFromInt(int64(k.Transactions))).Round(2)
	}
	return k
}

// DayTotal is the revenue of one calendar day
type DayTotal struct {
	Day    time.Time // midnight in the grouping location
	Label  string    // DD/MM
	Amount decimal.Decimal
}

// GroupByDate sums revenue per calendar day in loc, oldest day first.
func GroupByDate(sales []client.Sale, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[time.Time]decimal.Decimal)
	for _, s := range sales {
		d := s.Date.In(loc)
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		byDay[day] = byDay[day].Add(decimal.NewFromFloat(s.Total))
	}

	out := make([]DayTotal, 0, len(byDay))
	for day, amount := range byDay {
		out = append(out, DayTotal{Day: day, Label: day.Format("02/01"), Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// ProductCount is the quantity sold of one product
type ProductCount struct {
	Name     string
	Quantity int
}

// TopProducts returns the n best-selling products by quantity. Ties are
// ordered by name.
func TopProducts(sales []client.Sale, n int) []ProductCount {
	counts := make(map[string]int)
	for _, s := range sales {
		for _, d := range s.Detail {
			counts[d.Name] += d.AmountSold
		}
	}

	out := make([]ProductCount, 0, len(counts))
	for name, q := range counts {
		out = append(out, ProductCount{Name: name, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CountSince counts sales at or after since
func CountSince(sales []client.Sale, since time.Time) int {
	n := 0
	for _, s := range sales {
		if !s.Date.Before(since) {
			n++
		}
	}
	return n
}

// LastWeek is the date range from seven days before now through now, in UTC
func LastWeek(now time.Time) client.SalesFilter {
	now = now.UTC()
	return client.SalesFilter{
		StartDate: now.AddDate(0, 0, -7).Format(client.DateLayout),
		EndDate:   now.Format(client.DateLayout),
	}
}

// LowStock returns products with stock at or below threshold, lowest first
func LowStock(products []client.Product, threshold int) []client.Product {
	var out []client.Product
	for _, p := range products {
		if p.Stock <= threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}
