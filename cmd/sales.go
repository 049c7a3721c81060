// ABOUTME: Sales commands for the storefront CLI
// ABOUTME: Record a sale, page through the history and show one sale

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/markalston/storefront/internal/analytics"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/guard"
	"github.com/markalston/storefront/internal/order"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	salesFrom  string
	salesTo    string
	salesPage  int
	salesLimit int
	saleItems  []string
)

var salesCmd = &cobra.Command{
	Use:     "sales",
	Aliases: []string{"sale"},
	Short:   "Record and review sales",
}

var salesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales in a date range",
	Long: `List one page of sales. Without --from and --to the last seven days
are shown.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runSalesList)
	},
}

var salesCreateCmd = &cobra.Command{
	Use:   "create --item <product-id>=<quantity> ...",
	Short: "Record a sale",
	Long: `Record a sale. Each --item names a product id and a quantity; repeated
products are merged. Quantities are checked against the live stock before
the sale is sent.`,
	Example: `  storefront sales create --item p1=2 --item p7=1`,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runSalesCreate)
	},
}

var salesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the lines of one sale",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runSalesShow(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(salesCmd)
	salesCmd.AddCommand(salesListCmd, salesCreateCmd, salesShowCmd)

	salesListCmd.Flags().StringVar(&salesFrom, "from", "", "Start date, YYYY-MM-DD")
	salesListCmd.Flags().StringVar(&salesTo, "to", "", "End date, YYYY-MM-DD")
	salesListCmd.Flags().IntVar(&salesPage, "page", 1, "Page number")
	salesListCmd.Flags().IntVar(&salesLimit, "limit", 10, "Sales per page")

	salesCreateCmd.Flags().StringArrayVar(&saleItems, "item", nil, "Product and quantity as id=qty (repeatable)")
}

// salesFilter builds the filter from flags, defaulting to the last week
func salesFilter() client.SalesFilter {
	f := analytics.LastWeek(now())
	if salesFrom != "" || salesTo != "" {
		f.StartDate, f.EndDate = salesFrom, salesTo
	}
	f.Page, f.Limit = salesPage, salesLimit
	return f
}

func runSalesList(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.SalesHistory); err != nil {
		return fail(w, err)
	}
	f := salesFilter()
	if f.Page < 1 || f.Limit < 1 {
		return fail(w, errors.New("--page and --limit must be at least 1"))
	}
	if err := f.Validate(); err != nil {
		return fail(w, err)
	}

	page, err := current.api.ListSales(ctx, f)
	var decodeErr *client.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		fmt.Fprintf(w, "Warning: %v\n", decodeErr)
		page = &client.SalesPage{Sales: []client.Sale{}, CurrentPage: f.Page}
	case err != nil:
		return fail(w, err)
	}

	if IsJSONOutput() {
		if page.Sales == nil {
			page.Sales = []client.Sale{}
		}
		printJSON(w, page)
		return 0
	}

	fmt.Fprintf(w, "Sales from %s to %s\n\n", f.StartDate, f.EndDate)
	if len(page.Sales) == 0 {
		fmt.Fprintln(w, "No sales in this range")
		return 0
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(page.Sales))
	for _, s := range page.Sales {
		total = total.Add(decimal.NewFromFloat(s.Total))
		rows = append(rows, []string{
			s.ID,
			format.SaleDate(s.Date),
			s.User.DisplayName(),
			strconv.Itoa(itemCount(s)),
			format.MoneyFloat(s.Total),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "DATE", "SELLER", "ITEMS", "TOTAL"}, rows))
	fmt.Fprintf(w, "\nPage %d of %d · %s sales · page total %s\n",
		page.CurrentPage, max(page.TotalPages, 1), format.Count(page.TotalCount), format.Money(total))
	return 0
}

func itemCount(s client.Sale) int {
	n := 0
	for _, d := range s.Detail {
		n += d.AmountSold
	}
	return n
}

// parseItems reads id=qty pairs in command-line order, merging repeats
func parseItems(items []string) ([]string, map[string]int, error) {
	var ids []string
	quantities := make(map[string]int)
	for _, item := range items {
		id, qty, ok := strings.Cut(item, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, nil, fmt.Errorf("invalid --item %q: expected <product-id>=<quantity>", item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("invalid quantity in --item %q: must be a whole number of at least 1", item)
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] += n
	}
	return ids, quantities, nil
}

func runSalesCreate(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.SaleRegister); err != nil {
		return fail(w, err)
	}
	ids, quantities, err := parseItems(saleItems)
	if err != nil {
		return fail(w, err)
	}
	if len(ids) == 0 {
		return fail(w, errors.New("at least one --item is required"))
	}

	products, err := current.api.ListProducts(ctx)
	if err != nil {
		return fail(w, err)
	}
	catalog := make(map[string]client.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	o := order.New()
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			return fail(w, fmt.Errorf("product %s not found", id))
		}
		if err := o.Add(p); err != nil {
			return fail(w, fmt.Errorf("%s: %w", p.Name, err))
		}
		if err := o.SetQuantity(id, quantities[id]); err != nil {
			return fail(w, err)
		}
	}

	// the catalog was read above, so the server is the only stock check left
	items, amount := o.Totals()
	sale, err := o.Submit(ctx, current.api, nil)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, sale)
		return 0
	}
	fmt.Fprintf(w, "✓ Sale recorded: %s · %s · %s\n", sale.ID, format.Units(items), format.Money(amount))
	return 0
}

func runSalesShow(ctx context.Context, w io.Writer, id string) int {
	if err := authorize(guard.SalesHistory); err != nil {
		return fail(w, err)
	}
	sale, ok := current.api.GetSale(ctx, id)
	if !ok {
		return fail(w, fmt.Errorf("sale %s not found", id))
	}

	if IsJSONOutput() {
		printJSON(w, sale)
		return 0
	}

	fmt.Fprintf(w, "Sale:   %s\n", sale.ID)
	fmt.Fprintf(w, "Date:   %s\n", format.SaleDate(sale.Date))
	fmt.Fprintf(w, "Seller: %s\n\n", sale.User.DisplayName())
	rows := make([][]string, 0, len(sale.Detail))
	for _, d := range sale.Detail {
		rows = append(rows, []string{d.Name, strconv.Itoa(d.AmountSold), format.MoneyFloat(d.Subtotal)})
	}
	fmt.Fprintln(w, renderTable([]string{"PRODUCT", "QTY", "SUBTOTAL"}, rows))
	fmt.Fprintf(w, "\nTotal: %s\n", format.MoneyFloat(sale.Total))
	return 0
}
