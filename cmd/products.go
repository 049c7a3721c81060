// ABOUTME: Catalog commands for the storefront CLI
// ABOUTME: List, search, create, update and delete products

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/guard"
	"github.com/spf13/cobra"
)

var (
	productName     string
	productCategory string
	productPrice    float64
	productStock    int
	productYes      bool
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runProductsList)
	},
}

var productsSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search products by name",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		execute(func(ctx context.Context, w io.Writer) int {
			return runProductsSearch(ctx, w, query)
		})
	},
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product to the catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runProductsCreate)
	},
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a product; only the given flags are sent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		u := productUpdateFromFlags(cmd)
		execute(func(ctx context.Context, w io.Writer) int {
			return runProductsUpdate(ctx, w, args[0], u)
		})
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a product from the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runProductsDelete(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsSearchCmd, productsCreateCmd, productsUpdateCmd, productsDeleteCmd)

	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		c.Flags().StringVar(&productName, "name", "", "Product name")
		c.Flags().StringVar(&productCategory, "category", "", "Category id")
		c.Flags().Float64Var(&productPrice, "price", 0, "Unit price")
		c.Flags().IntVar(&productStock, "stock", 0, "Units in stock")
	}
	productsDeleteCmd.Flags().BoolVarP(&productYes, "yes", "y", false, "Do not ask for confirmation")
}

func runProductsList(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Products); err != nil {
		return fail(w, err)
	}
	products, err := current.api.ListProducts(ctx)
	if err != nil {
		return fail(w, err)
	}
	printProducts(ctx, w, products)
	return 0
}

func runProductsSearch(ctx context.Context, w io.Writer, query string) int {
	if err := authorize(guard.Products); err != nil {
		return fail(w, err)
	}
	products, err := current.api.SearchProducts(ctx, query)
	if err != nil {
		return fail(w, err)
	}
	printProducts(ctx, w, products)
	return 0
}

func printProducts(ctx context.Context, w io.Writer, products []client.Product) {
	if IsJSONOutput() {
		if products == nil {
			products = []client.Product{}
		}
		printJSON(w, products)
		return
	}
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}

	names := current.api.CategoryNames(ctx)
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		category := names[p.CategoryID]
		if category == "" {
			category = "-"
		}
		rows = append(rows, []string{
			p.ID,
			p.Name,
			category,
			format.MoneyFloat(p.Price),
			strconv.Itoa(p.Stock),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "NAME", "CATEGORY", "PRICE", "STOCK"}, rows))
	fmt.Fprintf(w, "\n%s products\n", format.Count(len(products)))
}

// validateProduct checks the values a product may take
func validateProduct(name string, price float64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("--name is required")
	}
	if price < 0 {
		return errors.New("--price must not be negative")
	}
	if stock < 0 {
		return errors.New("--stock must not be negative")
	}
	return nil
}

func runProductsCreate(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Products); err != nil {
		return fail(w, err)
	}
	if err := validateProduct(productName, productPrice, productStock); err != nil {
		return fail(w, err)
	}

	p, err := current.api.CreateProduct(ctx, client.ProductPayload{
		CategoryID: productCategory,
		Name:       strings.TrimSpace(productName),
		Price:      productPrice,
		Stock:      productStock,
	})
	if err != nil {
		return fail(w, err)
	}
	printProduct(w, "Created", p)
	return 0
}

// productUpdateFromFlags sends only the flags given on the command line
func productUpdateFromFlags(cmd *cobra.Command) client.ProductUpdate {
	var u client.ProductUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		name := strings.TrimSpace(productName)
		u.Name = &name
	}
	if flags.Changed("category") {
		category := productCategory
		u.CategoryID = &category
	}
	if flags.Changed("price") {
		price := productPrice
		u.Price = &price
	}
	if flags.Changed("stock") {
		stock := productStock
		u.Stock = &stock
	}
	return u
}

func runProductsUpdate(ctx context.Context, w io.Writer, id string, u client.ProductUpdate) int {
	if err := authorize(guard.Products); err != nil {
		return fail(w, err)
	}
	if u == (client.ProductUpdate{}) {
		return fail(w, errors.New("nothing to update, pass at least one of --name, --category, --price, --stock"))
	}
	if u.Name != nil && *u.Name == "" {
		return fail(w, errors.New("--name must not be empty"))
	}
	if u.Price != nil && *u.Price < 0 {
		return fail(w, errors.New("--price must not be negative"))
	}
	if u.Stock != nil && *u.Stock < 0 {
		return fail(w, errors.New("--stock must not be negative"))
	}

	p, err := current.api.UpdateProduct(ctx, id, u)
	if err != nil {
		return fail(w, err)
	}
	printProduct(w, "Updated", p)
	return 0
}

func printProduct(w io.Writer, verb string, p *client.Product) {
	if IsJSONOutput() {
		printJSON(w, p)
		return
	}
	fmt.Fprintf(w, "✓ %s %s (%s) · %s · %s in stock\n", verb, p.Name, p.ID, format.MoneyFloat(p.Price), format.Units(p.Stock))
}

func runProductsDelete(ctx context.Context, w io.Writer, id string) int {
	if err := authorize(guard.Products); err != nil {
		return fail(w, err)
	}
	ok, err := confirmed(productYes, fmt.Sprintf("Delete product %s?", id))
	if err != nil {
		return fail(w, err)
	}
	if !ok {
		fmt.Fprintln(w, "Cancelled")
		return 0
	}

	if err := current.api.DeleteProduct(ctx, id); err != nil {
		return fail(w, err)
	}
	printDeleted(w, "product", id)
	return 0
}

func printDeleted(w io.Writer, kind, id string) {
	if IsJSONOutput() {
		printJSON(w, map[string]interface{}{"deleted": id, "kind": kind})
		return
	}
	fmt.Fprintf(w, "✓ Deleted %s %s\n", kind, id)
}
