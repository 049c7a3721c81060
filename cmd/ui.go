// ABOUTME: Interactive command for the storefront CLI
// ABOUTME: Starts the full-screen terminal interface

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/markalston/storefront/internal/tui"
	"github.com/spf13/cobra"
)

var uiLowStock int

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start the interactive interface",
	Long: `Start the interactive interface: dashboard, sale register, sales
history, catalog and account screens. The stored session is reused; without
one the login form opens first.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runUI)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
	uiCmd.Flags().IntVar(&uiLowStock, "low-stock", 5, "Stock level at or below which products are highlighted")
}

func runUI(ctx context.Context, w io.Writer) int {
	slog.Info("Starting interactive interface", "api_url", current.cfg.APIURL)
	err := tui.Run(current.api, current.store, tui.Options{
		LowStock: uiLowStock,
		Recent:   current.recent,
		Expired:  current.expired,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}
