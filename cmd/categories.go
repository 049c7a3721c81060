// ABOUTME: Category commands for the storefront CLI
// ABOUTME: List, create, update and delete product categories

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/guard"
	"github.com/spf13/cobra"
)

var (
	categoryName        string
	categoryDescription string
	categoryYes         bool
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "Manage product categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCategoriesList)
	},
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a category",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCategoriesCreate)
	},
}

var categoriesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename or describe a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, description := optionalFlag(cmd, "name", categoryName), optionalFlag(cmd, "description", categoryDescription)
		execute(func(ctx context.Context, w io.Writer) int {
			return runCategoriesUpdate(ctx, w, args[0], name, description)
		})
	},
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCategoriesDelete(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.AddCommand(categoriesListCmd, categoriesCreateCmd, categoriesUpdateCmd, categoriesDeleteCmd)

	for _, c := range []*cobra.Command{categoriesCreateCmd, categoriesUpdateCmd} {
		c.Flags().StringVar(&categoryName, "name", "", "Category name")
		c.Flags().StringVar(&categoryDescription, "description", "", "Category description")
	}
	categoriesDeleteCmd.Flags().BoolVarP(&categoryYes, "yes", "y", false, "Do not ask for confirmation")
}

// optionalFlag returns the flag's value, or nil when it was not given
func optionalFlag(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func runCategoriesList(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Categories); err != nil {
		return fail(w, err)
	}
	categories, err := current.api.ListCategories(ctx)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		if categories == nil {
			categories = []client.Category{}
		}
		printJSON(w, categories)
		return 0
	}
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories found")
		return 0
	}
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.ID, c.Name, c.Description})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "NAME", "DESCRIPTION"}, rows))
	return 0
}

func runCategoriesCreate(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Categories); err != nil {
		return fail(w, err)
	}
	name := strings.TrimSpace(categoryName)
	if name == "" {
		return fail(w, errors.New("--name is required"))
	}

	c, err := current.api.CreateCategory(ctx, client.CategoryPayload{Name: name, Description: categoryDescription})
	if err != nil {
		return fail(w, err)
	}
	printCategory(w, "Created", c)
	return 0
}

// runCategoriesUpdate merges the given fields into the stored category;
// the backend replaces both fields on every update.
func runCategoriesUpdate(ctx context.Context, w io.Writer, id string, name, description *string) int {
	if err := authorize(guard.Categories); err != nil {
		return fail(w, err)
	}
	if name == nil && description == nil {
		return fail(w, errors.New("nothing to update, pass --name or --description"))
	}

	categories, err := current.api.ListCategories(ctx)
	if err != nil {
		return fail(w, err)
	}
	var existing *client.Category
	for i := range categories {
		if categories[i].ID == id {
			existing = &categories[i]
			break
		}
	}
	if existing == nil {
		return fail(w, fmt.Errorf("category %s not found", id))
	}

	payload := client.CategoryPayload{Name: existing.Name, Description: existing.Description}
	if name != nil {
		payload.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		payload.Description = *description
	}
	if payload.Name == "" {
		return fail(w, errors.New("--name must not be empty"))
	}

	c, err := current.api.UpdateCategory(ctx, id, payload)
	if err != nil {
		return fail(w, err)
	}
	printCategory(w, "Updated", c)
	return 0
}

func printCategory(w io.Writer, verb string, c *client.Category) {
	if IsJSONOutput() {
		printJSON(w, c)
		return
	}
	fmt.Fprintf(w, "✓ %s category %s (%s)\n", verb, c.Name, c.ID)
}

func runCategoriesDelete(ctx context.Context, w io.Writer, id string) int {
	if err := authorize(guard.Categories); err != nil {
		return fail(w, err)
	}
	ok, err := confirmed(categoryYes, fmt.Sprintf("Delete category %s?", id))
	if err != nil {
		return fail(w, err)
	}
	if !ok {
		fmt.Fprintln(w, "Cancelled")
		return 0
	}

	if err := current.api.DeleteCategory(ctx, id); err != nil {
		return fail(w, err)
	}
	printDeleted(w, "category", id)
	return 0
}
