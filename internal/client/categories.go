// ABOUTME: Category service calls and the cached id-to-name lookup
// ABOUTME: CategoryNames never fails so pickers and tables degrade to ids

package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

const categoryNamesKey = "category-names"

// ListCategories returns every category
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	const op = "list categories"
	resp, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/api/categories"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, "failed to load categories")
	}

	var categories []Category
	if err := decodeJSON(resp, op, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type categoryEnvelope struct {
	Message  string    `json:"message"`
	Category *Category `json:"category"`
}

// CreateCategory adds a category
func (c *Client) CreateCategory(ctx context.Context, p CategoryPayload) (*Category, error) {
	return c.writeCategory(ctx, "create category", http.MethodPost, "/api/categories", p, "failed to create category")
}

// UpdateCategory replaces a category's name and description
func (c *Client) UpdateCategory(ctx context.Context, id string, p CategoryPayload) (*Category, error) {
	return c.writeCategory(ctx, "update category", http.MethodPut, "/api/categories/"+url.PathEscape(id), p, "failed to update category")
}

func (c *Client) writeCategory(ctx context.Context, op, method, path string, body interface{}, fallback string) (*Category, error) {
	resp, err := c.do(ctx, call{op: op, method: method, path: path, body: body})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, fallback)
	}

	var env categoryEnvelope
	if err := decodeJSON(resp, op, &env); err != nil {
		return nil, err
	}
	if env.Category == nil {
		return nil, &DecodeError{Op: op, Reason: "missing category"}
	}
	c.invalidateCategories()
	return env.Category, nil
}

// DeleteCategory removes a category
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	const op = "delete category"
	resp, err := c.do(ctx, call{op: op, method: http.MethodDelete, path: "/api/categories/" + url.PathEscape(id)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError(resp, op, "failed to delete category")
	}
	c.invalidateCategories()
	return nil
}

// CategoryNames maps category ids to names. Failures are logged and yield
// an empty map.
func (c *Client) CategoryNames(ctx context.Context) map[string]string {
	load := func() (map[string]string, error) {
		categories, err := c.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(categories))
		for _, cat := range categories {
			names[cat.ID] = cat.Name
		}
		return names, nil
	}

	var (
		names map[string]string
		err   error
	)
	if c.categories != nil {
		names, err = c.categories.Fetch(categoryNamesKey, load)
	} else {
		names, err = load()
	}
	if err != nil {
		slog.Warn("Failed to load category names", "error", err)
		return map[string]string{}
	}
	return names
}

func (c *Client) invalidateCategories() {
	if c.categories != nil {
		c.categories.Clear(categoryNamesKey)
	}
}
