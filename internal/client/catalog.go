// ABOUTME: Catalog service calls: list, search and manage products
// ABOUTME: Search normalizes single-object and 404 responses to slices

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"
)

// ListProducts returns the whole catalog
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	const op = "list products"
	resp, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/api/products"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, "failed to load products")
	}

	var products []Product
	if err := decodeJSON(resp, op, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProducts finds products by name. A blank name lists the whole
// catalog and a 404 means no matches. Identical searches in flight at the
// same time for the same session share one request, which runs to
// completion even if the caller that started it gives up.
func (c *Client) SearchProducts(ctx context.Context, name string) ([]Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.ListProducts(ctx)
	}

	key := name
	if c.tokens != nil {
		key = c.tokens.Token() + "\x00" + name
	}
	detached := context.WithoutCancel(ctx)
	ch := c.searches.DoChan(key, func() (interface{}, error) {
		return c.searchProducts(detached, name)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, c.handleRequestError(ctx, "search products", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	products := res.Val.([]Product)
	if res.Shared {
		// callers may mutate their result
		products = append([]Product(nil), products...)
	}
	return products, nil
}

func (c *Client) searchProducts(ctx context.Context, name string) ([]Product, error) {
	const op = "search products"
	resp, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/api/products/search",
		query:  url.Values{"name": {name}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []Product{}, nil
	}
	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, "product search failed")
	}

	data, err := readBody(resp, op)
	if err != nil {
		return nil, err
	}
	return decodeProducts(op, data)
}

// decodeProducts accepts an array of products or a single product object.
func decodeProducts(op string, data []byte) ([]Product, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Op: op, Reason: "empty body"}
	}
	switch data[0] {
	case '[':
		var products []Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, &DecodeError{Op: op, Reason: "invalid product list", Err: err}
		}
		return products, nil
	case '{':
		var p Product
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, &DecodeError{Op: op, Reason: "invalid product", Err: err}
		}
		return []Product{p}, nil
	}
	return nil, &DecodeError{Op: op, Reason: "expected product or product list"}
}

type productEnvelope struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

// CreateProduct adds a product to the catalog
func (c *Client) CreateProduct(ctx context.Context, p ProductPayload) (*Product, error) {
	return c.writeProduct(ctx, "create product", http.MethodPost, "/api/products", p, "failed to create product")
}

// UpdateProduct applies a partial update
func (c *Client) UpdateProduct(ctx context.Context, id string, u ProductUpdate) (*Product, error) {
	return c.writeProduct(ctx, "update product", http.MethodPut, "/api/products/"+url.PathEscape(id), u, "failed to update product")
}

func (c *Client) writeProduct(ctx context.Context, op, method, path string, body interface{}, fallback string) (*Product, error) {
	resp, err := c.do(ctx, call{op: op, method: method, path: path, body: body})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, fallback)
	}

	var env productEnvelope
	if err := decodeJSON(resp, op, &env); err != nil {
		return nil, err
	}
	if env.Product == nil {
		return nil, &DecodeError{Op: op, Reason: "missing product"}
	}
	return env.Product, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	const op = "delete product"
	resp, err := c.do(ctx, call{op: op, method: http.MethodDelete, path: "/api/products/" + url.PathEscape(id)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError(resp, op, "failed to delete product")
	}
	return nil
}
