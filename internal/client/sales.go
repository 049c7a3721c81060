// ABOUTME: Sales service calls: record a sale, page through history, fetch one sale
// ABOUTME: History responses are validated against the paginated and legacy array schemas

package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNoToken is returned when an operation that requires a session is
// attempted without one.
var ErrNoToken = &Error{Op: "create sale", Message: "no authentication token, please log in again"}

// CreateSale records a sale. It requires a session token and fails locally
// without one.
func (c *Client) CreateSale(ctx context.Context, p SalePayload) (*Sale, error) {
	const op = "create sale"
	if c.tokens == nil || c.tokens.Token() == "" {
		return nil, ErrNoToken
	}

	resp, err := c.do(ctx, call{op: op, method: http.MethodPost, path: "/api/sales", body: p})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, validationError(resp, op, "could not record the sale")
	}

	var env struct {
		Sale *Sale `json:"sale"`
	}
	if err := decodeJSON(resp, op, &env); err != nil {
		return nil, err
	}
	if env.Sale == nil {
		return nil, &DecodeError{Op: op, Reason: "missing sale"}
	}
	slog.Info("Sale recorded", "sale_id", env.Sale.ID, "lines", len(p.Details), "total", env.Sale.Total)
	return env.Sale, nil
}

// ListSales returns one page of sales in the filter's date range
func (c *Client) ListSales(ctx context.Context, f SalesFilter) (*SalesPage, error) {
	const op = "list sales"
	if err := f.Validate(); err != nil {
		return nil, &Error{Op: op, Message: err.Error(), Err: err}
	}

	q := url.Values{}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	resp, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/api/sales", query: q})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, "failed to load sales history")
	}

	data, err := readBody(resp, op)
	if err != nil {
		return nil, err
	}
	return decodeSalesPage(op, data, f)
}

// paginatedSales is the current history schema. Pointers detect missing fields.
type paginatedSales struct {
	Sales       *[]Sale `json:"sales"`
	TotalCount  *int    `json:"totalCount"`
	TotalPages  *int    `json:"totalPages"`
	CurrentPage *int    `json:"currentPage"`
}

// decodeSalesPage accepts the paginated object or the legacy bare array.
// Anything else is a DecodeError.
func decodeSalesPage(op string, data []byte, f SalesFilter) (*SalesPage, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Op: op, Reason: "empty body"}
	}

	switch data[0] {
	case '[':
		var sales []Sale
		if err := json.Unmarshal(data, &sales); err != nil {
			return nil, &DecodeError{Op: op, Reason: "invalid sales list", Err: err}
		}
		return &SalesPage{
			Sales:       sales,
			TotalCount:  len(sales),
			TotalPages:  1,
			CurrentPage: 1,
		}, nil
	case '{':
		var p paginatedSales
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, &DecodeError{Op: op, Reason: "invalid sales page", Err: err}
		}
		if p.Sales == nil || p.TotalCount == nil || p.TotalPages == nil {
			return nil, &DecodeError{Op: op, Reason: "sales page missing sales, totalCount or totalPages"}
		}
		page := &SalesPage{
			Sales:      *p.Sales,
			TotalCount: *p.TotalCount,
			TotalPages: *p.TotalPages,
		}
		if p.CurrentPage != nil {
			page.CurrentPage = *p.CurrentPage
		} else {
			page.CurrentPage = f.Page
		}
		return page, nil
	}
	return nil, &DecodeError{Op: op, Reason: "expected sales page or sales list"}
}

// GetSale fetches one sale. Any failure is reported as not found.
func (c *Client) GetSale(ctx context.Context, id string) (*Sale, bool) {
	const op = "get sale"
	resp, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/api/sales/" + url.PathEscape(id)})
	if err != nil {
		slog.Debug("Sale lookup failed", "sale_id", id, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, false
	}

	var env struct {
		Sale *Sale `json:"sale"`
	}
	if err := decodeJSON(resp, op, &env); err != nil || env.Sale == nil {
		return nil, false
	}
	return env.Sale, true
}
