// ABOUTME: Auth service calls: login and account registration
// ABOUTME: Returns the authenticated user and bearer token issued by the backend

package client

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a user and token
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "login", "/api/auth/login", req, "login failed")
}

// Register creates an account and returns it with a token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "register", "/api/auth/register", req, "registration failed")
}

func (c *Client) authenticate(ctx context.Context, op, path string, body interface{}, fallback string) (*AuthResponse, error) {
	resp, err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: body, credentials: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, serverError(resp, op, fallback)
	}

	var out AuthResponse
	if err := decodeJSON(resp, op, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &DecodeError{Op: op, Reason: "missing token"}
	}
	if out.User.Email == "" && out.User.Name == "" {
		return nil, &DecodeError{Op: op, Reason: "missing user"}
	}
	return &out, nil
}
