// ABOUTME: User service calls: administer accounts and edit the own profile
// ABOUTME: Profile password confirmation is checked before any request is sent

package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns every account
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	const op = "list users"
	resp, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/api/users"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError(resp, op, "failed to load users")
	}

	var users []User
	if err := decodeJSON(resp, op, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type userEnvelope struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// UpdateUser edits another account
func (c *Client) UpdateUser(ctx context.Context, id string, u UserUpdate) (*User, error) {
	return c.writeUser(ctx, "update user", "/api/users/"+url.PathEscape(id), u, "failed to update user")
}

// UpdateProfile edits the logged-in account. The caller is expected to end
// the session afterwards.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (*User, error) {
	const op = "update profile"
	if err := p.Validate(); err != nil {
		return nil, &Error{Op: op, Message: err.Error(), Err: err}
	}
	return c.writeUser(ctx, op, "/api/users/profile", p, "failed to update profile")
}

func (c *Client) writeUser(ctx context.Context, op, path string, body interface{}, fallback string) (*User, error) {
	resp, err := c.do(ctx, call{op: op, method: http.MethodPut, path: path, body: body})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, serverError(resp, op, fallback)
	}

	var env userEnvelope
	if err := decodeJSON(resp, op, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		// the profile endpoint may answer with only a message
		return &User{}, nil
	}
	return env.User, nil
}

// DeleteUser removes an account
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	const op = "delete user"
	resp, err := c.do(ctx, call{op: op, method: http.MethodDelete, path: "/api/users/" + url.PathEscape(id)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError(resp, op, "failed to delete user")
	}
	return nil
}
