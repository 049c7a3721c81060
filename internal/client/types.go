// ABOUTME: Data types for backend API requests and responses
// ABOUTME: Mirrors the JSON shapes of the store management backend

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is a user's authorization level
type Role string

const (
	RoleEmployee Role = "empleado"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts the backend's values in any capitalization, plus the
// English spelling of the employee role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empleado", "employee":
		return RoleEmployee, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Label is the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleEmployee:
		return "Employee"
	}
	return "Unknown"
}

// UnmarshalJSON normalizes case. Unknown values decode as-is so callers can
// reject them with Valid.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, err := ParseRole(s); err == nil {
		*r = parsed
		return nil
	}
	*r = Role(s)
	return nil
}

// User is an account as returned by the auth and user endpoints
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginRequest carries credentials; the role comes from the backend
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// Product is a catalog entry
type Product struct {
	ID         string  `json:"_id"`
	CategoryID string  `json:"id_category"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
}

// ProductPayload creates a product
type ProductPayload struct {
	CategoryID string  `json:"id_category"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
}

// ProductUpdate is a partial update; nil fields are left untouched
type ProductUpdate struct {
	CategoryID *string  `json:"id_category,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Stock      *int     `json:"stock,omitempty"`
}

// Category groups products
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryPayload creates or updates a category
type CategoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SaleDetail is one product line of a recorded sale
type SaleDetail struct {
	Product    string  `json:"product"`
	Name       string  `json:"name"`
	AmountSold int     `json:"amountSold"`
	Subtotal   float64 `json:"subtotal"`
}

// SaleUser is the seller of a sale. The backend sends either the user id or
// the populated user object.
type SaleUser struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// DisplayName returns the seller's name, or the id when not populated.
func (u SaleUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

func (u *SaleUser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = SaleUser{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*u = SaleUser{ID: id}
		return nil
	}
	var obj User
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*u = SaleUser{ID: obj.ID, Name: obj.Name, Email: obj.Email, Role: obj.Role}
	return nil
}

func (u SaleUser) MarshalJSON() ([]byte, error) {
	if u.Name == "" && u.Email == "" {
		return json.Marshal(u.ID)
	}
	return json.Marshal(User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
}

// Sale is a recorded sale
type Sale struct {
	ID     string       `json:"_id"`
	Date   time.Time    `json:"date"`
	User   SaleUser     `json:"user"`
	Detail []SaleDetail `json:"detail"`
	Total  float64      `json:"total"`
}

// SaleDetailPayload is one line of a sale to create
type SaleDetailPayload struct {
	Product    string `json:"product"`
	AmountSold int    `json:"amountSold"`
}

// SalePayload is the body of a sale creation request
type SalePayload struct {
	Details []SaleDetailPayload `json:"details"`
}

// DateLayout is the backend's format for date-range query parameters
const DateLayout = "2006-01-02"

// SalesFilter selects a page of sales within a date range. Empty dates are
// omitted from the query.
type SalesFilter struct {
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// Validate checks date formats and that the range is not inverted.
func (f SalesFilter) Validate() error {
	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = time.Parse(DateLayout, f.StartDate); err != nil {
			return fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", f.StartDate)
		}
	}
	if f.EndDate != "" {
		if end, err = time.Parse(DateLayout, f.EndDate); err != nil {
			return fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", f.EndDate)
		}
	}
	if f.StartDate != "" && f.EndDate != "" && start.After(end) {
		return fmt.Errorf("start date %s is after end date %s", f.StartDate, f.EndDate)
	}
	if f.Page < 0 || f.Limit < 0 {
		return fmt.Errorf("page and limit must not be negative")
	}
	return nil
}

// SalesPage is one page of sales history
type SalesPage struct {
	Sales       []Sale `json:"sales"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

// UserUpdate is an administrator's edit of another account
type UserUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ProfileUpdate edits the logged-in user's own account. Empty passwords are omitted.
type ProfileUpdate struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// Validate rejects a password change whose confirmation does not match.
func (p ProfileUpdate) Validate() error {
	if p.Password != "" && p.Password != p.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}
