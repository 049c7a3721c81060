// ABOUTME: Record sources for the products, categories and users screens
// ABOUTME: Each adapts one backend service to the generic list

package records

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/bubbles/table"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/tui/forms"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// ProductAPI is the catalog backend of the products screen
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]client.Product, error)
	ListCategories(ctx context.Context) ([]client.Category, error)
	CreateProduct(ctx context.Context, p client.ProductPayload) (*client.Product, error)
	UpdateProduct(ctx context.Context, id string, u client.ProductUpdate) (*client.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Products lists the catalog with category names and stock badges
type Products struct {
	api      ProductAPI
	lowStock int

	mu         sync.Mutex
	categories []client.Category
}

// NewProducts creates the products source
func NewProducts(api ProductAPI, lowStock int) *Products {
	return &Products{api: api, lowStock: lowStock}
}

func (p *Products) Title() string    { return "Products" }
func (p *Products) Icon() icons.Icon { return icons.Product }

func (p *Products) Columns(width int) []table.Column {
	name := max(16, width-62)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Category", Width: 16},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 12},
		{Title: "Id", Width: 14},
	}
}

// Load fetches products and categories. Missing categories only blank
// the category column.
func (p *Products) Load(ctx context.Context) ([]Record, error) {
	products, err := p.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := p.api.ListCategories(ctx)
	if err != nil {
		categories = nil
	}
	p.mu.Lock()
	p.categories = categories
	p.mu.Unlock()

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	out := make([]Record, 0, len(products))
	for _, pr := range products {
		out = append(out, Record{
			ID:    pr.ID,
			Label: pr.Name,
			Cells: []string{
				pr.Name,
				names[pr.CategoryID],
				format.MoneyFloat(pr.Price),
				stockCell(pr.Stock, p.lowStock),
				pr.ID,
			},
			Value: pr,
		})
	}
	return out, nil
}

func stockCell(stock, low int) string {
	switch widgets.StockLevel(stock, low) {
	case widgets.StatusCritical:
		return "out"
	case widgets.StatusWarning:
		return strconv.Itoa(stock) + " low"
	}
	return strconv.Itoa(stock)
}

func (p *Products) Form(r *Record) *forms.Form {
	p.mu.Lock()
	categories := append([]client.Category(nil), p.categories...)
	p.mu.Unlock()
	if r == nil {
		return forms.NewProduct(nil, categories)
	}
	pr, ok := r.Value.(client.Product)
	if !ok {
		return nil
	}
	return forms.NewProduct(&pr, categories)
}

func (p *Products) Save(ctx context.Context, result any) error {
	res, ok := result.(forms.ProductResult)
	if !ok {
		return fmt.Errorf("unexpected form result %T", result)
	}
	var err error
	if res.ID == "" {
		_, err = p.api.CreateProduct(ctx, res.Payload)
	} else {
		_, err = p.api.UpdateProduct(ctx, res.ID, res.Update())
	}
	return err
}

func (p *Products) Delete(ctx context.Context, id string) error {
	return p.api.DeleteProduct(ctx, id)
}

// CategoryAPI is the backend of the categories screen
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]client.Category, error)
	CreateCategory(ctx context.Context, p client.CategoryPayload) (*client.Category, error)
	UpdateCategory(ctx context.Context, id string, p client.CategoryPayload) (*client.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Categories lists product categories
type Categories struct {
	api CategoryAPI
}

// NewCategories creates the categories source
func NewCategories(api CategoryAPI) *Categories {
	return &Categories{api: api}
}

func (c *Categories) Title() string    { return "Categories" }
func (c *Categories) Icon() icons.Icon { return icons.Category }

func (c *Categories) Columns(width int) []table.Column {
	desc := max(20, width-42)
	return []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Description", Width: desc},
		{Title: "Id", Width: 14},
	}
}

func (c *Categories) Load(ctx context.Context) ([]Record, error) {
	categories, err := c.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(categories))
	for _, cat := range categories {
		out = append(out, Record{
			ID:    cat.ID,
			Label: cat.Name,
			Cells: []string{cat.Name, cat.Description, cat.ID},
			Value: cat,
		})
	}
	return out, nil
}

func (c *Categories) Form(r *Record) *forms.Form {
	if r == nil {
		return forms.NewCategory(nil)
	}
	cat, ok := r.Value.(client.Category)
	if !ok {
		return nil
	}
	return forms.NewCategory(&cat)
}

func (c *Categories) Save(ctx context.Context, result any) error {
	res, ok := result.(forms.CategoryResult)
	if !ok {
		return fmt.Errorf("unexpected form result %T", result)
	}
	var err error
	if res.ID == "" {
		_, err = c.api.CreateCategory(ctx, res.Payload)
	} else {
		_, err = c.api.UpdateCategory(ctx, res.ID, res.Payload)
	}
	return err
}

func (c *Categories) Delete(ctx context.Context, id string) error {
	return c.api.DeleteCategory(ctx, id)
}

// UserAPI is the backend of the users screen
type UserAPI interface {
	ListUsers(ctx context.Context) ([]client.User, error)
	UpdateUser(ctx context.Context, id string, u client.UserUpdate) (*client.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ErrDeleteSelf is returned when an administrator tries to delete their own account
var ErrDeleteSelf = errors.New("you cannot delete your own account")

// Users lists accounts for administrators. Accounts are created by
// registration, so the screen offers no create form.
type Users struct {
	api    UserAPI
	selfID string
}

// NewUsers creates the users source. selfID is the logged-in account.
func NewUsers(api UserAPI, selfID string) *Users {
	return &Users{api: api, selfID: selfID}
}

func (u *Users) Title() string    { return "Users" }
func (u *Users) Icon() icons.Icon { return icons.Admin }

func (u *Users) Columns(width int) []table.Column {
	email := max(20, width-56)
	return []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Email", Width: email},
		{Title: "Role", Width: 10},
		{Title: "Id", Width: 14},
	}
}

func (u *Users) Load(ctx context.Context) ([]Record, error) {
	users, err := u.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(users))
	for _, usr := range users {
		name := usr.Name
		if usr.ID == u.selfID {
			name += " (you)"
		}
		out = append(out, Record{
			ID:    usr.ID,
			Label: usr.Name,
			Cells: []string{name, usr.Email, usr.Role.Label(), usr.ID},
			Value: usr,
		})
	}
	return out, nil
}

func (u *Users) Form(r *Record) *forms.Form {
	if r == nil {
		return nil
	}
	usr, ok := r.Value.(client.User)
	if !ok {
		return nil
	}
	return forms.NewUser(usr)
}

func (u *Users) Save(ctx context.Context, result any) error {
	res, ok := result.(forms.UserResult)
	if !ok {
		return fmt.Errorf("unexpected form result %T", result)
	}
	_, err := u.api.UpdateUser(ctx, res.ID, res.Update)
	return err
}

func (u *Users) CanDelete(r Record) error {
	if r.ID == u.selfID {
		return ErrDeleteSelf
	}
	return nil
}

func (u *Users) Delete(ctx context.Context, id string) error {
	return u.api.DeleteUser(ctx, id)
}
