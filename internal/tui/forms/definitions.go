// ABOUTME: Form definitions for accounts, catalog records and confirmations
// ABOUTME: Each constructor binds huh fields to the request type it produces

package forms

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/markalston/storefront/internal/client"
	"github.com/shopspring/decimal"
)

// ProductResult is a submitted product form. ID is empty for a new product.
type ProductResult struct {
	ID      string
	Payload client.ProductPayload
}

// Update converts the result into a full update of every field
func (r ProductResult) Update() client.ProductUpdate {
	p := r.Payload
	return client.ProductUpdate{CategoryID: &p.CategoryID, Name: &p.Name, Price: &p.Price, Stock: &p.Stock}
}

// CategoryResult is a submitted category form. ID is empty for a new category.
type CategoryResult struct {
	ID      string
	Payload client.CategoryPayload
}

// UserResult is an administrator's edit of an account
type UserResult struct {
	ID     string
	Update client.UserUpdate
}

// ConfirmResult answers a yes/no question about Target
type ConfirmResult struct {
	Target    string
	Confirmed bool
}

var roleOptions = []huh.Option[client.Role]{
	huh.NewOption("Employee", client.RoleEmployee),
	huh.NewOption("Admin", client.RoleAdmin),
}

// NewLogin asks for credentials
func NewLogin(email string) *Form {
	v := &client.LoginRequest{Email: email}
	return newForm(KindLogin, "Log in", func() any { return *v }, step{"Credentials", func() *huh.Form {
		return huh.NewForm(loginGroup(v).Description("ctrl+n creates a new account")).WithTheme(Theme())
	}})
}

func loginGroup(v *client.LoginRequest) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("you@store.com").
			Value(&v.Email).
			Validate(validateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&v.Password).
			Validate(required("password")),
	).Title("Sign in")
}

// NewRegister collects a new account in two steps
func NewRegister() *Form {
	v := &client.RegisterRequest{Role: client.RoleEmployee}
	var confirm string
	return newForm(KindRegister, "Create account", func() any { return *v },
		step{"Account", func() *huh.Form {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.Name).Validate(required("name")),
				huh.NewInput().Title("Email").Value(&v.Email).Validate(validateEmail),
				huh.NewSelect[client.Role]().Title("Role").Options(roleOptions...).Value(&v.Role),
			).Title("Step 1: Account").
				Description("Who is this account for?")).WithTheme(Theme())
		}},
		step{"Password", func() *huh.Form {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.Password).Validate(validatePassword),
				huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm).
					Validate(func(s string) error { return matches(v.Password, s) }),
			).Title("Step 2: Password")).WithTheme(Theme())
		}},
	)
}

// productFields holds the text values behind the product form
type productFields struct {
	name, price, stock, category string
}

// NewProduct edits existing, or creates a product when existing is nil
func NewProduct(existing *client.Product, categories []client.Category) *Form {
	v := &productFields{stock: "0"}
	id := ""
	title := "New product"
	if existing != nil {
		id = existing.ID
		title = "Edit " + existing.Name
		v.name = existing.Name
		v.price = decimal.NewFromFloat(existing.Price).StringFixed(2)
		v.stock = strconv.Itoa(existing.Stock)
		v.category = existing.CategoryID
	}
	if v.category == "" && len(categories) > 0 {
		v.category = categories[0].ID
	}

	result := func() any {
		price, _ := decimal.NewFromString(strings.TrimSpace(v.price))
		stock, _ := strconv.Atoi(strings.TrimSpace(v.stock))
		f, _ := price.Round(2).Float64()
		return ProductResult{ID: id, Payload: client.ProductPayload{
			CategoryID: v.category,
			Name:       strings.TrimSpace(v.name),
			Price:      f,
			Stock:      stock,
		}}
	}

	return newForm(KindProduct, title, result, step{"Product", func() *huh.Form {
		var category huh.Field
		if len(categories) > 0 {
			opts := make([]huh.Option[string], 0, len(categories))
			for _, c := range categories {
				opts = append(opts, huh.NewOption(c.Name, c.ID))
			}
			category = huh.NewSelect[string]().Title("Category").Options(opts...).Value(&v.category)
		} else {
			category = huh.NewInput().Title("Category id").Value(&v.category).Validate(required("category"))
		}
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&v.name).Validate(required("name")),
			huh.NewInput().Title("Price").Placeholder("e.g., 2.50").Value(&v.price).Validate(validatePrice),
			huh.NewInput().Title("Stock").CharLimit(7).Value(&v.stock).Validate(validateStock),
			category,
		).Title(title)).WithTheme(Theme())
	}})
}

// NewCategory edits existing, or creates a category when existing is nil
func NewCategory(existing *client.Category) *Form {
	r := &CategoryResult{}
	title := "New category"
	if existing != nil {
		r.ID = existing.ID
		r.Payload = client.CategoryPayload{Name: existing.Name, Description: existing.Description}
		title = "Edit " + existing.Name
	}
	return newForm(KindCategory, title, func() any { return *r }, step{"Category", func() *huh.Form {
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&r.Payload.Name).Validate(required("name")),
			huh.NewText().Title("Description").Lines(3).Value(&r.Payload.Description),
		).Title(title)).WithTheme(Theme())
	}})
}

// NewUser lets an administrator edit another account
func NewUser(u client.User) *Form {
	r := &UserResult{ID: u.ID, Update: client.UserUpdate{Name: u.Name, Email: u.Email, Role: u.Role}}
	if !r.Update.Role.Valid() {
		r.Update.Role = client.RoleEmployee
	}
	title := "Edit " + u.Name
	return newForm(KindUser, title, func() any { return *r }, step{"User", func() *huh.Form {
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&r.Update.Name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(&r.Update.Email).Validate(validateEmail),
			huh.NewSelect[client.Role]().Title("Role").Options(roleOptions...).Value(&r.Update.Role),
		).Title(title)).WithTheme(Theme())
	}})
}

// NewProfile edits the logged-in user's own account. Leaving the password
// blank keeps the current one.
func NewProfile(name, email string) *Form {
	v := &client.ProfileUpdate{Name: name, Email: email}
	return newForm(KindProfile, "My profile", func() any { return *v }, step{"Profile", func() *huh.Form {
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&v.Name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(&v.Email).Validate(validateEmail),
			huh.NewInput().Title("New password").Description("Leave blank to keep the current one").
				EchoMode(huh.EchoModePassword).Value(&v.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&v.ConfirmPassword).
				Validate(func(s string) error { return matches(v.Password, s) }),
		).Title("My profile").
			Description("Saving logs you out; sign in again with the new details")).WithTheme(Theme())
	}})
}

// NewConfirm asks a yes/no question about target
func NewConfirm(question, target string) *Form {
	r := &ConfirmResult{Target: target}
	return newForm(KindConfirm, question, func() any { return *r }, step{"Confirm", func() *huh.Form {
		return huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title(question).Affirmative("Yes").Negative("No").Value(&r.Confirmed),
		)).WithTheme(Theme())
	}})
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("not a valid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 6 {
		return fmt.Errorf("password must have at least 6 characters")
	}
	return nil
}

func matches(password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

func validatePrice(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return fmt.Errorf("must be a positive amount")
	}
	return nil
}

func validateStock(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fmt.Errorf("must be zero or a positive number")
	}
	return nil
}
