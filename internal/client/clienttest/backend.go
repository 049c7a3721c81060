// ABOUTME: In-memory fake of the store backend for tests
// ABOUTME: Serves the auth, catalog, category, sales and user routes over httptest

package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// Account is a user known to the fake backend
type Account struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"-"`
}

// Product mirrors the backend's product document
type Product struct {
	ID         string  `json:"_id"`
	CategoryID string  `json:"id_category"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
}

// Category mirrors the backend's category document
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SaleLine is one recorded line of a sale
type SaleLine struct {
	Product    string  `json:"product"`
	Name       string  `json:"name"`
	AmountSold int     `json:"amountSold"`
	Subtotal   float64 `json:"subtotal"`
}

// Sale is a recorded sale
type Sale struct {
	ID     string     `json:"_id"`
	Date   time.Time  `json:"date"`
	User   string     `json:"user"`
	Detail []SaleLine `json:"detail"`
	Total  float64    `json:"total"`
}

// Backend is a fake store backend. Zero or more accounts, products and
// categories can be seeded before use; all methods are safe for concurrent use.
type Backend struct {
	Server *httptest.Server

	mu         sync.Mutex
	accounts   map[string]*Account
	tokens     map[string]string // token -> account id
	products   map[string]*Product
	categories map[string]*Category
	sales      []Sale
	nextID     int
	hits       map[string]int
	now        func() time.Time
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		accounts:   make(map[string]*Account),
		tokens:     make(map[string]string),
		products:   make(map[string]*Product),
		categories: make(map[string]*Category),
		hits:       make(map[string]int),
		now:        time.Now,
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL of the fake backend
func (b *Backend) URL() string { return b.Server.URL }

// AddAccount seeds an account and returns a valid token for it.
func (b *Backend) AddAccount(a Account) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == "" {
		a.ID = b.newID("u")
	}
	b.accounts[a.ID] = &a
	token := "token-" + a.ID
	b.tokens[token] = a.ID
	return token
}

// AddProduct seeds a product and returns it with its id
func (b *Backend) AddProduct(p Product) Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.newID("p")
	}
	b.products[p.ID] = &p
	return p
}

// AddCategory seeds a category
func (b *Backend) AddCategory(c Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.ID == "" {
		c.ID = b.newID("c")
	}
	b.categories[c.ID] = &c
}

// AddSale seeds a recorded sale
func (b *Backend) AddSale(s Sale) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.ID == "" {
		s.ID = b.newID("s")
	}
	b.sales = append(b.sales, s)
}

// SetStock changes a product's stock, simulating another register selling it.
func (b *Backend) SetStock(id string, stock int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.products[id]; ok {
		p.Stock = stock
	}
}

// Stock returns a product's current stock
func (b *Backend) Stock(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.products[id]; ok {
		return p.Stock
	}
	return 0
}

// Sales returns the recorded sales
func (b *Backend) Sales() []Sale {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Sale(nil), b.sales...)
}

// Hits returns how many requests reached the route, e.g. "POST /api/sales".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *Backend) newID(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s%d", prefix, b.nextID)
}

func (b *Backend) router() http.Handler {
	r := mux.NewRouter()
	r.Use(b.countHits)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", b.register).Methods(http.MethodPost)

	api.HandleFunc("/products", b.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/search", b.searchProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", b.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", b.updateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", b.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/categories", b.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", b.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", b.updateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", b.deleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/sales", b.requireAuth(b.createSale)).Methods(http.MethodPost)
	api.HandleFunc("/sales", b.requireAuth(b.listSales)).Methods(http.MethodGet)
	api.HandleFunc("/sales/{id}", b.requireAuth(b.getSale)).Methods(http.MethodGet)

	api.HandleFunc("/users", b.requireAuth(b.listUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users/profile", b.requireAuth(b.updateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", b.requireAuth(b.updateUser)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", b.requireAuth(b.deleteUser)).Methods(http.MethodDelete)
	return r
}

func (b *Backend) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireAuth(next func(http.ResponseWriter, *http.Request, *Account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, ok := b.tokens[token]
		var acct *Account
		if ok {
			acct = b.accounts[id]
		}
		b.mu.Unlock()
		if acct == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token inválido o expirado"})
			return
		}
		next(w, r, acct)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for token, id := range b.tokens {
		a := b.accounts[id]
		if a != nil && a.Email == req.Email && a.Password == req.Password {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"message": "Login exitoso",
				"user":    a,
				"token":   token,
			})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Credenciales inválidas"})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email is required"})
		return
	}

	b.mu.Lock()
	for _, a := range b.accounts {
		if a.Email == req.Email {
			b.mu.Unlock()
			writeJSON(w, http.StatusConflict, map[string]string{"message": "El email ya está registrado"})
			return
		}
	}
	b.mu.Unlock()

	if req.Role == "" {
		req.Role = "empleado"
	}
	a := Account{Name: req.Name, Email: req.Email, Role: req.Role, Password: req.Password}
	token := b.AddAccount(a)

	b.mu.Lock()
	created := b.accounts[b.tokens[token]]
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Usuario registrado",
		"user":    created,
		"token":   token,
	})
}

func (b *Backend) sortedProducts() []Product {
	out := make([]Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := b.sortedProducts()
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// searchProducts answers 404 for no match and a bare object for exactly one,
// as the real backend does.
func (b *Backend) searchProducts(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	b.mu.Lock()
	var out []Product
	for _, p := range b.sortedProducts() {
		if strings.Contains(strings.ToLower(p.Name), name) {
			out = append(out, p)
		}
	}
	b.mu.Unlock()

	switch len(out) {
	case 0:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Producto no encontrado"})
	case 1:
		writeJSON(w, http.StatusOK, out[0])
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}
	p.ID = ""
	created := b.AddProduct(p)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Producto creado", "product": created})
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Producto no encontrado"})
		return
	}
	if v, ok := patch["name"]; ok {
		_ = json.Unmarshal(v, &p.Name)
	}
	if v, ok := patch["price"]; ok {
		_ = json.Unmarshal(v, &p.Price)
	}
	if v, ok := patch["stock"]; ok {
		_ = json.Unmarshal(v, &p.Stock)
	}
	if v, ok := patch["id_category"]; ok {
		_ = json.Unmarshal(v, &p.CategoryID)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Producto actualizado", "product": p})
}

func (b *Backend) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Producto no encontrado"})
		return
	}
	delete(b.products, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Producto eliminado"})
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]Category, 0, len(b.categories))
	for _, c := range b.categories {
		out = append(out, *c)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var c Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}
	b.mu.Lock()
	c.ID = b.newID("c")
	b.categories[c.ID] = &c
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Categoría creada", "category": c})
}

func (b *Backend) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var in Category
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.categories[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Categoría no encontrada"})
		return
	}
	c.Name, c.Description = in.Name, in.Description
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Categoría actualizada", "category": c})
}

func (b *Backend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.categories[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Categoría no encontrada"})
		return
	}
	delete(b.categories, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Categoría eliminada"})
}

func (b *Backend) createSale(w http.ResponseWriter, r *http.Request, acct *Account) {
	var req struct {
		Details []struct {
			Product    string `json:"product"`
			AmountSold int    `json:"amountSold"`
		} `json:"details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	var fieldErrs []map[string]string
	if len(req.Details) == 0 {
		fieldErrs = append(fieldErrs, map[string]string{"field": "details", "message": "must not be empty"})
	}
	for i, d := range req.Details {
		if d.AmountSold < 1 {
			fieldErrs = append(fieldErrs, map[string]string{
				"field":   fmt.Sprintf("details[%d].amountSold", i),
				"message": "must be at least 1",
			})
		}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fieldErrs})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	sale := Sale{Date: b.now().UTC(), User: acct.ID}
	for _, d := range req.Details {
		p, ok := b.products[d.Product]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Producto no encontrado: " + d.Product})
			return
		}
		if p.Stock < d.AmountSold {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"message": fmt.Sprintf("Stock insuficiente para %s", p.Name),
			})
			return
		}
	}
	for _, d := range req.Details {
		p := b.products[d.Product]
		p.Stock -= d.AmountSold
		subtotal := p.Price * float64(d.AmountSold)
		sale.Detail = append(sale.Detail, SaleLine{Product: p.ID, Name: p.Name, AmountSold: d.AmountSold, Subtotal: subtotal})
		sale.Total += subtotal
	}
	sale.ID = b.newID("s")
	b.sales = append(b.sales, sale)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Venta registrada", "sale": sale})
}

func (b *Backend) listSales(w http.ResponseWriter, r *http.Request, _ *Account) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var start, end time.Time
	if s := q.Get("startDate"); s != "" {
		start, _ = time.Parse("2006-01-02", s)
	}
	if s := q.Get("endDate"); s != "" {
		end, _ = time.Parse("2006-01-02", s)
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	b.mu.Lock()
	var matched []Sale
	for _, s := range b.sales {
		if !start.IsZero() && s.Date.Before(start) {
			continue
		}
		if !end.IsZero() && s.Date.After(end) {
			continue
		}
		matched = append(matched, s)
	}
	b.mu.Unlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := len(matched)
	pages := (total + limit - 1) / limit
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sales":       append([]Sale{}, matched[from:to]...),
		"totalCount":  total,
		"totalPages":  pages,
		"currentPage": page,
	})
}

func (b *Backend) getSale(w http.ResponseWriter, r *http.Request, _ *Account) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sales {
		if s.ID == id {
			writeJSON(w, http.StatusOK, map[string]interface{}{"sale": s})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Venta no encontrada"})
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request, acct *Account) {
	if !strings.EqualFold(acct.Role, "admin") {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Acceso denegado"})
		return
	}
	b.mu.Lock()
	out := make([]Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		out = append(out, *a)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request, acct *Account) {
	if !strings.EqualFold(acct.Role, "admin") {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Acceso denegado"})
		return
	}
	var in Account
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[mux.Vars(r)["id"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Usuario no encontrado"})
		return
	}
	a.Name, a.Email, a.Role = in.Name, in.Email, in.Role
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Usuario actualizado", "user": a})
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request, acct *Account) {
	if !strings.EqualFold(acct.Role, "admin") {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Acceso denegado"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := b.accounts[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Usuario no encontrado"})
		return
	}
	delete(b.accounts, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Usuario eliminado"})
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request, acct *Account) {
	var in struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if in.Password != in.ConfirmPassword {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Las contraseñas no coinciden"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if in.Name != "" {
		acct.Name = in.Name
	}
	if in.Email != "" {
		acct.Email = in.Email
	}
	if in.Password != "" {
		acct.Password = in.Password
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Perfil actualizado", "user": acct})
}
