// ABOUTME: Route guard gating protected areas on session state
// ABOUTME: Evaluates loading, then authentication, then role, with no network I/O

package guard

import (
	"fmt"
	"log/slog"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/session"
)

// Decision is the outcome of evaluating a navigation
type Decision int

const (
	// Pending means the session is still restoring; show a waiting indicator
	Pending Decision = iota
	// DeniedUnauthenticated redirects to the login entry point
	DeniedUnauthenticated
	// DeniedRole redirects to the default landing page
	DeniedRole
	// Admitted renders the protected content
	Admitted
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case DeniedUnauthenticated:
		return "denied-unauthenticated"
	case DeniedRole:
		return "denied-role"
	case Admitted:
		return "admitted"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Evaluate decides whether the session may enter an area requiring
// requiredRole ("" for any authenticated user). The order of checks is fixed.
func Evaluate(s session.Snapshot, requiredRole client.Role) Decision {
	if s.Loading {
		return Pending
	}
	if !s.IsAuthenticated() {
		return DeniedUnauthenticated
	}
	if requiredRole != "" && s.Role() != requiredRole {
		return DeniedRole
	}
	return Admitted
}

// Redirect targets
const (
	LoginRoute = "login"
	HomeRoute  = "home"
)

// Route is a protected area
type Route struct {
	Name         string
	Title        string
	RequiredRole client.Role
}

// Outcome is a decision plus where to go instead, if anywhere
type Outcome struct {
	Decision Decision
	Redirect string
}

// Allowed reports whether the route's content may be shown
func (o Outcome) Allowed() bool { return o.Decision == Admitted }

// Check evaluates the route for the session and logs denials
func (r Route) Check(s session.Snapshot) Outcome {
	d := Evaluate(s, r.RequiredRole)
	out := Outcome{Decision: d}
	switch d {
	case DeniedUnauthenticated:
		out.Redirect = LoginRoute
		slog.Debug("Route requires login", "route", r.Name)
	case DeniedRole:
		out.Redirect = HomeRoute
		slog.Warn("Route authorization denied",
			"route", r.Name,
			"required_role", r.RequiredRole,
			"user_role", s.Role(),
		)
	}
	return out
}

// Protected areas of the application
var (
	Home         = Route{Name: HomeRoute, Title: "Dashboard"}
	SaleRegister = Route{Name: "sale-register", Title: "Register Sale"}
	SalesHistory = Route{Name: "sales-history", Title: "Sales History"}
	Products     = Route{Name: "products", Title: "Products"}
	Categories   = Route{Name: "categories", Title: "Categories"}
	Profile      = Route{Name: "profile", Title: "My Profile"}
	Users        = Route{Name: "users", Title: "Users", RequiredRole: client.RoleAdmin}
)

// Routes lists every protected area in menu order
var Routes = []Route{Home, SaleRegister, SalesHistory, Products, Categories, Users, Profile}

// Lookup finds a route by name
func Lookup(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Visible returns the routes the session would be admitted to
func Visible(s session.Snapshot) []Route {
	var out []Route
	for _, r := range Routes {
		if Evaluate(s, r.RequiredRole) == Admitted {
			out = append(out, r)
		}
	}
	return out
}
