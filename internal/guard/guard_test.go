// ABOUTME: Tests for the route guard
// ABOUTME: Verifies the order of checks and the redirect targets

package guard

import (
	"testing"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/session"
	"github.com/stretchr/testify/assert"
)

func snapshot(loading bool, role client.Role, token string) session.Snapshot {
	s := session.Snapshot{Loading: loading, Token: token}
	if role != "" {
		s.Identity = &session.Identity{Name: "Ana", Email: "ana@store.test", Role: role}
	}
	return s
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		required client.Role
		want     Decision
	}{
		{"loading logged out", snapshot(true, "", ""), "", Pending},
		{"loading logged in", snapshot(true, client.RoleAdmin, "tok"), "", Pending},
		{"loading wrong role", snapshot(true, client.RoleEmployee, "tok"), client.RoleAdmin, Pending},
		{"logged out", snapshot(false, "", ""), "", DeniedUnauthenticated},
		{"identity without token", snapshot(false, client.RoleAdmin, ""), "", DeniedUnauthenticated},
		{"token without identity", snapshot(false, "", "tok"), client.RoleAdmin, DeniedUnauthenticated},
		{"wrong role", snapshot(false, client.RoleEmployee, "tok"), client.RoleAdmin, DeniedRole},
		{"matching role", snapshot(false, client.RoleAdmin, "tok"), client.RoleAdmin, Admitted},
		{"no role required", snapshot(false, client.RoleEmployee, "tok"), "", Admitted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.snap, tc.required))
		})
	}
}

func TestEvaluate_LoadingAlwaysPending(t *testing.T) {
	roles := []client.Role{"", client.RoleEmployee, client.RoleAdmin}
	tokens := []string{"", "tok"}
	for _, role := range roles {
		for _, token := range tokens {
			for _, required := range roles {
				assert.Equal(t, Pending, Evaluate(snapshot(true, role, token), required),
					"role=%q token=%q required=%q", role, token, required)
			}
		}
	}
}

func TestRouteCheck_Redirects(t *testing.T) {
	out := Users.Check(snapshot(false, client.RoleEmployee, "tok"))
	assert.Equal(t, DeniedRole, out.Decision)
	assert.Equal(t, HomeRoute, out.Redirect)
	assert.False(t, out.Allowed())

	out = SaleRegister.Check(snapshot(false, "", ""))
	assert.Equal(t, LoginRoute, out.Redirect)

	out = SaleRegister.Check(snapshot(true, "", ""))
	assert.Equal(t, Pending, out.Decision)
	assert.Empty(t, out.Redirect)

	out = Users.Check(snapshot(false, client.RoleAdmin, "tok"))
	assert.True(t, out.Allowed())
}

func TestVisible(t *testing.T) {
	employee := Visible(snapshot(false, client.RoleEmployee, "tok"))
	admin := Visible(snapshot(false, client.RoleAdmin, "tok"))

	assert.Len(t, admin, len(Routes))
	assert.Len(t, employee, len(Routes)-1)
	for _, r := range employee {
		assert.NotEqual(t, "users", r.Name)
	}
	assert.Empty(t, Visible(snapshot(false, "", "")))
}

func TestLookup(t *testing.T) {
	r, ok := Lookup("users")
	assert.True(t, ok)
	assert.Equal(t, client.RoleAdmin, r.RequiredRole)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "admitted", Admitted.String())
	assert.Equal(t, "decision(9)", Decision(9).String())
}
