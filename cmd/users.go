// ABOUTME: Account commands for the storefront CLI
// ABOUTME: Admin user management and the logged-in user's profile

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/guard"
	"github.com/spf13/cobra"
)

var (
	userName            string
	userEmail           string
	userRole            string
	userYes             bool
	profilePassword     string
	profileConfirmation string
)

var errDeleteSelf = errors.New("you cannot delete your own account")

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage accounts (admin only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runUsersList)
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an account's name, email or role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, email, role := optionalFlag(cmd, "name", userName), optionalFlag(cmd, "email", userEmail), optionalFlag(cmd, "role", userRole)
		execute(func(ctx context.Context, w io.Writer) int {
			return runUsersUpdate(ctx, w, args[0], name, email, role)
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runUsersDelete(ctx, w, args[0])
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your own account",
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name, email or password",
	Long: `Change your own account. Unset flags keep their current values.
A successful update ends the session; log in again afterwards.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runProfileUpdate)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd, profileCmd)
	usersCmd.AddCommand(usersListCmd, usersUpdateCmd, usersDeleteCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	usersUpdateCmd.Flags().StringVar(&userName, "name", "", "Full name")
	usersUpdateCmd.Flags().StringVar(&userEmail, "email", "", "Email")
	usersUpdateCmd.Flags().StringVar(&userRole, "role", "", "Role: empleado or admin")
	usersDeleteCmd.Flags().BoolVarP(&userYes, "yes", "y", false, "Do not ask for confirmation")

	profileUpdateCmd.Flags().StringVar(&userName, "name", "", "Full name")
	profileUpdateCmd.Flags().StringVar(&userEmail, "email", "", "Email")
	profileUpdateCmd.Flags().StringVar(&profilePassword, "password", "", "New password")
	profileUpdateCmd.Flags().StringVar(&profileConfirmation, "confirm-password", "", "New password again")
}

func runUsersList(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Users); err != nil {
		return fail(w, err)
	}
	users, err := current.api.ListUsers(ctx)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		if users == nil {
			users = []client.User{}
		}
		printJSON(w, users)
		return 0
	}
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found")
		return 0
	}

	self := current.store.Identity()
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		name := u.Name
		if self != nil && u.ID == self.ID {
			name += " (you)"
		}
		rows = append(rows, []string{u.ID, name, u.Email, u.Role.Label()})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "NAME", "EMAIL", "ROLE"}, rows))
	return 0
}

// runUsersUpdate merges the given fields into the stored account; the
// backend replaces name, email and role together.
func runUsersUpdate(ctx context.Context, w io.Writer, id string, name, email, role *string) int {
	if err := authorize(guard.Users); err != nil {
		return fail(w, err)
	}
	if name == nil && email == nil && role == nil {
		return fail(w, errors.New("nothing to update, pass --name, --email or --role"))
	}

	users, err := current.api.ListUsers(ctx)
	if err != nil {
		return fail(w, err)
	}
	var existing *client.User
	for i := range users {
		if users[i].ID == id {
			existing = &users[i]
			break
		}
	}
	if existing == nil {
		return fail(w, fmt.Errorf("user %s not found", id))
	}

	u := client.UserUpdate{Name: existing.Name, Email: existing.Email, Role: existing.Role}
	if name != nil {
		u.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		u.Email = strings.TrimSpace(*email)
	}
	if role != nil {
		parsed, err := client.ParseRole(*role)
		if err != nil {
			return fail(w, err)
		}
		u.Role = parsed
	}
	if u.Name == "" || u.Email == "" {
		return fail(w, errors.New("name and email must not be empty"))
	}

	updated, err := current.api.UpdateUser(ctx, id, u)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		printJSON(w, updated)
		return 0
	}
	fmt.Fprintf(w, "✓ Updated %s (%s) · %s\n", updated.Name, updated.Email, updated.Role.Label())
	return 0
}

func runUsersDelete(ctx context.Context, w io.Writer, id string) int {
	if err := authorize(guard.Users); err != nil {
		return fail(w, err)
	}
	if self := current.store.Identity(); self != nil && self.ID == id {
		return fail(w, errDeleteSelf)
	}
	ok, err := confirmed(userYes, fmt.Sprintf("Delete user %s?", id))
	if err != nil {
		return fail(w, err)
	}
	if !ok {
		fmt.Fprintln(w, "Cancelled")
		return 0
	}

	if err := current.api.DeleteUser(ctx, id); err != nil {
		return fail(w, err)
	}
	printDeleted(w, "user", id)
	return 0
}

func runProfileUpdate(ctx context.Context, w io.Writer) int {
	if err := authorize(guard.Profile); err != nil {
		return fail(w, err)
	}
	self := current.store.Identity()

	p := client.ProfileUpdate{
		Name:            self.Name,
		Email:           self.Email,
		Password:        profilePassword,
		ConfirmPassword: profileConfirmation,
	}
	if userName != "" {
		p.Name = strings.TrimSpace(userName)
	}
	if userEmail != "" {
		p.Email = strings.TrimSpace(userEmail)
	}
	if err := p.Validate(); err != nil {
		return fail(w, err)
	}

	if _, err := current.api.UpdateProfile(ctx, p); err != nil {
		return fail(w, err)
	}
	if err := current.store.Logout(); err != nil {
		return fail(w, fmt.Errorf("profile updated but the stored session could not be removed: %w", err))
	}

	if IsJSONOutput() {
		printJSON(w, map[string]interface{}{"updated": true, "logged_out": true})
		return 0
	}
	fmt.Fprintln(w, "✓ Profile updated. Log in again with 'storefront login'.")
	return 0
}
