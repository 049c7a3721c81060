// ABOUTME: Session commands for the storefront CLI
// ABOUTME: login, register, logout and whoami against the persisted session

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/session"
	"github.com/spf13/cobra"
)

var (
	authName     string
	authEmail    string
	authPassword string
	authRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	Long: `Log in to the backend. The session is stored in the config directory
and reused by later commands until 'storefront logout'.

Without --email and --password an interactive form asks for them.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runLogin)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runRegister)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runLogout)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password")

	registerCmd.Flags().StringVar(&authName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Account password")
	registerCmd.Flags().StringVar(&authRole, "role", "", "Role: empleado or admin (backend default when empty)")
}

func runLogin(ctx context.Context, w io.Writer) int {
	req := client.LoginRequest{Email: strings.TrimSpace(authEmail), Password: authPassword}
	if req.Email == "" || req.Password == "" {
		if IsJSONOutput() {
			return fail(w, errors.New("--email and --password are required with --json"))
		}
		email := req.Email
		if email == "" {
			email = current.recent.Last()
		}
		prompted, err := promptLogin(email)
		if err != nil {
			return fail(w, err)
		}
		req = prompted
	}

	resp, err := current.api.Login(ctx, req)
	if err != nil {
		return fail(w, err)
	}
	if err := startSession(resp, req.Email); err != nil {
		return fail(w, err)
	}
	printSession(w, "Logged in", resp.User)
	return 0
}

func runRegister(ctx context.Context, w io.Writer) int {
	req := client.RegisterRequest{
		Name:     strings.TrimSpace(authName),
		Email:    strings.TrimSpace(authEmail),
		Password: authPassword,
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(w, errors.New("--name, --email and --password are required"))
	}
	if authRole != "" {
		role, err := client.ParseRole(authRole)
		if err != nil {
			return fail(w, err)
		}
		req.Role = role
	}

	resp, err := current.api.Register(ctx, req)
	if err != nil {
		return fail(w, err)
	}
	if err := startSession(resp, req.Email); err != nil {
		return fail(w, err)
	}
	printSession(w, "Registered", resp.User)
	return 0
}

// startSession stores the authenticated identity. A session that is live
// in memory but failed to persist only costs the next command a login.
func startSession(resp *client.AuthResponse, email string) error {
	if err := current.store.Login(session.FromUser(resp.User), resp.Token); err != nil {
		if !current.store.IsAuthenticated() {
			return err
		}
		slog.Warn("Session will not survive this command", "error", err)
	}
	if err := current.recent.Add(email); err != nil {
		slog.Warn("Failed to remember login", "error", err)
	}
	return nil
}

func printSession(w io.Writer, verb string, u client.User) {
	if IsJSONOutput() {
		printJSON(w, map[string]interface{}{
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
		})
		return
	}
	fmt.Fprintf(w, "✓ %s as %s (%s)\n", verb, displayName(u.Name, u.Email), u.Role.Label())
}

func runLogout(ctx context.Context, w io.Writer) int {
	wasAuthenticated := current.store.IsAuthenticated()
	if err := current.store.Logout(); err != nil {
		return fail(w, fmt.Errorf("failed to remove stored session: %w", err))
	}

	if IsJSONOutput() {
		printJSON(w, map[string]interface{}{"logged_out": wasAuthenticated})
		return 0
	}
	if wasAuthenticated {
		fmt.Fprintln(w, "✓ Logged out")
	} else {
		fmt.Fprintln(w, "Not logged in")
	}
	return 0
}

func runWhoami(ctx context.Context, w io.Writer) int {
	snap := current.store.Snapshot()
	if !snap.IsAuthenticated() {
		return fail(w, errNotLoggedIn)
	}
	id := snap.Identity
	exp, hasExpiry := session.TokenExpiry(snap.Token)

	if IsJSONOutput() {
		out := map[string]interface{}{
			"id":    id.ID,
			"name":  id.Name,
			"email": id.Email,
			"role":  id.Role,
		}
		if hasExpiry {
			out["expires_at"] = exp.UTC().Format(time.RFC3339)
		}
		printJSON(w, out)
		return 0
	}

	fmt.Fprintf(w, "Name:    %s\n", displayName(id.Name, id.Email))
	fmt.Fprintf(w, "Email:   %s\n", id.Email)
	fmt.Fprintf(w, "Role:    %s\n", id.Role.Label())
	switch {
	case !hasExpiry:
		fmt.Fprintln(w, "Expires: unknown")
	case exp.Before(now()):
		fmt.Fprintf(w, "Expires: expired %s\n", format.Ago(exp, now()))
	default:
		fmt.Fprintf(w, "Expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return 0
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
