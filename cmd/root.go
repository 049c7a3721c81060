// ABOUTME: Root command for the storefront CLI
// ABOUTME: Handles global flags and wires config, logging, session and API client

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/markalston/storefront/internal/cache"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/config"
	"github.com/markalston/storefront/internal/guard"
	"github.com/markalston/storefront/internal/logger"
	"github.com/markalston/storefront/internal/recent"
	"github.com/markalston/storefront/internal/session"
	"github.com/markalston/storefront/internal/tui/forms"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
)

// now is the clock used for date ranges and relative times
var now = time.Now

var errNotLoggedIn = errors.New("not logged in, run 'storefront login' first")

// app holds what every command runs against. It is built once per process
// by bootstrap; tests install their own.
type app struct {
	cfg        *config.Config
	store      *session.Store
	api        *client.Client
	recent     *recent.Logins
	categories *cache.Cache[map[string]string]
	expired    chan struct{}
	logCloser  io.Closer
}

var current *app

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Terminal client for the store management backend",
	Long: `storefront is a terminal client for the store management backend.

It records sales, browses the catalog and sales history, and manages
products, categories and users. Run 'storefront ui' for the interactive
interface; the other commands are meant for scripts.

Environment Variables:
  STOREFRONT_API_URL     Backend API URL (default: http://localhost:5000)
  STOREFRONT_CONFIG_DIR  Session and log directory (default: ~/.config/storefront)
  STOREFRONT_TIMEOUT     Request timeout in seconds (default: 30)
  LOG_LEVEL, LOG_FORMAT, LOG_FILE`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if current != nil {
			return nil
		}
		a, err := bootstrap(afero.NewOsFs())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides STOREFRONT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// bootstrap loads configuration and builds the session store and client
func bootstrap(fs afero.Fs) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		if err := cfg.OverrideAPIURL(apiURL); err != nil {
			return nil, fmt.Errorf("invalid --api-url: %w", err)
		}
	}

	logCloser, err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	store := session.NewStore(fs, cfg.ConfigDir)
	store.Restore()

	a := &app{
		cfg:        cfg,
		store:      store,
		recent:     recent.New(fs, cfg.ConfigDir),
		categories: cache.New[map[string]string](cfg.CacheTTL),
		expired:    make(chan struct{}, 1),
		logCloser:  logCloser,
	}
	a.api = client.New(cfg.APIURL,
		client.WithTokenSource(store),
		client.WithTimeout(cfg.Timeout),
		client.WithRetries(cfg.Retries),
		client.WithRateLimit(cfg.RateLimit),
		client.WithCategoryCache(a.categories),
		client.WithUnauthorizedHandler(a.expire),
	)

	slog.Debug("Client configured",
		"api_url", cfg.APIURL,
		"timeout", cfg.Timeout,
		"retries", cfg.Retries,
		"rate_limit", cfg.RateLimit,
	)
	return a, nil
}

// expire ends a session the backend no longer accepts
func (a *app) expire() {
	if err := a.store.Logout(); err != nil {
		slog.Warn("Failed to clear rejected session", "error", err)
	}
	select {
	case a.expired <- struct{}{}:
	default:
	}
}

// Close releases the cache and log file
func (a *app) Close() {
	if a.categories != nil {
		a.categories.Close()
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// execute runs fn with a signal-aware context and exits with its code
func execute(fn func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := fn(ctx, os.Stdout)
	cancel()
	if exitCode != 0 {
		if current != nil {
			current.Close()
		}
		os.Exit(exitCode)
	}
}

// authorize applies the route guard to the current session
func authorize(r guard.Route) error {
	out := r.Check(current.store.Snapshot())
	switch out.Decision {
	case guard.Admitted:
		return nil
	case guard.DeniedRole:
		return fmt.Errorf("%s is only available to %s users", r.Title, r.RequiredRole.Label())
	}
	return errNotLoggedIn
}

// fail prints err and returns the error exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return 2
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

// renderTable lays rows out under headers for terminal output
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		}).
		Render()
}

// Interactive prompts, replaced in tests
var (
	confirm     = forms.RunConfirm
	promptLogin = forms.RunLogin
)

// confirmed reports whether a destructive action may go ahead. --yes and
// --json skip the prompt.
func confirmed(yes bool, question string) (bool, error) {
	if yes || jsonOutput {
		return true, nil
	}
	return confirm(question)
}
