// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, guards navigation and routes input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/analytics"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/guard"
	"github.com/markalston/storefront/internal/order"
	"github.com/markalston/storefront/internal/recent"
	"github.com/markalston/storefront/internal/session"
	"github.com/markalston/storefront/internal/tui/dashboard"
	"github.com/markalston/storefront/internal/tui/forms"
	"github.com/markalston/storefront/internal/tui/history"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/inventory"
	"github.com/markalston/storefront/internal/tui/menu"
	"github.com/markalston/storefront/internal/tui/records"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/ticket"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenHome
	ScreenSaleRegister
	ScreenHistory
	ScreenRecords
	ScreenProfile
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	menuWidth        = 28 // Width of the navigation pane on the home screen
)

// restoredMsg is sent when the persisted session has been read
type restoredMsg struct{}

// authMsg carries the answer to a login or registration
type authMsg struct {
	resp *client.AuthResponse
	err  error
}

// dashboardMsg is sent when the home dashboard data is loaded
type dashboardMsg struct {
	data *analytics.Dashboard
}

// saleMsg carries the outcome of a submission. submitted is the order as
// sent; checked is the copy after stock revalidation.
type saleMsg struct {
	submitted []order.Line
	checked   []order.Line
	sale      *client.Sale
	err       error
}

// profileMsg is sent when a profile update completes
type profileMsg struct {
	err error
}

// expiredMsg is sent when the backend rejected the session token
type expiredMsg struct{}

// Options tunes the application
type Options struct {
	// LowStock is the stock level at or below which products are highlighted
	LowStock int
	// Email prefills the login form; the most recent login when empty
	Email string
	// Recent remembers successful logins; optional
	Recent *recent.Logins
	// Expired receives a value whenever the backend rejects the token
	Expired <-chan struct{}
	// Now is the clock; time.Now when nil
	Now func() time.Time
}

// App is the root model for the TUI
type App struct {
	api         *client.Client
	store       *session.Store
	opts        Options
	screen      Screen
	route       guard.Route
	width       int
	height      int
	notice      string
	noticeLevel widgets.StatusLevel
	lastUpdate  time.Time
	spinner     spinner.Model

	// Child models
	menu        *menu.Menu
	dashboard   *dashboard.Dashboard
	inventory   *inventory.Inventory
	ticket      *ticket.Ticket
	ticketFocus bool
	history     *history.History
	records     *records.List
	form        *forms.Form
}

// New creates a new TUI application
func New(api *client.Client, store *session.Store, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Email == "" && opts.Recent != nil {
		opts.Email = opts.Recent.Last()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &App{
		api:       api,
		store:     store,
		opts:      opts,
		screen:    ScreenLoading,
		spinner:   sp,
		menu:      menu.New(store.Snapshot()),
		inventory: inventory.New(api, opts.LowStock),
		ticket:    ticket.New(),
	}
}

// Init restores the session off the event loop
func (a *App) Init() tea.Cmd {
	store := a.store
	restore := func() tea.Msg {
		store.Restore()
		return restoredMsg{}
	}
	return tea.Batch(a.spinner.Tick, restore, a.waitExpired())
}

// waitExpired blocks until the backend rejects the token
func (a *App) waitExpired() tea.Cmd {
	ch := a.opts.Expired
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return expiredMsg{}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if a.screen == ScreenLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		_, cmd := a.inventory.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case restoredMsg:
		return a, a.navigate(guard.Home)

	case expiredMsg:
		var cmd tea.Cmd
		if a.screen != ScreenLogin && a.screen != ScreenRegister {
			cmd = a.logout("Your session expired, please log in again", widgets.StatusWarning)
		}
		return a, tea.Batch(cmd, a.waitExpired())

	case menu.NavigateMsg:
		a.setNotice("", widgets.StatusInfo)
		return a, a.navigate(msg.Route)

	case menu.LogoutMsg:
		return a, a.logout("Logged out", widgets.StatusInfo)

	case authMsg:
		return a.handleAuth(msg)

	case profileMsg:
		if msg.err != nil {
			return a, a.formError(msg.err)
		}
		return a, a.logout("Profile updated, log in again with your new details", widgets.StatusOK)

	case dashboardMsg:
		a.lastUpdate = msg.data.LoadedAt
		if a.dashboard != nil {
			a.dashboard.Update(msg.data)
		}
		return a, nil

	case inventory.AddMsg:
		a.ticket.Add(msg.Product)
		return a, nil

	case ticket.SubmitMsg:
		return a, a.submitOrder()

	case saleMsg:
		return a.handleSale(msg)

	case forms.SubmittedMsg:
		switch msg.Kind {
		case forms.KindLogin, forms.KindRegister, forms.KindProfile:
			return a.handleSubmitted(msg)
		}

	case forms.CancelledMsg:
		switch msg.Kind {
		case forms.KindLogin:
			return a, tea.Quit
		case forms.KindRegister:
			return a, a.openLogin("", widgets.StatusInfo)
		case forms.KindProfile:
			return a, a.navigate(guard.Home)
		}
	}

	return a.forward(msg)
}

// forward hands a message to the active child, which owns its async results
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form != nil {
		return a.updateForm(msg)
	}
	switch a.screen {
	case ScreenSaleRegister:
		model, cmd := a.inventory.Update(msg)
		a.inventory = model.(*inventory.Inventory)
		return a, cmd
	case ScreenHistory:
		return a.updateHistory(msg)
	case ScreenRecords:
		return a.updateRecords(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form != nil {
		if a.screen == ScreenLogin && msg.String() == "ctrl+n" {
			return a, a.openRegister()
		}
		return a.updateForm(msg)
	}

	switch a.screen {
	case ScreenLoading:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil

	case ScreenHome:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "r":
			return a, a.loadDashboard()
		}
		model, cmd := a.menu.Update(msg)
		a.menu = model.(*menu.Menu)
		return a, cmd

	case ScreenSaleRegister:
		return a.updateSaleRegister(msg)

	case ScreenHistory:
		if !a.history.Modal() && isBack(msg) {
			return a, a.navigate(guard.Home)
		}
		return a.updateHistory(msg)

	case ScreenRecords:
		if !a.records.Editing() && isBack(msg) {
			return a, a.navigate(guard.Home)
		}
		return a.updateRecords(msg)
	}
	return a, nil
}

func isBack(msg tea.KeyMsg) bool {
	s := msg.String()
	return s == "esc" || s == "b"
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.form.Update(msg)
	a.form = model.(*forms.Form)
	return a, cmd
}

func (a *App) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.history == nil {
		return a, nil
	}
	model, cmd := a.history.Update(msg)
	a.history = model.(*history.History)
	return a, cmd
}

func (a *App) updateRecords(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.records == nil {
		return a, nil
	}
	model, cmd := a.records.Update(msg)
	a.records = model.(*records.List)
	return a, cmd
}

// updateSaleRegister routes keys to the focused panel. Tab switches panels
// unless a text input has the keyboard.
func (a *App) updateSaleRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.inventory.Searching() && !a.ticket.Editing() {
		switch {
		case msg.String() == "tab":
			a.ticketFocus = !a.ticketFocus
			return a, nil
		case isBack(msg):
			return a, a.navigate(guard.Home)
		}
	}

	if a.ticketFocus {
		model, cmd := a.ticket.Update(msg)
		a.ticket = model.(*ticket.Ticket)
		return a, cmd
	}
	model, cmd := a.inventory.Update(msg)
	a.inventory = model.(*inventory.Inventory)
	return a, cmd
}

// navigate checks the route against the session and opens it, or follows
// the guard's redirect
func (a *App) navigate(r guard.Route) tea.Cmd {
	snap := a.store.Snapshot()
	out := r.Check(snap)
	switch out.Decision {
	case guard.Pending:
		a.screen = ScreenLoading
		return a.spinner.Tick
	case guard.DeniedUnauthenticated:
		return a.openLogin(a.notice, a.noticeLevel)
	case guard.DeniedRole:
		a.setNotice(fmt.Sprintf("%s is only available to %s users", r.Title, r.RequiredRole.Label()), widgets.StatusWarning)
		return a.navigate(guard.Home)
	}

	a.route = r
	a.form = nil
	a.menu.Refresh(snap)
	a.menu.Select(r.Name)

	switch r.Name {
	case guard.Home.Name:
		a.screen = ScreenHome
		if a.dashboard == nil {
			a.dashboard = dashboard.New(nil, greeting(snap), a.opts.LowStock, a.dashboardWidth(), a.contentHeight())
		}
		return a.loadDashboard()

	case guard.SaleRegister.Name:
		a.screen = ScreenSaleRegister
		a.resize()
		return a.inventory.Reload()

	case guard.SalesHistory.Name:
		a.screen = ScreenHistory
		if a.history == nil {
			a.history = history.New(a.api, a.opts.Now())
		}
		a.resize()
		return a.history.Reload()

	case guard.Products.Name:
		return a.openRecords(records.NewProducts(a.api, a.opts.LowStock))

	case guard.Categories.Name:
		return a.openRecords(records.NewCategories(a.api))

	case guard.Users.Name:
		return a.openRecords(records.NewUsers(a.api, snap.Identity.ID))

	case guard.Profile.Name:
		a.screen = ScreenProfile
		return a.openForm(forms.NewProfile(snap.Identity.Name, snap.Identity.Email))
	}
	return nil
}

func greeting(s session.Snapshot) string {
	if s.Identity == nil || s.Identity.Name == "" {
		return "Welcome"
	}
	return "Hello, " + s.Identity.Name
}

func (a *App) openRecords(src records.Source) tea.Cmd {
	a.screen = ScreenRecords
	a.records = records.New(src)
	a.resize()
	return a.records.Init()
}

func (a *App) openForm(f *forms.Form) tea.Cmd {
	a.form = f
	a.form.SetWidth(a.contentWidth())
	return a.form.Init()
}

// openLogin shows the login form with an optional notice above it
func (a *App) openLogin(notice string, level widgets.StatusLevel) tea.Cmd {
	a.screen = ScreenLogin
	a.setNotice(notice, level)
	return a.openForm(forms.NewLogin(a.opts.Email))
}

func (a *App) openRegister() tea.Cmd {
	a.screen = ScreenRegister
	a.setNotice("", widgets.StatusInfo)
	return a.openForm(forms.NewRegister())
}

// logout ends the session and drops everything that belonged to it
func (a *App) logout(notice string, level widgets.StatusLevel) tea.Cmd {
	if err := a.store.Logout(); err != nil {
		slog.Warn("Failed to clear persisted session", "error", err)
	}
	a.ticket = ticket.New()
	a.ticketFocus = false
	a.dashboard = nil
	a.history = nil
	a.records = nil
	a.lastUpdate = time.Time{}
	a.menu.Refresh(a.store.Snapshot())
	return a.openLogin(notice, level)
}

func (a *App) setNotice(msg string, level widgets.StatusLevel) {
	a.notice = msg
	a.noticeLevel = level
}

// formError shows err on the open form and reopens it for another attempt
func (a *App) formError(err error) tea.Cmd {
	if a.form == nil {
		a.setNotice(err.Error(), widgets.StatusCritical)
		return nil
	}
	a.form.SetError(err.Error())
	return a.form.Reset()
}

func (a *App) handleSubmitted(msg forms.SubmittedMsg) (tea.Model, tea.Cmd) {
	api := a.api
	switch req := msg.Result.(type) {
	case client.LoginRequest:
		a.opts.Email = req.Email
		return a, func() tea.Msg {
			resp, err := api.Login(context.Background(), req)
			return authMsg{resp: resp, err: err}
		}

	case client.RegisterRequest:
		a.opts.Email = req.Email
		return a, func() tea.Msg {
			resp, err := api.Register(context.Background(), req)
			return authMsg{resp: resp, err: err}
		}

	case client.ProfileUpdate:
		if err := req.Validate(); err != nil {
			return a, a.formError(err)
		}
		return a, func() tea.Msg {
			_, err := api.UpdateProfile(context.Background(), req)
			return profileMsg{err: err}
		}
	}
	return a, nil
}

// handleAuth starts the session after a login or registration
func (a *App) handleAuth(msg authMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return a, a.formError(msg.err)
	}
	if err := a.store.Login(session.FromUser(msg.resp.User), msg.resp.Token); err != nil {
		if !a.store.IsAuthenticated() {
			return a, a.formError(err)
		}
		// the session is live in memory; it just won't survive a restart
		slog.Warn("Session not persisted", "error", err)
	}
	if a.opts.Recent != nil {
		if err := a.opts.Recent.Add(msg.resp.User.Email); err != nil {
			slog.Debug("Could not remember login", "error", err)
		}
	}
	a.form = nil
	a.setNotice("", widgets.StatusInfo)
	return a, a.navigate(guard.Home)
}

// submitOrder records a copy of the order off the event loop. Ticket keys
// are locked until the saleMsg arrives; inventory adds still land on the
// live order.
func (a *App) submitOrder() tea.Cmd {
	if a.ticket.Submitting() {
		return nil
	}
	if a.ticket.Order().Len() == 0 {
		a.ticket.SetNotice(order.ErrEmptyOrder.Error(), widgets.StatusWarning)
		return nil
	}
	pending := a.ticket.Order().Clone()
	submitted := pending.Lines()
	a.ticket.SetSubmitting(true)
	api := a.api
	return func() tea.Msg {
		sale, err := pending.Submit(context.Background(), api, api)
		return saleMsg{submitted: submitted, checked: pending.Lines(), sale: sale, err: err}
	}
}

func (a *App) handleSale(msg saleMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.ticket.Release(msg.checked)
		var stockErr *order.StockError
		if errors.As(msg.err, &stockErr) {
			a.ticket.SetNotice(stockErr.Error(), widgets.StatusWarning)
			return a, a.inventory.Reload()
		}
		a.ticket.SetNotice(msg.err.Error(), widgets.StatusCritical)
		return a, nil
	}
	a.ticket.Settle(msg.submitted)
	a.ticket.SetNotice(fmt.Sprintf("Sale recorded · %s", format.MoneyFloat(msg.sale.Total)), widgets.StatusOK)
	return a, a.inventory.Reload()
}

// loadDashboard creates a command to fetch the dashboard data
func (a *App) loadDashboard() tea.Cmd {
	api, now, low := a.api, a.opts.Now(), a.opts.LowStock
	return func() tea.Msg {
		return dashboardMsg{data: analytics.Load(context.Background(), api, now, low)}
	}
}

// resize propagates the terminal size to the children
func (a *App) resize() {
	a.menu.SetWidth(menuWidth)
	if a.dashboard != nil {
		a.dashboard.SetSize(a.dashboardWidth(), a.contentHeight())
	}
	a.inventory.SetSize(a.halfWidth(), a.contentHeight())
	a.ticket.SetSize(a.otherHalfWidth(), a.contentHeight())
	if a.history != nil {
		a.history.SetSize(a.contentWidth()-panelPadding, a.contentHeight())
	}
	if a.records != nil {
		a.records.SetSize(a.contentWidth()-panelPadding, a.contentHeight())
	}
	if a.form != nil {
		a.form.SetWidth(a.contentWidth())
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLoading:
		content = a.viewLoading()
	case ScreenLogin, ScreenRegister, ScreenProfile:
		content = a.viewForm()
	case ScreenHome:
		content = a.viewHome()
	case ScreenSaleRegister:
		content = a.viewSaleRegister()
	case ScreenHistory:
		content = styles.ActivePanel.Width(a.contentWidth()).Render(a.history.View())
	case ScreenRecords:
		content = styles.ActivePanel.Width(a.contentWidth()).Render(a.records.View())
	}

	if a.notice != "" {
		content = widgets.StatusText(a.notice, a.noticeLevel) + "\n" + content
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewLoading() string {
	return styles.Panel.Width(a.contentWidth()).Render(a.spinner.View() + " Restoring session...")
}

func (a *App) viewForm() string {
	if a.form == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.form.View())
}

// viewHome renders the dashboard with the navigation pane
func (a *App) viewHome() string {
	leftPane := ""
	if a.dashboard != nil {
		leftPane = styles.ActivePanel.Width(a.dashboardWidth()).Render(a.dashboard.View())
	} else {
		leftPane = styles.Panel.Width(a.dashboardWidth()).Render("Loading...")
	}

	rightContent := styles.Title.Render(icons.Settings.String()+" Menu") + "\n\n" + a.menu.View()
	rightPane := styles.Panel.Width(menuWidth).Render(rightContent)

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// viewSaleRegister renders the inventory and the ticket side by side
func (a *App) viewSaleRegister() string {
	invStyle, ticketStyle := styles.ActivePanel, styles.Panel
	if a.ticketFocus {
		invStyle, ticketStyle = styles.Panel, styles.ActivePanel
	}
	left := invStyle.Width(a.halfWidth()).Render(a.inventory.View())
	right := ticketStyle.Width(a.otherHalfWidth()).Render(a.ticket.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// contentWidth is the width of a single full-width pane
func (a *App) contentWidth() int {
	return max(a.width-panelPadding, 20)
}

// dashboardWidth calculates the width for the dashboard pane
func (a *App) dashboardWidth() int {
	if a.width < minTerminalWidth {
		return a.contentWidth()
	}
	return max(a.width-panelPadding-menuWidth-panelPadding, 20)
}

// halfWidth is the inventory pane width on the sale register
func (a *App) halfWidth() int {
	return max((a.width-panelPadding)/2, 20)
}

// otherHalfWidth is the ticket pane width on the sale register
func (a *App) otherHalfWidth() int {
	return max(a.width-a.halfWidth()-panelPadding*2, 20)
}

// contentHeight calculates the height available for screen content
func (a *App) contentHeight() int {
	// Total overhead:
	// - Header: 1 line
	// - Newline after header: 1 line
	// - ActivePanel border+padding: 4 lines (top border, top padding, bottom padding, bottom border)
	// - Newline before footer: 1 line
	// - Footer: 1 line
	// Total: 8 lines overhead
	return a.height - 8
}

// frameWidth is the header and footer width. One column is left free so
// terminals that wrap at the last column do not break the frame.
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// renderHeader creates the header bar with app branding and the user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	title := "Storefront"
	if a.screen != ScreenHome && a.route.Title != "" && a.form == nil {
		title += " · " + a.route.Title
	} else if a.form != nil {
		title += " · " + a.form.Title()
	}
	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render(title))

	rightText := ""
	if id := a.store.Identity(); id != nil && a.screen != ScreenLogin && a.screen != ScreenRegister {
		rightText = " " + contextStyle.Render(fmt.Sprintf("%s (%s)", id.Name, id.Role.Label())) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	fill := strings.Repeat("─", fillWidth)

	header := "╭─" + leftText + fill + rightText + "─╮"

	return borderStyle.Render(header)
}

// shortcuts lists the keys of the current screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenLoading:
		return []string{"q Quit"}
	case ScreenLogin:
		return []string{"Enter Submit", "ctrl+n Register", "Esc Quit"}
	case ScreenRegister:
		return []string{"Enter Next", "Esc Back"}
	case ScreenProfile:
		return []string{"Enter Save", "Esc Cancel"}
	case ScreenHome:
		return []string{"↑↓ Navigate", "Enter Open", "r Refresh", "q Quit"}
	case ScreenSaleRegister:
		return []string{"Tab Switch", "/ Search", "a Add", "s Submit", "b Back"}
	case ScreenHistory:
		return []string{"←→ Page", "f Filter", "Enter Detail", "b Back"}
	case ScreenRecords:
		return []string{"n New", "e Edit", "d Delete", "r Refresh", "b Back"}
	}
	return nil
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()

	// Build styled shortcuts
	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ") + " "
	leftPlainText := " " + strings.Join(shortcuts, "  ") + " "

	// Right side status (last update time)
	rightText := ""
	rightPlainText := ""
	if a.screen == ScreenHome && !a.lastUpdate.IsZero() {
		elapsed := format.Ago(a.lastUpdate, a.opts.Now())
		rightText = " " + statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = " Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	fill := strings.Repeat("─", fillWidth)

	footer := "╰─" + leftText + fill + rightText + "─╯"

	return borderStyle.Render(footer)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI
func Run(api *client.Client, store *session.Store, opts Options) error {
	p := tea.NewProgram(
		New(api, store, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
