// ABOUTME: Sales history screen with date filter, paging and sale detail
// ABOUTME: Uses a bubbles table over one page of the backend's sales list

package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/analytics"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/widgets"
	"github.com/shopspring/decimal"
)

// DefaultLimit is the page size of the history table
const DefaultLimit = 10

// Lister reads recorded sales
type Lister interface {
	ListSales(ctx context.Context, f client.SalesFilter) (*client.SalesPage, error)
	GetSale(ctx context.Context, id string) (*client.Sale, bool)
}

// pageMsg carries the answer to load seq
type pageMsg struct {
	seq  uint64
	page *client.SalesPage
	err  error
}

// detailMsg carries a sale opened from the table
type detailMsg struct {
	id   string
	sale *client.Sale
	ok   bool
}

type state int

const (
	stateTable state = iota
	stateFilter
	stateDetail
)

// History lists sales page by page
type History struct {
	api     Lister
	filter  client.SalesFilter
	page    *client.SalesPage
	table   table.Model
	inputs  [2]textinput.Model // start and end date
	focus   int
	state   state
	detail  *client.Sale
	seq     uint64
	loading bool
	err     string
	warning string
	width   int
	height  int
}

// New creates the screen showing the week before now
func New(api Lister, now time.Time) *History {
	f := analytics.LastWeek(now)
	f.Page, f.Limit = 1, DefaultLimit

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(DefaultLimit),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(styles.Text).
		Background(styles.Surface).
		Bold(true)
	t.SetStyles(st)

	h := &History{api: api, filter: f, table: t}
	for i, label := range []string{"From ", "To   "} {
		ti := textinput.New()
		ti.Prompt = label
		ti.Placeholder = client.DateLayout
		ti.CharLimit = len(client.DateLayout)
		h.inputs[i] = ti
	}
	return h
}

func columns(width int) []table.Column {
	seller := max(12, width-60)
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Seller", Width: seller},
		{Title: "Items", Width: 6},
		{Title: "Total", Width: 12},
		{Title: "Id", Width: 14},
	}
}

// Filter returns the filter of the shown page
func (h *History) Filter() client.SalesFilter {
	return h.filter
}

// Page returns the shown page, nil before the first load
func (h *History) Page() *client.SalesPage {
	return h.page
}

// Modal reports whether the filter or a sale detail has the keyboard
func (h *History) Modal() bool {
	return h.state != stateTable
}

// SetSize updates the screen dimensions
func (h *History) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.table.SetColumns(columns(width))
	h.table.SetHeight(max(3, min(DefaultLimit+1, height-8)))
}

// Init loads the first page
func (h *History) Init() tea.Cmd {
	return h.Reload()
}

// Reload fetches the page of the current filter
func (h *History) Reload() tea.Cmd {
	h.seq++
	h.loading = true
	seq, f, api := h.seq, h.filter, h.api
	return func() tea.Msg {
		page, err := api.ListSales(context.Background(), f)
		return pageMsg{seq: seq, page: page, err: err}
	}
}

// Update implements tea.Model
func (h *History) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		if msg.seq != h.seq {
			return h, nil
		}
		h.apply(msg)
		return h, nil

	case detailMsg:
		h.loading = false
		if !msg.ok {
			h.err = fmt.Sprintf("sale %s not found", msg.id)
			return h, nil
		}
		h.detail = msg.sale
		h.state = stateDetail
		return h, nil

	case tea.KeyMsg:
		switch h.state {
		case stateFilter:
			return h.updateFilter(msg)
		case stateDetail:
			if s := msg.String(); s == "esc" || s == "b" || s == "enter" {
				h.state = stateTable
				h.detail = nil
			}
			return h, nil
		}
		return h.updateTable(msg)
	}
	return h, nil
}

// apply shows a loaded page. A response in an unknown shape shows as an
// empty page with a warning.
func (h *History) apply(msg pageMsg) {
	h.loading = false
	h.err, h.warning = "", ""

	var decodeErr *client.DecodeError
	switch {
	case errors.As(msg.err, &decodeErr):
		h.warning = decodeErr.Error()
		h.page = &client.SalesPage{CurrentPage: h.filter.Page}
	case msg.err != nil:
		h.err = msg.err.Error()
		return
	default:
		h.page = msg.page
	}

	rows := make([]table.Row, 0, len(h.page.Sales))
	for _, s := range h.page.Sales {
		items := 0
		for _, d := range s.Detail {
			items += d.AmountSold
		}
		rows = append(rows, table.Row{
			format.SaleDate(s.Date),
			s.User.DisplayName(),
			fmt.Sprintf("%d", items),
			format.MoneyFloat(s.Total),
			s.ID,
		})
	}
	h.table.SetRows(rows)
	h.table.SetCursor(0)
}

func (h *History) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "right":
		if h.page != nil && h.filter.Page < h.page.TotalPages {
			h.filter.Page++
			return h, h.Reload()
		}
		return h, nil
	case "p", "left":
		if h.filter.Page > 1 {
			h.filter.Page--
			return h, h.Reload()
		}
		return h, nil
	case "r":
		return h, h.Reload()
	case "f":
		h.state = stateFilter
		h.focus = 0
		h.inputs[0].SetValue(h.filter.StartDate)
		h.inputs[1].SetValue(h.filter.EndDate)
		h.inputs[1].Blur()
		h.inputs[0].Focus()
		return h, textinput.Blink
	case "enter":
		row := h.table.SelectedRow()
		if len(row) == 0 {
			return h, nil
		}
		id, api := row[len(row)-1], h.api
		h.loading = true
		return h, func() tea.Msg {
			sale, ok := api.GetSale(context.Background(), id)
			return detailMsg{id: id, sale: sale, ok: ok}
		}
	}

	var cmd tea.Cmd
	h.table, cmd = h.table.Update(msg)
	return h, cmd
}

func (h *History) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.state = stateTable
		h.err = ""
		return h, nil
	case "tab", "shift+tab", "up", "down":
		h.inputs[h.focus].Blur()
		h.focus = 1 - h.focus
		h.inputs[h.focus].Focus()
		return h, textinput.Blink
	case "enter":
		f := h.filter
		f.StartDate = strings.TrimSpace(h.inputs[0].Value())
		f.EndDate = strings.TrimSpace(h.inputs[1].Value())
		f.Page = 1
		if err := f.Validate(); err != nil {
			h.err = err.Error()
			return h, nil
		}
		h.err = ""
		h.filter = f
		h.state = stateTable
		return h, h.Reload()
	}
	var cmd tea.Cmd
	h.inputs[h.focus], cmd = h.inputs[h.focus].Update(msg)
	return h, cmd
}

// pageTotal sums the totals of the shown sales
func (h *History) pageTotal() decimal.Decimal {
	total := decimal.Zero
	if h.page == nil {
		return total
	}
	for _, s := range h.page.Sales {
		total = total.Add(decimal.NewFromFloat(s.Total))
	}
	return total
}

// View implements tea.Model
func (h *History) View() string {
	if h.state == stateDetail && h.detail != nil {
		return h.viewDetail()
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(icons.Receipt.String() + " Sales history"))
	b.WriteString("\n")

	if h.state == stateFilter {
		b.WriteString(h.inputs[0].View() + "\n" + h.inputs[1].View() + "\n\n")
	} else {
		b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s to %s", h.filter.StartDate, h.filter.EndDate)))
		b.WriteString("\n")
	}

	if h.err != "" {
		b.WriteString(styles.ErrorText.Render("Error: "+h.err) + "\n\n")
	}
	if h.warning != "" {
		b.WriteString(widgets.StatusText(h.warning, widgets.StatusWarning) + "\n\n")
	}

	switch {
	case h.page == nil && h.loading:
		b.WriteString("Loading sales...")
	case h.page != nil && len(h.page.Sales) == 0:
		b.WriteString(styles.Subtitle.Render("No sales in this range"))
	case h.page != nil:
		b.WriteString(h.table.View())
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Page %d of %d · %s sales · page total %s",
			h.page.CurrentPage, max(h.page.TotalPages, 1), format.Count(h.page.TotalCount),
			styles.Amount.Render(format.Money(h.pageTotal()))))
	}

	return lipgloss.NewStyle().Width(h.width).Render(b.String())
}

func (h *History) viewDetail() string {
	s := h.detail
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("%s Sale %s", icons.Receipt.String(), s.ID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Date:   %s\n", format.SaleDate(s.Date)))
	b.WriteString(fmt.Sprintf("Seller: %s\n\n", s.User.DisplayName()))

	for _, d := range s.Detail {
		b.WriteString(fmt.Sprintf("  %-28s %4d  %12s\n", d.Name, d.AmountSold, format.MoneyFloat(d.Subtotal)))
	}
	b.WriteString("\n")
	b.WriteString("Total: " + styles.Amount.Render(format.MoneyFloat(s.Total)))
	return lipgloss.NewStyle().Width(h.width).Render(b.String())
}
