// ABOUTME: Inventory panel of the sale register with live product search
// ABOUTME: Searches carry sequence numbers so only the latest result is shown

package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// Searcher finds products by name; a blank name lists the catalog
type Searcher interface {
	SearchProducts(ctx context.Context, name string) ([]client.Product, error)
}

// debounce is how long typing must pause before a search is sent
const debounce = 250 * time.Millisecond

// AddMsg is sent when the user picks a product for the order
type AddMsg struct {
	Product client.Product
}

// searchTickMsg fires after the debounce delay of search seq
type searchTickMsg struct {
	seq uint64
}

// resultsMsg carries the answer to search seq
type resultsMsg struct {
	seq      uint64
	products []client.Product
	err      error
}

type state int

const (
	stateList state = iota
	stateSearch
)

// Inventory lists products and lets the user search and pick them
type Inventory struct {
	api      Searcher
	input    textinput.Model
	spinner  spinner.Model
	products []client.Product
	cursor   int
	state    state
	seq      uint64 // latest issued search; older results are dropped
	loading  bool
	err      string
	lowStock int
	width    int
	height   int
}

// New creates the panel. lowStock is the threshold for stock highlighting.
func New(api Searcher, lowStock int) *Inventory {
	ti := textinput.New()
	ti.Placeholder = "search products by name"
	ti.Prompt = icons.Search.String() + " "
	ti.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Inventory{api: api, input: ti, spinner: sp, lowStock: lowStock}
}

// Init loads the full catalog
func (inv *Inventory) Init() tea.Cmd {
	return inv.Reload()
}

// Reload repeats the current search immediately, for example after a sale
// changed the stock
func (inv *Inventory) Reload() tea.Cmd {
	inv.seq++
	inv.loading = true
	return tea.Batch(inv.search(inv.seq, inv.input.Value()), inv.spinner.Tick)
}

// Searching reports whether the search box has focus
func (inv *Inventory) Searching() bool {
	return inv.state == stateSearch
}

// Products returns the products currently listed
func (inv *Inventory) Products() []client.Product {
	return inv.products
}

// SetSize updates the panel dimensions
func (inv *Inventory) SetSize(width, height int) {
	inv.width = width
	inv.height = height
	inv.input.Width = max(10, width-6)
}

// Update implements tea.Model
func (inv *Inventory) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsMsg:
		if msg.seq != inv.seq {
			return inv, nil
		}
		inv.loading = false
		if msg.err != nil {
			inv.err = msg.err.Error()
			return inv, nil
		}
		inv.err = ""
		inv.products = msg.products
		inv.cursor = min(inv.cursor, max(0, len(inv.products)-1))
		return inv, nil

	case searchTickMsg:
		if msg.seq != inv.seq {
			return inv, nil
		}
		inv.loading = true
		return inv, tea.Batch(inv.search(msg.seq, inv.input.Value()), inv.spinner.Tick)

	case spinner.TickMsg:
		if !inv.loading {
			return inv, nil
		}
		var cmd tea.Cmd
		inv.spinner, cmd = inv.spinner.Update(msg)
		return inv, cmd

	case tea.KeyMsg:
		if inv.state == stateSearch {
			return inv.updateSearch(msg)
		}
		return inv.updateList(msg)
	}
	return inv, nil
}

func (inv *Inventory) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if inv.cursor > 0 {
			inv.cursor--
		}
	case "down", "j":
		if inv.cursor < len(inv.products)-1 {
			inv.cursor++
		}
	case "/":
		inv.state = stateSearch
		inv.input.Focus()
		return inv, textinput.Blink
	case "enter", "a":
		if inv.cursor < len(inv.products) {
			p := inv.products[inv.cursor]
			return inv, func() tea.Msg { return AddMsg{Product: p} }
		}
	case "r":
		return inv, inv.Reload()
	}
	return inv, nil
}

func (inv *Inventory) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		inv.state = stateList
		inv.input.Blur()
		return inv, nil
	}

	before := inv.input.Value()
	var cmd tea.Cmd
	inv.input, cmd = inv.input.Update(msg)
	if inv.input.Value() == before {
		return inv, cmd
	}

	inv.seq++
	inv.cursor = 0
	seq := inv.seq
	tick := tea.Tick(debounce, func(time.Time) tea.Msg { return searchTickMsg{seq: seq} })
	return inv, tea.Batch(cmd, tick)
}

// search issues request seq for query
func (inv *Inventory) search(seq uint64, query string) tea.Cmd {
	api := inv.api
	return func() tea.Msg {
		products, err := api.SearchProducts(context.Background(), strings.TrimSpace(query))
		return resultsMsg{seq: seq, products: products, err: err}
	}
}

// View implements tea.Model
func (inv *Inventory) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(icons.Product.String() + " Inventory"))
	b.WriteString("\n")
	b.WriteString(inv.input.View())
	if inv.loading {
		b.WriteString(" " + inv.spinner.View())
	}
	b.WriteString("\n\n")

	switch {
	case inv.err != "":
		b.WriteString(styles.ErrorText.Render("Error: " + inv.err))
	case len(inv.products) == 0 && !inv.loading:
		b.WriteString(styles.Subtitle.Render("No products found"))
	default:
		b.WriteString(inv.renderRows())
	}

	return lipgloss.NewStyle().Width(inv.width).Render(b.String())
}

func (inv *Inventory) renderRows() string {
	visible := len(inv.products)
	if inv.height > 6 {
		visible = min(visible, inv.height-6)
	}
	start := 0
	if inv.cursor >= visible {
		start = inv.cursor - visible + 1
	}

	nameWidth := max(12, inv.width-26)
	var rows []string
	for i := start; i < start+visible && i < len(inv.products); i++ {
		p := inv.products[i]
		name := p.Name
		if len([]rune(name)) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}
		row := fmt.Sprintf("%-*s %10s ", nameWidth, name, format.MoneyFloat(p.Price))
		cursor := "  "
		if i == inv.cursor && inv.state == stateList {
			cursor = "> "
			row = styles.Selected.Render(row)
		}
		rows = append(rows, cursor+row+widgets.StockBadge(p.Stock, inv.lowStock))
	}
	return strings.Join(rows, "\n")
}
