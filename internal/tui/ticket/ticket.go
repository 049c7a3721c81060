// ABOUTME: Order ticket panel of the sale register
// ABOUTME: Edits quantities of the in-progress order and requests submission

package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/client"
	"github.com/markalston/storefront/internal/format"
	"github.com/markalston/storefront/internal/order"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// SubmitMsg asks the app to record the order
type SubmitMsg struct{}

// Ticket shows the lines of the order being composed
type Ticket struct {
	order      *order.Composer
	cursor     int
	editing    bool
	qty        textinput.Model
	notice     string
	level      widgets.StatusLevel
	submitting bool
	width      int
	height     int
}

// New creates an empty ticket
func New() *Ticket {
	ti := textinput.New()
	ti.Prompt = "Quantity: "
	ti.CharLimit = 6
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errors.New("digits only")
			}
		}
		return nil
	}
	return &Ticket{order: order.New(), qty: ti}
}

// Order returns the composer behind the ticket
func (t *Ticket) Order() *order.Composer {
	return t.order
}

// Settle ends a successful submission by taking the sold lines off the
// order. Products added meanwhile remain.
func (t *Ticket) Settle(sold []order.Line) {
	t.order.Settle(sold)
	t.submitting = false
	t.clampCursor()
}

// Release ends a failed submission. checked holds the lines as the
// submission last saw them, with refreshed stock.
func (t *Ticket) Release(checked []order.Line) {
	t.order.RefreshProducts(checked)
	t.submitting = false
	t.clampCursor()
}

// Submitting reports whether a submission is in flight
func (t *Ticket) Submitting() bool {
	return t.submitting
}

// SetSubmitting locks the ticket while the sale is being recorded
func (t *Ticket) SetSubmitting(v bool) {
	t.submitting = v
}

// Editing reports whether the quantity input has focus
func (t *Ticket) Editing() bool {
	return t.editing
}

// SetNotice shows a status line under the totals
func (t *Ticket) SetNotice(msg string, level widgets.StatusLevel) {
	t.notice = msg
	t.level = level
}

// SetSize updates the panel dimensions
func (t *Ticket) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Add puts one unit of p on the ticket. Out-of-stock products are ignored.
func (t *Ticket) Add(p client.Product) {
	t.show(t.order.Add(p))
	if i := t.indexOf(p.ID); i >= 0 {
		t.cursor = i
	}
}

// show turns a composer error into the notice line. Silent rejections
// leave the current notice alone.
func (t *Ticket) show(err error) {
	var stockErr *order.StockError
	switch {
	case err == nil:
		t.notice = ""
	case errors.As(err, &stockErr):
		t.SetNotice(stockErr.Error(), widgets.StatusWarning)
	case errors.Is(err, order.ErrOutOfStock), errors.Is(err, order.ErrInvalidQuantity):
	default:
		t.SetNotice(err.Error(), widgets.StatusCritical)
	}
}

// Init implements tea.Model
func (t *Ticket) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (t *Ticket) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || t.submitting {
		return t, nil
	}
	if t.editing {
		return t.updateEditing(key)
	}

	lines := t.order.Lines()
	switch key.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(lines)-1 {
			t.cursor++
		}
	case "+", "=":
		if l, ok := t.selected(); ok {
			t.show(t.order.SetQuantity(l.Product.ID, l.Quantity+1))
		}
	case "-":
		if l, ok := t.selected(); ok {
			t.show(t.order.SetQuantity(l.Product.ID, l.Quantity-1))
		}
	case "e":
		if l, ok := t.selected(); ok {
			t.editing = true
			t.qty.SetValue(strconv.Itoa(l.Quantity))
			t.qty.CursorEnd()
			t.qty.Focus()
			return t, textinput.Blink
		}
	case "d", "delete", "backspace":
		if l, ok := t.selected(); ok {
			t.order.Remove(l.Product.ID)
			t.notice = ""
			t.clampCursor()
		}
	case "x":
		t.order.Clear()
		t.cursor = 0
		t.notice = ""
	case "s", "ctrl+s":
		return t, func() tea.Msg { return SubmitMsg{} }
	}
	return t, nil
}

func (t *Ticket) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		t.editing = false
		t.qty.Blur()
		return t, nil
	case "enter":
		t.editing = false
		t.qty.Blur()
		q, err := strconv.Atoi(t.qty.Value())
		if err != nil {
			q = 0
		}
		if l, ok := t.selected(); ok {
			t.show(t.order.SetQuantity(l.Product.ID, q))
		}
		return t, nil
	}
	var cmd tea.Cmd
	t.qty, cmd = t.qty.Update(key)
	return t, cmd
}

func (t *Ticket) selected() (order.Line, bool) {
	lines := t.order.Lines()
	if t.cursor < 0 || t.cursor >= len(lines) {
		return order.Line{}, false
	}
	return lines[t.cursor], true
}

func (t *Ticket) indexOf(id string) int {
	for i, l := range t.order.Lines() {
		if l.Product.ID == id {
			return i
		}
	}
	return -1
}

func (t *Ticket) clampCursor() {
	t.cursor = max(0, min(t.cursor, t.order.Len()-1))
}

// View implements tea.Model
func (t *Ticket) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(icons.Cart.String() + " Order"))
	b.WriteString("\n")

	lines := t.order.Lines()
	if len(lines) == 0 {
		b.WriteString(styles.Subtitle.Render("Pick products from the inventory to start a sale"))
		b.WriteString("\n")
	}

	nameWidth := max(10, t.width-30)
	for i, l := range lines {
		name := l.Product.Name
		if len([]rune(name)) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}
		row := fmt.Sprintf("%-*s %4d × %-9s %10s", nameWidth, name, l.Quantity,
			format.MoneyFloat(l.Product.Price), format.Money(l.Subtotal()))
		cursor := "  "
		if i == t.cursor {
			cursor = "> "
			row = styles.Selected.Render(row)
		}
		b.WriteString(cursor + row + "\n")
	}

	if t.editing {
		b.WriteString("\n" + t.qty.View() + "\n")
	}

	items, amount := t.order.Totals()
	divider := lipgloss.NewStyle().Foreground(styles.Muted).Render(strings.Repeat("─", max(20, min(t.width-2, 60))))
	b.WriteString(divider + "\n")
	b.WriteString(fmt.Sprintf("%s   Total %s\n", format.Units(items), styles.Amount.Render(format.Money(amount))))

	switch {
	case t.submitting:
		b.WriteString("\n" + widgets.StatusText("Recording sale...", widgets.StatusInfo))
	case t.notice != "":
		b.WriteString("\n" + widgets.StatusText(t.notice, t.level))
	}

	return lipgloss.NewStyle().Width(t.width).Render(b.String())
}
