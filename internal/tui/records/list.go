// ABOUTME: Generic list screen for catalog records with edit and delete
// ABOUTME: Deletes remove the row locally and mark the list stale until reloaded

package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/tui/forms"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
	"github.com/markalston/storefront/internal/tui/widgets"
)

// Record is one row of a list
type Record struct {
	ID    string
	Label string
	Cells []string
	Value any
}

// Source supplies a list's records and persists changes to them. Load runs
// off the event loop.
type Source interface {
	Title() string
	Icon() icons.Icon
	Columns(width int) []table.Column
	Load(ctx context.Context) ([]Record, error)
	// Form edits r, or creates a record when r is nil. A nil form means
	// the action is not offered.
	Form(r *Record) *forms.Form
	Save(ctx context.Context, result any) error
	Delete(ctx context.Context, id string) error
}

// deleteChecker lets a source refuse deletion of some records
type deleteChecker interface {
	CanDelete(r Record) error
}

type loadedMsg struct {
	seq     uint64
	records []Record
	err     error
}

type savedMsg struct {
	err error
}

type deletedMsg struct {
	id    string
	label string
	err   error
}

// List shows the records of one source
type List struct {
	src     Source
	records []Record
	table   table.Model
	form    *forms.Form
	seq     uint64
	loading bool
	stale   bool
	loaded  bool
	err     string
	notice  string
	width   int
	height  int
}

// New creates a list over src
func New(src Source) *List {
	t := table.New(
		table.WithColumns(src.Columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
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
	return &List{src: src, table: t}
}

// Records returns the shown records
func (l *List) Records() []Record {
	return l.records
}

// Stale reports whether local changes have not been re-synced yet
func (l *List) Stale() bool {
	return l.stale
}

// Editing reports whether a form is open over the list
func (l *List) Editing() bool {
	return l.form != nil
}

// SetSize updates the screen dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.table.SetColumns(l.src.Columns(width))
	l.table.SetHeight(max(3, height-6))
	if l.form != nil {
		l.form.SetWidth(width)
	}
}

// Init loads the records
func (l *List) Init() tea.Cmd {
	return l.Reload()
}

// Reload fetches every record again, replacing local changes
func (l *List) Reload() tea.Cmd {
	l.seq++
	l.loading = true
	seq, src := l.seq, l.src
	return func() tea.Msg {
		records, err := src.Load(context.Background())
		return loadedMsg{seq: seq, records: records, err: err}
	}
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.seq != l.seq {
			return l, nil
		}
		l.loading = false
		if msg.err != nil {
			l.err = msg.err.Error()
			return l, nil
		}
		l.err = ""
		l.stale = false
		l.loaded = true
		l.setRecords(msg.records)
		return l, nil

	case savedMsg:
		if msg.err != nil {
			if l.form == nil {
				l.err = msg.err.Error()
				return l, nil
			}
			l.form.SetError(msg.err.Error())
			return l, l.form.Reset()
		}
		l.form = nil
		l.notice = "Saved"
		return l, l.Reload()

	case deletedMsg:
		if msg.err != nil {
			l.err = msg.err.Error()
			return l, nil
		}
		l.remove(msg.id)
		l.stale = true
		l.notice = fmt.Sprintf("Deleted %s", msg.label)
		return l, nil

	case forms.SubmittedMsg:
		return l, l.submitted(msg)

	case forms.CancelledMsg:
		l.form = nil
		return l, nil
	}

	if l.form != nil {
		model, cmd := l.form.Update(msg)
		l.form = model.(*forms.Form)
		return l, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return l.updateKeys(key)
	}
	return l, nil
}

func (l *List) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		l.notice = ""
		return l, l.Reload()
	case "n":
		return l, l.open(l.src.Form(nil))
	case "e", "enter":
		if r, ok := l.selected(); ok {
			return l, l.open(l.src.Form(&r))
		}
		return l, nil
	case "d", "delete":
		r, ok := l.selected()
		if !ok {
			return l, nil
		}
		if dc, ok := l.src.(deleteChecker); ok {
			if err := dc.CanDelete(r); err != nil {
				l.err = err.Error()
				return l, nil
			}
		}
		return l, l.open(forms.NewConfirm(fmt.Sprintf("Delete %s?", r.Label), r.ID))
	}

	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return l, cmd
}

func (l *List) open(f *forms.Form) tea.Cmd {
	if f == nil {
		return nil
	}
	l.err = ""
	l.notice = ""
	l.form = f
	l.form.SetWidth(l.width)
	return l.form.Init()
}

func (l *List) submitted(msg forms.SubmittedMsg) tea.Cmd {
	src := l.src
	if res, ok := msg.Result.(forms.ConfirmResult); ok {
		l.form = nil
		if !res.Confirmed {
			return nil
		}
		label := res.Target
		for _, r := range l.records {
			if r.ID == res.Target {
				label = r.Label
			}
		}
		return func() tea.Msg {
			err := src.Delete(context.Background(), res.Target)
			if err != nil {
				slog.Warn("Delete failed", "list", src.Title(), "id", res.Target, "error", err)
			}
			return deletedMsg{id: res.Target, label: label, err: err}
		}
	}
	result := msg.Result
	return func() tea.Msg {
		return savedMsg{err: src.Save(context.Background(), result)}
	}
}

func (l *List) selected() (Record, bool) {
	i := l.table.Cursor()
	if i < 0 || i >= len(l.records) {
		return Record{}, false
	}
	return l.records[i], true
}

func (l *List) setRecords(records []Record) {
	l.records = records
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row(r.Cells))
	}
	l.table.SetRows(rows)
	if l.table.Cursor() >= len(rows) {
		l.table.SetCursor(max(0, len(rows)-1))
	}
}

// remove drops a record locally after a confirmed delete
func (l *List) remove(id string) {
	kept := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.setRecords(kept)
}

// View implements tea.Model
func (l *List) View() string {
	if l.form != nil {
		return l.form.View()
	}

	var b strings.Builder
	title := l.src.Icon().String() + " " + l.src.Title()
	b.WriteString(styles.Title.Render(title))
	if l.stale {
		b.WriteString("  " + styles.Help.Render("(changed locally · r to refresh)"))
	}
	b.WriteString("\n")

	if l.err != "" {
		b.WriteString(styles.ErrorText.Render("Error: "+l.err) + "\n\n")
	}
	if l.notice != "" {
		b.WriteString(widgets.StatusText(l.notice, widgets.StatusOK) + "\n\n")
	}

	switch {
	case !l.loaded && l.loading:
		b.WriteString("Loading...")
	case l.loaded && len(l.records) == 0:
		b.WriteString(styles.Subtitle.Render("Nothing here yet"))
	case l.loaded:
		b.WriteString(l.table.View())
		b.WriteString("\n\n")
		b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d records", len(l.records))))
	}
	return lipgloss.NewStyle().Width(l.width).Render(b.String())
}
