// ABOUTME: Bubbletea model that runs a sequence of huh form steps
// ABOUTME: Emits SubmittedMsg with a typed result or CancelledMsg on escape

package forms

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/storefront/internal/tui/icons"
	"github.com/markalston/storefront/internal/tui/styles"
)

// Kind identifies which form produced a message
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
	KindProduct
	KindCategory
	KindUser
	KindProfile
	KindConfirm
)

// SubmittedMsg is sent when the last step completes. Result holds the
// form's typed value, for example client.LoginRequest or ProductResult.
type SubmittedMsg struct {
	Kind   Kind
	Result any
}

// CancelledMsg is sent when the form is dismissed with escape
type CancelledMsg struct {
	Kind Kind
}

// step is one page of a form
type step struct {
	name  string
	build func() *huh.Form
}

// Form wraps one or more huh forms as a single bubbletea model
type Form struct {
	kind   Kind
	title  string
	steps  []step
	index  int
	form   *huh.Form
	result func() any
	err    string
	width  int
}

func newForm(kind Kind, title string, result func() any, steps ...step) *Form {
	f := &Form{kind: kind, title: title, steps: steps, result: result}
	f.form = steps[0].build()
	return f
}

// Kind returns what the form collects
func (f *Form) Kind() Kind {
	return f.kind
}

// Title is shown in the app header while the form is open
func (f *Form) Title() string {
	return f.title
}

// SetError shows a message above the form, typically the backend's answer
// to the last submission
func (f *Form) SetError(msg string) {
	f.err = msg
}

// Reset reopens the form at its first step, keeping the entered values
func (f *Form) Reset() tea.Cmd {
	f.index = 0
	f.form = f.steps[0].build()
	return f.form.Init()
}

// SetWidth sets the form width for proper rendering
func (f *Form) SetWidth(width int) {
	f.width = width
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			kind := f.kind
			return f, func() tea.Msg { return CancelledMsg{Kind: kind} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		return f, f.advance()
	}
	return f, cmd
}

// advance moves to the next step or submits after the last one
func (f *Form) advance() tea.Cmd {
	if f.index+1 < len(f.steps) {
		f.index++
		f.form = f.steps[f.index].build()
		return f.form.Init()
	}
	msg := SubmittedMsg{Kind: f.kind, Result: f.result()}
	return func() tea.Msg { return msg }
}

// Result returns the value the form would submit with its current fields
func (f *Form) Result() any {
	return f.result()
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	if len(f.steps) > 1 {
		sb.WriteString(f.renderProgress())
		sb.WriteString("\n\n")
	}
	if f.err != "" {
		sb.WriteString(styles.ErrorText.Render(icons.Critical.String() + " " + f.err))
		sb.WriteString("\n\n")
	}
	sb.WriteString(f.form.View())
	return sb.String()
}

// renderProgress renders the step indicator of multi-step forms
func (f *Form) renderProgress() string {
	width := max(f.width-1, 50)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var names []string
	for i, s := range f.steps {
		var indicator string
		var nameStyle lipgloss.Style
		switch {
		case i < f.index:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case i == f.index:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}
		names = append(names, fmt.Sprintf("%s %s", indicator, nameStyle.Render(s.name)))
	}
	stepsLine := strings.Join(names, "    ")

	barWidth := width - 5
	filled := ((f.index + 1) * barWidth) / len(f.steps)
	bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filled))

	title := "Progress"
	top := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(title))) + "┐"
	stepsRow := "│ " + stepsLine + strings.Repeat(" ", max(0, width-4-lipgloss.Width(stepsLine))) + " │"
	barRow := "│  " + bar + " │"
	bottom := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{top, stepsRow, barRow, bottom}, "\n"))
}
