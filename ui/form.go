package ui

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/metascrape/pkg/common"
)

// ErrInvalidURL is returned when the input is not an absolute http(s) URL
var ErrInvalidURL = errors.New("not a valid url")

// SubmitDoneMsg carries the outcome of a submission back to the event loop
type SubmitDoneMsg struct {
	URL    string
	Status common.SubmitStatus
	Err    error
}

// Form is the URL submission form: one text input and a submit control
type Form struct {
	input   textinput.Model
	spinner spinner.Model
	busy    bool
	width   int
	style   lipgloss.Style
}

// NewForm creates a focused, empty form
func NewForm() *Form {
	ti := textinput.New()
	ti.Placeholder = "https://example.com"
	ti.Prompt = "URL › "
	ti.CharLimit = 2048
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	return &Form{
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(busyStyle)),
		style:   borderStyle.BorderForeground(lipgloss.Color("63")).Padding(0, 1),
	}
}

// Value returns the current input
func (f *Form) Value() string {
	return f.input.Value()
}

// SetValue replaces the current input
func (f *Form) SetValue(s string) {
	f.input.SetValue(s)
}

// Reset clears the input
func (f *Form) Reset() {
	f.input.Reset()
}

// Busy reports whether a submission is in flight
func (f *Form) Busy() bool {
	return f.busy
}

// SetBusy toggles the busy indicator. Becoming busy starts the spinner.
func (f *Form) SetBusy(busy bool) tea.Cmd {
	wasBusy := f.busy
	f.busy = busy
	if busy && !wasBusy {
		return f.spinner.Tick
	}
	return nil
}

// Submit validates the input and returns the command that posts it.
// Nothing is sent when validation fails.
func (f *Form) Submit(ctx context.Context, c Client) (tea.Cmd, error) {
	raw := strings.TrimSpace(f.input.Value())
	if raw == "" {
		return nil, common.ErrEmptyInput
	}
	if !looksLikeURL(raw) {
		return nil, ErrInvalidURL
	}

	return func() tea.Msg {
		status, err := c.Submit(ctx, raw)
		return SubmitDoneMsg{URL: raw, Status: status, Err: err}
	}, nil
}

// Update forwards input events to the text field and animates the spinner while busy
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !f.busy {
			return nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// SetSize sets the outer width of the form box
func (f *Form) SetSize(width int) {
	f.width = width
	f.input.Width = max(10, width-12)
}

// View renders the form
func (f *Form) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Meta Data Scraper") + "\n")
	b.WriteString(subtitleStyle.Render("Paste a url to get its meta") + "\n\n")
	b.WriteString(f.input.View() + "\n\n")

	if f.busy {
		b.WriteString(f.spinner.View() + busyStyle.Render(" Scraping…"))
	} else {
		b.WriteString(buttonStyle.Render("Submit →"))
	}

	style := f.style
	if f.width > 0 {
		style = style.Width(f.width - 2)
	}
	return style.Render(b.String())
}

func looksLikeURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
