package ui

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/metascrape/pkg/common"
)

// Client is what the page needs from the scrape service
type Client interface {
	List(ctx context.Context) ([]common.ScrapedItem, error)
	Submit(ctx context.Context, url string) (common.SubmitStatus, error)
}

// ListLoadedMsg carries the result of a list fetch
type ListLoadedMsg struct {
	Items []common.ScrapedItem
	Err   error
}

const (
	msgCreated       = "URL submitted and data scraped successfully."
	msgAlreadyExists = "URL already exists."
	msgSubmitFailed  = "Failed to submit URL."
	msgEmptyInput    = "Please enter a URL."
	msgInvalidURL    = "Please enter a valid URL."
)

// Define common styles
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			PaddingLeft(1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("238")).
			Padding(0, 2)

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// PageOptions configures a Page
type PageOptions struct {
	Logger     *log.Logger
	NoticeMode NoticeMode
	NoticeTTL  time.Duration
	Endpoint   string
}

// Page is the top level model. It owns the item list and the loading flag,
// and refreshes the list after a URL is newly scraped.
type Page struct {
	ctx     context.Context
	client  Client
	logger  *log.Logger
	form    *Form
	cards   *CardGrid
	notices *Notices
	status  *StatusBar

	items       []common.ScrapedItem
	loading     bool
	lastRefresh time.Time
	endpoint    string
	submitted   int
	failed      int
	quitting    bool

	width  int
	height int
}

// NewPage builds the page around client. The client is shared by every child.
func NewPage(ctx context.Context, client Client, opts PageOptions) *Page {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &Page{
		ctx:      ctx,
		client:   client,
		logger:   logger,
		form:     NewForm(),
		cards:    NewCardGrid(),
		notices:  NewNotices(opts.NoticeMode, opts.NoticeTTL),
		status:   NewStatusBar(),
		endpoint: opts.Endpoint,
	}
	p.updateStats()
	return p
}

// Init fetches the list once
func (p *Page) Init() tea.Cmd {
	return p.Refresh()
}

// Refresh returns the command that re-fetches the list
func (p *Page) Refresh() tea.Cmd {
	ctx, c := p.ctx, p.client
	return func() tea.Msg {
		items, err := c.List(ctx)
		return ListLoadedMsg{Items: items, Err: err}
	}
}

// Update handles all the updates and state transitions
func (p *Page) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.quitting {
		return p, nil
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			p.quitting = true
			return p, tea.Quit
		case "enter":
			cmds = append(cmds, p.submit())
		case "ctrl+r":
			cmds = append(cmds, p.Refresh())
		case "up", "down", "pgup", "pgdown":
			cmds = append(cmds, p.cards.Update(msg))
		default:
			cmds = append(cmds, p.form.Update(msg))
		}

	case ListLoadedMsg:
		if msg.Err != nil {
			// the page stays usable with whatever it already shows
			p.logger.Error("Failed to fetch scraped data", "error", msg.Err)
			break
		}
		p.items = msg.Items
		p.cards.SetItems(msg.Items)
		p.lastRefresh = time.Now()
		p.logger.Debug("Scraped data refreshed", "count", len(msg.Items))

	case SubmitDoneMsg:
		cmds = append(cmds, p.finishSubmit(msg))

	case noticeExpiredMsg:
		cmds = append(cmds, p.notices.Update(msg))

	default:
		cmds = append(cmds, p.form.Update(msg), p.cards.Update(msg))
	}

	p.updateStats()
	return p, tea.Batch(cmds...)
}

func (p *Page) submit() tea.Cmd {
	if p.loading {
		return nil
	}

	cmd, err := p.form.Submit(p.ctx, p.client)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmptyInput):
			return p.notices.Push(LevelError, msgEmptyInput)
		default:
			return p.notices.Push(LevelError, msgInvalidURL)
		}
	}

	p.logger.Info("Submitting URL", "url", p.form.Value())
	return tea.Batch(p.setLoading(true), cmd)
}

func (p *Page) finishSubmit(msg SubmitDoneMsg) tea.Cmd {
	p.setLoading(false)
	p.form.Reset()
	p.submitted++

	if msg.Err != nil {
		p.failed++
		p.logger.Error("Failed to submit URL", "url", msg.URL, "error", msg.Err)
		return p.notices.Push(LevelError, msgSubmitFailed)
	}

	switch msg.Status {
	case common.StatusCreated:
		p.logger.Info("URL scraped", "url", msg.URL)
		return tea.Batch(p.notices.Push(LevelSuccess, msgCreated), p.Refresh())
	case common.StatusAlreadyExists:
		p.logger.Info("URL already known", "url", msg.URL)
		return p.notices.Push(LevelInfo, msgAlreadyExists)
	default:
		p.failed++
		p.logger.Warn("Unknown submit status", "url", msg.URL, "status", msg.Status)
		return p.notices.Push(LevelError, msgSubmitFailed)
	}
}

func (p *Page) setLoading(loading bool) tea.Cmd {
	p.loading = loading
	return p.form.SetBusy(loading)
}

// SetSize adjusts the layout to the terminal dimensions
func (p *Page) SetSize(width, height int) {
	p.width = width
	p.height = height

	formWidth := min(width, 72)
	p.form.SetSize(formWidth)
	p.notices.SetSize(width)
	p.status.SetSize(width)

	// form box, notices and status bar take the top and bottom of the screen
	used := lipgloss.Height(p.form.View()) + maxToasts + 4
	p.cards.SetSize(width, height-used)
}

func (p *Page) updateStats() {
	p.status.UpdateStats(PageStats{
		Endpoint:    p.endpoint,
		Items:       len(p.items),
		Submitted:   p.submitted,
		Failed:      p.failed,
		Loading:     p.loading,
		LastRefresh: p.lastRefresh,
	})
}

// View renders the complete page
func (p *Page) View() string {
	if p.quitting {
		return ""
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		p.form.View(),
		p.notices.View(),
		headerStyle.Render("Scraped Data"),
		p.cards.View(),
		p.status.View(),
	)
}

// Loading reports whether a submission is in flight
func (p *Page) Loading() bool {
	return p.loading
}

// Items returns the last successfully fetched list
func (p *Page) Items() []common.ScrapedItem {
	return p.items
}

// Cards returns the cards rendered for the current list
func (p *Page) Cards() []Card {
	return p.cards.Cards()
}

// Form exposes the submission form
func (p *Page) Form() *Form {
	return p.form
}

// Notices exposes the notice area
func (p *Page) Notices() *Notices {
	return p.notices
}
