package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/metascrape/pkg/common"
)

const (
	maxColumns    = 3
	minCardWidth  = 28
	descLineLimit = 3
)

// Card is the display form of one scraped item
type Card struct {
	Title       string
	Description string
	Link        string
}

// CardsFrom maps scraped items to cards, preserving order
func CardsFrom(items []common.ScrapedItem) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, Card{
			Title:       item.Title,
			Description: item.Description,
			Link:        item.URL,
		})
	}
	return cards
}

// CardGrid renders scraped items as a scrollable grid of cards
type CardGrid struct {
	viewport viewport.Model
	cards    []Card
	width    int
	height   int
	cardBox  lipgloss.Style
}

// NewCardGrid creates an empty grid
func NewCardGrid() *CardGrid {
	return &CardGrid{
		viewport: viewport.New(0, 0),
		cardBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("35")).
			Padding(0, 1),
	}
}

// SetItems replaces the displayed items
func (g *CardGrid) SetItems(items []common.ScrapedItem) {
	g.cards = CardsFrom(items)
	g.refresh()
}

// Cards returns the cards currently displayed
func (g *CardGrid) Cards() []Card {
	return append([]Card(nil), g.cards...)
}

// SetSize updates the grid dimensions
func (g *CardGrid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.viewport.Width = width
	g.viewport.Height = max(1, height)
	g.refresh()
}

// Update scrolls the grid
func (g *CardGrid) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			g.viewport.LineUp(1)
		case "down":
			g.viewport.LineDown(1)
		case "pgup":
			g.viewport.HalfViewUp()
		case "pgdown":
			g.viewport.HalfViewDown()
		}
		return nil
	}

	var cmd tea.Cmd
	g.viewport, cmd = g.viewport.Update(msg)
	return cmd
}

// View renders the grid, or a placeholder when there is nothing to show
func (g *CardGrid) View() string {
	if len(g.cards) == 0 {
		return infoStyle.Render("No scraped data yet. Submit a URL above.")
	}
	if g.height <= 0 {
		return g.render()
	}
	return g.viewport.View()
}

func (g *CardGrid) refresh() {
	g.viewport.SetContent(g.render())
}

func (g *CardGrid) columns() (int, int) {
	width := g.width
	if width <= 0 {
		width = 80
	}
	cols := width / (minCardWidth + 2)
	cols = min(max(cols, 1), maxColumns)
	return cols, width/cols - 2
}

func (g *CardGrid) render() string {
	cols, cardWidth := g.columns()

	var rows []string
	for start := 0; start < len(g.cards); start += cols {
		end := min(start+cols, len(g.cards))
		var row []string
		for _, c := range g.cards[start:end] {
			row = append(row, g.renderCard(c, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (g *CardGrid) renderCard(c Card, width int) string {
	inner := max(width-4, 8)

	title := c.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	lines := []string{cardTitleStyle.Render(truncate(title, inner))}

	if desc := strings.TrimSpace(c.Description); desc != "" {
		wrapped := lipgloss.NewStyle().Width(inner).Render(desc)
		descLines := strings.Split(wrapped, "\n")
		if len(descLines) > descLineLimit {
			descLines = descLines[:descLineLimit]
			descLines[descLineLimit-1] = truncate(strings.TrimRight(descLines[descLineLimit-1], " ")+"…", inner)
		}
		lines = append(lines, descStyle.Render(strings.Join(descLines, "\n")))
	}
	lines = append(lines, linkStyle.Render(truncate(c.Link, inner)))

	return g.cardBox.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most w runes, marking the cut with an ellipsis
func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
