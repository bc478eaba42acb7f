package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-scripts/metascrape/pkg/common"
)

func TestCardsFrom(t *testing.T) {
	items := []common.ScrapedItem{
		{ID: 2, Title: "B", Description: "", URL: "http://b.com"},
		{ID: 1, Title: "A", Description: "d", URL: "http://a.com"},
	}

	cards := CardsFrom(items)
	assert.Equal(t, []Card{
		{Title: "B", Description: "", Link: "http://b.com"},
		{Title: "A", Description: "d", Link: "http://a.com"},
	}, cards, "server order is preserved")

	assert.Empty(t, CardsFrom(nil))
}

func TestCardGrid_View(t *testing.T) {
	t.Run("empty placeholder", func(t *testing.T) {
		g := NewCardGrid()
		g.SetSize(90, 20)
		assert.Contains(t, g.View(), "No scraped data yet")
	})

	t.Run("cards", func(t *testing.T) {
		g := NewCardGrid()
		g.SetSize(120, 40)
		g.SetItems([]common.ScrapedItem{
			{ID: 1, Title: "Example Domain", Description: "For use in examples", URL: "http://example.com"},
			{ID: 2, Title: "", URL: "http://untitled.com"},
		})

		view := g.View()
		assert.Contains(t, view, "Example Domain")
		assert.Contains(t, view, "For use in examples")
		assert.Contains(t, view, "http://example.com")
		assert.Contains(t, view, "(untitled)")
	})

	t.Run("narrow terminal uses one column", func(t *testing.T) {
		g := NewCardGrid()
		g.SetSize(40, 0)
		cols, width := g.columns()
		assert.Equal(t, 1, cols)
		assert.Equal(t, 38, width)
	})

	t.Run("wide terminal caps columns", func(t *testing.T) {
		g := NewCardGrid()
		g.SetSize(300, 0)
		cols, _ := g.columns()
		assert.Equal(t, maxColumns, cols)
	})
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		in   string
		w    int
		want string
	}{
		{in: "short", w: 10, want: "short"},
		{in: "exactly10!", w: 10, want: "exactly10!"},
		{in: "a longer string", w: 8, want: "a longe…"},
		{in: "héllo wörld", w: 6, want: "héllo…"},
		{in: "abc", w: 1, want: "a"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got := truncate(tc.in, tc.w)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len([]rune(got)), tc.w)
		})
	}

	assert.False(t, strings.Contains(truncate("abc", 5), "…"))
}
