package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NoticeLevel is the severity of a notice
type NoticeLevel int

const (
	LevelInfo NoticeLevel = iota
	LevelSuccess
	LevelError
)

func (l NoticeLevel) String() string {
	switch l {
	case LevelSuccess:
		return "OK"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// NoticeMode selects how notices are presented
type NoticeMode string

const (
	// ModeToast stacks notices and expires each one after a TTL
	ModeToast NoticeMode = "toast"
	// ModeInline keeps a single message until the next one replaces it
	ModeInline NoticeMode = "inline"
)

// DefaultNoticeTTL is how long a toast stays visible
const DefaultNoticeTTL = 4 * time.Second

const maxToasts = 3

// Notice is one user-visible message
type Notice struct {
	ID    int
	Level NoticeLevel
	Text  string
	At    time.Time
}

type noticeExpiredMsg struct {
	id int
}

// Notices shows feedback about submissions
type Notices struct {
	mode    NoticeMode
	ttl     time.Duration
	entries []Notice
	history []Notice
	nextID  int
	width   int
}

// NewNotices creates a notice area. An unknown mode falls back to toast.
func NewNotices(mode NoticeMode, ttl time.Duration) *Notices {
	if mode != ModeInline {
		mode = ModeToast
	}
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notices{
		mode: mode,
		ttl:  ttl,
	}
}

// Mode returns the presentation strategy in use
func (n *Notices) Mode() NoticeMode {
	return n.mode
}

// Push shows a notice. In toast mode the returned command expires it.
func (n *Notices) Push(level NoticeLevel, text string) tea.Cmd {
	n.nextID++
	notice := Notice{
		ID:    n.nextID,
		Level: level,
		Text:  text,
		At:    time.Now(),
	}
	n.history = append(n.history, notice)

	if n.mode == ModeInline {
		n.entries = []Notice{notice}
		return nil
	}

	n.entries = append(n.entries, notice)
	if len(n.entries) > maxToasts {
		n.entries = n.entries[len(n.entries)-maxToasts:]
	}
	id := notice.ID
	return tea.Tick(n.ttl, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// Update drops expired toasts
func (n *Notices) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(noticeExpiredMsg); ok {
		for i, e := range n.entries {
			if e.ID == msg.id {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Visible returns the notices currently on screen
func (n *Notices) Visible() []Notice {
	return append([]Notice(nil), n.entries...)
}

// Last returns the most recent notice ever pushed
func (n *Notices) Last() (Notice, bool) {
	if len(n.history) == 0 {
		return Notice{}, false
	}
	return n.history[len(n.history)-1], true
}

// Count returns how many notices have been pushed
func (n *Notices) Count() int {
	return len(n.history)
}

// SetSize sets the render width
func (n *Notices) SetSize(width int) {
	n.width = width
}

// View renders the visible notices, one per line
func (n *Notices) View() string {
	if len(n.entries) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, e := range n.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s %s %s",
			timestampStyle.Render(e.At.Format("15:04:05")),
			levelStyle(e.Level).Render("["+e.Level.String()+"]"),
			e.Text,
		))
	}

	style := lipgloss.NewStyle().PaddingLeft(1)
	if n.width > 0 {
		style = style.Width(n.width)
	}
	return style.Render(sb.String())
}

func levelStyle(l NoticeLevel) lipgloss.Style {
	switch l {
	case LevelError:
		return errorStyle
	case LevelSuccess:
		return successStyle
	default:
		return infoStyle
	}
}
