// Package notify shows user-facing messages (toasts in a GUI, one styled line on stderr here).
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single user-visible message
type Notification struct {
	Level   Level
	Message string
}

// Notifier displays notifications
type Notifier interface {
	Notify(n Notification)
}

// Error shows an error notification
func Error(n Notifier, msg string) { n.Notify(Notification{Level: LevelError, Message: msg}) }

// Warn shows a warning notification
func Warn(n Notifier, msg string) { n.Notify(Notification{Level: LevelWarning, Message: msg}) }

// Success shows a success notification
func Success(n Notifier, msg string) { n.Notify(Notification{Level: LevelSuccess, Message: msg}) }

// Info shows an informational notification
func Info(n Notifier, msg string) { n.Notify(Notification{Level: LevelInfo, Message: msg}) }

// Console writes notifications as single styled lines
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Level]lipgloss.Style
	icons  map[Level]string
}

// NewConsole creates a console notifier. Colors are only emitted when out is a terminal and
// color is true.
func NewConsole(out io.Writer, color bool) *Console {
	r := lipgloss.NewRenderer(out)

	styles := map[Level]lipgloss.Style{
		LevelInfo:    r.NewStyle(),
		LevelSuccess: r.NewStyle(),
		LevelWarning: r.NewStyle(),
		LevelError:   r.NewStyle(),
	}
	if color {
		styles[LevelInfo] = r.NewStyle().Foreground(lipgloss.Color("12"))
		styles[LevelSuccess] = r.NewStyle().Foreground(lipgloss.Color("10"))
		styles[LevelWarning] = r.NewStyle().Foreground(lipgloss.Color("11"))
		styles[LevelError] = r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	}

	return &Console{
		out:    out,
		styles: styles,
		icons: map[Level]string{
			LevelInfo:    "ℹ",
			LevelSuccess: "✓",
			LevelWarning: "!",
			LevelError:   "✗",
		},
	}
}

// Notify writes the notification
func (c *Console) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, c.styles[n.Level].Render(c.icons[n.Level]+" "+n.Message))
}

// Recorder keeps notifications in memory. Tests use it to count what the user would have seen.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records the notification
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Count returns how many notifications carried msg
func (r *Recorder) Count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, item := range r.items {
		if item.Message == msg {
			n++
		}
	}
	return n
}
