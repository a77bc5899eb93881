package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var palette = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"),
	Muted:   lipgloss.Color("#636E72"),
	Success: lipgloss.Color("#00B894"),
	Error:   lipgloss.Color("#D63031"),
}

// Console writes the user-facing output of a run: the intro banner, each
// task's streamed log and the closing notice.
type Console struct {
	w io.Writer

	banner  lipgloss.Style
	title   lipgloss.Style
	line    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
}

// NewConsole returns a console writing to w. Colors are chosen for w's
// terminal capabilities; non-terminal writers get plain text.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		banner:  r.NewStyle().Reverse(true).Bold(true).Padding(0, 1),
		title:   r.NewStyle().Foreground(palette.Primary).Bold(true),
		line:    r.NewStyle().Foreground(palette.Muted),
		success: r.NewStyle().Foreground(palette.Success),
		failure: r.NewStyle().Foreground(palette.Error).Bold(true),
		info:    r.NewStyle().Foreground(palette.Muted),
	}
}

// Intro prints the opening banner.
func (c *Console) Intro(title string) {
	fmt.Fprintf(c.w, "┌  %s\n│\n", c.banner.Render(title))
}

// Info prints an informational line outside any task.
func (c *Console) Info(message string) {
	fmt.Fprintf(c.w, "●  %s\n", c.info.Render(message))
}

// Outro prints the closing line of a successful run.
func (c *Console) Outro(message string) {
	fmt.Fprintf(c.w, "│\n└  %s\n", message)
}

// Cancel prints the closing line of an aborted run.
func (c *Console) Cancel(message string) {
	fmt.Fprintf(c.w, "│\n└  %s\n", c.failure.Render(message))
}

func (c *Console) taskStart(title string) {
	fmt.Fprintf(c.w, "◇  %s\n", c.title.Render(title))
}

func (c *Console) taskLine(line string) {
	fmt.Fprintf(c.w, "│  %s\n", c.line.Render(line))
}

func (c *Console) taskSuccess(message string) {
	fmt.Fprintf(c.w, "◆  %s\n", c.success.Render(message))
}

func (c *Console) taskFailure(message string) {
	fmt.Fprintf(c.w, "■  %s\n", c.failure.Render(message))
}
