package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors notifications are rendered with.
type Palette struct {
	Foreground lipgloss.Color
	Info       lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// PaletteSource provides the palette of the active theme.
type PaletteSource interface {
	Palette() Palette
}

// PaletteFunc adapts a function to PaletteSource.
type PaletteFunc func() Palette

func (f PaletteFunc) Palette() Palette {
	return f()
}

// Terminal prints notifications as styled lines.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	palette PaletteSource
}

func NewTerminal(w io.Writer, palette PaletteSource) *Terminal {
	return &Terminal{w: w, palette: palette}
}

func (t *Terminal) Notify(_ context.Context, level Level, message string) {
	p := t.palette.Palette()
	badge := lipgloss.NewStyle().Bold(true).Foreground(levelColor(p, level)).Render(icon(level))
	body := lipgloss.NewStyle().Foreground(p.Foreground).Render(message)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.w, "%s %s\n", badge, body)
}

func levelColor(p Palette, level Level) lipgloss.Color {
	switch level {
	case Success:
		return p.Success
	case Warning:
		return p.Warning
	case Error:
		return p.Error
	default:
		return p.Info
	}
}

func icon(level Level) string {
	switch level {
	case Success:
		return "✔"
	case Warning:
		return "!"
	case Error:
		return "✖"
	default:
		return "i"
	}
}
