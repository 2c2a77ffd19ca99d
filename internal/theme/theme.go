// Package theme keeps the light/dark preference in durable client storage.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/storage"
	"github.com/charmbracelet/lipgloss"
)

// Theme is the user's color scheme preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// StorageKey is the key the preference is persisted under.
const StorageKey = "theme"

// Parse accepts "light" or "dark".
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Opposite returns the theme a toggle switches to.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

var palettes = map[Theme]notify.Palette{
	Light: {
		Foreground: lipgloss.Color("#101F38"),
		Info:       lipgloss.Color("#2196F3"),
		Success:    lipgloss.Color("#43A047"),
		Warning:    lipgloss.Color("#F57C00"),
		Error:      lipgloss.Color("#e53935"),
	},
	Dark: {
		Foreground: lipgloss.Color("#f2f2f2"),
		Info:       lipgloss.Color("#64B5F6"),
		Success:    lipgloss.Color("#8BC34A"),
		Warning:    lipgloss.Color("#FFC107"),
		Error:      lipgloss.Color("#EF5350"),
	},
}

// Manager holds the active theme and persists changes.
type Manager struct {
	mu       sync.RWMutex
	current  Theme
	store    storage.KV
	notifier notify.Notifier
	logger   *slog.Logger
}

var _ notify.PaletteSource = (*Manager)(nil)

// NewManager creates a manager showing the light theme until Load is called.
func NewManager(store storage.KV, notifier notify.Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		current:  Light,
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "theme"),
	}
}

// Load applies the saved preference, defaulting to light when nothing, or
// something unrecognised, is stored.
func (m *Manager) Load(ctx context.Context) (Theme, error) {
	saved, ok, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		return m.Current(), fmt.Errorf("failed to load theme: %w", err)
	}
	t := Light
	if ok {
		if parsed, perr := Parse(saved); perr == nil {
			t = parsed
		} else {
			m.logger.WarnContext(ctx, "Ignoring stored theme", "value", saved)
		}
	}
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
	return t, nil
}

// Current returns the active theme.
func (m *Manager) Current() Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set applies and persists t without notifying.
func (m *Manager) Set(ctx context.Context, t Theme) error {
	if err := m.store.Set(ctx, StorageKey, string(t)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
	return nil
}

// Toggle switches between light and dark, persists the choice and notifies.
func (m *Manager) Toggle(ctx context.Context) (Theme, error) {
	next := m.Current().Opposite()
	if err := m.Set(ctx, next); err != nil {
		return m.Current(), err
	}
	m.notifier.Notify(ctx, notify.Success, fmt.Sprintf("Switched to %s theme", next))
	return next, nil
}

// Palette returns the colors of the active theme.
func (m *Manager) Palette() notify.Palette {
	return palettes[m.Current()]
}
