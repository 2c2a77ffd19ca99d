package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/abgdnv/storefront/internal/widget"
)

// linePrompt asks yes/no questions on the terminal.
type linePrompt struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func (p *linePrompt) Confirm(_ context.Context, prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *cli) confirmer() widget.Confirmer {
	if c.yes {
		return widget.Always
	}
	return &linePrompt{in: bufio.NewReader(c.in), out: c.out}
}
