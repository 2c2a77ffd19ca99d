package cart

import (
	"strconv"
	"sync"
)

// Badge is the cart counter in the header. It is hidden while the count is zero.
type Badge struct {
	mu    sync.Mutex
	count int
}

func (b *Badge) Set(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = max(count, 0)
}

// Hide clears the badge.
func (b *Badge) Hide() {
	b.Set(0)
}

func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Badge) Visible() bool {
	return b.Count() > 0
}

func (b *Badge) String() string {
	if n := b.Count(); n > 0 {
		return strconv.Itoa(n)
	}
	return ""
}
