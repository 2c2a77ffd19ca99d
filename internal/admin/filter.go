package admin

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// DefaultFilterDebounce is the delay between the last keystroke in the
// table search box and the filter being applied.
const DefaultFilterDebounce = 300 * time.Millisecond

// FilterRows returns the indexes of the rows whose text contains term,
// ignoring case. An empty term matches every row.
func FilterRows(rows []string, term string) []int {
	fold := cases.Fold()
	needle := fold.String(term)
	matched := make([]int, 0, len(rows))
	for i, row := range rows {
		if strings.Contains(fold.String(row), needle) {
			matched = append(matched, i)
		}
	}
	return matched
}

// TableFilter filters an admin table as the search box is typed into.
// Keystrokes are collapsed by the debounce delay and apply receives the
// visible row indexes of the last term only.
type TableFilter struct {
	rows     []string
	debounce time.Duration
	apply    func(visible []int)

	mu      sync.Mutex
	closed  bool
	timer   *time.Timer
	pending uint64
}

func NewTableFilter(rows []string, debounce time.Duration, apply func(visible []int)) *TableFilter {
	return &TableFilter{
		rows:     append([]string(nil), rows...),
		debounce: debounce,
		apply:    apply,
	}
}

// Input handles the current text of the search box.
func (f *TableFilter) Input(term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.pending++
	token := f.pending
	f.timer = time.AfterFunc(f.debounce, func() { f.fire(token, term) })
}

func (f *TableFilter) fire(token uint64, term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || token != f.pending {
		return
	}
	f.timer = nil
	f.apply(FilterRows(f.rows, term))
}

// Close drops any pending filter.
func (f *TableFilter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
