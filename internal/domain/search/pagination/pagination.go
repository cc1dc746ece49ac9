package pagination

import (
	"fmt"

	"github.com/kailas-cloud/dinefind/internal/domain"
)

// DefaultWindowSize is the number of page buttons shown at once.
const DefaultWindowSize = 5

// Window returns the contiguous page numbers to show around current.
// The window starts size/2 pages before current, is clipped to
// [1, total] and, when clipped at the end, is pulled back so it still
// holds min(size, total) pages.
func Window(current, total, size int) []int {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if total < 1 {
		total = 1
	}
	start := max(1, current-size/2)
	end := min(total, start+size-1)
	start = max(1, min(start, end-size+1))

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// FastForward returns the first page past the visible window, capped at total.
func FastForward(visible []int, total int) int {
	if len(visible) == 0 {
		return min(total, 1)
	}
	return min(total, visible[len(visible)-1]+1)
}

// State is the pagination of the current result set.
type State struct {
	current    int
	total      int
	visible    []int
	windowSize int
}

// New returns page 1 of 1 with the given window size.
func New(windowSize int) State {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return State{current: 1, total: 1, visible: []int{1}, windowSize: windowSize}
}

// Goto moves to page. Pages outside [1, total] are rejected and the state
// is returned unchanged. The visible window is kept; it is recomputed
// when the fetch for the new page settles.
func (s State) Goto(page int) (State, error) {
	if page < 1 || page > s.total {
		return s, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrPageOutOfRange, page, s.total)
	}
	s.current = page
	return s, nil
}

// Apply records the total page count reported for page and recomputes
// the window around it.
func (s State) Apply(page, total int) State {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	s.current = page
	s.total = total
	s.visible = Window(page, total, s.windowSize)
	return s
}

// Reset collapses pagination to a single page, keeping current.
func (s State) Reset() State {
	s.total = 1
	s.visible = []int{1}
	return s
}

// FastForwardTarget returns the page the fast-forward control jumps to.
func (s State) FastForwardTarget() int { return FastForward(s.visible, s.total) }

// HasPrevious reports whether a previous page exists.
func (s State) HasPrevious() bool { return s.current > 1 }

// HasNext reports whether a later page exists.
func (s State) HasNext() bool { return s.current < s.total }

// Current returns the current page.
func (s State) Current() int { return s.current }

// Total returns the total page count.
func (s State) Total() int { return s.total }

// Visible returns a copy of the visible page numbers.
func (s State) Visible() []int {
	out := make([]int, len(s.visible))
	copy(out, s.visible)
	return out
}
