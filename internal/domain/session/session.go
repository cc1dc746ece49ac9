package session

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	"github.com/kailas-cloud/dinefind/internal/domain/search/filter"
	"github.com/kailas-cloud/dinefind/internal/domain/search/lifecycle"
	"github.com/kailas-cloud/dinefind/internal/domain/search/pagination"
	"github.com/kailas-cloud/dinefind/internal/domain/search/request"
	"github.com/kailas-cloud/dinefind/internal/domain/thumbnail"
)

// NoResultsMessage is shown by the list view in the error state.
const NoResultsMessage = "No restaurants found. Please try a different search."

// Kind selects the backend query a fetch issues.
type Kind string

// Query kinds.
const (
	// Listing fetches a page of the unfiltered catalog.
	Listing  Kind = "listing"
	Filtered Kind = "filtered"
	Image    Kind = "image"
)

// Failure classifies why the last fetch ended in the error state.
type Failure string

// Failure reasons.
const (
	FailureNone      Failure = ""
	FailureTransport Failure = "transport"
	FailureStatus    Failure = "status"
	FailureMalformed Failure = "malformed"
	FailureEmpty     Failure = "empty"
)

// Classify maps a fetch error to a failure reason.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, domain.ErrEmptyResult):
		return FailureEmpty
	case errors.Is(err, domain.ErrBackendStatus):
		return FailureStatus
	case errors.Is(err, domain.ErrMalformedResponse):
		return FailureMalformed
	default:
		return FailureTransport
	}
}

// Options configures a new session state.
type Options struct {
	PageLimit         int
	WindowSize        int
	FallbackThumbnail string
}

// Inputs are the fields whose change triggers a fetch.
type Inputs struct {
	Filters      filter.State
	Page         int
	SearchActive bool
}

// Query is an issued fetch. Generation ties the completion back to the
// state it was issued from.
type Query struct {
	Kind       Kind
	Page       int
	Filtered   request.Filtered
	Generation uint64
}

// State is the whole view state of one search session. Every transition
// returns a new State; the receiver is never modified.
type State struct {
	opts Options

	filters      filter.State
	searchActive bool
	pages        pagination.State

	status     lifecycle.Status
	failure    Failure
	results    []restaurant.Summary
	thumbnails map[int64]thumbnail.Image

	generation uint64
}

// New returns the state of a freshly mounted view: search by name,
// page 1, idle, no results.
func New(opts Options) State {
	if opts.PageLimit <= 0 {
		opts.PageLimit = request.DefaultLimit
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = pagination.DefaultWindowSize
	}
	if opts.FallbackThumbnail == "" {
		opts.FallbackThumbnail = thumbnail.DefaultFallback
	}
	return State{
		opts:    opts,
		filters: filter.New(),
		pages:   pagination.New(opts.WindowSize),
		status:  lifecycle.Idle,
	}
}

// Inputs returns the fetch-triggering fields.
func (s State) Inputs() Inputs {
	return Inputs{Filters: s.filters, Page: s.pages.Current(), SearchActive: s.searchActive}
}

// WithFilters replaces the filter panel state.
func (s State) WithFilters(f filter.State) State {
	s.filters = f
	return s
}

// Search turns on filtered search and goes back to page 1.
func (s State) Search() State {
	s.searchActive = true
	s.pages, _ = s.pages.Goto(1)
	return s
}

// Goto changes the page. Out-of-range pages leave the state unchanged.
func (s State) Goto(page int) (State, error) {
	p, err := s.pages.Goto(page)
	if err != nil {
		return s, fmt.Errorf("goto: %w", err)
	}
	s.pages = p
	return s, nil
}

// Next returns the page after the current one.
func (s State) Next() int { return s.pages.Current() + 1 }

// Previous returns the page before the current one.
func (s State) Previous() int { return s.pages.Current() - 1 }

// FastForwardTarget returns the first page past the visible window.
func (s State) FastForwardTarget() int { return s.pages.FastForwardTarget() }

// Begin issues a fetch for the current inputs. It bumps the generation,
// so any fetch still in flight becomes stale.
func (s State) Begin() (State, Query) {
	s.generation++
	s.status = lifecycle.Loading
	s.failure = FailureNone

	q := Query{Kind: Listing, Page: s.pages.Current(), Generation: s.generation}
	if s.searchActive {
		q.Kind = Filtered
		q.Filtered = request.NewFiltered(s.filters, q.Page, s.opts.PageLimit)
	}
	return s, q
}

// BeginImage issues an image search. The result set is cleared right
// away; filters and the search-active flag are left alone.
func (s State) BeginImage() (State, Query) {
	s.generation++
	s.status = lifecycle.Loading
	s.failure = FailureNone
	s.results = nil
	s.thumbnails = nil
	return s, Query{Kind: Image, Page: 1, Generation: s.generation}
}

// Settle applies the outcome of q. ok is false when q is stale, in which
// case the state is returned untouched.
//
// A page with no restaurants counts as a failure. Image results always
// land on page 1 with at least one page.
func (s State) Settle(q Query, page restaurant.Page, err error) (State, bool) {
	if q.Generation != s.generation {
		return s, false
	}
	if err == nil && page.IsEmpty() {
		err = domain.ErrEmptyResult
	}
	if err != nil {
		s.status = lifecycle.Error
		s.failure = Classify(err)
		s.results = nil
		s.thumbnails = nil
		s.pages = s.pages.Reset()
		return s, true
	}

	s.status = lifecycle.Success
	s.failure = FailureNone
	s.results = page.Restaurants
	s.thumbnails = make(map[int64]thumbnail.Image, len(page.Restaurants))
	for _, r := range page.Restaurants {
		s.thumbnails[r.ID] = thumbnail.New(r.Rating.Thumbnail, s.opts.FallbackThumbnail)
	}
	s.pages = s.pages.Apply(q.Page, page.TotalPages)
	return s, true
}

// ThumbnailFailed records that the card image of restaurant id failed to
// load. ok is false if no such card is shown.
func (s State) ThumbnailFailed(id int64) (State, bool) {
	img, ok := s.thumbnails[id]
	if !ok {
		return s, false
	}
	next := make(map[int64]thumbnail.Image, len(s.thumbnails))
	for k, v := range s.thumbnails {
		next[k] = v
	}
	next[id] = img.Failed()
	s.thumbnails = next
	return s, true
}

// Filters returns the filter panel state.
func (s State) Filters() filter.State { return s.filters }

// SearchActive reports whether fetches use the filtered search.
func (s State) SearchActive() bool { return s.searchActive }

// Pages returns the pagination state.
func (s State) Pages() pagination.State { return s.pages }

// Status returns the request lifecycle status.
func (s State) Status() lifecycle.Status { return s.status }

// Failure returns why the last fetch failed, if it did.
func (s State) Failure() Failure { return s.failure }

// HasError reports whether the last settled fetch failed.
func (s State) HasError() bool { return s.status == lifecycle.Error }

// HasPrevious reports whether the previous-page control is offered.
// A failed view offers no page controls.
func (s State) HasPrevious() bool { return !s.HasError() && s.pages.HasPrevious() }

// HasNext reports whether the next and fast-forward controls are offered.
func (s State) HasNext() bool { return !s.HasError() && s.pages.HasNext() }

// Generation returns the generation of the most recently issued fetch.
func (s State) Generation() uint64 { return s.generation }

// Results returns a copy of the result set.
func (s State) Results() []restaurant.Summary {
	out := make([]restaurant.Summary, len(s.results))
	copy(out, s.results)
	return out
}

// Thumbnail returns the card image state of restaurant id.
func (s State) Thumbnail(id int64) (thumbnail.Image, bool) {
	img, ok := s.thumbnails[id]
	return img, ok
}

// Message returns the list view notice, or "" when results are shown or
// a request is in flight.
func (s State) Message() string {
	if s.status == lifecycle.Error || (s.status == lifecycle.Success && len(s.results) == 0) {
		return NoResultsMessage
	}
	return ""
}
