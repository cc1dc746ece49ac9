package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	"github.com/kailas-cloud/dinefind/internal/domain/search/filter"
	"github.com/kailas-cloud/dinefind/internal/domain/search/mode"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
	"github.com/kailas-cloud/dinefind/internal/metrics"
)

// Reason names what triggered a fetch.
type Reason string

// Fetch triggers.
const (
	ReasonMount  Reason = "mount"
	ReasonFilter Reason = "filter"
	ReasonSearch Reason = "search"
	ReasonPage   Reason = "page"
	ReasonImage  Reason = "image"
)

// Session is one live search view. Operations apply a pure transition to
// the state under the lock and issue at most one backend fetch outside it.
// Fetch failures never surface to callers; they settle into the state.
type Session struct {
	id      string
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	state    domsession.State
	lastSeen time.Time
	subs     map[uint64]chan domsession.State
	nextSub  uint64
	closed   bool

	inflight sync.WaitGroup
}

func newSession(id string, backend Backend, opts domsession.Options, logger *zap.Logger, now func() time.Time) *Session {
	return &Session{
		id:       id,
		backend:  backend,
		logger:   logger.With(zap.String("session_id", id)),
		now:      now,
		state:    domsession.New(opts),
		lastSeen: now(),
		subs:     make(map[uint64]chan domsession.State),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current state.
func (s *Session) Snapshot() domsession.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetMode checks a text search checkbox.
func (s *Session) SetMode(ctx context.Context, m mode.Mode) (domsession.State, error) {
	return s.update(ctx, ReasonFilter, false, func(st domsession.State) (domsession.State, error) {
		f, err := st.Filters().WithMode(m)
		if err != nil {
			return st, fmt.Errorf("set mode: %w", err)
		}
		return st.WithFilters(f), nil
	})
}

// SetDistance sets the search radius.
func (s *Session) SetDistance(ctx context.Context, raw string) (domsession.State, error) {
	return s.update(ctx, ReasonFilter, false, func(st domsession.State) (domsession.State, error) {
		f, err := st.Filters().WithDistance(raw)
		if err != nil {
			return st, fmt.Errorf("set distance: %w", err)
		}
		return st.WithFilters(f), nil
	})
}

// SetCoordinate writes the latitude or longitude of the distance search.
func (s *Session) SetCoordinate(ctx context.Context, axis filter.Axis, raw string) (domsession.State, error) {
	return s.update(ctx, ReasonFilter, false, func(st domsession.State) (domsession.State, error) {
		f, err := st.Filters().WithCoordinate(axis, raw)
		if err != nil {
			return st, fmt.Errorf("set coordinate: %w", err)
		}
		return st.WithFilters(f), nil
	})
}

// SetPriceRange sets both price bounds.
func (s *Session) SetPriceRange(ctx context.Context, minPrice, maxPrice string) domsession.State {
	st, _ := s.update(ctx, ReasonFilter, false, func(st domsession.State) (domsession.State, error) {
		return st.WithFilters(st.Filters().WithPriceRange(minPrice, maxPrice)), nil
	})
	return st
}

// SetTerm sets the free-text search term.
func (s *Session) SetTerm(ctx context.Context, term string) domsession.State {
	st, _ := s.update(ctx, ReasonFilter, false, func(st domsession.State) (domsession.State, error) {
		return st.WithFilters(st.Filters().WithTerm(term)), nil
	})
	return st
}

// Search switches to filtered search from page 1. It always issues
// exactly one fetch.
func (s *Session) Search(ctx context.Context) domsession.State {
	st, _ := s.update(ctx, ReasonSearch, true, func(st domsession.State) (domsession.State, error) {
		return st.Search(), nil
	})
	return st
}

// SearchWith replaces the filters and searches from page 1 in one
// transition, issuing a single fetch.
func (s *Session) SearchWith(ctx context.Context, f filter.State) domsession.State {
	st, _ := s.update(ctx, ReasonSearch, true, func(st domsession.State) (domsession.State, error) {
		return st.WithFilters(f).Search(), nil
	})
	return st
}

// Goto moves to page.
func (s *Session) Goto(ctx context.Context, page int) (domsession.State, error) {
	return s.update(ctx, ReasonPage, false, func(st domsession.State) (domsession.State, error) {
		return st.Goto(page)
	})
}

// Next moves one page forward.
func (s *Session) Next(ctx context.Context) (domsession.State, error) {
	return s.update(ctx, ReasonPage, false, func(st domsession.State) (domsession.State, error) {
		return st.Goto(st.Next())
	})
}

// Previous moves one page back.
func (s *Session) Previous(ctx context.Context) (domsession.State, error) {
	return s.update(ctx, ReasonPage, false, func(st domsession.State) (domsession.State, error) {
		return st.Goto(st.Previous())
	})
}

// FastForward jumps to the first page past the visible window.
func (s *Session) FastForward(ctx context.Context) (domsession.State, error) {
	return s.update(ctx, ReasonPage, false, func(st domsession.State) (domsession.State, error) {
		return st.Goto(st.FastForwardTarget())
	})
}

// SubmitImage searches by a dish photo. Filters and the search flag are
// left as they are.
func (s *Session) SubmitImage(ctx context.Context, img upload.Image) domsession.State {
	s.mu.Lock()
	var q domsession.Query
	s.state, q = s.state.BeginImage()
	s.lastSeen = s.now()
	snap := s.state
	s.publishLocked(snap)
	s.mu.Unlock()

	s.dispatch(ctx, ReasonImage, q, img)
	return snap
}

// ThumbnailFailed records a card image load failure.
func (s *Session) ThumbnailFailed(id int64) (domsession.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.state.ThumbnailFailed(id)
	if !ok {
		return s.state, fmt.Errorf("thumbnail of restaurant %d: %w", id, domain.ErrNotFound)
	}
	s.state = next
	s.lastSeen = s.now()
	s.publishLocked(next)
	return next, nil
}

// Subscribe returns a channel receiving every new state. Slow receivers
// only see the latest one. cancel must be called to release the channel.
func (s *Session) Subscribe() (<-chan domsession.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domsession.State, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Wait blocks until every issued fetch has settled.
func (s *Session) Wait() { s.inflight.Wait() }

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) idle(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) == 0 && now.Sub(s.lastSeen) > timeout
}

// update applies fn and issues a fetch when the fetch inputs changed, or
// unconditionally when force is set. Rejected input changes nothing.
func (s *Session) update(
	ctx context.Context, reason Reason, force bool,
	fn func(domsession.State) (domsession.State, error),
) (domsession.State, error) {
	s.mu.Lock()
	next, err := fn(s.state)
	if err != nil {
		cur := s.state
		s.mu.Unlock()
		return cur, err
	}

	s.lastSeen = s.now()
	dispatch := force || next.Inputs() != s.state.Inputs()
	var q domsession.Query
	if dispatch {
		next, q = next.Begin()
	}
	s.state = next
	s.publishLocked(next)
	s.mu.Unlock()

	if dispatch {
		s.dispatch(ctx, reason, q, upload.Image{})
	}
	return next, nil
}

// dispatch runs q in the background. The fetch outlives the request that
// triggered it.
func (s *Session) dispatch(ctx context.Context, reason Reason, q domsession.Query, img upload.Image) {
	ctx = context.WithoutCancel(ctx)
	s.logger.Debug("Dispatching fetch",
		zap.String("reason", string(reason)),
		zap.String("kind", string(q.Kind)),
		zap.Int("page", q.Page),
		zap.Uint64("generation", q.Generation),
	)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		page, err := s.fetch(ctx, q, img)
		s.settle(reason, q, page, err)
	}()
}

func (s *Session) fetch(ctx context.Context, q domsession.Query, img upload.Image) (restaurant.Page, error) {
	switch q.Kind {
	case domsession.Listing:
		return s.backend.ListRestaurants(ctx, q.Page) //nolint:wrapcheck // classified in settle
	case domsession.Filtered:
		return s.backend.SearchRestaurants(ctx, q.Filtered) //nolint:wrapcheck // classified in settle
	case domsession.Image:
		return s.backend.SearchByImage(ctx, img) //nolint:wrapcheck // classified in settle
	default:
		return restaurant.Page{}, fmt.Errorf("unknown query kind %q", q.Kind)
	}
}

func (s *Session) settle(reason Reason, q domsession.Query, page restaurant.Page, err error) {
	s.mu.Lock()
	next, ok := s.state.Settle(q, page, err)
	if !ok {
		s.mu.Unlock()
		metrics.SessionFetchesTotal.WithLabelValues(string(reason), "stale").Inc()
		s.logger.Debug("Discarded stale response",
			zap.Uint64("generation", q.Generation),
		)
		return
	}
	s.state = next
	s.publishLocked(next)
	s.mu.Unlock()

	if next.HasError() {
		metrics.SessionFetchesTotal.WithLabelValues(string(reason), "error").Inc()
		s.logger.Info("Fetch settled with error",
			zap.String("reason", string(reason)),
			zap.String("failure", string(next.Failure())),
			zap.Error(err),
		)
		return
	}
	metrics.SessionFetchesTotal.WithLabelValues(string(reason), "success").Inc()
}

func (s *Session) publishLocked(st domsession.State) {
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
