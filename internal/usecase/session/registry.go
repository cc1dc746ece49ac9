package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/domain"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
	"github.com/kailas-cloud/dinefind/internal/metrics"
)

// Default registry timings.
const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Options configures the registry.
type Options struct {
	State         domsession.Options
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Registry owns the live sessions.
type Registry struct {
	backend Backend
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(backend Backend, opts Options, logger *zap.Logger) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		backend:  backend,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create mounts a new session and issues its initial catalog fetch.
func (r *Registry) Create(ctx context.Context) *Session {
	s := newSession(uuid.NewString(), r.backend, r.opts.State, r.logger, r.now)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	metrics.SessionsActive.Inc()

	s.mu.Lock()
	var q domsession.Query
	s.state, q = s.state.Begin()
	s.mu.Unlock()
	s.dispatch(ctx, ReasonMount, q, upload.Image{})

	r.logger.Debug("Session created", zap.String("session_id", s.id))
	return s
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

// Delete unmounts a session. In-flight fetches still settle but nobody
// observes them.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	s.close()
	metrics.SessionsActive.Dec()
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle past the timeout that have no subscribers.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if s.idle(now, r.opts.IdleTimeout) {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.close()
		metrics.SessionsActive.Dec()
	}
	if len(evicted) > 0 {
		r.logger.Info("Evicted idle sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Wait blocks until every session's in-flight fetches have settled.
func (r *Registry) Wait() {
	r.mu.RLock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()
	for _, s := range all {
		s.Wait()
	}
}
