package health

import "context"

// BackendChecker checks restaurant backend availability.
type BackendChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks detail cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
