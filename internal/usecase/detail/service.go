package detail

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
)

// Messages shown by the detail view.
const (
	FailureMessage  = "An error occurred while fetching restaurant data"
	NotFoundMessage = "Restaurant not found"
)

// Service serves the restaurant detail view.
type Service struct {
	fetcher Fetcher
}

// New creates a detail service.
func New(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Get returns the detail record of restaurant id. Errors wrap either
// domain.ErrRestaurantNotFound or the backend failure that occurred.
func (s *Service) Get(ctx context.Context, id int64) (restaurant.Detail, error) {
	if id <= 0 {
		return restaurant.Detail{}, fmt.Errorf("restaurant %d: %w", id, domain.ErrRestaurantNotFound)
	}
	d, err := s.fetcher.Restaurant(ctx, id)
	if err != nil {
		return restaurant.Detail{}, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return d, nil
}

// Message returns the inline message the detail view shows for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrRestaurantNotFound):
		return NotFoundMessage
	default:
		return FailureMessage
	}
}
