package detail

import (
	"context"

	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
)

// Fetcher loads restaurant detail records, possibly through a cache.
type Fetcher interface {
	Restaurant(ctx context.Context, id int64) (restaurant.Detail, error)
}
