package session

import (
	"context"

	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	"github.com/kailas-cloud/dinefind/internal/domain/search/request"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
)

// Backend fetches restaurant pages from the restaurant API.
type Backend interface {
	ListRestaurants(ctx context.Context, page int) (restaurant.Page, error)
	SearchRestaurants(ctx context.Context, q request.Filtered) (restaurant.Page, error)
	SearchByImage(ctx context.Context, img upload.Image) (restaurant.Page, error)
}
