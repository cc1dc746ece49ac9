package request

import (
	"github.com/kailas-cloud/dinefind/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// DefaultLimit is the page size sent with filtered searches.
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filtered is the query of a filtered search. Empty fields are still
// sent: the backend treats an empty value as "no constraint".
type Filtered struct {
	Page        int    `url:"page"`
	Limit       int    `url:"limit"`
	Distance    string `url:"distance"`
	Latitude    string `url:"latitude"`
	Longitude   string `url:"longitude"`
	MinPrice    string `url:"minPrice"`
	MaxPrice    string `url:"maxPrice"`
	Name        string `url:"name"`
	Cuisine     string `url:"cuisine"`
	CountryName string `url:"countryName"`
}

// NewFiltered builds the filtered query for page from the filter panel.
// The search term goes to the field of whichever checkbox is set.
// Limit defaults to DefaultLimit and is clamped to MaxLimit.
func NewFiltered(f filter.State, page, limit int) Filtered {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := Filtered{
		Page:      page,
		Limit:     limit,
		Distance:  f.Distance(),
		Latitude:  f.Latitude(),
		Longitude: f.Longitude(),
		MinPrice:  f.MinPrice(),
		MaxPrice:  f.MaxPrice(),
	}
	if f.ByName() {
		q.Name = f.Term()
	}
	if f.ByCuisine() {
		q.Cuisine = f.Term()
	}
	if f.ByCountry() {
		q.CountryName = f.Term()
	}
	return q
}
