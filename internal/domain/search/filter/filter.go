package filter

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/search/mode"
)

var (
	distancePattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	coordinatePattern = regexp.MustCompile(`^-?\d*\.?\d*$`)
)

// Axis selects the coordinate a raw value is written to.
type Axis string

// Coordinate axes.
const (
	Latitude  Axis = "lat"
	Longitude Axis = "lon"
)

// IsValid checks if the axis is lat or lon.
func (a Axis) IsValid() bool { return a == Latitude || a == Longitude }

// State is the filter panel: three mutually exclusive checkboxes, the
// distance constraint with its coordinates, the price range and the
// free-text term. The zero value has no mode; use New for view defaults.
//
// At most one of {byName, byCuisine, byCountry, distance, price range}
// is set after any transition. State is comparable, so callers detect
// changes with ==.
type State struct {
	byName    bool
	byCuisine bool
	byCountry bool

	distance  string
	latitude  string
	longitude string

	minPrice string
	maxPrice string

	term string
}

// New returns the filter state a freshly mounted view starts with:
// search by name, everything else empty.
func New() State {
	return State{byName: true}
}

// WithMode checks the given checkbox and unchecks the other two. It clears
// the distance and both price bounds. Only text modes are accepted.
func (s State) WithMode(m mode.Mode) (State, error) {
	if !m.IsText() {
		return s, fmt.Errorf("%w: %q", domain.ErrInvalidFilterMode, m)
	}
	s.byName = m == mode.Name
	s.byCuisine = m == mode.Cuisine
	s.byCountry = m == mode.Country
	s.distance = ""
	s.minPrice = ""
	s.maxPrice = ""
	return s, nil
}

// WithDistance sets the search radius. raw must be empty or a non-negative
// decimal; anything else leaves the state unchanged and returns
// domain.ErrInvalidNumber. A non-empty distance switches to distance search.
func (s State) WithDistance(raw string) (State, error) {
	if !ValidDistance(raw) {
		return s, fmt.Errorf("%w: distance %q", domain.ErrInvalidNumber, raw)
	}
	s.distance = raw
	if raw != "" {
		s.clearModes()
		s.minPrice = ""
		s.maxPrice = ""
	}
	return s, nil
}

// WithPriceRange stores both bounds verbatim. A non-empty bound switches
// to price search.
func (s State) WithPriceRange(minPrice, maxPrice string) State {
	s.minPrice = minPrice
	s.maxPrice = maxPrice
	if minPrice != "" || maxPrice != "" {
		s.clearModes()
		s.distance = ""
	}
	return s
}

// WithCoordinate writes a latitude or longitude. Partial input such as
// "-" or "3." is accepted. The search mode is not affected.
func (s State) WithCoordinate(axis Axis, raw string) (State, error) {
	if !axis.IsValid() {
		return s, fmt.Errorf("%w: %q", domain.ErrInvalidAxis, axis)
	}
	if !ValidCoordinate(raw) {
		return s, fmt.Errorf("%w: %s %q", domain.ErrInvalidNumber, axis, raw)
	}
	if axis == Latitude {
		s.latitude = raw
	} else {
		s.longitude = raw
	}
	return s, nil
}

// WithTerm stores the free-text search term.
func (s State) WithTerm(term string) State {
	s.term = term
	return s
}

func (s *State) clearModes() {
	s.byName = false
	s.byCuisine = false
	s.byCountry = false
}

// Mode derives the active search mode.
func (s State) Mode() mode.Mode {
	switch {
	case s.byName:
		return mode.Name
	case s.byCuisine:
		return mode.Cuisine
	case s.byCountry:
		return mode.Country
	case s.distance != "":
		return mode.Distance
	case s.minPrice != "" || s.maxPrice != "":
		return mode.Price
	default:
		return mode.None
	}
}

// ByName reports whether the name checkbox is set.
func (s State) ByName() bool { return s.byName }

// ByCuisine reports whether the cuisine checkbox is set.
func (s State) ByCuisine() bool { return s.byCuisine }

// ByCountry reports whether the country checkbox is set.
func (s State) ByCountry() bool { return s.byCountry }

// Distance returns the raw distance input.
func (s State) Distance() string { return s.distance }

// Latitude returns the raw latitude input.
func (s State) Latitude() string { return s.latitude }

// Longitude returns the raw longitude input.
func (s State) Longitude() string { return s.longitude }

// MinPrice returns the raw lower price bound.
func (s State) MinPrice() string { return s.minPrice }

// MaxPrice returns the raw upper price bound.
func (s State) MaxPrice() string { return s.maxPrice }

// Term returns the free-text search term.
func (s State) Term() string { return s.term }

// ValidDistance reports whether raw is empty or a non-negative decimal.
func ValidDistance(raw string) bool {
	if raw == "" {
		return true
	}
	if !distancePattern.MatchString(raw) {
		return false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return err == nil && v >= 0
}

// ValidCoordinate reports whether raw is empty or a (possibly partial)
// signed decimal.
func ValidCoordinate(raw string) bool {
	return coordinatePattern.MatchString(raw)
}
