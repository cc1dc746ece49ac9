package mode

// Mode is the active search category. It decides which query
// parameters a filtered search sends.
type Mode string

// Search mode constants.
const (
	// Name routes the search term into the name parameter.
	Name    Mode = "name"
	Cuisine Mode = "cuisine"
	Country Mode = "country"
	// Distance searches around the given coordinates.
	Distance Mode = "distance"
	// Price searches within a min/max price range.
	Price Mode = "price"
	// None means no filter is active (all checkboxes cleared, no constraint).
	None Mode = "none"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m.IsText() || m == Distance || m == Price || m == None
}

// IsText reports whether the mode is one of the three checkbox modes
// that carry the free-text term.
func (m Mode) IsText() bool {
	return m == Name || m == Cuisine || m == Country
}

// Parse maps checkbox keys (by_name, byCuisine, ...) and plain mode names
// to a text mode. ok is false for anything else.
func Parse(key string) (Mode, bool) {
	switch key {
	case "name", "by_name", "byName":
		return Name, true
	case "cuisine", "by_cuisine", "byCuisine":
		return Cuisine, true
	case "country", "by_country", "byCountry":
		return Country, true
	}
	return "", false
}
