package restaurant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a backend field documented as a string that some records carry
// as a JSON number (votes, aggregate ratings).
type Text string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode text: %w", err)
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode text: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// Rating is the user rating block of a restaurant.
type Rating struct {
	Aggregate Text   `json:"aggregate_rating"`
	Votes     Text   `json:"votes"`
	Text      string `json:"rating_text"`
	Thumbnail string `json:"thumbnail"`
}

// Summary is one card of the result set.
type Summary struct {
	DocID    string `json:"_id"`
	ID       int64  `json:"restaurant_id"`
	Name     string `json:"restaurant_name"`
	Cuisines string `json:"cuisines"`
	Rating   Rating `json:"user_rating"`
}

// Location is the address block of a restaurant detail record.
type Location struct {
	Address         string     `json:"address"`
	Locality        string     `json:"locality"`
	City            string     `json:"city"`
	CityID          int64      `json:"city_id"`
	Zipcode         Text       `json:"zipcode"`
	CountryName     string     `json:"country_name"`
	LocalityVerbose string     `json:"locality_verbose"`
	Coordinates     [2]float64 `json:"coordinates"`
}

// Detail is the full restaurant record shown on the detail view.
type Detail struct {
	ID                int64    `json:"restaurant_id"`
	Name              string   `json:"restaurant_name"`
	Cuisines          string   `json:"cuisines"`
	MenuURL           string   `json:"menu_url"`
	PriceRange        int      `json:"price_range"`
	AverageCostForTwo float64  `json:"average_cost_for_two"`
	Currency          string   `json:"currency"`
	HasOnlineDelivery int      `json:"has_online_delivery"`
	IsDeliveringNow   int      `json:"is_delivering_now"`
	Location          Location `json:"location"`
	Rating            Rating   `json:"user_rating"`
}

// OnlineDelivery reports whether the restaurant offers online delivery.
func (d *Detail) OnlineDelivery() bool { return d.HasOnlineDelivery == 1 }

// DeliveringNow reports whether the restaurant is delivering right now.
func (d *Detail) DeliveringNow() bool { return d.IsDeliveringNow == 1 }

// PriceSymbols renders the price range as repeated currency marks ("$$$").
func (d *Detail) PriceSymbols() string {
	if d.PriceRange <= 0 {
		return ""
	}
	return strings.Repeat("$", d.PriceRange)
}

// Address joins the non-empty address parts for display.
func (d *Detail) Address() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.Location.Address, d.Location.Locality, d.Location.City, d.Location.CountryName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Page is a paginated listing response from the backend. The image
// search endpoint fills only Restaurants and, optionally, TotalPages.
type Page struct {
	Page             int       `json:"page"`
	TotalRestaurants int       `json:"totalRestaurants"`
	TotalPages       int       `json:"totalPages"`
	Restaurants      []Summary `json:"restaurants"`
}

// IsEmpty reports whether the page carries no restaurants.
func (p *Page) IsEmpty() bool { return len(p.Restaurants) == 0 }
