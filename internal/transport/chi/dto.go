package chi

import (
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
)

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeSessionNotFound    ErrorCode = "session_not_found"
	ErrorCodeRestaurantNotFound ErrorCode = "restaurant_not_found"
	ErrorCodeInvalidNumber      ErrorCode = "invalid_number"
	ErrorCodeInvalidFilterMode  ErrorCode = "invalid_filter_mode"
	ErrorCodeInvalidAxis        ErrorCode = "invalid_axis"
	ErrorCodePageOutOfRange     ErrorCode = "page_out_of_range"
	ErrorCodeInvalidImage       ErrorCode = "invalid_image"
	ErrorCodeBackendError       ErrorCode = "backend_error"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ModeRequest is the body of PUT /sessions/{id}/mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// DistanceRequest is the body of PUT /sessions/{id}/distance.
type DistanceRequest struct {
	Distance string `json:"distance"`
}

// CoordinateRequest is the body of PUT /sessions/{id}/coordinates/{axis}.
type CoordinateRequest struct {
	Value string `json:"value"`
}

// PriceRequest is the body of PUT /sessions/{id}/price.
type PriceRequest struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// TermRequest is the body of PUT /sessions/{id}/term.
type TermRequest struct {
	Term string `json:"term"`
}

// SessionResponse is a snapshot of one search view.
type SessionResponse struct {
	ID           string             `json:"id"`
	Status       string             `json:"status"`
	HasError     bool               `json:"has_error"`
	Failure      string             `json:"failure,omitempty"`
	Message      string             `json:"message,omitempty"`
	SearchActive bool               `json:"search_active"`
	Generation   uint64             `json:"generation"`
	Filters      FiltersResponse    `json:"filters"`
	Pagination   PaginationResponse `json:"pagination"`
	Restaurants  []RestaurantCard   `json:"restaurants"`
}

// FiltersResponse mirrors the filter panel.
type FiltersResponse struct {
	Mode      string `json:"mode"`
	ByName    bool   `json:"by_name"`
	ByCuisine bool   `json:"by_cuisine"`
	ByCountry bool   `json:"by_country"`
	Distance  string `json:"distance"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	MinPrice  string `json:"min_price"`
	MaxPrice  string `json:"max_price"`
	Term      string `json:"term"`
}

// PaginationResponse mirrors the pagination bar.
type PaginationResponse struct {
	Current           int   `json:"current"`
	Total             int   `json:"total"`
	Visible           []int `json:"visible"`
	HasPrevious       bool  `json:"has_previous"`
	HasNext           bool  `json:"has_next"`
	HasFastForward    bool  `json:"has_fast_forward"`
	FastForwardTarget int   `json:"fast_forward_target"`
}

// RatingResponse is the user rating block of a restaurant.
type RatingResponse struct {
	Aggregate string `json:"aggregate"`
	Votes     string `json:"votes"`
	Text      string `json:"text"`
}

// ThumbnailResponse tells the client which image to render and how.
type ThumbnailResponse struct {
	Src       string `json:"src"`
	Stage     string `json:"stage"`
	Optimized bool   `json:"optimized"`
}

// RestaurantCard is one result card.
type RestaurantCard struct {
	ID        int64             `json:"id"`
	DocID     string            `json:"doc_id,omitempty"`
	Name      string            `json:"name"`
	Cuisines  string            `json:"cuisines"`
	Rating    RatingResponse    `json:"rating"`
	Thumbnail ThumbnailResponse `json:"thumbnail"`
}

// LocationResponse is the address block of a restaurant.
type LocationResponse struct {
	Address     string     `json:"address"`
	Locality    string     `json:"locality"`
	City        string     `json:"city"`
	Zipcode     string     `json:"zipcode"`
	Country     string     `json:"country"`
	Coordinates [2]float64 `json:"coordinates"`
}

// RestaurantDetailResponse is the body of GET /restaurants/{id}.
type RestaurantDetailResponse struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Cuisines          string           `json:"cuisines"`
	MenuURL           string           `json:"menu_url,omitempty"`
	PriceRange        int              `json:"price_range"`
	PriceSymbols      string           `json:"price_symbols"`
	AverageCostForTwo float64          `json:"average_cost_for_two"`
	Currency          string           `json:"currency"`
	OnlineDelivery    bool             `json:"online_delivery"`
	DeliveringNow     bool             `json:"delivering_now"`
	FullAddress       string           `json:"full_address"`
	Location          LocationResponse `json:"location"`
	Rating            RatingResponse   `json:"rating"`
}

// Event is one message on the session event stream.
type Event struct {
	Type    string          `json:"type"`
	Session SessionResponse `json:"session"`
}

func sessionToResponse(id string, st domsession.State) SessionResponse {
	f := st.Filters()
	p := st.Pages()

	cards := make([]RestaurantCard, 0, len(st.Results()))
	for _, r := range st.Results() {
		card := RestaurantCard{
			ID:       r.ID,
			DocID:    r.DocID,
			Name:     r.Name,
			Cuisines: r.Cuisines,
			Rating:   ratingToResponse(r.Rating),
		}
		if img, ok := st.Thumbnail(r.ID); ok {
			card.Thumbnail = ThumbnailResponse{
				Src:       img.Src(),
				Stage:     string(img.Stage()),
				Optimized: img.Optimized(),
			}
		}
		cards = append(cards, card)
	}

	return SessionResponse{
		ID:           id,
		Status:       string(st.Status()),
		HasError:     st.HasError(),
		Failure:      string(st.Failure()),
		Message:      st.Message(),
		SearchActive: st.SearchActive(),
		Generation:   st.Generation(),
		Filters: FiltersResponse{
			Mode:      string(f.Mode()),
			ByName:    f.ByName(),
			ByCuisine: f.ByCuisine(),
			ByCountry: f.ByCountry(),
			Distance:  f.Distance(),
			Latitude:  f.Latitude(),
			Longitude: f.Longitude(),
			MinPrice:  f.MinPrice(),
			MaxPrice:  f.MaxPrice(),
			Term:      f.Term(),
		},
		Pagination: PaginationResponse{
			Current:           p.Current(),
			Total:             p.Total(),
			Visible:           p.Visible(),
			HasPrevious:       st.HasPrevious(),
			HasNext:           st.HasNext(),
			HasFastForward:    st.HasNext(),
			FastForwardTarget: p.FastForwardTarget(),
		},
		Restaurants: cards,
	}
}

func ratingToResponse(r restaurant.Rating) RatingResponse {
	return RatingResponse{
		Aggregate: string(r.Aggregate),
		Votes:     string(r.Votes),
		Text:      r.Text,
	}
}

func detailToResponse(d *restaurant.Detail) RestaurantDetailResponse {
	return RestaurantDetailResponse{
		ID:                d.ID,
		Name:              d.Name,
		Cuisines:          d.Cuisines,
		MenuURL:           d.MenuURL,
		PriceRange:        d.PriceRange,
		PriceSymbols:      d.PriceSymbols(),
		AverageCostForTwo: d.AverageCostForTwo,
		Currency:          d.Currency,
		OnlineDelivery:    d.OnlineDelivery(),
		DeliveringNow:     d.DeliveringNow(),
		FullAddress:       d.Address(),
		Location: LocationResponse{
			Address:     d.Location.Address,
			Locality:    d.Location.Locality,
			City:        d.Location.City,
			Zipcode:     string(d.Location.Zipcode),
			Country:     d.Location.CountryName,
			Coordinates: d.Location.Coordinates,
		},
		Rating: ratingToResponse(d.Rating),
	}
}
