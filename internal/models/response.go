package models

type SearchCriteria struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Passengers    int            `json:"passengers"`
	Filters       *SearchFilters `json:"filters,omitempty"`
}

type SearchMetadata struct {
	SearchID     string `json:"search_id"`
	TotalResults int    `json:"total_results"`
	SearchTimeMs int64  `json:"search_time_ms"`
	Message      string `json:"message,omitempty"`
}

type LegResponse struct {
	DepartureAirport  string `json:"departure_city"`
	ArrivalAirport    string `json:"arrival_city"`
	DepartureDate     string `json:"departure_date"`
	ArrivalDate       string `json:"arrival_date"`
	DepartureLocal    string `json:"departure_local"`
	ArrivalLocal      string `json:"arrival_local"`
	DepartureTimezone string `json:"departure_timezone,omitempty"`
	ArrivalTimezone   string `json:"arrival_timezone,omitempty"`
	Duration          string `json:"duration"`
	DurationMinutes   int    `json:"duration_minutes"`
	Price             string `json:"price"`
}

type ItineraryResponse struct {
	GoingOut       LegResponse  `json:"going_out"`
	ComingBack     *LegResponse `json:"coming_back,omitempty"`
	PricePerSeat   string       `json:"price_per_seat"`
	Price          string       `json:"price"`
	Amount         float64      `json:"amount"`
	Currency       string       `json:"currency"`
	BestValueScore float64      `json:"best_value_score"`
}

type SearchResponse struct {
	SearchCriteria SearchCriteria      `json:"search_criteria"`
	Metadata       SearchMetadata      `json:"metadata"`
	Flights        []ItineraryResponse `json:"flights"`
}

type AirportsResponse struct {
	Airports []string `json:"airports"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
