package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flybulgarien/internal/aggregator"
	"github.com/dharmasatrya/flybulgarien/internal/models"
)

func record(from, to string, dep, arr time.Time, price string) models.FlightRecord {
	return models.FlightRecord{
		DepartureAirport: from,
		ArrivalAirport:   to,
		Departure:        dep,
		Arrival:          arr,
		Price:            models.Price{Amount: decimal.RequireFromString(price), Currency: "EUR"},
	}
}

func roundTripResult() (models.FlightRequest, *aggregator.Result) {
	dep := time.Date(2019, 7, 2, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2019, 7, 8, 0, 0, 0, 0, time.UTC)
	req := models.FlightRequest{Origin: "CPH", Destination: "VAR", DepartureDate: dep, ReturnDate: &ret, Seats: 3}

	in := record("VAR", "CPH", time.Date(2019, 7, 8, 16, 0, 0, 0, time.UTC), time.Date(2019, 7, 8, 17, 50, 0, 0, time.UTC), "119.00")
	result := &aggregator.Result{
		SearchID: "abc",
		Itineraries: []models.Itinerary{{
			Outbound: record("CPH", "VAR", time.Date(2019, 7, 2, 21, 50, 0, 0, time.UTC), time.Date(2019, 7, 3, 1, 40, 0, 0, time.UTC), "207.00"),
			Inbound:  &in,
		}},
	}
	return req, result
}

func TestBuild_PartyPrice(t *testing.T) {
	req, result := roundTripResult()
	resp := Build(req, nil, result, 1500*time.Millisecond)

	if resp.Metadata.TotalResults != 1 || resp.Metadata.SearchTimeMs != 1500 || resp.Metadata.Message != "" {
		t.Fatalf("unexpected metadata: %+v", resp.Metadata)
	}
	if resp.SearchCriteria.ReturnDate == nil || *resp.SearchCriteria.ReturnDate != "08.07.2019" {
		t.Fatalf("unexpected criteria: %+v", resp.SearchCriteria)
	}

	f := resp.Flights[0]
	if f.PricePerSeat != "326.00 EUR" || f.Price != "978.00 EUR" || f.Amount != 978 || f.Currency != "EUR" {
		t.Fatalf("unexpected price: %+v", f)
	}
	if f.GoingOut.DepartureDate != "02.07.2019 21:50" || f.GoingOut.ArrivalDate != "03.07.2019 01:40" {
		t.Fatalf("unexpected timestamps: %+v", f.GoingOut)
	}
	if f.GoingOut.Duration != "3:50" || f.GoingOut.DurationMinutes != 230 {
		t.Fatalf("unexpected duration: %+v", f.GoingOut)
	}
	if f.ComingBack == nil || f.ComingBack.Duration != "1:50" {
		t.Fatalf("unexpected inbound leg: %+v", f.ComingBack)
	}
	if f.GoingOut.DepartureTimezone != "Europe/Copenhagen" || f.GoingOut.ArrivalTimezone != "Europe/Sofia" {
		t.Fatalf("unexpected timezones: %+v", f.GoingOut)
	}
	if !strings.HasPrefix(f.GoingOut.DepartureLocal, "2019-07-02T21:50:00") {
		t.Fatalf("unexpected local time %q", f.GoingOut.DepartureLocal)
	}
}

func TestText(t *testing.T) {
	req, result := roundTripResult()
	var buf bytes.Buffer
	if err := Text(&buf, Build(req, nil, result, 0)); err != nil {
		t.Fatalf("Text: %v", err)
	}

	want := "Found results:\n" +
		"Going out: Departure_city: CPH, Arrival_city: VAR, Departure_date: 02.07.2019 21:50, Arrival_date: 03.07.2019 01:40, Duration: 3:50\n" +
		"Coming back: Departure_city: VAR, Arrival_city: CPH, Departure_date: 08.07.2019 16:00, Arrival_date: 08.07.2019 17:50, Duration: 1:50\n" +
		"Price: 978.00 EUR\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestText_Empty(t *testing.T) {
	req, _ := roundTripResult()

	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{"no reason", "", SentinelNoFlights + "\n"},
		{"outbound reason", "No outbound flights found.", "No outbound flights found.\n" + SentinelNoFlights + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			resp := Build(req, nil, &aggregator.Result{Reason: tt.reason}, 0)
			if err := Text(&buf, resp); err != nil {
				t.Fatalf("Text: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("want %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestJSON(t *testing.T) {
	req, result := roundTripResult()
	var buf bytes.Buffer
	if err := JSON(&buf, Build(req, nil, result, 0)); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	flights, ok := decoded["flights"].([]any)
	if !ok || len(flights) != 1 {
		t.Fatalf("unexpected flights: %v", decoded["flights"])
	}
	first := flights[0].(map[string]any)
	if _, ok := first["coming_back"]; !ok {
		t.Fatalf("round trip must carry coming_back")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(4 * time.Hour); got != "4:00" {
		t.Fatalf("want 4:00, got %s", got)
	}
	if got := FormatDuration(65 * time.Minute); got != "1:05" {
		t.Fatalf("want 1:05, got %s", got)
	}
}
