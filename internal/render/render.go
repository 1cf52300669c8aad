package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flybulgarien/internal/aggregator"
	"github.com/dharmasatrya/flybulgarien/internal/models"
	"github.com/dharmasatrya/flybulgarien/internal/ranking"
	"github.com/dharmasatrya/flybulgarien/internal/timezone"
	"github.com/dharmasatrya/flybulgarien/pkg/currency"
)

// SentinelNoFlights is printed instead of a result list when nothing matched.
const SentinelNoFlights = "No flights found for requested data."

const TimestampLayout = "02.01.2006 15:04"

// Build turns a search result into the response shared by the CLI and the
// HTTP API. Itineraries keep the order of result.
func Build(req models.FlightRequest, filters *models.SearchFilters, result *aggregator.Result, elapsed time.Duration) models.SearchResponse {
	criteria := models.SearchCriteria{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: models.FormatDate(req.DepartureDate),
		Passengers:    req.Seats,
		Filters:       filters,
	}
	if req.ReturnDate != nil {
		ret := models.FormatDate(*req.ReturnDate)
		criteria.ReturnDate = &ret
	}

	scores := ranking.Scores(result.Itineraries)
	flights := make([]models.ItineraryResponse, 0, len(result.Itineraries))
	for i, it := range result.Itineraries {
		resp := itinerary(it, req.Seats)
		resp.BestValueScore = scores[i]
		flights = append(flights, resp)
	}

	message := result.Reason
	if len(flights) == 0 && message == "" {
		message = SentinelNoFlights
	}

	return models.SearchResponse{
		SearchCriteria: criteria,
		Metadata: models.SearchMetadata{
			SearchID:     result.SearchID,
			TotalResults: len(flights),
			SearchTimeMs: elapsed.Milliseconds(),
			Message:      message,
		},
		Flights: flights,
	}
}

func itinerary(it models.Itinerary, seats int) models.ItineraryResponse {
	total := it.TotalPrice()
	party := total.Amount.Mul(decimal.NewFromInt(int64(seats)))

	resp := models.ItineraryResponse{
		GoingOut:     leg(it.Outbound),
		PricePerSeat: currency.Format(total.Amount, total.Currency),
		Price:        currency.Format(party, total.Currency),
		Amount:       party.InexactFloat64(),
		Currency:     total.Currency,
	}
	if it.Inbound != nil {
		back := leg(*it.Inbound)
		resp.ComingBack = &back
	}
	return resp
}

func leg(r models.FlightRecord) models.LegResponse {
	minutes := int(r.Duration().Minutes())
	return models.LegResponse{
		DepartureAirport:  r.DepartureAirport,
		ArrivalAirport:    r.ArrivalAirport,
		DepartureDate:     r.Departure.Format(TimestampLayout),
		ArrivalDate:       r.Arrival.Format(TimestampLayout),
		DepartureLocal:    timezone.InAirportZone(r.Departure, r.DepartureAirport).Format(time.RFC3339),
		ArrivalLocal:      timezone.InAirportZone(r.Arrival, r.ArrivalAirport).Format(time.RFC3339),
		DepartureTimezone: timezone.NameForAirport(r.DepartureAirport),
		ArrivalTimezone:   timezone.NameForAirport(r.ArrivalAirport),
		Duration:          FormatDuration(r.Duration()),
		DurationMinutes:   minutes,
		Price:             currency.Format(r.Price.Amount, r.Price.Currency),
	}
}

// FormatDuration prints d as H:MM.
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// Text writes one block per itinerary:
//
//	Going out: Departure_city: CPH, Arrival_city: VAR, Departure_date: 02.07.2019 21:50, ...
//	Coming back: ...
//	Price: 414.00 EUR
func Text(w io.Writer, resp models.SearchResponse) error {
	if len(resp.Flights) == 0 {
		if resp.Metadata.Message != "" && resp.Metadata.Message != SentinelNoFlights {
			if _, err := fmt.Fprintln(w, resp.Metadata.Message); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w, SentinelNoFlights)
		return err
	}

	if _, err := fmt.Fprintln(w, "Found results:"); err != nil {
		return err
	}
	for _, f := range resp.Flights {
		if err := writeLeg(w, "Going out:", f.GoingOut); err != nil {
			return err
		}
		if f.ComingBack != nil {
			if err := writeLeg(w, "Coming back:", *f.ComingBack); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Price: %s\n\n", f.Price); err != nil {
			return err
		}
	}
	return nil
}

func writeLeg(w io.Writer, header string, l models.LegResponse) error {
	_, err := fmt.Fprintf(w, "%s Departure_city: %s, Arrival_city: %s, Departure_date: %s, Arrival_date: %s, Duration: %s\n",
		header, l.DepartureAirport, l.ArrivalAirport, l.DepartureDate, l.ArrivalDate, l.Duration)
	return err
}

// JSON writes resp as indented JSON.
func JSON(w io.Writer, resp models.SearchResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
