package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Price struct {
	Amount   decimal.Decimal
	Currency string
}

// FlightRow is one displayed leg as the backend lays it out: an info row
// followed by a price row. Cells hold the trimmed text of each td.
type FlightRow struct {
	Index      int
	InfoCells  []string
	PriceCells []string
}

// FlightRecord is a parsed leg. Timestamps are the carrier's local clock
// times; Arrival is never before Departure.
type FlightRecord struct {
	DepartureAirport string
	ArrivalAirport   string
	Departure        time.Time
	Arrival          time.Time
	Price            Price
}

func (f FlightRecord) Duration() time.Duration {
	return f.Arrival.Sub(f.Departure)
}

// Itinerary is a single leg for one-way searches or an outbound/inbound pair.
type Itinerary struct {
	Outbound FlightRecord
	Inbound  *FlightRecord
}

func (i Itinerary) Legs() []FlightRecord {
	if i.Inbound == nil {
		return []FlightRecord{i.Outbound}
	}
	return []FlightRecord{i.Outbound, *i.Inbound}
}

// TotalPrice sums the leg prices. Legs are expected to share a currency; the
// combiner drops pairs that do not.
func (i Itinerary) TotalPrice() Price {
	total := i.Outbound.Price.Amount
	if i.Inbound != nil {
		total = total.Add(i.Inbound.Price.Amount)
	}
	return Price{Amount: total, Currency: i.Outbound.Price.Currency}
}

// IataDirectory is the ordered set of departure airports offered by the carrier.
type IataDirectory struct {
	codes []string
	index map[string]struct{}
}

func NewIataDirectory(codes []string) *IataDirectory {
	d := &IataDirectory{index: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if _, dup := d.index[c]; dup {
			continue
		}
		d.index[c] = struct{}{}
		d.codes = append(d.codes, c)
	}
	return d
}

func (d *IataDirectory) Contains(code string) bool {
	_, ok := d.index[code]
	return ok
}

func (d *IataDirectory) Codes() []string {
	return append([]string(nil), d.codes...)
}

func (d *IataDirectory) Len() int {
	return len(d.codes)
}
