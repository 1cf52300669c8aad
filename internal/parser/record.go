package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/flybulgarien/internal/models"
	"github.com/dharmasatrya/flybulgarien/pkg/currency"
)

// Info row cell positions, zero based.
const (
	cellDate             = 1
	cellDepartureTime    = 2
	cellArrivalTime      = 3
	cellDepartureAirport = 4
	cellArrivalAirport   = 5
)

type ParserConfig struct {
	// DateLayout and ClockLayout are concatenated to parse "Tue, 02 Jul 19" + "21:50".
	DateLayout  string
	ClockLayout string
	// IATAPattern finds the airport code inside a free-text airport name.
	IATAPattern string
	// PriceLabel picks the price cell; PricePattern captures amount and currency.
	PriceLabel   string
	PricePattern string
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		DateLayout:   "Mon, 02 Jan 06",
		ClockLayout:  "15:04",
		IATAPattern:  `[A-Z]{3}`,
		PriceLabel:   "Price",
		PricePattern: `Price:\s+(\d+(?:\.\d{1,2})?)\s*([A-Z]{3})`,
	}
}

type Parser struct {
	layout     string
	clock      string
	iata       *regexp.Regexp
	priceLabel string
	price      *regexp.Regexp
}

func NewParser(cfg ParserConfig) (*Parser, error) {
	iata, err := regexp.Compile(cfg.IATAPattern)
	if err != nil {
		return nil, fmt.Errorf("iata pattern: %w", err)
	}
	price, err := regexp.Compile(cfg.PricePattern)
	if err != nil {
		return nil, fmt.Errorf("price pattern: %w", err)
	}
	if price.NumSubexp() < 2 {
		return nil, fmt.Errorf("price pattern needs amount and currency groups, has %d", price.NumSubexp())
	}
	return &Parser{
		layout:     cfg.DateLayout + cfg.ClockLayout,
		clock:      cfg.ClockLayout,
		iata:       iata,
		priceLabel: cfg.PriceLabel,
		price:      price,
	}, nil
}

// Parse turns a row pair into a FlightRecord. group is only used to label
// errors. Arrival clock times earlier than the departure clock time are taken
// to land the next day.
func (p *Parser) Parse(group models.Leg, row models.FlightRow) (models.FlightRecord, error) {
	malformed := func(field string, err error) error {
		return &models.MalformedRowError{Group: group, Row: row.Index, Field: field, Err: err}
	}

	if len(row.InfoCells) <= cellArrivalAirport {
		return models.FlightRecord{}, malformed("info cells", fmt.Errorf("want at least %d cells, got %d", cellArrivalAirport+1, len(row.InfoCells)))
	}
	cells := row.InfoCells

	departure, err := p.timestamp(cells[cellDate], cells[cellDepartureTime])
	if err != nil {
		return models.FlightRecord{}, malformed("departure time", err)
	}
	arrival, err := p.timestamp(cells[cellDate], cells[cellArrivalTime])
	if err != nil {
		return models.FlightRecord{}, malformed("arrival time", err)
	}
	if clockMinutes(arrival) < clockMinutes(departure) {
		arrival = arrival.AddDate(0, 0, 1)
	}

	depAirport := p.iata.FindString(cells[cellDepartureAirport])
	if depAirport == "" {
		return models.FlightRecord{}, malformed("departure airport", fmt.Errorf("no code in %q", cells[cellDepartureAirport]))
	}
	arrAirport := p.iata.FindString(cells[cellArrivalAirport])
	if arrAirport == "" {
		return models.FlightRecord{}, malformed("arrival airport", fmt.Errorf("no code in %q", cells[cellArrivalAirport]))
	}

	price, err := p.parsePrice(row.PriceCells)
	if err != nil {
		return models.FlightRecord{}, malformed("price", err)
	}

	return models.FlightRecord{
		DepartureAirport: depAirport,
		ArrivalAirport:   arrAirport,
		Departure:        departure,
		Arrival:          arrival,
		Price:            price,
	}, nil
}

// ParseAll parses every row of a group and stops at the first malformed one.
func (p *Parser) ParseAll(group models.Leg, rows []models.FlightRow) ([]models.FlightRecord, error) {
	records := make([]models.FlightRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := p.Parse(group, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *Parser) timestamp(date, clock string) (time.Time, error) {
	return time.Parse(p.layout, strings.TrimSpace(date)+strings.TrimSpace(clock))
}

func (p *Parser) parsePrice(cells []string) (models.Price, error) {
	for _, cell := range cells {
		if !strings.Contains(cell, p.priceLabel) {
			continue
		}
		m := p.price.FindStringSubmatch(cell)
		if m == nil {
			return models.Price{}, fmt.Errorf("no match in %q", cell)
		}
		amount, err := decimal.NewFromString(m[1])
		if err != nil {
			return models.Price{}, fmt.Errorf("amount %q: %w", m[1], err)
		}
		code, err := currency.Normalize(m[2])
		if err != nil {
			return models.Price{}, err
		}
		return models.Price{Amount: amount, Currency: code}, nil
	}
	return models.Price{}, fmt.Errorf("no cell containing %q", p.priceLabel)
}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
