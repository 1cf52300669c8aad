package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the DD.MM.YYYY format used by both the user input and the
// carrier's query string.
const DateLayout = "02.01.2006"

const (
	MinSeats = 1
	MaxSeats = 8
)

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("iata", func(fl validator.FieldLevel) bool {
		return iataPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// RawRequest holds the flight parameters as typed by the user.
type RawRequest struct {
	DepCity  string `json:"dep_city" validate:"required,iata"`
	ArrCity  string `json:"arr_city" validate:"required,iata"`
	DepDate  string `json:"dep_date" validate:"required"`
	ArrDate  string `json:"arr_date,omitempty"`
	NumSeats string `json:"num_seats" validate:"required"`
}

func (r RawRequest) IsEmpty() bool {
	return r.DepCity == "" && r.ArrCity == "" && r.DepDate == "" && r.ArrDate == "" && r.NumSeats == ""
}

func (r RawRequest) trimmed() RawRequest {
	return RawRequest{
		DepCity:  strings.TrimSpace(r.DepCity),
		ArrCity:  strings.TrimSpace(r.ArrCity),
		DepDate:  strings.TrimSpace(r.DepDate),
		ArrDate:  strings.TrimSpace(r.ArrDate),
		NumSeats: strings.TrimSpace(r.NumSeats),
	}
}

// AirportDirectory is consulted by the strict IATA policy.
type AirportDirectory interface {
	Contains(code string) bool
}

type FlightRequest struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Seats         int
}

func (r FlightRequest) IsRoundTrip() bool {
	return r.ReturnDate != nil
}

// NewFlightRequest validates raw in a fixed order and stops at the first
// failing check. today is compared by calendar date only. A nil directory
// skips the membership check.
func NewFlightRequest(raw RawRequest, today time.Time, directory AirportDirectory) (FlightRequest, error) {
	raw = raw.trimmed()

	if err := validate.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return FlightRequest{}, err
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return FlightRequest{}, fmt.Errorf("%w: %s", ErrMissingField, fe.Field())
			}
		}
		return FlightRequest{}, fmt.Errorf("%w: must consist of three uppercase letters", ErrBadIATACode)
	}

	if directory != nil {
		for _, code := range []string{raw.DepCity, raw.ArrCity} {
			if !directory.Contains(code) {
				return FlightRequest{}, fmt.Errorf("%w: %s is not served", ErrBadIATACode, code)
			}
		}
	}

	seats, err := strconv.Atoi(raw.NumSeats)
	if err != nil || seats < MinSeats || seats > MaxSeats {
		return FlightRequest{}, fmt.Errorf("%w: must be a number in [%d,%d]", ErrBadSeatCount, MinSeats, MaxSeats)
	}

	depDate, err := ParseDate(raw.DepDate)
	if err != nil {
		return FlightRequest{}, fmt.Errorf("%w: must be DD.MM.YYYY", ErrBadDate)
	}
	if depDate.Before(dateOnly(today)) {
		return FlightRequest{}, fmt.Errorf("%w: should not be earlier than today", ErrBadDate)
	}

	req := FlightRequest{
		Origin:        raw.DepCity,
		Destination:   raw.ArrCity,
		DepartureDate: depDate,
		Seats:         seats,
	}

	if raw.ArrDate != "" {
		retDate, err := ParseDate(raw.ArrDate)
		if err != nil {
			return FlightRequest{}, fmt.Errorf("%w: must be DD.MM.YYYY", ErrBadReturnDate)
		}
		if retDate.Before(depDate) {
			return FlightRequest{}, fmt.Errorf("%w: should not be earlier than departure date", ErrBadReturnDate)
		}
		req.ReturnDate = &retDate
	}

	return req, nil
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDate reports whether a and b fall on the same calendar day, ignoring
// their locations.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SearchFilters narrow a result set after it has been combined.
type SearchFilters struct {
	PriceMax         *float64 `json:"price_max,omitempty"`
	MaxDuration      *int     `json:"max_duration,omitempty"`
	DepartureTimeMin *string  `json:"departure_time_min,omitempty"`
	DepartureTimeMax *string  `json:"departure_time_max,omitempty"`
}
