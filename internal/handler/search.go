package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flybulgarien/internal/aggregator"
	"github.com/dharmasatrya/flybulgarien/internal/models"
	"github.com/dharmasatrya/flybulgarien/internal/providers"
	"github.com/dharmasatrya/flybulgarien/internal/render"
	"github.com/dharmasatrya/flybulgarien/internal/sink"
)

type Searcher interface {
	Search(ctx context.Context, req models.FlightRequest, filters *models.SearchFilters) (*aggregator.Result, error)
}

// SeatCount accepts num_seats as a JSON string or any other JSON value and
// keeps its text, so a non-integer is rejected by request validation rather
// than by the body decoder.
type SeatCount string

func (s *SeatCount) UnmarshalJSON(data []byte) error {
	// null decodes as an empty string and is reported as a missing field.
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = SeatCount(text)
		return nil
	}
	*s = SeatCount(data)
	return nil
}

// SearchBody is the POST body of a search.
type SearchBody struct {
	DepCity  string                `json:"dep_city"`
	ArrCity  string                `json:"arr_city"`
	DepDate  string                `json:"dep_date"`
	ArrDate  string                `json:"arr_date"`
	NumSeats SeatCount             `json:"num_seats"`
	Filters  *models.SearchFilters `json:"filters,omitempty"`
}

func (b SearchBody) raw() models.RawRequest {
	return models.RawRequest{
		DepCity:  b.DepCity,
		ArrCity:  b.ArrCity,
		DepDate:  b.DepDate,
		ArrDate:  b.ArrDate,
		NumSeats: string(b.NumSeats),
	}
}

type Options struct {
	// StrictIATA checks both airports against the carrier's directory.
	StrictIATA bool
	Logger     *slog.Logger
	// Now is the clock used for the departure date check.
	Now func() time.Time
}

type SearchHandler struct {
	searcher  Searcher
	directory providers.DirectorySource
	sink      sink.Sink
	opts      Options

	mu       sync.Mutex
	airports *models.IataDirectory
}

func NewSearchHandler(s Searcher, directory providers.DirectorySource, out sink.Sink, opts Options) *SearchHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if out == nil {
		out = sink.NewNoOpSink()
	}
	return &SearchHandler{
		searcher:  s,
		directory: directory,
		sink:      out,
		opts:      opts,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var body SearchBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	var dir models.AirportDirectory
	if h.opts.StrictIATA {
		airports, err := h.loadAirports(ctx)
		if err != nil {
			return h.upstreamError(c, err)
		}
		dir = airports
	}

	req, err := models.NewFlightRequest(body.raw(), h.opts.Now(), dir)
	if err != nil {
		if _, ok := models.InvalidRequestReason(err); ok {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		return h.upstreamError(c, err)
	}

	result, err := h.searcher.Search(ctx, req, body.Filters)
	if err != nil {
		return h.upstreamError(c, err)
	}

	resp := render.Build(req, body.Filters, result, time.Since(startTime))
	if err := h.sink.Publish(ctx, resp); err != nil {
		h.opts.Logger.Warn("result sink publish failed", "search_id", resp.Metadata.SearchID, "error", err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) Airports(c echo.Context) error {
	airports, err := h.loadAirports(c.Request().Context())
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, models.AirportsResponse{Airports: airports.Codes()})
}

// loadAirports fetches the directory on first use and keeps it for the life
// of the process. Failures are not remembered.
func (h *SearchHandler) loadAirports(ctx context.Context) (*models.IataDirectory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.airports != nil {
		return h.airports, nil
	}
	airports, err := h.directory.Airports(ctx)
	if err != nil {
		return nil, err
	}
	h.airports = airports
	return airports, nil
}

func (h *SearchHandler) upstreamError(c echo.Context, err error) error {
	status, code := http.StatusBadGateway, "upstream_error"
	switch {
	case errors.Is(err, models.ErrMalformedRow):
		code = "upstream_markup_changed"
	case errors.Is(err, models.ErrDirectoryUnavailable):
		code = "directory_unavailable"
	case errors.Is(err, context.Canceled):
		status, code = http.StatusServiceUnavailable, "request_canceled"
	}

	var ne *models.NetworkError
	if errors.As(err, &ne) && ne.Kind == models.NetworkTimeout {
		code = "upstream_timeout"
	}

	h.opts.Logger.Error("search request failed", "error", err, "code", code)
	return c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
