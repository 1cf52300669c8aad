package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/flybulgarien/internal/filter"
	"github.com/dharmasatrya/flybulgarien/internal/metrics"
	"github.com/dharmasatrya/flybulgarien/internal/models"
	"github.com/dharmasatrya/flybulgarien/internal/parser"
	"github.com/dharmasatrya/flybulgarien/internal/providers"
)

type Config struct {
	// Timeout bounds a whole search. Zero leaves it to the fetcher timeouts.
	Timeout   time.Duration
	Extractor *parser.Extractor
	Parser    *parser.Parser
	Metrics   *metrics.Registry
	Logger    *slog.Logger
}

type Aggregator struct {
	provider providers.Provider
	config   Config
}

// Result is the ordered set of itineraries for one search. Reason is set
// when the carrier had nothing to offer.
type Result struct {
	SearchID    string
	Itineraries []models.Itinerary
	Reason      string
	Dropped     int
}

func NewAggregator(provider providers.Provider, config Config) *Aggregator {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Aggregator{
		provider: provider,
		config:   config,
	}
}

// Search runs one request through fetch, extraction, parsing and pairing and
// returns the itineraries sorted by price. A carrier answer without flights
// is a Result with a Reason, not an error.
func (a *Aggregator) Search(ctx context.Context, req models.FlightRequest, filters *models.SearchFilters) (*Result, error) {
	searchCtx := ctx
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	result := &Result{
		SearchID:    uuid.NewString(),
		Itineraries: make([]models.Itinerary, 0),
	}
	log := a.config.Logger.With("search_id", result.SearchID, "provider", a.provider.Name())

	itineraries, dropped, err := a.collect(searchCtx, log, req)
	result.Dropped = dropped

	var noResults *models.NoResultsError
	switch {
	case errors.As(err, &noResults):
		log.Info("no flights", "reason", noResults.Error())
		result.Reason = noResults.Error()
		a.countSearch("no_results")
		return result, nil
	case err != nil:
		a.reportFailure(log, err)
		return nil, err
	}

	result.Itineraries = filter.Apply(itineraries, filters, req.Seats)
	if len(result.Itineraries) == 0 {
		result.Reason = (&models.NoResultsError{}).Error()
	}

	log.Info("search completed",
		"origin", req.Origin,
		"destination", req.Destination,
		"round_trip", req.IsRoundTrip(),
		"itineraries", len(result.Itineraries),
		"dropped_pairs", dropped,
	)
	if a.config.Metrics != nil {
		a.config.Metrics.Itineraries.Observe(float64(len(result.Itineraries)))
		a.config.Metrics.DroppedPairs.Add(float64(dropped))
	}
	a.countSearch("ok")

	return result, nil
}

func (a *Aggregator) collect(ctx context.Context, log *slog.Logger, req models.FlightRequest) ([]models.Itinerary, int, error) {
	doc, err := a.provider.Search(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	tables, err := a.config.Extractor.Extract(doc)
	if err != nil {
		return nil, 0, err
	}

	if len(tables.Outbound) == 0 {
		return nil, 0, &models.NoResultsError{Leg: models.LegOutbound}
	}
	outbound, err := a.config.Parser.ParseAll(models.LegOutbound, tables.Outbound)
	if err != nil {
		return nil, 0, err
	}

	if !req.IsRoundTrip() {
		if tables.HasInbound {
			log.Warn("ignoring return section on one-way search", "inbound_rows", len(tables.Inbound))
		}
		return OneWay(outbound), 0, nil
	}

	if !tables.HasInbound {
		log.Warn("carrier page has no return section")
	}
	if len(tables.Inbound) == 0 {
		return nil, 0, &models.NoResultsError{Leg: models.LegInbound}
	}
	inbound, err := a.config.Parser.ParseAll(models.LegInbound, tables.Inbound)
	if err != nil {
		return nil, 0, err
	}

	itineraries, dropped := Combine(req, outbound, inbound)
	return itineraries, dropped, nil
}

func (a *Aggregator) reportFailure(log *slog.Logger, err error) {
	var malformed *models.MalformedRowError
	if errors.As(err, &malformed) {
		log.Error("result markup changed",
			"group", string(malformed.Group),
			"row", malformed.Row,
			"field", malformed.Field,
			"error", err,
		)
		if a.config.Metrics != nil {
			a.config.Metrics.MalformedRows.WithLabelValues(string(malformed.Group), malformed.Field).Inc()
		}
		a.countSearch("malformed")
		return
	}

	log.Error("search failed", "error", err)
	a.countSearch("error")
}

func (a *Aggregator) countSearch(outcome string) {
	if a.config.Metrics != nil {
		a.config.Metrics.Searches.WithLabelValues(outcome).Inc()
	}
}
