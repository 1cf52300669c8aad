package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/flybulgarien/internal/aggregator"
	"github.com/dharmasatrya/flybulgarien/internal/config"
	"github.com/dharmasatrya/flybulgarien/internal/logging"
	"github.com/dharmasatrya/flybulgarien/internal/metrics"
	"github.com/dharmasatrya/flybulgarien/internal/models"
	"github.com/dharmasatrya/flybulgarien/internal/parser"
	"github.com/dharmasatrya/flybulgarien/internal/providers"
	"github.com/dharmasatrya/flybulgarien/internal/render"
	"github.com/dharmasatrya/flybulgarien/internal/scraper"
	"github.com/dharmasatrya/flybulgarien/internal/sink"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const promptText = "Enter flight details - departure city,arrival city,departure date,number of seats[,arrival date]\n" +
	"in format CPH,BLL,15.07.2019,2[,25.07.2019] or enter \"exit\" to quit: "

type options struct {
	raw        models.RawRequest
	format     string
	configPath string
	filters    *models.SearchFilters
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, time.Now()))
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, now time.Time) int {
	opts, err := parseArgs(args, errOut)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.New(opts.configPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitFailure
	}
	logger := logging.New(errOut, cfg.Log.Level, cfg.Log.Format)

	reg := metrics.NewRegistry()
	limiter, err := cfg.RateLimiter()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitFailure
	}
	fetcher := scraper.NewFetcher(scraper.Config{
		UserAgent:      cfg.Carrier.UserAgent,
		ConnectTimeout: cfg.Carrier.ConnectTimeout,
		ReadTimeout:    cfg.Carrier.ReadTimeout,
		RateLimiter:    limiter,
		Metrics:        reg,
	})
	provider := providers.NewFlyBulgarienProvider(cfg.ProviderConfig(), fetcher)

	recordParser, err := parser.NewParser(parser.DefaultParserConfig())
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitFailure
	}
	agg := aggregator.NewAggregator(provider, aggregator.Config{
		Extractor: parser.NewExtractor(cfg.TableConfig()),
		Parser:    recordParser,
		Metrics:   reg,
		Logger:    logger,
	})

	var dir models.AirportDirectory
	if cfg.Carrier.StrictIATA {
		airports, err := provider.Airports(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "Could not load airport list: %v\n", err)
			return exitFailure
		}
		logger.Debug("airport directory loaded", "airports", airports.Len())
		dir = airports
	}

	validate := func(raw models.RawRequest) (models.FlightRequest, error) {
		return models.NewFlightRequest(raw, now, dir)
	}

	var req models.FlightRequest
	if opts.raw.IsEmpty() {
		var ok bool
		req, ok = promptRequest(in, out, validate)
		if !ok {
			return exitOK
		}
	} else {
		req, err = validate(opts.raw)
		if err != nil {
			fmt.Fprintf(errOut, "Input data incorrect. %v\n", err)
			return exitUsage
		}
	}

	start := time.Now()
	result, err := agg.Search(ctx, req, opts.filters)
	if err != nil {
		fmt.Fprintln(errOut, failureMessage(err))
		return exitFailure
	}
	resp := render.Build(req, opts.filters, result, time.Since(start))

	if opts.format == "json" {
		err = render.JSON(out, resp)
	} else {
		err = render.Text(out, resp)
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitFailure
	}

	if cfg.Redis.Enabled {
		publish(ctx, cfg, resp, logger)
	}
	return exitOK
}

func parseArgs(args []string, errOut io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("flybulgarien", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&opts.raw.DepCity, "dep_city", "", "departure airport IATA code, e.g. CPH")
	fs.StringVar(&opts.raw.ArrCity, "arr_city", "", "arrival airport IATA code, e.g. VAR")
	fs.StringVar(&opts.raw.DepDate, "dep_date", "", "departure date DD.MM.YYYY")
	fs.StringVar(&opts.raw.ArrDate, "arr_date", "", "return date DD.MM.YYYY, omit for one-way")
	fs.StringVar(&opts.raw.NumSeats, "num_seats", "", "number of seats, 1-8")
	fs.StringVar(&opts.format, "format", "text", "output format: text or json")
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	filters := &models.SearchFilters{}
	fs.Func("price_max", "maximum party price", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		filters.PriceMax = &v
		return nil
	})
	fs.Func("max_duration", "maximum leg duration in minutes", func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		filters.MaxDuration = &v
		return nil
	})
	fs.Func("dep_time_min", "earliest outbound departure HH:MM", timeOfDay(&filters.DepartureTimeMin))
	fs.Func("dep_time_max", "latest outbound departure HH:MM", timeOfDay(&filters.DepartureTimeMax))

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		fmt.Fprintln(errOut, err)
		return options{}, err
	}
	if opts.format != "text" && opts.format != "json" {
		err := fmt.Errorf("unknown format %q", opts.format)
		fmt.Fprintln(errOut, err)
		return options{}, err
	}
	if *filters != (models.SearchFilters{}) {
		opts.filters = filters
	}
	return opts, nil
}

func timeOfDay(dst **string) func(string) error {
	return func(s string) error {
		if _, err := time.Parse("15:04", s); err != nil {
			return fmt.Errorf("want HH:MM: %w", err)
		}
		*dst = &s
		return nil
	}
}

// promptRequest reads request lines until one validates. It returns false
// when the user types exit or input ends.
func promptRequest(in io.Reader, out io.Writer, validate func(models.RawRequest) (models.FlightRequest, error)) (models.FlightRequest, bool) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptText)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return models.FlightRequest{}, false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			return models.FlightRequest{}, false
		}

		req, err := validate(parseLine(line))
		if err != nil {
			fmt.Fprintf(out, "Input data incorrect. %v\n", err)
			continue
		}
		return req, true
	}
}

// parseLine splits "CPH,BLL,15.07.2019,2[,25.07.2019]". Missing fields stay
// empty and are reported by validation.
func parseLine(line string) models.RawRequest {
	fields := strings.Split(line, ",")
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	return models.RawRequest{
		DepCity:  field(0),
		ArrCity:  field(1),
		DepDate:  field(2),
		NumSeats: field(3),
		ArrDate:  field(4),
	}
}

func failureMessage(err error) string {
	var ne *models.NetworkError
	switch {
	case errors.As(err, &ne) && ne.Kind == models.NetworkHTTPStatus:
		return fmt.Sprintf("Code: %d %s", ne.StatusCode, ne.URL)
	case errors.As(err, &ne) && ne.Kind == models.NetworkTimeout:
		return fmt.Sprintf("ReadTime Error: %v", err)
	case errors.As(err, &ne):
		return fmt.Sprintf("Connection Error: %v", err)
	case errors.Is(err, models.ErrMalformedRow):
		return fmt.Sprintf("Unexpected page layout: %v", err)
	default:
		return err.Error()
	}
}

func publish(ctx context.Context, cfg *config.Config, resp models.SearchResponse, logger *slog.Logger) {
	s, err := sink.NewRedisSink(cfg.SinkConfig())
	if err != nil {
		logger.Warn("result sink unavailable", "error", err)
		return
	}
	defer s.Close()

	if err := s.Publish(ctx, resp); err != nil {
		logger.Warn("result sink publish failed", "search_id", resp.Metadata.SearchID, "error", err)
	}
}
