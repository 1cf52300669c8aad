package providers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

type fakeFetcher struct {
	html   string
	err    error
	target string
	url    string
	params url.Values
}

func (f *fakeFetcher) Fetch(_ context.Context, target, rawURL string, params url.Values) (*goquery.Document, error) {
	f.target, f.url, f.params = target, rawURL, params
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

func oneWay() models.FlightRequest {
	return models.FlightRequest{
		Origin:        "CPH",
		Destination:   "BOJ",
		DepartureDate: time.Date(2019, 7, 15, 0, 0, 0, 0, time.UTC),
		Seats:         2,
	}
}

func TestSearchParams_OneWay(t *testing.T) {
	p := SearchParams(oneWay(), language.English)

	want := map[string]string{
		"lang": "en", "depdate": "15.07.2019", "aptcode1": "CPH",
		"aptcode2": "BOJ", "paxcount": "2", "infcount": "", "ow": "",
	}
	for k, v := range want {
		if !p.Has(k) || p.Get(k) != v {
			t.Fatalf("param %s: want %q, got %q (present=%v)", k, v, p.Get(k), p.Has(k))
		}
	}
	if p.Has("rt") || p.Has("rtdate") {
		t.Fatalf("one-way query must not carry round-trip params: %v", p)
	}
}

func TestSearchParams_RoundTrip(t *testing.T) {
	req := oneWay()
	ret := time.Date(2019, 7, 25, 0, 0, 0, 0, time.UTC)
	req.ReturnDate = &ret

	p := SearchParams(req, language.MustParse("en-GB"))
	if p.Has("ow") || !p.Has("rt") {
		t.Fatalf("round trip must swap ow for rt: %v", p)
	}
	if p.Get("rtdate") != "25.07.2019" || p.Get("lang") != "en" {
		t.Fatalf("unexpected params: %v", p)
	}
}

func TestSearch_UsesConfiguredURL(t *testing.T) {
	ff := &fakeFetcher{html: "<html></html>"}
	cfg := DefaultFlyBulgarienConfig()
	cfg.SearchURL = "http://upstream.test/fly/quote3.aspx"

	if _, err := NewFlyBulgarienProvider(cfg, ff).Search(context.Background(), oneWay()); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if ff.target != "search" || ff.url != cfg.SearchURL || ff.params.Get("aptcode2") != "BOJ" {
		t.Fatalf("unexpected fetch: %s %s %v", ff.target, ff.url, ff.params)
	}
}

func TestSearch_WrapsNetworkError(t *testing.T) {
	netErr := &models.NetworkError{Kind: models.NetworkTimeout, URL: "x", Err: context.DeadlineExceeded}
	ff := &fakeFetcher{err: netErr}

	_, err := NewFlyBulgarienProvider(DefaultFlyBulgarienConfig(), ff).Search(context.Background(), oneWay())
	var ne *models.NetworkError
	if !errors.As(err, &ne) || ne.Kind != models.NetworkTimeout {
		t.Fatalf("want wrapped timeout, got %v", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != "flybulgarien" {
		t.Fatalf("want provider error, got %v", err)
	}
}

func TestAirports(t *testing.T) {
	ff := &fakeFetcher{html: `<html><body><form>
<select id="departure-city" name="departure-city">
  <option value="">Departure city</option>
  <option value="CPH">Copenhagen</option>
  <option value="BLL">Billund</option>
  <option value=" AAR ">Aarhus</option>
</select>
<select id="arrival-city"><option value="">Arrival city</option><option value="VAR">Varna</option></select>
</form></body></html>`}

	dir, err := NewFlyBulgarienProvider(DefaultFlyBulgarienConfig(), ff).Airports(context.Background())
	if err != nil {
		t.Fatalf("Airports: %v", err)
	}
	got := dir.Codes()
	want := []string{"CPH", "BLL", "AAR"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("want %v, got %v", want, got)
	}
	if ff.target != "directory" {
		t.Fatalf("unexpected fetch target %q", ff.target)
	}
}

func TestAirports_OnlyPlaceholder(t *testing.T) {
	ff := &fakeFetcher{html: `<select id="departure-city"><option value="">Departure city</option></select>`}
	dir, err := NewFlyBulgarienProvider(DefaultFlyBulgarienConfig(), ff).Airports(context.Background())
	if err != nil {
		t.Fatalf("Airports: %v", err)
	}
	if dir.Len() != 0 {
		t.Fatalf("want empty directory, got %v", dir.Codes())
	}
}

func TestAirports_ControlMissing(t *testing.T) {
	ff := &fakeFetcher{html: `<html><body><p>maintenance</p></body></html>`}
	_, err := NewFlyBulgarienProvider(DefaultFlyBulgarienConfig(), ff).Airports(context.Background())
	if !errors.Is(err, models.ErrDirectoryUnavailable) {
		t.Fatalf("want directory unavailable, got %v", err)
	}
}
