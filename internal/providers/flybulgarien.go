package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

// Fetcher is the transport the provider issues its GET requests through.
type Fetcher interface {
	Fetch(ctx context.Context, target, rawURL string, params url.Values) (*goquery.Document, error)
}

type FlyBulgarienConfig struct {
	SearchURL         string
	DirectoryURL      string
	DirectorySelector string
	Lang              language.Tag
}

func DefaultFlyBulgarienConfig() FlyBulgarienConfig {
	return FlyBulgarienConfig{
		SearchURL:         "https://apps.penguin.bg/fly/quote3.aspx",
		DirectoryURL:      "https://www.flybulgarien.dk/en/",
		DirectorySelector: "select#departure-city",
		Lang:              language.English,
	}
}

type FlyBulgarienProvider struct {
	config  FlyBulgarienConfig
	fetcher Fetcher
}

func NewFlyBulgarienProvider(config FlyBulgarienConfig, fetcher Fetcher) *FlyBulgarienProvider {
	return &FlyBulgarienProvider{config: config, fetcher: fetcher}
}

func (p *FlyBulgarienProvider) Name() string {
	return "flybulgarien"
}

func (p *FlyBulgarienProvider) Search(ctx context.Context, req models.FlightRequest) (*goquery.Document, error) {
	doc, err := p.fetcher.Fetch(ctx, "search", p.config.SearchURL, SearchParams(req, p.config.Lang))
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	return doc, nil
}

// Airports reads the departure-city dropdown of the landing page. The first
// option is the "choose a city" placeholder and is skipped.
func (p *FlyBulgarienProvider) Airports(ctx context.Context) (*models.IataDirectory, error) {
	doc, err := p.fetcher.Fetch(ctx, "directory", p.config.DirectoryURL, nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	sel := doc.Find(p.config.DirectorySelector).First()
	if sel.Length() == 0 {
		return nil, NewProviderError(p.Name(), models.ErrDirectoryUnavailable)
	}

	var codes []string
	options := sel.Find("option")
	if options.Length() > 1 {
		options.Slice(1, goquery.ToEnd).Each(func(_ int, opt *goquery.Selection) {
			if v := strings.TrimSpace(opt.AttrOr("value", "")); v != "" {
				codes = append(codes, v)
			}
		})
	}
	return models.NewIataDirectory(codes), nil
}

// SearchParams maps a request onto the quote3.aspx query string. One-way
// queries carry an empty "ow" flag; round trips swap it for "rt" and add
// "rtdate".
func SearchParams(req models.FlightRequest, lang language.Tag) url.Values {
	base, _ := lang.Base()
	params := url.Values{
		"lang":     {base.String()},
		"depdate":  {models.FormatDate(req.DepartureDate)},
		"aptcode1": {req.Origin},
		"aptcode2": {req.Destination},
		"paxcount": {strconv.Itoa(req.Seats)},
		"infcount": {""},
	}

	if req.IsRoundTrip() {
		params.Set("rt", "")
		params.Set("rtdate", models.FormatDate(*req.ReturnDate))
	} else {
		params.Set("ow", "")
	}

	return params
}
