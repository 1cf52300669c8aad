package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/dharmasatrya/flybulgarien/internal/metrics"
	"github.com/dharmasatrya/flybulgarien/internal/models"
	"github.com/dharmasatrya/flybulgarien/internal/ratelimit"
)

type Config struct {
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	RateLimiter    *ratelimit.HostLimiter
	Metrics        *metrics.Registry
}

// Fetcher performs single GET requests and hands back the parsed page.
// Failures are classified into *models.NetworkError and never retried.
type Fetcher struct {
	config    Config
	transport *http.Transport
}

func NewFetcher(config Config) *Fetcher {
	dialer := &net.Dialer{Timeout: config.ConnectTimeout}
	return &Fetcher{
		config: config,
		transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   config.ConnectTimeout,
			ResponseHeaderTimeout: config.ReadTimeout,
		},
	}
}

// Fetch GETs rawURL with params. target labels the call in metrics and logs.
func (f *Fetcher) Fetch(ctx context.Context, target, rawURL string, params url.Values) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s url: %w", target, err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	full := u.String()

	if f.config.RateLimiter != nil {
		if err := f.config.RateLimiter.Wait(ctx, u.Host); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			return nil, &models.NetworkError{Kind: models.NetworkTimeout, URL: full, Err: err}
		}
	}

	start := time.Now()
	doc, err := f.visit(ctx, full)
	if f.config.Metrics != nil {
		f.config.Metrics.ObserveFetch(target, outcome(err), time.Since(start))
	}
	return doc, err
}

func (f *Fetcher) visit(ctx context.Context, full string) (*goquery.Document, error) {
	timeout := f.config.ConnectTimeout + f.config.ReadTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	if f.config.UserAgent != "" {
		c.UserAgent = f.config.UserAgent
	}
	c.WithTransport(&contextTransport{ctx: ctx, base: f.transport})
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	var (
		doc      *goquery.Document
		parseErr error
		status   int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		doc, parseErr = goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	})
	c.OnError(func(r *colly.Response, _ error) {
		status = r.StatusCode
	})

	if err := c.Visit(full); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, classify(full, status, err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("parse %s: %w", full, parseErr)
	}
	if doc == nil {
		return nil, &models.NetworkError{Kind: models.NetworkHTTPStatus, URL: full, StatusCode: status, Err: errors.New("empty response")}
	}
	return doc, nil
}

func classify(full string, status int, err error) *models.NetworkError {
	if status != 0 && (status < 200 || status > 299) {
		return &models.NetworkError{Kind: models.NetworkHTTPStatus, URL: full, StatusCode: status, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &models.NetworkError{Kind: models.NetworkConnect, URL: full, Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &models.NetworkError{Kind: models.NetworkTimeout, URL: full, Err: err}
	}

	return &models.NetworkError{Kind: models.NetworkConnect, URL: full, Err: err}
}

func outcome(err error) string {
	var ne *models.NetworkError
	if errors.As(err, &ne) {
		return string(ne.Kind)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if err != nil {
		return "error"
	}
	return "ok"
}

// contextTransport ties every request issued by the collector to ctx.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
