// client.go fetches pages and footnotes, it knows nothing about how they are
// parsed.

package scripture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"scripture-scraper/internal/components/assert"
	"scripture-scraper/internal/components/chrono"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/lib/restyutil"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/scripture")

const (
	report_client_fetch       = "client.fetch"
	report_client_fetch_retry = "client.fetch-retry"
	report_client_cache       = "client.cache"
)

type ClientOptions struct {
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// 0 means no limit
	RequestsPerSecond float64

	// attempts per fetch, values below 1 are treated as 1
	MaxAttempts int
	// the delay before retry n is BaseDelay * n
	BaseDelay time.Duration

	// nil disables caching
	Cache *badger.DB
	// 0 means cached pages never expire
	CacheLifetime time.Duration
	// defaults to chrono.StandardImpl
	Clock chrono.API

	// receives every http exchange when set, for diagnosing markup
	Dump restyutil.Output
}

// Client fetches documents from one site. It satisfies Fetcher.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	maxAttempts   uint
	baseDelay     time.Duration
	cache         *webpageCache
	cacheLifetime time.Duration
	clock         chrono.API
	tel           telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseUrl)

	tel = telemetry.NewScopedAPI("scripture_client", tel)

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	// max burst >= 1 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(limit, max(1, int(opts.RequestsPerSecond)))
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.DumpExchanges(httpClient, opts.Dump)

	clock := opts.Clock
	if clock == nil {
		clock = chrono.StandardImpl{}
	}

	c := &Client{
		BaseUrl:       baseUrl,
		Http:          httpClient,
		maxAttempts:   uint(max(1, opts.MaxAttempts)),
		baseDelay:     opts.BaseDelay,
		cacheLifetime: opts.CacheLifetime,
		clock:         clock,
		tel:           tel,
	}
	if opts.Cache != nil {
		c.cache = &webpageCache{db: opts.Cache, baseUrl: baseUrl, clock: clock}
	}
	return c, nil
}

// Resolve returns address as an absolute url on the client's site.
func (c *Client) Resolve(address string) (string, error) {
	full, err := c.BaseUrl.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}
	return full.String(), nil
}

// linear backoff, retry n (0 based) waits baseDelay * (n + 1)
func (c *Client) delay(n uint, _ error, _ *retry.Config) time.Duration {
	return c.baseDelay * time.Duration(n+1)
}

func (c *Client) get(ctx context.Context, address string) ([]byte, string, error) {
	var body []byte
	var contentType string

	err := retry.Do(
		func() error {
			res, err := c.Http.R().
				SetContext(ctx).
				Get(address)
			if err != nil {
				return err
			}
			if !res.IsSuccess() {
				return fmt.Errorf("unexpected status %s", res.Status())
			}
			body = res.Body()
			contentType = res.Header().Get("content-type")
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxAttempts),
		retry.DelayType(c.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.tel.ReportWarning(report_client_fetch_retry, address, n+1, err)
		}),
	)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s after %d attempts: %w", ErrFetchFailure, address, c.maxAttempts, err)
	}
	return body, contentType, nil
}

// decode converts body to utf-8 using the content type header or the
// document's meta tags.
func decode(body []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}

func (c *Client) Fetch(ctx context.Context, address string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()

	full, err := c.Resolve(address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid address")
		return nil, err
	}
	span.SetAttributes(attribute.String("address", full))

	if c.cache != nil {
		page, err := c.cache.get(ctx, full)
		if err == nil {
			span.SetStatus(codes.Ok, "CACHE HIT")
			return goquery.NewDocumentFromReader(bytes.NewReader(page.Contents))
		}
		if err != errWebpageNotFound {
			c.tel.ReportWarning(report_client_cache, fmt.Errorf("get: %w", err), full)
			span.RecordError(err)
			span.AddEvent("CACHE ERROR", trace.WithAttributes(
				attribute.String("log.severity", "WARN"),
			))
		}
	}

	body, contentType, err := c.get(ctx, full)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, full)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	contents, err := decode(body, contentType)
	if err != nil {
		err = fmt.Errorf("decode %s: %w", full, err)
		c.tel.ReportBroken(report_client_fetch, err, contentType)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode body")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		err = fmt.Errorf("parse %s: %w", full, err)
		c.tel.ReportBroken(report_client_fetch, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	if c.cache != nil {
		page := webpage{Contents: contents}
		if c.cacheLifetime > 0 {
			page.ExpiresAt = c.clock.Now().Add(c.cacheLifetime).Unix()
		}
		err = c.cache.set(ctx, full, page)
		if err != nil {
			c.tel.ReportWarning(report_client_cache, fmt.Errorf("set: %w", err), full)
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to cache request")
		}
	}

	return doc, nil
}
