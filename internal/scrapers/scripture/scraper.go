// scraper.go ties fetching and parsing together, one collection at a time.

package scripture

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"scripture-scraper/internal/components/assert"
	"scripture-scraper/internal/components/telemetry"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_scraper_scrape_book      = "scraper.scrape-book"
	report_scraper_scrape_page      = "scraper.scrape-page"
	report_scraper_resolve_footnote = "scraper.resolve-footnote"
	report_scraper_pages            = "scraper.pages"
)

type ScraperOptions struct {
	// the 0-based column of cross-reference tables whose references are kept
	TableRefColumn int
}

type Scraper struct {
	fetcher Fetcher
	table   tableOptions
	tel     telemetry.API
}

func NewScraper(fetcher Fetcher, opts ScraperOptions, tel telemetry.API) Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	return Scraper{
		fetcher: fetcher,
		table:   tableOptions{refColumn: opts.TableRefColumn},
		tel:     telemetry.NewScopedAPI("scripture_scraper", tel),
	}
}

// ReadAddressList reads one page address per line, blank lines are ignored.
func ReadAddressList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// ScrapeBook scrapes every address in order. The first error aborts the
// whole collection.
func (s Scraper) ScrapeBook(ctx context.Context, collection string, addresses []string) (Book, error) {
	ctx, span := tracer.Start(ctx, "scraper:ScrapeBook")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("pages", len(addresses)),
	)

	book := Book{Collection: collection}
	var books bookSequence
	for i, address := range addresses {
		addr, err := ParseAddress(address)
		if err != nil {
			s.tel.ReportBroken(report_scraper_scrape_book, err, collection)
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid address")
			return Book{}, fmt.Errorf("%s: %w", collection, err)
		}

		page, err := s.ScrapePage(ctx, PageContext{
			Address:   address,
			Volume:    addr.Volume,
			Book:      addr.Book,
			Chapter:   addr.Chapter,
			BookId:    books.next(addr),
			ChapterId: addr.ChapterId,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scrape page")
			return Book{}, fmt.Errorf("%s: %w", collection, err)
		}
		book.Pages = append(book.Pages, page)
		s.tel.ReportCount(report_scraper_pages, int64(i+1))
	}

	return book, nil
}

// ScrapePage fetches and parses one page and resolves all of its footnotes.
func (s Scraper) ScrapePage(ctx context.Context, pctx PageContext) (Page, error) {
	ctx, span := tracer.Start(ctx, "scraper:ScrapePage")
	defer span.End()
	span.SetAttributes(attribute.String("address", pctx.Address))

	doc, err := s.fetcher.Fetch(ctx, pctx.Address)
	if err != nil {
		s.tel.ReportBroken(report_scraper_scrape_page, err, pctx.Address)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return Page{}, fmt.Errorf("page %s: %w", pctx.Address, err)
	}

	page, err := parseDocument(doc, pctx, s.table, s.tel)
	if err != nil {
		s.tel.ReportBroken(report_scraper_scrape_page, err, pctx.Address)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse page")
		return Page{}, fmt.Errorf("page %s: %w", pctx.Address, err)
	}

	verses := make([]VerseRecord, len(page.Verses))
	for i, v := range page.Verses {
		if len(v.Footnotes) > 0 {
			resolved := make([]Footnote, len(v.Footnotes))
			for j, fn := range v.Footnotes {
				resolved[j], err = resolveFootnote(ctx, s.fetcher, fn)
				if err != nil {
					s.tel.ReportBroken(report_scraper_resolve_footnote, err, pctx.Address, fn.Marker)
					span.RecordError(err)
					span.SetStatus(codes.Error, "failed to resolve footnote")
					return Page{}, fmt.Errorf("page %s: %w", pctx.Address, err)
				}
			}
			v.Footnotes = resolved
		}
		verses[i] = v
	}
	page.Verses = verses

	s.tel.ReportDebug("scraped page", pctx.Address, len(page.Verses))
	return page, nil
}

// parseDocument reads the title and content region of a fetched page.
func parseDocument(doc *goquery.Document, pctx PageContext, table tableOptions, tel telemetry.API) (Page, error) {
	title := doc.Find("div#details h1")
	if title.Length() == 0 {
		return Page{}, fmt.Errorf("%w: page has no title heading", ErrUnexpectedNodeShape)
	}
	pctx.Title = strings.TrimSpace(title.First().Text())

	content := doc.Find("div#content div#primary")
	if content.Length() != 1 {
		return Page{}, fmt.Errorf("%w: expected one content region, found %d", ErrUnexpectedNodeShape, content.Length())
	}

	verses, err := parseContent(pctx, content.Nodes[0], table, tel)
	if err != nil {
		return Page{}, err
	}
	return Page{PageContext: pctx, Verses: verses}, nil
}
