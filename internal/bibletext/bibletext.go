// Package bibletext reads the plain text bible, one bibleNN.txt file per
// book with "chapter:verse text" lines, into the same records the scraper
// produces.
package bibletext

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/internal/scrapers/scripture"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html/charset"
)

var tracer = otel.Tracer("bibletext")

const (
	report_reader_file  = "reader.file"
	report_reader_empty = "reader.empty-book"
)

var ErrUnknownEncoding = errors.New("unknown text encoding")

type Testament struct {
	Name string
	// file numbers, inclusive
	First int
	Last  int
}

var Testaments = []Testament{
	{Name: "old", First: 1, Last: 39},
	{Name: "new", First: 40, Last: 66},
}

func LookupTestament(name string) (Testament, error) {
	for _, t := range Testaments {
		if t.Name == name {
			return t, nil
		}
	}
	return Testament{}, fmt.Errorf("unknown testament %q", name)
}

func FileName(number int) string {
	return fmt.Sprintf("bible%02d.txt", number)
}

var verseLine = regexp.MustCompile(`^(\d+):(\d+)\s(.+)$`)

type Reader struct {
	dir      string
	encoding string
	tel      telemetry.API
}

func NewReader(dir, encoding string, tel telemetry.API) Reader {
	return Reader{
		dir:      dir,
		encoding: encoding,
		tel:      telemetry.NewScopedAPI("bibletext", tel),
	}
}

func (r Reader) decoder(in io.Reader) (io.Reader, error) {
	if r.encoding == "" {
		return in, nil
	}
	enc, name := charset.Lookup(r.encoding)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, r.encoding)
	}
	if name == "utf-8" {
		return in, nil
	}
	return enc.NewDecoder().Reader(in), nil
}

// ParseBook reads one book. Every chapter becomes a page, lines that are not
// "chapter:verse text" are skipped.
func (r Reader) ParseBook(in io.Reader, number, bookId int) ([]scripture.Page, error) {
	decoded, err := r.decoder(in)
	if err != nil {
		return nil, err
	}
	book := fmt.Sprintf("%02d", number)

	var pages []scripture.Page
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		match := verseLine.FindStringSubmatch(scanner.Text())
		if match == nil {
			if scanner.Text() != "" {
				r.tel.ReportDebug("skipped line", book, lineNumber)
			}
			continue
		}
		chapter, verse, text := match[1], match[2], match[3]

		if len(pages) == 0 || pages[len(pages)-1].Chapter != chapter {
			chapterId, err := strconv.Atoi(chapter)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: chapter %q: %w", book, lineNumber, chapter, err)
			}
			pages = append(pages, scripture.Page{PageContext: scripture.PageContext{
				Book:      book,
				Chapter:   chapter,
				BookId:    bookId,
				ChapterId: chapterId,
			}})
		}
		page := &pages[len(pages)-1]
		page.Verses = append(page.Verses, scripture.VerseRecord{
			Num:  verse,
			Type: scripture.TYPE_VERSE,
			Text: text,
		})
	}
	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("%s line %d: %w", book, lineNumber, err)
	}
	return pages, nil
}

// ReadTestament reads every book of a testament in file order. Book ids
// count from 0 within the testament.
func (r Reader) ReadTestament(ctx context.Context, t Testament) (scripture.Book, error) {
	_, span := tracer.Start(ctx, "reader:ReadTestament")
	defer span.End()
	span.SetAttributes(attribute.String("testament", t.Name))

	out := scripture.Book{Collection: t.Name}
	for number := t.First; number <= t.Last; number++ {
		if ctx.Err() != nil {
			return scripture.Book{}, ctx.Err()
		}

		path := filepath.Join(r.dir, FileName(number))
		pages, err := r.readFile(path, number, number-t.First)
		if err != nil {
			r.tel.ReportBroken(report_reader_file, err, path)
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read book")
			return scripture.Book{}, err
		}
		if len(pages) == 0 {
			r.tel.ReportWarning(report_reader_empty, path)
		}
		out.Pages = append(out.Pages, pages...)
	}
	return out, nil
}

func (r Reader) readFile(path string, number, bookId int) ([]scripture.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.ParseBook(f, number, bookId)
}
