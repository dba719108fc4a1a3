package scripture

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// chapter segments that are not numbered, their pages are chapter 0
var unnumberedChapterPrefixes = []string{
	"introduction",
	"title",
	"bofm-title",
	"three",
	"eight",
	"js",
	"explanation",
	"chron-order",
	"fac",
	"testimony",
}

// PageAddress is what the path of a page address identifies.
type PageAddress struct {
	Volume    string
	Book      string
	Chapter   string
	ChapterId int
}

// ParseAddress reads (volume, book, chapter) from the last three segments of
// the address path, ex. https://www.lds.org/scriptures/ot/gen/1?lang=eng
func ParseAddress(address string) (PageAddress, error) {
	parsed, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return PageAddress{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}

	var segments []string
	for _, s := range strings.Split(parsed.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 3 {
		return PageAddress{}, fmt.Errorf("%w: %q has %d path segments, expected at least 3", ErrInvalidAddress, address, len(segments))
	}
	segments = segments[len(segments)-3:]

	out := PageAddress{
		Volume:  segments[0],
		Book:    segments[1],
		Chapter: segments[2],
	}
	out.ChapterId, err = chapterId(out.Chapter)
	if err != nil {
		return PageAddress{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}
	return out, nil
}

func chapterId(chapter string) (int, error) {
	for _, prefix := range unnumberedChapterPrefixes {
		if strings.HasPrefix(chapter, prefix) {
			return 0, nil
		}
	}
	id, err := strconv.Atoi(chapter)
	if err != nil {
		return 0, fmt.Errorf("chapter %q is neither numbered nor a known unnumbered page", chapter)
	}
	return id, nil
}

// bookSequence assigns book ids to the pages of one address list in order.
type bookSequence struct {
	started bool
	prev    string
	id      int
}

// the doctrine and covenants introduction counts as a book of its own
func bookKey(addr PageAddress) string {
	if addr.Book == "dc" && addr.Chapter == "introduction" {
		return "dc/introduction"
	}
	return addr.Book
}

func (s *bookSequence) next(addr PageAddress) int {
	key := bookKey(addr)
	if !s.started {
		s.started = true
		s.prev = key
		return s.id
	}
	if key != s.prev {
		s.id++
		s.prev = key
	}
	return s.id
}
