package export

import (
	"scripture-scraper/internal/scrapers/scripture"
)

type VerseRow struct {
	Id        int
	BookId    int
	ChapterId int
	Title     string
	Book      string
	Chapter   string
	VerseName string
	VerseNum  string
	Type      string
	Text      string
}

type FootnoteRow struct {
	Id           int
	VerseId      int
	Marker       string
	Href         string
	Rel          string
	Position     int
	Length       int
	Text         string
	FootnoteText string
}

type FootnoteRefRow struct {
	Id         int
	FootnoteId int
	VerseId    int
	Href       string
	Position   int
	Length     int
	Text       string
}

type FootnoteStyleRow struct {
	Id         int
	FootnoteId int
	VerseId    int
	Style      string
	Position   int
	Length     int
	Text       string
}

type StyleRow struct {
	Id       int
	VerseId  int
	Style    string
	Position int
	Length   int
	Text     string
}

type RefRow struct {
	Id       int
	VerseId  int
	Href     string
	Position int
	Length   int
	Text     string
}

// Tables is a Book flattened into the six output tables. Ids are 1-based and
// sequential per table.
type Tables struct {
	Collection     string
	Verses         []VerseRow
	Footnotes      []FootnoteRow
	FootnoteRefs   []FootnoteRefRow
	FootnoteStyles []FootnoteStyleRow
	Styles         []StyleRow
	Refs           []RefRow
}

func Flatten(book scripture.Book) Tables {
	t := Tables{Collection: book.Collection}

	for _, page := range book.Pages {
		for _, v := range page.Verses {
			verseId := len(t.Verses) + 1
			t.Verses = append(t.Verses, VerseRow{
				Id:        verseId,
				BookId:    page.BookId,
				ChapterId: page.ChapterId,
				Title:     page.Title,
				Book:      page.Book,
				Chapter:   page.Chapter,
				VerseName: v.Name,
				VerseNum:  v.Num,
				Type:      string(v.Type),
				Text:      v.Text,
			})

			for _, fn := range v.Footnotes {
				footnoteId := len(t.Footnotes) + 1
				t.Footnotes = append(t.Footnotes, FootnoteRow{
					Id:           footnoteId,
					VerseId:      verseId,
					Marker:       fn.Marker,
					Href:         fn.Href,
					Rel:          fn.Rel,
					Position:     fn.Position,
					Length:       fn.Length,
					Text:         fn.Text,
					FootnoteText: fn.ResolvedText,
				})
				for _, r := range fn.Refs {
					t.FootnoteRefs = append(t.FootnoteRefs, FootnoteRefRow{
						Id:         len(t.FootnoteRefs) + 1,
						FootnoteId: footnoteId,
						VerseId:    verseId,
						Href:       r.Href,
						Position:   r.Position,
						Length:     r.Length,
						Text:       r.Text,
					})
				}
				for _, s := range fn.Styles {
					t.FootnoteStyles = append(t.FootnoteStyles, FootnoteStyleRow{
						Id:         len(t.FootnoteStyles) + 1,
						FootnoteId: footnoteId,
						VerseId:    verseId,
						Style:      string(s.Kind),
						Position:   s.Position,
						Length:     s.Length,
						Text:       s.Text,
					})
				}
			}

			for _, s := range v.Styles {
				t.Styles = append(t.Styles, StyleRow{
					Id:       len(t.Styles) + 1,
					VerseId:  verseId,
					Style:    string(s.Kind),
					Position: s.Position,
					Length:   s.Length,
					Text:     s.Text,
				})
			}
			for _, r := range v.Refs {
				t.Refs = append(t.Refs, RefRow{
					Id:       len(t.Refs) + 1,
					VerseId:  verseId,
					Href:     r.Href,
					Position: r.Position,
					Length:   r.Length,
					Text:     r.Text,
				})
			}
		}
	}

	return t
}
