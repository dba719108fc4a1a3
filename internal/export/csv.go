package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type csvTable struct {
	suffix string
	header []string
	rows   [][]string
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func (t Tables) csvTables() []csvTable {
	verses := csvTable{
		suffix: "",
		header: []string{"id", "book_id", "chapter_id", "title", "book", "chapter", "verse_name", "verse_num", "type", "text"},
	}
	for _, r := range t.Verses {
		verses.rows = append(verses.rows, []string{
			itoa(r.Id), itoa(r.BookId), itoa(r.ChapterId),
			r.Title, r.Book, r.Chapter, r.VerseName, r.VerseNum, r.Type, r.Text,
		})
	}

	footnotes := csvTable{
		suffix: "_footnotes",
		header: []string{"id", "verse_id", "marker", "href", "rel", "position", "length", "text", "footnote_text"},
	}
	for _, r := range t.Footnotes {
		footnotes.rows = append(footnotes.rows, []string{
			itoa(r.Id), itoa(r.VerseId), r.Marker, r.Href, r.Rel,
			itoa(r.Position), itoa(r.Length), r.Text, r.FootnoteText,
		})
	}

	footnoteRefs := csvTable{
		suffix: "_footnote_refs",
		header: []string{"id", "footnote_id", "verse_id", "href", "position", "length", "text"},
	}
	for _, r := range t.FootnoteRefs {
		footnoteRefs.rows = append(footnoteRefs.rows, []string{
			itoa(r.Id), itoa(r.FootnoteId), itoa(r.VerseId), r.Href,
			itoa(r.Position), itoa(r.Length), r.Text,
		})
	}

	footnoteStyles := csvTable{
		suffix: "_footnote_styles",
		header: []string{"id", "footnote_id", "verse_id", "style", "position", "length", "text"},
	}
	for _, r := range t.FootnoteStyles {
		footnoteStyles.rows = append(footnoteStyles.rows, []string{
			itoa(r.Id), itoa(r.FootnoteId), itoa(r.VerseId), r.Style,
			itoa(r.Position), itoa(r.Length), r.Text,
		})
	}

	styles := csvTable{
		suffix: "_styles",
		header: []string{"id", "verse_id", "style", "position", "length", "text"},
	}
	for _, r := range t.Styles {
		styles.rows = append(styles.rows, []string{
			itoa(r.Id), itoa(r.VerseId), r.Style,
			itoa(r.Position), itoa(r.Length), r.Text,
		})
	}

	refs := csvTable{
		suffix: "_refs",
		header: []string{"id", "verse_id", "href", "position", "length", "text"},
	}
	for _, r := range t.Refs {
		refs.rows = append(refs.rows, []string{
			itoa(r.Id), itoa(r.VerseId), r.Href,
			itoa(r.Position), itoa(r.Length), r.Text,
		})
	}

	return []csvTable{verses, footnotes, footnoteRefs, footnoteStyles, styles, refs}
}

func writeCsvFile(path string, table csvTable, header bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header {
		err = w.Write(table.header)
		if err != nil {
			return err
		}
	}
	err = w.WriteAll(table.rows)
	if err != nil {
		return err
	}
	return f.Close()
}

// WriteCsv writes the six tables into dir as <collection>.csv,
// <collection>_footnotes.csv and so on, returning the paths written.
func WriteCsv(dir string, t Tables, header bool) ([]string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, table := range t.csvTables() {
		path := filepath.Join(dir, t.Collection+table.suffix+".csv")
		err = writeCsvFile(path, table, header)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
