package db

import (
	"context"
)

// children first, foreign keys are only enforced on connections that ran
// the pragma
var deleteCollection = []string{
	`delete from footnote_ref where collection = ?`,
	`delete from footnote_style where collection = ?`,
	`delete from footnote where collection = ?`,
	`delete from verse_style where collection = ?`,
	`delete from verse_ref where collection = ?`,
	`delete from verse where collection = ?`,
}

func (q *Queries) DeleteCollection(ctx context.Context, collection string) error {
	for _, stmt := range deleteCollection {
		_, err := q.db.ExecContext(ctx, stmt, collection)
		if err != nil {
			return err
		}
	}
	return nil
}

const countVerses = `-- name: CountVerses :one
select count(*) from verse where collection = ?
`

func (q *Queries) CountVerses(ctx context.Context, collection string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countVerses, collection)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertVerse = `-- name: InsertVerse :exec
insert into verse (
    collection, id, book_id, chapter_id, title, book, chapter,
    verse_name, verse_num, type, text
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertVerseParams struct {
	Collection string
	ID         int64
	BookID     int64
	ChapterID  int64
	Title      string
	Book       string
	Chapter    string
	VerseName  string
	VerseNum   string
	Type       string
	Text       string
}

func (q *Queries) InsertVerse(ctx context.Context, arg InsertVerseParams) error {
	_, err := q.db.ExecContext(ctx, insertVerse,
		arg.Collection,
		arg.ID,
		arg.BookID,
		arg.ChapterID,
		arg.Title,
		arg.Book,
		arg.Chapter,
		arg.VerseName,
		arg.VerseNum,
		arg.Type,
		arg.Text,
	)
	return err
}

const insertFootnote = `-- name: InsertFootnote :exec
insert into footnote (
    collection, id, verse_id, marker, href, rel, position, length, text, footnote_text
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertFootnoteParams struct {
	Collection   string
	ID           int64
	VerseID      int64
	Marker       string
	Href         string
	Rel          string
	Position     int64
	Length       int64
	Text         string
	FootnoteText string
}

func (q *Queries) InsertFootnote(ctx context.Context, arg InsertFootnoteParams) error {
	_, err := q.db.ExecContext(ctx, insertFootnote,
		arg.Collection,
		arg.ID,
		arg.VerseID,
		arg.Marker,
		arg.Href,
		arg.Rel,
		arg.Position,
		arg.Length,
		arg.Text,
		arg.FootnoteText,
	)
	return err
}

const insertFootnoteRef = `-- name: InsertFootnoteRef :exec
insert into footnote_ref (
    collection, id, footnote_id, verse_id, href, position, length, text
) values (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertFootnoteRefParams struct {
	Collection string
	ID         int64
	FootnoteID int64
	VerseID    int64
	Href       string
	Position   int64
	Length     int64
	Text       string
}

func (q *Queries) InsertFootnoteRef(ctx context.Context, arg InsertFootnoteRefParams) error {
	_, err := q.db.ExecContext(ctx, insertFootnoteRef,
		arg.Collection,
		arg.ID,
		arg.FootnoteID,
		arg.VerseID,
		arg.Href,
		arg.Position,
		arg.Length,
		arg.Text,
	)
	return err
}

const insertFootnoteStyle = `-- name: InsertFootnoteStyle :exec
insert into footnote_style (
    collection, id, footnote_id, verse_id, style, position, length, text
) values (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertFootnoteStyleParams struct {
	Collection string
	ID         int64
	FootnoteID int64
	VerseID    int64
	Style      string
	Position   int64
	Length     int64
	Text       string
}

func (q *Queries) InsertFootnoteStyle(ctx context.Context, arg InsertFootnoteStyleParams) error {
	_, err := q.db.ExecContext(ctx, insertFootnoteStyle,
		arg.Collection,
		arg.ID,
		arg.FootnoteID,
		arg.VerseID,
		arg.Style,
		arg.Position,
		arg.Length,
		arg.Text,
	)
	return err
}

const insertVerseStyle = `-- name: InsertVerseStyle :exec
insert into verse_style (
    collection, id, verse_id, style, position, length, text
) values (?, ?, ?, ?, ?, ?, ?)
`

type InsertVerseStyleParams struct {
	Collection string
	ID         int64
	VerseID    int64
	Style      string
	Position   int64
	Length     int64
	Text       string
}

func (q *Queries) InsertVerseStyle(ctx context.Context, arg InsertVerseStyleParams) error {
	_, err := q.db.ExecContext(ctx, insertVerseStyle,
		arg.Collection,
		arg.ID,
		arg.VerseID,
		arg.Style,
		arg.Position,
		arg.Length,
		arg.Text,
	)
	return err
}

const insertVerseRef = `-- name: InsertVerseRef :exec
insert into verse_ref (
    collection, id, verse_id, href, position, length, text
) values (?, ?, ?, ?, ?, ?, ?)
`

type InsertVerseRefParams struct {
	Collection string
	ID         int64
	VerseID    int64
	Href       string
	Position   int64
	Length     int64
	Text       string
}

func (q *Queries) InsertVerseRef(ctx context.Context, arg InsertVerseRefParams) error {
	_, err := q.db.ExecContext(ctx, insertVerseRef,
		arg.Collection,
		arg.ID,
		arg.VerseID,
		arg.Href,
		arg.Position,
		arg.Length,
		arg.Text,
	)
	return err
}
