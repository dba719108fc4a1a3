package export

import (
	"context"
	"fmt"
	"scripture-scraper/internal/db"
)

// WriteDatabase replaces every row of the collection with t in a single
// transaction.
func WriteDatabase(ctx context.Context, makeTx db.MakeTx, t Tables) error {
	tx, discard, commit, err := makeTx(ctx)
	if err != nil {
		return fmt.Errorf("make tx: %w", err)
	}
	defer discard()

	err = tx.DeleteCollection(ctx, t.Collection)
	if err != nil {
		return fmt.Errorf("DeleteCollection: %w", err)
	}

	for _, r := range t.Verses {
		err = tx.InsertVerse(ctx, db.InsertVerseParams{
			Collection: t.Collection,
			ID:         int64(r.Id),
			BookID:     int64(r.BookId),
			ChapterID:  int64(r.ChapterId),
			Title:      r.Title,
			Book:       r.Book,
			Chapter:    r.Chapter,
			VerseName:  r.VerseName,
			VerseNum:   r.VerseNum,
			Type:       r.Type,
			Text:       r.Text,
		})
		if err != nil {
			return fmt.Errorf("InsertVerse %d: %w", r.Id, err)
		}
	}
	for _, r := range t.Footnotes {
		err = tx.InsertFootnote(ctx, db.InsertFootnoteParams{
			Collection:   t.Collection,
			ID:           int64(r.Id),
			VerseID:      int64(r.VerseId),
			Marker:       r.Marker,
			Href:         r.Href,
			Rel:          r.Rel,
			Position:     int64(r.Position),
			Length:       int64(r.Length),
			Text:         r.Text,
			FootnoteText: r.FootnoteText,
		})
		if err != nil {
			return fmt.Errorf("InsertFootnote %d: %w", r.Id, err)
		}
	}
	for _, r := range t.FootnoteRefs {
		err = tx.InsertFootnoteRef(ctx, db.InsertFootnoteRefParams{
			Collection: t.Collection,
			ID:         int64(r.Id),
			FootnoteID: int64(r.FootnoteId),
			VerseID:    int64(r.VerseId),
			Href:       r.Href,
			Position:   int64(r.Position),
			Length:     int64(r.Length),
			Text:       r.Text,
		})
		if err != nil {
			return fmt.Errorf("InsertFootnoteRef %d: %w", r.Id, err)
		}
	}
	for _, r := range t.FootnoteStyles {
		err = tx.InsertFootnoteStyle(ctx, db.InsertFootnoteStyleParams{
			Collection: t.Collection,
			ID:         int64(r.Id),
			FootnoteID: int64(r.FootnoteId),
			VerseID:    int64(r.VerseId),
			Style:      r.Style,
			Position:   int64(r.Position),
			Length:     int64(r.Length),
			Text:       r.Text,
		})
		if err != nil {
			return fmt.Errorf("InsertFootnoteStyle %d: %w", r.Id, err)
		}
	}
	for _, r := range t.Styles {
		err = tx.InsertVerseStyle(ctx, db.InsertVerseStyleParams{
			Collection: t.Collection,
			ID:         int64(r.Id),
			VerseID:    int64(r.VerseId),
			Style:      r.Style,
			Position:   int64(r.Position),
			Length:     int64(r.Length),
			Text:       r.Text,
		})
		if err != nil {
			return fmt.Errorf("InsertVerseStyle %d: %w", r.Id, err)
		}
	}
	for _, r := range t.Refs {
		err = tx.InsertVerseRef(ctx, db.InsertVerseRefParams{
			Collection: t.Collection,
			ID:         int64(r.Id),
			VerseID:    int64(r.VerseId),
			Href:       r.Href,
			Position:   int64(r.Position),
			Length:     int64(r.Length),
			Text:       r.Text,
		})
		if err != nil {
			return fmt.Errorf("InsertVerseRef %d: %w", r.Id, err)
		}
	}

	return commit()
}
