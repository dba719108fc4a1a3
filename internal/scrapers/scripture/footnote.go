package scripture

import (
	"context"
	"fmt"
	"scripture-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Fetcher retrieves and parses a document. address may be absolute or
// relative to the site the fetcher is bound to.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (*goquery.Document, error)
}

// footnoteBody locates the single footnote container of a fetched footnote
// document.
func footnoteBody(doc *goquery.Document) (*html.Node, error) {
	sel := doc.Find("div.footnote")
	if sel.Length() != 1 {
		var context *html.Node
		if len(doc.Nodes) > 0 {
			context = doc.Nodes[0]
		}
		return nil, fragmentError(
			ErrUnexpectedNodeShape, context,
			"expected exactly one footnote container, found %d", sel.Length(),
		)
	}
	return sel.Nodes[0], nil
}

// parseFootnoteBody extracts the text, references and styles of a footnote
// container.
func parseFootnoteBody(body *html.Node) (extraction, error) {
	children := htmlutil.Children(body)
	// the footnote pages open the container with a stray newline
	if len(children) > 0 && htmlutil.IsBlankText(children[0]) {
		children = children[1:]
	}
	return extract(children, mode_footnote, body)
}

// resolveFootnote fetches the body of fn and returns fn with ResolvedText,
// Refs and Styles filled in.
func resolveFootnote(ctx context.Context, fetcher Fetcher, fn Footnote) (Footnote, error) {
	if fn.Href == "" {
		return Footnote{}, fmt.Errorf("%w: footnote %q has no href", ErrMalformedAnnotation, fn.Marker)
	}

	doc, err := fetcher.Fetch(ctx, fn.Href)
	if err != nil {
		return Footnote{}, fmt.Errorf("fetch footnote %q: %w", fn.Href, err)
	}
	body, err := footnoteBody(doc)
	if err != nil {
		return Footnote{}, fmt.Errorf("footnote %q: %w", fn.Href, err)
	}
	extracted, err := parseFootnoteBody(body)
	if err != nil {
		return Footnote{}, fmt.Errorf("footnote %q: %w", fn.Href, err)
	}

	fn.ResolvedText = extracted.Text
	fn.Refs = extracted.Refs
	fn.Styles = extracted.Styles
	return fn, nil
}
