package scripture

import (
	"fmt"
	"scripture-scraper/lib/htmlutil"
	"strings"

	"golang.org/x/net/html"
)

// the name of the leading anchor that closes a chapter, it carries no text
const closingAnchorName = "closing"

type skipReason string

const (
	skip_none             skipReason = ""
	skip_closing_marker   skipReason = "closing marker"
	skip_nested_paragraph skipReason = "nested paragraph"
	skip_empty            skipReason = "visually empty"
)

// parseVerse turns one structural node into a VerseRecord. When the node is
// one of the known anomalies that carry no verse, the returned skipReason is
// not skip_none and the record is empty.
func parseVerse(node *html.Node, verseType VerseType) (VerseRecord, skipReason, error) {
	rec := VerseRecord{Type: verseType}

	var nodes []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		nodes = append(nodes, c)
	}
	nodes = dropLeadingBlank(nodes)

	// leading anchor
	if len(nodes) > 0 && isNameAnchor(nodes[0]) {
		rec.Name = htmlutil.AttrOr(nodes[0], "name", "")
		if rec.Name == closingAnchorName {
			return VerseRecord{}, skip_closing_marker, nil
		}
		nodes = dropLeadingBlank(nodes[1:])
	}

	// known anomalies
	if containsParagraph(nodes) {
		return VerseRecord{}, skip_nested_paragraph, nil
	}

	// an image standing alone
	if img := soleImage(nodes); img != nil {
		rec.Text = fmt.Sprintf(
			"![%s](%s)",
			htmlutil.AttrOr(img, "alt", ""),
			htmlutil.AttrOr(img, "src", ""),
		)
		return rec, skip_none, nil
	}

	if isVisuallyEmpty(nodes) {
		return VerseRecord{}, skip_empty, nil
	}

	// leading verse number
	if len(nodes) > 0 && isVerseNumber(nodes[0]) {
		marker := nodes[0]
		for c := marker.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				return VerseRecord{}, skip_none, fragmentError(ErrUnexpectedNodeShape, marker, "verse number holds markup")
			}
		}
		rec.Num = strings.TrimSpace(htmlutil.GetText(marker))
		nodes = nodes[1:]
	}

	extracted, err := extract(nodes, mode_verse, node)
	if err != nil {
		return VerseRecord{}, skip_none, err
	}
	rec.Text = extracted.Text
	rec.Footnotes = extracted.Footnotes
	rec.Styles = extracted.Styles
	rec.Refs = extracted.Refs

	return rec, skip_none, nil
}

func dropLeadingBlank(nodes []*html.Node) []*html.Node {
	for len(nodes) > 0 && htmlutil.IsBlankText(nodes[0]) {
		nodes = nodes[1:]
	}
	return nodes
}

func isNameAnchor(n *html.Node) bool {
	if !htmlutil.IsElement(n, "a") {
		return false
	}
	_, hasName := htmlutil.Attr(n, "name")
	_, hasHref := htmlutil.Attr(n, "href")
	return hasName && !hasHref
}

func isVerseNumber(n *html.Node) bool {
	return htmlutil.IsElement(n, "span") && htmlutil.Class(n) == "verse"
}

func containsParagraph(nodes []*html.Node) bool {
	for _, n := range nodes {
		if htmlutil.IsElement(n, "p") || len(htmlutil.FindAll(n, "p")) > 0 {
			return true
		}
	}
	return false
}

func soleImage(nodes []*html.Node) *html.Node {
	var img *html.Node
	for _, n := range nodes {
		switch {
		case htmlutil.IsBlankText(n):
		case htmlutil.IsElement(n, "img") && img == nil:
			img = n
		default:
			return nil
		}
	}
	return img
}

func isVisuallyEmpty(nodes []*html.Node) bool {
	for _, n := range nodes {
		if htmlutil.IsElement(n, "img") || len(htmlutil.FindAll(n, "img")) > 0 {
			return false
		}
		if !htmlutil.IsBlank(htmlutil.GetText(n)) {
			return false
		}
	}
	return true
}
