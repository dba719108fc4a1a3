package scripture

import (
	"regexp"
	"scripture-scraper/lib/htmlutil"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type extractMode int

const (
	// verse text: footnotes, styles and references
	mode_verse extractMode = iota
	// the body of a resolved footnote: styles and references only
	mode_footnote
	// a cross-reference table cell: styles and references, <br> is a space
	mode_table
)

// annotations may contain annotations, but only one level deep
const maxAnnotationDepth = 1

var styleClasses = map[string]StyleKind{
	"italic":      STYLE_ITALIC,
	"bold":        STYLE_BOLD,
	"smallCaps":   STYLE_SMALL_CAPS,
	"label":       STYLE_LABEL,
	"clarityWord": STYLE_CLARITY_WORD,
	"language":    STYLE_LANGUAGE,
	"uppercase":   STYLE_UPPERCASE,
}

var styleTags = map[string]StyleKind{
	"i":      STYLE_ITALIC,
	"em":     STYLE_ITALIC,
	"b":      STYLE_BOLD,
	"strong": STYLE_BOLD,
}

var textCleaner = strings.NewReplacer(
	"\r", "",
	"\n", "",
	"\u200b", "",
	"\u00a0", "",
)

var residualMarkup = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)

type extraction struct {
	Text      string
	Footnotes []Footnote
	Styles    []Style
	Refs      []Ref
}

// extractor flattens inline markup into plain text in a single left to right
// pass. Annotation positions are the rune count of the text emitted before
// the annotation starts, so they always follow document order.
type extractor struct {
	mode extractMode
	text strings.Builder
	pos  int

	footnotes []Footnote
	styles    []Style
	refs      []Ref
}

func newExtractor(mode extractMode) *extractor {
	return &extractor{mode: mode}
}

func (e *extractor) write(s string) {
	e.text.WriteString(s)
	e.pos += utf8.RuneCountInString(s)
}

// mark returns the rune position and byte offset of the current end of the
// text, used to measure an annotation once its children are written.
func (e *extractor) mark() (int, int) {
	return e.pos, e.text.Len()
}

func (e *extractor) since(pos, offset int) Annotation {
	return Annotation{
		Position: pos,
		Length:   e.pos - pos,
		Text:     e.text.String()[offset:],
	}
}

func (e *extractor) walkNodes(nodes []*html.Node, depth int) error {
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.Type {
		case html.TextNode:
			e.write(textCleaner.Replace(n.Data))
		case html.CommentNode:
		case html.ElementNode:
			consumed, err := e.element(nodes, i, depth)
			if err != nil {
				return err
			}
			i += consumed
		default:
			return fragmentError(ErrUnexpectedNodeShape, n, "unexpected node type %d in text", n.Type)
		}
	}
	return nil
}

// element handles nodes[i] and returns how many of the siblings following it
// were consumed along with it.
func (e *extractor) element(nodes []*html.Node, i, depth int) (int, error) {
	n := nodes[i]

	switch n.Data {
	case "br":
		if e.mode == mode_table {
			e.write(" ")
		} else {
			e.write("\n")
		}
		return 0, nil
	case "sup":
		if e.mode != mode_verse {
			return 0, fragmentError(ErrUnrecognizedAnnotation, n, "footnote marker outside of verse text")
		}
		return e.footnoteMarker(nodes, i, depth)
	case "a":
		return 0, e.anchor(n, depth)
	case "span":
		class := htmlutil.Class(n)
		kind, ok := styleClasses[class]
		if !ok {
			return 0, fragmentError(ErrUnrecognizedAnnotation, n, "span with class %q", class)
		}
		return 0, e.style(n, kind, depth)
	}

	kind, ok := styleTags[n.Data]
	if ok {
		return 0, e.style(n, kind, depth)
	}
	return 0, fragmentError(ErrUnknownMarkup, n, "<%s> in text", n.Data)
}

func (e *extractor) checkDepth(n *html.Node, depth int) error {
	if depth > maxAnnotationDepth {
		return fragmentError(ErrMalformedAnnotation, n, "annotation nested more than %d level deep", maxAnnotationDepth)
	}
	return nil
}

func (e *extractor) style(n *html.Node, kind StyleKind, depth int) error {
	err := e.checkDepth(n, depth)
	if err != nil {
		return err
	}

	pos, offset := e.mark()
	idx := len(e.styles)
	e.styles = append(e.styles, Style{Kind: kind})

	err = e.walkNodes(htmlutil.Children(n), depth+1)
	if err != nil {
		return err
	}
	e.styles[idx].Annotation = e.since(pos, offset)
	return nil
}

func (e *extractor) ref(n *html.Node, href string, depth int) error {
	err := e.checkDepth(n, depth)
	if err != nil {
		return err
	}

	pos, offset := e.mark()
	idx := len(e.refs)
	e.refs = append(e.refs, Ref{Href: href})

	err = e.walkNodes(htmlutil.Children(n), depth+1)
	if err != nil {
		return err
	}
	e.refs[idx].Annotation = e.since(pos, offset)
	return nil
}

func (e *extractor) anchor(n *html.Node, depth int) error {
	href, hasHref := htmlutil.Attr(n, "href")
	_, hasRel := htmlutil.Attr(n, "rel")

	switch {
	case hasHref && hasRel:
		// <a href rel><sup>m</sup>words</a>
		children := htmlutil.Children(n)
		first := 0
		for first < len(children) && htmlutil.IsBlankText(children[first]) {
			first++
		}
		if first == len(children) || !htmlutil.IsElement(children[first], "sup") {
			return fragmentError(ErrMalformedAnnotation, n, "footnote anchor without a marker")
		}
		marker, err := markerText(children[first])
		if err != nil {
			return err
		}
		return e.footnote(n, marker, children[first+1:], depth)
	case hasHref:
		return e.ref(n, href, depth)
	}

	if name, ok := htmlutil.Attr(n, "name"); ok {
		return fragmentError(ErrUnknownMarkup, n, "named anchor %q inside text", name)
	}
	return fragmentError(ErrUnrecognizedAnnotation, n, "anchor without href")
}

func markerText(sup *html.Node) (string, error) {
	for c := sup.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return "", fragmentError(ErrMalformedAnnotation, sup, "footnote marker holds markup")
		}
	}
	marker := strings.TrimSpace(htmlutil.GetText(sup))
	if marker == "" {
		return "", fragmentError(ErrMalformedAnnotation, sup, "empty footnote marker")
	}
	return marker, nil
}

// footnoteMarker handles <sup>m</sup><a href rel>words</a>. The sup is
// dropped, the anchor is consumed with it.
func (e *extractor) footnoteMarker(nodes []*html.Node, i, depth int) (int, error) {
	sup := nodes[i]
	marker, err := markerText(sup)
	if err != nil {
		return 0, err
	}

	j := i + 1
	// doubledFootnoteMarker: a few chapters repeat the marker glyph, as in
	// <sup>a</sup><sup>a</sup><a ...>, the repeats are the same footnote.
	for j < len(nodes) && htmlutil.IsElement(nodes[j], "sup") {
		repeated, err := markerText(nodes[j])
		if err != nil {
			return 0, err
		}
		if repeated != marker {
			return 0, fragmentError(ErrMalformedAnnotation, nodes[j], "footnote marker %q follows marker %q", repeated, marker)
		}
		j++
	}
	// whitespace between the marker and its anchor stays in the text
	for j < len(nodes) && htmlutil.IsBlankText(nodes[j]) {
		err = e.walkNodes(nodes[j:j+1], depth)
		if err != nil {
			return 0, err
		}
		j++
	}

	if j == len(nodes) || !htmlutil.IsElement(nodes[j], "a") {
		return 0, fragmentError(ErrMalformedAnnotation, sup, "footnote marker %q without an anchor", marker)
	}
	anchor := nodes[j]
	_, hasHref := htmlutil.Attr(anchor, "href")
	_, hasRel := htmlutil.Attr(anchor, "rel")
	if !hasHref || !hasRel {
		return 0, fragmentError(ErrMalformedAnnotation, anchor, "footnote marker %q is not followed by a footnote anchor", marker)
	}

	err = e.footnote(anchor, marker, htmlutil.Children(anchor), depth)
	if err != nil {
		return 0, err
	}
	return j - i, nil
}

func (e *extractor) footnote(anchor *html.Node, marker string, children []*html.Node, depth int) error {
	if e.mode != mode_verse {
		return fragmentError(ErrUnrecognizedAnnotation, anchor, "footnote marker %q outside of verse text", marker)
	}
	err := e.checkDepth(anchor, depth)
	if err != nil {
		return err
	}

	pos, offset := e.mark()
	idx := len(e.footnotes)
	e.footnotes = append(e.footnotes, Footnote{
		Marker: marker,
		Href:   htmlutil.AttrOr(anchor, "href", ""),
		Rel:    htmlutil.AttrOr(anchor, "rel", ""),
	})

	err = e.walkNodes(children, depth+1)
	if err != nil {
		return err
	}
	e.footnotes[idx].Annotation = e.since(pos, offset)
	if e.footnotes[idx].Length == 0 {
		return fragmentError(ErrMalformedAnnotation, anchor, "footnote %q annotates no text", marker)
	}
	return nil
}

// result returns the extracted text and annotations. node is only used for
// error context.
func (e *extractor) result(node *html.Node) (extraction, error) {
	text := e.text.String()
	if loc := residualMarkup.FindString(text); loc != "" {
		return extraction{}, fragmentError(ErrUnknownMarkup, node, "markup %q left in text", loc)
	}
	return extraction{
		Text:      text,
		Footnotes: e.footnotes,
		Styles:    e.styles,
		Refs:      e.refs,
	}, nil
}

// extract runs a fresh extractor over nodes.
func extract(nodes []*html.Node, mode extractMode, context *html.Node) (extraction, error) {
	e := newExtractor(mode)
	err := e.walkNodes(nodes, 0)
	if err != nil {
		return extraction{}, err
	}
	return e.result(context)
}
