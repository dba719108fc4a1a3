package scripture

import (
	"fmt"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/lib/htmlutil"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	report_dispatch_skip_verse = "dispatch.skip-verse"
)

// structure is the closed set of top level children a content region can
// hold.
type structure int

const (
	structure_unknown structure = iota
	structure_verse_list
	structure_article
	structure_summary
	structure_paragraph
	structure_chapter_title
	structure_numbered_figures
	structure_plain_figures
	structure_topic
	structure_opening
	structure_date_line
	structure_symbol_list
	structure_block_quote
	structure_signature
	structure_table
	structure_ignored
)

var structureNames = map[structure]string{
	structure_unknown:          "unknown",
	structure_verse_list:       "verse list",
	structure_article:          "article",
	structure_summary:          "summary",
	structure_paragraph:        "paragraph",
	structure_chapter_title:    "chapter title",
	structure_numbered_figures: "numbered figures",
	structure_plain_figures:    "plain figures",
	structure_topic:            "topic",
	structure_opening:          "opening",
	structure_date_line:        "date line",
	structure_symbol_list:      "symbol list",
	structure_block_quote:      "block quote",
	structure_signature:        "signature",
	structure_table:            "cross-reference table",
	structure_ignored:          "ignored",
}

func (s structure) String() string {
	return structureNames[s]
}

// chapter segment of the chronological order index
const chronologicalOrderChapter = "chron-order"

// paragraph classes that are records of their own, the class is the type
var paragraphTypes = map[string]VerseType{
	"subtitle": TYPE_SUBTITLE,
	"intro":    TYPE_INTRO,
	"closing":  TYPE_CLOSING,
}

var openingTypes = map[string]VerseType{
	"salutation": TYPE_SALUTATION,
	"date":       TYPE_DATE,
	"addressee":  TYPE_ADDRESSEE,
}

func isIgnorable(n *html.Node) bool {
	id := htmlutil.AttrOr(n, "id", "")
	switch {
	case htmlutil.IsElement(n, "div") && (id == "media" || id == "audio-player"):
		return true
	case htmlutil.IsElement(n, "ul") && strings.HasPrefix(htmlutil.Class(n), "prev-next"):
		return true
	}
	return false
}

func classify(n *html.Node) structure {
	if n.Type != html.ElementNode {
		return structure_unknown
	}
	if isIgnorable(n) {
		return structure_ignored
	}

	switch n.Data {
	case "h2":
		return structure_chapter_title
	case "table":
		return structure_table
	case "blockquote":
		return structure_block_quote
	case "p":
		_, ok := paragraphTypes[htmlutil.Class(n)]
		if ok {
			return structure_paragraph
		}
	case "ul":
		if htmlutil.HasClass(n, "symbol") {
			return structure_symbol_list
		}
	case "div":
		switch {
		case htmlutil.HasClass(n, "verses"):
			return structure_verse_list
		case htmlutil.HasClass(n, "article"):
			return structure_article
		case htmlutil.HasClass(n, "summary"):
			return structure_summary
		case htmlutil.HasClass(n, "figure"):
			return structure_numbered_figures
		case htmlutil.HasClass(n, "figure-nomarker"):
			return structure_plain_figures
		case htmlutil.HasClass(n, "topic"):
			return structure_topic
		case htmlutil.HasClass(n, "opening"):
			return structure_opening
		case htmlutil.HasClass(n, "date"):
			return structure_date_line
		case htmlutil.HasClass(n, "signature"):
			return structure_signature
		}
	}
	return structure_unknown
}

// structuralChildren returns the element children of node. Comments and
// whitespace are dropped, any other text is an error.
func structuralChildren(node *html.Node) ([]*html.Node, error) {
	var out []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.CommentNode:
		case html.TextNode:
			if !htmlutil.IsBlank(c.Data) {
				return nil, fragmentError(ErrUnexpectedNodeShape, node, "text %q between structural nodes", strings.TrimSpace(c.Data))
			}
		case html.ElementNode:
			out = append(out, c)
		default:
			return nil, fragmentError(ErrUnexpectedNodeShape, c, "unexpected node type %d between structural nodes", c.Type)
		}
	}
	return out, nil
}

// dispatcher turns the content region of one page into records.
type dispatcher struct {
	page  PageContext
	table tableOptions
	tel   telemetry.API
}

func (d dispatcher) verse(node *html.Node, verseType VerseType, out *[]VerseRecord) error {
	rec, skip, err := parseVerse(node, verseType)
	if err != nil {
		return err
	}
	if skip != skip_none {
		d.tel.ReportWarning(
			report_dispatch_skip_verse,
			string(skip),
			d.page.Address,
			htmlutil.Render(node, fragmentLimit),
		)
		return nil
	}
	*out = append(*out, rec)
	return nil
}

// each parses every child of node, which must all be tag elements, as a
// record of verseType.
func (d dispatcher) each(node *html.Node, tag string, verseType VerseType, out *[]VerseRecord) error {
	children, err := structuralChildren(node)
	if err != nil {
		return err
	}
	for _, c := range children {
		if !htmlutil.IsElement(c, tag) {
			return fragmentError(ErrUnexpectedNodeShape, c, "expected <%s> inside %s", tag, classify(node))
		}
		err = d.verse(c, verseType, out)
		if err != nil {
			return err
		}
	}
	return nil
}

// single parses the one <p> child of node.
func (d dispatcher) single(node *html.Node, verseType VerseType, out *[]VerseRecord) error {
	children, err := structuralChildren(node)
	if err != nil {
		return err
	}
	if len(children) != 1 || !htmlutil.IsElement(children[0], "p") {
		return fragmentError(ErrUnexpectedNodeShape, node, "expected exactly one paragraph, found %d children", len(children))
	}
	return d.verse(children[0], verseType, out)
}

func (d dispatcher) figures(node *html.Node, out *[]VerseRecord) error {
	var figures []VerseRecord
	err := d.each(node, "p", TYPE_FIGURE_NUMBER, &figures)
	if err != nil {
		return err
	}
	for _, f := range figures {
		if f.Num == "" {
			return fragmentError(ErrUnexpectedNodeShape, node, "numbered figure %q without a number", f.Text)
		}
	}
	*out = append(*out, figures...)
	return nil
}

func (d dispatcher) topic(node *html.Node, out *[]VerseRecord) error {
	children, err := structuralChildren(node)
	if err != nil {
		return err
	}
	body := false
	for _, c := range children {
		switch {
		case !body && (htmlutil.IsElement(c, "h2") || htmlutil.IsElement(c, "h3")):
			err = d.verse(c, TYPE_TOPIC_HEADER, out)
		case htmlutil.IsElement(c, "p"):
			body = true
			err = d.verse(c, TYPE_TOPIC, out)
		default:
			return fragmentError(ErrUnexpectedNodeShape, c, "unexpected <%s> inside topic", c.Data)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d dispatcher) opening(node *html.Node, out *[]VerseRecord) error {
	children, err := structuralChildren(node)
	if err != nil {
		return err
	}
	for _, c := range children {
		verseType, ok := openingTypes[htmlutil.Class(c)]
		if !htmlutil.IsElement(c, "p") || !ok {
			return fragmentError(ErrUnexpectedNodeShape, c, "unexpected <%s class=%q> inside opening", c.Data, htmlutil.Class(c))
		}
		err = d.verse(c, verseType, out)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d dispatcher) node(n *html.Node, out *[]VerseRecord) error {
	kind := classify(n)
	switch kind {
	case structure_ignored:
		return nil
	case structure_verse_list:
		return d.each(n, "p", TYPE_VERSE, out)
	case structure_article:
		return d.each(n, "p", TYPE_ARTICLE, out)
	case structure_summary:
		return d.single(n, TYPE_SUMMARY, out)
	case structure_paragraph:
		return d.verse(n, paragraphTypes[htmlutil.Class(n)], out)
	case structure_chapter_title:
		return d.verse(n, TYPE_CHAPTER_TITLE, out)
	case structure_numbered_figures:
		return d.figures(n, out)
	case structure_plain_figures:
		return d.each(n, "p", TYPE_FIGURE, out)
	case structure_topic:
		return d.topic(n, out)
	case structure_opening:
		return d.opening(n, out)
	case structure_date_line:
		return d.single(n, TYPE_DATE, out)
	case structure_symbol_list:
		return d.each(n, "li", TYPE_SYMBOL, out)
	case structure_block_quote:
		return d.each(n, "p", TYPE_BLOCKQUOTE, out)
	case structure_signature:
		return d.each(n, "p", TYPE_SIGNATURE, out)
	case structure_table:
		rec, err := parseTable(n, d.table)
		if err != nil {
			return err
		}
		*out = append(*out, rec)
		return nil
	case structure_unknown:
		return fragmentError(
			ErrUnknownStructure, n,
			"<%s id=%q class=%q>", n.Data,
			htmlutil.AttrOr(n, "id", ""), htmlutil.AttrOr(n, "class", ""),
		)
	}
	panic(fmt.Sprintf("unhandled structure %d", kind))
}

// chronologicalOrder handles the chronological order index, which is made
// of cross-reference tables under their headings. Tables may sit inside
// wrapper elements.
func (d dispatcher) chronologicalOrder(n *html.Node, out *[]VerseRecord) error {
	switch classify(n) {
	case structure_ignored:
		return nil
	case structure_table, structure_chapter_title:
		return d.node(n, out)
	}

	tables := outermostTables(n)
	if len(tables) == 0 {
		return fragmentError(ErrUnknownStructure, n, "<%s> in the chronological order index", n.Data)
	}
	for _, table := range tables {
		rec, err := parseTable(table, d.table)
		if err != nil {
			return err
		}
		*out = append(*out, rec)
	}
	return nil
}

// outermostTables returns the tables below n in document order, skipping
// tables nested inside other tables.
func outermostTables(n *html.Node) []*html.Node {
	var tables []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if htmlutil.IsElement(c, "table") {
			tables = append(tables, c)
			continue
		}
		tables = append(tables, outermostTables(c)...)
	}
	return tables
}

// parseContent parses the top level children of a content region in order.
func parseContent(page PageContext, content *html.Node, table tableOptions, tel telemetry.API) ([]VerseRecord, error) {
	d := dispatcher{page: page, table: table, tel: tel}

	children, err := structuralChildren(content)
	if err != nil {
		return nil, err
	}

	handle := d.node
	if page.Chapter == chronologicalOrderChapter {
		handle = d.chronologicalOrder
	}

	var out []VerseRecord
	for _, c := range children {
		err = handle(c, &out)
		if err != nil {
			return nil, err
		}
	}

	if page.Book == officialDeclarationBook && page.Chapter == officialDeclarationChapter {
		return splitOfficialDeclaration(out)
	}
	return out, nil
}

const (
	officialDeclarationBook    = "od"
	officialDeclarationChapter = "1"
	// officialDeclarationSeparator is a stray "v" line that joins two
	// paragraphs of the first official declaration.
	officialDeclarationSeparator = "\nv\n"
)

func splitOfficialDeclaration(records []VerseRecord) ([]VerseRecord, error) {
	var out []VerseRecord
	for _, rec := range records {
		for {
			idx := strings.Index(rec.Text, officialDeclarationSeparator)
			if idx < 0 {
				out = append(out, rec)
				break
			}
			head, tail, err := splitRecord(rec, utf8.RuneCountInString(rec.Text[:idx]), idx)
			if err != nil {
				return nil, err
			}
			out = append(out, head)
			rec = tail
		}
	}
	return out, nil
}

// splitRecord cuts rec around the separator starting at rune position at
// (byte offset offset). The tail keeps the type but not the name or number.
func splitRecord(rec VerseRecord, at, offset int) (VerseRecord, VerseRecord, error) {
	sepLen := utf8.RuneCountInString(officialDeclarationSeparator)
	cut := at + sepLen

	// reports which side of the separator an annotation falls on
	side := func(a Annotation) (bool, error) {
		switch {
		case a.Position+a.Length <= at:
			return false, nil
		case a.Position >= cut:
			return true, nil
		}
		return false, fmt.Errorf(
			"%w: annotation %q at %d straddles the official declaration separator",
			ErrMalformedAnnotation, a.Text, a.Position,
		)
	}

	head := VerseRecord{
		Name: rec.Name,
		Num:  rec.Num,
		Type: rec.Type,
		Text: rec.Text[:offset],
	}
	tail := VerseRecord{
		Type: rec.Type,
		Text: rec.Text[offset+len(officialDeclarationSeparator):],
	}

	for _, f := range rec.Footnotes {
		isTail, err := side(f.Annotation)
		if err != nil {
			return VerseRecord{}, VerseRecord{}, err
		}
		if isTail {
			f.Position -= cut
			tail.Footnotes = append(tail.Footnotes, f)
		} else {
			head.Footnotes = append(head.Footnotes, f)
		}
	}
	for _, s := range rec.Styles {
		isTail, err := side(s.Annotation)
		if err != nil {
			return VerseRecord{}, VerseRecord{}, err
		}
		if isTail {
			s.Position -= cut
			tail.Styles = append(tail.Styles, s)
		} else {
			head.Styles = append(head.Styles, s)
		}
	}
	for _, r := range rec.Refs {
		isTail, err := side(r.Annotation)
		if err != nil {
			return VerseRecord{}, VerseRecord{}, err
		}
		if isTail {
			r.Position -= cut
			tail.Refs = append(tail.Refs, r)
		} else {
			head.Refs = append(head.Refs, r)
		}
	}

	return head, tail, nil
}
