package scripture

// VerseType classifies a VerseRecord. The set is closed, every structural
// variant the dispatcher knows maps to one of these.
type VerseType string

const (
	TYPE_VERSE         VerseType = "verse"
	TYPE_ARTICLE       VerseType = "article"
	TYPE_SUMMARY       VerseType = "summary"
	TYPE_SUBTITLE      VerseType = "subtitle"
	TYPE_INTRO         VerseType = "intro"
	TYPE_CLOSING       VerseType = "closing"
	TYPE_CHAPTER_TITLE VerseType = "chapter_title"
	TYPE_FIGURE_NUMBER VerseType = "figure_number"
	TYPE_FIGURE        VerseType = "figure"
	TYPE_TOPIC_HEADER  VerseType = "topic_header"
	TYPE_TOPIC         VerseType = "topic"
	TYPE_SALUTATION    VerseType = "salutation"
	TYPE_DATE          VerseType = "date"
	TYPE_ADDRESSEE     VerseType = "addressee"
	TYPE_SYMBOL        VerseType = "symbol"
	TYPE_BLOCKQUOTE    VerseType = "blockquote"
	TYPE_SIGNATURE     VerseType = "signature"
	TYPE_TABLE         VerseType = "table"
)

// StyleKind is the closed set of inline styles.
type StyleKind string

const (
	STYLE_ITALIC       StyleKind = "italic"
	STYLE_BOLD         StyleKind = "bold"
	STYLE_SMALL_CAPS   StyleKind = "small_caps"
	STYLE_LABEL        StyleKind = "label"
	STYLE_CLARITY_WORD StyleKind = "clarity_word"
	STYLE_LANGUAGE     StyleKind = "language"
	STYLE_UPPERCASE    StyleKind = "uppercase"
)

// Annotation is the positional part shared by every annotation. Position and
// Length count runes of the owning record's Text.
type Annotation struct {
	Position int
	Length   int
	Text     string
}

type Footnote struct {
	Annotation
	Marker string
	Href   string
	Rel    string

	// filled in by the footnote resolver
	ResolvedText string
	Refs         []Ref
	Styles       []Style
}

type Style struct {
	Annotation
	Kind StyleKind
}

type Ref struct {
	Annotation
	Href string
}

// VerseRecord is one semantic unit of text: a verse, a heading, a summary,
// a signature line, a table and so on.
type VerseRecord struct {
	Name      string
	Num       string
	Type      VerseType
	Text      string
	Footnotes []Footnote
	Styles    []Style
	Refs      []Ref
}

// PageContext identifies the page being parsed. It is passed by value so no
// parser can change it for the ones that follow.
type PageContext struct {
	Address   string
	// Volume, Book and Chapter are the last three segments of the address
	// path, Title is the heading of the page itself.
	Volume    string
	Title     string
	Book      string
	Chapter   string
	BookId    int
	ChapterId int
}

type Page struct {
	PageContext
	Verses []VerseRecord
}

// Book is every page of one collection, in address list order.
type Book struct {
	Collection string
	Pages      []Page
}

// Stats counts what a Book holds.
type Stats struct {
	Pages          int
	Verses         int
	Footnotes      int
	FootnoteRefs   int
	FootnoteStyles int
	Styles         int
	Refs           int
}

func (b Book) Stats() Stats {
	s := Stats{Pages: len(b.Pages)}
	for _, p := range b.Pages {
		s.Verses += len(p.Verses)
		for _, v := range p.Verses {
			s.Footnotes += len(v.Footnotes)
			s.Styles += len(v.Styles)
			s.Refs += len(v.Refs)
			for _, f := range v.Footnotes {
				s.FootnoteRefs += len(f.Refs)
				s.FootnoteStyles += len(f.Styles)
			}
		}
	}
	return s
}
