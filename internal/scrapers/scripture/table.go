package scripture

import (
	"scripture-scraper/lib/htmlutil"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	// a column still covered by a cell from a row above
	cell_down_continuation = "↓"
	// a column covered by the cell to its left
	cell_right_continuation = "→"

	cell_separator = "\t"
	row_separator  = "\n"
)

type tableOptions struct {
	// the 0-based column whose references are recorded
	refColumn int
}

type tableCell struct {
	text string
	refs []Ref
}

// tableGrid builds the textual grid of a table row by row.
type tableGrid struct {
	opts tableOptions

	// pending[col] is how many more rows col is covered by a row span
	pending []int
	width   int

	text strings.Builder
	pos  int
	refs []Ref
	rows int
}

func (g *tableGrid) write(s string) {
	g.text.WriteString(s)
	g.pos += utf8.RuneCountInString(s)
}

func (g *tableGrid) writeCell(col int, cell tableCell) {
	if col > 0 {
		g.write(cell_separator)
	}
	if col == g.opts.refColumn {
		for _, r := range cell.refs {
			r.Position += g.pos
			g.refs = append(g.refs, r)
		}
	}
	g.write(cell.text)
}

func (g *tableGrid) consumed(col int) bool {
	return col < len(g.pending) && g.pending[col] > 0
}

func spanAttr(cell *html.Node, key string) (int, error) {
	val, ok := htmlutil.Attr(cell, key)
	if !ok {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n <= 0 {
		return 0, fragmentError(ErrUnexpectedNodeShape, cell, "%s %q is not a positive number", key, val)
	}
	return n, nil
}

func (g *tableGrid) row(tr *html.Node) error {
	if g.rows > 0 {
		g.write(row_separator)
	}

	// spans from above as they stood when the row began
	covered := slices.Clone(g.pending)
	col := 0
	// the column a cell would take if no span from above covered the row
	declared := 0
	// set once a span from above has moved cells of this row to the right
	shifted := false
	// emits down continuations for columns consumed from above, starting at col
	skipConsumed := func() {
		for g.consumed(col) {
			shifted = true
			g.writeCell(col, tableCell{text: cell_down_continuation})
			g.pending[col]--
			col++
		}
	}

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode || htmlutil.IsBlankText(c) {
			continue
		}
		if !htmlutil.IsElement(c, "td") && !htmlutil.IsElement(c, "th") {
			return fragmentError(ErrUnexpectedNodeShape, c, "table row child is not a cell")
		}

		rowspan, err := spanAttr(c, "rowspan")
		if err != nil {
			return err
		}
		colspan, err := spanAttr(c, "colspan")
		if err != nil {
			return err
		}

		if rowspan > 1 && declared < len(covered) && covered[declared] > 0 {
			return fragmentError(
				ErrTableSpanConflict, c,
				"row %d: rowspan declared for column %d which is still covered by a span from a previous row", g.rows, declared,
			)
		}
		declared += colspan

		skipConsumed()
		if shifted && g.rows > 0 && col+colspan > g.width {
			return fragmentError(
				ErrTableSpanConflict, c,
				"row %d: cell pushed past column %d by spans from a previous row", g.rows, g.width-1,
			)
		}
		for k := col; k < col+colspan; k++ {
			if g.consumed(k) {
				return fragmentError(
					ErrTableSpanConflict, c,
					"row %d: column %d is still covered by a span from a previous row", g.rows, k,
				)
			}
		}

		cell, err := parseCell(c)
		if err != nil {
			return err
		}
		g.writeCell(col, cell)
		for k := col + 1; k < col+colspan; k++ {
			g.writeCell(k, tableCell{text: cell_right_continuation})
		}

		for len(g.pending) < col+colspan {
			g.pending = append(g.pending, 0)
		}
		if rowspan > 1 {
			for k := col; k < col+colspan; k++ {
				g.pending[k] = rowspan - 1
			}
		}
		col += colspan
	}
	// columns at the end of the row consumed from above
	skipConsumed()

	if g.rows == 0 {
		g.width = col
	} else if col != g.width {
		return fragmentError(ErrUnexpectedNodeShape, tr, "row %d has %d columns, expected %d", g.rows, col, g.width)
	}
	g.rows++
	return nil
}

func parseCell(cell *html.Node) (tableCell, error) {
	extracted, err := extract(htmlutil.Children(cell), mode_table, cell)
	if err != nil {
		return tableCell{}, err
	}

	text := extracted.Text
	trimmedLeft := strings.TrimLeftFunc(text, unicode.IsSpace)
	lead := utf8.RuneCountInString(text) - utf8.RuneCountInString(trimmedLeft)
	text = strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	total := utf8.RuneCountInString(text)

	refs := make([]Ref, 0, len(extracted.Refs))
	for _, r := range extracted.Refs {
		start := min(max(r.Position-lead, 0), total)
		end := min(max(r.Position+r.Length-lead, start), total)
		r.Position = start
		r.Length = end - start
		r.Text = runeSlice(text, start, end)
		refs = append(refs, r)
	}
	return tableCell{text: text, refs: refs}, nil
}

// parseTable reconstructs a cross-reference table as a row-major text grid.
func parseTable(table *html.Node, opts tableOptions) (VerseRecord, error) {
	rows := htmlutil.FindAll(table, "tr")
	if len(rows) == 0 {
		return VerseRecord{}, fragmentError(ErrUnexpectedNodeShape, table, "table without rows")
	}

	g := &tableGrid{opts: opts}
	for _, tr := range rows {
		err := g.row(tr)
		if err != nil {
			return VerseRecord{}, err
		}
	}
	for col, left := range g.pending {
		if left > 0 {
			return VerseRecord{}, fragmentError(
				ErrUnexpectedNodeShape, table,
				"column %d spans %d rows past the end of the table", col, left,
			)
		}
	}

	return VerseRecord{
		Type: TYPE_TABLE,
		Text: g.text.String(),
		Refs: g.refs,
	}, nil
}

func runeSlice(s string, start, end int) string {
	runes := []rune(s)
	return string(runes[start:end])
}
