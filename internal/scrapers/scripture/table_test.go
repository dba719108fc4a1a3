package scripture

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const chronologyTable = `<table>` +
	`<tr><th>Date</th><th>Place</th><th>Ref</th></tr>` +
	`<tr><td rowspan="2">1830</td><td colspan="2">Fayette <a href="/dc/20">D&amp;C 20</a></td></tr>` +
	`<tr><td> Kirtland <br/>Ohio </td><td><a href="/scriptures/dc-testament/dc/88">D&amp;C 88</a></td></tr>` +
	`</table>`

func TestParseTable(t *testing.T) {
	rec, err := parseTable(firstElement(t, chronologyTable), tableOptions{refColumn: 2})
	if err != nil {
		t.Fatal(err)
	}

	expected := VerseRecord{
		Type: TYPE_TABLE,
		Text: "Date\tPlace\tRef\n" +
			"1830\tFayette D&C 20\t→\n" +
			"↓\tKirtland  Ohio\tD&C 88",
		Refs: []Ref{{
			Annotation: Annotation{Position: 54, Length: 6, Text: "D&C 88"},
			Href:       "/scriptures/dc-testament/dc/88",
		}},
	}
	diff := cmp.Diff(expected, rec)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, "D&C 88", runeSubstring(rec.Text, rec.Refs[0].Position, rec.Refs[0].Length))
}

func TestParseTableShape(t *testing.T) {
	rec, err := parseTable(firstElement(t, `<table>`+
		`<tr><td rowspan="3">a</td><td>b</td><td rowspan="2">c</td></tr>`+
		`<tr><td>d</td></tr>`+
		`<tr><td colspan="2">e</td></tr>`+
		`<tr><td>f</td><td>g</td><td>h</td></tr>`+
		`</table>`), tableOptions{refColumn: 0})
	if err != nil {
		t.Fatal(err)
	}

	rows := strings.Split(rec.Text, row_separator)
	require.Len(t, rows, 4)
	for _, row := range rows {
		require.Len(t, strings.Split(row, cell_separator), 3, row)
	}
	require.Equal(t, []string{
		"a\tb\tc",
		"↓\td\t↓",
		"↓\te\t→",
		"f\tg\th",
	}, rows)
}

func TestParseTableErrors(t *testing.T) {
	testCases := []struct {
		name     string
		fragment string
		expected error
	}{
		{
			name: "span into a covered column",
			fragment: `<table>` +
				`<tr><td>a</td><td>b</td><td rowspan="2">c</td></tr>` +
				`<tr><td>d</td><td colspan="2">e</td></tr>` +
				`</table>`,
			expected: ErrTableSpanConflict,
		},
		{
			name: "rowspan over a covered column",
			fragment: `<table>` +
				`<tr><td>a</td><td>b</td><td rowspan="2">c</td></tr>` +
				`<tr><td>d</td><td>e</td><td rowspan="2">f</td></tr>` +
				`<tr><td>g</td><td>h</td><td>i</td></tr>` +
				`</table>`,
			expected: ErrTableSpanConflict,
		},
		{
			name: "rowspan pushed right of a covered column",
			fragment: `<table>` +
				`<tr><td rowspan="2">a</td><td>b</td></tr>` +
				`<tr><td rowspan="2">c</td></tr>` +
				`<tr><td>d</td><td>e</td></tr>` +
				`</table>`,
			expected: ErrTableSpanConflict,
		},
		{
			name: "cell pushed past the last column",
			fragment: `<table>` +
				`<tr><td rowspan="2">a</td><td>b</td></tr>` +
				`<tr><td>c</td><td>d</td></tr>` +
				`</table>`,
			expected: ErrTableSpanConflict,
		},
		{
			name: "row too long",
			fragment: `<table>` +
				`<tr><td>a</td><td>b</td></tr>` +
				`<tr><td>c</td><td>d</td><td>e</td></tr>` +
				`</table>`,
			expected: ErrUnexpectedNodeShape,
		},
		{
			name: "row too short",
			fragment: `<table>` +
				`<tr><td>a</td><td>b</td></tr>` +
				`<tr><td>c</td></tr>` +
				`</table>`,
			expected: ErrUnexpectedNodeShape,
		},
		{
			name:     "span past the last row",
			fragment: `<table><tr><td rowspan="2">a</td></tr></table>`,
			expected: ErrUnexpectedNodeShape,
		},
		{
			name:     "invalid span",
			fragment: `<table><tr><td colspan="wide">a</td></tr></table>`,
			expected: ErrUnexpectedNodeShape,
		},
		{
			name:     "no rows",
			fragment: `<table></table>`,
			expected: ErrUnexpectedNodeShape,
		},
		{
			name:     "footnote in a cell",
			fragment: `<table><tr><td><sup>a</sup><a href="/fn/1" rel="r">x</a></td></tr></table>`,
			expected: ErrUnrecognizedAnnotation,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := parseTable(firstElement(t, testCase.fragment), tableOptions{refColumn: 0})
			require.ErrorIs(t, err, testCase.expected)
		})
	}
}
