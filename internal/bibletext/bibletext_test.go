package bibletext

import (
	"context"
	"os"
	"path/filepath"
	"scripture-scraper/internal/components/telemetry"
	"scripture-scraper/internal/scrapers/scripture"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestParseBook(t *testing.T) {
	tel := &telemetry.Recorder{}
	reader := NewReader("", "utf-8", tel)

	pages, err := reader.ParseBook(strings.NewReader(
		"Genesis\r\n"+
			"1:1 In the beginning God created\r\n"+
			"1:2 And the earth was without form\n"+
			"\n"+
			"2:1 Thus the heavens\n"+
			"2:x not a verse\n",
	), 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	expected := []scripture.Page{
		{
			PageContext: scripture.PageContext{Book: "01", Chapter: "1", BookId: 0, ChapterId: 1},
			Verses: []scripture.VerseRecord{
				{Num: "1", Type: scripture.TYPE_VERSE, Text: "In the beginning God created"},
				{Num: "2", Type: scripture.TYPE_VERSE, Text: "And the earth was without form"},
			},
		},
		{
			PageContext: scripture.PageContext{Book: "01", Chapter: "2", BookId: 0, ChapterId: 2},
			Verses: []scripture.VerseRecord{
				{Num: "1", Type: scripture.TYPE_VERSE, Text: "Thus the heavens"},
			},
		},
	}
	diff := cmp.Diff(expected, pages, cmpopts.EquateEmpty())
	if diff != "" {
		t.Fatal(diff)
	}
	require.Len(t, tel.Reports("debug"), 2)
}

func TestParseBookEncoding(t *testing.T) {
	testCases := []struct {
		name     string
		encoding string
		contents string
		expected string
	}{
		{name: "utf-8", encoding: "utf-8", contents: "1:1 初めに", expected: "初めに"},
		{name: "unset", encoding: "", contents: "1:1 初めに", expected: "初めに"},
		{name: "shift_jis", encoding: "shift_jis", contents: "1:1 \x8f\x89\x82\xdf\x82\xc9", expected: "初めに"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			reader := NewReader("", testCase.encoding, &telemetry.Recorder{})
			pages, err := reader.ParseBook(strings.NewReader(testCase.contents), 40, 0)
			if err != nil {
				t.Fatal(err)
			}
			require.Len(t, pages, 1)
			require.Equal(t, testCase.expected, pages[0].Verses[0].Text)
		})
	}

	reader := NewReader("", "klingon", &telemetry.Recorder{})
	_, err := reader.ParseBook(strings.NewReader("1:1 x"), 1, 0)
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestReadTestament(t *testing.T) {
	dir := t.TempDir()
	files := map[int]string{
		40: "1:1 The book of the generation\n1:2 Abraham begat Isaac\n",
		41: "1:1 The beginning of the gospel\n",
	}
	for number, contents := range files {
		err := os.WriteFile(filepath.Join(dir, FileName(number)), []byte(contents), 0600)
		if err != nil {
			t.Fatal(err)
		}
	}

	tel := &telemetry.Recorder{}
	reader := NewReader(dir, "utf-8", tel)
	book, err := reader.ReadTestament(context.Background(), Testament{Name: "new", First: 40, Last: 41})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "new", book.Collection)
	require.Len(t, book.Pages, 2)
	require.Equal(t, "40", book.Pages[0].Book)
	require.Equal(t, 0, book.Pages[0].BookId)
	require.Equal(t, "41", book.Pages[1].Book)
	require.Equal(t, 1, book.Pages[1].BookId)
	require.Equal(t, 3, book.Stats().Verses)

	_, err = reader.ReadTestament(context.Background(), Testament{Name: "new", First: 40, Last: 42})
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NotEmpty(t, tel.Reports("broken"))
}

func TestLookupTestament(t *testing.T) {
	old, err := LookupTestament("old")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Testament{Name: "old", First: 1, Last: 39}, old)
	require.Equal(t, "bible07.txt", FileName(7))

	_, err = LookupTestament("apocrypha")
	require.Error(t, err)
}
