package htmlutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t testing.TB, fragment string) *html.Node {
	t.Helper()
	root, err := ParseFragment(fragment)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestGetText(t *testing.T) {
	root := parse(t, `<p>In <b>the</b> beginning<!-- c --></p>`)
	require.Equal(t, "In the beginning", GetText(root))
	require.Equal(t, "", GetText(nil))
}

func TestAttributes(t *testing.T) {
	p := parse(t, `<p class=" verse  intro " id="">x</p>`).FirstChild

	id, ok := Attr(p, "id")
	require.True(t, ok)
	require.Equal(t, "", id)

	_, ok = Attr(p, "name")
	require.False(t, ok)
	require.Equal(t, "fallback", AttrOr(p, "name", "fallback"))

	require.Equal(t, "verse  intro", Class(p))
	require.True(t, HasClass(p, "intro"))
	require.False(t, HasClass(p, "ver"))
	require.True(t, IsElement(p, "p"))
	require.False(t, IsElement(p.FirstChild, "p"))
	require.False(t, IsElement(nil, "p"))
}

func TestBlank(t *testing.T) {
	require.True(t, IsBlank(" \n\t "))
	require.False(t, IsBlank(" x "))

	root := parse(t, "<p>a</p>\n  ")
	require.False(t, IsBlankText(root.FirstChild))
	require.True(t, IsBlankText(root.LastChild))
}

func TestFindAll(t *testing.T) {
	root := parse(t, `<div><p>1</p><div><p>2</p></div></div><p>3</p>`)

	var texts []string
	for _, p := range FindAll(root, "p") {
		texts = append(texts, GetText(p))
	}
	require.Equal(t, []string{"1", "2", "3"}, texts)
	require.Len(t, Children(root), 2)
}

func TestRender(t *testing.T) {
	root := parse(t, `<span class="x">`+strings.Repeat("a", 50)+`</span>`)
	span := root.FirstChild

	require.Equal(t, `<span class="x">`+strings.Repeat("a", 50)+`</span>`, Render(span, 0))

	truncated := Render(span, 20)
	require.Equal(t, `<span class="x">aaaa...`, truncated)

	// each of these runes is 3 bytes, the cut backs off to a rune boundary
	root = parse(t, `<p>初めに神は</p>`)
	truncated = Render(root.FirstChild, 8)
	require.Equal(t, `<p>初...`, truncated)
	require.True(t, utf8.ValidString(truncated))
}
