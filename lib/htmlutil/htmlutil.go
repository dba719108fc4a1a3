package htmlutil

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Attr returns the value of the attribute key and whether it was present.
func Attr(node *html.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the value of the attribute key or fallback if it is absent.
func AttrOr(node *html.Node, key, fallback string) string {
	val, ok := Attr(node, key)
	if !ok {
		return fallback
	}
	return val
}

// Class returns the whole class attribute, trimmed.
func Class(node *html.Node) string {
	return strings.TrimSpace(AttrOr(node, "class", ""))
}

// HasClass reports whether name is one of the node's space separated classes.
func HasClass(node *html.Node, name string) bool {
	for _, c := range strings.Fields(AttrOr(node, "class", "")) {
		if c == name {
			return true
		}
	}
	return false
}

// IsElement reports whether node is an element with the given tag name.
func IsElement(node *html.Node, tag string) bool {
	return node != nil && node.Type == html.ElementNode && node.Data == tag
}

func IsBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// IsBlankText reports whether node is a text node holding only whitespace.
func IsBlankText(node *html.Node) bool {
	return node.Type == html.TextNode && IsBlank(node.Data)
}

// Children returns the direct children of node.
func Children(node *html.Node) []*html.Node {
	var out []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// FindAll returns every descendant element of node with the given tag, in
// document order.
func FindAll(node *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if IsElement(c, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(node)
	return out
}

// Render serializes node back to html, truncated to at most limit bytes
// (0 means no limit). Rendering errors are returned in place of the markup.
func Render(node *html.Node, limit int) string {
	var buffer bytes.Buffer
	err := html.Render(&buffer, node)
	if err != nil {
		return "<render failed: " + err.Error() + ">"
	}
	out := buffer.String()
	if limit > 0 && len(out) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		return out[:cut] + "..."
	}
	return out
}

// ParseFragment parses an html snippet in the context of a <div> and returns
// a detached <div> holding the parsed nodes.
func ParseFragment(fragment string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, err
	}
	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}
