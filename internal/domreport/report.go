// Package domreport renders a domtypes.State to an HTML debug fragment for
// offline inspection; cmd/pilot writes one when run with --debug-html.
// New relative to the teacher (which ships no injected-script tooling), but
// grounded on golang.org/x/net/html's node-tree construction idiom.
package domreport

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wrenlab/pilot/pkg/domtypes"
)

// Render builds a standalone HTML document listing every element in state,
// one row per element, annotated with its index, tag, interaction type, and
// a truncated text preview, enough for a human to correlate an agent's
// chosen index against what was on the page.
func Render(state *domtypes.State) (string, error) {
	doc := &html.Node{Type: html.DocumentNode}

	htmlNode := elem(atom.Html, "html")
	head := elem(atom.Head, "head")
	title := elem(atom.Title, "title")
	title.AppendChild(text(fmt.Sprintf("snapshot: %s", state.Title)))
	head.AppendChild(title)

	body := elem(atom.Body, "body")
	heading := elem(atom.H1, "h1")
	heading.AppendChild(text(state.URL))
	body.AppendChild(heading)

	table := elem(atom.Table, "table")
	table.Attr = []html.Attribute{{Key: "border", Val: "1"}}
	table.AppendChild(headerRow())
	for _, el := range state.Elements {
		table.AppendChild(elementRow(el))
	}
	body.AppendChild(table)

	htmlNode.AppendChild(head)
	htmlNode.AppendChild(body)
	doc.AppendChild(htmlNode)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", fmt.Errorf("domreport: render: %w", err)
	}
	return sb.String(), nil
}

func headerRow() *html.Node {
	row := elem(atom.Tr, "tr")
	for _, col := range []string{"index", "tag", "interaction", "clickable", "visible", "text"} {
		th := elem(atom.Th, "th")
		th.AppendChild(text(col))
		row.AppendChild(th)
	}
	return row
}

func elementRow(el domtypes.Element) *html.Node {
	row := elem(atom.Tr, "tr")
	cells := []string{
		strconv.Itoa(el.Index),
		el.Tag,
		string(el.InteractionType),
		strconv.FormatBool(el.IsClickable),
		strconv.FormatBool(el.IsVisible),
		truncate(el.Text, 80),
	}
	for _, c := range cells {
		td := elem(atom.Td, "td")
		td.AppendChild(text(c))
		row.AppendChild(td)
	}
	return row
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func elem(a atom.Atom, name string) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: name}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
