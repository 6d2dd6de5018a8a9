package book

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Form:     true,
}

// toXHTML renders a chapter body as well-formed markup for the e-book.
// Scripts and similar page furniture are removed along with event handler
// attributes; void elements come out self-closed.
func toXHTML(body *goquery.Selection) (string, error) {
	var buf bytes.Buffer

	for _, n := range body.Clone().Nodes {
		scrub(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}

func scrub(n *html.Node) {
	if n.Type == html.ElementNode {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attr = attrs
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode || (c.Type == html.ElementNode && droppedElements[c.DataAtom]) {
			n.RemoveChild(c)
		} else {
			scrub(c)
		}
		c = next
	}
}
