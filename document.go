package xtid

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Node is a single markup element: attribute access plus element children in
// document order.
type Node interface {
	Attr(name string) (string, bool)
	Children() []Node
}

// Document is the page-markup accessor the derivation pipeline reads from.
// Implementations must return elements in document order.
type Document interface {
	// Markup returns the full serialized markup text.
	Markup() string

	// LookupAttr finds the first element carrying attrName=attrValue and
	// returns the value of its target attribute.
	LookupAttr(attrName, attrValue, target string) (string, bool)

	// ElementsByIDPrefix returns every element whose id attribute starts
	// with prefix.
	ElementsByIDPrefix(prefix string) []Node
}

// HTMLDocument implements Document on top of golang.org/x/net/html.
type HTMLDocument struct {
	raw  string
	root *html.Node
}

// ParseDocument parses serialized HTML into a queryable Document.
func ParseDocument(markup string) (*HTMLDocument, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return &HTMLDocument{raw: markup, root: root}, nil
}

// Markup returns the original serialized markup.
func (d *HTMLDocument) Markup() string { return d.raw }

// LookupAttr finds the first element with attrName=attrValue and returns its
// target attribute value.
func (d *HTMLDocument) LookupAttr(attrName, attrValue, target string) (string, bool) {
	var out string
	var found bool
	walkElements(d.root, func(n *html.Node) bool {
		if v, ok := nodeAttr(n, attrName); !ok || v != attrValue {
			return true
		}
		out, found = nodeAttr(n, target)
		return false
	})
	return out, found
}

// ElementsByIDPrefix collects elements whose id starts with prefix, in
// document order.
func (d *HTMLDocument) ElementsByIDPrefix(prefix string) []Node {
	var out []Node
	walkElements(d.root, func(n *html.Node) bool {
		if id, ok := nodeAttr(n, "id"); ok && strings.HasPrefix(id, prefix) {
			out = append(out, htmlNode{n})
		}
		return true
	})
	return out
}

// htmlNode adapts *html.Node to the Node interface.
type htmlNode struct {
	n *html.Node
}

func (h htmlNode) Attr(name string) (string, bool) {
	return nodeAttr(h.n, name)
}

// Children returns element children only; text and comment nodes are
// skipped.
func (h htmlNode) Children() []Node {
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, htmlNode{c})
		}
	}
	return out
}

// walkElements visits element nodes depth-first; visit returns false to stop
// the walk.
func walkElements(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkElements(c, visit) {
			return false
		}
	}
	return true
}

func nodeAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
