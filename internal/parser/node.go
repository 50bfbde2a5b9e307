// Package parser turns catalog HTML pages into catalog records.
//
// Parsing is written against the small Node interface rather than a concrete
// HTML library, so page logic can be exercised with any document backend.
// The default backend is goquery.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the document-query capability the page parsers need.
type Node interface {
	// FindByClass returns the first descendant carrying class.
	FindByClass(class string) (Node, bool)
	// FindAllByClass returns every descendant carrying class, in document order.
	FindAllByClass(class string) []Node
	// Children returns the element children (text nodes excluded).
	Children() []Node
	// Text returns the concatenated text content.
	Text() string
}

// FromHTML parses an HTML string.
func FromHTML(html string) (Node, error) {
	return FromReader(strings.NewReader(html))
}

// FromReader parses HTML read from r.
func FromReader(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument adapts an already parsed goquery document.
func FromDocument(doc *goquery.Document) Node {
	return selection{doc.Selection}
}

// selection adapts a goquery selection to Node.
type selection struct {
	sel *goquery.Selection
}

func classSelector(class string) string {
	return "." + class
}

func (s selection) FindByClass(class string) (Node, bool) {
	found := s.sel.Find(classSelector(class)).First()
	if found.Length() == 0 {
		return nil, false
	}
	return selection{found}, true
}

func (s selection) FindAllByClass(class string) []Node {
	found := s.sel.Find(classSelector(class))
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, el *goquery.Selection) {
		nodes = append(nodes, selection{el})
	})
	return nodes
}

func (s selection) Children() []Node {
	children := s.sel.Children()
	nodes := make([]Node, 0, children.Length())
	children.Each(func(_ int, el *goquery.Selection) {
		nodes = append(nodes, selection{el})
	})
	return nodes
}

func (s selection) Text() string {
	return s.sel.Text()
}
