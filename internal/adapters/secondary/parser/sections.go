package parser

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

// SectionParser reads deck markup into its top-level sections.
// It never changes the markup; the renderer receives the original text.
type SectionParser struct{}

// NewSectionParser creates a new section parser
func NewSectionParser() *SectionParser {
	return &SectionParser{}
}

// Parse returns the top-level <section> elements in document order.
// Nested sections belong to their enclosing slide.
func (p *SectionParser) Parse(markup string) ([]entities.Section, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing deck markup: %w", err)
	}

	var sections []entities.Section
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.DataAtom == atom.Section {
			section, err := buildSection(n, len(sections))
			if err != nil {
				return err
			}
			sections = append(sections, section)
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc); err != nil {
		return nil, err
	}

	return sections, nil
}

// ParseSections is a convenience wrapper around SectionParser.Parse
func ParseSections(markup string) ([]entities.Section, error) {
	return NewSectionParser().Parse(markup)
}

func buildSection(n *html.Node, index int) (entities.Section, error) {
	var inner bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&inner, c); err != nil {
			return entities.Section{}, fmt.Errorf("rendering section %d: %w", index, err)
		}
	}

	return entities.Section{
		Index:      index,
		Heading:    firstHeading(n),
		Background: attr(n, "data-background"),
		HTML:       inner.String(),
	}, nil
}

func firstHeading(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if isHeading(c.DataAtom) {
			return normalizeText(textContent(c))
		}
		if c.DataAtom == atom.Section {
			continue
		}
		if h := firstHeading(c); h != "" {
			return h
		}
	}
	return ""
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// normalizeText collapses whitespace and applies NFC so headings compare byte-for-byte
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Ensure SectionParser implements ports.SectionParser
var _ ports.SectionParser = (*SectionParser)(nil)
