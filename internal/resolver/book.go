package resolver

import (
	"fmt"
	"strings"

	"github.com/openscripture/bibleapi/core/books"
	"github.com/openscripture/bibleapi/core/xml"
)

// bookMatch carries the located book element plus the identifiers used for
// extraction and output. ID falls back to the normalized query when the
// element declares none; Name falls back to the raw query.
type bookMatch struct {
	node *xml.Node
	ID   string
	Name string
}

// findBook locates the element representing a book, trying increasingly
// loose matches: exact book/@id on the raw then normalized query, any
// element by osisID or id, and finally a case-insensitive substring or
// prefix match against book/@name.
func (d *Document) findBook(query string) (bookMatch, bool) {
	normalized := books.Normalize(query)

	candidates := []string{}
	// Raw user input is skipped as an XPath literal when it carries
	// characters that would break out of the quoted string.
	if query != "" && !strings.ContainsAny(query, `'"[]`) {
		candidates = append(candidates, query)
	}
	if normalized != query {
		candidates = append(candidates, normalized)
	}

	for _, id := range candidates {
		if n := d.firstMatch(fmt.Sprintf("//book[@id='%s']", id)); n != nil {
			return d.matchFrom(n, query, normalized), true
		}
	}
	for _, attr := range []string{"osisID", "id"} {
		for _, id := range candidates {
			if n := d.firstMatch(fmt.Sprintf("//*[@%s='%s']", attr, id)); n != nil {
				return d.matchFrom(n, query, normalized), true
			}
		}
	}

	// Name-based fallback: the normalized code appearing inside, or the
	// uppercased name starting with it.
	nodes, err := d.doc.XPath("//book[@name]")
	if err == nil {
		for _, n := range nodes {
			name := strings.ToUpper(n.Attr("name"))
			if strings.Contains(name, normalized) || strings.HasPrefix(name, normalized) {
				return d.matchFrom(n, query, normalized), true
			}
		}
	}
	return bookMatch{}, false
}

func (d *Document) firstMatch(expr string) *xml.Node {
	n, err := d.doc.XPathFirst(expr)
	if err != nil {
		return nil
	}
	return n
}

func (d *Document) matchFrom(n *xml.Node, query, normalized string) bookMatch {
	m := bookMatch{node: n, ID: n.Attr("id"), Name: n.Attr("name")}
	if m.ID == "" {
		m.ID = normalized
	}
	if m.Name == "" {
		m.Name = query
	}
	return m
}
