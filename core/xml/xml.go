// Package xml provides a pure Go XML document model with XPath support,
// backed by the xmlquery library (which uses encoding/xml internally and
// inherits its security properties: external entities are not fetched).
package xml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML node (element or text).
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	reader := bytes.NewReader(data)
	root, err := xmlquery.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the root element of the document, or nil for an empty document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query against the document and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first matching node,
// or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Name returns the element name without namespace prefix.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// IsElement reports whether the node is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.node != nil && n.node.Type == xmlquery.ElementNode
}

// IsText reports whether the node is a text or CDATA node.
func (n *Node) IsText() bool {
	if n == nil || n.node == nil {
		return false
	}
	return n.node.Type == xmlquery.TextNode || n.node.Type == xmlquery.CharDataNode
}

// TextData returns the raw character data of a text node.
func (n *Node) TextData() string {
	if !n.IsText() {
		return ""
	}
	return n.node.Data
}

// Text returns the directly contained text of an element: the concatenation
// of its immediate text children, without descending into child elements.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	var sb strings.Builder
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String()
}

// InnerText returns all text content of the node and its descendants.
func (n *Node) InnerText() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns the value of the named attribute, ignoring namespace prefixes.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// HasAttr reports whether the named attribute is present on the element.
func (n *Node) HasAttr(name string) bool {
	if n == nil || n.node == nil {
		return false
	}
	for _, a := range n.node.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Walk visits every descendant node (elements and text) in document order,
// excluding the receiver itself. The walk stops early if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || n.node == nil {
		return
	}
	walk(n.node.FirstChild, fn)
}

func walk(node *xmlquery.Node, fn func(*Node) bool) bool {
	for ; node != nil; node = node.NextSibling {
		if node.Type == xmlquery.ElementNode || node.Type == xmlquery.TextNode || node.Type == xmlquery.CharDataNode {
			if !fn(&Node{node: node}) {
				return false
			}
		}
		if !walk(node.FirstChild, fn) {
			return false
		}
	}
	return true
}

// SelectAll returns all descendant elements matching the XPath expression,
// evaluated relative to the node.
func (n *Node) SelectAll(expr string) ([]*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	nodes, err := xmlquery.QueryAll(n.node, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	result := make([]*Node, len(nodes))
	for i, nd := range nodes {
		result[i] = &Node{node: nd}
	}
	return result, nil
}

// SelectFirst returns the first descendant element matching the XPath
// expression, or nil when nothing matches.
func (n *Node) SelectFirst(expr string) (*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	node, err := xmlquery.Query(n.node, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}
