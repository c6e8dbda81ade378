// Package xmltree parses XML into a minimal navigable node tree.
//
// The tree is deliberately schema-free: element names, attributes,
// ordered children, and character data, nothing else. Namespace
// prefixes are dropped so lookups work across dialects that disagree
// about prefixes. Parsing is tolerant: a malformed document yields the
// partial tree built before the error alongside the error, and every
// navigation method is nil-receiver safe, so callers can keep walking
// whatever did parse.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Attr is one element attribute with its namespace prefix dropped.
type Attr struct {
	Name  string
	Value string
}

// Node is one element in the parsed tree. The root returned by Parse
// is a synthetic document node with an empty name whose children are
// the document's top-level elements.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	// Text is the node's own character data, concatenated across
	// chunks, untrimmed.
	Text string
}

// Parse reads XML from r into a node tree. On a token error the tree
// built so far is returned together with the error; the partial tree
// is usable.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	doc := &Node{}
	stack := []*Node{doc}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return doc, fmt.Errorf("xmltree: parse: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.Text += string(t)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) (*Node, error) {
	return Parse(bytes.NewReader(b))
}

// DirectText returns the node's own character data, whitespace-trimmed.
func (n *Node) DirectText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// DeepText returns the character data of the node and all descendants
// in document order, space-joined.
func (n *Node) DeepText() string {
	if n == nil {
		return ""
	}
	var parts []string
	n.collectText(&parts)
	return strings.Join(parts, " ")
}

func (n *Node) collectText(parts *[]string) {
	if t := n.DirectText(); t != "" {
		*parts = append(*parts, t)
	}
	for _, c := range n.Children {
		c.collectText(parts)
	}
}

// First returns the first descendant named name, case-insensitively,
// in document order. The receiver itself is not considered.
func (n *Node) First(name string) *Node {
	return n.FirstAny(name)
}

// FirstAny returns the first descendant whose name matches any of
// names, case-insensitively, in document order. Document order means
// an earlier sibling subtree wins over a later sibling even when the
// later match is shallower.
func (n *Node) FirstAny(names ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, want := range names {
			if strings.EqualFold(c.Name, want) {
				return c
			}
		}
		if found := c.FirstAny(names...); found != nil {
			return found
		}
	}
	return nil
}

// ChildrenNamed returns the direct children named name,
// case-insensitively, in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the first attribute matching name
// case-insensitively.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// AttrExact returns the value of the attribute named exactly name.
func (n *Node) AttrExact(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
