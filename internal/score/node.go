package score

import (
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var selectors sync.Map // string -> *xpath.Expr

func selector(expr string) *xpath.Expr {
	if e, ok := selectors.Load(expr); ok {
		return e.(*xpath.Expr)
	}
	e := xpath.MustCompile(expr)
	selectors.Store(expr, e)
	return e
}

// Select returns all nodes below n matching the XPath expression, in document order.
// The expression must be valid; it is compiled once and cached.
func Select(n *xmlquery.Node, expr string) []*xmlquery.Node {
	return xmlquery.QuerySelectorAll(n, selector(expr))
}

// SelectOne returns the first node matching the XPath expression, or nil.
func SelectOne(n *xmlquery.Node, expr string) *xmlquery.Node {
	return xmlquery.QuerySelector(n, selector(expr))
}

// Elements returns the element children of n with the given name.
// An empty name matches every element.
func Elements(n *xmlquery.Node, name string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if name == "" || c.Data == name {
			out = append(out, c)
		}
	}
	return out
}

// Element returns the first element child of n with the given name, or nil.
func Element(n *xmlquery.Node, name string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return c
		}
	}
	return nil
}

// Text returns the trimmed text of the named child element of n.
func Text(n *xmlquery.Node, name string) string {
	c := Element(n, name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.InnerText())
}

// Int returns the named child's text as an integer, or def.
func Int(n *xmlquery.Node, name string, def int) int {
	v, err := strconv.Atoi(Text(n, name))
	if err != nil {
		return def
	}
	return v
}

// SetText replaces the content of the named child of n with text, creating the child if needed.
func SetText(n *xmlquery.Node, name, text string) *xmlquery.Node {
	c := Element(n, name)
	if c == nil {
		c = NewElement(name)
		xmlquery.AddChild(n, c)
	}
	ReplaceChildren(c, []*xmlquery.Node{{Type: xmlquery.TextNode, Data: text}})
	return c
}

// NewElement creates a detached element with the given children.
func NewElement(name string, children ...*xmlquery.Node) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	for _, c := range children {
		xmlquery.AddChild(n, c)
	}
	return n
}

// NewTextElement creates <name>text</name>.
func NewTextElement(name, text string) *xmlquery.Node {
	return NewElement(name, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
}

// Clone returns a detached deep copy of n.
func Clone(n *xmlquery.Node) *xmlquery.Node {
	c := &xmlquery.Node{
		Type:         n.Type,
		Data:         n.Data,
		Prefix:       n.Prefix,
		NamespaceURI: n.NamespaceURI,
		LineNumber:   n.LineNumber,
	}
	if n.Attr != nil {
		c.Attr = append([]xmlquery.Attr(nil), n.Attr...)
	}
	if n.ProcInst != nil {
		p := *n.ProcInst
		c.ProcInst = &p
	}
	for k := n.FirstChild; k != nil; k = k.NextSibling {
		xmlquery.AddChild(c, Clone(k))
	}
	return c
}

// Remove detaches n from its tree.
func Remove(n *xmlquery.Node) {
	xmlquery.RemoveFromTree(n)
}

// InsertAfter places n directly after ref.
func InsertAfter(ref, n *xmlquery.Node) {
	xmlquery.AddImmediateSibling(ref, n)
}

// ReplaceChildren swaps the complete child list of parent for children.
// Nodes in children may currently be attached anywhere, including below parent.
func ReplaceChildren(parent *xmlquery.Node, children []*xmlquery.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		c.Parent, c.PrevSibling, c.NextSibling = nil, nil, nil
		c = next
	}
	parent.FirstChild, parent.LastChild = nil, nil
	for _, c := range children {
		if c.Parent != nil {
			xmlquery.RemoveFromTree(c)
		}
		xmlquery.AddChild(parent, c)
	}
}

// Prepend puts nodes at the start of parent, keeping their order.
func Prepend(parent *xmlquery.Node, nodes ...*xmlquery.Node) {
	if len(nodes) == 0 {
		return
	}
	kids := append([]*xmlquery.Node(nil), nodes...)
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	ReplaceChildren(parent, kids)
}

// Filter rebuilds the child list of parent keeping only the children for which keep returns true.
func Filter(parent *xmlquery.Node, keep func(c *xmlquery.Node) bool) {
	var kids []*xmlquery.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if keep(c) {
			kids = append(kids, c)
		}
	}
	ReplaceChildren(parent, kids)
}

// IntAttr returns the integer value of the attribute, or def.
func IntAttr(n *xmlquery.Node, name string, def int) int {
	v, err := strconv.Atoi(n.SelectAttr(name))
	if err != nil {
		return def
	}
	return v
}

// StaffID returns the id attribute of a Staff element.
func StaffID(staff *xmlquery.Node) int {
	return IntAttr(staff, "id", 0)
}

// SetStaffID rewrites the id attribute of a Staff element.
func SetStaffID(staff *xmlquery.Node, id int) {
	staff.SetAttr("id", strconv.Itoa(id))
}

func stripWhitespace(n *xmlquery.Node) {
	hasElement := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			hasElement = true
			break
		}
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case xmlquery.TextNode:
			if hasElement && strings.TrimSpace(c.Data) == "" {
				xmlquery.RemoveFromTree(c)
			}
		case xmlquery.ElementNode, xmlquery.DocumentNode:
			stripWhitespace(c)
		}
		c = next
	}
}
