package xmltree

import "strings"

// Attr is a single element attribute. Order within an element is the
// order of appearance in the source document.
type Attr struct {
	Name  string
	Value string
}

// Element is a node in the parsed feed tree. Elements are built once by
// Parse and treated as read-only for the remainder of a validation run.
type Element struct {
	// Tag is the local element name with any namespace prefix stripped.
	Tag string

	// Attrs holds the element's attributes in document order.
	// Attribute names are unique within an element.
	Attrs []Attr

	// Text is the concatenated character data directly inside the
	// element (not including descendant text).
	Text string

	// Children are the child elements in document order.
	Children []*Element

	// Parent is the enclosing element, nil for the document root.
	Parent *Element

	// Line is the 1-based source line where the element's start tag
	// appears.
	Line int
}

// Attr returns the value of the named attribute and whether it exists.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the named attribute's value, or "" if absent.
func (e *Element) AttrValue(name string) string {
	v, _ := e.Attr(name)
	return v
}

// ObjectID returns the element's objectId attribute, the identifier
// convention used by entity elements in election feeds.
func (e *Element) ObjectID() string {
	return e.AttrValue("objectId")
}

// TrimmedText returns the element text with surrounding whitespace removed.
func (e *Element) TrimmedText() string {
	return strings.TrimSpace(e.Text)
}

// Child returns the first direct child with the given tag, or nil.
func (e *Element) Child(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first direct child with the
// given tag, or "" when there is no such child.
func (e *Element) ChildText(tag string) string {
	if c := e.Child(tag); c != nil {
		return c.TrimmedText()
	}
	return ""
}

// Find returns the first descendant (in document order, not including e
// itself) with the given tag, or nil.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant with the given tag in document order.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) {
		if el != e && el.Tag == tag {
			out = append(out, el)
		}
	})
	return out
}

// Walk visits e and every descendant in document order.
func (e *Element) Walk(visit func(*Element)) {
	visit(e)
	for _, c := range e.Children {
		c.Walk(visit)
	}
}
