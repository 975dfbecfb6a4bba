package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads an XML document and builds the element tree, recording the
// source line of every start tag. The input must have exactly one root
// element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var current *Element

	for {
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Tag:    t.Name.Local,
				Parent: current,
				Line:   line,
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if current == nil {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				root = el
			} else {
				current.Children = append(current.Children, el)
			}
			current = el

		case xml.EndElement:
			if current == nil {
				return nil, fmt.Errorf("parse xml: unbalanced end tag </%s>", t.Name.Local)
			}
			current = current.Parent

		case xml.CharData:
			if current != nil {
				current.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	return root, nil
}

// ParseFile parses the XML document at path.
func ParseFile(path string) (*Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", path, err)
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", path, err)
	}
	return root, nil
}

// ParseString parses an XML document held in a string. It exists mainly
// for tests and small fragments.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}
