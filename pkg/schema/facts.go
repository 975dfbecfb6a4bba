// Package schema derives element and type facts from the feed's XSD
// description. Full schema conformance is delegated to the xsd engine;
// this package only extracts the facts the semantic rules need.
package schema

import (
	"fmt"
	"os"
	"sort"

	"electoral-hq/scrutineer/pkg/xmltree"
)

// RefKind classifies reference-typed elements.
type RefKind int

const (
	// RefSingle is an IDREF-typed element holding one identifier.
	RefSingle RefKind = iota
	// RefMulti is an IDREFS-typed element holding a whitespace-separated
	// identifier list.
	RefMulti
)

// Child describes one child element declared by a complex type.
type Child struct {
	Name     string
	Required bool
}

// Facts holds the schema-derived facts consumed by rules.
type Facts struct {
	// Children lists the declared child elements per complex type name.
	Children map[string][]Child

	// ReferenceElements maps element names declared with an IDREF or
	// IDREFS type to their reference kind.
	ReferenceElements map[string]RefKind

	// Enumerations maps simple type names to their valid enumeration
	// values, in declaration order.
	Enumerations map[string][]string

	// TypesWithOther is the set of complex type names that declare an
	// OtherType child element.
	TypesWithOther map[string]struct{}
}

// ParseFile extracts facts from the XSD at path.
func ParseFile(path string) (*Facts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema %s: %w", path, err)
	}
	defer f.Close()

	root, err := xmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return Extract(root), nil
}

// Extract derives facts from an already parsed schema document.
func Extract(root *xmltree.Element) *Facts {
	facts := &Facts{
		Children:          make(map[string][]Child),
		ReferenceElements: make(map[string]RefKind),
		Enumerations:      make(map[string][]string),
		TypesWithOther:    make(map[string]struct{}),
	}

	root.Walk(func(el *xmltree.Element) {
		switch el.Tag {
		case "complexType":
			name := el.AttrValue("name")
			if name == "" {
				return
			}
			for _, decl := range el.FindAll("element") {
				childName := declaredName(decl)
				if childName == "" {
					continue
				}
				facts.Children[name] = append(facts.Children[name], Child{
					Name:     childName,
					Required: decl.AttrValue("minOccurs") != "0",
				})
				if childName == "OtherType" {
					facts.TypesWithOther[name] = struct{}{}
				}
			}

		case "simpleType":
			name := el.AttrValue("name")
			if name == "" {
				return
			}
			for _, enum := range el.FindAll("enumeration") {
				if v, ok := enum.Attr("value"); ok {
					facts.Enumerations[name] = append(facts.Enumerations[name], v)
				}
			}

		case "element":
			name := declaredName(el)
			if name == "" {
				return
			}
			switch el.AttrValue("type") {
			case "xs:IDREF":
				facts.ReferenceElements[name] = RefSingle
			case "xs:IDREFS":
				facts.ReferenceElements[name] = RefMulti
			}
		}
	})

	return facts
}

func declaredName(decl *xmltree.Element) string {
	if name, ok := decl.Attr("name"); ok {
		return name
	}
	return decl.AttrValue("ref")
}

// OptionalChildren returns the names of every optional child element
// declared anywhere in the schema, sorted and de-duplicated.
func (f *Facts) OptionalChildren() []string {
	seen := make(map[string]struct{})
	for _, children := range f.Children {
		for _, c := range children {
			if !c.Required {
				seen[c.Name] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// EnumerationValues returns the set of all enumeration values across
// every simple type. Used to flag OtherType fields that restate a value
// the schema already enumerates.
func (f *Facts) EnumerationValues() map[string]struct{} {
	out := make(map[string]struct{})
	for _, values := range f.Enumerations {
		for _, v := range values {
			out[v] = struct{}{}
		}
	}
	return out
}
