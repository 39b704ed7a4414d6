// =============================================================================
// Tally Sales XML - XML Writer Module
// =============================================================================
//
// This module holds the in-memory element tree and the pass that turns it into
// text. Building and rendering are kept apart: the voucher package assembles a
// tree of *Element values, and Marshal renders any tree without knowing what
// it represents.
//
// TREE SHAPE:
//   Every element has a name, an ordered list of attributes, optional text and
//   an ordered list of children. Order is exactly the order things were added:
//
//   <ENVELOPE>
//     <HEADER>
//       <TALLYREQUEST>Import Data</TALLYREQUEST>
//     </HEADER>
//     <BODY>...</BODY>
//   </ENVELOPE>
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Element is a single XML element.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*Element
}

// New creates an element with no attributes, text or children.
func New(name string) *Element {
	return &Element{Name: name}
}

// Attr appends an attribute and returns the element for chaining.
func (e *Element) Attr(name, value string) *Element {
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// Append adds children in order and returns the element.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Leaf appends a child element holding only text and returns the parent.
func (e *Element) Leaf(name, text string) *Element {
	return e.Append(&Element{Name: name, Text: text})
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find walks a slash-separated path of child names from e.
// "BODY/IMPORTDATA" returns the first IMPORTDATA under the first BODY.
func (e *Element) Find(path string) *Element {
	current := e
	for _, part := range strings.Split(path, "/") {
		if current == nil {
			return nil
		}
		current = current.Child(part)
	}
	return current
}

// AttrValue returns the value of the named attribute and whether it is set.
func (e *Element) AttrValue(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for each nesting level.
	// An empty string writes the whole document on one line.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes <?xml version="1.0" encoding="UTF-8"?>
	// before the root element.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Marshal renders the tree rooted at root as UTF-8 XML text.
//
// A nil root yields nil output and no error, so callers can pass the result
// of a builder that had nothing to build.
func Marshal(root *Element, options GenerateOptions) ([]byte, error) {
	if root == nil {
		return nil, nil
	}

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	encoder := xml.NewEncoder(&buffer)
	if options.Indent != "" {
		encoder.Indent("", options.Indent)
	}

	if err := writeElement(encoder, root); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush XML: %w", err)
	}

	if options.Indent != "" {
		buffer.WriteByte('\n')
	}

	return buffer.Bytes(), nil
}

// writeElement emits one element and its subtree as tokens.
func writeElement(encoder *xml.Encoder, element *Element) error {
	start := xml.StartElement{
		Name: xml.Name{Local: element.Name},
		Attr: element.Attrs,
	}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}

	if element.Text != "" {
		if err := encoder.EncodeToken(xml.CharData(element.Text)); err != nil {
			return err
		}
	}

	for _, child := range element.Children {
		if err := writeElement(encoder, child); err != nil {
			return err
		}
	}

	return encoder.EncodeToken(start.End())
}
