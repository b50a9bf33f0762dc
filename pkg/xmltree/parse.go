// ABOUTME: XML parser building the immutable arena tree
// ABOUTME: Resolves namespace prefixes and applies whitespace/comment options

package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// ParseOptions controls how the tree is materialized.
type ParseOptions struct {
	// IgnoreWhitespace trims text and drops whitespace-only text nodes.
	IgnoreWhitespace bool
	// IgnoreComments drops comment nodes.
	IgnoreComments bool
}

// DefaultParseOptions ignores whitespace and comments.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{IgnoreWhitespace: true, IgnoreComments: true}
}

// ParseString parses an XML string.
func ParseString(s string, opts ParseOptions) (*Document, error) {
	return Parse(strings.NewReader(s), opts)
}

// ParseBytes parses an XML byte slice.
func ParseBytes(b []byte, opts ParseOptions) (*Document, error) {
	return Parse(bytes.NewReader(b), opts)
}

type builder struct {
	doc    *Document
	opts   ParseOptions
	open   []NodeID
	scopes []map[string]string
	text   strings.Builder
	inText bool
}

// Parse reads a complete XML document from r.
func Parse(r io.Reader, opts ParseOptions) (*Document, error) {
	b := &builder{
		doc:  &Document{nodes: []node{{kind: DocumentNode, parent: InvalidNode}}},
		opts: opts,
		open: []NodeID{0},
	}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			b.flushText()
			b.startElement(t)
		case xml.EndElement:
			b.flushText()
			if err := b.endElement(t); err != nil {
				return nil, err
			}
		case xml.CharData:
			b.text.Write(t)
			b.inText = true
		case xml.Comment:
			b.flushText()
			if !opts.IgnoreComments {
				b.appendLeaf(CommentNode, string(t))
			}
		case xml.Directive:
			b.flushText()
			b.directive(t)
		}
	}

	if len(b.open) > 1 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", ErrMalformed, b.doc.Name(b.current()))
	}
	// Top-level character data is not part of the infoset.
	b.text.Reset()
	if b.doc.DocumentElement() == InvalidNode {
		return nil, ErrNoDocumentElement
	}
	return b.doc, nil
}

func (b *builder) current() NodeID {
	return b.open[len(b.open)-1]
}

func (b *builder) add(n node) NodeID {
	id := NodeID(len(b.doc.nodes))
	n.parent = b.current()
	b.doc.nodes = append(b.doc.nodes, n)
	parent := &b.doc.nodes[n.parent]
	parent.children = append(parent.children, id)
	return id
}

func (b *builder) appendLeaf(kind Kind, data string) {
	b.add(node{kind: kind, data: data})
}

func (b *builder) flushText() {
	if !b.inText {
		return
	}
	data := b.text.String()
	b.text.Reset()
	b.inText = false

	// Character data outside the document element is dropped.
	if b.current() == 0 {
		return
	}
	if b.opts.IgnoreWhitespace {
		data = strings.TrimSpace(data)
		if data == "" {
			return
		}
	}
	b.appendLeaf(TextNode, data)
}

func (b *builder) startElement(t xml.StartElement) {
	scope := map[string]string{}
	attrs := make([]Attr, 0, len(t.Attr))
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns":
			scope[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope[""] = a.Value
		default:
			attrs = append(attrs, Attr{Prefix: a.Name.Space, Local: a.Name.Local, Value: a.Value})
		}
	}
	b.scopes = append(b.scopes, scope)

	for i := range attrs {
		if attrs[i].Prefix != "" {
			attrs[i].Namespace = b.resolve(attrs[i].Prefix)
		}
	}

	id := b.add(node{
		kind:      ElementNode,
		prefix:    t.Name.Space,
		local:     t.Name.Local,
		namespace: b.resolve(t.Name.Space),
		attrs:     attrs,
	})
	b.open = append(b.open, id)
}

func (b *builder) endElement(t xml.EndElement) error {
	if len(b.open) == 1 {
		return fmt.Errorf("%w: unexpected end element </%s>", ErrMalformed, qualified(t.Name))
	}
	id := b.current()
	n := b.doc.nodes[id]
	if n.prefix != t.Name.Space || n.local != t.Name.Local {
		return fmt.Errorf("%w: element <%s> closed by </%s>", ErrMalformed, b.doc.Name(id), qualified(t.Name))
	}
	b.open = b.open[:len(b.open)-1]
	b.scopes = b.scopes[:len(b.scopes)-1]
	return nil
}

// resolve looks a prefix up in the in-scope declarations. Undeclared
// prefixes resolve to the empty namespace.
func (b *builder) resolve(prefix string) string {
	if prefix == "xml" {
		return xmlNamespace
	}
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if uri, ok := b.scopes[i][prefix]; ok {
			return uri
		}
	}
	return ""
}

func (b *builder) directive(d xml.Directive) {
	fields := strings.Fields(string(d))
	if len(fields) >= 2 && fields[0] == "DOCTYPE" {
		b.doc.doctype = strings.TrimSuffix(fields[1], "[")
	}
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
