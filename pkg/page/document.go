package page

import (
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/payment-frontend/internal/errors"
)

// DefaultShell is used when no index.html is configured.
const DefaultShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>payment_frontend</title>
</head>
<body>
<div id="root"></div>
</body>
</html>
`

// Template is a parsed page shell that hands out independent Documents.
type Template struct {
	name string
	src  []byte
}

// ParseTemplate validates and stores a page shell.
func ParseTemplate(name string, r io.Reader) (*Template, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New("E003").WithDetail(name).Wrap(err)
	}
	if _, err := html.Parse(bytes.NewReader(src)); err != nil {
		return nil, errors.New("E003").WithDetail(name).Wrap(err)
	}
	return &Template{name: name, src: src}, nil
}

// LoadTemplate reads a page shell from disk. An empty path yields DefaultShell.
func LoadTemplate(path string) (*Template, error) {
	if path == "" {
		return ParseTemplate("default", strings.NewReader(DefaultShell))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("E003").WithDetail(path).Wrap(err)
	}
	defer f.Close()
	return ParseTemplate(path, f)
}

// Name returns the template's source name.
func (t *Template) Name() string {
	return t.name
}

// New returns a fresh Document parsed from the template.
func (t *Template) New() *Document {
	// The source already parsed once in ParseTemplate.
	node, _ := html.Parse(bytes.NewReader(t.src))
	return &Document{name: t.name, root: node}
}

// Document is one page instance. It is not safe for concurrent use; a Root
// serializes its own writes.
type Document struct {
	name string
	root *html.Node
}

// Name returns the name of the template the document came from.
func (d *Document) Name() string {
	return d.name
}

// Element is a node inside a Document.
type Element struct {
	node *html.Node
}

// FindElementByID looks up the element with the given id attribute.
// The boolean is false when no such element exists.
func FindElementByID(d *Document, id string) (*Element, bool) {
	if d == nil || d.root == nil {
		return nil, false
	}
	n := findNode(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "id" && a.Val == id {
				return true
			}
		}
		return false
	})
	if n == nil {
		return nil, false
	}
	return &Element{node: n}, true
}

// Body returns the document's body element.
func (d *Document) Body() (*Element, bool) {
	n := findNode(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if n == nil {
		return nil, false
	}
	return &Element{node: n}, true
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Attr returns the value of an attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// SetInnerHTML replaces the element's children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// AppendHTML parses markup and appends it after the element's children.
func (e *Element) AppendHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&b, c)
	}
	return b.String()
}
