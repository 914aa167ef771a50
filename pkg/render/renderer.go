package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/vango-dev/payment-frontend/pkg/vdom"
)

// Renderer handles server-side rendering of VNode trees to HTML.
//
// Interactive elements (those with event handlers) receive a data-hid
// attribute and their handlers are collected so client events can be routed
// back to Go functions. A Renderer is not safe for concurrent use.
type Renderer struct {
	hids     *vdom.HIDGenerator
	handlers map[string]map[string]any
}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		hids:     vdom.NewHIDGenerator(),
		handlers: make(map[string]map[string]any),
	}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	return r.renderNode(w, node)
}

// Handlers returns the handlers collected during rendering, keyed by HID and
// then by event name (e.g., handlers["h1"]["click"]).
func (r *Renderer) Handlers() map[string]map[string]any {
	return r.handlers
}

// Reset clears the HID counter and handler registry for a fresh render pass.
func (r *Renderer) Reset() {
	r.hids.Reset()
	r.handlers = make(map[string]map[string]any)
}

func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		return r.renderChildren(w, node.Children)
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) renderChildren(w io.Writer, children []*vdom.VNode) error {
	for _, child := range children {
		if err := r.renderNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode) error {
	tag := node.Tag
	if tag == "" {
		return fmt.Errorf("element node without tag")
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}

	if node.IsInteractive() {
		handlers := node.Handlers()
		if err := writeEventMarkers(w, handlers); err != nil {
			return err
		}
		node.HID = r.hids.Next()
		if _, err := fmt.Fprintf(w, ` data-hid="%s"`, node.HID); err != nil {
			return err
		}
		r.handlers[node.HID] = handlers
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if err := r.renderChildren(w, node.Children); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "</%s>", tag)
	return err
}

// writeEventMarkers writes one data-on-<event> marker per handler, in
// event name order, for the client.
func writeEventMarkers(w io.Writer, handlers map[string]any) error {
	events := make([]string, 0, len(handlers))
	for ev := range handlers {
		events = append(events, ev)
	}
	sort.Strings(events)

	for _, ev := range events {
		if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, ev); err != nil {
			return err
		}
	}
	return nil
}
