package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/payment-frontend/pkg/render"
	"github.com/vango-dev/payment-frontend/pkg/vdom"
)

// RenderToString renders a VNode and returns the HTML string.
// This is useful for asserting on rendered output.
//
// Example:
//
//	html := vtest.RenderToString(MyComponent())
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer()
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, App(nil), "Hello, world!")
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the tree contains an element with tag.
//
// Example:
//
//	vtest.ExpectElement(t, ConnectButton(actions), "button")
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) {
	t.Helper()
	if len(vdom.FindAll(node, tag)) == 0 {
		t.Errorf("expected a <%s> element, got:\n%s", tag, truncate(RenderToString(node), 500))
	}
}

// ExpectText asserts that the first element with tag has exactly the given
// text content.
func ExpectText(t testing.TB, node *vdom.VNode, tag, want string) {
	t.Helper()
	found := vdom.FindAll(node, tag)
	if len(found) == 0 {
		t.Errorf("expected a <%s> element, got:\n%s", tag, truncate(RenderToString(node), 500))
		return
	}
	if got := vdom.TextContent(found[0]); got != want {
		t.Errorf("<%s> text = %q, want %q", tag, got, want)
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectHTML asserts that rendered output is exactly want.
func ExpectHTML(t testing.TB, node *vdom.VNode, want string) {
	t.Helper()
	if html := RenderToString(node); html != want {
		t.Errorf("rendered output mismatch\n got: %s\nwant: %s", truncate(html, 500), want)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
