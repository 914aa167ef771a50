// Package vdom provides the virtual DOM used to describe the front end's UI.
//
// Components are plain Go functions returning a *VNode tree. The tree lives
// on the server; it is rendered to HTML by package render and mounted into
// the page shell by package page.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Fragment(
//	    H1(Text("Hello, world!")),
//	    Button(Text("Connect"), OnClick(connect)),
//	)
//
// # Hydration
//
// An element with a non-nil event handler is interactive. The renderer gives
// it a hydration ID from a HIDGenerator, linking the server VNode to the
// client DOM node so a click in the browser can be routed back to its
// handler.
package vdom
