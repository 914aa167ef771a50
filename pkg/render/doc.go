// Package render provides server-side rendering for front end components.
//
// The render package converts VNode trees into HTML with escaped text and
// hydration IDs for client-side interactivity.
//
// # Basic Usage
//
//	renderer := render.NewRenderer()
//	html, err := renderer.RenderToString(node)
//
// # Hydration IDs
//
// Elements with event handlers receive a data-hid attribute plus one
// data-on-<event> marker per handler. The handlers are collected during
// rendering and can be retrieved via Handlers(); the thin client sends the
// HID and event name back when the user interacts with the element.
package render
