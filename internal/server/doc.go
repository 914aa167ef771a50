// Package server serves the payment front end.
//
// Each GET / builds a fresh page session: an app.Context, a page Document
// with the App mounted into its root element, and a session id embedded in
// the body. The embedded thin client then opens /_live?session=<id>,
// forwards DOM events as JSON frames and replaces the root's inner HTML
// whenever the server pushes a render frame.
//
// Routes:
//
//	GET /            page shell with the mounted root
//	GET /_live       WebSocket event channel
//	GET /_client.js  thin client
//	GET /healthz     liveness
//	GET /metrics     Prometheus metrics
package server
