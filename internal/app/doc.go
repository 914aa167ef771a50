// Package app is the payment front end: the connection context, the state
// logger, the ConnectButton and App components and the mount sequence.
//
// A Context replaces module-level singletons. Every page session builds its
// own Context, so sessions and tests never share a store:
//
//	ctx := app.New(paymentbackend.Builder(paymentbackend.CanisterID()), app.WithLogger(logger))
//	root, err := app.Mount(doc, ctx)
//
// The actor is not built until the first Connect.
package app
