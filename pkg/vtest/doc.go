// Package vtest provides testing helpers for payment-frontend components.
//
// It reduces boilerplate when testing components and the connection store
// by providing a scriptable fake actor, a counting builder, a log recorder
// and render assertions.
//
// # Quick Start
//
//	func TestApp(t *testing.T) {
//	    fake := vtest.NewFakeActor()
//	    builder := vtest.NewBuilder(fake)
//	    st, actions := store.CreateActorStoreAndActions(builder.Build)
//
//	    actions.Connect(context.Background())
//	    if builder.Calls() != 1 {
//	        t.Error("expected one build")
//	    }
//	}
//
// # Render Assertions
//
// Assert on rendered HTML output or on the tree itself:
//
//	vtest.ExpectContains(t, App(nil), "Hello, world!")
//	vtest.ExpectNotContains(t, App(nil), "Error")
//	vtest.ExpectText(t, App(nil), "h1", "Hello, world!")
//
// # Log Assertions
//
// A LogRecorder is a slog.Handler that keeps every record:
//
//	rec := vtest.NewLogRecorder()
//	logger := slog.New(rec)
//	...
//	if got := rec.Count("state"); got != 3 {
//	    t.Errorf("state records = %d", got)
//	}
package vtest
