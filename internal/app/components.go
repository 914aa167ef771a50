package app

import (
	"context"

	"github.com/vango-dev/payment-frontend/pkg/store"
	. "github.com/vango-dev/payment-frontend/pkg/vdom"
)

// ConnectButton renders the connect control. Every click runs Connect once.
func ConnectButton(actions *store.Actions) *VNode {
	return Button(
		OnClick(func(ctx context.Context) error {
			return actions.Connect(ctx)
		}),
		Text("Connect"),
	)
}

// App renders the greeting. It reads connected, so the root re-renders when
// the flag changes, but the output does not depend on it.
func (c *Context) App(w store.Watcher) *VNode {
	_ = store.Select(c.Store, w, store.Connected)
	return H1(Text("Hello, world!"))
}

// Page is the mounted tree: App, followed by ConnectButton when ShowConnect
// is set.
func (c *Context) Page(w store.Watcher) *VNode {
	if !c.ShowConnect {
		return c.App(w)
	}
	return Fragment(c.App(w), ConnectButton(c.Actions))
}
