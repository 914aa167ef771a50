package app

import (
	"github.com/vango-dev/payment-frontend/pkg/page"
	"github.com/vango-dev/payment-frontend/pkg/store"
)

// Mount binds a root to the page's "root" element and renders c.Page into
// it once. A missing element is reported as E001 before anything renders.
func Mount(doc *page.Document, c *Context, opts ...page.RootOption) (*page.Root, error) {
	opts = append([]page.RootOption{page.WithLogger(c.Logger)}, opts...)
	root, err := page.CreateRoot(doc, page.RootElementID, opts...)
	if err != nil {
		return nil, err
	}
	if err := root.Render(c.Page); err != nil {
		root.Close()
		return nil, err
	}
	return root, nil
}

// Bootstrap is the startup sequence: build the connection, subscribe the
// state logger, mount. The Context is returned even when mounting fails.
func Bootstrap(doc *page.Document, builder store.Builder, opts ...Option) (*Context, *page.Root, error) {
	c := New(builder, opts...)
	root, err := Mount(doc, c)
	return c, root, err
}
