package app

import (
	"log/slog"

	"github.com/vango-dev/payment-frontend/pkg/store"
)

// Context carries one page session's connection.
type Context struct {
	Store   *store.Store
	Actions *store.Actions
	Logger  *slog.Logger

	// ShowConnect renders ConnectButton next to App.
	ShowConnect bool

	subs []store.Unsubscribe
}

type options struct {
	logger      *slog.Logger
	observers   []store.Observer
	showConnect bool
}

// Option configures a Context.
type Option func(*options)

// WithLogger sets the logger the state observer writes to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver registers an extra observer after the state logger.
func WithObserver(obs store.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithShowConnect toggles the connect button on the mounted page.
func WithShowConnect(show bool) Option {
	return func(o *options) { o.showConnect = show }
}

// New creates the store and actions around builder and registers the state
// logger. builder is not called.
func New(builder store.Builder, opts ...Option) *Context {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	st, actions := store.CreateActorStoreAndActions(builder)
	c := &Context{
		Store:       st,
		Actions:     actions,
		Logger:      o.logger,
		ShowConnect: o.showConnect,
	}
	c.subs = append(c.subs, st.Subscribe(StateLogger(c.Logger)))
	for _, obs := range o.observers {
		c.subs = append(c.subs, st.Subscribe(obs))
	}
	return c
}

// Close removes the context's observers. The server calls it when a page
// session ends.
func (c *Context) Close() {
	for _, unsubscribe := range c.subs {
		unsubscribe()
	}
	c.subs = nil
}
