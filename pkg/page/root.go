package page

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/render"
	"github.com/vango-dev/payment-frontend/pkg/store"
	"github.com/vango-dev/payment-frontend/pkg/vdom"
)

// RootElementID is the id of the mount element the page shell must contain.
const RootElementID = "root"

// Component renders a tree. Store reads made through store.Select with w
// become the component's render dependencies.
type Component func(w store.Watcher) *vdom.VNode

// RootOption configures a Root.
type RootOption func(*Root)

// WithOnUpdate sets the callback that receives the root's inner HTML after
// every re-render triggered by a store change. It is not called for the
// initial Render.
func WithOnUpdate(fn func(html string)) RootOption {
	return func(r *Root) { r.onUpdate = fn }
}

// WithLogger sets the root's logger.
func WithLogger(logger *slog.Logger) RootOption {
	return func(r *Root) { r.logger = logger }
}

type dependency struct {
	store   *store.Store
	changed func(prev, next store.State) bool
}

// Root is the single rendering context bound to a mount element.
type Root struct {
	mu        sync.Mutex
	container *Element
	renderer  *render.Renderer
	logger    *slog.Logger
	onUpdate  func(string)

	component Component
	rendered  bool
	renders   int
	html      string
	handlers  map[string]map[string]any

	deps []dependency
	subs map[*store.Store]store.Unsubscribe
	last map[*store.Store]store.State
}

// CreateRoot binds a Root to the element with the given id. If the document
// has no such element it returns E001 and nothing is rendered.
func CreateRoot(doc *Document, id string, opts ...RootOption) (*Root, error) {
	el, ok := FindElementByID(doc, id)
	if !ok {
		name := "<nil>"
		if doc != nil {
			name = doc.Name()
		}
		return nil, errors.New("E001").
			WithDetailf("no element with id %q in %s", id, name).
			WithSuggestion(fmt.Sprintf(`add <div id="%s"></div> to the page body`, id))
	}

	r := &Root{
		container: el,
		renderer:  render.NewRenderer(),
		logger:    slog.Default(),
		subs:      make(map[*store.Store]store.Unsubscribe),
		last:      make(map[*store.Store]store.State),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "root", "element", id)
	return r, nil
}

// Render renders c into the mount element. It may be called once.
func (r *Root) Render(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rendered {
		return errors.New("E002")
	}
	r.component = c
	if err := r.renderLocked(); err != nil {
		return err
	}
	r.rendered = true
	return nil
}

// pass collects the dependencies of one render.
type pass struct {
	deps []dependency
}

func (p *pass) Watch(s *store.Store, changed func(prev, next store.State) bool) {
	p.deps = append(p.deps, dependency{store: s, changed: changed})
}

func (r *Root) renderLocked() error {
	p := &pass{}
	tree := r.component(p)

	r.renderer.Reset()
	markup, err := r.renderer.RenderToString(tree)
	if err != nil {
		return fmt.Errorf("render root: %w", err)
	}
	if err := r.container.SetInnerHTML(markup); err != nil {
		return fmt.Errorf("mount root: %w", err)
	}

	r.html = markup
	r.handlers = r.renderer.Handlers()
	r.deps = p.deps
	r.renders++

	for _, d := range p.deps {
		if _, ok := r.subs[d.store]; ok {
			continue
		}
		s := d.store
		r.last[s] = s.Get()
		r.subs[s] = s.Subscribe(store.ObserverFunc(func(next store.State) {
			r.onState(s, next)
		}))
	}
	return nil
}

func (r *Root) onState(s *store.Store, next store.State) {
	r.mu.Lock()
	prev := r.last[s]
	r.last[s] = next

	dirty := false
	for _, d := range r.deps {
		if d.store == s && d.changed(prev, next) {
			dirty = true
			break
		}
	}
	if !dirty {
		r.mu.Unlock()
		return
	}

	if err := r.renderLocked(); err != nil {
		r.mu.Unlock()
		r.logger.Error("re-render failed", "error", err)
		return
	}
	markup, onUpdate := r.html, r.onUpdate
	r.mu.Unlock()

	r.logger.Debug("re-rendered", "renders", r.Renders())
	if onUpdate != nil {
		onUpdate(markup)
	}
}

// HTML returns the root's current inner HTML.
func (r *Root) HTML() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.html
}

// Renders returns how many times the root has rendered.
func (r *Root) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// Dispatch routes a client event to the handler rendered under hid.
//
// Supported handler shapes are func(), func(context.Context) and
// func(context.Context) error. The handler runs without the root's lock held,
// so it may change stores and trigger re-renders.
func (r *Root) Dispatch(ctx context.Context, hid, event string) error {
	r.mu.Lock()
	h := r.handlers[hid][event]
	r.mu.Unlock()

	switch fn := h.(type) {
	case func():
		fn()
		return nil
	case func(context.Context):
		fn(ctx)
		return nil
	case func(context.Context) error:
		return fn(ctx)
	case nil:
		return errors.New("E032").WithDetailf("%s on %s", event, hid)
	default:
		return errors.New("E032").WithDetailf("%s on %s has unsupported handler type %T", event, hid, h)
	}
}

// Close drops the root's store subscriptions.
func (r *Root) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for s, unsubscribe := range r.subs {
		unsubscribe()
		delete(r.subs, s)
	}
}
