package store

import (
	"encoding/json"
	"log/slog"
	"maps"
	"reflect"
	"sync"
)

// MethodState tracks the last invocation of one canister method.
type MethodState struct {
	Loading bool            `json:"loading"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// State is the connection state owned by a Store.
type State struct {
	Connected    bool                   `json:"connected"`
	Initializing bool                   `json:"initializing"`
	Initialized  bool                   `json:"initialized"`
	Error        string                 `json:"error,omitempty"`
	Methods      map[string]MethodState `json:"methods,omitempty"`
}

// Connected selects the connected flag.
func Connected(s State) bool { return s.Connected }

// Initializing selects the initializing flag.
func Initializing(s State) bool { return s.Initializing }

func (s State) clone() State {
	s.Methods = maps.Clone(s.Methods)
	return s
}

// LogValue implements slog.LogValuer so a State logs as a structured group.
func (s State) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Bool("connected", s.Connected),
		slog.Bool("initializing", s.Initializing),
		slog.Bool("initialized", s.Initialized),
	}
	if s.Error != "" {
		attrs = append(attrs, slog.String("error", s.Error))
	}
	for name, m := range s.Methods {
		group := []any{slog.Bool("loading", m.Loading)}
		if m.Error != "" {
			group = append(group, slog.String("error", m.Error))
		}
		if len(m.Data) > 0 {
			group = append(group, slog.String("data", string(m.Data)))
		}
		attrs = append(attrs, slog.Group("method."+name, group...))
	}
	return slog.GroupValue(attrs...)
}

// Observer receives every state transition.
type Observer interface {
	OnState(State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(State)

// OnState implements Observer.
func (f ObserverFunc) OnState(s State) { f(s) }

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription struct {
	id       uint64
	observer Observer
}

// Store is an observable container for State.
// It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	state      State
	subs       []subscription
	nextID     uint64
	pending    []State
	delivering bool
}

// New creates a store holding initial.
func New(initial State) *Store {
	return &Store{state: initial.clone()}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers o for every subsequent transition.
func (s *Store) Subscribe(o Observer) Unsubscribe {
	if o == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, observer: o})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of registered observers.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// update applies fn to a copy of the state and, if anything changed,
// commits it and notifies observers.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	next := s.state.clone()
	fn(&next)
	if reflect.DeepEqual(s.state, next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.pending = append(s.pending, next.clone())
	if s.delivering {
		s.mu.Unlock()
		return
	}

	s.delivering = true
	for len(s.pending) > 0 {
		snap := s.pending[0]
		s.pending = s.pending[1:]
		subs := make([]subscription, len(s.subs))
		copy(subs, s.subs)
		s.mu.Unlock()

		for _, sub := range subs {
			sub.observer.OnState(snap.clone())
		}

		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// Watcher collects the store reads a render pass depends on.
type Watcher interface {
	// Watch registers interest in s. changed reports whether a transition
	// from prev to next affects what was read.
	Watch(s *Store, changed func(prev, next State) bool)
}

// Select reads a value from s through sel and, if w is non-nil, registers
// the read so w is told when the selected value changes.
func Select[T comparable](s *Store, w Watcher, sel func(State) T) T {
	v := sel(s.Get())
	if w != nil {
		w.Watch(s, func(prev, next State) bool {
			return sel(prev) != sel(next)
		})
	}
	return v
}
