package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/actor"
)

// fakeActor is an in-memory actor.Actor.
type fakeActor struct {
	handshakeErr error
	replies      map[string]json.RawMessage
	handshakes   int
}

func (f *fakeActor) CanisterID() actor.Principal { return actor.AnonymousPrincipal }

func (f *fakeActor) Handshake(context.Context) error {
	f.handshakes++
	return f.handshakeErr
}

func (f *fakeActor) Invoke(_ context.Context, method string, _ ...any) (json.RawMessage, error) {
	raw, ok := f.replies[method]
	if !ok {
		return nil, errors.New("E012").WithDetail(method)
	}
	return raw, nil
}

// collector records every delivered state.
type collector struct {
	mu     sync.Mutex
	states []State
}

func (c *collector) OnState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, s)
}

func (c *collector) all() []State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]State(nil), c.states...)
}

func TestBuilderIsLazy(t *testing.T) {
	builds := 0
	st, actions := CreateActorStoreAndActions(func() (actor.Actor, error) {
		builds++
		return &fakeActor{}, nil
	})

	if builds != 0 {
		t.Fatalf("builder ran %d times before Connect", builds)
	}
	if actions.Actor() != nil {
		t.Fatal("actor should be nil before Connect")
	}
	if st.Get().Connected {
		t.Fatal("store should start disconnected")
	}

	if err := actions.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := actions.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if builds != 1 {
		t.Errorf("builder ran %d times, want 1", builds)
	}
}

func TestConnectTransitions(t *testing.T) {
	fa := &fakeActor{}
	st, actions := CreateActorStoreAndActions(func() (actor.Actor, error) { return fa, nil })

	c := &collector{}
	st.Subscribe(c)

	if err := actions.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	states := c.all()
	if len(states) != 2 {
		t.Fatalf("got %d transitions, want 2: %+v", len(states), states)
	}
	if !states[0].Initializing || states[0].Connected {
		t.Errorf("first transition = %+v, want initializing", states[0])
	}
	if states[1].Initializing || !states[1].Connected || !states[1].Initialized {
		t.Errorf("second transition = %+v, want connected", states[1])
	}
	if fa.handshakes != 1 {
		t.Errorf("handshakes = %d, want 1", fa.handshakes)
	}
}

func TestConnectBuildFailureIsDeferred(t *testing.T) {
	buildErr := stderrors.New("no agent")
	st, actions := CreateActorStoreAndActions(func() (actor.Actor, error) { return nil, buildErr })

	err := actions.Connect(context.Background())
	if !stderrors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}
	if !stderrors.Is(err, errors.New("E011")) {
		t.Errorf("expected E011, got %v", err)
	}

	s := st.Get()
	if s.Connected || s.Initializing || s.Error == "" {
		t.Errorf("state after failure = %+v", s)
	}
}

func TestConnectHandshakeFailure(t *testing.T) {
	fa := &fakeActor{handshakeErr: errors.New("E015")}
	st, actions := CreateActorStoreAndActions(func() (actor.Actor, error) { return fa, nil })

	if err := actions.Connect(context.Background()); err == nil {
		t.Fatal("expected handshake error")
	}
	if st.Get().Connected {
		t.Error("should not be connected")
	}

	fa.handshakeErr = nil
	if err := actions.Connect(context.Background()); err != nil {
		t.Fatalf("retry Connect: %v", err)
	}
	s := st.Get()
	if !s.Connected || s.Error != "" {
		t.Errorf("state after retry = %+v", s)
	}
}

func TestCallRequiresConnection(t *testing.T) {
	_, actions := CreateActorStoreAndActions(func() (actor.Actor, error) { return &fakeActor{}, nil })

	_, err := actions.Call(context.Background(), "get_transactions")
	if !stderrors.Is(err, errors.New("E014")) {
		t.Fatalf("expected E014, got %v", err)
	}
}

func TestCallRecordsMethodState(t *testing.T) {
	fa := &fakeActor{replies: map[string]json.RawMessage{
		"get_transactions": json.RawMessage(`["0xabc"]`),
	}}
	st, actions := CreateActorStoreAndActions(func() (actor.Actor, error) { return fa, nil })
	if err := actions.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	c := &collector{}
	st.Subscribe(c)

	raw, err := actions.Call(context.Background(), "get_transactions")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(raw) != `["0xabc"]` {
		t.Errorf("raw = %s", raw)
	}

	states := c.all()
	if len(states) != 2 {
		t.Fatalf("got %d transitions, want 2", len(states))
	}
	if !states[0].Methods["get_transactions"].Loading {
		t.Error("first transition should mark method loading")
	}
	final := states[1].Methods["get_transactions"]
	if final.Loading || string(final.Data) != `["0xabc"]` {
		t.Errorf("final method state = %+v", final)
	}

	if _, err := actions.Call(context.Background(), "unknown"); err == nil {
		t.Fatal("expected rejection")
	}
	if st.Get().Methods["unknown"].Error == "" {
		t.Error("rejection should be recorded")
	}
}

func TestReset(t *testing.T) {
	fa := &fakeActor{}
	st, actions := CreateActorStoreAndActions(func() (actor.Actor, error) { return fa, nil })
	actions.Connect(context.Background())

	actions.Reset()
	if st.Get().Connected {
		t.Error("Reset should disconnect")
	}
	if actions.Actor() == nil {
		t.Error("Reset should keep the built actor")
	}
}

func TestUnchangedStateNotDelivered(t *testing.T) {
	st := New(State{})
	c := &collector{}
	st.Subscribe(c)

	st.update(func(s *State) {})
	st.update(func(s *State) { s.Connected = false })

	if n := len(c.all()); n != 0 {
		t.Errorf("delivered %d no-op transitions", n)
	}
}

func TestUnsubscribe(t *testing.T) {
	st := New(State{})
	c := &collector{}
	unsubscribe := st.Subscribe(c)

	st.update(func(s *State) { s.Connected = true })
	unsubscribe()
	unsubscribe()
	st.update(func(s *State) { s.Connected = false })

	if n := len(c.all()); n != 1 {
		t.Errorf("delivered %d transitions, want 1", n)
	}
	if st.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", st.Subscribers())
	}
}

func TestReentrantUpdateDeliveredInOrder(t *testing.T) {
	st := New(State{})
	var seen []bool

	st.Subscribe(ObserverFunc(func(s State) {
		seen = append(seen, s.Connected)
		if s.Connected {
			st.update(func(s *State) { s.Connected = false })
		}
	}))

	st.update(func(s *State) { s.Connected = true })

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("seen = %v, want [true false]", seen)
	}
}

func TestObserversReceiveCopies(t *testing.T) {
	st := New(State{})
	st.Subscribe(ObserverFunc(func(s State) {
		s.Methods["x"] = MethodState{Error: "mutated"}
	}))

	st.update(func(s *State) {
		s.Methods = map[string]MethodState{"x": {Loading: true}}
	})

	if st.Get().Methods["x"].Error != "" {
		t.Error("observer mutation leaked into the store")
	}
}

type recordingWatcher struct {
	checks []func(prev, next State) bool
}

func (w *recordingWatcher) Watch(_ *Store, changed func(prev, next State) bool) {
	w.checks = append(w.checks, changed)
}

func TestSelectRegistersWatch(t *testing.T) {
	st := New(State{Connected: true})
	w := &recordingWatcher{}

	if !Select(st, w, Connected) {
		t.Fatal("Select should return the connected flag")
	}
	if len(w.checks) != 1 {
		t.Fatalf("expected 1 watch, got %d", len(w.checks))
	}

	changed := w.checks[0]
	if changed(State{Connected: true}, State{Connected: true, Initializing: true}) {
		t.Error("unrelated field change should not count")
	}
	if !changed(State{Connected: true}, State{}) {
		t.Error("connected flip should count")
	}

	if Select(New(State{}), nil, Connected) {
		t.Error("nil watcher still reads the value")
	}
}
